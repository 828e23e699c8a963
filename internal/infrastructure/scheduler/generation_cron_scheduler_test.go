package scheduler

import (
	"testing"
	"time"

	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/stretchr/testify/assert"
)

func TestParseCronSchedule(t *testing.T) {
	tests := []struct {
		name        string
		cronExpr    string
		expectedDay int
		expectedHr  int
		expectedMin int
		expectErr   bool
	}{
		{
			name:        "Default first of month at 2am",
			cronExpr:    "0 2 1 * *",
			expectedDay: 1,
			expectedHr:  2,
			expectedMin: 0,
		},
		{
			name:        "Fifth of month at 3:30am",
			cronExpr:    "30 3 5 * *",
			expectedDay: 5,
			expectedHr:  3,
			expectedMin: 30,
		},
		{
			name:        "Empty string defaults",
			cronExpr:    "",
			expectedDay: 1,
			expectedHr:  2,
			expectedMin: 0,
		},
		{
			name:        "Extra whitespace",
			cronExpr:    "  15   4   2   *   *  ",
			expectedDay: 2,
			expectedHr:  4,
			expectedMin: 15,
		},
		{
			name:      "Day past 28 rejected",
			cronExpr:  "0 2 31 * *",
			expectErr: true,
		},
		{
			name:      "Hour out of range rejected",
			cronExpr:  "0 25 1 * *",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, hour, minute, err := ParseCronSchedule(tt.cronExpr)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedDay, day, "day mismatch")
			assert.Equal(t, tt.expectedHr, hour, "hour mismatch")
			assert.Equal(t, tt.expectedMin, minute, "minute mismatch")
		})
	}
}

func TestDefaultGenerationCronSchedulerConfig(t *testing.T) {
	cfg := DefaultGenerationCronSchedulerConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1, cfg.CronDay)
	assert.Equal(t, 2, cfg.CronHour)
	assert.Equal(t, 0, cfg.CronMinute)
	assert.Equal(t, "0 2 1 * *", cfg.CronSchedule)
	assert.Equal(t, 30*time.Minute, cfg.JobTimeout)
}

func TestShouldRun(t *testing.T) {
	cfg := DefaultGenerationCronSchedulerConfig()
	cfg.CronDay = 1
	cfg.CronHour = 2
	cfg.CronMinute = 30

	s := &GenerationCronScheduler{
		config: cfg,
	}

	tests := []struct {
		name     string
		time     time.Time
		expected bool
	}{
		{
			name:     "Exact match",
			time:     time.Date(2026, 1, 1, 2, 30, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "Wrong day of month",
			time:     time.Date(2026, 1, 15, 2, 30, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "Wrong hour",
			time:     time.Date(2026, 1, 1, 3, 30, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "Wrong minute",
			time:     time.Date(2026, 1, 1, 2, 31, 0, 0, time.UTC),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.shouldRun(tt.time)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestCalculateNextRunTime(t *testing.T) {
	cfg := DefaultGenerationCronSchedulerConfig()

	s := &GenerationCronScheduler{
		config: cfg,
	}

	s.calculateNextRunTime()
	assert.NotNil(t, s.nextRunAt)
	assert.Equal(t, cfg.CronDay, s.nextRunAt.Day())
	assert.Equal(t, cfg.CronHour, s.nextRunAt.Hour())
	assert.Equal(t, cfg.CronMinute, s.nextRunAt.Minute())
	assert.True(t, s.nextRunAt.After(time.Now()))
}

func TestGenerationJobRecord(t *testing.T) {
	record := GenerationJobRecord{}
	assert.Equal(t, "billing_generation_jobs", record.TableName())
}

func TestGenerationCronScheduler_GetStatus(t *testing.T) {
	cfg := DefaultGenerationCronSchedulerConfig()
	s := &GenerationCronScheduler{
		config:    cfg,
		isRunning: true,
	}

	status := s.GetStatus()

	assert.Equal(t, true, status["enabled"])
	assert.Equal(t, true, status["is_running"])
	assert.Equal(t, false, status["in_flight"])
	assert.Equal(t, "0 2 1 * *", status["cron_schedule"])
}

func TestGenerationCronScheduler_TriggerManualRun_NotRunning(t *testing.T) {
	cfg := DefaultGenerationCronSchedulerConfig()
	s := &GenerationCronScheduler{
		config:    cfg,
		isRunning: false,
	}

	err := s.TriggerManualRun("2025-01")
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestGenerationCronScheduler_TriggerManualRun_BadMonth(t *testing.T) {
	cfg := DefaultGenerationCronSchedulerConfig()
	s := &GenerationCronScheduler{
		config:    cfg,
		isRunning: true,
	}

	err := s.TriggerManualRun("January 2025")
	assert.ErrorIs(t, err, billing.ErrInvalidMonth)
}

func TestGenerationCronScheduler_TriggerManualRun_InFlight(t *testing.T) {
	cfg := DefaultGenerationCronSchedulerConfig()
	s := &GenerationCronScheduler{
		config:    cfg,
		isRunning: true,
		inFlight:  true,
	}

	err := s.TriggerManualRun("2025-01")
	assert.ErrorIs(t, err, ErrGenerationInProgress)
}
