package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	appbilling "github.com/crvcrv26/repo-sub002/internal/application/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/billing"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cronTickerInterval is the interval at which the cron scheduler checks for execution
const cronTickerInterval = 1 * time.Minute

// GenerationCronSchedulerConfig holds configuration for the monthly
// generation scheduler
type GenerationCronSchedulerConfig struct {
	// Enabled indicates if the cron scheduler is enabled
	Enabled bool
	// CronDay is the day of month (1-28) to run the generation
	CronDay int
	// CronHour is the hour (0-23) to run the generation
	CronHour int
	// CronMinute is the minute (0-59) to run the generation
	CronMinute int
	// CronSchedule is the cron expression (parsed to extract minute/hour/day)
	CronSchedule string
	// JobTimeout is the maximum time one generation run can take
	JobTimeout time.Duration
}

// DefaultGenerationCronSchedulerConfig returns default scheduler
// configuration: 02:00 on the 1st of each month, billing the month that
// just ended.
func DefaultGenerationCronSchedulerConfig() GenerationCronSchedulerConfig {
	return GenerationCronSchedulerConfig{
		Enabled:      true,
		CronDay:      1,
		CronHour:     2,
		CronMinute:   0,
		CronSchedule: "0 2 1 * *",
		JobTimeout:   30 * time.Minute,
	}
}

// ParseCronSchedule parses a cron expression "minute hour day * *" to
// extract minute, hour and day of month. Returns defaults (02:00 on the
// 1st) when the expression is empty or a field is a wildcard.
func ParseCronSchedule(cronExpr string) (day, hour, minute int, err error) {
	day = 1
	hour = 2
	minute = 0

	if cronExpr == "" {
		return day, hour, minute, nil
	}

	parts := strings.Fields(cronExpr)
	if len(parts) < 3 {
		return day, hour, minute, nil
	}

	if parts[0] != "*" {
		if val, parseErr := parseIntOrDefault(parts[0], 0); parseErr == nil {
			minute = val
		}
	}
	if parts[1] != "*" {
		if val, parseErr := parseIntOrDefault(parts[1], 2); parseErr == nil {
			hour = val
		}
	}
	if parts[2] != "*" {
		if val, parseErr := parseIntOrDefault(parts[2], 1); parseErr == nil {
			day = val
		}
	}

	if minute < 0 || minute > 59 {
		return 1, 2, 0, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 1, 2, 0, fmt.Errorf("hour must be 0-23, got %d", hour)
	}
	// Day 29+ would skip February entirely
	if day < 1 || day > 28 {
		return 1, 2, 0, fmt.Errorf("day of month must be 1-28, got %d", day)
	}

	return day, hour, minute, nil
}

// parseIntOrDefault parses an int string or returns default
func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" || s == "*" {
		return defaultVal, nil
	}
	var val int
	for _, c := range s {
		if c < '0' || c > '9' {
			return defaultVal, ErrInvalidConfig
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// GenerationJobRecord represents a record of one scheduled generation run
type GenerationJobRecord struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Tier        string     `gorm:"column:tier;size:30;not null"`
	Month       string     `gorm:"column:month;size:7;not null"`
	Status      string     `gorm:"column:last_run_status;size:20"`
	Error       string     `gorm:"column:last_error;type:text"`
	CreatedRows int        `gorm:"column:created_rows"`
	SkippedRows int        `gorm:"column:skipped_rows"`
	StartedAt   *time.Time `gorm:"column:last_run_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (GenerationJobRecord) TableName() string {
	return "billing_generation_jobs"
}

// Job status values
const (
	jobStatusRunning = "RUNNING"
	jobStatusSuccess = "SUCCESS"
	jobStatusFailed  = "FAILED"
)

// GenerationJobRepository handles persistence of generation job records
type GenerationJobRepository struct {
	db *gorm.DB
}

// NewGenerationJobRepository creates a new GenerationJobRepository
func NewGenerationJobRepository(db *gorm.DB) *GenerationJobRepository {
	return &GenerationJobRepository{db: db}
}

// RecordJobStart records the start of a generation run
func (r *GenerationJobRepository) RecordJobStart(ctx context.Context, tier billing.Tier, month string) (uuid.UUID, error) {
	now := time.Now()
	record := &GenerationJobRecord{
		ID:        uuid.New(),
		Tier:      tier.String(),
		Month:     month,
		Status:    jobStatusRunning,
		StartedAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return uuid.Nil, err
	}
	return record.ID, nil
}

// RecordJobComplete records the completion of a generation run
func (r *GenerationJobRepository) RecordJobComplete(ctx context.Context, jobID uuid.UUID, created, skipped int, runErr error) error {
	now := time.Now()
	status := jobStatusSuccess
	errMsg := ""
	if runErr != nil {
		status = jobStatusFailed
		errMsg = runErr.Error()
	}
	return r.db.WithContext(ctx).
		Model(&GenerationJobRecord{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"last_run_status": status,
			"last_error":      errMsg,
			"created_rows":    created,
			"skipped_rows":    skipped,
			"completed_at":    now,
			"updated_at":      now,
		}).Error
}

// GetLastJobStatus gets the most recent run record for a tier
func (r *GenerationJobRepository) GetLastJobStatus(ctx context.Context, tier billing.Tier) (*GenerationJobRecord, error) {
	var record GenerationJobRecord
	err := r.db.WithContext(ctx).
		Where("tier = ?", tier.String()).
		Order("last_run_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GenerationCronScheduler runs the monthly ledger generation for every
// tier on a cron schedule. The generation service's insert-if-absent makes
// reruns safe, so a crashed or overlapping run never double-bills.
type GenerationCronScheduler struct {
	config     GenerationCronSchedulerConfig
	generation *appbilling.GenerationService
	jobRepo    *GenerationJobRepository
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inFlight  bool

	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewGenerationCronScheduler creates a new monthly generation scheduler
func NewGenerationCronScheduler(
	config GenerationCronSchedulerConfig,
	generation *appbilling.GenerationService,
	jobRepo *GenerationJobRepository,
	logger *zap.Logger,
) *GenerationCronScheduler {
	return &GenerationCronScheduler{
		config:     config,
		generation: generation,
		jobRepo:    jobRepo,
		logger:     logger,
	}
}

// Start starts the cron scheduler
func (s *GenerationCronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Generation cron scheduler started",
		zap.Int("cron_day", s.config.CronDay),
		zap.Int("cron_hour", s.config.CronHour),
		zap.Int("cron_minute", s.config.CronMinute),
		zap.Timep("next_run_at", s.nextRunAt),
	)

	return nil
}

// Stop stops the cron scheduler
func (s *GenerationCronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Generation cron scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Generation cron scheduler stop timed out")
		return ctx.Err()
	}
}

// cronLoop runs the main cron loop
func (s *GenerationCronScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runMonthlyGeneration(ctx)
				s.calculateNextRunTime()
			}
		}
	}
}

// shouldRun checks if the cron should fire at the given time
func (s *GenerationCronScheduler) shouldRun(now time.Time) bool {
	return now.Day() == s.config.CronDay &&
		now.Hour() == s.config.CronHour &&
		now.Minute() == s.config.CronMinute
}

// calculateNextRunTime calculates the next run time
func (s *GenerationCronScheduler) calculateNextRunTime() {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), s.config.CronDay,
		s.config.CronHour, s.config.CronMinute, 0, 0, now.Location())

	// Already past this month's run time, schedule for next month
	if now.After(next) {
		next = next.AddDate(0, 1, 0)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// runMonthlyGeneration generates the ledger for the month that just
// ended, for every tier. A tier-level failure is recorded and the loop
// moves on to the next tier.
func (s *GenerationCronScheduler) runMonthlyGeneration(ctx context.Context) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Warn("Skipping generation run, previous run still in flight")
		return
	}
	s.inFlight = true
	now := time.Now()
	s.lastRunAt = &now
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	targetMonth := billing.BillingMonthOf(now).Previous()
	s.runForMonth(ctx, targetMonth.String())
}

// runForMonth runs one generation batch per tier for the given month
func (s *GenerationCronScheduler) runForMonth(ctx context.Context, month string) {
	s.logger.Info("Starting monthly payment generation", zap.String("month", month))

	for _, tier := range billing.AllTiers() {
		runCtx := ctx
		var cancel context.CancelFunc
		if s.config.JobTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		}

		var jobID uuid.UUID
		if s.jobRepo != nil {
			var recordErr error
			jobID, recordErr = s.jobRepo.RecordJobStart(runCtx, tier, month)
			if recordErr != nil {
				s.logger.Warn("Failed to record generation job start",
					zap.String("tier", tier.String()),
					zap.String("month", month),
					zap.Error(recordErr),
				)
			}
		}

		result, err := s.generation.Generate(runCtx, tier, month)
		if cancel != nil {
			cancel()
		}

		created, skipped := 0, 0
		if result != nil {
			created = len(result.Created)
			skipped = len(result.Skipped)
		}
		if err != nil {
			s.logger.Error("Generation batch failed",
				zap.String("tier", tier.String()),
				zap.String("month", month),
				zap.Error(err),
			)
		}
		if s.jobRepo != nil && jobID != uuid.Nil {
			if recordErr := s.jobRepo.RecordJobComplete(ctx, jobID, created, skipped, err); recordErr != nil {
				s.logger.Warn("Failed to record generation job completion",
					zap.String("tier", tier.String()),
					zap.Error(recordErr),
				)
			}
		}
	}

	s.logger.Info("Monthly payment generation finished", zap.String("month", month))
}

// TriggerManualRun triggers a generation run for one month outside the
// schedule. Uses a background context so the run survives the HTTP
// request that triggered it.
func (s *GenerationCronScheduler) TriggerManualRun(month string) error {
	if _, err := billing.ParseBillingMonth(month); err != nil {
		return err
	}

	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	if s.inFlight {
		s.mu.Unlock()
		return ErrGenerationInProgress
	}
	s.inFlight = true
	now := time.Now()
	s.lastRunAt = &now
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.inFlight = false
			s.mu.Unlock()
		}()
		s.runForMonth(context.Background(), month)
	}()
	return nil
}

// GetStatus returns the current status of the cron scheduler
func (s *GenerationCronScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":       s.config.Enabled,
		"is_running":    s.isRunning,
		"in_flight":     s.inFlight,
		"cron_schedule": s.config.CronSchedule,
		"last_run_at":   s.lastRunAt,
		"next_run_at":   s.nextRunAt,
	}
}

// GetNextRunAt returns when the next scheduled run will occur
func (s *GenerationCronScheduler) GetNextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}

// GetLastRunAt returns when the last run occurred
func (s *GenerationCronScheduler) GetLastRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt
}
