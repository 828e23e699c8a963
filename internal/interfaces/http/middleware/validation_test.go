package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crvcrv26/repo-sub002/internal/interfaces/http/dto"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	type submitRequest struct {
		PaymentID string  `json:"payment_id" binding:"required,uuid"`
		Amount    float64 `json:"amount" binding:"required,gte=0"`
		Notes     string  `json:"notes" binding:"omitempty,max=500"`
	}

	SetupValidator()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/submit", func(c *gin.Context) {
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/submit", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("reports each invalid field by its json name", func(t *testing.T) {
		w := post(`{"payment_id": "not-a-uuid", "amount": -5}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 2)

		fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
		assert.Contains(t, fields, "payment_id")
		assert.Contains(t, fields, "amount")
	})

	t.Run("malformed JSON still yields the validation envelope", func(t *testing.T) {
		w := post(`{"payment_id": `)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Empty(t, resp.Error.Details)
	})

	t.Run("valid payload passes through", func(t *testing.T) {
		w := post(`{"payment_id": "7b6a3e8e-3a64-4b0e-9f6c-0cf7a3f3d2a1", "amount": 3300}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestFieldMessage(t *testing.T) {
	type bounded struct {
		Name  string `binding:"required"`
		Tier  string `binding:"oneof=ADMIN SUPERADMIN"`
		Month string `binding:"datetime=2006-01"`
		Count int    `binding:"min=1"`
		Label string `binding:"max=10"`
	}

	v := validator.New()
	err := v.Struct(bounded{Tier: "AGENT", Month: "July", Count: 0, Label: "this is far too long"})
	require.Error(t, err)

	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	messages := map[string]string{}
	for _, e := range verrs {
		messages[e.StructField()] = fieldMessage(e)
	}

	assert.Equal(t, "This field is required", messages["Name"])
	assert.Equal(t, "Must be one of: ADMIN SUPERADMIN", messages["Tier"])
	assert.Equal(t, "Must match the format 2006-01", messages["Month"])
	assert.Equal(t, "Must be at least 1", messages["Count"])
	assert.Equal(t, "Must be at most 10 characters", messages["Label"])
}
