package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCustomErrorWrap(t *testing.T) {
	cause := errors.New("db down")
	err := ErrInternalError.Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeInternalError, err.Code)
	assert.Equal(t, "db down", err.Error())
	assert.Nil(t, ErrInternalError.Err, "wrapping must not mutate the predefined error")
}

func TestToResponseHidesDetailsOutsideDebug(t *testing.T) {
	err := ErrRecipeNotFound.Wrap(errors.New("recipe 7: not found"))

	assert.Empty(t, err.ToResponse(false).Details)
	assert.Equal(t, "recipe 7: not found", err.ToResponse(true).Details)
	assert.Equal(t, ErrCodeRecipeNotFound, err.ToResponse(false).Code)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("limit must be positive")
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(errors.New("other")))
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	WriteError(c, ErrNoActiveMealPlans, false)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), ErrCodeNoActiveMealPlans)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	WriteError(c, errors.New("boom"), false)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}
