// Package handlers 實作購物清單、替代建議與推薦的 HTTP 處理器
package handlers

import (
	"errors"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kaushick2000/cookmate-backend/internal/api/middleware"
	"github.com/kaushick2000/cookmate-backend/internal/core/recipe"
	"github.com/kaushick2000/cookmate-backend/internal/core/shopping"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// toCustomError 將領域錯誤轉換為 API 錯誤
func toCustomError(err error) *common.CustomError {
	var (
		ce    *common.CustomError
		verrs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.As(err, &verrs):
		return common.ErrInvalidRequest.Wrap(common.NewValidationError(describeValidation(verrs)))
	case errors.Is(err, recipe.ErrNotFound):
		return common.ErrRecipeNotFound.Wrap(err)
	case errors.Is(err, recipe.ErrInvalidMealPlan):
		return common.ErrInvalidRequest.Wrap(err)
	case errors.Is(err, shopping.ErrNoActiveMealPlans):
		return common.ErrNoActiveMealPlans.Wrap(err)
	case common.IsValidationError(err):
		return common.ErrInvalidRequest.Wrap(err)
	default:
		return common.ErrInternalError.Wrap(err)
	}
}

// bindError 綁定失敗一律是客戶端錯誤，欄位驗證錯誤交給 toCustomError 描述
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return err
	}
	return common.ErrInvalidRequest.Wrap(err)
}

// failedField 檢查欄位是否因指定的規則驗證失敗
func failedField(err error, field string, tags ...string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.StructField() == field && slices.Contains(tags, fe.Tag()) {
			return true
		}
	}
	return false
}

func describeValidation(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Field() + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return strings.Join(msgs, "; ")
}

// respondError 記錄並寫入錯誤響應
func respondError(c *gin.Context, err error, debug bool) {
	ce := toCustomError(err)
	fields := []zap.Field{
		zap.String("code", ce.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", common.RequestID(c)),
		zap.Error(err),
	}
	if ce.Status >= 500 {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogDebug("請求被拒絕", fields...)
	}
	_ = c.Error(err)
	common.WriteError(c, ce, debug)
}

// userID 取得呼叫者身分，未登入時為空字串
func userID(c *gin.Context) string {
	return c.GetHeader(middleware.UserIDHeader)
}
