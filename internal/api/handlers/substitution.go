package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/metrics"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// SubstitutionResponse 單一食材的替代建議
type SubstitutionResponse struct {
	Ingredient string `json:"ingredient"`
	substitution.Result
}

// SubstitutionQuery 單一食材替代建議的查詢參數
type SubstitutionQuery struct {
	Ingredient string `form:"ingredient"`
	UseAI      bool   `form:"use_ai"`
}

// BatchSubstitutionRequest 批次替代建議請求，單次最多 50 項
type BatchSubstitutionRequest struct {
	Ingredients []string `json:"ingredients" binding:"required,min=1,max=50"`
	UseAI       bool     `json:"use_ai"`
}

// BatchSubstitutionResponse 批次替代建議響應
type BatchSubstitutionResponse struct {
	Results []substitution.BatchResult `json:"results"`
}

// SubstitutionHandler 替代建議處理器
type SubstitutionHandler struct {
	resolver *substitution.Resolver
	metrics  *metrics.Metrics
	debug    bool
}

// NewSubstitutionHandler 創建替代建議處理器
func NewSubstitutionHandler(resolver *substitution.Resolver, m *metrics.Metrics, debug bool) *SubstitutionHandler {
	return &SubstitutionHandler{resolver: resolver, metrics: m, debug: debug}
}

// Suggest GET /substitutions?ingredient=&use_ai=
func (h *SubstitutionHandler) Suggest(c *gin.Context) {
	var q SubstitutionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err), h.debug)
		return
	}
	name := strings.TrimSpace(q.Ingredient)
	if name == "" {
		respondError(c, common.ErrIngredientRequired, h.debug)
		return
	}

	res := h.resolver.Suggest(c.Request.Context(), name, q.UseAI)
	h.metrics.RecordSubstitution(string(res.Source))
	c.JSON(http.StatusOK, SubstitutionResponse{Ingredient: name, Result: res})
}

// SuggestBatch POST /substitutions/batch
func (h *SubstitutionHandler) SuggestBatch(c *gin.Context) {
	var req BatchSubstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if failedField(err, "Ingredients", "required", "min") {
			err = common.ErrIngredientRequired.Wrap(err)
		}
		respondError(c, bindError(err), h.debug)
		return
	}

	results := h.resolver.SuggestAll(c.Request.Context(), req.Ingredients, req.UseAI)
	for _, r := range results {
		h.metrics.RecordSubstitution(string(r.Source))
	}
	c.JSON(http.StatusOK, BatchSubstitutionResponse{Results: results})
}
