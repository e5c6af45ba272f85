package coachsearch

import (
	"coach_marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the public coach search.
type Handler struct {
	indexer *Indexer
	logger  *zap.Logger
}

// NewHandler creates a new search handler.
func NewHandler(indexer *Indexer, logger *zap.Logger) *Handler {
	return &Handler{indexer: indexer, logger: logger.Named("CoachSearchHandler")}
}

// RegisterRoutes adds GET /coaches/search.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/coaches/search", h.search)
}

func (h *Handler) search(c *gin.Context) {
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Warn("Search coaches: invalid query parameters", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid query parameters: "+err.Error()))
		return
	}
	query.Page, query.PageSize = common.GetPaginationParams(c)

	docs, pagination, err := h.indexer.Search(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Coaches retrieved successfully.", docs, pagination)
}
