package coachprofile

import (
	"coach_marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OperatorHandler serves the back-office review commands. Every response is either
// {"ok": true} or {"error": "..."}.
type OperatorHandler struct {
	service Service
	logger  *zap.Logger
}

// NewOperatorHandler creates a new operator handler.
func NewOperatorHandler(service Service, logger *zap.Logger) *OperatorHandler {
	return &OperatorHandler{
		service: service,
		logger:  logger.Named("CoachProfileOperatorHandler"),
	}
}

// RegisterRoutes expects a group already guarded by middleware.OperatorAuth.
func (h *OperatorHandler) RegisterRoutes(operator *gin.RouterGroup) {
	group := operator.Group("/coach-profiles")
	group.POST("/publish", h.publish)
	group.POST("/start-review", h.startReview)
	group.POST("/reject", h.reject)
	group.GET("/:coachUserId/review-events", h.reviewEvents)
}

func (h *OperatorHandler) publish(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.service.Publish(c.Request.Context(), req.CoachUserID); err != nil {
		common.RespondOperatorError(c, err)
		return
	}
	common.RespondOperatorOK(c)
}

func (h *OperatorHandler) startReview(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.service.StartReview(c.Request.Context(), req.CoachUserID); err != nil {
		common.RespondOperatorError(c, err)
		return
	}
	common.RespondOperatorOK(c)
}

func (h *OperatorHandler) reject(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	if err := h.service.Reject(c.Request.Context(), req.CoachUserID, req.RejectionReason); err != nil {
		common.RespondOperatorError(c, err)
		return
	}
	common.RespondOperatorOK(c)
}

func (h *OperatorHandler) reviewEvents(c *gin.Context) {
	coachUserID, err := parseUintParam(c.Param("coachUserId"))
	if err != nil {
		common.RespondOperatorError(c, common.ErrNotAcceptable.WithDetails("coachUserId must be a positive integer"))
		return
	}
	page, pageSize := common.GetPaginationParams(c)
	events, pagination, err := h.service.ListReviewEvents(c.Request.Context(), coachUserID, page, pageSize)
	if err != nil {
		common.RespondOperatorError(c, err)
		return
	}
	common.RespondPaginated(c, "Review events retrieved successfully.", ToReviewEventResponses(events), pagination)
}

// bind maps any malformed body to 406.
func (h *OperatorHandler) bind(c *gin.Context) (OperatorCommandRequest, bool) {
	var req OperatorCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Malformed operator request", zap.String("path", c.FullPath()), zap.Error(err))
		common.RespondOperatorError(c, common.ErrNotAcceptable.WithDetails("coachUserId must be a positive integer"))
		return req, false
	}
	return req, true
}
