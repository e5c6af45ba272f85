package specialization

import (
	"errors"
	"strconv"

	"coach_marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler serves the public catalog and its back-office management endpoints.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new specialization handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("SpecializationHandler"),
	}
}

// RegisterRoutes sets up the public catalog routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/specializations")
	group.GET("", h.list)
	group.GET("/:id", h.get)
}

// RegisterOperatorRoutes sets up catalog management under an operator-authenticated group.
func (h *Handler) RegisterOperatorRoutes(operator *gin.RouterGroup) {
	group := operator.Group("/specializations")
	group.POST("", h.create)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Specializations retrieved successfully.", ToSpecializationResponses(items))
}

func (h *Handler) get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid specialization ID format."))
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Specialization retrieved successfully.", ToSpecializationResponse(item))
}

func (h *Handler) create(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		common.RespondOperatorError(c, err)
		return
	}
	common.RespondCreated(c, "Specialization created successfully.", ToSpecializationResponse(item))
}

func (h *Handler) update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		common.RespondOperatorError(c, common.ErrNotAcceptable.WithDetails("Invalid specialization ID format."))
		return
	}
	req, ok := h.bind(c)
	if !ok {
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		common.RespondOperatorError(c, err)
		return
	}
	common.RespondOK(c, "Specialization updated successfully.", ToSpecializationResponse(item))
}

func (h *Handler) delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		common.RespondOperatorError(c, common.ErrNotAcceptable.WithDetails("Invalid specialization ID format."))
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		common.RespondOperatorError(c, err)
		return
	}
	common.RespondOperatorOK(c)
}

func (h *Handler) bind(c *gin.Context) (UpsertSpecializationRequest, bool) {
	var req UpsertSpecializationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid specialization payload", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondOperatorError(c, common.ErrNotAcceptable.WithDetails(common.FormatValidationErrors(ve)))
			return req, false
		}
		common.RespondOperatorError(c, common.ErrNotAcceptable.WithDetails("Malformed request body."))
		return req, false
	}
	return req, true
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
