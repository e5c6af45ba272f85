package coachprofile

import (
	"errors"
	"strconv"

	"coach_marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler serves the coach's own profile endpoints and the public profile lookup.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new coach profile handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("CoachProfileHandler"),
	}
}

// RegisterRoutes sets up the coach routes. authMW and coachRoleMW run before the draft
// is ensured, so every handler below can rely on an existing draft.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, coachRoleMW gin.HandlerFunc) {
	profile := router.Group("/coach/profile", authMW, coachRoleMW, EnsureDraftMiddleware(h.service, h.logger))
	{
		profile.GET("/draft", h.getDraft)
		profile.PATCH("/draft", h.updateDraft)
		profile.PUT("/draft/specializations", h.setSpecializations)
		profile.POST("/draft/certificates", h.addCertificate)
		profile.DELETE("/draft/certificates/:certificateId", h.removeCertificate)

		profile.GET("/review", h.getReview)
		profile.POST("/review/request", h.requestReview)
		profile.POST("/revert", h.revertField)
	}
}

// RegisterPublicRoutes sets up unauthenticated profile lookups.
func (h *Handler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/coaches/:userId", h.getPublished)
}

// EnsureDraftMiddleware creates the coach's draft on the first coach request.
func EnsureDraftMiddleware(service Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := common.GetUserIDFromContext(c)
		if userID == 0 {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
			return
		}
		if _, err := service.EnsureDraft(c.Request.Context(), userID); err != nil {
			logger.Warn("Could not ensure draft profile", zap.Uint("userID", userID), zap.Error(err))
			common.RespondWithError(c, err)
			return
		}
		c.Next()
	}
}

func (h *Handler) getDraft(c *gin.Context) {
	draft, err := h.service.GetDraft(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Draft profile retrieved successfully.", ToCoachProfileResponse(draft))
}

func (h *Handler) updateDraft(c *gin.Context) {
	var req UpdateDraftRequest
	if !h.bind(c, &req) {
		return
	}
	draft, err := h.service.UpdateDraft(c.Request.Context(), common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Draft profile updated successfully.", ToCoachProfileResponse(draft))
}

func (h *Handler) setSpecializations(c *gin.Context) {
	var req SetSpecializationsRequest
	if !h.bind(c, &req) {
		return
	}
	draft, err := h.service.SetDraftSpecializations(c.Request.Context(), common.GetUserIDFromContext(c), req.SpecializationIDs)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Draft specializations updated successfully.", ToCoachProfileResponse(draft))
}

func (h *Handler) addCertificate(c *gin.Context) {
	var req AddCertificateRequest
	if !h.bind(c, &req) {
		return
	}
	draft, err := h.service.AddDraftCertificate(c.Request.Context(), common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Certificate added successfully.", ToCoachProfileResponse(draft))
}

func (h *Handler) removeCertificate(c *gin.Context) {
	certificateID, err := parseUintParam(c.Param("certificateId"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid certificate ID format."))
		return
	}
	if err := h.service.RemoveDraftCertificate(c.Request.Context(), common.GetUserIDFromContext(c), certificateID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) getReview(c *gin.Context) {
	overview, err := h.service.GetReviewOverview(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Review overview retrieved successfully.", overview)
}

func (h *Handler) requestReview(c *gin.Context) {
	draft, err := h.service.RequestReview(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Review requested successfully.", ToCoachProfileResponse(draft))
}

func (h *Handler) revertField(c *gin.Context) {
	var req RevertFieldRequest
	if !h.bind(c, &req) {
		return
	}
	draft, err := h.service.RevertField(c.Request.Context(), common.GetUserIDFromContext(c), req.Field)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Field reverted successfully.", ToCoachProfileResponse(draft))
}

func (h *Handler) getPublished(c *gin.Context) {
	userID, err := parseUintParam(c.Param("userId"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid coach ID format."))
		return
	}
	profile, err := h.service.GetPublishedProfile(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Coach profile retrieved successfully.", ToCoachProfileResponse(profile))
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Debug("Invalid coach profile payload", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return false
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request body: "+err.Error()))
		return false
	}
	return true
}

func parseUintParam(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errors.New("id must be positive")
	}
	return uint(id), nil
}
