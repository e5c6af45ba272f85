package middleware

import (
	"coach_marketplace_backend/internal/common"
	"coach_marketplace_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdentityKey stores the whole verified identity.
const IdentityKey = "identity"

// AuthMiddleware authenticates coach and customer sessions.
func AuthMiddleware(verifier shared.SessionVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(common.AuthorizationHeader) == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		token := common.GetTokenFromContext(c)
		if token == "" {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Debug("Session verification failed", zap.Error(err))
			common.RespondWithError(c, err)
			return
		}

		c.Set(common.UserIDKey, identity.UserID)
		c.Set(common.UserEmailKey, identity.Email)
		c.Set(common.UserRoleKey, identity.Role)
		if identity.FirebaseUID != "" {
			c.Set(common.FirebaseUIDKey, identity.FirebaseUID)
		}
		c.Set(IdentityKey, identity)

		c.Next()
	}
}

// RoleAuthMiddleware checks that the authenticated user has one of the allowed roles.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := common.GetUserRoleFromContext(c)
		if userRole == "" {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("User role not found in context."))
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
	}
}
