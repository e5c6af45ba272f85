package middleware

import (
	"crypto/subtle"
	"net/http"

	"coach_marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OperatorAuth guards back-office endpoints with a static shared secret sent as a bearer token.
// A missing header is 406 and a wrong secret is 401.
func OperatorAuth(secret string, logger *zap.Logger) gin.HandlerFunc {
	expected := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeader)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusNotAcceptable, common.OperatorErrorResponse{Error: "Missing authorization header"})
			return
		}

		provided := common.ParseBearer(header)
		if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			logger.Warn("Operator request with invalid credential",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.OperatorErrorResponse{Error: "Unauthorized"})
			return
		}
		c.Next()
	}
}
