package common

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OperatorErrorResponse is the error body of the back-office API.
type OperatorErrorResponse struct {
	Error string `json:"error"`
}

// OperatorOKResponse is the success body of back-office commands.
type OperatorOKResponse struct {
	OK bool `json:"ok"`
}

// RespondOperatorOK writes {"ok": true}.
func RespondOperatorOK(c *gin.Context) {
	c.JSON(http.StatusOK, OperatorOKResponse{OK: true})
}

const operatorInternalError = "Internal server error"

// RespondOperatorError maps typed errors onto their status with an {"error": ...} body.
// Untyped errors become an opaque 500 and are attached to the context for logging.
// Server-side failures never expose their details to the caller.
func RespondOperatorError(c *gin.Context, err error) {
	apiErr, ok := IsAPIError(err)
	if !ok {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, OperatorErrorResponse{Error: operatorInternalError})
		return
	}
	if apiErr.StatusCode >= http.StatusInternalServerError {
		RequestLogger(c).Error("Operator request failed",
			zap.String("code", apiErr.Code),
			zap.String("message", apiErr.Message),
			zap.Any("details", apiErr.Details),
		)
		c.AbortWithStatusJSON(apiErr.StatusCode, OperatorErrorResponse{Error: operatorInternalError})
		return
	}
	c.AbortWithStatusJSON(apiErr.StatusCode, OperatorErrorResponse{Error: operatorMessage(apiErr)})
}

func operatorMessage(apiErr *APIError) string {
	switch d := apiErr.Details.(type) {
	case string:
		if d != "" {
			return d
		}
	case map[string]string:
		for field, msg := range d {
			return fmt.Sprintf("%s: %s", field, msg)
		}
	}
	return apiErr.Message
}
