package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedContext() (*gin.Context, *httptest.ResponseRecorder, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/operator/coach-profiles/publish", nil)
	c.Set(LoggerKey, zap.New(core))
	return c, w, logs
}

func TestRespondOperatorError_HidesServerSideDetails(t *testing.T) {
	c, w, logs := newObservedContext()

	RespondOperatorError(c, ErrInternalServer.WithDetails("Published profile has no id after upsert."))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Published profile has no id after upsert.", logs.All()[0].ContextMap()["details"])
}

func TestRespondOperatorError_ClientErrorsKeepTheirMessage(t *testing.T) {
	c, w, logs := newObservedContext()

	RespondOperatorError(c, ErrNotFound.WithDetails("Coach profile not found."))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Coach profile not found."}`, w.Body.String())
	assert.Equal(t, 0, logs.Len())
}

func TestRespondOperatorError_UntypedErrorIsAttachedOnce(t *testing.T) {
	c, w, logs := newObservedContext()

	RespondOperatorError(c, errors.New("connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	require.Len(t, c.Errors, 1)
	assert.Equal(t, 0, logs.Len(), "logging is left to the error middleware")
}

func TestRespondWithError_UntypedErrorIsAttachedOnce(t *testing.T) {
	c, w, logs := newObservedContext()

	RespondWithError(c, errors.New("connection reset"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), ErrInternalServer.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
	require.Len(t, c.Errors, 1)
	assert.Equal(t, 0, logs.Len())
}
