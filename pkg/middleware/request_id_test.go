package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	g := gin.New()
	g.Use(RequestID(), AccessLog())
	g.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rw.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	require.Equal(t, generated, rw.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rw = httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, "abc-123", rw.Header().Get(RequestIDHeader))
}
