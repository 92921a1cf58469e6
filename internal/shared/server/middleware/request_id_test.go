package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func requestIDRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		*seen = RequestIDFromContext(c)
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	var seen string
	resp := httptest.NewRecorder()
	requestIDRouter(&seen).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	header := resp.Header().Get("X-Request-Id")
	if _, err := uuid.Parse(header); err != nil {
		t.Fatalf("expected generated uuid, got %q", header)
	}
	if seen != header {
		t.Fatalf("context id %q does not match header %q", seen, header)
	}
}

func TestRequestIDKeepsClientValue(t *testing.T) {
	var seen string
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "trace-abc-123")
	resp := httptest.NewRecorder()
	requestIDRouter(&seen).ServeHTTP(resp, req)

	if seen != "trace-abc-123" || resp.Header().Get("X-Request-Id") != "trace-abc-123" {
		t.Fatalf("expected client id to be kept, got %q / %q", seen, resp.Header().Get("X-Request-Id"))
	}
}

func TestRequestIDReplacesUnsafeClientValue(t *testing.T) {
	for _, bad := range []string{"has space", strings.Repeat("a", 200), "tab\tid"} {
		var seen string
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Request-Id", bad)
		resp := httptest.NewRecorder()
		requestIDRouter(&seen).ServeHTTP(resp, req)

		if seen == bad {
			t.Fatalf("expected %q to be replaced", bad)
		}
		if _, err := uuid.Parse(seen); err != nil {
			t.Fatalf("expected generated uuid for %q, got %q", bad, seen)
		}
	}
}

func TestRequestIDFromContextWithoutMiddleware(t *testing.T) {
	if got := RequestIDFromContext(nil); got != "" {
		t.Fatalf("expected empty id for nil context, got %q", got)
	}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := RequestIDFromContext(c); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}
