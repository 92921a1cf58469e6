package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"resume-analyzer/internal/shared/telemetry"
)

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	restore := telemetry.SetLogger(zap.New(core))
	defer restore()

	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		Error(c, http.StatusBadRequest, "validation_error", "Resume content is required", []map[string]string{
			{"field": "resumeText", "issue": "Resume content is required"},
		})
	})
	r.GET("/y", func(c *gin.Context) {
		Error(c, http.StatusInternalServerError, "internal_error", "boom", nil)
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "validation_error" || body.Error.Message != "Resume content is required" {
		t.Fatalf("unexpected body %+v", body)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/y", nil))
	if string(resp.Body.Bytes()) != `{"error":{"code":"internal_error","message":"boom"}}` {
		t.Fatalf("expected details to be omitted, got %s", resp.Body.String())
	}

	entries := logs.FilterMessage("http.error").All()
	if len(entries) != 2 || entries[0].Level != zapcore.WarnLevel || entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("expected warn then error logs, got %v", entries)
	}
}
