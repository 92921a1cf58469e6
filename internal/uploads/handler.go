package uploads

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/analyses"
	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/shared/server/middleware"
	"resume-analyzer/internal/shared/server/respond"
	"resume-analyzer/internal/shared/storage/object"
	"resume-analyzer/internal/shared/telemetry"
	"resume-analyzer/internal/shared/util"
)

const (
	// MaxUploadBytes is the largest accepted résumé file.
	MaxUploadBytes = 10 << 20
	// Room for multipart boundaries and headers on top of the file itself.
	multipartOverhead = 1 << 20

	formField       = "resume"
	uploadNamespace = "uploads"

	defaultExtractTimeout = 20 * time.Second
)

const (
	codeNoFile          = "no_file"
	codeUnsupportedType = "unsupported_type"
	codeFileTooLarge    = "file_too_large"
	codeProcessing      = "processing_failed"
)

const (
	msgNoFile          = "No file uploaded"
	msgUnsupportedType = "Invalid file type. Only PDF, DOC, DOCX, and TXT files are allowed."
	msgFileTooLarge    = "File is too large. Maximum size is 10MB."
	msgProcessing      = "Failed to process uploaded file"
)

// Handler accepts résumé uploads and returns their extracted text.
type Handler struct {
	Store          object.ObjectStore
	ExtractTimeout time.Duration
}

// NewHandler constructs a Handler staging uploads in store.
func NewHandler(store object.ObjectStore, extractTimeout time.Duration) *Handler {
	return &Handler{Store: store, ExtractTimeout: extractTimeout}
}

type uploadResponse struct {
	ResumeText string `json:"resumeText"`
	FileName   string `json:"fileName"`
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload-resume", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	if c.Request.ContentLength > MaxUploadBytes+multipartOverhead {
		respond.Error(c, http.StatusRequestEntityTooLarge, codeFileTooLarge, msgFileTooLarge, nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+multipartOverhead)

	header, err := c.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, codeFileTooLarge, msgFileTooLarge, nil)
		default:
			respond.Error(c, http.StatusBadRequest, codeNoFile, msgNoFile, nil)
		}
		return
	}
	fileName := header.Filename
	if logName, err := util.SanitizeFileName(fileName); err == nil {
		c.Set("fileName", logName)
	}

	if header.Size > MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, codeFileTooLarge, msgFileTooLarge, nil)
		return
	}
	if _, err := extract.DetectFormat(fileName); err != nil {
		respond.Error(c, http.StatusBadRequest, codeUnsupportedType, msgUnsupportedType, []map[string]string{
			{"field": formField, "issue": err.Error()},
		})
		return
	}

	src, err := header.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, codeNoFile, msgNoFile, nil)
		return
	}
	defer src.Close()

	ctx := c.Request.Context()
	// The original name is untrusted; only its extension reaches the store.
	obj, err := h.Store.Put(ctx, uploadNamespace, "resume"+strings.ToLower(filepath.Ext(fileName)), src)
	if err != nil {
		telemetry.Error("upload.stage_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"err":        err,
		})
		respond.Error(c, http.StatusInternalServerError, analyses.ErrorCodeInternal, msgProcessing, nil)
		return
	}

	timeout := h.ExtractTimeout
	if timeout <= 0 {
		timeout = defaultExtractTimeout
	}
	extractCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := extract.FromUpload(extractCtx, h.Store, obj.Key, fileName)
	if err != nil {
		h.extractionFailed(c, err)
		return
	}

	if v := analyses.ValidateResumeText(text); !v.Valid {
		respond.Error(c, http.StatusBadRequest, analyses.ErrorCodeValidation, analyses.ReasonResumeTooShort, []map[string]string{
			{"field": formField, "issue": v.Reason},
		})
		return
	}

	respond.Private(c, uploadResponse{ResumeText: text, FileName: fileName})
}

func (h *Handler) extractionFailed(c *gin.Context, err error) {
	fields := map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"err":        err,
	}
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusBadRequest, codeUnsupportedType, msgUnsupportedType, nil)
	case errors.Is(err, extract.ErrFileProcessing), errors.Is(err, context.DeadlineExceeded):
		telemetry.Warn("upload.extract_failed", fields)
		respond.Error(c, http.StatusUnprocessableEntity, codeProcessing, msgProcessing, nil)
	default:
		telemetry.Error("upload.extract_failed", fields)
		respond.Error(c, http.StatusInternalServerError, analyses.ErrorCodeInternal, msgProcessing, nil)
	}
}
