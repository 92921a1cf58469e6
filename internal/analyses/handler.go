package analyses

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resume-analyzer/internal/shared/server/middleware"
	"resume-analyzer/internal/shared/server/respond"
)

const analyzeFailedMessage = "Failed to analyze resume. Please try again."

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze-resume", h.analyzeResume)
	rg.GET("/analysis/:id", h.getAnalysis)
	rg.GET("/recent-analyses", h.recentAnalyses)
}

type analyzeRequest struct {
	ResumeText     *string `json:"resumeText"`
	JobDescription *string `json:"jobDescription"`
}

type analyzeResponse struct {
	ID           string    `json:"id"`
	OverallScore int       `json:"overallScore"`
	Feedback     Feedback  `json:"feedback"`
	CreatedAt    time.Time `json:"createdAt"`
	IsDemo       bool      `json:"isDemo"`
}

func (h *Handler) analyzeResume(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "Invalid request body", []map[string]string{
			{"field": "body", "issue": "must be a JSON object with a string resumeText"},
		})
		return
	}

	in := RunInput{JobDescription: req.JobDescription}
	if req.ResumeText != nil {
		in.ResumeText = *req.ResumeText
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	res, err := h.Svc.Run(ctx, in)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, verr.Reason, []map[string]string{
				{"field": verr.Field, "issue": verr.Reason},
			})
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, analyzeFailedMessage, nil)
		}
		return
	}

	c.Set("analysisId", res.Analysis.ID)
	respond.Private(c, analyzeResponse{
		ID:           res.Analysis.ID,
		OverallScore: res.Analysis.OverallScore,
		Feedback:     res.Analysis.Feedback,
		CreatedAt:    res.Analysis.CreatedAt,
		IsDemo:       res.IsDemo,
	})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysis, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, ErrorCodeNotFound, "Analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "Failed to fetch analysis", nil)
		}
		return
	}
	respond.Private(c, analysis)
}

func (h *Handler) recentAnalyses(c *gin.Context) {
	limit := DefaultRecentLimit
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	analyses, err := h.Svc.Recent(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "Failed to fetch recent analyses", nil)
		return
	}
	respond.Private(c, analyses)
}
