package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	analysisAITotal        atomic.Uint64
	analysisFallbackTotal  atomic.Uint64
	analysisRejectedTotal  atomic.Uint64
	analysisFailedTotal    atomic.Uint64
	analysisCacheHitsTotal atomic.Uint64

	extractionTotal       atomic.Uint64
	extractionFailedTotal atomic.Uint64

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncAnalysisAI counts analyses produced by the AI model.
func IncAnalysisAI() {
	analysisAITotal.Add(1)
}

// IncAnalysisFallback counts analyses produced by the heuristic after an AI failure.
func IncAnalysisFallback() {
	analysisFallbackTotal.Add(1)
}

// IncAnalysisRejected counts requests rejected by input validation.
func IncAnalysisRejected() {
	analysisRejectedTotal.Add(1)
}

// IncAnalysisFailed counts analyses that could not be persisted.
func IncAnalysisFailed() {
	analysisFailedTotal.Add(1)
}

// IncAnalysisCacheHit counts AI results served from the result cache.
func IncAnalysisCacheHit() {
	analysisCacheHitsTotal.Add(1)
}

// IncExtractionSucceeded counts documents whose text was extracted.
func IncExtractionSucceeded() {
	extractionTotal.Add(1)
}

// IncExtractionFailed counts documents that could not be decoded.
func IncExtractionFailed() {
	extractionTotal.Add(1)
	extractionFailedTotal.Add(1)
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "analysis_ai_total", "Analyses scored by the AI model", analysisAITotal.Load())
	writeCounter(&buf, "analysis_fallback_total", "Analyses scored by the heuristic fallback", analysisFallbackTotal.Load())
	writeCounter(&buf, "analysis_rejected_total", "Analysis requests rejected by validation", analysisRejectedTotal.Load())
	writeCounter(&buf, "analysis_failed_total", "Analyses that failed to persist", analysisFailedTotal.Load())
	writeCounter(&buf, "analysis_cache_hits_total", "AI results served from cache", analysisCacheHitsTotal.Load())
	writeCounter(&buf, "extraction_total", "Documents processed by the extractor", extractionTotal.Load())
	writeCounter(&buf, "extraction_failed_total", "Documents the extractor could not decode", extractionFailedTotal.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// ObserveAnalysisDuration records an analysis duration.
func ObserveAnalysisDuration(d time.Duration) {
	ObserveAnalysisDurationMs(float64(d) / float64(time.Millisecond))
}
