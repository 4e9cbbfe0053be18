package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	sessionsCreatedTotal atomic.Uint64
	resumeUploadsTotal   atomic.Uint64
	llmRequestsTotal     atomic.Uint64
	llmFailuresTotal     atomic.Uint64
	nerRequestsTotal     atomic.Uint64
	nerFailuresTotal     atomic.Uint64

	externalCallDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncSessionsCreated increments the created sessions counter.
func IncSessionsCreated() {
	sessionsCreatedTotal.Add(1)
}

// IncResumeUploads increments the processed uploads counter.
func IncResumeUploads() {
	resumeUploadsTotal.Add(1)
}

// ObserveLLMCall records one generative call and its outcome.
func ObserveLLMCall(durationMs float64, failed bool) {
	llmRequestsTotal.Add(1)
	if failed {
		llmFailuresTotal.Add(1)
	}
	observeDuration(durationMs)
}

// ObserveNERCall records one entity-recognition call and its outcome.
func ObserveNERCall(durationMs float64, failed bool) {
	nerRequestsTotal.Add(1)
	if failed {
		nerFailuresTotal.Add(1)
	}
	observeDuration(durationMs)
}

// LLMFailures returns the failed generative call count.
func LLMFailures() uint64 {
	return llmFailuresTotal.Load()
}

func observeDuration(value float64) {
	if value < 0 {
		value = 0
	}
	externalCallDuration.Observe(value)
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
	writeCounter(&buf, "sessions_created_total", "Total sessions created", sessionsCreatedTotal.Load())
	writeCounter(&buf, "resume_uploads_total", "Total resume uploads processed", resumeUploadsTotal.Load())
	writeCounter(&buf, "llm_requests_total", "Total generative service calls", llmRequestsTotal.Load())
	writeCounter(&buf, "llm_failures_total", "Total failed generative service calls", llmFailuresTotal.Load())
	writeCounter(&buf, "ner_requests_total", "Total entity recognition calls", nerRequestsTotal.Load())
	writeCounter(&buf, "ner_failures_total", "Total failed entity recognition calls", nerFailuresTotal.Load())
	writeHistogram(&buf, "external_call_duration_ms", "External service call duration in milliseconds", externalCallDuration.Snapshot())
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

// Observe puts value in the first bucket whose bound is >= value.
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
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
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
