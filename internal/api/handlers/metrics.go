package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// ServicePolicy is the generation policy this instance runs with
type ServicePolicy struct {
	Themes          int
	MinViable       int
	RetryBudget     int
	Concurrency     int
	MinContentChars int
	ProviderTimeout time.Duration
	HistoryBackend  string
	HistoryLimit    int
	AuthMode        string
}

type MetricsHandler struct {
	startTime time.Time
	version   string
	policy    ServicePolicy
}

func NewMetricsHandler(version string, policy ServicePolicy) *MetricsHandler {
	return &MetricsHandler{
		startTime: time.Now(),
		version:   version,
		policy:    policy,
	}
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
)

// formatUptime formats the uptime duration with seconds rounded to 2 decimal places
func formatUptime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % secondsPerMinute
	seconds := d.Seconds() - float64(hours*secondsPerHour) - float64(minutes*secondsPerMinute)

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%.2fs", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm%.2fs", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", seconds)
}

type MetricsResponse struct {
	Status     string           `json:"status"`
	Uptime     string           `json:"uptime"`
	Timestamp  string           `json:"timestamp"`
	Version    string           `json:"version"`
	StartTime  string           `json:"start_time"`
	System     SystemMetrics    `json:"system"`
	Generation GenerationPolicy `json:"generation"`
	History    HistoryPolicy    `json:"history"`
	AuthMode   string           `json:"auth_mode"`
	Dialects   []string         `json:"dialects"`
}

type GenerationPolicy struct {
	Themes            int   `json:"themes"`
	MinViable         int   `json:"min_viable"`
	RetryBudget       int   `json:"retry_budget"`
	Concurrency       int   `json:"concurrency"`
	MinContentChars   int   `json:"min_content_chars"`
	ProviderTimeoutMS int64 `json:"provider_timeout_ms"`
}

type HistoryPolicy struct {
	Backend string `json:"backend"`
	Limit   int    `json:"limit"`
}

type SystemMetrics struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
	MemTotalMB   uint64 `json:"mem_total_mb"`
	NumGC        uint32 `json:"num_gc"`
}

const (
	bytesToMB = 1024 * 1024
)

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime)

	metrics := MetricsResponse{
		Status:    "healthy",
		Uptime:    formatUptime(uptime),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		StartTime: h.startTime.UTC().Format(time.RFC3339),
		System: SystemMetrics{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAllocMB:   m.Alloc / bytesToMB,
			MemTotalMB:   m.TotalAlloc / bytesToMB,
			NumGC:        m.NumGC,
		},
		Generation: GenerationPolicy{
			Themes:            h.policy.Themes,
			MinViable:         h.policy.MinViable,
			RetryBudget:       h.policy.RetryBudget,
			Concurrency:       h.policy.Concurrency,
			MinContentChars:   h.policy.MinContentChars,
			ProviderTimeoutMS: h.policy.ProviderTimeout.Milliseconds(),
		},
		History: HistoryPolicy{
			Backend: h.policy.HistoryBackend,
			Limit:   h.policy.HistoryLimit,
		},
		AuthMode: h.policy.AuthMode,
		Dialects: []string{"openai", "anthropic", "gemini"},
	}

	c.JSON(http.StatusOK, metrics)
}
