package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"promptly/internal/analysis"

	"github.com/gin-gonic/gin"
)

// PromptAnalyzer is what the HTTP layer needs from the analysis service.
// Narrowing it to an interface keeps handler tests free of real providers.
type PromptAnalyzer interface {
	AnalyzePrompt(ctx context.Context, raw string) (*analysis.Result, bool, error)
	Metrics() *analysis.Metrics
	CacheLen() int
	QuotaRemaining() (int, int)
}

type AnalyzeHandler struct {
	service PromptAnalyzer
}

func NewAnalyzeHandler(service PromptAnalyzer) *AnalyzeHandler {
	return &AnalyzeHandler{service: service}
}

type analyzeRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type analyzeResponse struct {
	Result      *analysis.Result `json:"result"`
	CacheStatus string           `json:"cache_status"`
	LatencyMS   int64            `json:"latency_ms"`
}

// HandleAnalyze serves POST /api/v1/analyze. Invalid prompts get a 400;
// everything else returns a scored result, AI-backed when possible and
// rule-based otherwise.
func (h *AnalyzeHandler) HandleAnalyze(c *gin.Context) {
	startTime := time.Now()

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	log.Printf("--- New analysis request (prompt: '%.40s...') ---", req.Prompt)

	result, fromCache, err := h.service.AnalyzePrompt(c.Request.Context(), req.Prompt)
	if err != nil {
		var verr *analysis.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error()})
			return
		}
		// The service contract says validation errors are the only errors;
		// anything else is a bug worth a 500.
		log.Printf("ERROR: unexpected analysis error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	cacheStatus := "MISS"
	if fromCache {
		cacheStatus = "HIT"
	}
	c.JSON(http.StatusOK, analyzeResponse{
		Result:      result,
		CacheStatus: cacheStatus,
		LatencyMS:   time.Since(startTime).Milliseconds(),
	})
}

// HandleStats serves GET /api/v1/stats: process counters, cache size and
// residual AI-call quota.
func (h *AnalyzeHandler) HandleStats(c *gin.Context) {
	perMinute, perDay := h.service.QuotaRemaining()
	c.JSON(http.StatusOK, gin.H{
		"metrics":       h.service.Metrics().Snapshot(),
		"cache_entries": h.service.CacheLen(),
		"quota_remaining": gin.H{
			"per_minute": perMinute,
			"per_day":    perDay,
		},
	})
}

// HandleHealth serves GET /healthz with build info.
func HandleHealth(c *gin.Context) {
	info := GetBuildInfo()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.GitCommit,
	})
}
