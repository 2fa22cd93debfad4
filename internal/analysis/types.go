// Package analysis contains the core of the service: input validation, the
// deterministic rule-based scorer, the AI-backed scorer, and the orchestrator
// that wires them together behind a single entry point.
package analysis

import (
	"math"
	"sync/atomic"
)

// Provenance records which path produced a result.
type Provenance string

const (
	ProvenanceAI    Provenance = "ai"
	ProvenanceRules Provenance = "rule-based"
)

// Scores holds the five quality dimensions plus the overall score, each in
// [1,10]. Overall is the equal-weight mean rounded to one decimal.
type Scores struct {
	Clarity         float64 `json:"clarity"`
	Specificity     float64 `json:"specificity"`
	Context         float64 `json:"context"`
	Constraints     float64 `json:"constraints"`
	GoalOrientation float64 `json:"goal_orientation"`
	Overall         float64 `json:"overall"`
}

// Result is the complete outcome of analyzing one prompt. It is a value owned
// by the caller; nothing in here points back into service state.
type Result struct {
	Scores         Scores     `json:"scores"`
	Strengths      []string   `json:"strengths"`
	Weaknesses     []string   `json:"weaknesses"`
	Suggestions    []string   `json:"suggestions"`
	ImprovedPrompt string     `json:"improved_prompt"`
	Confidence     float64    `json:"confidence"`
	Provenance     Provenance `json:"provenance"`
	WordCount      int        `json:"word_count"`
	SentenceCount  int        `json:"sentence_count"`
	Complexity     string     `json:"complexity"`
}

// ValidationError reports malformed caller input. It is the only error
// AnalyzePrompt ever returns: every provider-side failure degrades to the
// rule-based result instead.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid prompt: " + e.Reason
}

// MalformedResponseError reports a provider response that does not match the
// expected schema: unparsable JSON, missing fields, non-numeric scores.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed model response: " + e.Reason
}

// Metrics counts what happened since process start. All fields are updated
// atomically; Snapshot returns a consistent-enough copy for the stats
// endpoint.
type Metrics struct {
	Requests           atomic.Int64
	CacheHits          atomic.Int64
	AISuccesses        atomic.Int64
	Fallbacks          atomic.Int64
	ValidationRejected atomic.Int64
}

// MetricsSnapshot is the serializable view of Metrics.
type MetricsSnapshot struct {
	Requests           int64 `json:"requests"`
	CacheHits          int64 `json:"cache_hits"`
	AISuccesses        int64 `json:"ai_successes"`
	Fallbacks          int64 `json:"fallbacks"`
	ValidationRejected int64 `json:"validation_rejected"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Requests:           m.Requests.Load(),
		CacheHits:          m.CacheHits.Load(),
		AISuccesses:        m.AISuccesses.Load(),
		Fallbacks:          m.Fallbacks.Load(),
		ValidationRejected: m.ValidationRejected.Load(),
	}
}

// round1 rounds to one decimal place, the precision of every reported score.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// clampScore forces a score into the [1,10] range.
func clampScore(v float64) float64 {
	return math.Max(1.0, math.Min(10.0, v))
}

// finalizeScores clamps and rounds the five dimensions and recomputes Overall
// as the equal-weight mean.
func finalizeScores(s Scores) Scores {
	s.Clarity = round1(clampScore(s.Clarity))
	s.Specificity = round1(clampScore(s.Specificity))
	s.Context = round1(clampScore(s.Context))
	s.Constraints = round1(clampScore(s.Constraints))
	s.GoalOrientation = round1(clampScore(s.GoalOrientation))
	s.Overall = round1((s.Clarity + s.Specificity + s.Context + s.Constraints + s.GoalOrientation) / 5)
	return s
}

// complexityLevel bands a prompt by word count, mirroring the levels the UI
// reports.
func complexityLevel(wordCount int) string {
	switch {
	case wordCount < 20:
		return "Simple"
	case wordCount < 50:
		return "Moderate"
	case wordCount < 100:
		return "Complex"
	default:
		return "Advanced"
	}
}

// describeScore is a human label for an overall score, used in log lines.
func describeScore(overall float64) string {
	switch {
	case overall >= 8:
		return "excellent"
	case overall >= 6:
		return "good"
	case overall >= 4:
		return "fair"
	default:
		return "needs work"
	}
}
