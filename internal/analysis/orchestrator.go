package analysis

import (
	"context"
	"encoding/json"
	"log"

	"promptly/internal/cache"
	"promptly/internal/ratelimit"
)

// Service is the façade the rest of the system calls. It checks the cache,
// consults the rate limiter, selects the AI-backed or rule-based path, stores
// the result, and returns a unified Result. On valid input it always returns
// a result: every provider-side failure degrades to the deterministic
// rule-based analysis instead of failing the request.
type Service struct {
	validator *Validator
	store     cache.Store
	limiter   *ratelimit.Limiter
	ai        *AIAnalyzer
	rules     *RuleAnalyzer
	metrics   *Metrics
}

func NewService(
	validator *Validator,
	store cache.Store,
	limiter *ratelimit.Limiter,
	ai *AIAnalyzer,
	rules *RuleAnalyzer,
) *Service {
	return &Service{
		validator: validator,
		store:     store,
		limiter:   limiter,
		ai:        ai,
		rules:     rules,
		metrics:   &Metrics{},
	}
}

// Metrics exposes the service counters for the stats endpoint.
func (s *Service) Metrics() *Metrics {
	return s.metrics
}

// CacheLen reports the number of entries in the underlying cache store.
func (s *Service) CacheLen() int {
	return s.store.Len()
}

// QuotaRemaining reports the residual AI-call quota (per-minute, per-day).
func (s *Service) QuotaRemaining() (int, int) {
	return s.limiter.Remaining()
}

// AnalyzePrompt is the sole public entry point. The returned bool reports
// whether the result was served from cache. The only error it ever returns
// is *ValidationError; that is a caller contract violation, not a fallback
// case, so it never reaches the cache or the rate limiter.
func (s *Service) AnalyzePrompt(ctx context.Context, raw string) (*Result, bool, error) {
	s.metrics.Requests.Add(1)

	text, err := s.validator.Validate(raw)
	if err != nil {
		s.metrics.ValidationRejected.Add(1)
		log.Printf("🚫 Validation rejected: %v", err)
		return nil, false, err
	}

	key := cache.Fingerprint(text)
	if cached, ok := s.store.Get(ctx, key); ok {
		var result Result
		if json.Unmarshal([]byte(cached), &result) == nil {
			s.metrics.CacheHits.Add(1)
			log.Printf("✅ Cache HIT (provenance: %s)", result.Provenance)
			return &result, true, nil
		}
		// Undecodable entry: treat as a miss and overwrite below.
		log.Printf("WARNING: Discarding undecodable cache entry %s", key)
	}

	result := s.analyze(ctx, text)

	if encoded, err := json.Marshal(result); err != nil {
		log.Printf("WARNING: Failed to marshal result for caching: %v", err)
	} else {
		s.store.Set(ctx, key, string(encoded))
	}

	log.Printf("📊 Analysis complete: overall %.1f (%s), provenance %s",
		result.Scores.Overall, describeScore(result.Scores.Overall), result.Provenance)
	return result, false, nil
}

// analyze selects the AI-backed path when the quota allows, and the
// rule-based path otherwise. The fallback decision is an explicit branch on
// the AI outcome, so both paths are first-class and testable.
func (s *Service) analyze(ctx context.Context, text string) *Result {
	if !s.limiter.Allow() {
		s.metrics.Fallbacks.Add(1)
		log.Printf("🚦 AI call quota exhausted, using rule-based analysis")
		return s.rules.Analyze(text)
	}

	result, err := s.ai.Analyze(ctx, text)
	if err != nil {
		s.metrics.Fallbacks.Add(1)
		log.Printf("⚠️ AI analysis failed (%v), using rule-based fallback", err)
		return s.rules.Analyze(text)
	}

	s.metrics.AISuccesses.Add(1)
	return result
}
