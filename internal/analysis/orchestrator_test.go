package analysis

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"promptly/internal/cache"
	"promptly/internal/ratelimit"
)

type serviceFixture struct {
	svc    *Service
	client *fakeClient
	now    *time.Time
}

func newServiceFixture(t *testing.T, client *fakeClient, perMinute int) *serviceFixture {
	t.Helper()
	now := time.Now()
	clock := func() time.Time { return now }

	svc := NewService(
		NewValidator(5000),
		cache.NewMemoryStore(24*time.Hour, cache.WithClock(clock)),
		ratelimit.NewLimiter(perMinute, 100, ratelimit.WithNow(clock)),
		NewAIAnalyzer(client, AIConfig{ModelID: "gemini-1.5-flash", Timeout: time.Second}),
		NewRuleAnalyzer(DefaultRulesConfig()),
	)
	return &serviceFixture{svc: svc, client: client, now: &now}
}

func TestService_AIPath(t *testing.T) {
	f := newServiceFixture(t, &fakeClient{response: validModelResponse}, 10)

	res, cached, err := f.svc.AnalyzePrompt(context.Background(), "Write a summary of Go routines.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached {
		t.Fatalf("first call must not be served from cache")
	}
	if res.Provenance != ProvenanceAI {
		t.Fatalf("expected ai provenance, got %s", res.Provenance)
	}
	assertScoresInRange(t, res.Scores)
}

func TestService_CacheIdempotence(t *testing.T) {
	f := newServiceFixture(t, &fakeClient{response: validModelResponse}, 10)
	ctx := context.Background()
	prompt := "Write a summary of Go routines."

	first, _, err := f.svc.AnalyzePrompt(ctx, prompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	minuteBefore, dayBefore := f.svc.QuotaRemaining()

	second, cached, err := f.svc.AnalyzePrompt(ctx, prompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cached {
		t.Fatalf("second identical call must hit the cache")
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cached result must be identical:\n%+v\n%+v", first, second)
	}
	if f.client.calls != 1 {
		t.Fatalf("provider must not be invoked on a cache hit, got %d calls", f.client.calls)
	}
	minuteAfter, dayAfter := f.svc.QuotaRemaining()
	if minuteAfter != minuteBefore || dayAfter != dayBefore {
		t.Fatalf("cache hit must not consume a rate-limit slot")
	}
}

func TestService_NormalizationSharesCacheEntry(t *testing.T) {
	f := newServiceFixture(t, &fakeClient{response: validModelResponse}, 10)
	ctx := context.Background()

	if _, _, err := f.svc.AnalyzePrompt(ctx, "Write a summary of Go routines."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, cached, err := f.svc.AnalyzePrompt(ctx, "  WRITE a   summary of GO routines.  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cached {
		t.Fatalf("case/whitespace variants must share one cache entry")
	}
	if f.client.calls != 1 {
		t.Fatalf("expected a single provider call, got %d", f.client.calls)
	}
}

func TestService_CacheExpiryReanalyzes(t *testing.T) {
	f := newServiceFixture(t, &fakeClient{response: validModelResponse}, 10)
	ctx := context.Background()
	prompt := "Write a summary of Go routines."

	f.svc.AnalyzePrompt(ctx, prompt)
	*f.now = f.now.Add(25 * time.Hour)

	_, cached, err := f.svc.AnalyzePrompt(ctx, prompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached {
		t.Fatalf("entry past TTL must be treated as a miss")
	}
	if f.client.calls != 2 {
		t.Fatalf("expected re-analysis after expiry, got %d calls", f.client.calls)
	}
}

func TestService_RateLimitFallsBackToRules(t *testing.T) {
	f := newServiceFixture(t, &fakeClient{response: validModelResponse}, 2)
	ctx := context.Background()

	// Distinct prompts so the cache does not absorb the calls.
	prompts := []string{
		"Write a summary of Go routines.",
		"Write a summary of Go channels.",
		"Write a summary of Go generics.",
	}

	for i, p := range prompts[:2] {
		res, _, err := f.svc.AnalyzePrompt(ctx, p)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
		if res.Provenance != ProvenanceAI {
			t.Fatalf("call %d: expected ai provenance, got %s", i+1, res.Provenance)
		}
	}

	res, _, err := f.svc.AnalyzePrompt(ctx, prompts[2])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Provenance != ProvenanceRules {
		t.Fatalf("over-quota call must be rule-based, got %s", res.Provenance)
	}
	assertScoresInRange(t, res.Scores)
	if f.client.calls != 2 {
		t.Fatalf("denied call must not reach the provider, got %d calls", f.client.calls)
	}
	perMinute, _ := f.svc.QuotaRemaining()
	if perMinute != 0 {
		t.Fatalf("denied call must not consume a slot, remaining = %d", perMinute)
	}
}

func TestService_MalformedResponseFallsBackToRules(t *testing.T) {
	f := newServiceFixture(t, &fakeClient{response: "not even close to JSON"}, 10)

	res, _, err := f.svc.AnalyzePrompt(context.Background(), "Write a summary of Go routines.")
	if err != nil {
		t.Fatalf("AI failures must never surface, got %v", err)
	}
	if res.Provenance != ProvenanceRules {
		t.Fatalf("expected rule-based fallback, got %s", res.Provenance)
	}
	assertScoresInRange(t, res.Scores)
}

func TestService_ProviderErrorFallsBackToRules(t *testing.T) {
	f := newServiceFixture(t, &fakeClient{err: errors.New("connection refused")}, 10)

	res, _, err := f.svc.AnalyzePrompt(context.Background(), "Write a summary of Go routines.")
	if err != nil {
		t.Fatalf("AI failures must never surface, got %v", err)
	}
	if res.Provenance != ProvenanceRules {
		t.Fatalf("expected rule-based fallback, got %s", res.Provenance)
	}
}

func TestService_FallbackResultIsCached(t *testing.T) {
	f := newServiceFixture(t, &fakeClient{err: errors.New("offline")}, 10)
	ctx := context.Background()
	prompt := "Write a summary of Go routines."

	first, _, _ := f.svc.AnalyzePrompt(ctx, prompt)
	second, cached, _ := f.svc.AnalyzePrompt(ctx, prompt)
	if !cached {
		t.Fatalf("fallback results must be cached too")
	}
	if second.Provenance != ProvenanceRules || !reflect.DeepEqual(first, second) {
		t.Fatalf("cached fallback must preserve provenance and scores")
	}
	if f.client.calls != 1 {
		t.Fatalf("expected one provider attempt, got %d", f.client.calls)
	}
}

func TestService_ValidationErrorNeverReachesCacheOrLimiter(t *testing.T) {
	f := newServiceFixture(t, &fakeClient{response: validModelResponse}, 10)
	ctx := context.Background()

	for _, bad := range []string{"", "   ", string(make([]byte, 6000))} {
		_, _, err := f.svc.AnalyzePrompt(ctx, bad)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected *ValidationError for %q, got %v", bad, err)
		}
	}

	if f.svc.CacheLen() != 0 {
		t.Fatalf("invalid input must not be cached")
	}
	perMinute, _ := f.svc.QuotaRemaining()
	if perMinute != 10 {
		t.Fatalf("invalid input must not consume quota, remaining = %d", perMinute)
	}
	if f.client.calls != 0 {
		t.Fatalf("invalid input must not reach the provider")
	}
}

func TestService_MetricsCountPaths(t *testing.T) {
	f := newServiceFixture(t, &fakeClient{response: "garbage"}, 10)
	ctx := context.Background()

	f.svc.AnalyzePrompt(ctx, "Write a summary of Go routines.") // fallback
	f.svc.AnalyzePrompt(ctx, "Write a summary of Go routines.") // cache hit
	f.svc.AnalyzePrompt(ctx, "")                                // rejected

	snap := f.svc.Metrics().Snapshot()
	if snap.Requests != 3 {
		t.Fatalf("requests = %d, want 3", snap.Requests)
	}
	if snap.Fallbacks != 1 {
		t.Fatalf("fallbacks = %d, want 1", snap.Fallbacks)
	}
	if snap.CacheHits != 1 {
		t.Fatalf("cache hits = %d, want 1", snap.CacheHits)
	}
	if snap.ValidationRejected != 1 {
		t.Fatalf("validation rejected = %d, want 1", snap.ValidationRejected)
	}
	if snap.AISuccesses != 0 {
		t.Fatalf("ai successes = %d, want 0", snap.AISuccesses)
	}
}
