package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestEngine(store *ClientStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Middleware(store))
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return engine
}

func TestMiddleware_AllowsWithinBurst(t *testing.T) {
	engine := newTestEngine(NewClientStore(100, 5))

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		engine.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, w.Code)
		}
	}
}

func TestMiddleware_BlocksOverBurstWith429(t *testing.T) {
	// rps near zero so the bucket never refills during the test.
	engine := newTestEngine(NewClientStore(0.001, 1))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header on 429")
	}
}

func TestClientStore_CleanupDropsIdleClients(t *testing.T) {
	store := NewClientStore(10, 1)
	store.idleTTL = time.Millisecond

	before := store.get("1.2.3.4")
	time.Sleep(3 * time.Millisecond)
	store.Cleanup()

	after := store.get("1.2.3.4")
	if before == after {
		t.Fatalf("expected a fresh limiter after cleanup")
	}
}
