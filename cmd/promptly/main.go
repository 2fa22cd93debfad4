package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promptly/internal/analysis"
	"promptly/internal/cache"
	"promptly/internal/llm"
	"promptly/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// main is the entry point for the application. Its primary role is the
// composition root: it loads configuration, initializes all services, injects
// dependencies, and starts the server.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	buildInfo := GetBuildInfo()
	log.Printf("🚀 Starting Promptly | Version: %s | Commit: %s", buildInfo.Version, buildInfo.GitCommit)

	// 1. LOAD CONFIGURATION
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("❌ FATAL: Configuration Error: %v", err)
	}
	log.Println("✅ Configuration loaded.")

	// 2. INITIALIZE SERVICES
	store, err := initializeCacheStore(cfg)
	if err != nil {
		log.Fatalf("❌ FATAL: %v", err)
	}

	geminiClient, err := llm.NewGeminiClient(cfg.APIKey, cfg.ModelID)
	if err != nil {
		log.Fatalf("❌ FATAL: Could not create Gemini client: %v", err)
	}

	aiAnalyzer := analysis.NewAIAnalyzer(geminiClient, analysis.AIConfig{
		ModelID:     cfg.ModelID,
		Timeout:     cfg.AITimeout,
		Temperature: cfg.Generation.Temperature,
		TopP:        cfg.Generation.TopP,
		MaxTokens:   cfg.Generation.MaxOutputTokens,
		Verbose:     cfg.LogLevel == "DEBUG",
	})

	service := analysis.NewService(
		analysis.NewValidator(cfg.MaxPromptLength),
		store,
		ratelimit.NewLimiter(cfg.PerMinuteQuota, cfg.PerDayQuota),
		aiAnalyzer,
		analysis.NewRuleAnalyzer(cfg.Heuristics),
	)
	handler := NewAnalyzeHandler(service)
	log.Println("✅ All services initialized.")

	// 3. SETUP AND RUN THE WEB SERVER
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()

	clientStore := ratelimit.NewClientStore(cfg.HTTPRateRPS, cfg.HTTPRateBurst)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	clientStore.StartJanitor(janitorCtx)

	engine.GET("/healthz", HandleHealth)
	v1 := engine.Group("/api/v1", ratelimit.Middleware(clientStore))
	{
		v1.POST("/analyze", handler.HandleAnalyze)
		v1.GET("/stats", handler.HandleStats)
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%s", cfg.Port), Handler: engine}
	runServerWithGracefulShutdown(srv)
}

// initializeCacheStore picks the cache backend: Redis when REDIS_ADDR is set,
// process-local memory otherwise.
func initializeCacheStore(cfg *AppConfig) (cache.Store, error) {
	if cfg.RedisAddr == "" {
		log.Println("✅ Using in-memory analysis cache.")
		return cache.NewMemoryStore(cfg.CacheTTL), nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Printf("✅ Using Redis analysis cache at %s.", cfg.RedisAddr)
	return cache.NewRedisStore(rdb, cfg.CacheTTL), nil
}

// runServerWithGracefulShutdown handles the server lifecycle.
func runServerWithGracefulShutdown(srv *http.Server) {
	go func() {
		log.Printf("👂 Promptly is listening on http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Listen error: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server shutdown failed:", err)
	}

	log.Println("👋 Server exited gracefully.")
}
