// @title Media Summarizer API
// @version 1.0
// @description Summarizes YouTube videos and voice notes asynchronously and chats about their transcripts.
// @host localhost:5000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/tsago2003/gpt/docs"
	"github.com/tsago2003/gpt/internal/assistant"
	"github.com/tsago2003/gpt/internal/cache"
	"github.com/tsago2003/gpt/internal/config"
	"github.com/tsago2003/gpt/internal/db"
	"github.com/tsago2003/gpt/internal/handler"
	"github.com/tsago2003/gpt/internal/llm"
	"github.com/tsago2003/gpt/internal/logger"
	"github.com/tsago2003/gpt/internal/orchestrator"
	"github.com/tsago2003/gpt/internal/remoteconfig"
	"github.com/tsago2003/gpt/internal/service"
	"github.com/tsago2003/gpt/internal/speech"
	"github.com/tsago2003/gpt/internal/store"
	"github.com/tsago2003/gpt/internal/summarizer"
	"github.com/tsago2003/gpt/internal/transcript"
	"github.com/tsago2003/gpt/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	ctx := context.Background()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)

	gdb, err := db.InitDB(cfg.Database.URL)
	if err != nil {
		log.Error(ctx, "Failed to connect to database: %v", err)
		os.Exit(1)
	}
	log.Info(ctx, "Connected to PostgreSQL")

	var tasks store.Store = store.NewTaskStore(gdb)
	var claimer worker.Claimer
	if cfg.Redis.Addr != "" {
		tc := cache.NewTaskCache(cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB), log)
		if err := tc.Ping(ctx); err != nil {
			log.Warn(ctx, "Redis unavailable at %s, running without cache: %v", cfg.Redis.Addr, err)
		} else {
			tasks = cache.NewStore(tasks, tc)
			claimer = tc
			log.Info(ctx, "Connected to Redis at %s", cfg.Redis.Addr)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	remote := remoteconfig.NewFileProvider(cfg.RemoteConfig.Path, log)
	llmFactory := llm.NewFactory(remote, log)
	remote.OnChange(func(remoteconfig.Values) { llmFactory.Reset() })
	if cfg.RemoteConfig.Watch {
		go func() {
			if err := remote.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error(ctx, "Remote config watcher stopped: %v", err)
			}
		}()
	}

	transcripts := transcript.New(transcript.Options{
		BaseURL: cfg.Transcript.BaseURL,
		APIKey:  cfg.Transcript.APIKey,
		APIHost: cfg.Transcript.APIHost,
		Timeout: cfg.Transcript.Timeout,
	}, log)
	speechClient := speech.New(speech.Options{
		TempDir:          cfg.Speech.TempDir,
		DownloadTimeout:  cfg.Speech.DownloadTimeout,
		MaxDownloadBytes: cfg.Speech.MaxDownloadBytes,
	}, llmFactory, log)
	orch := orchestrator.New(tasks, transcripts, speechClient, summarizer.New(llmFactory, log), log)

	pool := worker.New(cfg.Worker.MaxConcurrent, cfg.Worker.QueueSize, claimer, log)
	pool.Start()

	svc := service.New(tasks, orch, pool, assistant.New(llmFactory, log), remote, service.Defaults{
		Model:           cfg.Defaults.Model,
		SummaryLanguage: cfg.Defaults.SummaryLanguage,
	}, log)

	r := gin.Default()
	r.Use(handler.CORS(cfg.Server.CORSOrigins))
	handler.RegisterRoutes(r,
		handler.NewTaskHandler(svc, os.TempDir(), log),
		handler.AuthGate(remote, []byte(cfg.Auth.JWTSecret), log),
	)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info(ctx, "Server is running on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info(ctx, "Received signal %v, shutting down", sig)
	case err := <-errChan:
		log.Error(ctx, "Server error: %v", err)
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "HTTP shutdown: %v", err)
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "Worker pool shutdown: %v", err)
	}
	cancel()

	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info(ctx, "Shutdown complete")
}
