package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alphogen/video-runner/internal/api"
	"github.com/alphogen/video-runner/internal/config"
	"github.com/alphogen/video-runner/internal/generate"
	"github.com/alphogen/video-runner/internal/jobstore"
	"github.com/alphogen/video-runner/internal/media"
	"github.com/alphogen/video-runner/internal/publisher"
	"github.com/alphogen/video-runner/internal/services"
	"github.com/alphogen/video-runner/internal/webhook"
	"github.com/alphogen/video-runner/internal/worker"
)

func main() {
	log.Println("Starting AlphoGen video runner...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Job store: direct Postgres when DATABASE_URL is set, Supabase REST otherwise
	var store jobstore.Store
	if cfg.DatabaseURL != "" {
		pg, err := jobstore.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pg.Close()
		store = pg
		log.Println("Job store: Postgres")
	} else {
		store = jobstore.NewSupabase(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		log.Println("Job store: Supabase REST")
	}

	// Media pipeline
	ffmpeg, err := media.NewFFmpeg(cfg.TempDir)
	if err != nil {
		log.Fatalf("Failed to initialize ffmpeg scratch dir: %v", err)
	}

	// Generation services: nil client = no credential, synthesize locally
	var wan services.SceneClient
	if cfg.WANConfigured() {
		wan = services.NewWANService(cfg.WANAPIKey, cfg.WANAPIURL, cfg.SceneDurationSec)
		log.Println("Scene generation: WAN 2.2+")
	} else {
		log.Println("Scene generation: synthetic (no WAN credential)")
	}

	var qwen services.NarrationClient
	if cfg.QwenConfigured() {
		qwen = services.NewQwenService(cfg.QwenAPIKey, cfg.QwenAPIURL)
		log.Println("Narration: Qwen-TTS")
	} else {
		log.Println("Narration: synthetic (no Qwen credential)")
	}

	scenes := generate.NewSceneGenerator(wan, ffmpeg, cfg.TempDir, cfg.SceneCount, cfg.SceneDurationSec)
	narration := generate.NewNarrationGenerator(qwen, ffmpeg, cfg.TempDir, cfg.NarrationDurationSec)
	assembler := media.NewAssembler(ffmpeg)

	pub, err := publisher.New(ctx, publisher.Options{
		Endpoint:  r2Endpoint(cfg),
		AccessKey: cfg.R2AccessKey,
		SecretKey: cfg.R2SecretKey,
		Bucket:    cfg.R2Bucket,
	})
	if err != nil {
		log.Fatalf("Failed to initialize publisher: %v", err)
	}

	notifier := webhook.NewNotifier(cfg.WebhookURL)

	w := worker.New(store, scenes, narration, assembler, pub, notifier,
		cfg.PollInterval, cfg.ErrorBackoff, cfg.BatchLimit)

	// Ops HTTP surface
	handler := api.NewHandler(w)
	router := api.NewRouter(handler, api.RouterConfig{
		APIKey:             cfg.RunnerAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(gctx)
	})

	g.Go(func() error {
		log.Printf("Ops server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Runner exited with error: %v", err)
	}

	log.Println("Runner exited")
}

// r2Endpoint returns the endpoint only when the full destination is
// configured, so a partial R2 config degrades to no uploads instead of
// failing at startup.
func r2Endpoint(cfg *config.Config) string {
	if !cfg.R2Configured() {
		return ""
	}
	return cfg.R2Endpoint
}
