package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dialtone-ai/dialtone/internal/config"
	"github.com/dialtone-ai/dialtone/internal/handler"
	"github.com/dialtone-ai/dialtone/internal/handler/events"
	"github.com/dialtone-ai/dialtone/internal/service/ai"
	callservice "github.com/dialtone-ai/dialtone/internal/service/call"
	"github.com/dialtone-ai/dialtone/internal/service/capture"
	"github.com/dialtone-ai/dialtone/internal/service/speech"
	"github.com/dialtone-ai/dialtone/internal/service/telephony"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store := callservice.NewStore()

	var generator callservice.Generator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - callers will hear the fallback utterance")
		} else {
			generator = aiService
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("model credentials not configured, skipping AI initialization")
	}

	var updater *telephony.Client
	if cfg.Telephony.Enabled() {
		updater, err = telephony.NewClient(cfg.Telephony)
		if err != nil {
			log.Fatalf("failed to initialize telephony client: %v", err)
		}
		log.Println("telephony client initialized successfully")
	} else {
		log.Println("telephony credentials not configured, outbound calls and mid-call replies disabled")
	}

	var transcriber capture.Transcriber
	if cfg.Transcribe.Enabled() {
		transcriber = speech.NewDeepgramClient(speech.Config{
			APIKey:   cfg.Transcribe.APIKey,
			BaseURL:  cfg.Transcribe.BaseURL,
			Model:    cfg.Transcribe.Model,
			Language: cfg.Transcribe.Language,
		})
		log.Println("transcription client initialized successfully")
	} else {
		log.Println("transcription credentials not configured, recordings will re-prompt the caller")
	}

	var pipeline callservice.Capturer
	if transcriber != nil {
		fetcher := capture.NewHTTPFetcher(cfg.Telephony.AccountSID, cfg.Telephony.AuthToken)
		pipeline = capture.NewPipeline(fetcher, transcriber, capture.RetryPolicy{
			MaxAttempts: cfg.Call.FetchAttempts,
			Backoff:     cfg.Call.FetchBackoff,
			SettleDelay: cfg.Call.FetchSettleDelay,
		})
	}

	hub := events.NewHub()
	coordinator := callservice.NewCoordinator(store, generator, cfg.Call.GenerationBudget)
	lifecycle := callservice.NewLifecycle(store, cfg.Call.CleanupGrace)
	orchestrator := callservice.NewOrchestrator(store, coordinator, lifecycle, pipeline, hub)

	deps := handler.Deps{
		Orchestrator:  orchestrator,
		Hub:           hub,
		PublicBaseURL: cfg.Server.PublicBaseURL,
		RecordTimeout: cfg.Call.RecordTimeout,
		WebhookBudget: cfg.Call.WebhookBudget,
	}
	if updater != nil {
		deps.Updater = updater
		deps.Dialer = updater
	}

	router := handler.NewRouter(deps)
	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Dialtone call orchestrator listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
