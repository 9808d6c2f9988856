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

	"github.com/Engineernoob/ai-interview-buddy/internal/config"
	"github.com/Engineernoob/ai-interview-buddy/internal/handler"
	"github.com/Engineernoob/ai-interview-buddy/internal/handler/meta"
	"github.com/Engineernoob/ai-interview-buddy/internal/model/profile"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/session"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/suggest"
	"github.com/Engineernoob/ai-interview-buddy/internal/service/transcribe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	profiles := profile.NewMemoryStore()

	transcriber := transcribe.New(transcribe.Options{
		BaseURL:    cfg.Transcribe.BaseURL,
		Model:      cfg.Transcribe.Model,
		Language:   cfg.Transcribe.Language,
		APIKey:     cfg.Transcribe.APIKey,
		SampleRate: cfg.Pipeline.SampleRate,
		Channels:   cfg.Pipeline.Channels,
	})
	if cfg.Transcribe.Enabled() {
		log.Printf("Transcription service using %s (model %s)", cfg.Transcribe.BaseURL, cfg.Transcribe.Model)
	}

	chatModel, err := cfg.Suggest.NewChatModel(ctx)
	if err != nil {
		log.Printf("warning: failed to initialize chat model: %v", err)
		log.Println("continuing with canned coaching suggestions")
		chatModel = nil
	}

	suggester, err := suggest.NewService(ctx, chatModel, suggest.Options{
		Timeout:       cfg.Suggest.Timeout,
		HistoryWindow: cfg.Pipeline.HistoryWindow,
	})
	if err != nil {
		log.Fatalf("failed to initialize suggestion service: %v", err)
	}
	if suggester.Enabled() {
		log.Println("Suggestion service initialized successfully")
	}

	sessions := session.NewManager(transcriber, suggester, profiles, session.Options{
		ChunkBytes:      cfg.Pipeline.ChunkBytes(),
		BytesPerSecond:  cfg.Pipeline.BytesPerSecond(),
		QueueDepth:      cfg.Pipeline.QueueDepth,
		HistoryWindow:   cfg.Pipeline.HistoryWindow,
		HistoryCapacity: cfg.Pipeline.HistoryCapacity,
	})
	defer sessions.CloseAll()

	llmModel := cfg.Suggest.LocalModel
	if !cfg.Suggest.UseLocalLLM && cfg.Suggest.Ark.Enabled() {
		llmModel = cfg.Suggest.Ark.Model
	}

	router := handler.NewRouter(sessions, profiles, profile.TextExtractor{}, handler.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		MaxFileSize: cfg.Upload.MaxFileSize,
		Meta: meta.Info{
			WhisperModel:    cfg.Transcribe.Model,
			LLMModel:        llmModel,
			UseLocalLLM:     cfg.Suggest.UseLocalLLM,
			TranscribeReady: cfg.Transcribe.Enabled(),
			SuggestReady:    suggester.Enabled(),
		},
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("AI Interview Buddy backend listening on %s", addr)
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
