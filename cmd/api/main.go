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

	"github.com/imagechat/backend/internal/config"
	"github.com/imagechat/backend/internal/handler"
	"github.com/imagechat/backend/internal/service/conversation"
	"github.com/imagechat/backend/internal/service/nlp"
	"github.com/imagechat/backend/internal/service/session"
	"github.com/imagechat/backend/internal/service/vision"
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

	if !cfg.AI.Enabled() {
		log.Fatal("model credentials missing: set ARK_API_KEY (or AK/SK) plus VISION_MODEL and NLP_MODEL")
	}

	visionModel, err := cfg.AI.NewChatModel(ctx, cfg.AI.VisionModel)
	if err != nil {
		log.Fatalf("failed to create vision model: %v", err)
	}
	nlpModel, err := cfg.AI.NewChatModel(ctx, cfg.AI.NLPModel)
	if err != nil {
		log.Fatalf("failed to create nlp model: %v", err)
	}

	visionSvc := vision.NewService(visionModel)
	nlpSvc, err := nlp.NewService(ctx, nlpModel)
	if err != nil {
		log.Fatalf("failed to initialize nlp service: %v", err)
	}

	store := session.NewStore()
	convSvc := conversation.NewService(store, visionSvc, nlpSvc)

	sweeper := session.NewSweeper(store, cfg.Session.SweepInterval, cfg.Session.MaxAge)
	sweeper.Start(ctx)
	defer sweeper.Stop()
	log.Printf("session sweeper running every %s, max age %s", cfg.Session.SweepInterval, cfg.Session.MaxAge)

	router := handler.NewRouter(convSvc, cfg.Upload.MaxBytes)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("image chat backend listening on %s", serverCfg.Addr)
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
