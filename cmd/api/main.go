package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/teamyukt/honeynet/internal/analysis/detect"
	"github.com/teamyukt/honeynet/internal/analysis/extract"
	"github.com/teamyukt/honeynet/internal/config"
	"github.com/teamyukt/honeynet/internal/handler"
	"github.com/teamyukt/honeynet/internal/model/persona"
	"github.com/teamyukt/honeynet/internal/service/ai"
	"github.com/teamyukt/honeynet/internal/service/engagement"
	"github.com/teamyukt/honeynet/internal/service/honeypot"
	"github.com/teamyukt/honeynet/internal/service/report"
	"github.com/teamyukt/honeynet/internal/service/responder"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using system environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	var textGen responder.TextGenerator
	if cfg.AI.Enabled() {
		aiSvc, err := ai.NewService(ctx, cfg.AI, logger)
		if err != nil {
			logger.Warn("failed to initialize AI service, replies fall back to pattern pools", zap.Error(err))
		} else {
			logger.Info("AI service initialized", zap.String("model", cfg.AI.Model))
			textGen = aiSvc
		}
	} else {
		logger.Info("model credentials not configured, generative tier disabled")
	}

	archive, err := report.NewArchive(cfg.Report.ArchivePath)
	if err != nil {
		logger.Fatal("failed to open report archive", zap.Error(err))
	}
	defer archive.Close()

	var sink report.Sink
	if httpSink := report.NewHTTPSink(cfg.Report, logger); httpSink != nil {
		sink = httpSink
		logger.Info("report callback enabled", zap.String("url", cfg.Report.CallbackURL))
	}
	dispatcher := report.NewDispatcher(archive, sink, logger)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	detector := detect.New(cfg.Detection)
	extractor := extract.New(cfg.Extraction, nil)
	selector := engagement.NewSelector(cfg.Engagement)
	gen := responder.NewGenerator(textGen, rng, cfg.Engagement.HistoryWindow, logger)

	svc := honeypot.NewService(cfg, detector, extractor, selector, gen, personaStore, dispatcher, logger)

	router := handler.NewRouter(svc, cfg.Auth.APIKey, logger)

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("honeypot listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
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
