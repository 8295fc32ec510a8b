package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"convertbox/internal/config"
	"convertbox/internal/infra/convert"
	pg "convertbox/internal/infra/db/postgres"
	"convertbox/internal/infra/logging"
	"convertbox/internal/infra/metrics"
	red "convertbox/internal/infra/redis"
	"convertbox/internal/infra/web"
	"convertbox/internal/infra/worker"
	"convertbox/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, trace level)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	if err := pg.RunMigrations(ctx, cfg.Database.URL); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	uploadRepo := pg.NewPostgresUploadRepo(pool)
	jobRepo := pg.NewJobRepoCacheDecorator(pg.NewJobRepo(pool, tm), redisClient, cfg.Redis.TTL)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, tm, logger)
	uploadUC := usecase.NewUploadUseCase(uploadRepo, logger)
	convertUC := usecase.NewConvertUseCase(jobRepo, uploadRepo, tm, logger)

	// ---- Converter adapters ----
	runner := convert.NewExecRunner()
	adapters := worker.Adapters{
		Documents: convert.NewSofficeConverter(cfg.Tools.Soffice, cfg.Tools.PDFToDocx, cfg.Tools.PDFToText, runner),
		OCR:       convert.NewOcrmypdfEngine(cfg.Tools.OcrMyPDF, runner),
		Images:    convert.NewImageConverter(cfg.Tools.FFmpeg, runner),
		Videos:    convert.NewFFmpegTranscoder(cfg.Tools.FFmpeg, runner),
	}

	// ---- Worker pool + executor ----
	pool2 := worker.NewPool(cfg.Worker.Count, logger)
	pool2.Start(ctx)
	defer pool2.Stop()

	processor := worker.NewJobProcessor(jobRepo, uploadRepo, adapters, worker.Options{
		ScratchRoot:       cfg.Worker.ScratchDir,
		OutputWaitTimeout: cfg.Worker.OutputWaitTimeout,
		PollInterval:      cfg.Worker.PollInterval,
		OCRLanguage:       cfg.Tools.OCRLanguage,
	}, logger)
	go processor.Start(ctx, pool2)

	// ---- HTTP server ----
	sessions := web.NewSessionManager(cfg.Server.SessionSecret, !cfg.Runtime.Dev, 24*time.Hour)
	srv := web.NewServer(convertUC, uploadUC, userUC, sessions, rateLimiter, web.Limits{
		MaxUploadBytes:    cfg.Limits.MaxUploadBytes,
		RequestsPerMinute: cfg.Limits.RequestsPerMinute,
	}, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
}
