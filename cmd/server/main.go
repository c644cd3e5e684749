package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/portfolio-dashboard/internal/cache"
	"github.com/example/portfolio-dashboard/internal/config"
	"github.com/example/portfolio-dashboard/internal/db"
	httpserver "github.com/example/portfolio-dashboard/internal/http"
	kafkaconsumer "github.com/example/portfolio-dashboard/internal/kafka"
	"github.com/example/portfolio-dashboard/internal/portfolio"
	"github.com/example/portfolio-dashboard/internal/quote"
	"github.com/example/portfolio-dashboard/internal/refresh"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbpool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	defer dbpool.Close()

	store := portfolio.New(dbpool)

	respCache, err := cache.New(1<<26 /* ~64MB */, cfg.CacheTTL)
	if err != nil {
		logger.Fatal("cache", zap.Error(err))
	}

	quotes := quote.NewFinnhub(cfg.FinnhubAPIKey, logger)
	history := quote.NewAlphaVantage(cfg.AlphaVantageKey, logger)

	// The scheduler reads portfolios from the local store unless a remote
	// backend is configured.
	var source portfolio.Source = store
	if cfg.PortfolioBaseURL != "" {
		source = portfolio.NewClient(cfg.PortfolioBaseURL, logger)
	}
	sched := refresh.New(source, quotes, cfg.RefreshInterval, logger)
	defer sched.Stop()

	if cfg.KafkaBrokers != "" {
		cons := kafkaconsumer.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, store, logger)
		go func() {
			if err := cons.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("consumer", zap.Error(err))
				cancel()
			}
		}()
	}

	s := httpserver.NewServer(store, quotes, history, sched, respCache, logger, cfg.CORSOrigin)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: s.R}
	go func() {
		logger.Info("http listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http", zap.Error(err))
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShut()
	_ = server.Shutdown(ctxShut)
	logger.Info("shutdown complete")
}
