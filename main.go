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

	"firehorse/config"
	"firehorse/controllers"
	"firehorse/global"
	"firehorse/metrics"
	"firehorse/providers"
	"firehorse/router"
	"firehorse/services"
	"firehorse/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "firehorse",
		Short:         "Fire Horse AI art generator and gallery",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert sample artworks into an empty gallery",
			RunE:  func(cmd *cobra.Command, args []string) error { return seed(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "hash-password [password]",
			Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				hash, err := utils.HashPassword(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hash)
				return nil
			},
		},
	)
	return root
}

func serve() error {
	config.InitConfig()
	defer config.Close()
	cfg := config.AppConfig
	logger := global.Logger

	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return err
	}

	list := make([]providers.Provider, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		p, err := providers.New(pc)
		if err != nil {
			logger.Warn("skipping image provider", zap.String("name", pc.Name), zap.Error(err))
			continue
		}
		list = append(list, p)
	}
	chain := providers.NewChain(list...)

	var events services.EventPublisher = services.NoopPublisher{}
	if global.RabbitChannel != nil {
		events = services.NewRabbitPublisher(global.RabbitChannel, cfg.RabbitMQ.Queue)
	}

	store := services.NewArtworkStore(global.Db)
	stats := services.NewStatsCache(store, cfg.Stats.CacheTTL)
	ranking := services.NewRankingService(global.RedisDB, store)

	ctrl := controllers.New(controllers.Deps{
		AppName: cfg.App.Name,
		Version: version,
		Gallery: services.NewGalleryService(store, ranking, stats, events, m, logger),
		Generator: services.NewGenerationService(services.GenerationDeps{
			Store:    store,
			Chain:    chain,
			Fallback: services.NewFallbackSelector(),
			Events:   events,
			Stats:    stats,
			Metrics:  m,
			Logger:   logger,
		}),
		Providers: chain,
		Admin: controllers.AdminConfig{
			PasswordHash: cfg.Admin.PasswordHash,
			JWTSecret:    cfg.Admin.JWTSecret,
			TokenTTL:     cfg.Admin.TokenTTL,
		},
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router.SetupRouter(ctrl, logger, registry, cfg.App.TrustedProxies),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Fire Horse gallery started", zap.String("addr", srv.Addr), zap.Int("providers", chain.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func seed(ctx context.Context) error {
	config.InitConfig()
	defer config.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	n, err := services.NewArtworkStore(global.Db).Seed(ctx)
	if err != nil {
		return err
	}
	global.Logger.Info("seed finished", zap.Int("inserted", n))
	return nil
}
