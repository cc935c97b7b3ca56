package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-openapi/runtime/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"slurm-eta/internal/app/docs"
	"slurm-eta/internal/app/router"
	"slurm-eta/internal/module/availability"
	"slurm-eta/internal/pkg/client/exec"
	"slurm-eta/internal/pkg/client/postgres"
	"slurm-eta/internal/pkg/client/slurmrest"
	"slurm-eta/internal/pkg/options"
	"slurm-eta/internal/snapshot"
)

type serveOptions struct {
	listenAddr       string
	shutdownTimeout  time.Duration
	slurmrestTimeout time.Duration
	configFile       string
	postgresDSN      string
	binDir           string
}

func serve(logger *slog.Logger, o serveOptions) error {
	cfg := &options.Config{}
	if o.configFile != "" {
		var err error
		if cfg, err = options.Load(o.configFile); err != nil {
			return err
		}
	}
	dsn := o.postgresDSN
	if dsn == "" {
		dsn = cfg.Postgres.DSN
	}

	registry := postgres.Registry{Static: options.NewStaticRegistry(cfg.Clusters)}
	if dsn != "" {
		dbctx, dbcancel := context.WithTimeout(context.Background(), 5*time.Second)
		db, err := postgres.New(dbctx, dsn,
			postgres.WithMaxConns(4),
			postgres.WithMaxConnIdleTime(5*time.Minute),
			postgres.WithApplicationName("slurm-eta"),
		)
		dbcancel()
		if err != nil {
			return fmt.Errorf("unable to connect cluster registry: %w", err)
		}
		defer db.Close()
		registry.DB = db
	}

	pool := snapshot.NewPool(registry, newSourceFactory(logger, o), func(src snapshot.Source) *snapshot.Reader {
		return snapshot.NewReader(src, logger)
	})

	r := router.New(logger, availability.NewRouter(pool, logger))
	docs.SwaggerInfo.BasePath = "/api/v1"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/api/v1/swagger.json", gin.WrapH(middleware.Spec("/api/v1", []byte(docs.SwaggerInfo.ReadDoc()), nil)))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:              o.listenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", o.listenAddr), slog.Int("static_clusters", len(cfg.Clusters)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}
	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), o.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}
	logger.Info("server exiting")
	return nil
}

// newSourceFactory 按集群配置选择本机命令或 slurmrestd.
func newSourceFactory(logger *slog.Logger, o serveOptions) snapshot.Factory {
	execClient := exec.New(logger).SetBinDir(o.binDir)
	restClient := slurmrest.New(http.DefaultClient, o.slurmrestTimeout, logger)
	return func(c options.Cluster) (snapshot.Source, error) {
		switch c.Source {
		case options.SourceExec:
			return snapshot.NewCommandSource(execClient, logger), nil
		case options.SourceSlurmrest:
			return snapshot.NewRestSource(restClient, c.Address), nil
		}
		return nil, fmt.Errorf("unsupported source %q", c.Source)
	}
}
