package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/alexanderramin/releaseplan/internal/cli"
	"github.com/alexanderramin/releaseplan/internal/config"
	"github.com/alexanderramin/releaseplan/internal/db"
	"github.com/alexanderramin/releaseplan/internal/devops"
	"github.com/alexanderramin/releaseplan/internal/repository"
	"github.com/alexanderramin/releaseplan/internal/service"
	"github.com/alexanderramin/releaseplan/internal/telemetry"
	"github.com/alexanderramin/releaseplan/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var database *sql.DB
	defer func() {
		if database != nil {
			database.Close()
		}
	}()

	app := &cli.App{
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		},
	}

	app.Setup = func(configPath string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger, err := telemetry.NewLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("configuring logger: %w", err)
		}
		metrics := telemetry.NewMetrics(cfg.Metrics)

		database, err = db.Open(cfg.DB.Path, cfg.Pool())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}

		// Wire the remote client with logging and metrics on every call.
		observer := devops.MultiObserver{
			devops.NewLogObserver(logger),
			devops.NewMetricsObserver(metrics),
		}
		client := devops.NewClient(cfg.DevOpsClient(), observer)

		// Wire services
		useCases := service.NewLogUseCaseObserver(logger)
		snapshots := service.NewSnapshotService(
			repository.NewSQLiteSnapshotRepo(database),
			db.NewSQLiteUnitOfWork(database),
			metrics,
		)
		app.Plans = service.NewReleasePlanService(client, snapshots, cfg.FetchPolicy(), metrics, useCases)
		app.Connection = service.NewConnectionService(client, useCases)

		var metricsHandler http.Handler
		if metrics.Enabled() {
			metricsHandler = metrics.Handler()
		}
		gin.SetMode(gin.ReleaseMode)
		app.Server = web.NewServer(app.Plans, app.Connection, web.Options{
			Project:      cfg.DevOps.Project,
			APIToken:     cfg.Server.APIToken,
			Metrics:      metricsHandler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			Logger:       logger,
		})

		app.Project = cfg.DevOps.Project
		app.Addr = cfg.Server.Addr

		logger.Debug().
			Str("config", cfg.File).
			Str("db", cfg.DB.Path).
			Str("remote", cfg.DevOpsClient().BaseURL()).
			Str("policy", cfg.Aggregation.Policy).
			Msg("configured")
		return nil
	}

	return cli.NewRootCmd(app).Execute()
}
