package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/safety-dashboard/internal/accidents"
	"github.com/iwvelando/safety-dashboard/internal/cache"
	"github.com/iwvelando/safety-dashboard/internal/config"
	"github.com/iwvelando/safety-dashboard/internal/dashboard"
	"github.com/iwvelando/safety-dashboard/internal/logging"
	"github.com/iwvelando/safety-dashboard/internal/server"
	"github.com/iwvelando/safety-dashboard/pkg/constants"
	"github.com/iwvelando/safety-dashboard/pkg/output"
	"github.com/iwvelando/safety-dashboard/pkg/validation"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	dataPath := flag.String("data", "", "accident spreadsheet override (.csv or .xlsx)")
	address := flag.String("address", "", "HTTP listen address override")
	summary := flag.Bool("summary", false, "print the dashboard summary and exit instead of serving")
	outputFormatFlag := flag.String("output-format", "", "summary output override: pretty, csv")
	flag.Parse()

	if err := config.LoadEnvFiles(".env"); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load .env\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *dataPath != "" {
		conf.Data.Path = *dataPath
	}
	if *address != "" {
		conf.Server.Address = *address
	}
	if *outputFormatFlag != "" {
		conf.Output.Format = *outputFormatFlag
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	for _, warning := range conf.Warnings() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	loaderOptions := conf.LoaderOptions()
	snapshot := cache.New[*accidents.Dataset](func(path string) (*accidents.Dataset, error) {
		return accidents.Load(path, loaderOptions)
	}, conf.Data.Invalidation, logger)

	if *summary {
		if err := printSummary(conf, snapshot); err != nil {
			logger.Fatal("failed to summarize accident data",
				zap.String("op", "main"),
				zap.String("path", conf.Data.Path),
				zap.Error(err),
			)
		}
		return
	}

	if err := serve(logger, conf, snapshot); err != nil {
		logger.Fatal("server stopped with error",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func printSummary(conf *config.Configuration, snapshot *cache.Snapshot[*accidents.Dataset]) error {
	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		return err
	}

	ds, err := snapshot.Get(conf.Data.Path)
	if err != nil {
		return err
	}

	switch conf.Output.Format {
	case constants.OutputFormatCSV:
		return output.WriteCSV(os.Stdout, ds)
	default:
		page := dashboard.Build(ds, dashboard.Options{TopK: conf.Data.TopK, Mode: conf.Data.Mode})
		return output.PrettySummary(os.Stdout, page)
	}
}

func serve(logger *zap.Logger, conf *config.Configuration, snapshot *cache.Snapshot[*accidents.Dataset]) error {
	handler, err := server.NewHandler(logger, snapshot, server.Options{
		DataPath: conf.Data.Path,
		TopK:     conf.Data.TopK,
		Mode:     conf.Data.Mode,
		Version:  version,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         conf.Server.Address,
		Handler:      handler,
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
		IdleTimeout:  conf.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting safety dashboard",
			zap.String("op", "main.serve"),
			zap.String("address", conf.Server.Address),
			zap.String("data", conf.Data.Path),
			zap.String("mode", conf.Data.Mode),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down safety dashboard",
		zap.String("op", "main.serve"),
		zap.Duration("timeout", conf.Server.ShutdownTimeout),
	)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
