package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/schmitt-geo406/pegel-viewer/services/api/catalog"
	"github.com/schmitt-geo406/pegel-viewer/services/api/config"
	"github.com/schmitt-geo406/pegel-viewer/services/api/dashboard"
	"github.com/schmitt-geo406/pegel-viewer/services/api/db"
	httpserver "github.com/schmitt-geo406/pegel-viewer/services/api/http"
	"github.com/schmitt-geo406/pegel-viewer/services/api/metrics"
)

type cmdArgs struct {
	ConfigFile string `long:"config" description:"YAML configuration file, overrides PEGEL_CONFIG"`
	EnvFile    string `long:"env-file" description:"Environment file to load instead of .env"`
	Port       int    `long:"port" description:"Listen port, overrides PORT and API_PORT"`
	InitSchema bool   `long:"init-schema" description:"Create the pegel tables if they do not exist"`
}

func main() {
	args := cmdArgs{}
	if _, err := flags.Parse(&args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "Type 'api -h' for help")
		os.Exit(2)
	}

	cfg, err := config.LoadWith(config.Options{ConfigFile: args.ConfigFile, EnvFile: args.EnvFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if args.Port > 0 {
		cfg.Port = args.Port
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, args.InitSchema, logger); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}

func run(cfg config.Config, initSchema bool, logger *zap.SugaredLogger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connection error: %w", err)
	}
	defer store.Close()

	if initSchema {
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	cat, err := catalog.Load(ctx, store, logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	dash := dashboard.New(cat, store, m, logger)
	if err := dash.StartSweeper(cfg.SweepSpec, cfg.SessionIdle); err != nil {
		return err
	}
	defer dash.StopSweeper()

	srv := httpserver.New(cfg, dash, store, m, logger)
	logger.Infow("REST API listening", "addr", cfg.ListenAddr(), "stations", cat.Len())

	return srv.Run(ctx)
}

func newLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
