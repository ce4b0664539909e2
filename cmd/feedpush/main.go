package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/feedpush/pkg/config"
	"github.com/umputun/feedpush/pkg/feed"
	"github.com/umputun/feedpush/pkg/notify"
	"github.com/umputun/feedpush/pkg/repository"
	"github.com/umputun/feedpush/pkg/scheduler"
	"github.com/umputun/feedpush/pkg/service"
	"github.com/umputun/feedpush/pkg/telegram"
	"github.com/umputun/feedpush/server"
)

// Opts with all CLI options
type Opts struct {
	Config  string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"configuration file"`
	LogFile string `long:"log-file" env:"LOG_FILE" description:"also write logs to this file, rotated"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}

	lgr.Print("[INFO] shutdown complete")
}

func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logWriter := setupLog(opts, cfg.Log, cfg.Telegram.Token)
	if logWriter != nil {
		defer logWriter.Close()
	}
	lgr.Printf("[INFO] starting feedpush version %s", revision)

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if errors.Is(err, repository.ErrSchemaTooNew) {
		return fmt.Errorf("refusing to open the database, upgrade feedpush: %w", err)
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repos.Close()

	// long polling holds the request open up to the poll timeout
	tgClient := &http.Client{Timeout: cfg.Telegram.Timeout + time.Duration(cfg.Telegram.PollTimeout)*time.Second}
	botAPI, err := telegram.NewBotAPI(cfg.Telegram.Token, cfg.Telegram.APIEndpoint, tgClient)
	if err != nil {
		return fmt.Errorf("failed to connect to telegram: %w", err)
	}
	lgr.Printf("[INFO] authorized as @%s", botAPI.Self.UserName)

	fetcher := feed.NewFetcher(feed.FetcherParams{
		Timeout:     cfg.Fetch.Timeout,
		UserAgent:   cfg.Fetch.UserAgent,
		MaxBodySize: cfg.Fetch.MaxBodySize,
	})
	dispatcher := notify.NewDispatcher(telegram.NewMessenger(botAPI), cfg.Schedule.DeliveryWorkers)
	sched := scheduler.NewScheduler(repos.Feed, fetcher, dispatcher, scheduler.Config{
		Interval:        cfg.Schedule.Interval,
		MaxWorkers:      cfg.Schedule.MaxWorkers,
		CleanupInterval: cfg.Schedule.CleanupInterval,
		RetryDelay:      cfg.Schedule.RetryDelay,
		Policy:          scheduler.Policy(cfg.Delivery.Policy),
	})
	subs := service.NewSubscriptions(repos.Feed, fetcher)
	bot := telegram.NewBot(botAPI, subs, telegram.BotParams{PollTimeout: cfg.Telegram.PollTimeout, Workers: cfg.Telegram.Workers})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sched.Run(gctx); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := bot.Run(gctx); err != nil {
			return fmt.Errorf("bot: %w", err)
		}
		return nil
	})
	if cfg.Server.Listen != "" {
		srv := server.New(cfg, repos.Feed, sched, subs, revision, opts.Debug)
		g.Go(func() error {
			if err := srv.Run(gctx); err != nil {
				return fmt.Errorf("server: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// setupLog configures lgr, returns the rotating file writer if one is enabled
func setupLog(opts Opts, logCfg config.LogConfig, secs ...string) *lumberjack.Logger {
	var out, errOut io.Writer = os.Stdout, os.Stderr
	var logFile *lumberjack.Logger
	if opts.LogFile != "" {
		logFile = &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    logCfg.MaxSize,
			MaxBackups: logCfg.MaxBackups,
			MaxAge:     logCfg.MaxAge,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, logFile)
		errOut = io.MultiWriter(os.Stderr, logFile)
	}

	logOpts := []lgr.Option{lgr.Out(out), lgr.Err(errOut)}
	if opts.Debug {
		logOpts = append(logOpts, lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError)
	}

	if !opts.NoColor && opts.LogFile == "" {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
	return logFile
}
