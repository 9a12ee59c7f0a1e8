package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/azhavoronkov/eventscope/pkg/client"
	"github.com/azhavoronkov/eventscope/pkg/config"
	"github.com/azhavoronkov/eventscope/pkg/feed"
	"github.com/azhavoronkov/eventscope/pkg/store"
	"github.com/azhavoronkov/eventscope/pkg/ui"
	"github.com/azhavoronkov/eventscope/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"f" long:"config" env:"CONFIG" default:"config.yml" description:"configuration file"`
	Server bool   `short:"s" long:"server" env:"SERVER" description:"run the preview server instead of the terminal browser"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"preview server listen address, overrides config"`
	Ingest bool   `long:"ingest" description:"trigger backend ingestion, print the result and exit"`

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

	if opts.NoColor {
		color.NoColor = true
	}

	setupLog(opts.Debug)

	log.Printf("[INFO] starting eventscope version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] eventscope failed: %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// run wires storage, backend client and the selected frontend together
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.New(ctx, store.Config{
		DSN:             cfg.Storage.DSN,
		Prefix:          cfg.Storage.Prefix,
		MaxOpenConns:    cfg.Storage.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Storage.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("[WARN] failed to close storage: %v", err)
		}
	}()

	apiClient := client.New(client.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Tokens:    st,
	})

	feedCfg := feed.Config{
		APIBase:       cfg.API.BaseURL,
		Taxonomy:      cfg.GetFilters(),
		FallbackCount: cfg.Feed.FallbackCount,
		CarouselCap:   cfg.Feed.CarouselCap,
	}

	if opts.Ingest {
		manager := feed.NewManager(apiClient, feedCfg)
		if err := manager.Ingest(ctx, cfg.Ingest.PerChannelLimit, cfg.Feed.Limit, cfg.Ingest.EventOnly()); err != nil {
			return fmt.Errorf("failed to ingest: %w", err)
		}
		manager.Snapshot(func(fs *feed.State) {
			log.Printf("[INFO] ingest complete, %d events", len(fs.Events()))
		})
		return nil
	}

	if opts.Server {
		if opts.Listen != "" {
			cfg.Server.Listen = opts.Listen
		}
		manager := feed.NewManager(apiClient, feedCfg)
		srv := server.New(cfg, manager, revision, opts.Debug)
		return srv.Run(ctx)
	}

	return runBrowser(ctx, cfg, st, apiClient, feedCfg)
}

// runBrowser starts the terminal feed browser, restoring the persisted
// personalization selection first
func runBrowser(ctx context.Context, cfg *config.Config, st *store.Store, apiClient *client.Client, feedCfg feed.Config) error {
	state := feed.NewState(feedCfg)
	if sel, err := st.Selection(ctx); err == nil {
		state.SetSelection(sel)
	} else {
		log.Printf("[WARN] failed to restore selection: %v", err)
	}

	save := func(keys []string) tea.Cmd {
		return func() tea.Msg {
			return ui.SelectionSaved{Err: st.SaveSelection(ctx, keys)}
		}
	}

	model := ui.New(ui.Options{
		Client:          apiClient,
		State:           state,
		Limit:           cfg.Feed.Limit,
		PerChannelLimit: cfg.Ingest.PerChannelLimit,
		EventOnly:       cfg.Ingest.EventOnly(),
		SaveSelection:   save,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("terminal browser failed: %w", err)
	}
	return nil
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
