package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tinytelemetry/nucleus/internal/backup"
	"github.com/tinytelemetry/nucleus/internal/duckdb"
	"github.com/tinytelemetry/nucleus/internal/httpserver"
	"github.com/tinytelemetry/nucleus/internal/model"
	"github.com/tinytelemetry/nucleus/internal/provider"
	"github.com/tinytelemetry/nucleus/internal/scheduler"
	"github.com/tinytelemetry/nucleus/internal/theme"
	"github.com/tinytelemetry/nucleus/internal/tui"
)

func runDashboard(cfg appConfig) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	providers, err := buildProviders(cfg, store)
	if err != nil {
		return err
	}

	resolver, skins, closeTheme := buildTheme(cfg)
	defer closeTheme()

	loop := scheduler.NewLoop(cfg.FrameRate)
	defer loop.Stop()

	keys := tui.DefaultKeyMap()
	dash := tui.NewDashboardModel(tui.Options{
		Engine:        cfg.Engine,
		Ticker:        cfg.Ticker,
		Weights:       cfg.Selection,
		ReducedMotion: cfg.ReducedMotion,
		Keys:          keys,
		Loop:          loop,
		Theme:         resolver,
		Skins:         skins,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gather := func(ctx context.Context) []model.Slide {
		return provider.Slides(ctx, providers, cfg.Providers.Timeout)
	}
	app := tui.NewApp(tui.NewLoadingPage(ctx, gather, dash.ID(), keys), dash)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithReportFocus())
	loop.Attach(p.Send)

	if cfg.APIEnabled {
		var snapshots httpserver.SnapshotStore
		if store != nil {
			snapshots = store
		}
		apiServer := httpserver.NewServer(cfg.APIAddr, tui.NewRemote(dash, p.Send), snapshots)
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
		log.Printf("api: listening on %s", apiServer.Addr())
	}

	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	if link := dash.Committed(); link != "" {
		fmt.Println(link)
	}
	return nil
}

// openStore opens the snapshot store when the configuration needs it and
// starts its retention cleaner and backup manager. The returned store is nil
// otherwise.
func openStore(cfg appConfig) (*duckdb.Store, func(), error) {
	if !cfg.needsStore() {
		return nil, func() {}, nil
	}
	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	cleaner := duckdb.NewRetentionCleaner(store, duckdb.RetentionConfig{
		RetentionDays: cfg.SnapshotRetention,
	})
	backups, err := backup.NewManager(store, cfg.Backup)
	if err != nil {
		log.Printf("backup: disabled: %v", err)
	}
	return store, func() {
		backups.Stop()
		cleaner.Stop()
		store.Close()
	}, nil
}

func buildProviders(cfg appConfig, store *duckdb.Store) ([]model.Provider, error) {
	var reader provider.SnapshotReader
	if store != nil {
		reader = store
	}
	client := &http.Client{Timeout: cfg.Providers.Timeout}
	providers, err := provider.Build(cfg.Providers, reader, client)
	if err != nil {
		return nil, fmt.Errorf("building providers: %w", err)
	}
	return providers, nil
}

// buildTheme layers the token sources: environment first, then the skin
// file, then the runtime-switchable built-in skins.
func buildTheme(cfg appConfig) (*theme.Resolver, *theme.Cycle, func()) {
	sources := []theme.Source{theme.Env{Prefix: "NUCLEUS"}}
	closeFn := func() {}

	if cfg.SkinFile != "" {
		sf, err := theme.OpenSkinFile(cfg.SkinFile)
		if err != nil {
			log.Printf("theme: skin file %s: %v (using built-in skins)", cfg.SkinFile, err)
		} else {
			sources = append(sources, sf)
			closeFn = func() { _ = sf.Close() }
		}
	}

	skins := theme.NewCycle(theme.BuiltinSkins, cfg.Skin)
	if !skins.Has(cfg.Skin) {
		log.Printf("theme: unknown skin %q, using %s", cfg.Skin, skins.Current().Name)
	}
	sources = append(sources, skins)
	return theme.NewResolver(sources...), skins, closeFn
}
