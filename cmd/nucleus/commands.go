package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/tinytelemetry/nucleus/internal/duckdb"
	"github.com/tinytelemetry/nucleus/internal/provider"
	"github.com/tinytelemetry/nucleus/internal/selection"
	"github.com/tinytelemetry/nucleus/internal/slides"
)

// runSlides gathers every provider once and prints what the dashboard
// would show, with each slide's chance of being the opening slide.
func runSlides(ctx context.Context, cfg appConfig, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	providers, err := buildProviders(cfg, store)
	if err != nil {
		return err
	}

	results := provider.Gather(ctx, providers, cfg.Providers.Timeout)
	list := provider.Successes(results)
	weights := selection.New(cfg.Selection).Distribution(list)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tLABEL\tUPDATED\tSTART\tSTATS")
	for i, s := range list {
		stats := ""
		for j, st := range slides.ModeFor(s).Stats {
			if j > 0 {
				stats += ", "
			}
			stats += st.Value + " " + st.Unit
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.0f%%\t%s\n", i+1, s.ID, s.Label, s.UpdatedAt, weights[i]*100, stats)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range results {
		if !r.OK() {
			fmt.Fprintf(out, "omitted %s: %v\n", r.ID, r.Err)
		}
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "no slides: the dashboard will show the placeholder")
	}
	return nil
}

// runImport validates every record of a YAML document and appends it to
// the store. Nothing is written when any record is invalid.
func runImport(ctx context.Context, cfg appConfig, path string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	records, err := provider.DecodeYAMLList(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for i, rec := range records {
		if _, err := rec.Slide(); err != nil {
			return fmt.Errorf("%s: record %d: %w", path, i+1, err)
		}
	}

	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	for _, rec := range records {
		seq, err := store.PutSnapshot(ctx, provider.ToSnapshot(rec, "import"))
		if err != nil {
			return fmt.Errorf("storing %s: %w", rec.ID, err)
		}
		fmt.Fprintf(out, "imported %s (seq %d)\n", rec.ID, seq)
	}
	return nil
}

func runBackup(ctx context.Context, cfg appConfig, dst string, out io.Writer) error {
	store, err := duckdb.NewStore(cfg.DBPath, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	if err := store.BackupTo(ctx, dst); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	src := store.DBPath()
	if src == "" {
		src = "in-memory store"
	}
	fmt.Fprintf(out, "backed up %s (schema v%d) to %s\n", src, store.SchemaVersion(), dst)
	return nil
}
