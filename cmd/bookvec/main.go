// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/lepinkainen/humanlog"
	"github.com/poiesic/bookvec"
	"github.com/poiesic/bookvec/config"
	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/ingestion"
	"github.com/poiesic/bookvec/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bookvec",
		Usage: "Collect fiction from book catalogs and bestseller lists into a vector index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file (default: ./bookvec.yaml if present)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log output format (human, text)",
				Value: "human",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Fetch every facet from every source and upsert the accepted books",
				Action: ingestCommand,
				Flags: append(storeFlags(),
					&cli.StringSliceFlag{
						Name:    "facet",
						Aliases: []string{"f"},
						Usage:   "Facet to traverse as type=value, repeatable (replaces configured facets)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records per upsert",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent source fetches",
					},
					&cli.BoolFlag{
						Name:  "progress",
						Usage: "Report facet progress on stderr",
						Value: true,
					},
				),
			},
			{
				Name:   "info",
				Usage:  "Show a provisioned index and how many points it holds",
				Action: infoCommand,
				Flags:  storeFlags(),
			},
		},
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "store",
			Usage: "Store backend (badger, sqlite)",
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to the store directory (badger) or file (sqlite)",
		},
	}
}

// loadConfig reads the configuration and applies any command-line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("store") {
		cfg.Store.Backend = c.String("store")
	}
	if c.IsSet("db") {
		cfg.Store.Path = c.String("db")
	}
	if c.IsSet("batch-size") {
		cfg.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("pool-size") {
		cfg.PoolSize = c.Int("pool-size")
	}
	if c.IsSet("facet") {
		facets, err := parseFacets(c.StringSlice("facet"))
		if err != nil {
			return nil, err
		}
		cfg.Facets = facets
	}
	return cfg, nil
}

// parseFacets parses type=value pairs.
func parseFacets(values []string) ([]core.Facet, error) {
	facets := make([]core.Facet, 0, len(values))
	for _, v := range values {
		typ, value, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid facet %q: expected type=value", v)
		}
		facet := core.Facet{Type: strings.TrimSpace(typ), Value: strings.TrimSpace(value)}
		if err := core.ValidateFacet(facet); err != nil {
			return nil, fmt.Errorf("invalid facet %q: %w", v, err)
		}
		facets = append(facets, facet)
	}
	return facets, nil
}

func ingestCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	lib, err := bookvec.Open(ctx, cfg, bookvec.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	defer lib.Close()

	var opts []ingestion.Option
	if c.Bool("progress") {
		opts = append(opts, ingestion.WithProgress(os.Stderr))
	}
	pipeline, err := lib.NewPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	names := make([]string, 0, len(lib.Sources()))
	for _, src := range lib.Sources() {
		names = append(names, src.Name())
	}
	fmt.Fprintf(os.Stderr, "Store: %s (%s)\n", cfg.StorePath(), cfg.Store.Backend)
	fmt.Fprintf(os.Stderr, "Index: %s\n", describeIndex(lib.Store().Index))
	fmt.Fprintf(os.Stderr, "Embedding: %s %s\n", cfg.Embedding.Provider, cfg.Embedding.Model)
	fmt.Fprintf(os.Stderr, "Sources: %s\n", strings.Join(names, ", "))
	fmt.Fprintln(os.Stderr)

	stats, err := pipeline.RunWithStats(ctx)
	if stats != nil {
		printStats(c.App.Writer, stats)
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	return nil
}

func infoCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := bookvec.InspectStore(ctx, cfg)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("index %s not provisioned at %s: %w", cfg.Index.Name, cfg.StorePath(), err)
		}
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	count, err := store.Points.CountPoints(ctx)
	if err != nil {
		return fmt.Errorf("failed to count points: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Store: %s (%s)\n", cfg.StorePath(), cfg.Store.Backend)
	fmt.Fprintf(c.App.Writer, "Index: %s\n", describeIndex(store.Index))
	fmt.Fprintf(c.App.Writer, "Created: %s\n", store.Index.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(c.App.Writer, "Points: %d\n", count)
	return nil
}

func describeIndex(spec *core.IndexSpec) string {
	return fmt.Sprintf("%s (%d dimensions, %s)", spec.Name, spec.Dimension, spec.Metric)
}

func printStats(w io.Writer, stats *ingestion.Stats) {
	fmt.Fprintf(w, "Facets: %d\n", stats.Facets)
	fmt.Fprintf(w, "Fetched: %d (%d failed fetches)\n", stats.Fetched, stats.FailedFetch)
	fmt.Fprintf(w, "Accepted: %d\n", stats.Accepted)
	for _, reason := range slices.Sorted(maps.Keys(stats.Rejected)) {
		fmt.Fprintf(w, "Rejected (%s): %d\n", reason, stats.Rejected[reason])
	}
	fmt.Fprintf(w, "Written: %d in %d batches\n", stats.Written, stats.Batches)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
	}
}

func setupLogger(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}

	var handler slog.Handler
	switch strings.ToLower(c.String("log-format")) {
	case "human":
		handler = humanlog.NewHandler(os.Stderr, &humanlog.Options{Level: level})
	case "text":
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	default:
		return fmt.Errorf("invalid log format %q: must be one of human, text", c.String("log-format"))
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
