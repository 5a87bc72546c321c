package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/bookvec"
	"github.com/poiesic/bookvec/config"
	"github.com/poiesic/bookvec/core"
	"github.com/poiesic/bookvec/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func writeConfig(t *testing.T, storePath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookvec.yaml")
	body := fmt.Sprintf(`
store:
  backend: badger
  path: %s
index:
  name: fiction
  dimension: 8
`, storePath)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %s not found", name)
	return nil
}

func TestParseFacets(t *testing.T) {
	facets, err := parseFacets([]string{"rating=high", " date = newest "})
	require.NoError(t, err)
	assert.Equal(t, []core.Facet{
		{Type: "rating", Value: "high"},
		{Type: "date", Value: "newest"},
	}, facets)

	for _, bad := range []string{"rating", "=high", "rating="} {
		_, err := parseFacets([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	configPath := writeConfig(t, filepath.Join(t.TempDir(), "store"))

	var cfg *config.Config
	app := newApp()
	findCommand(t, app, "ingest").Action = func(c *cli.Context) error {
		var err error
		cfg, err = loadConfig(c)
		return err
	}

	err := app.Run([]string{"bookvec", "--config", configPath, "ingest",
		"--store", "sqlite",
		"--db", "/tmp/books.db",
		"--batch-size", "10",
		"--pool-size", "2",
		"--facet", "date=newest",
		"--facet", "popularity=popular",
	})
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, config.StoreSQLite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/books.db", cfg.StorePath())
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 2, cfg.PoolSize)
	assert.Equal(t, "fiction", cfg.Index.Name)
	assert.Equal(t, []core.Facet{
		{Type: "date", Value: "newest"},
		{Type: "popularity", Value: "popular"},
	}, cfg.Facets)
}

func TestLoadConfigWithoutOverrides(t *testing.T) {
	configPath := writeConfig(t, "/data/books")

	var cfg *config.Config
	app := newApp()
	findCommand(t, app, "ingest").Action = func(c *cli.Context) error {
		var err error
		cfg, err = loadConfig(c)
		return err
	}

	require.NoError(t, app.Run([]string{"bookvec", "--config", configPath, "ingest"}))
	assert.Equal(t, config.StoreBadger, cfg.Store.Backend)
	assert.Equal(t, "/data/books", cfg.StorePath())
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, core.DefaultFacets(), cfg.Facets)
}

func TestInfoCommand(t *testing.T) {
	configPath := writeConfig(t, filepath.Join(t.TempDir(), "store"))

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	store, err := bookvec.OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err = app.Run([]string{"bookvec", "--config", configPath, "info"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Index: fiction (8 dimensions, cosine)")
	assert.Contains(t, out.String(), "Points: 0")
}

func TestInfoCommand_NotProvisioned(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "store")
	configPath := writeConfig(t, storePath)

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err := app.Run([]string{"bookvec", "--config", configPath, "info"})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Contains(t, err.Error(), "index fiction not provisioned")
	assert.Empty(t, out.String())

	_, statErr := os.Stat(storePath)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "info must not create the store")
}

func TestIngestCommand_InvalidConfig(t *testing.T) {
	t.Setenv("NYT_API_KEY", "")
	t.Setenv("BOOKVEC_SOURCES_NYT_API_KEY", "")
	configPath := writeConfig(t, filepath.Join(t.TempDir(), "store"))

	app := newApp()
	err := app.Run([]string{"bookvec", "--config", configPath, "ingest", "--progress=false"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nyt.api_key")
}

func TestIngestCommand_BadFacet(t *testing.T) {
	configPath := writeConfig(t, filepath.Join(t.TempDir(), "store"))

	app := newApp()
	err := app.Run([]string{"bookvec", "--config", configPath, "ingest", "--facet", "rating"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid facet")
}

func TestSetupLogger(t *testing.T) {
	run := func(args ...string) error {
		app := &cli.App{
			Name:   "test",
			Flags:  newApp().Flags,
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
		return app.Run(append([]string{"test"}, args...))
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			assert.NoError(t, run("--log-level", level), level)
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := run("--log-level", "loud")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log formats", func(t *testing.T) {
		assert.NoError(t, run("--log-format", "human"))
		assert.NoError(t, run("--log-format", "text"))

		err := run("--log-format", "json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log format")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		assert.NoError(t, run("-l", "debug"))
	})
}
