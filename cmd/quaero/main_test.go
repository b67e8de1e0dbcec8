package main

import (
	"context"
	"flag"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func flagContext(t *testing.T, set func(fs *flag.FlagSet)) *cli.Context {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	set(fs)
	return cli.NewContext(cli.NewApp(), fs, nil)
}

func TestSetupLogger(t *testing.T) {
	t.Run("accepts valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			ctx := flagContext(t, func(fs *flag.FlagSet) {
				fs.String("log-level", level, "")
			})
			assert.NoError(t, setupLogger(ctx), "level %q", level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		ctx := flagContext(t, func(fs *flag.FlagSet) {
			fs.String("log-level", "verbose", "")
		})
		err := setupLogger(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("debug level enables debug logging", func(t *testing.T) {
		ctx := flagContext(t, func(fs *flag.FlagSet) {
			fs.String("log-level", "debug", "")
		})
		require.NoError(t, setupLogger(ctx))
		assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	})
}

func TestAIConfigFromFlags(t *testing.T) {
	t.Run("generation host falls back to embedding host", func(t *testing.T) {
		ctx := flagContext(t, func(fs *flag.FlagSet) {
			fs.String("embedding-host", "http://embed:9000", "")
			fs.String("embedding-model", "nomic-embed-text", "")
			fs.String("generation-host", "", "")
			fs.String("generation-model", "llama3.1:latest", "")
		})

		config := aiConfigFromFlags(ctx)
		require.NoError(t, config.Validate())
		assert.Equal(t, "http://embed:9000/v1", config.EmbeddingHost)
		assert.Equal(t, "http://embed:9000/v1", config.GenerationHost)
	})

	t.Run("separate generation host is kept", func(t *testing.T) {
		ctx := flagContext(t, func(fs *flag.FlagSet) {
			fs.String("embedding-host", "http://embed:9000", "")
			fs.String("embedding-model", "nomic-embed-text", "")
			fs.String("generation-host", "http://generate:9100", "")
			fs.String("generation-model", "llama3.1:latest", "")
		})

		config := aiConfigFromFlags(ctx)
		require.NoError(t, config.Validate())
		assert.Equal(t, "http://generate:9100/v1", config.GenerationHost)
	})
}

func TestCommandFlagDefaults(t *testing.T) {
	t.Run("db flag has default", func(t *testing.T) {
		var dbFlag *cli.StringFlag
		for _, f := range dbFlags() {
			if sf, ok := f.(*cli.StringFlag); ok && sf.Name == "db" {
				dbFlag = sf
			}
		}
		require.NotNil(t, dbFlag)
		assert.Equal(t, "./quaero_db", dbFlag.Value)
		assert.Contains(t, dbFlag.EnvVars, "QUAERO_DB")
	})

	t.Run("ai flags carry model defaults", func(t *testing.T) {
		models := map[string]string{}
		for _, f := range aiFlags() {
			if sf, ok := f.(*cli.StringFlag); ok {
				models[sf.Name] = sf.Value
			}
		}
		assert.Equal(t, "nomic-embed-text", models["embedding-model"])
		assert.Equal(t, "llama3.1:latest", models["generation-model"])
	})
}
