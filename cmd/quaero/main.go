// Copyright 2026 Veridian Systems
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"github.com/veridian/quaero"
	"github.com/veridian/quaero/ai"
	"github.com/veridian/quaero/ai/openai"
	"github.com/veridian/quaero/chunker"
	"github.com/veridian/quaero/ingestion"
	"github.com/veridian/quaero/reembed"
	"github.com/veridian/quaero/search"
	"github.com/veridian/quaero/storage/badger"
)

func main() {
	// A .env file beside the binary is a convenient place for host and model
	// settings. Absence is not an error.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "quaero",
		Usage: "Offline question answering over local PDF documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"QUAERO_LOG_LEVEL"},
			},
		},
		Before:   setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Ingest a document directory and start the interactive assistant",
				Action: runCommand,
				Flags:  append(append(dbFlags(), aiFlags()...), append(ingestFlags(), searchFlags()...)...),
			},
			{
				Name:   "ingest",
				Usage:  "Ingest all PDF documents in a directory",
				Action: ingestCommand,
				Flags:  append(append(dbFlags(), aiFlags()...), ingestFlags()...),
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question from the ingested documents",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags:     append(append(dbFlags(), aiFlags()...), searchFlags()...),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all stored chunks with a new embedding model",
				Action: reembedCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:    "embedding-host",
						Usage:   "Embedding service host URL",
						Value:   "http://localhost:11434/v1",
						EnvVars: []string{"QUAERO_EMBEDDING_HOST"},
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
						EnvVars:  []string{"QUAERO_EMBEDDING_MODEL"},
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:   "status",
				Usage:  "Show what has been ingested into the store",
				Action: statusCommand,
				Flags:  dbFlags(),
			},
			{
				Name:   "rebuild",
				Usage:  "Drop all chunks and ledger entries so the next ingest starts fresh",
				Action: rebuildCommand,
				Flags: append(dbFlags(),
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm the destructive rebuild",
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   "./quaero_db",
			EnvVars: []string{"QUAERO_DB"},
		},
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"QUAERO_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "nomic-embed-text",
			EnvVars: []string{"QUAERO_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "generation-host",
			Usage:   "Generation service host URL (defaults to embedding-host)",
			EnvVars: []string{"QUAERO_GENERATION_HOST"},
		},
		&cli.StringFlag{
			Name:    "generation-model",
			Usage:   "Generation model name",
			Value:   "llama3.1:latest",
			EnvVars: []string{"QUAERO_GENERATION_MODEL"},
		},
	}
}

func ingestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "docs",
			Usage:   "Directory of PDF documents to ingest",
			Value:   "./docs",
			EnvVars: []string{"QUAERO_DOCS"},
		},
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Maximum chunk length in characters",
			Value: chunker.DefaultMaxLength,
		},
		&cli.IntFlag{
			Name:  "chunk-overlap",
			Usage: "Overlap between consecutive chunks in characters",
			Value: chunker.DefaultOverlap,
		},
		&cli.IntFlag{
			Name:  "embed-batch-size",
			Usage: "Number of chunks embedded per service call",
			Value: ingestion.DefaultEmbedBatchSize,
		},
	}
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "top-k",
			Usage: "Number of candidates fetched from the vector store",
			Value: search.DefaultTopK,
		},
		&cli.IntFlag{
			Name:  "top-n",
			Usage: "Number of reranked chunks fed to the answer prompt",
			Value: search.DefaultTopN,
		},
		&cli.Float64Flag{
			Name:  "threshold",
			Usage: "Cosine score below which a result is flagged low confidence",
			Value: float64(search.DefaultThreshold),
		},
	}
}

func aiConfigFromFlags(c *cli.Context) *ai.Config {
	generationHost := c.String("generation-host")
	if generationHost == "" {
		generationHost = c.String("embedding-host")
	}

	return ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGenerationHost(generationHost),
		ai.WithGenerationModel(c.String("generation-model")),
	)
}

func openDatabase(c *cli.Context) (*quaero.Database, error) {
	config := aiConfigFromFlags(c)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := quaero.NewDatabase(c.String("db"), quaero.WithAIConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func searchOptions(c *cli.Context) []search.Option {
	return []search.Option{
		search.WithTopK(c.Int("top-k")),
		search.WithTopN(c.Int("top-n")),
		search.WithThreshold(float32(c.Float64("threshold"))),
	}
}

func ingestDirectory(ctx context.Context, c *cli.Context, db *quaero.Database) error {
	splitter, err := chunker.New(c.Int("chunk-size"), c.Int("chunk-overlap"))
	if err != nil {
		return err
	}

	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithSplitter(splitter),
		ingestion.WithBatchSize(c.Int("embed-batch-size")),
	)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	docs := c.String("docs")
	fmt.Fprintf(os.Stderr, "Ingesting documents from %s\n", docs)

	report, err := pipeline.Run(ctx, docs)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingested %d, skipped %d, failed %d\n",
		report.Ingested, report.Skipped, len(report.Failed))
	for _, failure := range report.Failed {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", failure.Source, failure.Err)
	}
	return nil
}

func runCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := ingestDirectory(ctx, c, db); err != nil {
		return err
	}

	loop, err := db.NewChatLoop(os.Stdin, os.Stdout, searchOptions(c)...)
	if err != nil {
		return err
	}
	return loop.Run(ctx)
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	return ingestDirectory(ctx, c, db)
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("a question is required: quaero ask \"what is ...?\"")
	}

	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(searchOptions(c)...)
	if err != nil {
		return err
	}

	answer, err := searcher.Ask(ctx, question)
	if err != nil {
		return err
	}

	if answer.LowConfidence {
		color.New(color.FgYellow).Fprintln(os.Stderr,
			"Warning: the retrieved context may not be a strong match.")
	}

	best := answer.Support[0].Record
	color.New(color.FgCyan).Fprintf(os.Stderr, "Based on page %d of %s\n\n", best.Page, best.Source)
	fmt.Println(answer.Text)
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		// Generation settings are unused by reembedding, defaults suffice.
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	ledger := badger.NewLedgerRepository(backend)
	defer ledger.Close()

	count, err := repo.CountChunks(ctx)
	if err != nil {
		return err
	}
	dim, err := repo.Dimension(ctx)
	if err != nil {
		return err
	}
	entries, err := ledger.Entries(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s\n", c.String("db"))
	fmt.Printf("Chunks: %d (dimension %d)\n", count, dim)
	fmt.Printf("Documents: %d\n", len(entries))
	for _, entry := range entries {
		fmt.Printf("  %s: %d chunks, ingested %s\n",
			entry.Source, entry.Chunks, entry.IngestedAt.Format(time.RFC3339))
	}
	return nil
}

func rebuildCommand(c *cli.Context) error {
	if !c.Bool("yes") {
		return fmt.Errorf("rebuild drops every chunk and ledger entry; pass --yes to confirm")
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	if err := backend.DropAll(); err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Store at %s cleared. Run 'quaero ingest' to rebuild it.\n", c.String("db"))
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
