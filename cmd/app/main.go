package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/loader"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/storage"
	pkgconfig "github.com/starford/raido/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	configPath := cmd.String("config")

	if cmd.IsSet("config") {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		return cfg, nil
	}

	// Default config file is optional.
	if _, err := pkgconfig.LoadIfExists(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// listDocument is the line format of the list command: one JSON object per
// successfully loaded document.
type listDocument struct {
	Path     string         `json:"path"`
	Metadata map[string]any `json:"metadata"`
	Body     string         `json:"body"`
}

func list(ctx context.Context, cmd *cli.Command) error {
	store, err := storage.NewFS(cmd.String("dir"))
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	opts := []loader.Option{loader.WithLogger(logger)}
	if cmd.Bool("fail-fast") {
		opts = append(opts, loader.WithPolicy(loader.PolicyFailFast))
	}
	if cmd.Bool("strict") {
		opts = append(opts, loader.WithRequiredFields("title", "date"))
	}

	col, err := loader.New(store, opts...).Load(ctx)
	if err != nil {
		return err
	}

	for _, skipped := range col.Skipped {
		fmt.Fprintf(os.Stderr, "skipped %s: %v\n", skipped.Path, skipped.Err)
	}

	// The exit status reflects what was loaded, not what survived the
	// draft filter: an all-drafts corpus loads fine and prints nothing.
	if len(col.Documents) == 0 {
		return fmt.Errorf("no documents loaded from %s", cmd.String("dir"))
	}

	docs := col.Documents
	if !cmd.Bool("include-drafts") {
		docs = loader.Filter(docs, loader.NotDraft)
	}
	docs = loader.SortByDate(docs, "date", true)

	var out io.Writer = os.Stdout
	if w := cmd.Root().Writer; w != nil {
		out = w
	}
	enc := json.NewEncoder(out)
	for i := range docs {
		out := listDocument{
			Path:     docs[i].Path,
			Metadata: docs[i].Meta.Plain(),
			Body:     docs[i].Body,
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func mcpCmd(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// stdout carries the MCP protocol; diagnostics go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	store, err := internal.NewStore(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	ldr := internal.NewLoader(store, cfg, logger)
	if err := index.Sync(ctx, db, ldr, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return mcpserver.New(store, db).ServeStdio()
}

func newCommand() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "raido",
		Usage:  "Read-only article corpus service: front-matter loader, full-text search, and change feed",
		Action: serve,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API server with file watching",
				Action: serve,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "list",
				Usage:  "Load a corpus directory and print one JSON object per document",
				Action: list,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Corpus directory to load",
						Value: ".",
					},
					&cli.BoolFlag{
						Name:  "include-drafts",
						Usage: "Include draft documents in the output",
					},
					&cli.BoolFlag{
						Name:  "fail-fast",
						Usage: "Abort on the first broken document instead of skipping it",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Require title and date front-matter fields",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Start the MCP server on stdio",
				Action: mcpCmd,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}
	return cmd
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
