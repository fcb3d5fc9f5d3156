package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/jr6v5m2k/rotomsongs/internal"
	pkgconfig "github.com/jr6v5m2k/rotomsongs/pkg/config"
)

var version = "dev"

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func build(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Build(ctx, opts...)
}

func check(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Check(ctx, cmd.Bool("json"), opts...)
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:    "rotomsongs",
		Usage:   "Catalog of parody song lyrics kept as Markdown files",
		Version: version,
		Description: heredoc.Doc(`
			Reads one Markdown file per song from the content directory,
			validates its frontmatter and exposes the catalog as a JSON API,
			a static JSON export or an MCP server.

			Only files tagged with the inclusion tag (RotomSongs by default)
			are published.
		`),
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (.yaml or .toml)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the catalog API and reload on content changes",
				Action: serve,
			},
			{
				Name:  "build",
				Usage: "Export the catalog as static JSON files",
				Description: heredoc.Doc(`
					Writes songs.json, params.json, search-index.json, stats.json
					and songs/{id}.json into build.output.
				`),
				Action: build,
			},
			{
				Name:  "check",
				Usage: "Lint the content directory",
				Description: heredoc.Doc(`
					Reports files the catalog would skip and authoring slips it
					would accept silently. Exits non-zero when any error is found.
				`),
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the report as JSON",
					},
				},
				Action: check,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the catalog to an MCP client over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
