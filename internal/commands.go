package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jr6v5m2k/rotomsongs/internal/contentcheck"
	"github.com/jr6v5m2k/rotomsongs/internal/mcpserver"
	"github.com/jr6v5m2k/rotomsongs/internal/sitebuild"
	"github.com/jr6v5m2k/rotomsongs/internal/storage"
)

// ErrCheckFailed is returned by Check when error-level issues were found.
var ErrCheckFailed = errors.New("content check failed")

// Build exports the catalog as static JSON into the configured output
// directory.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	e, err := app.setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	if _, err := e.svc.Reload(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	if err := os.MkdirAll(e.cfg.Build.Output, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	out, err := storage.NewFS(e.cfg.Build.Output)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}

	m, err := sitebuild.NewBuilder(e.svc, out, e.logger).Build(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "exported %d songs (%d files) to %s, build %s\n",
		m.Songs, len(m.Files), out.Root(), m.BuildID)
	return nil
}

// Check lints the content directory and prints every issue. asJSON
// switches the report to JSON.
func Check(ctx context.Context, asJSON bool, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	e, err := app.setup(false)
	if err != nil {
		return err
	}
	defer e.Close()

	rep, err := contentcheck.New(e.store, e.validator, e.logger).Run(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		for _, is := range rep.Issues {
			fmt.Fprintln(app.stdout, is.String())
		}
		fmt.Fprintf(app.stdout, "%d files, %d published, %d errors, %d warnings\n",
			rep.Files, rep.Published,
			rep.Count(contentcheck.SeverityError), rep.Count(contentcheck.SeverityWarning))
	}

	if rep.HasErrors() {
		return ErrCheckFailed
	}
	return nil
}

// ServeMCP serves the catalog to an MCP client over stdin/stdout.
func ServeMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	e, err := app.setup(true)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.svc.Reload(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	e.logger.Info("MCP server starting", slog.Int("songs", res.Songs))

	return mcpserver.New(e.svc, app.version).ServeStdio()
}
