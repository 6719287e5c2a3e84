package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dskt-cc/docs/internal/config"
	"github.com/dskt-cc/docs/internal/content"
	"github.com/dskt-cc/docs/internal/metrics"
	"github.com/dskt-cc/docs/internal/render"
	"github.com/spf13/cobra"
)

type options struct {
	port       string
	contentDir string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "dskt-docs",
		Short: "Serve the dskt modding documentation",
		Long: `dskt-docs renders the Markdown and MDX documentation under the content
directory and serves it over HTTP. Without a subcommand it runs serve.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.port, "port", "", "HTTP port (overrides PORT)")
	root.PersistentFlags().StringVar(&opts.contentDir, "content-dir", "", "documentation root (overrides CONTENT_DIR)")

	root.AddCommand(
		newServeCmd(opts),
		newCheckCmd(opts),
		newSitemapCmd(opts),
		newSectionsCmd(opts),
	)
	return root
}

// loadConfig reads the environment, applies flag overrides and validates.
func loadConfig(opts *options) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if opts.port != "" {
		cfg.Port = opts.port
	}
	if opts.contentDir != "" {
		cfg.ContentDir = opts.contentDir
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// newResolver wires the content resolver over cfg.ContentDir.
func newResolver(cfg config.Config, md *render.Markdown, log *slog.Logger, rec metrics.Recorder) *content.Resolver {
	opts := []content.Option{content.WithLogger(log), content.WithRecorder(rec)}
	if cfg.CacheEnabled() {
		opts = append(opts, content.WithCache(content.NewMemoryCache()))
	}
	return content.NewResolver(os.DirFS(cfg.ContentDir), cfg.Sections, md, opts...)
}
