package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dskt-cc/docs/internal/config"
	"github.com/dskt-cc/docs/internal/content"
	"github.com/dskt-cc/docs/internal/metrics"
	"github.com/dskt-cc/docs/internal/render"
	"github.com/dskt-cc/docs/internal/sitemap"
	"github.com/spf13/cobra"
)

var errContentProblems = errors.New("content check found errors")

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate every document in the content directory",
		Long: `check parses and renders every document of every configured section and
reports files the server would refuse to serve. It exits non-zero when any
error is found; warnings alone do not fail the check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, docs, err := cliResolver(opts)
			if err != nil {
				return err
			}
			problems := docs.Check(cmd.Context())
			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintln(out, p)
			}
			if content.HasErrors(problems) {
				return errContentProblems
			}
			fmt.Fprintf(out, "ok (%d warnings)\n", len(problems))
			return nil
		},
	}
}

func newSitemapCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sitemap",
		Short: "Write sitemap.xml to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, docs, err := cliResolver(opts)
			if err != nil {
				return err
			}
			urls := sitemap.Build(cmd.Context(), cfg.BaseURL, docs, time.Now())
			return sitemap.Write(cmd.OutOrStdout(), urls)
		},
	}
}

func newSectionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "Print every section with its documents in navigation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, docs, err := cliResolver(opts)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range docs.Sections() {
				fmt.Fprintf(tw, "%s\t%s\n", s.Key, s.Title)
				for _, d := range docs.ListSectionDocuments(cmd.Context(), s.Key) {
					order := "-"
					if d.Order != nil {
						order = fmt.Sprint(*d.Order)
					}
					fmt.Fprintf(tw, "  %s\t%s\t%s\n", d.Slug, d.Title, order)
				}
			}
			return tw.Flush()
		},
	}
}

// cliResolver builds an uncached resolver that logs to stderr, keeping
// stdout for command output.
func cliResolver(opts *options) (config.Config, *content.Resolver, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return cfg, nil, err
	}
	cfg.CacheSetting = "false"
	log := newLogger(os.Stderr, cfg)
	return cfg, newResolver(cfg, render.NewMarkdown(cfg.HighlightStyle), log, metrics.NoopRecorder{}), nil
}
