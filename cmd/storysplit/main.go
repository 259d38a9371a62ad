package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/storysplit/internal/heading"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	patterns string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "storysplit",
		Short: "Split manuscripts into chapters",
		Long: `storysplit segments plain-text manuscripts into titled chapters and
appendices, renumbers them, and writes the canonical saved format.

Example:
  storysplit split novel.txt
  storysplit split novel.docx --out story/novel.txt
  storysplit ls story --recursive`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.patterns, "patterns", "", "YAML file replacing the built-in heading families")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging on stderr")

	rootCmd.AddCommand(splitCmd(opts))
	rootCmd.AddCommand(lsCmd(opts))
	rootCmd.AddCommand(patternsCmd(opts))
	return rootCmd
}

func (o *rootOptions) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (o *rootOptions) table() (*heading.Table, error) {
	if o.patterns == "" {
		return heading.Default(), nil
	}
	t, err := heading.LoadFile(o.patterns)
	if err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	return t, nil
}
