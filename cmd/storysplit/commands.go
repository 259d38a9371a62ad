package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dgallion1/storysplit/internal/chapter"
	"github.com/dgallion1/storysplit/internal/library"
	"github.com/dgallion1/storysplit/internal/parser"
	"github.com/dgallion1/storysplit/internal/session"
)

func splitCmd(root *rootOptions) *cobra.Command {
	var (
		out      string
		asJSON   bool
		fallback bool
	)
	cmd := &cobra.Command{
		Use:   "split <file>",
		Short: "Segment a manuscript and print or save its chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger()
			tbl, err := root.table()
			if err != nil {
				return err
			}

			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			text, err := parser.Extract(f, path, parser.Options{PDFFallbackPdftotext: fallback})
			if err != nil {
				return err
			}

			sess := session.New(tbl, session.WithLogger(log))
			if err := sess.Import(filepath.Base(path), text); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			chapters := sess.Chapters()

			w := cmd.OutOrStdout()
			switch {
			case out != "":
				if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(out, []byte(sess.Export()), 0o644); err != nil {
					return err
				}
				color.New(color.FgGreen).Fprintf(w, "Saved %d chapters to %s\n", len(chapters), out)
				return nil
			case asJSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(chapters)
			default:
				renderChapters(w, filepath.Base(path), chapters)
				return nil
			}
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the saved format to this file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print chapters as JSON")
	cmd.Flags().BoolVar(&fallback, "pdftotext", true, "Fall back to pdftotext for PDFs")
	return cmd
}

func renderChapters(w io.Writer, name string, chapters []chapter.Chapter) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(w, "%s: %d chapters\n", name, len(chapters))

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"#", "Title", "Words", "Preview"})
	for i, c := range chapters {
		tw.AppendRow(table.Row{i + 1, c.Title, chapter.WordCount(c.Content), preview(c.Content, 40)})
	}
	tw.SetStyle(table.StyleLight)
	tw.Render()
}

// preview returns the first line of text cut to n characters.
func preview(text string, n int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	r := []rune(line)
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	return line
}

func lsCmd(root *rootOptions) *cobra.Command {
	var (
		storyRoot string
		recursive bool
	)
	cmd := &cobra.Command{
		Use:   "ls [folder]",
		Short: "List manuscripts in a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := "story"
			if len(args) > 0 {
				folder = args[0]
			}
			store := library.NewStore(storyRoot, folder, 1, root.logger())
			files, err := store.List(folder, recursive)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			tw := table.NewWriter()
			tw.SetOutputMirror(w)
			tw.AppendHeader(table.Row{"Name", "Size", "Modified", "Path"})
			for _, f := range files {
				tw.AppendRow(table.Row{f.Name, f.Size, f.Modified.Format("2006-01-02 15:04"), f.Path})
			}
			tw.AppendFooter(table.Row{"", len(files), "", ""})
			tw.SetStyle(table.StyleLight)
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&storyRoot, "root", ".", "Directory folders are resolved against")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Include subfolders")
	return cmd
}

func patternsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "Show heading families in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := root.table()
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"#", "Name", "Kind", "Pattern", "Title"})
			for i, f := range tbl.Families() {
				titled := ""
				if f.TitleGroup > 0 {
					titled = "inline"
				}
				tw.AppendRow(table.Row{i + 1, f.Name, f.Kind, f.Pattern, titled})
			}
			tw.SetStyle(table.StyleLight)
			tw.Render()
			return nil
		},
	}
}
