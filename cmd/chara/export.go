package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/domain/ports"
	"github.com/ersonp/chara/internal/infrastructure/exporter/jsonfile"
)

type exportFlags struct {
	format string
	output string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Convert a saved conversation",
		Long: `Reads a conversation saved as JSON and writes it as JSON, CSV, markdown,
an OpenAI chat transcript line, or into the SQLite archive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "markdown", "Output format (json, csv, markdown, openai, sqlite)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout for json, csv and markdown)")

	return cmd
}

func runExport(cmd *cobra.Command, input string, flags exportFlags) error {
	if !slices.Contains(validExportFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validExportFormats)
	}

	doc, err := jsonfile.Read(input)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch flags.format {
	case "openai", "sqlite":
		return withDeps(func(d *Deps) error {
			return withLedgerWriter(ctx, d, flags.format, flags.output, doc.CharacterName, func(w ports.LedgerWriter) error {
				if err := w.Write(ctx, doc); err != nil {
					return fmt.Errorf("writing export: %w", err)
				}
				fmt.Fprintf(out, "Exported %d conversations to %s\n", doc.TotalConversations, describeWriter(w))
				return nil
			})
		})
	default:
		return writeDocument(out, doc, flags.format, flags.output)
	}
}

func writeDocument(stdout io.Writer, doc entities.ExportDocument, format, output string) (err error) {
	w := stdout
	if output != "" {
		var f *os.File
		f, err = os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	}

	if err := formatDocument(w, doc, format); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if output != "" {
		fmt.Fprintf(stdout, "Exported %d conversations to %s\n", doc.TotalConversations, output)
	}
	return nil
}

func formatDocument(w io.Writer, doc entities.ExportDocument, format string) error {
	switch format {
	case "json":
		return jsonfile.Encode(w, doc)
	case "csv":
		return formatCSV(w, doc)
	case "markdown":
		return formatMarkdown(w, doc)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func formatCSV(w io.Writer, doc entities.ExportDocument) error {
	writer := csv.NewWriter(w)

	header := []string{"timestamp", "user", "assistant", "model"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, e := range doc.Conversations {
		if err := writer.Write([]string{e.Timestamp, e.User, e.Assistant, e.Model}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatMarkdown(w io.Writer, doc entities.ExportDocument) error {
	if _, err := fmt.Fprintf(w, "# Conversation with %s\n\n", doc.CharacterName); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "> %s\n\nSaved: %s, total: %d conversations\n\n", escapeMarkdown(doc.SystemPrompt), doc.SavedAt, doc.TotalConversations); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| Time | User | Reply |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|------|------|-------|\n"); err != nil {
		return err
	}

	for _, e := range doc.Conversations {
		if _, err := fmt.Fprintf(w, "| %s | %s | %s |\n",
			e.Timestamp,
			escapeMarkdown(e.User),
			escapeMarkdown(e.Assistant),
		); err != nil {
			return err
		}
	}

	return nil
}
