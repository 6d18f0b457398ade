package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ersonp/chara/internal/application/handlers"
	"github.com/ersonp/chara/internal/domain/ports"
)

type batchFlags struct {
	format     string
	message    string
	names      []string
	save       bool
	saveFormat string
	output     string
}

func newBatchCmd() *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Create characters in bulk and send them one message",
		Long: `Creates characters from a JSON, CSV or YAML file (or from the roster when no
file is given), registers them and optionally sends every character the same message.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "Input format (json, csv, yaml, auto)")
	cmd.Flags().StringVarP(&flags.message, "message", "m", "", "Message to send to every character")
	cmd.Flags().StringSliceVar(&flags.names, "to", nil, "Only send the message to these characters")
	cmd.Flags().BoolVar(&flags.save, "save", false, "Export every character's conversation")
	cmd.Flags().StringVar(&flags.saveFormat, "save-format", "", "Export format (json, openai, sqlite; default from config)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Export file for openai or sqlite formats")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string, flags batchFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	return withDeps(func(d *Deps) error {
		h := d.BatchHandler

		var loaded *handlers.LoadResult
		source := "roster"
		if len(args) == 1 {
			source = args[0]
			var err error
			loaded, err = h.HandleFile(args[0], flags.format)
			if err != nil {
				return err
			}
		} else {
			if len(d.Roster.Characters) == 0 {
				return errors.New("no file given and the roster is empty")
			}
			loaded = h.HandleRecords(d.Roster.Characters)
		}

		fmt.Fprintf(out, "Loaded %d characters from %s\n", len(loaded.Registered), source)
		printBatchErrors(out, loaded.Errors)
		for _, name := range loaded.Duplicates {
			fmt.Fprintf(out, "  duplicate: %s already registered\n", name)
		}

		printRegistry(out, h.HandleList())

		if flags.message != "" {
			fmt.Fprintf(out, "\nMessage: %s\n", flags.message)
			for _, r := range h.HandleSpeak(flags.message, flags.names...) {
				if !r.Success {
					fmt.Fprintf(out, "  %s: × %v\n", r.Name, r.Err)
					continue
				}
				fmt.Fprintf(out, "  %s: %s\n", r.Name, r.Reply)
			}
		}

		if !flags.save {
			return nil
		}

		format := flags.saveFormat
		if format == "" {
			format = d.Config.Export.Format
		}
		if !slices.Contains(validSaveFormats, format) {
			return fmt.Errorf("invalid format %q, valid formats: %v", format, validSaveFormats)
		}

		saved := 0
		for _, entry := range h.HandleList() {
			p := h.Registry().Get(entry.Name)
			output := flags.output
			if format == "json" {
				output = ""
			}
			err := withLedgerWriter(ctx, d, format, output, p.Name(), func(w ports.LedgerWriter) error {
				if d.Exports.Save(ctx, p, w) {
					saved++
					fmt.Fprintf(out, "√ %s saved to %s\n", p.Name(), describeWriter(w))
				} else {
					fmt.Fprintf(out, "× %s could not be saved\n", p.Name())
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "Saved %d conversations\n", saved)

		return nil
	})
}
