package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/chara/internal/infrastructure/relationaldb/sqlite"
)

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse the SQLite export archive",
	}

	cmd.AddCommand(
		newArchiveListCmd(),
		newArchiveShowCmd(),
		newArchiveSearchCmd(),
		newArchiveDeleteCmd(),
	)

	return cmd
}

func withArchiveDeps(cmd *cobra.Command, fn func(*sqlite.Repository) error) error {
	return withDeps(func(d *Deps) error {
		return withArchive(cmd.Context(), d.Config.Export.SQLite, fn)
	})
}

func newArchiveListCmd() *cobra.Command {
	var (
		character string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived exports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchiveDeps(cmd, func(repo *sqlite.Repository) error {
				records, err := repo.ListExports(cmd.Context(), character, limit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No exports archived.")
					return nil
				}

				fmt.Fprintf(out, "%-36s %-20s %-6s %s\n", "ID", "CHARACTER", "COUNT", "SAVED")
				for _, r := range records {
					fmt.Fprintf(out, "%-36s %-20s %-6d %s\n", r.ID, r.CharacterName, r.TotalConversations, r.SavedAt)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&character, "character", "c", "", "Only list exports of this character")
	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultArchiveLimit, "Maximum number of exports to display")

	return cmd
}

func newArchiveShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print an archived conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchiveDeps(cmd, func(repo *sqlite.Repository) error {
				doc, err := repo.FindExport(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if doc == nil {
					return fmt.Errorf("export not found: %s", args[0])
				}
				printHistory(cmd.OutOrStdout(), doc.CharacterName, doc.Conversations)
				return nil
			})
		},
	}
}

func newArchiveSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search KEYWORD",
		Short: "Find archived exchanges containing a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchiveDeps(cmd, func(repo *sqlite.Repository) error {
				found, err := repo.SearchExchanges(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(found) == 0 {
					fmt.Fprintln(out, "No matching exchanges.")
					return nil
				}
				for _, a := range found {
					fmt.Fprintf(out, "[%s] %s #%d\n", a.Exchange.Timestamp, a.CharacterName, a.Seq+1)
					fmt.Fprintf(out, "user: %s\n", a.Exchange.User)
					fmt.Fprintf(out, "%s: %s\n", a.CharacterName, a.Exchange.Assistant)
					fmt.Fprintln(out, historyRule)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", DefaultSearchLimit, "Maximum number of exchanges to display")

	return cmd
}

func newArchiveDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an archived export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchiveDeps(cmd, func(repo *sqlite.Repository) error {
				if err := repo.DeleteExport(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted export %s\n", args[0])
				return nil
			})
		},
	}
}
