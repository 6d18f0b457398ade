package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/infrastructure/config"
	"github.com/ersonp/chara/internal/infrastructure/parsers"
)

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage saved characters",
		RunE:  runRosterList,
	}

	cmd.AddCommand(
		newRosterListCmd(),
		newRosterAddCmd(),
		newRosterShowCmd(),
		newRosterRemoveCmd(),
	)

	return cmd
}

func newRosterListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved characters",
		RunE:  runRosterList,
	}
}

func runRosterList(cmd *cobra.Command, args []string) error {
	return withDeps(func(d *Deps) error {
		out := cmd.OutOrStdout()
		if len(d.Roster.Characters) == 0 {
			fmt.Fprintln(out, "No characters in roster.")
			fmt.Fprintln(out, "Use 'chara roster add NAME' to add one.")
			return nil
		}

		fmt.Fprintf(out, "%-20s %-10s %-15s %s\n", "NAME", "ROLE", "MODEL", "PROMPT")
		fmt.Fprintf(out, "%-20s %-10s %-15s %s\n", "----", "----", "-----", "------")
		for _, rec := range d.Roster.Characters {
			fmt.Fprintf(out, "%-20s %-10s %-15s %s\n", rec.Name, rosterRole(rec), rosterModel(rec), rec.Prompt)
		}
		return nil
	})
}

func newRosterAddCmd() *cobra.Command {
	var rec parsers.RawCharacter

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add or replace a saved character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec.Name = args[0]
			if rec.Role != "" {
				rec.Advanced = true
			}
			return runRosterAdd(cmd, rec)
		},
	}

	cmd.Flags().StringVarP(&rec.Prompt, "prompt", "p", "", "System prompt")
	cmd.Flags().StringVarP(&rec.Model, "model", "m", "", "Model identifier")
	cmd.Flags().StringVarP(&rec.Role, "role", "r", "", "Role (assistant, tutor, reviewer); implies --advanced")
	cmd.Flags().BoolVarP(&rec.Advanced, "advanced", "a", false, "Advanced (role) character")
	cmd.Flags().StringVar(&rec.APIKey, "api-key", "", "Credential (sk-...)")

	return cmd
}

func runRosterAdd(cmd *cobra.Command, rec parsers.RawCharacter) error {
	return withDeps(func(d *Deps) error {
		// Validate the record the same way chat and batch will build it.
		persona, diags, err := buildPersona(rec)
		if err != nil {
			return err
		}
		if len(diags) > 0 {
			return fmt.Errorf("invalid record: %s", diags[0].Message)
		}

		rec.Name = persona.Name()
		d.Roster.Put(rec)
		if err := d.Roster.Save(d.BasePath); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s) to %s\n", rec.Name, persona.Kind(), config.RosterFilePath(d.BasePath))
		return nil
	})
}

func newRosterShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show a saved character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				rec, err := d.Roster.Get(args[0])
				if err != nil {
					return err
				}
				printRosterRecord(cmd.OutOrStdout(), rec)
				return nil
			})
		},
	}
}

func newRosterRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a saved character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				if !d.Roster.Remove(args[0]) {
					return fmt.Errorf("character %q not in roster", args[0])
				}
				if err := d.Roster.Save(d.BasePath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func printRosterRecord(w io.Writer, rec *parsers.RawCharacter) {
	fmt.Fprintf(w, "Name:       %s\n", rec.Name)
	fmt.Fprintf(w, "Prompt:     %s\n", rec.Prompt)
	fmt.Fprintf(w, "Model:      %s\n", rosterModel(*rec))
	fmt.Fprintf(w, "Role:       %s\n", rosterRole(*rec))
	if rec.APIKey != "" {
		fmt.Fprintf(w, "Credential: %s\n", entities.MaskCredential(rec.APIKey))
	}
}

func rosterRole(rec parsers.RawCharacter) string {
	if !rec.Advanced {
		return "-"
	}
	if rec.Role == "" {
		return string(entities.RoleAssistant)
	}
	return rec.Role
}

func rosterModel(rec parsers.RawCharacter) string {
	if rec.Model == "" {
		return entities.DefaultModel
	}
	return rec.Model
}
