package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/chara/internal/application/handlers"
	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/domain/ports"
	"github.com/ersonp/chara/internal/infrastructure/parsers"
)

type chatFlags struct {
	name      string
	prompt    string
	model     string
	role      string
	advanced  bool
	character string
	save      bool
	format    string
	output    string
}

func newChatCmd() *cobra.Command {
	var flags chatFlags

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to a character interactively",
		Long: `Starts an interactive session with one character. Type quit or 退出 to leave.

Commands inside the session:
  /history         print the whole conversation
  /stats           print conversation statistics
  /find <keyword>  list exchanges containing keyword
  /range <from> [<to>]  list exchanges between two ISO-8601 dates
  /save            export the conversation`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.name, "name", "n", "", "Character name (default from config)")
	cmd.Flags().StringVarP(&flags.prompt, "prompt", "p", "", "System prompt (default from config)")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Model identifier (default from config)")
	cmd.Flags().StringVarP(&flags.role, "role", "r", "", "Role for an advanced character (assistant, tutor, reviewer)")
	cmd.Flags().BoolVarP(&flags.advanced, "advanced", "a", false, "Create an advanced (role) character")
	cmd.Flags().StringVarP(&flags.character, "character", "c", "", "Load the character from the roster")
	cmd.Flags().BoolVar(&flags.save, "save", false, "Export the conversation when the session ends")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Export format (json, openai, sqlite; default from config)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Export file (default depends on format)")

	return cmd
}

func runChat(cmd *cobra.Command, flags chatFlags) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		raw, err := chatRecord(d, flags)
		if err != nil {
			return err
		}

		persona, diags, err := buildPersona(raw)
		if err != nil {
			return err
		}
		for _, e := range diags {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", e.Message)
		}

		format := flags.format
		if format == "" {
			format = d.Config.Export.Format
		}
		if !slices.Contains(validSaveFormats, format) {
			return fmt.Errorf("invalid format %q, valid formats: %v", format, validSaveFormats)
		}

		session := &chatSession{
			handler: handlers.NewChatHandler(persona, d.Exports),
			in:      bufio.NewScanner(cmd.InOrStdin()),
			out:     cmd.OutOrStdout(),
			save: func(ctx context.Context, h *handlers.ChatHandler) (string, bool) {
				var dest string
				var ok bool
				err := withLedgerWriter(ctx, d, format, flags.output, persona.Name(), func(w ports.LedgerWriter) error {
					dest = describeWriter(w)
					ok = h.HandleSave(ctx, w)
					return nil
				})
				if err != nil {
					return err.Error(), false
				}
				return dest, ok
			},
		}

		session.run(ctx)

		if flags.save {
			session.saveLedger(ctx)
		}
		return nil
	})
}

// chatRecord resolves the character configuration: config file first, then
// the roster entry, then explicit flags.
func chatRecord(d *Deps, flags chatFlags) (parsers.RawCharacter, error) {
	c := d.Config.Character
	raw := parsers.RawCharacter{
		Name:     c.Name,
		Prompt:   c.Prompt,
		Model:    c.Model,
		Role:     c.Role,
		Advanced: c.Role != "",
		APIKey:   c.APIKey,
	}

	if flags.character != "" {
		rec, err := d.Roster.Get(flags.character)
		if err != nil {
			return raw, err
		}
		raw = *rec
	}

	if flags.name != "" {
		raw.Name = flags.name
	}
	if flags.prompt != "" {
		raw.Prompt = flags.prompt
	}
	if flags.model != "" {
		raw.Model = flags.model
	}
	if flags.role != "" {
		raw.Role = flags.role
		raw.Advanced = true
	}
	if flags.advanced {
		raw.Advanced = true
	}
	return raw, nil
}

type saveFunc func(ctx context.Context, h *handlers.ChatHandler) (dest string, ok bool)

// chatSession is the interactive read loop around a ChatHandler.
type chatSession struct {
	handler *handlers.ChatHandler
	in      *bufio.Scanner
	out     io.Writer
	save    saveFunc
}

func (s *chatSession) run(ctx context.Context) {
	p := s.handler.Persona()
	fmt.Fprintf(s.out, "%s is online. %s\nType quit or 退出 to leave, /help for commands.\n", p.Name(), p.SystemPrompt())

	for {
		if ctx.Err() != nil {
			fmt.Fprintf(s.out, "\n%s: interrupted, goodbye!\n", p.Name())
			return
		}

		fmt.Fprint(s.out, "you: ")
		text, ok := s.readLine()
		if !ok {
			fmt.Fprintln(s.out)
			return
		}

		if slices.Contains(quitWords, text) {
			fmt.Fprintf(s.out, "%s: 再见！\n", p.Name())
			return
		}
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "/") {
			s.command(ctx, text)
			continue
		}

		result, err := s.handler.HandleSpeak(text)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(s.out, "%s: %s\n", p.Name(), result.Reply)

		if result.OfferHistory {
			fmt.Fprint(s.out, "\nShow conversation history? (y/n) ")
			answer, ok := s.readLine()
			if !ok {
				fmt.Fprintln(s.out)
				return
			}
			if strings.EqualFold(answer, "y") {
				printHistory(s.out, p.Name(), s.handler.HandleHistory())
			}
		}
	}
}

func (s *chatSession) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *chatSession) command(ctx context.Context, line string) {
	fields := strings.Fields(line)
	name := s.handler.Persona().Name()

	switch fields[0] {
	case "/history":
		printHistory(s.out, name, s.handler.HandleHistory())
	case "/stats":
		printStats(s.out, s.handler.HandleStats())
	case "/find":
		found, err := s.handler.HandleFind(strings.TrimSpace(strings.TrimPrefix(line, "/find")))
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			return
		}
		printExchanges(s.out, name, found)
	case "/range":
		var start, end string
		if len(fields) > 1 {
			start = fields[1]
		}
		if len(fields) > 2 {
			end = fields[2]
		}
		found, err := s.handler.HandleRange(start, end)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			return
		}
		printExchanges(s.out, name, found)
	case "/save":
		s.saveLedger(ctx)
	case "/summary":
		printSummary(s.out, s.handler.HandleSummary())
	case "/prompt":
		prompt := strings.TrimSpace(strings.TrimPrefix(line, "/prompt"))
		if err := s.handler.HandleSetPrompt(prompt); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			return
		}
		fmt.Fprintf(s.out, "system prompt updated: %s\n", prompt)
	case "/profile":
		s.roleCommand(s.handler.HandleRoleStats())
	case "/skill":
		s.roleCommand(s.handler.HandleAddSkill(strings.TrimPrefix(line, "/skill")))
	case "/improve":
		points := 0
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintf(s.out, "error: invalid points %q\n", fields[1])
				return
			}
			points = n
		}
		s.roleCommand(s.handler.HandleImprove(points))
	case "/help":
		fmt.Fprintln(s.out, chatHelp)
	default:
		fmt.Fprintf(s.out, "unknown command %s\n", fields[0])
	}
}

func (s *chatSession) roleCommand(stats entities.RoleStats, err error) {
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	printRoleStats(s.out, stats)
}

func (s *chatSession) saveLedger(ctx context.Context) {
	if s.save == nil {
		fmt.Fprintln(s.out, "saving is not configured")
		return
	}
	dest, ok := s.save(ctx, s.handler)
	if !ok {
		fmt.Fprintf(s.out, "× could not save conversation: %s\n", dest)
		return
	}
	fmt.Fprintf(s.out, "√ conversation saved to %s\n", dest)
}
