package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/domain/services"
)

const historyRule = "------------------------------"

func printHistory(w io.Writer, name string, history []entities.Exchange) {
	if len(history) == 0 {
		fmt.Fprintln(w, "No conversation history.")
		return
	}

	fmt.Fprintf(w, "\n=== Conversation with %s ===\n", name)
	printExchanges(w, name, history)
}

func printExchanges(w io.Writer, name string, exchanges []entities.Exchange) {
	if len(exchanges) == 0 {
		fmt.Fprintln(w, "No matching exchanges.")
		return
	}

	for _, e := range exchanges {
		fmt.Fprintf(w, "[%s]\n", e.Timestamp)
		fmt.Fprintf(w, "user: %s\n", e.User)
		fmt.Fprintf(w, "%s: %s\n", name, e.Assistant)
		fmt.Fprintln(w, historyRule)
	}
}

func printStats(w io.Writer, stats services.ConversationStats) {
	if stats.Message != "" {
		fmt.Fprintln(w, stats.Message)
		return
	}

	fmt.Fprintf(w, "Total conversations: %d\n", stats.Total)
	fmt.Fprintf(w, "Today: %d\n", stats.Today)
	fmt.Fprintf(w, "Average user words: %.2f\n", stats.AvgUserWords)
	fmt.Fprintf(w, "Average assistant words: %.2f\n", stats.AvgAssistantWords)
	fmt.Fprintf(w, "First: %s\n", stats.First)
	fmt.Fprintf(w, "Last: %s\n", stats.Last)
}

func printRegistry(w io.Writer, entries []services.RegistryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No characters.")
		return
	}

	fmt.Fprintf(w, "Characters (%d):\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "  %-20s %-8s %-15s %d conversations\n", e.Name, e.Kind, e.Model, e.Conversations)
	}
}

func printBatchErrors(w io.Writer, errs []services.BatchError) {
	for _, e := range errs {
		level := "warning"
		if e.Fatal {
			level = "skipped"
		}
		fmt.Fprintf(w, "  %s: %s\n", level, e.Error())
	}
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func printSummary(w io.Writer, s entities.Summary) {
	fmt.Fprintf(w, "Name: %s\n", s.Name)
	fmt.Fprintf(w, "Model: %s\n", s.Model)
	fmt.Fprintf(w, "Conversations: %d\n", s.ConversationCount)
	fmt.Fprintf(w, "Total words: %d\n", s.TotalWords)
	fmt.Fprintf(w, "Active days: %d\n", s.ActiveDays)
}

func printRoleStats(w io.Writer, s entities.RoleStats) {
	fmt.Fprintf(w, "Name: %s\n", s.Name)
	fmt.Fprintf(w, "Role: %s\n", s.Role)
	fmt.Fprintf(w, "Tokens used: %d\n", s.TokensUsed)
	fmt.Fprintf(w, "Conversations: %d\n", s.TotalConversations)
	fmt.Fprintf(w, "Performance score: %d\n", s.PerformanceScore)
	fmt.Fprintf(w, "Created: %s\n", s.CreatedAt)

	if len(s.Skills) == 0 {
		fmt.Fprintln(w, "Skills: none")
		return
	}
	fmt.Fprintln(w, "Skills:")
	for _, sk := range s.Skills {
		fmt.Fprintf(w, "  %s (level %d)\n", sk.Name, sk.Level)
	}
}
