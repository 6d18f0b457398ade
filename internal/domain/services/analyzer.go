package services

import (
	"math"
	"strings"
	"time"

	"github.com/ersonp/chara/internal/domain/entities"
)

// NoRecordsMessage is reported by Stats for an empty ledger.
const NoRecordsMessage = "no conversation records"

// timestampLayouts are tried in order when parsing exchange timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ConversationStats aggregates one character's ledger.
type ConversationStats struct {
	Total             int     `json:"total_conversation"`
	Today             int     `json:"today_conversation"`
	AvgUserWords      float64 `json:"avg_user_words"`
	AvgAssistantWords float64 `json:"avg_assistant_words"`
	First             string  `json:"first_conversation,omitempty"`
	Last              string  `json:"last_conversation,omitempty"`
	Message           string  `json:"message,omitempty"`
}

// Analyzer computes read-only statistics over a character's ledger.
type Analyzer struct {
	persona entities.Persona
	now     func() time.Time
}

// NewAnalyzer creates an Analyzer for p.
func NewAnalyzer(p entities.Persona) *Analyzer {
	return &Analyzer{persona: p, now: time.Now}
}

// WithClock sets the clock used to decide what "today" is.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// Stats returns totals, today's count, average word counts and the first and
// last timestamps. Unparsable timestamps only drop out of the today count.
func (a *Analyzer) Stats() ConversationStats {
	history := a.persona.History()
	total := len(history)
	if total == 0 {
		return ConversationStats{Message: NoRecordsMessage}
	}

	now := a.now()
	var today, userWords, assistantWords int
	for _, r := range history {
		if ts, ok := parseTimestamp(r.Timestamp); ok && sameDay(ts.In(now.Location()), now) {
			today++
		}
		userWords += entities.WordCount(r.User)
		assistantWords += entities.WordCount(r.Assistant)
	}

	return ConversationStats{
		Total:             total,
		Today:             today,
		AvgUserWords:      round2(float64(userWords) / float64(total)),
		AvgAssistantWords: round2(float64(assistantWords) / float64(total)),
		First:             history[0].Timestamp,
		Last:              history[total-1].Timestamp,
	}
}

// FindByKeyword returns exchanges containing keyword, in ledger order.
func (a *Analyzer) FindByKeyword(keyword string) []entities.Exchange {
	var result []entities.Exchange
	for _, r := range a.persona.History() {
		if r.Contains(keyword) {
			result = append(result, r)
		}
	}
	return result
}

// ExportRange returns exchanges whose timestamp lies within [start, end].
// A nil bound is unbounded. With any bound set, exchanges whose timestamp
// cannot be parsed are left out.
func (a *Analyzer) ExportRange(start, end *time.Time) []entities.Exchange {
	var result []entities.Exchange
	for _, r := range a.persona.History() {
		if start == nil && end == nil {
			result = append(result, r)
			continue
		}
		ts, ok := parseTimestamp(r.Timestamp)
		if !ok {
			continue
		}
		if start != nil && ts.Before(*start) {
			continue
		}
		if end != nil && ts.After(*end) {
			continue
		}
		result = append(result, r)
	}
	return result
}

// ParseDate parses a range bound given as an ISO-8601 date or timestamp.
// Bounds without a zone are read in loc.
func ParseDate(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseTimestamp(value string) (time.Time, bool) {
	return ParseDate(value, time.Local)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
