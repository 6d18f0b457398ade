package entities

import (
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for exchange timestamps.
const TimestampLayout = time.RFC3339Nano

// Exchange is one user-input/assistant-reply pair in a ledger.
type Exchange struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user"`
	Assistant string `json:"assistant"`
	Model     string `json:"model"`
}

// Contains reports whether keyword occurs in the user or assistant text.
func (e Exchange) Contains(keyword string) bool {
	return strings.Contains(e.User, keyword) || strings.Contains(e.Assistant, keyword)
}

// Ledger is the append-only conversation history owned by one character.
// Only the owning character appends to it.
type Ledger struct {
	records []Exchange
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// At returns the record at index i. Negative indices count from the end.
func (l *Ledger) At(i int) (Exchange, error) {
	n := len(l.records)
	idx := i
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return Exchange{}, &IndexError{Index: i, Length: n}
	}
	return l.records[idx], nil
}

// Slice returns a copy of records[start:end] using Python slice rules:
// negative bounds count from the end and out-of-range bounds are clamped.
// It never fails; an empty range yields an empty slice.
func (l *Ledger) Slice(start, end int) []Exchange {
	n := len(l.records)
	start = clampBound(start, n)
	end = clampBound(end, n)
	if start >= end {
		return []Exchange{}
	}
	out := make([]Exchange, end-start)
	copy(out, l.records[start:end])
	return out
}

func clampBound(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}

// Contains reports whether keyword occurs in any record.
func (l *Ledger) Contains(keyword string) bool {
	for _, r := range l.records {
		if r.Contains(keyword) {
			return true
		}
	}
	return false
}

// Records returns a copy of every record in insertion order.
func (l *Ledger) Records() []Exchange {
	out := make([]Exchange, len(l.records))
	copy(out, l.records)
	return out
}

func (l *Ledger) append(e Exchange) {
	l.records = append(l.records, e)
}

// amendLast replaces the assistant text of the most recent record.
func (l *Ledger) amendLast(assistant string) {
	if len(l.records) == 0 {
		return
	}
	l.records[len(l.records)-1].Assistant = assistant
}

// concat builds a fresh ledger holding a's records followed by b's.
func concat(a, b []Exchange) *Ledger {
	records := make([]Exchange, 0, len(a)+len(b))
	records = append(records, a...)
	records = append(records, b...)
	return &Ledger{records: records}
}
