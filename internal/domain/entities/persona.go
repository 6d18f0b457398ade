package entities

import (
	"strings"
	"time"
)

// Kind tags the concrete persona variant.
type Kind string

// Persona variants.
const (
	KindBasic    Kind = "basic"
	KindAdvanced Kind = "advanced"
)

// Persona is the capability shared by every character variant. A
// *RoleCharacter can be used anywhere a *Character is expected through it.
type Persona interface {
	Name() string
	SystemPrompt() string
	Model() string
	Kind() Kind
	CreatedAt() time.Time

	// ValidateProfile re-checks the name and system prompt constraints.
	ValidateProfile() error

	// Speak validates text, selects a reply and appends one exchange.
	Speak(text string) (string, error)
	// Call is an alias for Speak.
	Call(text string) (string, error)

	Summarize() Summary

	Len() int
	At(i int) (Exchange, error)
	Slice(start, end int) []Exchange
	Contains(keyword string) bool
	History() []Exchange

	String() string
}

// Summary is a computed snapshot of a character's activity.
type Summary struct {
	Name              string `json:"name"`
	Model             string `json:"model"`
	ConversationCount int    `json:"conversation_count"`
	TotalWords        int    `json:"total_words"`
	ActiveDays        int    `json:"active_days"`
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// IsNil reports whether p is nil or wraps a nil character.
func IsNil(p Persona) bool {
	switch v := p.(type) {
	case nil:
		return true
	case *Character:
		return v == nil
	case *RoleCharacter:
		return v == nil || v.Character == nil
	}
	return false
}
