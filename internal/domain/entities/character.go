// Package entities contains the character domain: profiles, the rule engine
// and the conversation ledger.
package entities

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"
)

// Profile limits.
const (
	MaxNameLength       = 50
	MaxPromptLength     = 1000
	MaxInputLength      = 1000
	MinCredentialLength = 20
	CredentialPrefix    = "sk-"
	RateLimit           = 1000
)

// Default models and placeholder prompts.
const (
	DefaultModel     = "gpt-3.5-turbo"
	DefaultRoleModel = "gpt-4"
	DefaultPrompt    = "default prompt"
	MergedPrompt     = "merged character"
)

// Option configures a character at construction time.
type Option func(*options)

type options struct {
	model string
	rng   *rand.Rand
	rules []Rule
	now   func() time.Time
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithRand sets the random source used for reply selection.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithRules replaces the default keyword table.
func WithRules(rules []Rule) Option {
	return func(o *options) { o.rules = rules }
}

// WithClock sets the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(defaultModel string, opts []Option) options {
	o := options{model: defaultModel, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.rules == nil {
		o.rules = DefaultRules()
	}
	return o
}

// Character is a named conversational agent with a validated profile and an
// owned conversation ledger.
type Character struct {
	name         string
	systemPrompt string
	model        string
	credential   string
	createdAt    time.Time
	ledger       *Ledger
	engine       *RuleEngine
	now          func() time.Time
}

// NewCharacter creates a character. Name and system prompt are validated
// with the same rules as their setters.
func NewCharacter(name, systemPrompt string, opts ...Option) (*Character, error) {
	return newCharacter(name, systemPrompt, buildOptions(DefaultModel, opts))
}

func newCharacter(name, systemPrompt string, o options) (*Character, error) {
	c := &Character{
		model:  o.model,
		ledger: &Ledger{},
		engine: NewRuleEngine(o.rules, o.rng),
		now:    o.now,
	}
	if err := c.SetName(name); err != nil {
		return nil, err
	}
	if err := c.SetSystemPrompt(systemPrompt); err != nil {
		return nil, err
	}
	c.createdAt = c.now()
	return c, nil
}

// Name returns the character name.
func (c *Character) Name() string { return c.name }

// SetName validates and stores the trimmed name.
func (c *Character) SetName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return newValidationError(CodeEmptyName, "character name must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return newValidationError(CodeNameTooLong, "character name must not exceed %d characters", MaxNameLength)
	}
	c.name = trimmed
	return nil
}

// SystemPrompt returns the behavioural instruction.
func (c *Character) SystemPrompt() string { return c.systemPrompt }

// SetSystemPrompt validates and stores the prompt.
func (c *Character) SetSystemPrompt(prompt string) error {
	if prompt == "" {
		return newValidationError(CodeEmptyPrompt, "system prompt must not be empty")
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return newValidationError(CodePromptTooLong, "system prompt must not exceed %d characters", MaxPromptLength)
	}
	c.systemPrompt = prompt
	return nil
}

// Model returns the model identifier.
func (c *Character) Model() string { return c.model }

// SetModel stores the model identifier as given.
func (c *Character) SetModel(model string) { c.model = model }

// Credential returns the masked credential, or "" when none is set.
func (c *Character) Credential() string {
	return MaskCredential(c.credential)
}

// HasCredential reports whether a credential is stored.
func (c *Character) HasCredential() bool { return c.credential != "" }

// SetCredential validates and stores the raw credential.
func (c *Character) SetCredential(credential string) error {
	if !strings.HasPrefix(credential, CredentialPrefix) {
		return newValidationError(CodeBadCredentialPrefix, "credential must start with %q", CredentialPrefix)
	}
	if utf8.RuneCountInString(credential) < MinCredentialLength {
		return newValidationError(CodeCredentialTooShort, "credential is too short (minimum %d characters)", MinCredentialLength)
	}
	if strings.Contains(credential, " ") {
		return newValidationError(CodeCredentialHasSpace, "credential must not contain spaces")
	}
	c.credential = credential
	return nil
}

// ClearCredential removes the stored credential.
func (c *Character) ClearCredential() { c.credential = "" }

// MaskCredential keeps the first 3 and, for values longer than 7 characters,
// the last 4 characters, masking the rest with '*'.
func MaskCredential(credential string) string {
	if credential == "" {
		return ""
	}
	runes := []rune(credential)
	n := len(runes)
	head := string(runes[:min(3, n)])
	if n <= 7 {
		return head
	}
	return head + strings.Repeat("*", n-7) + string(runes[n-4:])
}

// RateLimit returns the informational request limit.
func (c *Character) RateLimit() int { return RateLimit }

// CreatedAt returns the construction time.
func (c *Character) CreatedAt() time.Time { return c.createdAt }

// Kind returns KindBasic.
func (c *Character) Kind() Kind { return KindBasic }

// ValidateProfile re-checks the stored name and system prompt.
func (c *Character) ValidateProfile() error {
	check := &Character{}
	if err := check.SetName(c.name); err != nil {
		return err
	}
	return check.SetSystemPrompt(c.systemPrompt)
}

// Speak validates text, picks a reply from the rule engine and appends the
// exchange to the ledger.
func (c *Character) Speak(text string) (string, error) {
	if err := validateInput(text); err != nil {
		return "", err
	}
	reply := c.engine.Reply(c.name, text)
	c.ledger.append(Exchange{
		Timestamp: c.now().Format(TimestampLayout),
		User:      text,
		Assistant: reply,
		Model:     c.model,
	})
	return reply, nil
}

// Call is an alias for Speak.
func (c *Character) Call(text string) (string, error) {
	return c.Speak(text)
}

func validateInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return newValidationError(CodeEmptyInput, "input must not be empty")
	}
	if utf8.RuneCountInString(text) > MaxInputLength {
		return newValidationError(CodeInputTooLong, "input is too long, keep it within %d characters", MaxInputLength)
	}
	return nil
}

// Len returns the number of exchanges in the ledger.
func (c *Character) Len() int { return c.ledger.Len() }

// At returns the exchange at index i; negative indices count from the end.
func (c *Character) At(i int) (Exchange, error) { return c.ledger.At(i) }

// Slice returns exchanges in [start, end) with Python slice semantics.
func (c *Character) Slice(start, end int) []Exchange { return c.ledger.Slice(start, end) }

// Contains reports whether keyword occurs in any exchange.
func (c *Character) Contains(keyword string) bool { return c.ledger.Contains(keyword) }

// History returns a copy of the ledger.
func (c *Character) History() []Exchange { return c.ledger.Records() }

// Merge returns a new basic character named "a&b" whose ledger holds this
// character's exchanges followed by other's.
func (c *Character) Merge(other Persona) (*Character, error) {
	if IsNil(other) {
		return nil, fmt.Errorf("%w: can only merge with a character", ErrTypeMismatch)
	}
	o := buildOptions(DefaultModel, []Option{WithClock(c.now)})
	return &Character{
		name:         c.name + "&" + other.Name(),
		systemPrompt: MergedPrompt,
		model:        o.model,
		createdAt:    o.now(),
		ledger:       concat(c.ledger.records, other.History()),
		engine:       NewRuleEngine(o.rules, o.rng),
		now:          o.now,
	}, nil
}

// Summarize reports conversation and word totals.
func (c *Character) Summarize() Summary {
	total := 0
	for _, r := range c.ledger.records {
		total += WordCount(r.User) + WordCount(r.Assistant)
	}
	return Summary{
		Name:              c.name,
		Model:             c.model,
		ConversationCount: c.Len(),
		TotalWords:        total,
		ActiveDays:        int(c.now().Sub(c.createdAt).Hours()/24) + 1,
	}
}

// String implements fmt.Stringer.
func (c *Character) String() string {
	return fmt.Sprintf("AI character: %s (model %s)", c.name, c.model)
}

// GoString implements fmt.GoStringer.
func (c *Character) GoString() string {
	return fmt.Sprintf("Character{name: %q, model: %q, history: %d}", c.name, c.model, c.Len())
}
