package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/domain/ports"
	"github.com/ersonp/chara/internal/domain/services"
)

// HistoryOfferInterval is how many ledger records pass between offers to
// print the full history.
const HistoryOfferInterval = 6

// ChatHandler drives one interactive session with a single character.
type ChatHandler struct {
	persona  entities.Persona
	analyzer *services.Analyzer
	exports  *services.ExportService
}

// NewChatHandler creates a new ChatHandler for p.
func NewChatHandler(p entities.Persona, exports *services.ExportService) *ChatHandler {
	return &ChatHandler{
		persona:  p,
		analyzer: services.NewAnalyzer(p),
		exports:  exports,
	}
}

// WithClock sets the clock the analyzer uses for "today".
func (h *ChatHandler) WithClock(now func() time.Time) *ChatHandler {
	h.analyzer.WithClock(now)
	return h
}

// Persona returns the character behind the session.
func (h *ChatHandler) Persona() entities.Persona {
	return h.persona
}

// SpeakResult contains the outcome of one chat turn.
type SpeakResult struct {
	Reply        string
	Count        int
	OfferHistory bool
}

// HandleSpeak sends text to the character.
func (h *ChatHandler) HandleSpeak(text string) (*SpeakResult, error) {
	reply, err := h.persona.Speak(text)
	if err != nil {
		return nil, err
	}
	count := h.persona.Len()
	return &SpeakResult{
		Reply:        reply,
		Count:        count,
		OfferHistory: count%HistoryOfferInterval == 0,
	}, nil
}

// HandleHistory returns the whole ledger.
func (h *ChatHandler) HandleHistory() []entities.Exchange {
	return h.persona.History()
}

// HandleStats returns ledger statistics.
func (h *ChatHandler) HandleStats() services.ConversationStats {
	return h.analyzer.Stats()
}

// HandleFind returns exchanges containing keyword.
func (h *ChatHandler) HandleFind(keyword string) ([]entities.Exchange, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, errors.New("keyword is required")
	}
	return h.analyzer.FindByKeyword(keyword), nil
}

// HandleRange returns exchanges between two ISO-8601 bounds. Empty bounds
// are unbounded.
func (h *ChatHandler) HandleRange(start, end string) ([]entities.Exchange, error) {
	startTime, err := parseBound("start", start)
	if err != nil {
		return nil, err
	}
	endTime, err := parseBound("end", end)
	if err != nil {
		return nil, err
	}
	return h.analyzer.ExportRange(startTime, endTime), nil
}

func parseBound(label, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, ok := services.ParseDate(value, time.Local)
	if !ok {
		return nil, fmt.Errorf("invalid %s date %q", label, value)
	}
	return &t, nil
}

// HandleSave exports the ledger through w and reports success.
func (h *ChatHandler) HandleSave(ctx context.Context, w ports.LedgerWriter) bool {
	return h.exports.Save(ctx, h.persona, w)
}

// HandleSummary returns the character's activity summary.
func (h *ChatHandler) HandleSummary() entities.Summary {
	return h.persona.Summarize()
}

type promptSetter interface {
	SetSystemPrompt(prompt string) error
}

// HandleSetPrompt replaces the system prompt. The old prompt is kept on
// validation failure.
func (h *ChatHandler) HandleSetPrompt(prompt string) error {
	s, ok := h.persona.(promptSetter)
	if !ok {
		return fmt.Errorf("%w: %T has no system prompt setter", entities.ErrTypeMismatch, h.persona)
	}
	return s.SetSystemPrompt(prompt)
}

// HandleAddSkill gives a role character a level 1 skill.
func (h *ChatHandler) HandleAddSkill(name string) (entities.RoleStats, error) {
	rc, err := h.roleCharacter()
	if err != nil {
		return entities.RoleStats{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return entities.RoleStats{}, errors.New("skill name is required")
	}
	rc.AddSkill(name, 1)
	return rc.Stats(), nil
}

// HandleImprove raises a role character's performance score.
func (h *ChatHandler) HandleImprove(points int) (entities.RoleStats, error) {
	rc, err := h.roleCharacter()
	if err != nil {
		return entities.RoleStats{}, err
	}
	if err := rc.ImprovePerformance(points); err != nil {
		return entities.RoleStats{}, err
	}
	return rc.Stats(), nil
}

// HandleRoleStats returns the usage report of a role character.
func (h *ChatHandler) HandleRoleStats() (entities.RoleStats, error) {
	rc, err := h.roleCharacter()
	if err != nil {
		return entities.RoleStats{}, err
	}
	return rc.Stats(), nil
}

func (h *ChatHandler) roleCharacter() (*entities.RoleCharacter, error) {
	rc, ok := h.persona.(*entities.RoleCharacter)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a role character", entities.ErrTypeMismatch, h.persona.Name())
	}
	return rc, nil
}
