package services

import (
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/infrastructure/parsers"
)

// BatchError describes a problem with one configuration record.
// Fatal errors mean the record produced no character.
type BatchError struct {
	Line    int    // Record position (1-indexed, 0 if unknown)
	Name    string // Character name, if known
	Field   string // Which field has the error
	Message string // Human-readable error message
	Fatal   bool
}

func (e BatchError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("record %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// BatchCreateResult contains the characters created from a batch.
type BatchCreateResult struct {
	Characters []entities.Persona
	Errors     []BatchError
}

// SpeakResult is the outcome of one character's reply in a batch.
// A failed result carries its own empty reply.
type SpeakResult struct {
	Name    string `json:"name"`
	Reply   string `json:"response"`
	Success bool   `json:"success"`
	Err     error  `json:"-"`
}

// BatchProcessor creates characters and dispatches messages in bulk.
// Per-record failures are reported, never returned as errors.
type BatchProcessor struct {
	opts []entities.Option
}

// NewBatchProcessor creates a BatchProcessor. opts are applied to every
// character it creates.
func NewBatchProcessor(opts ...entities.Option) *BatchProcessor {
	return &BatchProcessor{opts: opts}
}

// Create builds one character per record. Records without a name or with an
// invalid profile are skipped; a bad credential only leaves the credential unset.
func (p *BatchProcessor) Create(records []parsers.RawCharacter) *BatchCreateResult {
	result := &BatchCreateResult{
		Characters: make([]entities.Persona, 0, len(records)),
	}
	logx.Infof("batch create: received %d records", len(records))

	for i := range records {
		raw := &records[i]
		line := raw.LineNum
		if line == 0 {
			line = i + 1
		}

		if raw.Name == "" {
			p.report(result, BatchError{Line: line, Field: "name", Message: "name is empty or missing", Fatal: true})
			continue
		}

		persona, err := p.build(raw)
		if err != nil {
			p.report(result, BatchError{Line: line, Name: raw.Name, Message: fmt.Sprintf("creating character: %v", err), Fatal: true})
			continue
		}

		if raw.APIKey != "" {
			if err := setCredential(persona, raw.APIKey); err != nil {
				p.report(result, BatchError{Line: line, Name: raw.Name, Field: "api_key", Message: fmt.Sprintf("setting credential: %v", err)})
			}
		}

		result.Characters = append(result.Characters, persona)
		logx.Infof("batch create: created %s character %s", persona.Kind(), persona.Name())
	}

	logx.Infof("batch create: created %d characters", len(result.Characters))
	return result
}

func (p *BatchProcessor) build(raw *parsers.RawCharacter) (entities.Persona, error) {
	prompt := raw.Prompt
	if prompt == "" {
		prompt = entities.DefaultPrompt
	}
	model := raw.Model
	if model == "" {
		model = entities.DefaultModel
	}
	opts := append([]entities.Option{entities.WithModel(model)}, p.opts...)

	if raw.Advanced {
		return entities.NewRoleCharacter(raw.Name, prompt, entities.Role(raw.Role), opts...)
	}
	return entities.NewCharacter(raw.Name, prompt, opts...)
}

type credentialSetter interface {
	SetCredential(credential string) error
}

func setCredential(p entities.Persona, credential string) error {
	c, ok := p.(credentialSetter)
	if !ok {
		return fmt.Errorf("%w: %T has no credential", entities.ErrTypeMismatch, p)
	}
	return c.SetCredential(credential)
}

func (p *BatchProcessor) report(result *BatchCreateResult, e BatchError) {
	result.Errors = append(result.Errors, e)
	if e.Fatal {
		logx.Errorf("batch create: skipped %s", e.Error())
		return
	}
	logx.Infof("batch create: %s", e.Error())
}

// Speak sends message to every persona independently. One failure does not
// stop the rest; results follow input order.
func (p *BatchProcessor) Speak(personas []entities.Persona, message string) []SpeakResult {
	results := make([]SpeakResult, 0, len(personas))
	for _, persona := range personas {
		if entities.IsNil(persona) {
			err := fmt.Errorf("%w: cannot speak to a nil character", entities.ErrTypeMismatch)
			logx.Errorf("batch speak: %v", err)
			results = append(results, SpeakResult{Err: err})
			continue
		}
		reply, err := persona.Speak(message)
		if err != nil {
			logx.Errorf("batch speak: %s failed: %v", persona.Name(), err)
			results = append(results, SpeakResult{Name: persona.Name(), Err: err})
			continue
		}
		results = append(results, SpeakResult{Name: persona.Name(), Reply: reply, Success: true})
	}
	return results
}
