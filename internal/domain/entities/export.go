package entities

// ExportDocument is the serialized form of one character's ledger.
type ExportDocument struct {
	CharacterName      string     `json:"character_name"`
	SystemPrompt       string     `json:"system_prompt"`
	Model              string     `json:"-"`
	TotalConversations int        `json:"total_conversations"`
	SavedAt            string     `json:"saved_at"`
	Conversations      []Exchange `json:"conversations"`
}

// NewExportDocument snapshots p's ledger. savedAt is an ISO-8601 timestamp.
func NewExportDocument(p Persona, savedAt string) ExportDocument {
	history := p.History()
	return ExportDocument{
		CharacterName:      p.Name(),
		SystemPrompt:       p.SystemPrompt(),
		Model:              p.Model(),
		TotalConversations: len(history),
		SavedAt:            savedAt,
		Conversations:      history,
	}
}
