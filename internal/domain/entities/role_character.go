package entities

import (
	"fmt"
	"time"
)

// Role selects the pre/post-processing a RoleCharacter applies.
// Unknown roles behave like RoleAssistant.
type Role string

// Known roles.
const (
	RoleAssistant Role = "assistant"
	RoleTutor     Role = "tutor"
	RoleReviewer  Role = "reviewer"
)

// Role tags and labels.
const (
	TutorInputTag      = "【学生提问】"
	ReviewerInputTag   = "【代码审查】"
	TutorReplyLabel    = "导师回答："
	ReviewerReplyLabel = "审查意见："
)

// InitialPerformanceScore is the score every RoleCharacter starts with.
const InitialPerformanceScore = 100

// Skill is a named capability with a level.
type Skill struct {
	Name  string `json:"skill"`
	Level int    `json:"level"`
}

// RoleCharacter is a Character that tags input and labels replies by role,
// and keeps usage accounting.
type RoleCharacter struct {
	*Character
	role             Role
	tokensUsed       int
	skills           []Skill
	performanceScore int
}

// NewRoleCharacter creates a role character. An empty role means RoleAssistant.
// The model defaults to DefaultRoleModel.
func NewRoleCharacter(name, systemPrompt string, role Role, opts ...Option) (*RoleCharacter, error) {
	base, err := newCharacter(name, systemPrompt, buildOptions(DefaultRoleModel, opts))
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = RoleAssistant
	}
	return &RoleCharacter{
		Character:        base,
		role:             role,
		performanceScore: InitialPerformanceScore,
	}, nil
}

// Role returns the role.
func (c *RoleCharacter) Role() Role { return c.role }

// TokensUsed returns the running word-count usage metric.
func (c *RoleCharacter) TokensUsed() int { return c.tokensUsed }

// PerformanceScore returns the current score.
func (c *RoleCharacter) PerformanceScore() int { return c.performanceScore }

// Skills returns a copy of the skill list.
func (c *RoleCharacter) Skills() []Skill {
	out := make([]Skill, len(c.skills))
	copy(out, c.skills)
	return out
}

// Kind returns KindAdvanced.
func (c *RoleCharacter) Kind() Kind { return KindAdvanced }

// Speak tags the input by role, delegates to the base rule engine, updates
// usage and stores the role-formatted reply in the ledger.
func (c *RoleCharacter) Speak(text string) (string, error) {
	if err := validateInput(text); err != nil {
		return "", err
	}
	prefixed := c.tagInput(text)
	reply, err := c.Character.Speak(prefixed)
	if err != nil {
		return "", err
	}
	c.tokensUsed += WordCount(prefixed) + WordCount(reply)

	formatted := c.formatReply(reply)
	c.ledger.amendLast(formatted)
	return formatted, nil
}

// Call is an alias for Speak.
func (c *RoleCharacter) Call(text string) (string, error) {
	return c.Speak(text)
}

func (c *RoleCharacter) tagInput(text string) string {
	switch c.role {
	case RoleTutor:
		return TutorInputTag + text
	case RoleReviewer:
		return ReviewerInputTag + text
	default:
		return text
	}
}

func (c *RoleCharacter) formatReply(reply string) string {
	switch c.role {
	case RoleReviewer:
		return ReviewerReplyLabel + reply
	case RoleTutor:
		return TutorReplyLabel + reply
	default:
		return reply
	}
}

// AddSkill appends a skill; duplicates are kept.
func (c *RoleCharacter) AddSkill(name string, level int) {
	c.skills = append(c.skills, Skill{Name: name, Level: level})
}

// ImprovePerformance raises the score by points, which must be positive.
func (c *RoleCharacter) ImprovePerformance(points int) error {
	if points <= 0 {
		return newValidationError(CodeNonPositiveDelta, "improvement points must be positive, got %d", points)
	}
	c.performanceScore += points
	return nil
}

// RoleStats is the usage report of a RoleCharacter.
type RoleStats struct {
	Name               string  `json:"name"`
	Skills             []Skill `json:"skills"`
	TokensUsed         int     `json:"token_used"`
	Role               Role    `json:"role"`
	TotalConversations int     `json:"total_conversations"`
	PerformanceScore   int     `json:"performance_score"`
	CreatedAt          string  `json:"created_at"`
}

// Stats returns the usage report.
func (c *RoleCharacter) Stats() RoleStats {
	return RoleStats{
		Name:               c.name,
		Skills:             c.Skills(),
		TokensUsed:         c.tokensUsed,
		Role:               c.role,
		TotalConversations: c.Len(),
		PerformanceScore:   c.performanceScore,
		CreatedAt:          c.createdAt.Format(time.DateTime),
	}
}

// String implements fmt.Stringer.
func (c *RoleCharacter) String() string {
	return fmt.Sprintf("RoleCharacter(name=%s, role=%s, skills=%d)", c.name, c.role, len(c.skills))
}

// GoString implements fmt.GoStringer.
func (c *RoleCharacter) GoString() string {
	return fmt.Sprintf("RoleCharacter{name: %q, role: %q}", c.name, c.role)
}
