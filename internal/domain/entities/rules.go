package entities

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// namePlaceholder is substituted with the character name in reply templates.
const namePlaceholder = "{name}"

// Rule maps a trigger keyword to its candidate reply templates.
type Rule struct {
	Keyword string
	Replies []string
}

// DefaultRules returns the built-in keyword table. Order matters: the first
// keyword contained in the input wins.
func DefaultRules() []Rule {
	return []Rule{
		{Keyword: "名字", Replies: []string{
			"我叫{name}，我是一个AI助手",
			"我是{name}，请问有什么可以帮您",
		}},
		{Keyword: "你好", Replies: []string{
			"你好呀",
			"嗨！很高兴见到你",
			"你好，请问有什么可以帮您",
		}},
		{Keyword: "天气", Replies: []string{
			"今天下雨，记得带雨伞哦！",
			"今天大晴天，可以出去散散步，记得防晒哦",
			"今天天气不错呢",
		}},
		{Keyword: "秋天", Replies: []string{
			"秋天是丰收的季节，我喜欢秋天",
			"我喜欢秋天的凉爽",
		}},
		{Keyword: "谢谢", Replies: []string{
			"不客气。",
			"很高兴帮到您！",
			"这是我应该做的。",
		}},
	}
}

// RuleEngine selects a reply by keyword containment.
type RuleEngine struct {
	rules []Rule
	rng   *rand.Rand
}

// NewRuleEngine creates an engine over rules using rng for reply selection.
// Rules without replies are ignored.
func NewRuleEngine(rules []Rule, rng *rand.Rand) *RuleEngine {
	kept := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Keyword == "" || len(r.Replies) == 0 {
			continue
		}
		kept = append(kept, r)
	}
	return &RuleEngine{rules: kept, rng: rng}
}

// Reply returns the reply for text spoken to the character called name.
func (e *RuleEngine) Reply(name, text string) string {
	if r, ok := e.match(text); ok {
		template := r.Replies[e.rng.IntN(len(r.Replies))]
		return strings.ReplaceAll(template, namePlaceholder, name)
	}
	return fallbackReply(name, text)
}

// match returns the first rule whose keyword occurs in text.
func (e *RuleEngine) match(text string) (Rule, bool) {
	for _, r := range e.rules {
		if strings.Contains(text, r.Keyword) {
			return r, true
		}
	}
	return Rule{}, false
}

func fallbackReply(name, text string) string {
	return fmt.Sprintf("%s：我不太明白「%s」的意思，你可以问我天气、名字，或者打招呼哦。", name, text)
}
