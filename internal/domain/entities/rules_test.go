package entities

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleEngine_DefaultRules(t *testing.T) {
	rules := DefaultRules()
	templates := make(map[string][]string, len(rules))
	for _, r := range rules {
		templates[r.Keyword] = r.Replies
	}

	tests := []struct {
		name    string
		input   string
		keyword string
	}{
		{name: "name", input: "你叫什么名字", keyword: "名字"},
		{name: "greeting", input: "你好", keyword: "你好"},
		{name: "weather", input: "今天天气怎么样", keyword: "天气"},
		{name: "autumn", input: "你喜欢秋天吗", keyword: "秋天"},
		{name: "thanks", input: "谢谢你", keyword: "谢谢"},
		{name: "first keyword in table order wins", input: "你好，你叫什么名字", keyword: "名字"},
		{name: "greeting before weather", input: "天气你好", keyword: "你好"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewRuleEngine(rules, rand.New(rand.NewPCG(1, 2)))
			for i := 0; i < 20; i++ {
				reply := engine.Reply("范西蒙", tt.input)
				var allowed []string
				for _, tpl := range templates[tt.keyword] {
					allowed = append(allowed, strings.ReplaceAll(tpl, "{name}", "范西蒙"))
				}
				assert.Contains(t, allowed, reply)
				assert.NotContains(t, reply, "{name}")
			}
		})
	}
}

func TestRuleEngine_Fallback(t *testing.T) {
	engine := NewRuleEngine(DefaultRules(), rand.New(rand.NewPCG(1, 2)))

	reply := engine.Reply("范西蒙", "hello")
	assert.Equal(t, "范西蒙：我不太明白「hello」的意思，你可以问我天气、名字，或者打招呼哦。", reply)
}

func TestRuleEngine_SeededIsDeterministic(t *testing.T) {
	a := NewRuleEngine(DefaultRules(), rand.New(rand.NewPCG(42, 42)))
	b := NewRuleEngine(DefaultRules(), rand.New(rand.NewPCG(42, 42)))

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Reply("x", "你好"), b.Reply("x", "你好"))
	}
}

func TestRuleEngine_SkipsEmptyRules(t *testing.T) {
	engine := NewRuleEngine([]Rule{
		{Keyword: "", Replies: []string{"never"}},
		{Keyword: "hi", Replies: nil},
		{Keyword: "hi", Replies: []string{"{name} says hi"}},
	}, rand.New(rand.NewPCG(1, 2)))

	assert.Equal(t, "bot says hi", engine.Reply("bot", "hi there"))
	assert.Contains(t, engine.Reply("bot", "xyz"), "我不太明白")
}

func TestCharacter_CustomRules(t *testing.T) {
	c, err := NewCharacter("bot", "p", WithRules([]Rule{{Keyword: "ping", Replies: []string{"pong from {name}"}}}))
	if !assert.NoError(t, err) {
		return
	}

	reply, err := c.Speak("ping?")
	assert.NoError(t, err)
	assert.Equal(t, "pong from bot", reply)
}
