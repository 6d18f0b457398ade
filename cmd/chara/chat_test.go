package main

import (
	"bufio"
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/chara/internal/application/handlers"
	"github.com/ersonp/chara/internal/domain/entities"
	"github.com/ersonp/chara/internal/domain/mocks"
	"github.com/ersonp/chara/internal/domain/services"
	"github.com/ersonp/chara/internal/infrastructure/config"
	"github.com/ersonp/chara/internal/infrastructure/parsers"
)

func newTestSession(t *testing.T, input string) (*chatSession, *bytes.Buffer, *mocks.LedgerWriter) {
	t.Helper()
	c, err := entities.NewCharacter("范西蒙", "乐于助人",
		entities.WithRand(rand.New(rand.NewPCG(1, 2))),
		entities.WithRules([]entities.Rule{{Keyword: "你好", Replies: []string{"{name}向你问好"}}}),
	)
	require.NoError(t, err)

	writer := &mocks.LedgerWriter{}
	var out bytes.Buffer
	session := &chatSession{
		handler: handlers.NewChatHandler(c, services.NewExportService()),
		in:      bufio.NewScanner(strings.NewReader(input)),
		out:     &out,
		save: func(ctx context.Context, h *handlers.ChatHandler) (string, bool) {
			return "mock", h.HandleSave(ctx, writer)
		},
	}
	return session, &out, writer
}

func TestChatSession_SpeakAndQuit(t *testing.T) {
	session, out, _ := newTestSession(t, "你好\n\n   \nquit\n你好\n")

	session.run(context.Background())

	result := out.String()
	assert.Contains(t, result, "范西蒙 is online. 乐于助人")
	assert.Contains(t, result, "范西蒙: 范西蒙向你问好")
	assert.Contains(t, result, "范西蒙: 再见！")
	// input after quit is never read
	assert.Equal(t, 1, session.handler.Persona().Len())
}

func TestChatSession_ChineseQuitWord(t *testing.T) {
	session, out, _ := newTestSession(t, "退出\n")

	session.run(context.Background())

	assert.Contains(t, out.String(), "再见")
	assert.Equal(t, 0, session.handler.Persona().Len())
}

func TestChatSession_EndOfInput(t *testing.T) {
	session, out, _ := newTestSession(t, "你好")

	session.run(context.Background())

	assert.Equal(t, 1, session.handler.Persona().Len())
	assert.NotContains(t, out.String(), "再见")
}

func TestChatSession_OffersHistoryOnSixthExchange(t *testing.T) {
	input := strings.Repeat("你好\n", 6) + "y\nquit\n"
	session, out, _ := newTestSession(t, input)

	session.run(context.Background())

	result := out.String()
	assert.Equal(t, 1, strings.Count(result, "Show conversation history? (y/n)"))
	assert.Contains(t, result, "=== Conversation with 范西蒙 ===")
	assert.Equal(t, 6, strings.Count(result, "user: 你好"))
	assert.Equal(t, 6, session.handler.Persona().Len())
}

func TestChatSession_DeclinedHistory(t *testing.T) {
	input := strings.Repeat("你好\n", 6) + "n\nquit\n"
	session, out, _ := newTestSession(t, input)

	session.run(context.Background())

	assert.NotContains(t, out.String(), "=== Conversation with")
}

func TestChatSession_Commands(t *testing.T) {
	input := "/stats\n你好\nhello world\n/find 你好\n/history\n/stats\n/range 2000-01-01\n/range nope\n/bogus\n/save\nquit\n"
	session, out, writer := newTestSession(t, input)

	session.run(context.Background())

	result := out.String()
	assert.Contains(t, result, services.NoRecordsMessage)
	assert.Contains(t, result, "Total conversations: 2")
	assert.Contains(t, result, "unknown command /bogus")
	assert.Contains(t, result, `invalid start date "nope"`)
	assert.Contains(t, result, "√ conversation saved to mock")
	require.Len(t, writer.Docs, 1)
	assert.Equal(t, 2, writer.Docs[0].TotalConversations)
}

func TestChatSession_ProfileCommands(t *testing.T) {
	input := "/help\n你好\n/summary\n/prompt 新的提示\n/prompt\n/profile\nquit\n"
	session, out, _ := newTestSession(t, input)

	session.run(context.Background())

	result := out.String()
	assert.Contains(t, result, "/improve <points>")
	assert.Contains(t, result, "Conversations: 1")
	assert.Contains(t, result, "system prompt updated: 新的提示")
	assert.Contains(t, result, "must not be empty")
	assert.Contains(t, result, "is not a role character")
	assert.Equal(t, "新的提示", session.handler.Persona().SystemPrompt())
}

func TestChatSession_RoleCommands(t *testing.T) {
	tutor, err := entities.NewRoleCharacter("老师", "教学", entities.RoleTutor,
		entities.WithRand(rand.New(rand.NewPCG(1, 2))))
	require.NoError(t, err)

	var out bytes.Buffer
	session := &chatSession{
		handler: handlers.NewChatHandler(tutor, services.NewExportService()),
		in:      bufio.NewScanner(strings.NewReader("/skill 数学\n/improve 5\n/improve x\n/improve -1\n/profile\nquit\n")),
		out:     &out,
	}

	session.run(context.Background())

	result := out.String()
	assert.Contains(t, result, "数学 (level 1)")
	assert.Contains(t, result, "Performance score: 105")
	assert.Contains(t, result, `invalid points "x"`)
	assert.Contains(t, result, "must be positive")
	assert.Equal(t, 105, tutor.PerformanceScore())
}

func TestChatSession_InvalidInputKeepsLooping(t *testing.T) {
	long := strings.Repeat("字", entities.MaxInputLength+1)
	session, out, _ := newTestSession(t, long+"\n你好\nquit\n")

	session.run(context.Background())

	assert.Contains(t, out.String(), "error:")
	assert.Equal(t, 1, session.handler.Persona().Len())
}

func TestChatSession_Interrupted(t *testing.T) {
	session, out, _ := newTestSession(t, "你好\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session.run(ctx)

	assert.Contains(t, out.String(), "interrupted")
	assert.Equal(t, 0, session.handler.Persona().Len())
}

func TestChatSession_SaveFailure(t *testing.T) {
	session, out, writer := newTestSession(t, "/save\nquit\n")
	writer.Err = assert.AnError

	session.run(context.Background())

	assert.Contains(t, out.String(), "× could not save conversation")
}

func TestChatRecord(t *testing.T) {
	d := &Deps{
		Config: config.Default(),
		Roster: &config.Roster{},
	}
	d.Roster.Put(parsers.RawCharacter{Name: "导师", Advanced: true, Role: "tutor"})

	tests := []struct {
		name         string
		flags        chatFlags
		wantName     string
		wantAdvanced bool
		wantRole     string
		wantErr      bool
	}{
		{name: "config defaults", flags: chatFlags{}, wantName: "范西蒙"},
		{name: "name flag", flags: chatFlags{name: "alice"}, wantName: "alice"},
		{name: "role flag implies advanced", flags: chatFlags{role: "reviewer"}, wantName: "范西蒙", wantAdvanced: true, wantRole: "reviewer"},
		{name: "advanced flag", flags: chatFlags{advanced: true}, wantName: "范西蒙", wantAdvanced: true},
		{name: "roster entry", flags: chatFlags{character: "导师"}, wantName: "导师", wantAdvanced: true, wantRole: "tutor"},
		{name: "missing roster entry", flags: chatFlags{character: "nobody"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := chatRecord(d, tt.flags)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, raw.Name)
			assert.Equal(t, tt.wantAdvanced, raw.Advanced)
			assert.Equal(t, tt.wantRole, raw.Role)
		})
	}
}
