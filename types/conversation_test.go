package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneIsDeep(t *testing.T) {
	orig := &ConversationState{
		UserID:      "u1",
		ThreadID:    "t1",
		UserContext: ContextActiveUser,
		Messages: []ConversationTurn{
			{Role: RoleUser, Content: "hello"},
		},
	}

	clone := orig.Clone()
	clone.Messages[0].Content = "mutated"
	clone.Messages = append(clone.Messages, ConversationTurn{Role: RoleAssistant, Content: "extra"})

	assert.Equal(t, "hello", orig.Messages[0].Content)
	assert.Len(t, orig.Messages, 1)
}

func TestLastUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		messages []ConversationTurn
		want     string
		found    bool
	}{
		{
			name:  "empty",
			found: false,
		},
		{
			name: "assistant only",
			messages: []ConversationTurn{
				{Role: RoleAssistant, Content: "hi"},
			},
			found: false,
		},
		{
			name: "latest user turn wins",
			messages: []ConversationTurn{
				{Role: RoleUser, Content: "first"},
				{Role: RoleAssistant, Content: "reply"},
				{Role: RoleUser, Content: "second"},
			},
			want:  "second",
			found: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &ConversationState{Messages: tt.messages}
			turn, ok := s.LastUserMessage()
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, turn.Content)
				assert.Equal(t, RoleUser, turn.Role)
			}
		})
	}
}

func TestUserContextValid(t *testing.T) {
	for _, c := range AllUserContexts {
		assert.True(t, c.Valid(), "%s should be valid", c)
	}
	assert.False(t, UserContext("power_user").Valid())
	assert.False(t, UserContext("").Valid())
}
