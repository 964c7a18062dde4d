package types

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one utterance in a coaching conversation.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ConversationState is the checkpointed state of one conversation thread.
// Messages is append-only and time ordered; the orchestrator is the only
// writer for a given ThreadID. Checkpoint persistence is last-write-wins, so
// concurrent turns on one thread are a caller-side hazard.
type ConversationState struct {
	UserID      string             `json:"userId"`
	ThreadID    string             `json:"threadId"`
	Messages    []ConversationTurn `json:"messages"`
	UserContext UserContext        `json:"userContext"`
}

// Clone returns a deep copy so stream consumers never observe later mutation.
func (s *ConversationState) Clone() *ConversationState {
	out := &ConversationState{
		UserID:      s.UserID,
		ThreadID:    s.ThreadID,
		UserContext: s.UserContext,
	}
	if len(s.Messages) > 0 {
		out.Messages = make([]ConversationTurn, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	return out
}

// LastUserMessage returns the most recent user-authored turn, if any.
func (s *ConversationState) LastUserMessage() (ConversationTurn, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i], true
		}
	}
	return ConversationTurn{}, false
}

// Intent is the coarse classification of a user utterance.
type Intent string

const (
	IntentTaskExecution       Intent = "task_execution"
	IntentInformationRequest  Intent = "information_request"
	IntentGeneralConversation Intent = "general_conversation"
)

// IntentResult is the output of intent classification.
// TaskType is set iff Intent == IntentTaskExecution. Confidence is in [0,1].
type IntentResult struct {
	Intent     Intent   `json:"intent"`
	TaskType   TaskType `json:"taskType,omitempty"`
	Confidence float64  `json:"confidence"`
}
