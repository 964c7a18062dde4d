package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"go.uber.org/zap"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/activity"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/detector"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/intent"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/llm"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/pipeline"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/prompts"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

// Graph node names, also reported by Stream.
const (
	NodeDetectContext = "detect_context"
	NodeChatAgent     = "chat_agent"
)

// delegationConfidence is the minimum intent confidence for delegating a turn
// to a task pipeline. Below it the player gets a disambiguation menu.
const delegationConfidence = 0.7

// historyWindow bounds how many past turns frame a conversational reply.
const historyWindow = 8

// Orchestrator sequences context detection, intent classification, optional
// task delegation, and reply composition for one conversation thread.
// All collaborators are constructor injected.
type Orchestrator struct {
	detector     *detector.Detector
	classifier   *intent.Classifier
	router       *pipeline.Router
	playlists    activity.PlaylistSource
	checkpoints  CheckpointStore
	chatModel    model.BaseChatModel
	log          *zap.Logger
	templatesDir string
	graph        compose.Runnable[*turnState, *turnState]
}

// turnState is the value threaded through the graph for one invocation.
type turnState struct {
	state     *types.ConversationState
	detection types.ContextDetectionResult
}

// Config wires an Orchestrator.
type Config struct {
	Detector     *detector.Detector
	Classifier   *intent.Classifier
	Router       *pipeline.Router
	Playlists    activity.PlaylistSource
	Checkpoints  CheckpointStore
	ChatModel    model.BaseChatModel
	Log          *zap.Logger
	TemplatesDir string
}

// New compiles the two-step conversation graph:
// detect_context -> chat_agent -> end.
func New(ctx context.Context, cfg Config) (*Orchestrator, error) {
	if cfg.Detector == nil || cfg.Classifier == nil || cfg.Router == nil || cfg.Checkpoints == nil {
		return nil, fmt.Errorf("detector, classifier, router, and checkpoints are required")
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	o := &Orchestrator{
		detector:     cfg.Detector,
		classifier:   cfg.Classifier,
		router:       cfg.Router,
		playlists:    cfg.Playlists,
		checkpoints:  cfg.Checkpoints,
		chatModel:    cfg.ChatModel,
		log:          log,
		templatesDir: cfg.TemplatesDir,
	}

	graph := compose.NewGraph[*turnState, *turnState]()
	_ = graph.AddLambdaNode(NodeDetectContext, compose.InvokableLambda(o.detectContext))
	_ = graph.AddLambdaNode(NodeChatAgent, compose.InvokableLambda(o.chatAgent))
	_ = graph.AddEdge(compose.START, NodeDetectContext)
	_ = graph.AddEdge(NodeDetectContext, NodeChatAgent)
	_ = graph.AddEdge(NodeChatAgent, compose.END)

	compiled, err := graph.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile conversation graph: %w", err)
	}
	o.graph = compiled
	return o, nil
}

// Options select the thread for an invocation.
type Options struct {
	ThreadID string // defaults to the user id
}

func (opts Options) threadID(userID string) string {
	if opts.ThreadID != "" {
		return opts.ThreadID
	}
	return userID
}

// Invoke runs one full conversational turn and returns the final state.
func (o *Orchestrator) Invoke(ctx context.Context, userID string, messages []types.ConversationTurn, opts Options) (*types.ConversationState, error) {
	ts, err := o.loadTurn(ctx, userID, opts.threadID(userID), messages)
	if err != nil {
		return nil, err
	}

	out, err := o.graph.Invoke(ctx, ts)
	if err != nil {
		return nil, err
	}

	if err := o.checkpoints.Put(ctx, out.state.ThreadID, out.state); err != nil {
		return nil, fmt.Errorf("persist checkpoint: %w", err)
	}
	return out.state.Clone(), nil
}

// StateUpdate is one element of a Stream: the state as of a completed step.
type StateUpdate struct {
	Node  string
	State *types.ConversationState
	Err   error // set on the terminal element when the turn failed
}

// Stream runs one turn and emits a partial-state update per graph step. The
// returned channel is finite, closed when the turn completes, and cannot be
// restarted. On failure the last element carries Err and no further steps run.
// A consumer that stops reading must cancel ctx; sends never block past that.
func (o *Orchestrator) Stream(ctx context.Context, userID string, messages []types.ConversationTurn, opts Options) <-chan StateUpdate {
	updates := make(chan StateUpdate)

	emit := func(u StateUpdate) bool {
		select {
		case updates <- u:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(updates)

		ts, err := o.loadTurn(ctx, userID, opts.threadID(userID), messages)
		if err != nil {
			emit(StateUpdate{Err: err})
			return
		}

		// Same steps the compiled graph runs, emitted one at a time.
		steps := []struct {
			node string
			fn   func(context.Context, *turnState) (*turnState, error)
		}{
			{NodeDetectContext, o.detectContext},
			{NodeChatAgent, o.chatAgent},
		}
		for _, step := range steps {
			ts, err = step.fn(ctx, ts)
			if err != nil {
				emit(StateUpdate{Node: step.node, Err: err})
				return
			}
			if !emit(StateUpdate{Node: step.node, State: ts.state.Clone()}) {
				return
			}
		}

		if err := o.checkpoints.Put(ctx, ts.state.ThreadID, ts.state); err != nil {
			emit(StateUpdate{Err: fmt.Errorf("persist checkpoint: %w", err)})
		}
	}()

	return updates
}

// Thread is the read-only view returned by GetMessages.
type Thread struct {
	Messages    []types.ConversationTurn
	UserContext types.UserContext
	ThreadID    string
}

// GetMessages reads the last checkpoint without running the graph. A missing
// checkpoint yields empty messages and the default context, not an error.
func (o *Orchestrator) GetMessages(ctx context.Context, userID string, opts Options) (Thread, error) {
	threadID := opts.threadID(userID)
	state, err := o.checkpoints.Get(ctx, threadID)
	if err != nil {
		return Thread{}, fmt.Errorf("load checkpoint: %w", err)
	}
	if state == nil {
		return Thread{
			Messages:    []types.ConversationTurn{},
			UserContext: types.ContextActiveUser,
			ThreadID:    threadID,
		}, nil
	}
	clone := state.Clone()
	messages := clone.Messages
	if messages == nil {
		messages = []types.ConversationTurn{}
	}
	return Thread{Messages: messages, UserContext: clone.UserContext, ThreadID: threadID}, nil
}

// loadTurn reloads (or creates) the thread checkpoint and appends the
// inbound messages.
func (o *Orchestrator) loadTurn(ctx context.Context, userID, threadID string, messages []types.ConversationTurn) (*turnState, error) {
	state, err := o.checkpoints.Get(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if state == nil {
		state = &types.ConversationState{
			UserID:      userID,
			ThreadID:    threadID,
			UserContext: types.ContextActiveUser,
		}
	}
	state.Messages = append(state.Messages, messages...)
	return &turnState{state: state}, nil
}

// detectContext refreshes the user's context and writes it into state before
// the chat agent runs. Detector failures abort the whole turn.
func (o *Orchestrator) detectContext(ctx context.Context, ts *turnState) (*turnState, error) {
	hasPlaylist := false
	if o.playlists != nil {
		var err error
		hasPlaylist, err = o.playlists.HasActive(ctx, ts.state.UserID)
		if err != nil {
			return nil, fmt.Errorf("check active playlist: %w", err)
		}
	}

	detection, err := o.detector.Detect(ctx, ts.state.UserID, hasPlaylist)
	if err != nil {
		return nil, fmt.Errorf("detect context: %w", err)
	}

	ts.detection = detection
	ts.state.UserContext = detection.UserContext
	return ts, nil
}

// chatAgent classifies the latest user turn and composes the reply, possibly
// by delegating to a task pipeline.
func (o *Orchestrator) chatAgent(ctx context.Context, ts *turnState) (*turnState, error) {
	state := ts.state

	latest, ok := state.LastUserMessage()
	if !ok {
		o.appendAssistant(state, "What would you like to work on? I can build a playlist, analyze your scores, write a daily report, or review your progress.")
		return ts, nil
	}

	result := o.classifier.Classify(latest.Content)
	o.log.Debug("intent classified",
		zap.String("user_id", state.UserID),
		zap.String("intent", string(result.Intent)),
		zap.String("task_type", string(result.TaskType)),
		zap.Float64("confidence", result.Confidence))

	switch {
	case result.Intent == types.IntentTaskExecution && result.Confidence >= delegationConfidence:
		o.delegate(ctx, ts, result.TaskType)
		return ts, nil

	case result.Intent == types.IntentTaskExecution:
		o.appendAssistant(state, disambiguationMenu())
		return ts, nil

	default:
		reply, err := o.converse(ctx, state, latest.Content)
		if err != nil {
			// Plain-conversation failures are fatal to the turn.
			return nil, fmt.Errorf("compose reply: %w", err)
		}
		o.appendAssistant(state, reply)
		return ts, nil
	}
}

// delegate executes the matched pipeline and folds its outcome into the
// conversation. Pipeline failures become an apologetic turn, never an error.
func (o *Orchestrator) delegate(ctx context.Context, ts *turnState, taskType types.TaskType) {
	exec := o.router.Execute(ctx, ts.state.UserID, taskType, ts.state.UserContext)
	if exec.Metadata.Status == types.StatusFailure {
		o.appendAssistant(ts.state,
			"Sorry, I could not finish that task right now. Please try again in a moment.")
		return
	}
	o.appendAssistant(ts.state, exec.Result.Content)
}

// converse composes a context-framed conversational reply via the model.
func (o *Orchestrator) converse(ctx context.Context, state *types.ConversationState, message string) (string, error) {
	promptText, err := prompts.GetPrompt(prompts.KeyConversation, o.templatesDir)
	if err != nil {
		return "", fmt.Errorf("load prompt: %w", err)
	}

	type conversationReply struct {
		Reply string `json:"reply"`
	}
	chain, err := llm.NewStructuredChain[conversationReply](ctx, "conversation", o.chatModel, promptText)
	if err != nil {
		return "", err
	}
	reply, err := chain.Invoke(ctx, map[string]any{
		"UserContext": string(state.UserContext),
		"History":     renderHistory(state.Messages),
		"Message":     message,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply.Reply) == "" {
		return "", fmt.Errorf("model returned an empty reply")
	}
	return reply.Reply, nil
}

func (o *Orchestrator) appendAssistant(state *types.ConversationState, content string) {
	state.Messages = append(state.Messages, types.ConversationTurn{
		Role:    types.RoleAssistant,
		Content: content,
	})
}

// disambiguationMenu lists the four tasks when intent confidence is too low
// to pick one.
func disambiguationMenu() string {
	var sb strings.Builder
	sb.WriteString("I think you want me to run a task, but I'm not sure which. I can:\n")
	for _, t := range types.AllTaskTypes {
		fmt.Fprintf(&sb, "- %s\n", taskLabel(t))
	}
	sb.WriteString("Which one would you like?")
	return sb.String()
}

func taskLabel(t types.TaskType) string {
	switch t {
	case types.TaskDailyReport:
		return "daily_report: summarize today's practice"
	case types.TaskScoreAnalysis:
		return "score_analysis: break down your recent scores"
	case types.TaskPlaylistBuilding:
		return "playlist_building: build a training playlist"
	case types.TaskProgressReview:
		return "progress_review: review your long-term progress"
	default:
		return string(t)
	}
}

// renderHistory flattens the last turns into prompt text, excluding the
// message being answered.
func renderHistory(messages []types.ConversationTurn) string {
	if len(messages) <= 1 {
		return "(start of conversation)"
	}
	history := messages[:len(messages)-1]
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	var sb strings.Builder
	for _, m := range history {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}
	return sb.String()
}
