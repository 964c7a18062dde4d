/*
Package intent maps free-text utterances onto coaching intents.

The heuristic is a deterministic keyword scorer: no model call, no hidden
state, identical input always yields identical output.
*/
package intent

import (
	"strings"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

// Weights for keyword classes. A strong term alone is not enough to clear the
// delegation gate; an action verb plus a strong term is.
const (
	strongTermWeight = 0.6
	weakTermWeight   = 0.3
	actionVerbWeight = 0.3
	maxConfidence    = 0.95
)

// taskVocabulary maps each task to its trigger terms.
var taskVocabulary = map[types.TaskType]struct {
	strong []string
	weak   []string
}{
	types.TaskDailyReport: {
		strong: []string{"daily report", "today's report", "report"},
		weak:   []string{"today", "summary"},
	},
	types.TaskScoreAnalysis: {
		strong: []string{"analyze", "analysis", "score analysis"},
		weak:   []string{"scores", "performance", "stats", "aim"},
	},
	types.TaskPlaylistBuilding: {
		strong: []string{"playlist", "routine", "training plan"},
		weak:   []string{"practice", "drill", "scenarios", "train"},
	},
	types.TaskProgressReview: {
		strong: []string{"progress", "review", "how far"},
		weak:   []string{"improvement", "catch up", "been away"},
	},
}

// actionVerbs signal the user wants something done rather than discussed.
var actionVerbs = []string{
	"make", "create", "build", "generate", "give me", "show me", "run", "do",
}

// questionMarkers signal an information request.
var questionMarkers = []string{
	"what is", "what are", "how do", "how does", "why", "explain", "tell me about",
	"?",
}

// Classifier scores utterances against the task vocabulary.
type Classifier struct{}

// New creates a Classifier.
func New() *Classifier { return &Classifier{} }

// Classify maps an utterance to an intent. TaskType is set iff the intent is
// task execution; Confidence is always in [0,1].
func (c *Classifier) Classify(utterance string) types.IntentResult {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if text == "" {
		return types.IntentResult{Intent: types.IntentGeneralConversation, Confidence: 1}
	}

	bestTask, bestScore := c.scoreTasks(text)
	if bestScore > 0 {
		if bestScore > maxConfidence {
			bestScore = maxConfidence
		}
		return types.IntentResult{
			Intent:     types.IntentTaskExecution,
			TaskType:   bestTask,
			Confidence: bestScore,
		}
	}

	for _, marker := range questionMarkers {
		if strings.Contains(text, marker) {
			return types.IntentResult{Intent: types.IntentInformationRequest, Confidence: 0.8}
		}
	}

	return types.IntentResult{Intent: types.IntentGeneralConversation, Confidence: 0.9}
}

// scoreTasks returns the best-scoring task and its score. Ties resolve in
// the fixed AllTaskTypes order so classification stays deterministic.
func (c *Classifier) scoreTasks(text string) (types.TaskType, float64) {
	verb := 0.0
	for _, v := range actionVerbs {
		if strings.Contains(text, v) {
			verb = actionVerbWeight
			break
		}
	}

	var bestTask types.TaskType
	bestScore := 0.0
	for _, task := range types.AllTaskTypes {
		vocab := taskVocabulary[task]
		score := 0.0
		for _, term := range vocab.strong {
			if strings.Contains(text, term) {
				score = strongTermWeight
				break
			}
		}
		if score == 0 {
			for _, term := range vocab.weak {
				if strings.Contains(text, term) {
					score = weakTermWeight
					break
				}
			}
		}
		if score == 0 {
			continue
		}
		score += verb
		if score > bestScore {
			bestTask = task
			bestScore = score
		}
	}
	return bestTask, bestScore
}
