/*
Package types provides the shared domain model for the aim coach:
user contexts, coaching tasks, conversation state, and error taxonomy.
*/
package types

// UserContext classifies a player's current engagement state. Exactly one
// context holds at any evaluation instant; it is a pure function of activity
// history and playlist existence.
type UserContext string

const (
	// ContextNewUser means no activity has ever been recorded.
	ContextNewUser UserContext = "new_user"
	// ContextReturningUser means the player has been inactive for a week or more.
	ContextReturningUser UserContext = "returning_user"
	// ContextActiveUser is the default for a player with recent activity.
	ContextActiveUser UserContext = "active_user"
	// ContextPlaylistRecommended means the player has no active playlist.
	ContextPlaylistRecommended UserContext = "playlist_recommended"
	// ContextAnalysisRecommended means the player produced enough fresh scores
	// today to make a score analysis worthwhile.
	ContextAnalysisRecommended UserContext = "analysis_recommended"
)

// AllUserContexts lists every valid context value.
var AllUserContexts = []UserContext{
	ContextNewUser,
	ContextReturningUser,
	ContextActiveUser,
	ContextPlaylistRecommended,
	ContextAnalysisRecommended,
}

// Valid reports whether c is one of the enumerated contexts.
func (c UserContext) Valid() bool {
	for _, v := range AllUserContexts {
		if c == v {
			return true
		}
	}
	return false
}

// ContextDetectionResult is the derived output of context detection.
// It is computed fresh on every turn and never persisted.
type ContextDetectionResult struct {
	UserContext    UserContext `json:"userContext"`
	DaysInactive   int         `json:"daysInactive"`
	NewScoresCount int         `json:"newScoresCount"`
	IsNewUser      bool        `json:"isNewUser"`
}
