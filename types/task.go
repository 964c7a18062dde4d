package types

import "time"

// TaskType identifies one of the four coaching task pipelines.
type TaskType string

const (
	TaskDailyReport      TaskType = "daily_report"
	TaskScoreAnalysis    TaskType = "score_analysis"
	TaskPlaylistBuilding TaskType = "playlist_building"
	TaskProgressReview   TaskType = "progress_review"
)

// AllTaskTypes lists every pipeline in menu order.
var AllTaskTypes = []TaskType{
	TaskDailyReport,
	TaskScoreAnalysis,
	TaskPlaylistBuilding,
	TaskProgressReview,
}

// Valid reports whether t names a known pipeline.
func (t TaskType) Valid() bool {
	for _, v := range AllTaskTypes {
		if t == v {
			return true
		}
	}
	return false
}

// TaskResultKind discriminates the TaskResult union.
type TaskResultKind string

const (
	ResultKindReport   TaskResultKind = "report"
	ResultKindAnalysis TaskResultKind = "analysis"
	ResultKindPlaylist TaskResultKind = "playlist"
	ResultKindReview   TaskResultKind = "review"
)

// TaskResult is a closed tagged union over the four pipeline payloads.
// Exactly the payload matching Kind is non-nil. Content carries the
// human-readable summary that gets folded into the conversation.
type TaskResult struct {
	Kind     TaskResultKind    `json:"kind"`
	Content  string            `json:"content"`
	Report   *DailyReport      `json:"report,omitempty"`
	Analysis *ScoreAnalysis    `json:"analysis,omitempty"`
	Playlist *TrainingPlaylist `json:"playlist,omitempty"`
	Review   *ProgressReview   `json:"review,omitempty"`
}

// Trend describes the direction of recent performance.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// DailyReport summarizes the last 24 hours of practice.
type DailyReport struct {
	SessionsToday       int      `json:"sessionsToday"`
	TotalPracticeTime   string   `json:"totalPracticeTime"`
	Achievements        []string `json:"achievements"`
	PerformanceRating   string   `json:"performanceRating"`
	TomorrowGoals       []string `json:"tomorrowGoals"`
	MotivationalMessage string   `json:"motivationalMessage"`
}

// ScoreAnalysis summarizes strengths and weaknesses over the last week.
type ScoreAnalysis struct {
	TotalSessions   int      `json:"totalSessions"`
	AverageScore    float64  `json:"averageScore"`
	Trend           Trend    `json:"trend"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// PlaylistScenario is a single entry of a generated training playlist.
type PlaylistScenario struct {
	Name        string   `json:"name"`
	Duration    int      `json:"duration"` // minutes
	Difficulty  string   `json:"difficulty"`
	FocusSkills []string `json:"focusSkills"`
}

// TrainingPlaylist is a generated practice routine targeting the player's
// current weaknesses. TotalDuration is always the sum of scenario durations.
type TrainingPlaylist struct {
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Scenarios        []PlaylistScenario `json:"scenarios"`
	TargetWeaknesses []string           `json:"targetWeaknesses"`
	TotalDuration    int                `json:"totalDuration"`
	Reasoning        string             `json:"reasoning"`
}

// ProgressReview welcomes back a player after an absence.
type ProgressReview struct {
	DaysInactive        int      `json:"daysInactive"`
	ProgressSummary     string   `json:"progressSummary"`
	Achievements        []string `json:"achievements"`
	AreasForImprovement []string `json:"areasForImprovement"`
	NextGoals           []string `json:"nextGoals"`
}

// ExecutionStatus is the terminal state of one task execution.
type ExecutionStatus string

const (
	StatusSuccess ExecutionStatus = "success"
	StatusFailure ExecutionStatus = "failure"
)

// TaskExecutionMetadata records the outcome of a routed task execution.
// Invariant: Status == StatusFailure iff ErrorMessage is non-empty and the
// paired TaskResult is nil.
type TaskExecutionMetadata struct {
	ExecutedAt   time.Time       `json:"executedAt"`
	TaskType     TaskType        `json:"taskType"`
	Status       ExecutionStatus `json:"status"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}
