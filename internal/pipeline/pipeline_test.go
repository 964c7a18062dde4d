package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/internal/activity"
	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

// fakeSource serves canned records, newest first.
type fakeSource struct {
	records []activity.Record
	err     error
}

func (f *fakeSource) MostRecent(_ context.Context, _ string) (*activity.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) == 0 {
		return nil, nil
	}
	rec := f.records[0]
	return &rec, nil
}

func (f *fakeSource) Since(_ context.Context, _ string, from time.Time) ([]activity.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []activity.Record
	for _, r := range f.records {
		if !r.Timestamp.Before(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) CountSince(ctx context.Context, userID string, from time.Time) (int, error) {
	recs, err := f.Since(ctx, userID, from)
	return len(recs), err
}

func (f *fakeSource) ExistsAny(_ context.Context, _ string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return len(f.records) > 0, nil
}

func (f *fakeSource) Recent(_ context.Context, _ string, limit int) ([]activity.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

// fakeChatModel implements model.BaseChatModel with a canned reply.
type fakeChatModel struct {
	reply string
	err   error
	calls int
}

func (m *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &schema.Message{Role: schema.Assistant, Content: m.reply}, nil
}

func (m *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

// fakePlaylists records SaveActive calls.
type fakePlaylists struct {
	saved   bool
	title   string
	payload []byte
	err     error
}

func (f *fakePlaylists) SaveActive(_ context.Context, _ string, payload []byte, title string) error {
	if f.err != nil {
		return f.err
	}
	f.saved = true
	f.title = title
	f.payload = payload
	return nil
}

func someRecords(ts ...time.Time) []activity.Record {
	out := make([]activity.Record, len(ts))
	for i, t := range ts {
		out[i] = activity.Record{
			ID: "r", UserID: "u1", ScenarioID: "gridshot",
			Score: 800, Accuracy: 70, Timestamp: t,
		}
	}
	return out
}

func testDeps(src activity.Source, chatModel model.BaseChatModel) Deps {
	return Deps{
		Source:    src,
		ChatModel: chatModel,
		Now:       func() time.Time { return testNow },
	}
}

func TestEmptyWindowsSkipTheModel(t *testing.T) {
	tests := []struct {
		name     string
		taskType types.TaskType
		kind     types.TaskResultKind
	}{
		{"daily report", types.TaskDailyReport, types.ResultKindReport},
		{"score analysis", types.TaskScoreAnalysis, types.ResultKindAnalysis},
		{"playlist building", types.TaskPlaylistBuilding, types.ResultKindPlaylist},
		{"progress review", types.TaskProgressReview, types.ResultKindReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatModel := &fakeChatModel{err: errors.New("must not be called")}
			pipelines := CreateAll(testDeps(&fakeSource{}, chatModel))
			p, ok := pipelines[tt.taskType]
			require.True(t, ok)

			result, err := p.Run(context.Background(), "u1", types.ContextNewUser)
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.kind, result.Kind)
			assert.NotEmpty(t, result.Content)
			assert.Zero(t, chatModel.calls)
		})
	}
}

func TestDailyReportSelfComputesSessionFields(t *testing.T) {
	src := &fakeSource{records: someRecords(
		testNow.Add(-1*time.Hour), testNow.Add(-2*time.Hour), testNow.Add(-3*time.Hour),
		testNow.Add(-40*time.Hour), // outside 24h window
	)}
	// The model lies about nothing it controls; session counts come from data.
	chatModel := &fakeChatModel{reply: `{"achievements":["new gridshot high"],"performanceRating":"good","tomorrowGoals":["tracking work"],"motivationalMessage":"Keep it up."}`}

	p := CreateAll(testDeps(src, chatModel))[types.TaskDailyReport]
	result, err := p.Run(context.Background(), "u1", types.ContextActiveUser)
	require.NoError(t, err)
	require.NotNil(t, result.Report)
	assert.Equal(t, 3, result.Report.SessionsToday)
	assert.Equal(t, "6 min", result.Report.TotalPracticeTime)
	assert.Equal(t, "good", result.Report.PerformanceRating)
	assert.Equal(t, 1, chatModel.calls)
}

func TestScoreAnalysisSelfComputesAggregates(t *testing.T) {
	src := &fakeSource{records: someRecords(
		testNow.Add(-24*time.Hour), testNow.Add(-48*time.Hour),
	)}
	chatModel := &fakeChatModel{reply: `{"strengths":["clicking"],"weaknesses":["tracking"],"recommendations":["smoothbot daily"]}`}

	p := CreateAll(testDeps(src, chatModel))[types.TaskScoreAnalysis]
	result, err := p.Run(context.Background(), "u1", types.ContextAnalysisRecommended)
	require.NoError(t, err)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, 2, result.Analysis.TotalSessions)
	assert.InDelta(t, 800, result.Analysis.AverageScore, 0.001)
	assert.Equal(t, []string{"tracking"}, result.Analysis.Weaknesses)
}

func TestPlaylistTotalDurationIsAlwaysTheSum(t *testing.T) {
	src := &fakeSource{records: someRecords(testNow.Add(-24 * time.Hour))}
	// Model reports a wrong totalDuration; the pipeline must recompute it.
	chatModel := &fakeChatModel{reply: `{
		"title":"Tracking Week",
		"description":"tracking focus",
		"totalDuration":999,
		"scenarios":[
			{"name":"Smoothbot","duration":15,"difficulty":"medium","focusSkills":["tracking"]},
			{"name":"Air","duration":10,"difficulty":"medium","focusSkills":["tracking"]}
		],
		"targetWeaknesses":["tracking"],
		"reasoning":"accuracy lags on tracking scenarios"
	}`}

	playlists := &fakePlaylists{}
	deps := testDeps(src, chatModel)
	deps.Playlists = playlists

	p := CreateAll(deps)[types.TaskPlaylistBuilding]
	result, err := p.Run(context.Background(), "u1", types.ContextPlaylistRecommended)
	require.NoError(t, err)
	require.NotNil(t, result.Playlist)
	assert.Equal(t, 25, result.Playlist.TotalDuration)
	assert.True(t, playlists.saved)
	assert.Equal(t, "Tracking Week", playlists.title)
	assert.Contains(t, string(playlists.payload), "Smoothbot")
}

func TestStarterPlaylistDurationInvariant(t *testing.T) {
	p := CreateAll(testDeps(&fakeSource{}, &fakeChatModel{err: errors.New("must not be called")}))[types.TaskPlaylistBuilding]
	result, err := p.Run(context.Background(), "u1", types.ContextNewUser)
	require.NoError(t, err)
	require.NotNil(t, result.Playlist)

	sum := 0
	for _, sc := range result.Playlist.Scenarios {
		sum += sc.Duration
	}
	assert.Equal(t, sum, result.Playlist.TotalDuration)
	assert.NotEmpty(t, result.Playlist.Scenarios)
}

func TestPlaylistRejectsEmptyScenarioList(t *testing.T) {
	src := &fakeSource{records: someRecords(testNow.Add(-24 * time.Hour))}
	chatModel := &fakeChatModel{reply: `{"title":"Empty","scenarios":[]}`}

	p := CreateAll(testDeps(src, chatModel))[types.TaskPlaylistBuilding]
	_, err := p.Run(context.Background(), "u1", types.ContextActiveUser)
	require.Error(t, err)

	var modelErr *types.ModelServiceError
	assert.ErrorAs(t, err, &modelErr)
}

func TestPlaylistPersistenceIsBestEffort(t *testing.T) {
	deps := testDeps(&fakeSource{}, &fakeChatModel{err: errors.New("must not be called")})
	deps.Playlists = &fakePlaylists{err: errors.New("disk full")}

	p := CreateAll(deps)[types.TaskPlaylistBuilding]
	result, err := p.Run(context.Background(), "u1", types.ContextNewUser)
	require.NoError(t, err)
	assert.NotNil(t, result.Playlist)
}

func TestProgressReviewComputesDaysInactive(t *testing.T) {
	src := &fakeSource{records: someRecords(testNow.Add(-10 * 24 * time.Hour))}
	chatModel := &fakeChatModel{reply: `{"progressSummary":"solid base before the break","achievements":["gridshot 800"],"areasForImprovement":["tracking"],"nextGoals":["rebuild consistency"]}`}

	p := CreateAll(testDeps(src, chatModel))[types.TaskProgressReview]
	result, err := p.Run(context.Background(), "u1", types.ContextReturningUser)
	require.NoError(t, err)
	require.NotNil(t, result.Review)
	assert.Equal(t, 10, result.Review.DaysInactive)
	assert.Contains(t, result.Content, "Welcome back after 10 days")
}

func TestPipelineSurfacesSourceErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("store down")}
	for _, taskType := range types.AllTaskTypes {
		t.Run(string(taskType), func(t *testing.T) {
			p := CreateAll(testDeps(src, &fakeChatModel{}))[taskType]
			_, err := p.Run(context.Background(), "u1", types.ContextActiveUser)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "store down")
		})
	}
}

func TestPipelineSurfacesModelErrors(t *testing.T) {
	src := &fakeSource{records: someRecords(testNow.Add(-1 * time.Hour))}
	chatModel := &fakeChatModel{err: errors.New("rate limited")}

	p := CreateAll(testDeps(src, chatModel))[types.TaskDailyReport]
	_, err := p.Run(context.Background(), "u1", types.ContextActiveUser)
	require.Error(t, err)

	var modelErr *types.ModelServiceError
	assert.ErrorAs(t, err, &modelErr)
}
