package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

func rec(scenario string, score, acc float64, ts time.Time) Record {
	return Record{ID: "x", UserID: "u1", ScenarioID: scenario, Score: score, Accuracy: acc, Timestamp: ts}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Sessions)
	assert.Equal(t, types.TrendStable, s.Trend)
	assert.Empty(t, s.PerScenario)
	assert.Equal(t, 0, s.EstimatedMinutes)
}

func TestSummarizeAggregates(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	records := []Record{
		rec("gridshot", 800, 70, base),
		rec("gridshot", 900, 80, base.Add(time.Hour)),
		rec("tracking", 500, 50, base.Add(2*time.Hour)),
	}

	s := Summarize(records)
	assert.Equal(t, 3, s.Sessions)
	assert.InDelta(t, 733.33, s.AverageScore, 0.01)
	assert.InDelta(t, 66.67, s.AverageAccuracy, 0.01)
	assert.Equal(t, 6, s.EstimatedMinutes)

	// PerScenario sorted by scenario ID.
	if assert.Len(t, s.PerScenario, 2) {
		grid := s.PerScenario[0]
		assert.Equal(t, "gridshot", grid.ScenarioID)
		assert.Equal(t, 2, grid.Sessions)
		assert.InDelta(t, 850, grid.AverageScore, 0.001)
		assert.InDelta(t, 900, grid.BestScore, 0.001)
		assert.Equal(t, "tracking", s.PerScenario[1].ScenarioID)
	}
}

func TestTrend(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	series := func(scores ...float64) []Record {
		out := make([]Record, len(scores))
		for i, sc := range scores {
			out[i] = rec("gridshot", sc, 60, base.Add(time.Duration(i)*time.Hour))
		}
		return out
	}

	tests := []struct {
		name   string
		scores []float64
		want   types.Trend
	}{
		{"later half clearly higher", []float64{500, 500, 600, 600}, types.TrendImproving},
		{"later half clearly lower", []float64{600, 600, 500, 500}, types.TrendDeclining},
		{"within two percent is stable", []float64{500, 500, 505, 505}, types.TrendStable},
		{"fewer than four records is stable", []float64{100, 900, 900}, types.TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(series(tt.scores...)).Trend)
		})
	}
}

func TestTrendIgnoresInputOrder(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	// Newest first, the way store queries return them.
	records := []Record{
		rec("gridshot", 600, 60, base.Add(3*time.Hour)),
		rec("gridshot", 600, 60, base.Add(2*time.Hour)),
		rec("gridshot", 500, 60, base.Add(time.Hour)),
		rec("gridshot", 500, 60, base),
	}
	assert.Equal(t, types.TrendImproving, Summarize(records).Trend)
}

func TestWeakestScenarios(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	records := []Record{
		rec("gridshot", 800, 75, base),
		rec("tracking", 400, 45, base.Add(time.Hour)),
		rec("flicks", 600, 55, base.Add(2*time.Hour)),
	}

	s := Summarize(records)
	assert.Equal(t, []string{"tracking", "flicks", "gridshot"}, s.WeakestScenarios(3))
	assert.Equal(t, []string{"tracking"}, s.WeakestScenarios(1))
	assert.Empty(t, Summarize(nil).WeakestScenarios(3))
}

func TestDescribeMentionsEveryScenario(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	s := Summarize([]Record{
		rec("gridshot", 800, 75, base),
		rec("tracking", 400, 45, base.Add(time.Hour)),
	})
	text := s.Describe()
	assert.Contains(t, text, "gridshot")
	assert.Contains(t, text, "tracking")
	assert.Contains(t, text, "sessions=2")
}
