package activity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KoutaMatsushita/aim-ai-coach-sub000/types"
)

// minutesPerSession is a rough cost of one scenario run including resets.
const minutesPerSession = 2

// ScenarioStats aggregates the runs of one scenario.
type ScenarioStats struct {
	ScenarioID      string
	Sessions        int
	AverageScore    float64
	BestScore       float64
	AverageAccuracy float64
}

// Summary is the compact statistical digest handed to a model call.
type Summary struct {
	Sessions         int
	AverageScore     float64
	AverageAccuracy  float64
	EstimatedMinutes int
	Trend            types.Trend
	PerScenario      []ScenarioStats
}

// Summarize computes aggregates plus an earlier-half vs later-half score
// trend. Records may arrive in any order; the trend split uses time order.
func Summarize(records []Record) Summary {
	s := Summary{Sessions: len(records), Trend: types.TrendStable}
	if len(records) == 0 {
		return s
	}

	ordered := make([]Record, len(records))
	copy(ordered, records)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	byScenario := make(map[string]*ScenarioStats)
	var scoreSum, accSum float64
	for _, r := range ordered {
		scoreSum += r.Score
		accSum += r.Accuracy
		st, ok := byScenario[r.ScenarioID]
		if !ok {
			st = &ScenarioStats{ScenarioID: r.ScenarioID}
			byScenario[r.ScenarioID] = st
		}
		st.Sessions++
		st.AverageScore += r.Score
		st.AverageAccuracy += r.Accuracy
		if r.Score > st.BestScore {
			st.BestScore = r.Score
		}
	}

	s.AverageScore = scoreSum / float64(len(ordered))
	s.AverageAccuracy = accSum / float64(len(ordered))
	s.EstimatedMinutes = len(ordered) * minutesPerSession

	for _, st := range byScenario {
		st.AverageScore /= float64(st.Sessions)
		st.AverageAccuracy /= float64(st.Sessions)
		s.PerScenario = append(s.PerScenario, *st)
	}
	sort.Slice(s.PerScenario, func(i, j int) bool {
		return s.PerScenario[i].ScenarioID < s.PerScenario[j].ScenarioID
	})

	s.Trend = trendOf(ordered)
	return s
}

// trendOf compares the average score of the earlier half against the later
// half. Differences within 2% of the earlier average count as stable.
func trendOf(ordered []Record) types.Trend {
	if len(ordered) < 4 {
		return types.TrendStable
	}
	mid := len(ordered) / 2
	earlier := average(ordered[:mid])
	later := average(ordered[mid:])
	if earlier == 0 {
		return types.TrendStable
	}
	delta := (later - earlier) / earlier
	switch {
	case delta > 0.02:
		return types.TrendImproving
	case delta < -0.02:
		return types.TrendDeclining
	default:
		return types.TrendStable
	}
}

func average(records []Record) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Score
	}
	return sum / float64(len(records))
}

// WeakestScenarios returns up to n scenario IDs ordered by ascending average
// accuracy, then score. Used to aim playlist generation at actual weaknesses.
func (s Summary) WeakestScenarios(n int) []string {
	stats := make([]ScenarioStats, len(s.PerScenario))
	copy(stats, s.PerScenario)
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].AverageAccuracy != stats[j].AverageAccuracy {
			return stats[i].AverageAccuracy < stats[j].AverageAccuracy
		}
		return stats[i].AverageScore < stats[j].AverageScore
	})
	var out []string
	for i := 0; i < len(stats) && i < n; i++ {
		out = append(out, stats[i].ScenarioID)
	}
	return out
}

// Describe renders the summary as compact prompt text.
func (s Summary) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "sessions=%d avg_score=%.1f avg_accuracy=%.1f%% trend=%s\n",
		s.Sessions, s.AverageScore, s.AverageAccuracy, s.Trend)
	for _, st := range s.PerScenario {
		fmt.Fprintf(&sb, "- %s: runs=%d avg=%.1f best=%.1f acc=%.1f%%\n",
			st.ScenarioID, st.Sessions, st.AverageScore, st.BestScore, st.AverageAccuracy)
	}
	return sb.String()
}
