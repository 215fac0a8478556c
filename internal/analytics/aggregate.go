package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/abhisek/quizlab/internal/quiz"
)

const (
	week         = 7 * 24 * time.Hour
	trendWeeks   = 4
	maxWeakAreas = 3
)

// Aggregate computes the numeric part of a report from a user's results.
// The output does not depend on the order of results. Message and
// CreatedAt are left for the caller.
func Aggregate(userID string, results []*quiz.QuizResult, now time.Time) *quiz.AnalysisReport {
	return aggregate(userID, results, now, DefaultTopic)
}

func aggregate(userID string, results []*quiz.QuizResult, now time.Time, defaultTopic string) *quiz.AnalysisReport {
	r := &quiz.AnalysisReport{
		UserID:         userID,
		TotalQuizzes:   len(results),
		WeakAreas:      []quiz.WeakArea{},
		WeeklyProgress: []quiz.WeekBucket{},
	}
	if len(results) == 0 {
		return r
	}

	sum := 0
	for _, res := range results {
		sum += res.Score
	}
	r.AverageScore = int(math.Round(float64(sum) / float64(len(results))))
	r.WeeklyProgress = weeklyProgress(results, now)
	r.WeakAreas = weakAreas(results, defaultTopic)
	return r
}

// weekIndex returns which trailing 7-day window t falls in, counting back
// from now. Window k covers (now-7(k+1)d, now-7kd]. Timestamps after now
// count as the current week.
func weekIndex(t, now time.Time) (int, bool) {
	age := now.Sub(t)
	if age < week {
		return 0, true
	}
	k := int(age / week)
	if k >= trendWeeks {
		return 0, false
	}
	return k, true
}

func weeklyProgress(results []*quiz.QuizResult, now time.Time) []quiz.WeekBucket {
	var sums, counts [trendWeeks]int
	for _, res := range results {
		k, ok := weekIndex(res.CompletedAt, now)
		if !ok {
			continue
		}
		sums[k] += res.Score
		counts[k]++
	}

	out := []quiz.WeekBucket{}
	for k := 0; k < trendWeeks; k++ {
		if counts[k] == 0 {
			continue
		}
		end := now.Add(-time.Duration(k) * week)
		out = append(out, quiz.WeekBucket{
			WeekIndex: k,
			Start:     end.Add(-week),
			End:       end,
			AvgScore:  math.Round(100*float64(sums[k])/float64(counts[k])) / 100,
			QuizCount: counts[k],
		})
	}
	return out
}

func weakAreas(results []*quiz.QuizResult, defaultTopic string) []quiz.WeakArea {
	counts := map[string]int{}
	for _, res := range results {
		topics := topicsByQuestion(res)
		for _, a := range res.Answers {
			if a.IsCorrect {
				continue
			}
			topic := topics[a.QuestionID]
			if topic == "" {
				topic = defaultTopic
			}
			counts[topic]++
		}
	}

	areas := make([]quiz.WeakArea, 0, len(counts))
	for topic, n := range counts {
		areas = append(areas, quiz.WeakArea{Topic: topic, ErrorCount: n})
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].ErrorCount != areas[j].ErrorCount {
			return areas[i].ErrorCount > areas[j].ErrorCount
		}
		return areas[i].Topic < areas[j].Topic
	})
	if len(areas) > maxWeakAreas {
		areas = areas[:maxWeakAreas]
	}
	return areas
}

func topicsByQuestion(res *quiz.QuizResult) map[string]string {
	m := make(map[string]string, len(res.Questions))
	for _, q := range res.Questions {
		m[q.ID] = q.Topic
	}
	return m
}
