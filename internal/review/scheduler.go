package review

import (
	"time"

	"github.com/quizflow/quizflow/internal/domain"
)

const dayHours = 24

// Scheduler classifies attempt history into review cohorts. It is stateless
// apart from its policy: every call re-scans the full history it is given,
// which is acceptable while history is bounded by single-user usage.
type Scheduler struct {
	policy Policy
	now    func() time.Time
}

// NewScheduler returns a scheduler with the given policy.
func NewScheduler(policy Policy) *Scheduler {
	return &Scheduler{policy: policy, now: time.Now}
}

// Policy returns the scheduler's policy.
func (s *Scheduler) Policy() Policy {
	return s.policy
}

// ResultReader is the slice of the persistent store the scheduler needs:
// the full attempt history.
type ResultReader interface {
	GetResults() ([]domain.AttemptResult, error)
}

// CohortFromStore loads the attempt history and returns the mode's cohort.
func (s *Scheduler) CohortFromStore(store ResultReader, mode Mode) ([]domain.AttemptResult, error) {
	history, err := store.GetResults()
	if err != nil {
		return nil, err
	}
	return s.Cohort(mode, history), nil
}

// StatsFromStore loads the attempt history and computes the mode's cohort
// stats.
func (s *Scheduler) StatsFromStore(store ResultReader, mode Mode) (Stats, error) {
	history, err := store.GetResults()
	if err != nil {
		return Stats{}, err
	}
	return s.ReviewStats(mode, history), nil
}

// Cohort returns the raw (undeduplicated) result list for a mode. An
// unknown mode yields an empty cohort.
func (s *Scheduler) Cohort(mode Mode, history []domain.AttemptResult) []domain.AttemptResult {
	switch mode {
	case ModeWrongOnly:
		return WrongOnly(history)
	case ModeLowAccuracy:
		return ByAccuracy(history, s.policy.Low.Min, s.policy.Low.Max)
	case ModeMediumAccuracy:
		return ByAccuracy(history, s.policy.Medium.Min, s.policy.Medium.Max)
	case ModeSpacedRepetition:
		return s.DueForReview(history, s.now())
	default:
		return nil
	}
}

// WrongOnly returns every incorrect result. A question answered wrong three
// times appears three times.
func WrongOnly(history []domain.AttemptResult) []domain.AttemptResult {
	var wrong []domain.AttemptResult
	for _, r := range history {
		if !r.IsCorrect {
			wrong = append(wrong, r)
		}
	}
	return wrong
}

// ByAccuracy buckets history per (quizId, questionId) pair, computes each
// bucket's accuracy, and returns all raw results from buckets whose
// accuracy lies in [min, max]. Both bounds are inclusive; overlapping bands
// therefore share their boundary questions.
func ByAccuracy(history []domain.AttemptResult, min, max float64) []domain.AttemptResult {
	type bucket struct {
		total   int
		correct int
		results []domain.AttemptResult
	}

	buckets := make(map[string]*bucket)
	var order []string
	for _, r := range history {
		key := r.Key()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.total++
		if r.IsCorrect {
			b.correct++
		}
		b.results = append(b.results, r)
	}

	var filtered []domain.AttemptResult
	for _, key := range order {
		b := buckets[key]
		accuracy := float64(b.correct) / float64(b.total)
		if accuracy >= min && accuracy <= max {
			filtered = append(filtered, b.results...)
		}
	}
	return filtered
}

// Latest collapses history to the most recent result per (quizId,
// questionId) pair, by timestamp. Ties keep the earlier-seen record.
func Latest(history []domain.AttemptResult) []domain.AttemptResult {
	latest := make(map[string]domain.AttemptResult)
	var order []string
	for _, r := range history {
		key := r.Key()
		existing, ok := latest[key]
		if !ok {
			latest[key] = r
			order = append(order, key)
			continue
		}
		if r.Timestamp.After(existing.Timestamp) {
			latest[key] = r
		}
	}

	results := make([]domain.AttemptResult, 0, len(order))
	for _, key := range order {
		results = append(results, latest[key])
	}
	return results
}

// DueForReview returns the latest result of every question whose required
// interval has elapsed. The interval is a step function of the result's
// consecutive-correct streak.
func (s *Scheduler) DueForReview(history []domain.AttemptResult, now time.Time) []domain.AttemptResult {
	var due []domain.AttemptResult
	for _, r := range Latest(history) {
		daysSince := now.Sub(r.Timestamp).Hours() / dayHours
		if daysSince >= float64(s.policy.IntervalDays(r.ConsecutiveCorrect)) {
			due = append(due, r)
		}
	}
	return due
}

// Stats summarizes a cohort for gating UI actions: Total counts distinct
// (quizId, questionId) pairs while Results keeps the raw list.
type Stats struct {
	Total   int                    `json:"total"`
	Results []domain.AttemptResult `json:"results"`
}

// ReviewStats computes cohort stats for a mode. A zero Total means the
// cohort is non-actionable.
func (s *Scheduler) ReviewStats(mode Mode, history []domain.AttemptResult) Stats {
	results := s.Cohort(mode, history)
	distinct := make(map[string]struct{}, len(results))
	for _, r := range results {
		distinct[r.Key()] = struct{}{}
	}
	return Stats{Total: len(distinct), Results: results}
}

// ApplyStreaks stamps ConsecutiveCorrect on a fresh result batch from prior
// history: a correct answer extends the streak of the question's latest
// prior result, a wrong answer resets it to zero. Without TrackStreak the
// batch is returned untouched, preserving the historical always-zero
// behavior.
func (s *Scheduler) ApplyStreaks(history []domain.AttemptResult, batch []domain.AttemptResult) []domain.AttemptResult {
	if !s.policy.TrackStreak {
		return batch
	}

	prior := make(map[string]domain.AttemptResult)
	for _, r := range Latest(history) {
		prior[r.Key()] = r
	}

	stamped := make([]domain.AttemptResult, len(batch))
	for i, r := range batch {
		if r.IsCorrect {
			if p, ok := prior[r.Key()]; ok && p.IsCorrect {
				r.ConsecutiveCorrect = p.ConsecutiveCorrect + 1
			} else {
				r.ConsecutiveCorrect = 1
			}
		} else {
			r.ConsecutiveCorrect = 0
		}
		stamped[i] = r
	}
	return stamped
}
