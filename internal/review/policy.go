package review

// Mode names a review cohort.
type Mode string

const (
	ModeWrongOnly        Mode = "wrong-only"
	ModeLowAccuracy      Mode = "low-accuracy"
	ModeMediumAccuracy   Mode = "medium-accuracy"
	ModeSpacedRepetition Mode = "spaced-repetition"
)

// Modes lists all cohorts in presentation order.
var Modes = []Mode{ModeWrongOnly, ModeLowAccuracy, ModeMediumAccuracy, ModeSpacedRepetition}

// AccuracyBand is an inclusive accuracy range selecting per-question
// buckets for a cohort.
type AccuracyBand struct {
	Min float64
	Max float64
}

// Policy holds the tunable scheduling behavior. The defaults reproduce the
// historical behavior exactly, including two quirks that are deliberately
// configuration rather than silent fixes:
//
//   - the low and medium accuracy bands both include 0.5, so a question at
//     exactly 50% accuracy appears in both cohorts;
//   - TrackStreak defaults to false, so ConsecutiveCorrect stays 0 on every
//     result and questions never graduate past the first interval.
type Policy struct {
	// Intervals maps a consecutive-correct streak to the required gap in
	// days before a question is due again. A streak at or beyond the last
	// index uses the last entry.
	Intervals []int

	Low    AccuracyBand
	Medium AccuracyBand

	// TrackStreak turns on streak counting across attempts of the same
	// question (see ApplyStreaks).
	TrackStreak bool
}

// DefaultIntervals is the expanding interval schedule in days, indexed by
// consecutive-correct streak.
var DefaultIntervals = []int{1, 3, 7, 14}

// DefaultPolicy returns the source-faithful policy.
func DefaultPolicy() Policy {
	return Policy{
		Intervals: DefaultIntervals,
		Low:       AccuracyBand{Min: 0, Max: 0.5},
		Medium:    AccuracyBand{Min: 0.5, Max: 0.8},
	}
}

// IntervalDays returns the required review gap for a streak.
func (p Policy) IntervalDays(consecutiveCorrect int) int {
	intervals := p.Intervals
	if len(intervals) == 0 {
		intervals = DefaultIntervals
	}
	if consecutiveCorrect < 0 {
		consecutiveCorrect = 0
	}
	if consecutiveCorrect >= len(intervals) {
		return intervals[len(intervals)-1]
	}
	return intervals[consecutiveCorrect]
}
