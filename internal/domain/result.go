package domain

import "time"

// AttemptResult records one question of one completed quiz attempt.
// Results are append-only: once written they are never edited in place.
// QuizID and QuestionID are weak references; the quiz they point at may be
// deleted later, so lookups against them must treat "missing" as normal.
type AttemptResult struct {
	QuizID            string    `json:"quizId"`
	QuizTitle         string    `json:"quizTitle"`
	QuestionID        string    `json:"questionId"`
	Question          string    `json:"question"`
	UserAnswer        *int      `json:"userAnswer,omitempty"`
	UserAnswerText    string    `json:"userAnswerText"`
	CorrectAnswer     int       `json:"correctAnswer"`
	CorrectAnswerText string    `json:"correctAnswerText"`
	Options           []string  `json:"options"`
	IsCorrect         bool      `json:"isCorrect"`
	Explanation       string    `json:"explanation"`
	Timestamp         time.Time `json:"timestamp"`

	// ConsecutiveCorrect feeds the spaced-repetition interval table. It is
	// only advanced past zero when streak tracking is enabled (see
	// review.Policy).
	ConsecutiveCorrect int `json:"consecutiveCorrect"`
}

// Key identifies the question this result belongs to across attempts.
func (r AttemptResult) Key() string {
	return r.QuizID + "_" + r.QuestionID
}

// Color mode values.
const (
	ColorModeBW    = "bw"
	ColorModeColor = "color"
)

// Settings is the singleton per-profile preferences document.
type Settings struct {
	ColorMode string `json:"colorMode" validate:"oneof=bw color"`
}

// DefaultSettings returns the settings used before the user saves any.
func DefaultSettings() Settings {
	return Settings{ColorMode: ColorModeBW}
}

// Summary is the outcome of a finished quiz attempt.
type Summary struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}
