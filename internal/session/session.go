package session

import (
	"errors"
	"math"
	"time"

	"github.com/quizflow/quizflow/internal/domain"
)

// Sentinel errors for the session package.
// Use errors.Is to check: errors.Is(err, session.ErrAnswerLocked)
var (
	ErrEmptyQuiz     = errors.New("session: quiz has no questions")
	ErrNotInProgress = errors.New("session: no quiz in progress")
	ErrNoQuestion    = errors.New("session: no current question")
	ErrAnswerLocked  = errors.New("session: answer already revealed for this question")
	ErrInvalidOption = errors.New("session: option index out of range")
)

// Status is the lifecycle state of a session.
type Status int

const (
	Idle Status = iota
	InProgress
	Completed
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

// Advance outcomes.
const (
	AdvanceNext   = "next"
	AdvanceFinish = "finish"
)

// FlatQuestion is a question annotated with the text of the passage it
// belongs to, in flattened quiz order.
type FlatQuestion struct {
	domain.Question
	PassageText *string `json:"passageText,omitempty"`
}

// ResultWriter is the slice of the persistent store the engine needs: an
// append of one attempt's result batch.
type ResultWriter interface {
	AddResults(results []domain.AttemptResult) error
}

// Session runs one attempt at one quiz. It is an explicit object owned by
// the caller; nothing in this package holds ambient state. Transition
// guards are enforced here rather than trusting a cooperating caller: an
// answer cannot change once it has been revealed.
type Session struct {
	status        Status
	quiz          *domain.Quiz
	questions     []FlatQuestion
	questionIndex int
	// userAnswers is keyed by bare question ID. CSV-born IDs are positional
	// per passage (q1, q2, ...), so questions sharing an ID across passages
	// of one quiz share a slot: the recorded answer applies to all of them
	// at scoring time. Matches the historical recorder.
	userAnswers map[string]int
	showResult  bool

	now func() time.Time
}

// New returns an idle session.
func New() *Session {
	return &Session{now: time.Now, userAnswers: make(map[string]int)}
}

// Start begins an attempt at quiz, discarding any prior in-progress state.
// A quiz with zero questions is rejected with ErrEmptyQuiz.
func (s *Session) Start(quiz *domain.Quiz) error {
	flattened := Flatten(quiz)
	if len(flattened) == 0 {
		return ErrEmptyQuiz
	}

	s.status = InProgress
	s.quiz = quiz
	s.questions = flattened
	s.questionIndex = 0
	s.userAnswers = make(map[string]int)
	s.showResult = false
	return nil
}

// Flatten orders a quiz's questions passage by passage, annotating each
// with its passage text.
func Flatten(quiz *domain.Quiz) []FlatQuestion {
	var flattened []FlatQuestion
	for _, p := range quiz.Passages {
		for _, q := range p.Questions {
			flattened = append(flattened, FlatQuestion{Question: q, PassageText: p.Text})
		}
	}
	return flattened
}

// Current returns the question under answer, or nil when the session has
// none (idle, completed, or an exhausted index).
func (s *Session) Current() *FlatQuestion {
	if s.status != InProgress || s.questionIndex >= len(s.questions) {
		return nil
	}
	return &s.questions[s.questionIndex]
}

// SelectAnswer records the user's choice for the current question and
// reveals the result. Once revealed the answer is locked; re-selection is
// ErrAnswerLocked.
func (s *Session) SelectAnswer(optionIndex int) error {
	if s.status != InProgress {
		return ErrNotInProgress
	}
	question := s.Current()
	if question == nil {
		return ErrNoQuestion
	}
	if s.showResult {
		return ErrAnswerLocked
	}
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return ErrInvalidOption
	}

	s.userAnswers[question.ID] = optionIndex
	s.showResult = true
	return nil
}

// Advance moves to the next question, or reports that the attempt is ready
// to finish when the current question is the last. It never mutates state
// past the final question; the caller materializes results with Finish.
func (s *Session) Advance() (string, error) {
	if s.status != InProgress {
		return "", ErrNotInProgress
	}
	if s.questionIndex < len(s.questions)-1 {
		s.questionIndex++
		s.showResult = false
		return AdvanceNext, nil
	}
	return AdvanceFinish, nil
}

// Finish builds one AttemptResult per flattened question, appends the batch
// to the store, and returns the attempt summary. A question that was never
// answered scores as incorrect with a nil user answer.
func (s *Session) Finish(store ResultWriter) (domain.Summary, []domain.AttemptResult, error) {
	if s.status != InProgress {
		return domain.Summary{}, nil, ErrNotInProgress
	}

	timestamp := s.now()
	results := make([]domain.AttemptResult, 0, len(s.questions))
	correct := 0

	for _, q := range s.questions {
		result := domain.AttemptResult{
			QuizID:            s.quiz.ID,
			QuizTitle:         s.quiz.Title,
			QuestionID:        q.ID,
			Question:          q.Question.Question,
			CorrectAnswer:     q.CorrectAnswer,
			CorrectAnswerText: q.Options[q.CorrectAnswer],
			Options:           q.Options,
			Explanation:       q.Explanation,
			Timestamp:         timestamp,
		}
		if answer, ok := s.userAnswers[q.ID]; ok {
			result.UserAnswer = &answer
			result.UserAnswerText = q.Options[answer]
			result.IsCorrect = answer == q.CorrectAnswer
		}
		if result.IsCorrect {
			correct++
		}
		results = append(results, result)
	}

	if store != nil {
		if err := store.AddResults(results); err != nil {
			return domain.Summary{}, nil, err
		}
	}

	s.status = Completed

	total := len(results)
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(correct) / float64(total) * 100))
	}
	return domain.Summary{Correct: correct, Total: total, Percentage: percentage}, results, nil
}

// Progress reports how far the attempt has advanced, as a rounded
// percentage of questions reached. It is monotonically non-decreasing over
// a session and hits 100 on the final question.
func (s *Session) Progress() int {
	if len(s.questions) == 0 {
		return 0
	}
	return int(math.Round(float64(s.questionIndex+1) / float64(len(s.questions)) * 100))
}

// State is a read-only snapshot of the session for callers rendering it.
type State struct {
	Status         Status
	Quiz           *domain.Quiz
	QuestionIndex  int
	TotalQuestions int
	Question       *FlatQuestion
	UserAnswer     *int
	ShowResult     bool
	Progress       int
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() State {
	state := State{
		Status:         s.status,
		Quiz:           s.quiz,
		QuestionIndex:  s.questionIndex,
		TotalQuestions: len(s.questions),
		Question:       s.Current(),
		ShowResult:     s.showResult,
		Progress:       s.Progress(),
	}
	if state.Question != nil {
		if answer, ok := s.userAnswers[state.Question.ID]; ok {
			state.UserAnswer = &answer
		}
	}
	return state
}
