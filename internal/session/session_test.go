package session

import (
	"errors"
	"testing"

	"github.com/quizflow/quizflow/internal/domain"
)

// recorder is a minimal in-memory ResultWriter.
type recorder struct {
	results []domain.AttemptResult
}

func (r *recorder) AddResults(results []domain.AttemptResult) error {
	r.results = append(r.results, results...)
	return nil
}

func passageText(s string) *string { return &s }

func threeQuestionQuiz() *domain.Quiz {
	return &domain.Quiz{
		ID:     "quiz-1",
		Title:  "Three Questions",
		Source: domain.SourceBuiltin,
		Passages: []domain.Passage{
			{
				ID:   "p1",
				Text: passageText("A shared passage."),
				Questions: []domain.Question{
					{ID: "q1", Question: "First?", Options: []string{"a", "b"}, CorrectAnswer: 0},
					{ID: "q2", Question: "Second?", Options: []string{"a", "b", "c"}, CorrectAnswer: 2},
				},
			},
			{
				ID:   "p2",
				Text: nil,
				Questions: []domain.Question{
					{ID: "q3", Question: "Third?", Options: []string{"x", "y"}, CorrectAnswer: 1},
				},
			},
		},
	}
}

func TestStart(t *testing.T) {
	t.Run("Flattens passages in order", func(t *testing.T) {
		s := New()
		if err := s.Start(threeQuestionQuiz()); err != nil {
			t.Fatalf("Start() returned an unexpected error: %v", err)
		}

		state := s.Snapshot()
		if state.TotalQuestions != 3 {
			t.Fatalf("Expected 3 flattened questions, but got %d", state.TotalQuestions)
		}
		if state.Question == nil || state.Question.ID != "q1" {
			t.Fatalf("Expected first question q1, but got %v", state.Question)
		}
		if state.Question.PassageText == nil || *state.Question.PassageText != "A shared passage." {
			t.Errorf("Expected passage text annotation on flattened question")
		}
	})

	t.Run("Empty quiz is rejected", func(t *testing.T) {
		s := New()
		err := s.Start(&domain.Quiz{ID: "empty"})
		if !errors.Is(err, ErrEmptyQuiz) {
			t.Errorf("Expected ErrEmptyQuiz, but got %v", err)
		}
		if s.Current() != nil {
			t.Errorf("Expected no current question after rejected start")
		}
	})

	t.Run("Restart replaces prior session", func(t *testing.T) {
		s := New()
		if err := s.Start(threeQuestionQuiz()); err != nil {
			t.Fatalf("Start() returned an unexpected error: %v", err)
		}
		if err := s.SelectAnswer(0); err != nil {
			t.Fatalf("SelectAnswer() returned an unexpected error: %v", err)
		}

		if err := s.Start(threeQuestionQuiz()); err != nil {
			t.Fatalf("Second Start() returned an unexpected error: %v", err)
		}
		state := s.Snapshot()
		if state.QuestionIndex != 0 || state.ShowResult || state.UserAnswer != nil {
			t.Errorf("Expected a clean session after restart, got %+v", state)
		}
	})
}

func TestSelectAnswer(t *testing.T) {
	t.Run("Records answer and reveals result", func(t *testing.T) {
		s := New()
		if err := s.Start(threeQuestionQuiz()); err != nil {
			t.Fatalf("Start() returned an unexpected error: %v", err)
		}
		if err := s.SelectAnswer(1); err != nil {
			t.Fatalf("SelectAnswer() returned an unexpected error: %v", err)
		}

		state := s.Snapshot()
		if !state.ShowResult {
			t.Errorf("Expected ShowResult to be true after selection")
		}
		if state.UserAnswer == nil || *state.UserAnswer != 1 {
			t.Errorf("Expected recorded answer 1, but got %v", state.UserAnswer)
		}
	})

	t.Run("Answer is locked after reveal", func(t *testing.T) {
		s := New()
		if err := s.Start(threeQuestionQuiz()); err != nil {
			t.Fatalf("Start() returned an unexpected error: %v", err)
		}
		if err := s.SelectAnswer(0); err != nil {
			t.Fatalf("SelectAnswer() returned an unexpected error: %v", err)
		}

		err := s.SelectAnswer(1)
		if !errors.Is(err, ErrAnswerLocked) {
			t.Fatalf("Expected ErrAnswerLocked, but got %v", err)
		}
		if state := s.Snapshot(); *state.UserAnswer != 0 {
			t.Errorf("Expected original answer 0 to survive, but got %d", *state.UserAnswer)
		}
	})

	t.Run("Option index out of range", func(t *testing.T) {
		s := New()
		if err := s.Start(threeQuestionQuiz()); err != nil {
			t.Fatalf("Start() returned an unexpected error: %v", err)
		}
		if err := s.SelectAnswer(5); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("Expected ErrInvalidOption, but got %v", err)
		}
		if err := s.SelectAnswer(-1); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("Expected ErrInvalidOption, but got %v", err)
		}
	})

	t.Run("Idle session", func(t *testing.T) {
		s := New()
		if err := s.SelectAnswer(0); !errors.Is(err, ErrNotInProgress) {
			t.Errorf("Expected ErrNotInProgress, but got %v", err)
		}
	})
}

func TestAdvance(t *testing.T) {
	s := New()
	if err := s.Start(threeQuestionQuiz()); err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.SelectAnswer(0); err != nil {
			t.Fatalf("SelectAnswer() returned an unexpected error: %v", err)
		}
		outcome, err := s.Advance()
		if err != nil {
			t.Fatalf("Advance() returned an unexpected error: %v", err)
		}
		if outcome != AdvanceNext {
			t.Fatalf("Expected %q at question %d, but got %q", AdvanceNext, i, outcome)
		}
		if s.Snapshot().ShowResult {
			t.Errorf("Expected ShowResult reset after advance")
		}
	}

	if err := s.SelectAnswer(0); err != nil {
		t.Fatalf("SelectAnswer() returned an unexpected error: %v", err)
	}
	outcome, err := s.Advance()
	if err != nil {
		t.Fatalf("Advance() returned an unexpected error: %v", err)
	}
	if outcome != AdvanceFinish {
		t.Errorf("Expected %q on last question, but got %q", AdvanceFinish, outcome)
	}
	if s.Snapshot().QuestionIndex != 2 {
		t.Errorf("Expected index to stay on last question after finish signal")
	}
}

func TestProgress(t *testing.T) {
	s := New()
	if err := s.Start(threeQuestionQuiz()); err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}

	expected := []int{33, 67, 100}
	last := 0
	for i, want := range expected {
		if got := s.Progress(); got != want {
			t.Errorf("Progress() at question %d = %d, want %d", i, got, want)
		}
		if s.Progress() < last {
			t.Errorf("Progress() decreased at question %d", i)
		}
		last = s.Progress()
		if i < len(expected)-1 {
			if err := s.SelectAnswer(0); err != nil {
				t.Fatalf("SelectAnswer() returned an unexpected error: %v", err)
			}
			if _, err := s.Advance(); err != nil {
				t.Fatalf("Advance() returned an unexpected error: %v", err)
			}
		}
	}
}

func TestFinish(t *testing.T) {
	answerAll := func(s *Session, pick func(q *FlatQuestion) int) {
		for {
			q := s.Current()
			if q == nil {
				break
			}
			if err := s.SelectAnswer(pick(q)); err != nil {
				panic(err)
			}
			outcome, err := s.Advance()
			if err != nil {
				panic(err)
			}
			if outcome == AdvanceFinish {
				break
			}
		}
	}

	t.Run("All correct", func(t *testing.T) {
		s := New()
		if err := s.Start(threeQuestionQuiz()); err != nil {
			t.Fatalf("Start() returned an unexpected error: %v", err)
		}
		answerAll(s, func(q *FlatQuestion) int { return q.CorrectAnswer })

		store := &recorder{}
		summary, results, err := s.Finish(store)
		if err != nil {
			t.Fatalf("Finish() returned an unexpected error: %v", err)
		}
		if summary.Correct != 3 || summary.Total != 3 || summary.Percentage != 100 {
			t.Errorf("Expected {3 3 100}, but got %+v", summary)
		}
		if len(store.results) != 3 {
			t.Errorf("Expected 3 results appended to the store, but got %d", len(store.results))
		}
		for _, r := range results {
			if !r.IsCorrect || r.UserAnswer == nil {
				t.Errorf("Expected correct recorded result, but got %+v", r)
			}
			if r.ConsecutiveCorrect != 0 {
				t.Errorf("Expected streak counter 0 on fresh results, but got %d", r.ConsecutiveCorrect)
			}
		}
	})

	t.Run("One of three correct rounds to 33", func(t *testing.T) {
		s := New()
		if err := s.Start(threeQuestionQuiz()); err != nil {
			t.Fatalf("Start() returned an unexpected error: %v", err)
		}
		first := true
		answerAll(s, func(q *FlatQuestion) int {
			if first {
				first = false
				return q.CorrectAnswer
			}
			return wrongAnswer(q)
		})

		summary, _, err := s.Finish(&recorder{})
		if err != nil {
			t.Fatalf("Finish() returned an unexpected error: %v", err)
		}
		if summary.Correct != 1 || summary.Percentage != 33 {
			t.Errorf("Expected 1 correct at 33%%, but got %+v", summary)
		}
	})

	t.Run("Unanswered questions score as incorrect", func(t *testing.T) {
		s := New()
		if err := s.Start(threeQuestionQuiz()); err != nil {
			t.Fatalf("Start() returned an unexpected error: %v", err)
		}

		_, results, err := s.Finish(&recorder{})
		if err != nil {
			t.Fatalf("Finish() returned an unexpected error: %v", err)
		}
		for _, r := range results {
			if r.IsCorrect || r.UserAnswer != nil {
				t.Errorf("Expected unanswered question to score incorrect with nil answer, but got %+v", r)
			}
		}
	})

	t.Run("Completed session cannot finish twice", func(t *testing.T) {
		s := New()
		if err := s.Start(threeQuestionQuiz()); err != nil {
			t.Fatalf("Start() returned an unexpected error: %v", err)
		}
		if _, _, err := s.Finish(&recorder{}); err != nil {
			t.Fatalf("Finish() returned an unexpected error: %v", err)
		}
		if _, _, err := s.Finish(&recorder{}); !errors.Is(err, ErrNotInProgress) {
			t.Errorf("Expected ErrNotInProgress on second Finish, but got %v", err)
		}
	})
}

func wrongAnswer(q *FlatQuestion) int {
	if q.CorrectAnswer == 0 {
		return 1
	}
	return 0
}

// Question IDs from CSV ingestion are positional per passage, so one quiz
// can hold the same ID in two passages. Those questions share an answer
// slot; the recorded answer scores both.
func TestDuplicateQuestionIDsShareAnswerSlot(t *testing.T) {
	quiz := &domain.Quiz{
		ID:    "quiz-dup",
		Title: "Duplicate IDs",
		Passages: []domain.Passage{
			{ID: "p1", Text: passageText("First passage."), Questions: []domain.Question{
				{ID: "q1", Question: "First?", Options: []string{"a", "b"}, CorrectAnswer: 0},
			}},
			{ID: "p2", Text: passageText("Second passage."), Questions: []domain.Question{
				{ID: "q1", Question: "Second?", Options: []string{"a", "b"}, CorrectAnswer: 1},
			}},
		},
	}

	s := New()
	if err := s.Start(quiz); err != nil {
		t.Fatalf("Start() returned an unexpected error: %v", err)
	}

	if err := s.SelectAnswer(0); err != nil {
		t.Fatalf("SelectAnswer() returned an unexpected error: %v", err)
	}
	if outcome, err := s.Advance(); err != nil || outcome != AdvanceNext {
		t.Fatalf("Advance() = %q, %v", outcome, err)
	}

	// The second q1 already surfaces the first q1's answer.
	state := s.Snapshot()
	if state.UserAnswer == nil || *state.UserAnswer != 0 {
		t.Fatalf("Expected the shared slot to surface answer 0, but got %v", state.UserAnswer)
	}

	store := &recorder{}
	summary, results, err := s.Finish(store)
	if err != nil {
		t.Fatalf("Finish() returned an unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, but got %d", len(results))
	}
	// Answer 0 scores against both: correct for the first, wrong for the second.
	if summary.Correct != 1 {
		t.Errorf("Expected the shared answer to score each question separately, summary=%+v", summary)
	}
	for _, r := range results {
		if r.UserAnswer == nil || *r.UserAnswer != 0 {
			t.Errorf("Expected both results to carry the shared answer, but got %+v", r)
		}
	}
}
