package review

import (
	"testing"

	"github.com/quizflow/quizflow/internal/domain"
)

type mapFinder map[string]domain.Quiz

func (m mapFinder) QuizByID(id string) (domain.Quiz, bool) {
	quiz, ok := m[id]
	return quiz, ok
}

func text(s string) *string { return &s }

func TestResolve(t *testing.T) {
	finder := mapFinder{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "Live Quiz",
			Passages: []domain.Passage{
				{
					ID:   "p1",
					Text: text("The passage."),
					Questions: []domain.Question{
						{ID: "q1", Question: "Alive?", Options: []string{"yes", "no"}, CorrectAnswer: 0},
					},
				},
			},
		},
	}

	results := []domain.AttemptResult{
		{QuizID: "quiz-1", QuestionID: "q1", IsCorrect: false},
		{QuizID: "deleted-quiz", QuestionID: "q1", IsCorrect: false},
		{QuizID: "quiz-1", QuestionID: "deleted-question", IsCorrect: false},
	}

	resolved := Resolve(results, finder)
	if len(resolved) != 1 {
		t.Fatalf("Expected dangling references to be skipped, but got %d resolved questions", len(resolved))
	}
	rq := resolved[0]
	if rq.QuizTitle != "Live Quiz" || rq.Question.ID != "q1" {
		t.Errorf("Unexpected resolution: %+v", rq)
	}
	if rq.PassageText == nil || *rq.PassageText != "The passage." {
		t.Errorf("Expected passage text carried through resolution")
	}
}

func TestToQuiz(t *testing.T) {
	resolved := []ResolvedQuestion{
		{
			Question:    domain.Question{ID: "q1", Question: "A?", Options: []string{"x", "y"}, CorrectAnswer: 0},
			QuizID:      "quiz-1",
			PassageText: text("Shared"),
		},
		{
			Question:    domain.Question{ID: "q2", Question: "B?", Options: []string{"x", "y"}, CorrectAnswer: 1},
			QuizID:      "quiz-1",
			PassageText: text("Shared"),
		},
		{
			Question:    domain.Question{ID: "q1", Question: "C?", Options: []string{"x", "y"}, CorrectAnswer: 0},
			QuizID:      "quiz-2",
			PassageText: nil,
		},
	}

	quiz := ToQuiz(ModeWrongOnly, resolved)
	if quiz.ID != "review-wrong-only" {
		t.Errorf("Unexpected review quiz ID %q", quiz.ID)
	}
	if len(quiz.Passages) != 2 {
		t.Fatalf("Expected adjacent shared passages to merge into 2 passages, but got %d", len(quiz.Passages))
	}
	if len(quiz.Passages[0].Questions) != 2 {
		t.Errorf("Expected 2 questions in the shared passage, but got %d", len(quiz.Passages[0].Questions))
	}
	// IDs are namespaced by source quiz so q1 from two quizzes cannot collide.
	if quiz.Passages[0].Questions[0].ID == quiz.Passages[1].Questions[0].ID {
		t.Errorf("Expected namespaced question IDs, but both are %q", quiz.Passages[0].Questions[0].ID)
	}
}
