package review

import (
	"strconv"

	"github.com/quizflow/quizflow/internal/domain"
)

// QuizFinder is the slice of the catalog the resolver needs.
type QuizFinder interface {
	QuizByID(id string) (domain.Quiz, bool)
}

// ResolvedQuestion is a cohort entry mapped back to its live question,
// annotated for replay in a review session.
type ResolvedQuestion struct {
	domain.Question
	QuizID      string
	QuizTitle   string
	PassageText *string
	Result      domain.AttemptResult
}

// Resolve maps cohort results back to live questions. Results pointing at a
// deleted quiz or question are weak references; they are skipped, never an
// error.
func Resolve(results []domain.AttemptResult, finder QuizFinder) []ResolvedQuestion {
	var resolved []ResolvedQuestion
	for _, result := range results {
		quiz, ok := finder.QuizByID(result.QuizID)
		if !ok {
			continue
		}
		for _, passage := range quiz.Passages {
			for _, question := range passage.Questions {
				if question.ID == result.QuestionID {
					resolved = append(resolved, ResolvedQuestion{
						Question:    question,
						QuizID:      quiz.ID,
						QuizTitle:   quiz.Title,
						PassageText: passage.Text,
						Result:      result,
					})
				}
			}
		}
	}
	return resolved
}

// ToQuiz packs resolved questions into a synthetic quiz aggregate so a
// review run reuses the ordinary session engine. Questions keep their
// passage grouping by adjacency: consecutive entries sharing a passage text
// share a passage.
func ToQuiz(mode Mode, resolved []ResolvedQuestion) domain.Quiz {
	quiz := domain.Quiz{
		ID:     "review-" + string(mode),
		Title:  "Review: " + string(mode),
		Source: domain.SourceBuiltin,
	}
	for i, rq := range resolved {
		if i > 0 && samePassageText(quiz.Passages[len(quiz.Passages)-1].Text, rq.PassageText) {
			p := &quiz.Passages[len(quiz.Passages)-1]
			q := rq.Question
			q.ID = rq.QuizID + "_" + rq.Question.ID
			p.Questions = append(p.Questions, q)
			continue
		}
		q := rq.Question
		q.ID = rq.QuizID + "_" + rq.Question.ID
		quiz.Passages = append(quiz.Passages, domain.Passage{
			ID:        newPassageID(len(quiz.Passages) + 1),
			Text:      rq.PassageText,
			Questions: []domain.Question{q},
		})
	}
	return quiz
}

func samePassageText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func newPassageID(n int) string {
	return "p" + strconv.Itoa(n)
}
