package csvparse

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/quizflow/quizflow/internal/domain"
)

// Fallbacks used when a row omits its grouping fields.
const (
	defaultSubject = "general"
	defaultLevel   = "basic"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RowsToQuizzes groups rows into quiz aggregates. Rows sharing
// Subject|Level|Title land in the same quiz, in first-seen order; within a
// quiz, rows sharing the exact same passage text (including "no passage")
// land in the same passage, in input order. Each row becomes one question.
//
// Ingestion is all-or-nothing: the first invalid row aborts the batch with
// a RowError and no quizzes are returned.
func (p *Pipeline) RowsToQuizzes(rows []Row) ([]domain.Quiz, error) {
	return p.rowsToQuizzesAt(rows, time.Now())
}

func (p *Pipeline) rowsToQuizzesAt(rows []Row, now time.Time) ([]domain.Quiz, error) {
	quizzes := make(map[string]*domain.Quiz)
	var order []string

	for index, row := range rows {
		subject := fallback(row["Subject"], defaultSubject)
		level := fallback(row["Level"], defaultLevel)
		title := fallback(row["Title"], fmt.Sprintf("Quiz %d", index+1))

		var passageText *string
		if text := fallback(row["PassageText"], row["Passage"]); text != "" {
			passageText = &text
		}

		quizKey := subject + "|" + level + "|" + title
		quiz, ok := quizzes[quizKey]
		if !ok {
			quiz = &domain.Quiz{
				ID:      domain.NewQuizID(subject, level, title, now.UnixMilli(), index),
				Subject: subject,
				Level:   level,
				Title:   title,
				Source:  domain.SourceCSV,
			}
			quizzes[quizKey] = quiz
			order = append(order, quizKey)
		}

		passage := findPassage(quiz, passageText)
		if passage == nil {
			quiz.Passages = append(quiz.Passages, domain.Passage{
				ID:   fmt.Sprintf("p%d", len(quiz.Passages)+1),
				Text: passageText,
			})
			passage = &quiz.Passages[len(quiz.Passages)-1]
		}

		question, err := buildQuestion(row, len(passage.Questions)+1)
		if err != nil {
			return nil, &RowError{Row: index + 1, Err: err}
		}
		passage.Questions = append(passage.Questions, question)
	}

	result := make([]domain.Quiz, 0, len(order))
	for _, key := range order {
		result = append(result, *quizzes[key])
	}
	return result, nil
}

// buildQuestion turns one row into a validated question. The question ID is
// positional within its passage (q1, q2, ...).
func buildQuestion(row Row, position int) (domain.Question, error) {
	var options []string
	optionHeaders := [4][2]string{
		{"Option1", "A"},
		{"Option2", "B"},
		{"Option3", "C"},
		{"Option4", "D"},
	}
	for _, headers := range optionHeaders {
		if opt := fallback(row[headers[0]], row[headers[1]]); opt != "" {
			options = append(options, opt)
		}
	}

	rawAnswer := fallback(row["CorrectAnswer"], row["Answer"])
	if rawAnswer == "" {
		rawAnswer = "1"
	}
	oneBased, err := strconv.Atoi(rawAnswer)
	if err != nil {
		return domain.Question{}, ErrInvalidAnswer
	}

	question := domain.Question{
		ID:            fmt.Sprintf("q%d", position),
		Question:      row["Question"],
		Options:       options,
		CorrectAnswer: oneBased - 1,
		Explanation:   row["Explanation"],
	}

	if err := validate.Struct(question); err != nil {
		return domain.Question{}, classifyValidation(err, question)
	}
	if question.CorrectAnswer >= len(question.Options) {
		return domain.Question{}, ErrAnswerOutOfRange
	}
	return question, nil
}

// classifyValidation maps validator output onto the package's sentinel
// errors so callers can branch with errors.Is.
func classifyValidation(err error, q domain.Question) error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, ve := range verrs {
			switch ve.StructField() {
			case "Question":
				return ErrEmptyQuestion
			case "Options":
				return ErrTooFewOptions
			case "CorrectAnswer":
				return ErrAnswerOutOfRange
			}
		}
	}
	return err
}

func findPassage(quiz *domain.Quiz, text *string) *domain.Passage {
	for i := range quiz.Passages {
		p := &quiz.Passages[i]
		if text == nil && p.Text == nil {
			return p
		}
		if text != nil && p.Text != nil && *text == *p.Text {
			return p
		}
	}
	return nil
}

func fallback(value, alt string) string {
	if value != "" {
		return value
	}
	return alt
}

// ParseFile reads a CSV file from disk and runs the full pipeline.
func (p *Pipeline) ParseFile(path string) ([]domain.Quiz, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return p.Parse(file)
}
