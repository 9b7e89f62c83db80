package domain

import "fmt"

// Quiz source values.
const (
	SourceBuiltin = "builtin"
	SourceCSV     = "csv"
)

// Subject groups quizzes under a user-visible heading.
type Subject struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Icon string `json:"icon"`
}

// Folder optionally groups quizzes within a subject. A quiz without a
// folder lives at the subject root.
type Folder struct {
	ID        string `json:"id" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	Name      string `json:"name" validate:"required"`
}

// Quiz is the aggregate root: it exclusively owns its passages, which in
// turn exclusively own their questions.
type Quiz struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	Level    string    `json:"level"`
	Title    string    `json:"title"`
	FolderID string    `json:"folderId,omitempty"`
	Source   string    `json:"source"`
	Passages []Passage `json:"passages"`
}

// Passage is a shared reading text for a run of questions. Text is nil for
// questions with no passage.
type Passage struct {
	ID        string     `json:"id"`
	Text      *string    `json:"text"`
	Questions []Question `json:"questions"`
}

// Question is a single multiple-choice item. CorrectAnswer is a 0-based
// index into Options; Options holds 2 to 4 entries.
type Question struct {
	ID            string   `json:"id" validate:"required"`
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=2,max=4,dive,required"`
	CorrectAnswer int      `json:"correctAnswer" validate:"gte=0"`
	Explanation   string   `json:"explanation"`
}

// QuestionCount returns the total question count across all passages.
func (q *Quiz) QuestionCount() int {
	n := 0
	for _, p := range q.Passages {
		n += len(p.Questions)
	}
	return n
}

// NewQuizID builds a quiz ID from its grouping key, a creation timestamp in
// unix milliseconds and the first row index of the group. The combination
// keeps collisions unlikely but is not a guarantee; callers treat a
// duplicate ID as a bug to surface, not silently merge.
func NewQuizID(subject, level, title string, unixMillis int64, rowIndex int) string {
	return fmt.Sprintf("csv-%s-%s-%d-%d", subject, level, unixMillis, rowIndex)
}
