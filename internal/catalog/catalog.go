package catalog

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/quizflow/quizflow/internal/domain"
	"github.com/quizflow/quizflow/internal/fingerprint"
)

// Sentinel errors for the catalog package.
var (
	ErrBuiltinSubject = errors.New("catalog: builtin subjects cannot be modified")
	ErrDuplicateQuiz  = errors.New("catalog: quiz ID already exists")
)

// Store is the slice of the persistent store the catalog needs.
type Store interface {
	GetCustomQuizzes() ([]domain.Quiz, error)
	AddCustomQuiz(quiz domain.Quiz, fingerprint string, sourceID int64) error
	DeleteCustomQuiz(quizID string) error
	DeleteQuizzesBySubject(subjectID string) error

	GetCustomSubjects() ([]domain.Subject, error)
	AddCustomSubject(subject domain.Subject) error
	SaveCustomSubjects(subjects []domain.Subject) error
	DeleteCustomSubject(subjectID string) error

	GetFolders(subjectID string) ([]domain.Folder, error)
	AddFolder(folder domain.Folder) error
	DeleteFolder(folderID string) error
	DeleteFoldersBySubject(subjectID string) error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Catalog layers user-created subjects, folders and quizzes from the store
// over the builtin samples fixed at startup.
type Catalog struct {
	store Store
}

// New returns a catalog backed by store.
func New(store Store) *Catalog {
	return &Catalog{store: store}
}

// Subjects lists builtin subjects followed by custom ones.
func (c *Catalog) Subjects() ([]domain.Subject, error) {
	subjects := BuiltinSubjects()
	custom, err := c.store.GetCustomSubjects()
	if err != nil {
		return nil, fmt.Errorf("failed to load custom subjects: %w", err)
	}
	return append(subjects, custom...), nil
}

// AllQuizzes lists builtin quizzes followed by custom ones.
func (c *Catalog) AllQuizzes() ([]domain.Quiz, error) {
	quizzes := BuiltinQuizzes()
	custom, err := c.store.GetCustomQuizzes()
	if err != nil {
		return nil, fmt.Errorf("failed to load custom quizzes: %w", err)
	}
	return append(quizzes, custom...), nil
}

// QuizzesBySubject lists a subject's quizzes, builtin first.
func (c *Catalog) QuizzesBySubject(subjectID string) ([]domain.Quiz, error) {
	all, err := c.AllQuizzes()
	if err != nil {
		return nil, err
	}
	var quizzes []domain.Quiz
	for _, quiz := range all {
		if quiz.Subject == subjectID {
			quizzes = append(quizzes, quiz)
		}
	}
	return quizzes, nil
}

// QuizByID looks a quiz up across builtin and custom sets. The ok result is
// false for a deleted or unknown quiz; callers holding old references must
// treat that as a normal case.
func (c *Catalog) QuizByID(id string) (domain.Quiz, bool) {
	all, err := c.AllQuizzes()
	if err != nil {
		return domain.Quiz{}, false
	}
	for _, quiz := range all {
		if quiz.ID == id {
			return quiz, true
		}
	}
	return domain.Quiz{}, false
}

// AddQuizzes stores an ingested quiz batch. A quiz whose generated ID is
// already present aborts the batch with ErrDuplicateQuiz; ID generation
// makes that unlikely enough that a collision points at a bug.
func (c *Catalog) AddQuizzes(quizzes []domain.Quiz, sourceID int64) error {
	for _, quiz := range quizzes {
		if _, exists := c.QuizByID(quiz.ID); exists {
			return fmt.Errorf("%w: %s", ErrDuplicateQuiz, quiz.ID)
		}
		if err := c.store.AddCustomQuiz(quiz, fingerprint.Hash(quiz), sourceID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteQuiz removes a custom quiz. Attempt history referencing it is left
// in place and becomes weakly dangling, which review consumers tolerate.
func (c *Catalog) DeleteQuiz(quizID string) error {
	return c.store.DeleteCustomQuiz(quizID)
}

// CreateSubject validates and stores a custom subject. Reusing a builtin
// subject ID is rejected.
func (c *Catalog) CreateSubject(subject domain.Subject) error {
	if err := validate.Struct(subject); err != nil {
		return fmt.Errorf("invalid subject: %w", err)
	}
	for _, builtin := range BuiltinSubjects() {
		if builtin.ID == subject.ID {
			return fmt.Errorf("%w: %s", ErrBuiltinSubject, subject.ID)
		}
	}
	return c.store.AddCustomSubject(subject)
}

// ReplaceSubjects swaps out the custom subject list wholesale. Every entry
// is validated and builtin IDs are rejected before anything is written.
func (c *Catalog) ReplaceSubjects(subjects []domain.Subject) error {
	for _, subject := range subjects {
		if err := validate.Struct(subject); err != nil {
			return fmt.Errorf("invalid subject %s: %w", subject.ID, err)
		}
		for _, builtin := range BuiltinSubjects() {
			if builtin.ID == subject.ID {
				return fmt.Errorf("%w: %s", ErrBuiltinSubject, subject.ID)
			}
		}
	}
	return c.store.SaveCustomSubjects(subjects)
}

// DeleteSubject removes a custom subject and cascades to its quizzes and
// folders. Builtin subjects are fixed at startup and cannot be deleted.
func (c *Catalog) DeleteSubject(subjectID string) error {
	for _, builtin := range BuiltinSubjects() {
		if builtin.ID == subjectID {
			return fmt.Errorf("%w: %s", ErrBuiltinSubject, subjectID)
		}
	}
	if err := c.store.DeleteQuizzesBySubject(subjectID); err != nil {
		return err
	}
	if err := c.store.DeleteFoldersBySubject(subjectID); err != nil {
		return err
	}
	return c.store.DeleteCustomSubject(subjectID)
}

// Folders lists a subject's folders ("" for all).
func (c *Catalog) Folders(subjectID string) ([]domain.Folder, error) {
	return c.store.GetFolders(subjectID)
}

// CreateFolder validates and stores a folder.
func (c *Catalog) CreateFolder(folder domain.Folder) error {
	if err := validate.Struct(folder); err != nil {
		return fmt.Errorf("invalid folder: %w", err)
	}
	return c.store.AddFolder(folder)
}

// DeleteFolder removes a folder; its quizzes fall back to the subject root.
func (c *Catalog) DeleteFolder(folderID string) error {
	return c.store.DeleteFolder(folderID)
}

// QuizStats summarizes a quiz's attempt history.
type QuizStats struct {
	Attempted int `json:"attempted"`
	Correct   int `json:"correct"`
	Accuracy  int `json:"accuracy"`
}

// StatsForQuiz aggregates history rows for one quiz.
func StatsForQuiz(quizID string, history []domain.AttemptResult) QuizStats {
	stats := QuizStats{}
	for _, r := range history {
		if r.QuizID != quizID {
			continue
		}
		stats.Attempted++
		if r.IsCorrect {
			stats.Correct++
		}
	}
	if stats.Attempted > 0 {
		stats.Accuracy = int(math.Round(float64(stats.Correct) / float64(stats.Attempted) * 100))
	}
	return stats
}

// GlobalStats is the home-screen learning summary.
type GlobalStats struct {
	Total    int `json:"total"`
	Correct  int `json:"correct"`
	Wrong    int `json:"wrong"`
	Accuracy int `json:"accuracy"`
}

// StatsForHistory aggregates the full attempt history.
func StatsForHistory(history []domain.AttemptResult) GlobalStats {
	stats := GlobalStats{Total: len(history)}
	for _, r := range history {
		if r.IsCorrect {
			stats.Correct++
		}
	}
	stats.Wrong = stats.Total - stats.Correct
	if stats.Total > 0 {
		stats.Accuracy = int(math.Round(float64(stats.Correct) / float64(stats.Total) * 100))
	}
	return stats
}
