package backup

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/quizflow/quizflow/internal/csvparse"
	"github.com/quizflow/quizflow/internal/domain"
)

type fakeStore struct {
	results  []domain.AttemptResult
	quizzes  []domain.Quiz
	settings domain.Settings
}

func (f *fakeStore) GetResults() ([]domain.AttemptResult, error) { return f.results, nil }
func (f *fakeStore) GetCustomQuizzes() ([]domain.Quiz, error) { return f.quizzes, nil }
func (f *fakeStore) GetSettings() (domain.Settings, error) { return f.settings, nil }

func (f *fakeStore) SaveCustomQuizzes(quizzes []domain.Quiz) error {
	f.quizzes = quizzes
	return nil
}

func (f *fakeStore) SaveSettings(settings domain.Settings) error {
	f.settings = settings
	return nil
}

func (f *fakeStore) AddResults(results []domain.AttemptResult) error {
	f.results = append(f.results, results...)
	return nil
}

func TestExportBackup(t *testing.T) {
	store := &fakeStore{
		results:  []domain.AttemptResult{{QuizID: "quiz-1", QuestionID: "q1", IsCorrect: true}},
		quizzes:  []domain.Quiz{{ID: "quiz-1", Subject: "english", Title: "Custom"}},
		settings: domain.Settings{ColorMode: domain.ColorModeColor},
	}

	data, err := ExportBackup(store)
	if err != nil {
		t.Fatalf("ExportBackup() returned an unexpected error: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Backup is not valid JSON: %v", err)
	}
	for _, field := range []string{"results", "customQuizzes", "settings", "exportDate"} {
		if _, ok := doc[field]; !ok {
			t.Errorf("Backup document is missing field %q", field)
		}
	}
}

func TestRestoreBackupRoundTrip(t *testing.T) {
	original := &fakeStore{
		results:  []domain.AttemptResult{{QuizID: "quiz-1", QuestionID: "q1", IsCorrect: true}},
		quizzes:  []domain.Quiz{{ID: "quiz-1", Subject: "english", Title: "Custom"}},
		settings: domain.Settings{ColorMode: domain.ColorModeColor},
	}
	data, err := ExportBackup(original)
	if err != nil {
		t.Fatalf("ExportBackup() returned an unexpected error: %v", err)
	}

	restored := &fakeStore{
		quizzes:  []domain.Quiz{{ID: "stale", Subject: "math", Title: "Old"}},
		settings: domain.DefaultSettings(),
	}
	if err := RestoreBackup(data, restored); err != nil {
		t.Fatalf("RestoreBackup() returned an unexpected error: %v", err)
	}

	if len(restored.quizzes) != 1 || restored.quizzes[0].ID != "quiz-1" {
		t.Errorf("Expected quizzes replaced wholesale, but got %+v", restored.quizzes)
	}
	if restored.settings.ColorMode != domain.ColorModeColor {
		t.Errorf("Expected settings restored, but got %+v", restored.settings)
	}
	if len(restored.results) != 1 || restored.results[0].QuizID != "quiz-1" {
		t.Errorf("Expected results appended from the backup, but got %+v", restored.results)
	}

	if err := RestoreBackup([]byte("not json"), restored); err == nil {
		t.Errorf("Expected an error for a malformed backup document")
	}
}

func TestQuizExportRoundTrip(t *testing.T) {
	quizzes := []domain.Quiz{{ID: "quiz-1", Subject: "math", Title: "Sums"}}

	data, err := ExportQuizzes(quizzes)
	if err != nil {
		t.Fatalf("ExportQuizzes() returned an unexpected error: %v", err)
	}

	imported, err := ImportQuizzes(data)
	if err != nil {
		t.Fatalf("ImportQuizzes() returned an unexpected error: %v", err)
	}
	if len(imported) != 1 || imported[0].ID != "quiz-1" {
		t.Errorf("Unexpected imported quizzes: %+v", imported)
	}
}

func TestImportQuizzesVersionCheck(t *testing.T) {
	_, err := ImportQuizzes([]byte(`{"version": "2.0", "quizzes": []}`))
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("Expected ErrUnsupportedVersion, but got %v", err)
	}
}

// The shipped template must itself survive the ingestion pipeline.
func TestCSVTemplateParses(t *testing.T) {
	quizzes, err := csvparse.New().Parse(strings.NewReader(CSVTemplate))
	if err != nil {
		t.Fatalf("Parse(CSVTemplate) returned an unexpected error: %v", err)
	}
	if len(quizzes) != 2 {
		t.Fatalf("Expected 2 quizzes from the template, but got %d", len(quizzes))
	}
	total := 0
	for _, q := range quizzes {
		total += q.QuestionCount()
	}
	if total != 3 {
		t.Errorf("Expected 3 questions from the template, but got %d", total)
	}
}
