package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quizflow/quizflow/internal/domain"
)

// QuizExportVersion is the format version stamped on quiz-only exports.
const QuizExportVersion = "1.0"

var ErrUnsupportedVersion = errors.New("backup: unsupported quiz export version")

// Store is the slice of the persistent store a full backup reads.
type Store interface {
	GetResults() ([]domain.AttemptResult, error)
	GetCustomQuizzes() ([]domain.Quiz, error)
	GetSettings() (domain.Settings, error)
}

// Backup is the full-backup document: attempt history, custom quizzes and
// settings in one JSON file.
type Backup struct {
	Results       []domain.AttemptResult `json:"results"`
	CustomQuizzes []domain.Quiz          `json:"customQuizzes"`
	Settings      domain.Settings        `json:"settings"`
	ExportDate    time.Time              `json:"exportDate"`
}

// QuizExport is the quiz-only export document.
type QuizExport struct {
	ExportDate time.Time     `json:"exportDate"`
	Version    string        `json:"version"`
	Quizzes    []domain.Quiz `json:"quizzes"`
}

// ExportBackup assembles and serializes a full backup.
func ExportBackup(store Store) ([]byte, error) {
	results, err := store.GetResults()
	if err != nil {
		return nil, fmt.Errorf("failed to read results for backup: %w", err)
	}
	quizzes, err := store.GetCustomQuizzes()
	if err != nil {
		return nil, fmt.Errorf("failed to read quizzes for backup: %w", err)
	}
	settings, err := store.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to read settings for backup: %w", err)
	}

	return json.MarshalIndent(Backup{
		Results:       results,
		CustomQuizzes: quizzes,
		Settings:      settings,
		ExportDate:    time.Now().UTC(),
	}, "", "  ")
}

// RestoreStore is the slice of the persistent store a full restore writes:
// whole-list replace for quizzes, settings upsert, and a history append.
type RestoreStore interface {
	SaveCustomQuizzes(quizzes []domain.Quiz) error
	SaveSettings(settings domain.Settings) error
	AddResults(results []domain.AttemptResult) error
}

// RestoreBackup parses a full-backup document and writes it to the store.
// Quizzes and settings are replaced; results are appended, so restoring
// onto a profile that already has history duplicates rows — callers restore
// onto a cleared store.
func RestoreBackup(data []byte, store RestoreStore) error {
	var doc Backup
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if err := store.SaveCustomQuizzes(doc.CustomQuizzes); err != nil {
		return fmt.Errorf("failed to restore quizzes: %w", err)
	}
	if err := store.SaveSettings(doc.Settings); err != nil {
		return fmt.Errorf("failed to restore settings: %w", err)
	}
	if err := store.AddResults(doc.Results); err != nil {
		return fmt.Errorf("failed to restore results: %w", err)
	}
	return nil
}

// ExportQuizzes serializes quizzes as a versioned quiz-only export.
func ExportQuizzes(quizzes []domain.Quiz) ([]byte, error) {
	return json.MarshalIndent(QuizExport{
		ExportDate: time.Now().UTC(),
		Version:    QuizExportVersion,
		Quizzes:    quizzes,
	}, "", "  ")
}

// ImportQuizzes parses a quiz-only export document.
func ImportQuizzes(data []byte) ([]domain.Quiz, error) {
	var export QuizExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to decode quiz export: %w", err)
	}
	if export.Version != QuizExportVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, export.Version)
	}
	return export.Quizzes, nil
}

// CSVTemplate is a downloadable starter file showing the expected headers
// and a few example rows.
const CSVTemplate = `Subject,Level,Title,PassageText,Question,Option1,Option2,Option3,Option4,CorrectAnswer,Explanation
english,a1,Sample Quiz,"This is a sample passage text. You can leave this empty for questions without passages.",What is this?,Answer A,Answer B,Answer C,Answer D,2,This explains why B is correct
english,a1,Sample Quiz,,Another question?,Option 1,Option 2,Option 3,Option 4,1,Explanation for question 2
math,basic,Math Quiz,,What is 1+1?,1,2,3,4,2,1+1 equals 2`
