package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quizflow/quizflow/internal/domain"
	"github.com/quizflow/quizflow/internal/fingerprint"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB wraps the SQL database connection behind the persistent-store
// contract: JSON documents for settings, attempt results, custom quizzes,
// subjects and folders. There are no transactional guarantees beyond a
// single call; callers read-modify-write.
type DB struct {
	conn     *sql.DB
	defaults domain.Settings
}

// Open creates a new database connection and ensures the schema is up to
// date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db, defaults: domain.DefaultSettings()}, nil
}

// SetDefaultSettings overrides the settings returned before the user saves
// their own. Called once at startup with the configured defaults.
func (db *DB) SetDefaultSettings(settings domain.Settings) {
	db.defaults = settings
}

// applyPragmas configures SQLite for single-user local use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// GetSettings returns the saved settings, or the defaults when none exist.
func (db *DB) GetSettings() (domain.Settings, error) {
	var payload string
	err := db.conn.QueryRow(`SELECT payload FROM settings WHERE id = 1`).Scan(&payload)
	if err == sql.ErrNoRows {
		return db.defaults, nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	settings := db.defaults
	if err := json.Unmarshal([]byte(payload), &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// SaveSettings replaces the settings document.
func (db *DB) SaveSettings(settings domain.Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO settings (id, payload) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload
	`, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// GetResults returns the full attempt history in insertion order.
func (db *DB) GetResults() ([]domain.AttemptResult, error) {
	rows, err := db.conn.Query(`SELECT payload FROM results ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	defer rows.Close()

	var results []domain.AttemptResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		var result domain.AttemptResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, fmt.Errorf("failed to decode result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// AddResults appends one attempt's result batch to the history in a single
// transaction. History is append-only; nothing here updates prior rows.
func (db *DB) AddResults(results []domain.AttemptResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin result batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO results (quiz_id, question_id, is_correct, timestamp, payload)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, result := range results {
		payload, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode result for %s: %w", result.QuestionID, err)
		}
		if _, err := stmt.Exec(result.QuizID, result.QuestionID, result.IsCorrect, result.Timestamp, string(payload)); err != nil {
			return fmt.Errorf("failed to insert result for %s: %w", result.QuestionID, err)
		}
	}
	return tx.Commit()
}

// GetCustomQuizzes returns all stored quiz aggregates.
func (db *DB) GetCustomQuizzes() ([]domain.Quiz, error) {
	return db.queryQuizzes(`SELECT payload FROM quizzes ORDER BY rowid`)
}

// QuizzesBySourceID returns the quizzes synced from one source.
func (db *DB) QuizzesBySourceID(sourceID int64) ([]domain.Quiz, error) {
	return db.queryQuizzes(`SELECT payload FROM quizzes WHERE source_id = ? ORDER BY rowid`, sourceID)
}

func (db *DB) queryQuizzes(query string, args ...any) ([]domain.Quiz, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan quiz row: %w", err)
		}
		var quiz domain.Quiz
		if err := json.Unmarshal([]byte(payload), &quiz); err != nil {
			return nil, fmt.Errorf("failed to decode quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

// AddCustomQuiz stores a quiz aggregate with its content fingerprint.
// sourceID may be 0 for quizzes uploaded directly rather than synced.
func (db *DB) AddCustomQuiz(quiz domain.Quiz, fingerprint string, sourceID int64) error {
	payload, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("failed to encode quiz %s: %w", quiz.ID, err)
	}

	var source sql.NullInt64
	if sourceID != 0 {
		source = sql.NullInt64{Int64: sourceID, Valid: true}
	}
	var folder sql.NullString
	if quiz.FolderID != "" {
		folder = sql.NullString{String: quiz.FolderID, Valid: true}
	}

	_, err = db.conn.Exec(`
		INSERT INTO quizzes (id, subject, level, title, folder_id, fingerprint, source_id, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, quiz.ID, quiz.Subject, quiz.Level, quiz.Title, folder, fingerprint, source, string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert quiz %s: %w", quiz.ID, err)
	}
	return nil
}

// SaveCustomQuizzes replaces the directly-uploaded quiz list wholesale in
// one transaction. Source-synced quizzes are untouched; those rows belong
// to their source's reconciliation.
func (db *DB) SaveCustomQuizzes(quizzes []domain.Quiz) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin quiz replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM quizzes WHERE source_id IS NULL`); err != nil {
		return fmt.Errorf("failed to clear uploaded quizzes: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO quizzes (id, subject, level, title, folder_id, fingerprint, source_id, payload)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare quiz insert: %w", err)
	}
	defer stmt.Close()

	for _, quiz := range quizzes {
		payload, err := json.Marshal(quiz)
		if err != nil {
			return fmt.Errorf("failed to encode quiz %s: %w", quiz.ID, err)
		}
		var folder sql.NullString
		if quiz.FolderID != "" {
			folder = sql.NullString{String: quiz.FolderID, Valid: true}
		}
		if _, err := stmt.Exec(quiz.ID, quiz.Subject, quiz.Level, quiz.Title, folder, fingerprint.Hash(quiz), string(payload)); err != nil {
			return fmt.Errorf("failed to insert quiz %s: %w", quiz.ID, err)
		}
	}
	return tx.Commit()
}

// FindQuizByFingerprint reports whether a quiz with this content hash is
// already stored. Returns nil when not found.
func (db *DB) FindQuizByFingerprint(fingerprint string) (*domain.Quiz, error) {
	var payload string
	err := db.conn.QueryRow(`SELECT payload FROM quizzes WHERE fingerprint = ?`, fingerprint).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find quiz by fingerprint: %w", err)
	}

	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(payload), &quiz); err != nil {
		return nil, fmt.Errorf("failed to decode quiz: %w", err)
	}
	return &quiz, nil
}

// DeleteCustomQuiz removes one quiz by ID.
func (db *DB) DeleteCustomQuiz(quizID string) error {
	if _, err := db.conn.Exec(`DELETE FROM quizzes WHERE id = ?`, quizID); err != nil {
		return fmt.Errorf("failed to delete quiz %s: %w", quizID, err)
	}
	return nil
}

// DeleteQuizzesBySubject removes every quiz under a subject, the cascade
// half of subject deletion.
func (db *DB) DeleteQuizzesBySubject(subjectID string) error {
	if _, err := db.conn.Exec(`DELETE FROM quizzes WHERE subject = ?`, subjectID); err != nil {
		return fmt.Errorf("failed to delete quizzes for subject %s: %w", subjectID, err)
	}
	return nil
}

// GetCustomSubjects returns all user-created subjects.
func (db *DB) GetCustomSubjects() ([]domain.Subject, error) {
	rows, err := db.conn.Query(`SELECT id, name, icon FROM subjects ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to get subjects: %w", err)
	}
	defer rows.Close()

	var subjects []domain.Subject
	for rows.Next() {
		var s domain.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan subject row: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// AddCustomSubject stores a subject; an already-present ID is left alone.
func (db *DB) AddCustomSubject(subject domain.Subject) error {
	_, err := db.conn.Exec(`
		INSERT INTO subjects (id, name, icon) VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, subject.ID, subject.Name, subject.Icon)
	if err != nil {
		return fmt.Errorf("failed to insert subject %s: %w", subject.ID, err)
	}
	return nil
}

// SaveCustomSubjects replaces the custom subject list wholesale in one
// transaction.
func (db *DB) SaveCustomSubjects(subjects []domain.Subject) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin subject replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM subjects`); err != nil {
		return fmt.Errorf("failed to clear subjects: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO subjects (id, name, icon) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare subject insert: %w", err)
	}
	defer stmt.Close()

	for _, subject := range subjects {
		if _, err := stmt.Exec(subject.ID, subject.Name, subject.Icon); err != nil {
			return fmt.Errorf("failed to insert subject %s: %w", subject.ID, err)
		}
	}
	return tx.Commit()
}

// DeleteCustomSubject removes a subject row. Cascading its quizzes and
// folders is the catalog's job.
func (db *DB) DeleteCustomSubject(subjectID string) error {
	if _, err := db.conn.Exec(`DELETE FROM subjects WHERE id = ?`, subjectID); err != nil {
		return fmt.Errorf("failed to delete subject %s: %w", subjectID, err)
	}
	return nil
}

// GetFolders returns all folders, optionally filtered by subject when
// subjectID is non-empty.
func (db *DB) GetFolders(subjectID string) ([]domain.Folder, error) {
	query := `SELECT id, subject_id, name FROM folders ORDER BY rowid`
	args := []any{}
	if subjectID != "" {
		query = `SELECT id, subject_id, name FROM folders WHERE subject_id = ? ORDER BY rowid`
		args = append(args, subjectID)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get folders: %w", err)
	}
	defer rows.Close()

	var folders []domain.Folder
	for rows.Next() {
		var f domain.Folder
		if err := rows.Scan(&f.ID, &f.SubjectID, &f.Name); err != nil {
			return nil, fmt.Errorf("failed to scan folder row: %w", err)
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// AddFolder stores a folder.
func (db *DB) AddFolder(folder domain.Folder) error {
	_, err := db.conn.Exec(`
		INSERT INTO folders (id, subject_id, name) VALUES (?, ?, ?)
	`, folder.ID, folder.SubjectID, folder.Name)
	if err != nil {
		return fmt.Errorf("failed to insert folder %s: %w", folder.ID, err)
	}
	return nil
}

// DeleteFolder removes a folder. Quizzes that pointed at it fall back to
// the subject root; their stored folderId becomes a dangling reference the
// catalog treats as "root".
func (db *DB) DeleteFolder(folderID string) error {
	if _, err := db.conn.Exec(`DELETE FROM folders WHERE id = ?`, folderID); err != nil {
		return fmt.Errorf("failed to delete folder %s: %w", folderID, err)
	}
	return nil
}

// DeleteFoldersBySubject removes every folder under a subject.
func (db *DB) DeleteFoldersBySubject(subjectID string) error {
	if _, err := db.conn.Exec(`DELETE FROM folders WHERE subject_id = ?`, subjectID); err != nil {
		return fmt.Errorf("failed to delete folders for subject %s: %w", subjectID, err)
	}
	return nil
}

// Source is a quiz pack origin, either a local path or a git URL.
type Source struct {
	ID          int64
	Path        string
	Type        string
	LastScanned sql.NullTime
}

// Source type values.
const (
	SourceTypeLocal = "local"
	SourceTypeGit   = "git"
)

// InsertSource inserts a new source and returns its ID.
func (db *DB) InsertSource(path, sourceType string) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO sources (path, type) VALUES (?, ?)
	`, path, sourceType)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for source %s: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath retrieves a source by its path. Returns nil when not
// found.
func (db *DB) FindSourceByPath(path string) (*Source, error) {
	var s Source
	err := db.conn.QueryRow(`
		SELECT id, path, type, last_scanned FROM sources WHERE path = ?
	`, path).Scan(&s.ID, &s.Path, &s.Type, &s.LastScanned)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find source by path %s: %w", path, err)
	}
	return &s, nil
}

// GetAllSources retrieves all stored sources.
func (db *DB) GetAllSources() ([]Source, error) {
	rows, err := db.conn.Query(`SELECT id, path, type, last_scanned FROM sources`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Path, &s.Type, &s.LastScanned); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// UpdateSourceLastScanned stamps a source's last sync time.
func (db *DB) UpdateSourceLastScanned(sourceID int64) error {
	_, err := db.conn.Exec(`
		UPDATE sources SET last_scanned = ? WHERE id = ?
	`, time.Now(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for source ID %d: %w", sourceID, err)
	}
	return nil
}

// DeleteSource removes a source and the quizzes synced from it.
func (db *DB) DeleteSource(sourceID int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin source delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM quizzes WHERE source_id = ?`, sourceID); err != nil {
		return fmt.Errorf("failed to delete quizzes for source ID %d: %w", sourceID, err)
	}
	if _, err := tx.Exec(`DELETE FROM sources WHERE id = ?`, sourceID); err != nil {
		return fmt.Errorf("failed to delete source ID %d: %w", sourceID, err)
	}
	return tx.Commit()
}

// ClearAll destructively resets results, custom quizzes, custom subjects
// and folders. Callers must get explicit user confirmation before invoking
// this; the store itself does not ask.
func (db *DB) ClearAll() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin clear: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"results", "quizzes", "subjects", "folders"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
