package storage

const schema = `
-- Singleton user preferences, stored as one JSON document.
CREATE TABLE IF NOT EXISTS settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    payload TEXT NOT NULL
);

-- Append-only attempt history. One row per question per attempt. The full
-- AttemptResult document lives in payload; the indexed columns exist for
-- cohort scans and are never authoritative on their own.
CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    quiz_id TEXT NOT NULL,
    question_id TEXT NOT NULL,
    is_correct INTEGER NOT NULL,
    timestamp DATETIME NOT NULL,
    payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_question ON results(quiz_id, question_id);

-- Custom quizzes. The aggregate (passages and questions included) is one
-- JSON document; fingerprint is a content hash used to spot already-known
-- quizzes during source sync.
CREATE TABLE IF NOT EXISTS quizzes (
    id TEXT PRIMARY KEY,
    subject TEXT NOT NULL,
    level TEXT NOT NULL,
    title TEXT NOT NULL,
    folder_id TEXT,
    fingerprint TEXT NOT NULL,
    source_id INTEGER,
    payload TEXT NOT NULL,

    FOREIGN KEY(source_id) REFERENCES sources(id)
);
CREATE INDEX IF NOT EXISTS idx_quizzes_fingerprint ON quizzes(fingerprint);

CREATE TABLE IF NOT EXISTS subjects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    icon TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS folders (
    id TEXT PRIMARY KEY,
    subject_id TEXT NOT NULL,
    name TEXT NOT NULL
);

-- Quiz pack origins: a local directory or a git repository of CSV files.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    last_scanned DATETIME
);
`
