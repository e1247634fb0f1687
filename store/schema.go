package store

import "database/sql"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS questions (
    id         TEXT PRIMARY KEY,
    question   TEXT NOT NULL,
    answer     TEXT NOT NULL,
    lang       TEXT NOT NULL,
    embedding  BLOB,
    upload_id  TEXT,
    created_by TEXT,
    updated_by TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_questions_upload ON questions(upload_id);
CREATE INDEX IF NOT EXISTS idx_questions_lang ON questions(lang);

CREATE TABLE IF NOT EXISTS upload_history (
    id          TEXT PRIMARY KEY,
    file_name   TEXT NOT NULL,
    status      TEXT NOT NULL,
    uploaded_by TEXT,
    uploaded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_upload_history_date ON upload_history(uploaded_at);

CREATE TABLE IF NOT EXISTS chat_history (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL,
    client_type TEXT,
    history     TEXT NOT NULL DEFAULT '[]',
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_history_user ON chat_history(user_id, created_at);
`

// EnsureSchema creates the store tables in the provided database if they do
// not already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schemaSQL)
	return err
}
