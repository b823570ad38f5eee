package db

import (
	"context"
	"database/sql"
	"fmt"
)

func EnsureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	schema := schemaPostgres
	if driver == DriverSQLite {
		schema = schemaSQLite
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Timestamps are unix milliseconds so both drivers scan them into int64.
// options_json and answers_json hold embedded documents.

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  roll_number TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  question_text TEXT NOT NULL,
  options_json TEXT NOT NULL,
  question_text_hi TEXT NOT NULL DEFAULT '',
  options_hi_json TEXT NOT NULL DEFAULT '[]',
  correct_answer TEXT NOT NULL,
  correct_answer_index INTEGER,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  name TEXT NOT NULL,
  roll_number TEXT NOT NULL,
  answers_json TEXT NOT NULL,
  score INTEGER NOT NULL,
  total_questions INTEGER NOT NULL,
  percentage INTEGER NOT NULL,
  mode TEXT NOT NULL DEFAULT 'position',
  created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_student ON results (student_id, created_at);
CREATE INDEX IF NOT EXISTS idx_results_roll ON results (roll_number, created_at);

CREATE TABLE IF NOT EXISTS auth_guard_states (
  purpose TEXT NOT NULL,
  subject_key TEXT NOT NULL,
  failed_count INTEGER NOT NULL DEFAULT 0,
  locked_until INTEGER,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (purpose, subject_key)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  roll_number TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  question_text TEXT NOT NULL,
  options_json TEXT NOT NULL,
  question_text_hi TEXT NOT NULL DEFAULT '',
  options_hi_json TEXT NOT NULL DEFAULT '[]',
  correct_answer TEXT NOT NULL,
  correct_answer_index INTEGER,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS results (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  name TEXT NOT NULL,
  roll_number TEXT NOT NULL,
  answers_json TEXT NOT NULL,
  score INTEGER NOT NULL,
  total_questions INTEGER NOT NULL,
  percentage INTEGER NOT NULL,
  mode TEXT NOT NULL DEFAULT 'position',
  created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_student ON results (student_id, created_at);
CREATE INDEX IF NOT EXISTS idx_results_roll ON results (roll_number, created_at);

CREATE TABLE IF NOT EXISTS auth_guard_states (
  purpose TEXT NOT NULL,
  subject_key TEXT NOT NULL,
  failed_count INTEGER NOT NULL DEFAULT 0,
  locked_until BIGINT,
  updated_at BIGINT NOT NULL,
  PRIMARY KEY (purpose, subject_key)
);
`
