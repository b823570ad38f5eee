package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrResultNotFound   = errors.New("result not found")
	ErrAlreadySubmitted = errors.New("test already submitted")
)

// Aggregate summarizes every stored result.
type Aggregate struct {
	Count    int64
	SumScore int64
	MaxScore int64
}

// SQLResultStore persists results with their answer records embedded as JSON.
type SQLResultStore struct {
	db *sql.DB
}

func NewSQLResultStore(conn *sql.DB) *SQLResultStore {
	return &SQLResultStore{db: conn}
}

const selectResultColumns = `
	SELECT id, student_id, name, roll_number, answers_json, score,
		total_questions, percentage, mode, created_at
	FROM results
`

func (s *SQLResultStore) Create(ctx context.Context, r Result) error {
	answersJSON, err := encodeAnswers(r.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results (
			id, student_id, name, roll_number, answers_json, score,
			total_questions, percentage, mode, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.ID, r.StudentID, r.Name, r.RollNumber, answersJSON, r.Score,
		r.TotalQuestions, r.Percentage, string(r.Mode), r.SubmittedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// CreateFirst inserts r only when the student has no stored result yet.
func (s *SQLResultStore) CreateFirst(ctx context.Context, r Result) error {
	answersJSON, err := encodeAnswers(r.Answers)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO results (
			id, student_id, name, roll_number, answers_json, score,
			total_questions, percentage, mode, created_at
		)
		SELECT CAST($1 AS TEXT), CAST($2 AS TEXT), CAST($3 AS TEXT), CAST($4 AS TEXT),
			CAST($5 AS TEXT), CAST($6 AS INTEGER), CAST($7 AS INTEGER),
			CAST($8 AS INTEGER), CAST($9 AS TEXT), CAST($10 AS BIGINT)
		WHERE NOT EXISTS (
			SELECT 1 FROM results WHERE student_id = CAST($2 AS TEXT)
		)
	`, r.ID, r.StudentID, r.Name, r.RollNumber, answersJSON, r.Score,
		r.TotalQuestions, r.Percentage, string(r.Mode), r.SubmittedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadySubmitted
	}
	return nil
}

func (s *SQLResultStore) LatestByStudent(ctx context.Context, studentID string) (*Result, error) {
	return s.latest(ctx, `WHERE student_id = $1`, studentID)
}

func (s *SQLResultStore) LatestByRollNumber(ctx context.Context, rollNumber string) (*Result, error) {
	return s.latest(ctx, `WHERE roll_number = $1`, rollNumber)
}

func (s *SQLResultStore) latest(ctx context.Context, where string, arg string) (*Result, error) {
	r, err := scanResult(s.db.QueryRowContext(ctx, selectResultColumns+where+` ORDER BY created_at DESC, id DESC LIMIT 1`, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("query latest result: %w", err)
	}
	return r, nil
}

func (s *SQLResultStore) ListByStudent(ctx context.Context, studentID string) ([]Result, error) {
	return s.list(ctx, selectResultColumns+`WHERE student_id = $1 ORDER BY created_at DESC, id DESC`, studentID)
}

// ListAll returns every result newest first, optionally for one roll number.
func (s *SQLResultStore) ListAll(ctx context.Context, rollNumber string) ([]Result, error) {
	if rollNumber != "" {
		return s.list(ctx, selectResultColumns+`WHERE roll_number = $1 ORDER BY created_at DESC, id DESC`, rollNumber)
	}
	return s.list(ctx, selectResultColumns+`ORDER BY created_at DESC, id DESC`)
}

func (s *SQLResultStore) Aggregate(ctx context.Context) (Aggregate, error) {
	var agg Aggregate
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(score), 0), COALESCE(MAX(score), 0)
		FROM results
	`).Scan(&agg.Count, &agg.SumScore, &agg.MaxScore)
	if err != nil {
		return Aggregate{}, fmt.Errorf("aggregate results: %w", err)
	}
	return agg, nil
}

func (s *SQLResultStore) list(ctx context.Context, query string, args ...any) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	items := make([]Result, 0)
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return items, nil
}

func encodeAnswers(answers []AnswerRecord) (string, error) {
	if answers == nil {
		answers = []AnswerRecord{}
	}
	b, err := json.Marshal(answers)
	if err != nil {
		return "", fmt.Errorf("encode answers: %w", err)
	}
	return string(b), nil
}

func scanResult(scanner interface{ Scan(dest ...any) error }) (*Result, error) {
	var (
		r           Result
		answersJSON string
		mode        string
		createdAt   int64
	)
	if err := scanner.Scan(
		&r.ID, &r.StudentID, &r.Name, &r.RollNumber, &answersJSON, &r.Score,
		&r.TotalQuestions, &r.Percentage, &mode, &createdAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(answersJSON), &r.Answers); err != nil {
		return nil, fmt.Errorf("decode answers of %s: %w", r.ID, err)
	}
	if r.Answers == nil {
		r.Answers = []AnswerRecord{}
	}
	r.Mode = Mode(mode)
	r.SubmittedAt = time.UnixMilli(createdAt).UTC()
	return &r, nil
}
