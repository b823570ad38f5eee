package question

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SQLStore persists questions with options embedded as JSON text.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(conn *sql.DB) *SQLStore {
	return &SQLStore{db: conn}
}

const selectQuestionColumns = `
	SELECT id, question_text, options_json, question_text_hi, options_hi_json,
		correct_answer, correct_answer_index, created_at, updated_at
	FROM questions
`

// List returns the whole bank in insertion order.
func (s *SQLStore) List(ctx context.Context) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, selectQuestionColumns+` ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	items := make([]Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return items, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Question, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx, selectQuestionColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// GetMany loads the given ids in one query. Missing ids are absent from the map.
func (s *SQLStore) GetMany(ctx context.Context, ids []string) (map[string]Question, error) {
	out := make(map[string]Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	seen := make(map[string]struct{}, len(ids))
	args := make([]any, 0, len(ids))
	placeholders := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		args = append(args, id)
		placeholders = append(placeholders, "$"+strconv.Itoa(len(args)))
	}

	rows, err := s.db.QueryContext(ctx, selectQuestionColumns+` WHERE id IN (`+strings.Join(placeholders, ", ")+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out[q.ID] = *q
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Create(ctx context.Context, q Question) error {
	optionsJSON, optionsHiJSON, err := encodeOptions(q)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questions (
			id, question_text, options_json, question_text_hi, options_hi_json,
			correct_answer, correct_answer_index, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, q.ID, q.QuestionText, optionsJSON, q.QuestionTextHi, optionsHiJSON,
		q.CorrectAnswer, nullIntPtr(q.CorrectAnswerIndex), q.CreatedAt.UnixMilli(), q.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *SQLStore) Update(ctx context.Context, q Question) error {
	optionsJSON, optionsHiJSON, err := encodeOptions(q)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE questions
		SET question_text = $2,
			options_json = $3,
			question_text_hi = $4,
			options_hi_json = $5,
			correct_answer = $6,
			correct_answer_index = $7,
			updated_at = $8
		WHERE id = $1
	`, q.ID, q.QuestionText, optionsJSON, q.QuestionTextHi, optionsHiJSON,
		q.CorrectAnswer, nullIntPtr(q.CorrectAnswerIndex), q.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func encodeOptions(q Question) (string, string, error) {
	optionsHi := q.OptionsHi
	if optionsHi == nil {
		optionsHi = []string{}
	}
	a, err := json.Marshal(q.Options)
	if err != nil {
		return "", "", fmt.Errorf("encode options: %w", err)
	}
	b, err := json.Marshal(optionsHi)
	if err != nil {
		return "", "", fmt.Errorf("encode optionsHi: %w", err)
	}
	return string(a), string(b), nil
}

func scanQuestion(scanner interface{ Scan(dest ...any) error }) (*Question, error) {
	var (
		q             Question
		optionsJSON   string
		optionsHiJSON string
		correctIndex  sql.NullInt64
		createdAt     int64
		updatedAt     int64
	)
	if err := scanner.Scan(
		&q.ID, &q.QuestionText, &optionsJSON, &q.QuestionTextHi, &optionsHiJSON,
		&q.CorrectAnswer, &correctIndex, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
		return nil, fmt.Errorf("decode options of %s: %w", q.ID, err)
	}
	if optionsHiJSON != "" {
		if err := json.Unmarshal([]byte(optionsHiJSON), &q.OptionsHi); err != nil {
			return nil, fmt.Errorf("decode optionsHi of %s: %w", q.ID, err)
		}
	}
	if q.OptionsHi == nil {
		q.OptionsHi = []string{}
	}
	if correctIndex.Valid {
		v := int(correctIndex.Int64)
		q.CorrectAnswerIndex = &v
	}
	q.CreatedAt = time.UnixMilli(createdAt).UTC()
	q.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &q, nil
}

func nullIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
