package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrQuestionNotFound = errors.New("question not found")
)

type questionStore interface {
	List(ctx context.Context) ([]Question, error)
	Get(ctx context.Context, id string) (*Question, error)
	GetMany(ctx context.Context, ids []string) (map[string]Question, error)
	Create(ctx context.Context, q Question) error
	Update(ctx context.Context, q Question) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type Service struct {
	store questionStore
	cache *BankCache
	now   func() time.Time
}

type CreateInput struct {
	QuestionText       string
	Options            []string
	QuestionTextHi     string
	OptionsHi          []string
	CorrectAnswer      string
	CorrectAnswerIndex *int
}

// UpdateInput is a partial patch; nil fields keep the stored value.
type UpdateInput struct {
	ID                 string
	QuestionText       *string
	Options            *[]string
	QuestionTextHi     *string
	OptionsHi          *[]string
	CorrectAnswer      *string
	CorrectAnswerIndex *int
}

func NewService(store questionStore, cacheTTL time.Duration) *Service {
	return &Service{
		store: store,
		cache: NewBankCache(cacheTTL, store.List),
		now:   time.Now,
	}
}

// Bank returns the full bank in stable order, served from the cache.
func (s *Service) Bank(ctx context.Context) ([]Question, error) {
	return s.cache.Get(ctx)
}

func (s *Service) PublicBank(ctx context.Context) ([]PublicQuestion, error) {
	items, err := s.Bank(ctx)
	if err != nil {
		return nil, err
	}
	return PublicList(items), nil
}

// List reads the bank straight from the store for admin screens.
func (s *Service) List(ctx context.Context) ([]Question, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Question, error) {
	if id == "" {
		return nil, ErrQuestionNotFound
	}
	return s.store.Get(ctx, id)
}

func (s *Service) GetMany(ctx context.Context, ids []string) (map[string]Question, error) {
	return s.store.GetMany(ctx, ids)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Question, error) {
	q, err := s.build(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, *q); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return q, nil
}

func (s *Service) Update(ctx context.Context, in UpdateInput) (*Question, error) {
	current, err := s.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	next := *current
	answerTouched := false
	if in.QuestionText != nil {
		next.QuestionText = *in.QuestionText
	}
	if in.QuestionTextHi != nil {
		next.QuestionTextHi = *in.QuestionTextHi
	}
	if in.Options != nil {
		next.Options = *in.Options
		answerTouched = true
	}
	if in.OptionsHi != nil {
		next.OptionsHi = *in.OptionsHi
	}
	if in.CorrectAnswer != nil {
		next.CorrectAnswer = *in.CorrectAnswer
		answerTouched = true
	}
	switch {
	case in.CorrectAnswerIndex != nil:
		idx := *in.CorrectAnswerIndex
		next.CorrectAnswerIndex = &idx
		if in.CorrectAnswer == nil && idx >= 0 && idx < len(next.Options) {
			next.CorrectAnswer = next.Options[idx]
		}
	case answerTouched:
		// A stale index would contradict the new text or options.
		next.CorrectAnswerIndex = nil
	}

	if err := next.validate(); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	if err := s.store.Update(ctx, next); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return &next, nil
}

// Delete removes a question. Stored results keep their references and
// render as "not found" on review.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrQuestionNotFound
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportReport struct {
	Created int              `json:"created"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors"`
}

// Import creates each valid row and reports the rest. Rows are numbered as
// they appear in the source sheet.
func (s *Service) Import(ctx context.Context, rows []ImportRow) (*ImportReport, error) {
	report := &ImportReport{Errors: []ImportRowError{}}
	defer func() {
		if report.Created > 0 {
			s.cache.Invalidate()
		}
	}()

	for _, row := range rows {
		err := row.Err
		var q *Question
		if err == nil {
			q, err = s.build(row.Input)
		}
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, ImportRowError{Row: row.Row, Message: err.Error()})
			continue
		}
		if err := s.store.Create(ctx, *q); err != nil {
			return report, fmt.Errorf("import row %d: %w", row.Row, err)
		}
		report.Created++
	}
	return report, nil
}

func (s *Service) build(in CreateInput) (*Question, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate question id: %w", err)
	}
	q := &Question{
		ID:                 id.String(),
		QuestionText:       in.QuestionText,
		Options:            in.Options,
		QuestionTextHi:     in.QuestionTextHi,
		OptionsHi:          in.OptionsHi,
		CorrectAnswer:      in.CorrectAnswer,
		CorrectAnswerIndex: in.CorrectAnswerIndex,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	return q, nil
}
