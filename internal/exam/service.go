package exam

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"mocktest/internal/auth"
	"mocktest/internal/question"

	"github.com/google/uuid"
)

type questionSource interface {
	Bank(ctx context.Context) ([]question.Question, error)
	GetMany(ctx context.Context, ids []string) (map[string]question.Question, error)
}

type userSource interface {
	GetUser(ctx context.Context, id string) (*auth.User, error)
}

type resultStore interface {
	Create(ctx context.Context, r Result) error
	CreateFirst(ctx context.Context, r Result) error
	LatestByStudent(ctx context.Context, studentID string) (*Result, error)
	LatestByRollNumber(ctx context.Context, rollNumber string) (*Result, error)
	ListByStudent(ctx context.Context, studentID string) ([]Result, error)
}

type Service struct {
	questions     questionSource
	users         userSource
	results       resultStore
	singleAttempt bool
	now           func() time.Time
}

type ServiceConfig struct {
	// SingleAttempt rejects a second submission by the same student.
	SingleAttempt bool
}

type SubmitResult struct {
	ResultID       string `json:"resultId"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Percentage     int    `json:"percentage"`
	Mode           Mode   `json:"mode"`
}

func NewService(questions questionSource, users userSource, results resultStore, cfg ServiceConfig) *Service {
	return &Service{
		questions:     questions,
		users:         users,
		results:       results,
		singleAttempt: cfg.SingleAttempt,
		now:           time.Now,
	}
}

// Submit scores a submission against the current bank and stores exactly one
// result for it.
func (s *Service) Submit(ctx context.Context, studentID string, sub Submission) (*SubmitResult, error) {
	student, err := s.users.GetUser(ctx, studentID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load student: %w", err)
	}

	bank, err := s.questions.Bank(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	outcome, err := Score(bank, sub)
	if err != nil {
		return nil, err
	}
	if len(outcome.Unresolvable) > 0 {
		log.Printf("submit student=%s unresolvable answer keys: %s", studentID, strings.Join(outcome.Unresolvable, ","))
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate result id: %w", err)
	}
	r := Result{
		ID:             id.String(),
		StudentID:      student.ID,
		Name:           student.Name,
		RollNumber:     student.RollNumber,
		Answers:        outcome.Answers,
		Score:          outcome.Score,
		TotalQuestions: outcome.TotalQuestions,
		Percentage:     outcome.Percentage,
		Mode:           sub.Mode,
		SubmittedAt:    s.now().UTC().Truncate(time.Millisecond),
	}

	if s.singleAttempt {
		err = s.results.CreateFirst(ctx, r)
	} else {
		err = s.results.Create(ctx, r)
	}
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		ResultID:       r.ID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Percentage:     r.Percentage,
		Mode:           r.Mode,
	}, nil
}

func (s *Service) ReviewLatestForStudent(ctx context.Context, studentID string) (*Review, error) {
	r, err := s.results.LatestByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.review(ctx, r)
}

func (s *Service) ReviewByRollNumber(ctx context.Context, rollNumber string) (*Review, error) {
	rollNumber = strings.TrimSpace(rollNumber)
	if rollNumber == "" {
		return nil, ErrResultNotFound
	}
	r, err := s.results.LatestByRollNumber(ctx, rollNumber)
	if err != nil {
		return nil, err
	}
	return s.review(ctx, r)
}

func (s *Service) ListForStudent(ctx context.Context, studentID string) ([]Result, error) {
	return s.results.ListByStudent(ctx, studentID)
}

func (s *Service) review(ctx context.Context, r *Result) (*Review, error) {
	lookup, err := s.questions.GetMany(ctx, r.QuestionIDs())
	if err != nil {
		return nil, fmt.Errorf("load review questions: %w", err)
	}
	return newReview(*r, AssembleReview(*r, lookup)), nil
}
