package report

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"mocktest/internal/exam"

	"github.com/xuri/excelize/v2"
)

type resultReader interface {
	ListAll(ctx context.Context, rollNumber string) ([]exam.Result, error)
	Aggregate(ctx context.Context) (exam.Aggregate, error)
}

type studentCounter interface {
	CountStudents(ctx context.Context) (int64, error)
}

type questionCounter interface {
	Count(ctx context.Context) (int64, error)
}

type Service struct {
	results   resultReader
	students  studentCounter
	questions questionCounter
}

type Stats struct {
	TotalStudents  int64   `json:"totalStudents"`
	TotalQuestions int64   `json:"totalQuestions"`
	TotalResults   int64   `json:"totalResults"`
	AverageScore   float64 `json:"averageScore"`
	HighestScore   int64   `json:"highestScore"`
}

func NewService(results resultReader, students studentCounter, questions questionCounter) *Service {
	return &Service{results: results, students: students, questions: questions}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	students, err := s.students.CountStudents(ctx)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.Count(ctx)
	if err != nil {
		return nil, err
	}
	agg, err := s.results.Aggregate(ctx)
	if err != nil {
		return nil, err
	}

	out := &Stats{
		TotalStudents:  students,
		TotalQuestions: questions,
		TotalResults:   agg.Count,
	}
	if agg.Count > 0 {
		out.AverageScore = math.Round(float64(agg.SumScore)/float64(agg.Count)*100) / 100
		out.HighestScore = agg.MaxScore
	}
	return out, nil
}

// ListResults returns results newest first; an empty roll number means all.
func (s *Service) ListResults(ctx context.Context, rollNumber string) ([]exam.Result, error) {
	return s.results.ListAll(ctx, strings.TrimSpace(rollNumber))
}

func (s *Service) ExportResultsExcel(ctx context.Context, rollNumber string) ([]byte, error) {
	items, err := s.ListResults(ctx, rollNumber)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	headers := []string{"result_id", "roll_number", "name", "score", "total_questions", "percentage", "mode", "submitted_at"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, it := range items {
		row := i + 2
		values := []any{
			it.ID,
			it.RollNumber,
			it.Name,
			it.Score,
			it.TotalQuestions,
			it.Percentage,
			string(it.Mode),
			it.SubmittedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "H", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}
