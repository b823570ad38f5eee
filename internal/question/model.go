package question

import (
	"fmt"
	"strings"
	"time"
)

// Question is a bank entry. Options, OptionsHi and the answer key are embedded
// in the row.
type Question struct {
	ID                 string    `json:"id"`
	QuestionText       string    `json:"questionText"`
	Options            []string  `json:"options"`
	QuestionTextHi     string    `json:"questionTextHi"`
	OptionsHi          []string  `json:"optionsHi"`
	CorrectAnswer      string    `json:"correctAnswer"`
	CorrectAnswerIndex *int      `json:"correctAnswerIndex"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// PublicQuestion is what students see: no answer key.
type PublicQuestion struct {
	ID             string   `json:"id"`
	QuestionText   string   `json:"questionText"`
	Options        []string `json:"options"`
	QuestionTextHi string   `json:"questionTextHi"`
	OptionsHi      []string `json:"optionsHi"`
}

func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:             q.ID,
		QuestionText:   q.QuestionText,
		Options:        q.Options,
		QuestionTextHi: q.QuestionTextHi,
		OptionsHi:      q.OptionsHi,
	}
}

func PublicList(items []Question) []PublicQuestion {
	out := make([]PublicQuestion, 0, len(items))
	for _, q := range items {
		out = append(out, q.Public())
	}
	return out
}

// validate enforces the write-time invariants of a question.
func (q *Question) validate() error {
	q.QuestionText = strings.TrimSpace(q.QuestionText)
	q.QuestionTextHi = strings.TrimSpace(q.QuestionTextHi)
	q.CorrectAnswer = strings.TrimSpace(q.CorrectAnswer)
	q.Options = trimAll(q.Options)
	q.OptionsHi = trimAll(q.OptionsHi)

	if q.QuestionText == "" {
		return fmt.Errorf("%w: questionText is required", ErrInvalidInput)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: at least 2 options are required", ErrInvalidInput)
	}
	for i, opt := range q.Options {
		if opt == "" {
			return fmt.Errorf("%w: option %d is empty", ErrInvalidInput, i)
		}
	}
	if len(q.OptionsHi) != 0 && len(q.OptionsHi) != len(q.Options) {
		return fmt.Errorf("%w: optionsHi must be empty or match options length", ErrInvalidInput)
	}
	if q.CorrectAnswer == "" {
		return fmt.Errorf("%w: correctAnswer is required", ErrInvalidInput)
	}

	if q.CorrectAnswerIndex != nil {
		idx := *q.CorrectAnswerIndex
		if idx < 0 || idx >= len(q.Options) {
			return fmt.Errorf("%w: correctAnswerIndex out of range", ErrInvalidInput)
		}
		if q.Options[idx] != q.CorrectAnswer {
			return fmt.Errorf("%w: correctAnswer and correctAnswerIndex refer to different options", ErrInvalidInput)
		}
		return nil
	}
	if indexOf(q.Options, q.CorrectAnswer) < 0 {
		return fmt.Errorf("%w: correctAnswer must match one of the options", ErrInvalidInput)
	}
	return nil
}

func indexOf(items []string, v string) int {
	for i, it := range items {
		if it == v {
			return i
		}
	}
	return -1
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, strings.TrimSpace(it))
	}
	return out
}
