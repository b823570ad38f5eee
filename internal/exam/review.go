package exam

import (
	"time"

	"mocktest/internal/question"
)

const missingQuestionText = "Question not found"

type Result struct {
	ID             string         `json:"id"`
	StudentID      string         `json:"studentId"`
	Name           string         `json:"name"`
	RollNumber     string         `json:"rollNumber"`
	Answers        []AnswerRecord `json:"answers"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Percentage     int            `json:"percentage"`
	Mode           Mode           `json:"mode"`
	SubmittedAt    time.Time      `json:"submittedAt"`
}

type ReviewItem struct {
	QuestionID     *string  `json:"questionId"`
	Found          bool     `json:"found"`
	QuestionText   string   `json:"questionText"`
	QuestionTextHi string   `json:"questionTextHi,omitempty"`
	Options        []string `json:"options"`
	OptionsHi      []string `json:"optionsHi,omitempty"`
	CorrectAnswer  *string  `json:"correctAnswer"`
	UserAnswer     *string  `json:"userAnswer"`
	IsCorrect      bool     `json:"isCorrect"`
}

type Review struct {
	ResultID       string       `json:"resultId"`
	Name           string       `json:"name"`
	RollNumber     string       `json:"rollNumber"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	Percentage     int          `json:"percentage"`
	Mode           Mode         `json:"mode"`
	SubmittedAt    time.Time    `json:"submittedAt"`
	Review         []ReviewItem `json:"review"`
}

// QuestionIDs lists the non-nil question references of a result in order.
func (r Result) QuestionIDs() []string {
	ids := make([]string, 0, len(r.Answers))
	for _, a := range r.Answers {
		if a.QuestionID != nil {
			ids = append(ids, *a.QuestionID)
		}
	}
	return ids
}

// AssembleReview joins stored answers with the current questions. The stored
// isCorrect is shown as is; a question that no longer exists yields a
// placeholder item.
func AssembleReview(result Result, lookup map[string]question.Question) []ReviewItem {
	items := make([]ReviewItem, 0, len(result.Answers))
	for _, a := range result.Answers {
		item := ReviewItem{
			QuestionID: a.QuestionID,
			UserAnswer: a.SelectedAnswer,
			IsCorrect:  a.IsCorrect,
			Options:    []string{},
		}

		var q question.Question
		found := false
		if a.QuestionID != nil {
			q, found = lookup[*a.QuestionID]
		}
		if !found {
			item.QuestionText = missingQuestionText
			items = append(items, item)
			continue
		}

		correct := q.CorrectAnswer
		if idx, ok := ResolveCorrectIndex(q); ok {
			correct = q.Options[idx]
		}
		item.Found = true
		item.QuestionText = q.QuestionText
		item.QuestionTextHi = q.QuestionTextHi
		item.Options = q.Options
		item.OptionsHi = q.OptionsHi
		item.CorrectAnswer = &correct
		items = append(items, item)
	}
	return items
}

func newReview(r Result, items []ReviewItem) *Review {
	return &Review{
		ResultID:       r.ID,
		Name:           r.Name,
		RollNumber:     r.RollNumber,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Percentage:     r.Percentage,
		Mode:           r.Mode,
		SubmittedAt:    r.SubmittedAt,
		Review:         items,
	}
}
