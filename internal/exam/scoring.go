package exam

import (
	"errors"
	"math"

	"mocktest/internal/question"
)

var ErrNoQuestions = errors.New("no questions available")

type Mode string

const (
	// ModeKeyed pairs answers with questions by id.
	ModeKeyed Mode = "keyed"
	// ModePosition pairs answers[i] with the i-th question of the bank.
	// It breaks silently when the bank changes between fetch and submit.
	ModePosition Mode = "position"
)

// Answer is either unanswered or a selected option index.
type Answer struct {
	index    int
	selected bool
}

func Unanswered() Answer { return Answer{} }

func Selected(i int) Answer {
	if i < 0 {
		return Answer{}
	}
	return Answer{index: i, selected: true}
}

func (a Answer) Index() (int, bool) { return a.index, a.selected }

type KeyedAnswer struct {
	QuestionID string
	Answer     Answer
}

type Submission struct {
	Mode       Mode
	positional []Answer
	keyed      map[string]Answer
}

func PositionSubmission(answers []Answer) Submission {
	return Submission{Mode: ModePosition, positional: answers}
}

// KeyedSubmission keeps the first answer given for a question id.
func KeyedSubmission(items []KeyedAnswer) Submission {
	keyed := make(map[string]Answer, len(items))
	for _, it := range items {
		if _, exists := keyed[it.QuestionID]; exists {
			continue
		}
		keyed[it.QuestionID] = it.Answer
	}
	return Submission{Mode: ModeKeyed, keyed: keyed}
}

func (s Submission) answerFor(pos int, questionID string) Answer {
	if s.Mode == ModeKeyed {
		return s.keyed[questionID]
	}
	if pos < len(s.positional) {
		return s.positional[pos]
	}
	return Unanswered()
}

type AnswerRecord struct {
	QuestionID     *string `json:"questionId"`
	SelectedAnswer *string `json:"selectedAnswer"`
	IsCorrect      bool    `json:"isCorrect"`
}

type Outcome struct {
	Answers        []AnswerRecord
	Score          int
	TotalQuestions int
	Percentage     int
	// Unresolvable lists questions whose answer key matches no option.
	Unresolvable []string
}

// ResolveCorrectIndex prefers an in-range CorrectAnswerIndex and falls back to
// the first option equal to CorrectAnswer.
func ResolveCorrectIndex(q question.Question) (int, bool) {
	if q.CorrectAnswerIndex != nil {
		idx := *q.CorrectAnswerIndex
		if idx >= 0 && idx < len(q.Options) {
			return idx, true
		}
	}
	for i, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return i, true
		}
	}
	return -1, false
}

// Score judges a submission against the bank. It never fails on malformed
// answers; they count as unattempted.
func Score(questions []question.Question, sub Submission) (Outcome, error) {
	if len(questions) == 0 {
		return Outcome{}, ErrNoQuestions
	}

	out := Outcome{
		Answers:        make([]AnswerRecord, 0, len(questions)),
		TotalQuestions: len(questions),
	}
	for i, q := range questions {
		correctIdx, resolvable := ResolveCorrectIndex(q)
		if !resolvable {
			out.Unresolvable = append(out.Unresolvable, q.ID)
		}

		id := q.ID
		rec := AnswerRecord{QuestionID: &id}
		if idx, ok := sub.answerFor(i, q.ID).Index(); ok && idx < len(q.Options) {
			text := q.Options[idx]
			rec.SelectedAnswer = &text
			rec.IsCorrect = resolvable && idx == correctIdx
		}
		if rec.IsCorrect {
			out.Score++
		}
		out.Answers = append(out.Answers, rec)
	}
	out.Percentage = Percentage(out.Score, out.TotalQuestions)
	return out, nil
}

func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}
