package exam

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
)

var ErrInvalidAnswers = errors.New("answers must be an array of option indexes or of {questionId, selectedOptionIndex} objects")

type keyedWire struct {
	QuestionID          *string         `json:"questionId"`
	SelectedOptionIndex json.RawMessage `json:"selectedOptionIndex"`
}

// DecodeSubmission turns the raw "answers" payload into a Submission. The
// payload is keyed only when every element is an object carrying a
// questionId; otherwise it is positional and any element that is not a
// number reads as unanswered. Only a non-array payload is rejected.
func DecodeSubmission(raw json.RawMessage) (Submission, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return Submission{}, ErrInvalidAnswers
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return Submission{}, ErrInvalidAnswers
	}

	if keyed, ok := decodeKeyed(items); ok {
		return KeyedSubmission(keyed), nil
	}
	answers := make([]Answer, 0, len(items))
	for _, it := range items {
		answers = append(answers, DecodeAnswer(it))
	}
	return PositionSubmission(answers), nil
}

func decodeKeyed(items []json.RawMessage) ([]KeyedAnswer, bool) {
	if len(items) == 0 {
		return nil, false
	}
	keyed := make([]KeyedAnswer, 0, len(items))
	for _, it := range items {
		if !isObject(it) {
			return nil, false
		}
		var w keyedWire
		if err := json.Unmarshal(it, &w); err != nil {
			return nil, false
		}
		if w.QuestionID == nil || strings.TrimSpace(*w.QuestionID) == "" {
			return nil, false
		}
		keyed = append(keyed, KeyedAnswer{
			QuestionID: strings.TrimSpace(*w.QuestionID),
			Answer:     DecodeAnswer(w.SelectedOptionIndex),
		})
	}
	return keyed, true
}

// DecodeAnswer maps one JSON value to an Answer. Only non-negative integral
// numbers select an option.
func DecodeAnswer(raw json.RawMessage) Answer {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Unanswered()
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Unanswered()
	}
	n, ok := v.(json.Number)
	if !ok {
		return Unanswered()
	}
	if i, err := n.Int64(); err == nil {
		if i < 0 || i > math.MaxInt32 {
			return Unanswered()
		}
		return Selected(int(i))
	}
	f, err := n.Float64()
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return Unanswered()
	}
	return Selected(int(f))
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
