package exam

import (
	"testing"

	"mocktest/internal/question"
)

func strPtr(v string) *string { return &v }

func TestAssembleReviewSubstitutesMissingQuestions(t *testing.T) {
	result := Result{
		ID: "r1",
		Answers: []AnswerRecord{
			{QuestionID: strPtr("q1"), SelectedAnswer: strPtr("B"), IsCorrect: true},
			{QuestionID: strPtr("deleted"), SelectedAnswer: strPtr("Y"), IsCorrect: false},
			{QuestionID: nil},
		},
	}
	lookup := map[string]question.Question{
		"q1": {ID: "q1", QuestionText: "Pick B", Options: []string{"A", "B"}, CorrectAnswer: "B", CorrectAnswerIndex: intPtr(1)},
	}

	items := AssembleReview(result, lookup)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	if !items[0].Found || items[0].QuestionText != "Pick B" || items[0].CorrectAnswer == nil || *items[0].CorrectAnswer != "B" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[0].UserAnswer == nil || *items[0].UserAnswer != "B" || !items[0].IsCorrect {
		t.Fatalf("expected stored answer and correctness, got %+v", items[0])
	}

	for _, it := range items[1:] {
		if it.Found || it.QuestionText != "Question not found" || it.CorrectAnswer != nil {
			t.Fatalf("expected sentinel, got %+v", it)
		}
		if it.Options == nil || len(it.Options) != 0 {
			t.Fatalf("sentinel options must be an empty list, got %v", it.Options)
		}
	}
	if items[1].UserAnswer == nil || *items[1].UserAnswer != "Y" {
		t.Fatalf("sentinel must keep the stored answer, got %+v", items[1])
	}
}

func TestAssembleReviewKeepsStoredCorrectness(t *testing.T) {
	// The key was edited after submission; the stored judgement stands.
	result := Result{Answers: []AnswerRecord{{QuestionID: strPtr("q1"), SelectedAnswer: strPtr("A"), IsCorrect: true}}}
	lookup := map[string]question.Question{
		"q1": {ID: "q1", QuestionText: "?", Options: []string{"A", "B"}, CorrectAnswer: "B"},
	}
	items := AssembleReview(result, lookup)
	if !items[0].IsCorrect || *items[0].CorrectAnswer != "B" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
}

func TestResultQuestionIDs(t *testing.T) {
	r := Result{Answers: []AnswerRecord{{QuestionID: strPtr("a")}, {}, {QuestionID: strPtr("b")}}}
	ids := r.QuestionIDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
