package exam

import (
	"errors"
	"testing"

	"mocktest/internal/question"
)

func intPtr(v int) *int { return &v }

func scenarioBank() []question.Question {
	return []question.Question{
		{ID: "q1", Options: []string{"A", "B"}, CorrectAnswerIndex: intPtr(1)},
		{ID: "q2", Options: []string{"X", "Y"}, CorrectAnswer: "X"},
	}
}

func TestScorePositionScenarios(t *testing.T) {
	tests := []struct {
		name       string
		answers    []Answer
		score      int
		percentage int
		selected   []*string
	}{
		{name: "both correct", answers: []Answer{Selected(1), Selected(0)}, score: 2, percentage: 100},
		{name: "both wrong", answers: []Answer{Selected(0), Selected(1)}, score: 0, percentage: 0},
		{name: "out of range second", answers: []Answer{Selected(1), Selected(99)}, score: 1, percentage: 50},
		{name: "short submission", answers: []Answer{Selected(1)}, score: 1, percentage: 50},
		{name: "empty submission", answers: nil, score: 0, percentage: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Score(scenarioBank(), PositionSubmission(tc.answers))
			if err != nil {
				t.Fatalf("score: %v", err)
			}
			if out.Score != tc.score || out.Percentage != tc.percentage || out.TotalQuestions != 2 {
				t.Fatalf("got score=%d pct=%d total=%d; want score=%d pct=%d", out.Score, out.Percentage, out.TotalQuestions, tc.score, tc.percentage)
			}
			if len(out.Answers) != 2 {
				t.Fatalf("expected one record per question, got %d", len(out.Answers))
			}
		})
	}
}

func TestScoreOutOfRangeIsUnattempted(t *testing.T) {
	out, err := Score(scenarioBank(), PositionSubmission([]Answer{Selected(1), Selected(99)}))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	second := out.Answers[1]
	if second.SelectedAnswer != nil || second.IsCorrect {
		t.Fatalf("expected unattempted record, got %+v", second)
	}
	first := out.Answers[0]
	if first.SelectedAnswer == nil || *first.SelectedAnswer != "B" || !first.IsCorrect {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.QuestionID == nil || *first.QuestionID != "q1" {
		t.Fatalf("expected question reference q1, got %v", first.QuestionID)
	}
}

func TestScoreKeyedIgnoresOrderAndUnknownIDs(t *testing.T) {
	sub := KeyedSubmission([]KeyedAnswer{
		{QuestionID: "q2", Answer: Selected(0)},
		{QuestionID: "ghost", Answer: Selected(1)},
		{QuestionID: "q1", Answer: Selected(1)},
		{QuestionID: "q1", Answer: Selected(0)},
	})
	out, err := Score(scenarioBank(), sub)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if out.Score != 2 || out.Percentage != 100 {
		t.Fatalf("expected full marks, got %d/%d", out.Score, out.Percentage)
	}
	if sub.Mode != ModeKeyed {
		t.Fatalf("expected keyed mode, got %s", sub.Mode)
	}
}

func TestScoreCorrectIndexJudgement(t *testing.T) {
	bank := []question.Question{{ID: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswerIndex: intPtr(2)}}
	for i := 0; i < 4; i++ {
		out, err := Score(bank, PositionSubmission([]Answer{Selected(i)}))
		if err != nil {
			t.Fatalf("score: %v", err)
		}
		if got, want := out.Answers[0].IsCorrect, i == 2; got != want {
			t.Fatalf("index %d: isCorrect=%v, want %v", i, got, want)
		}
	}
}

func TestScoreUnresolvableKeyIsNeverCorrect(t *testing.T) {
	bank := []question.Question{
		{ID: "broken", Options: []string{"a", "b"}, CorrectAnswer: "z", CorrectAnswerIndex: intPtr(7)},
		{ID: "ok", Options: []string{"a", "b"}, CorrectAnswer: "b"},
	}
	out, err := Score(bank, PositionSubmission([]Answer{Selected(0), Selected(1)}))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if out.Answers[0].IsCorrect || out.Score != 1 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(out.Unresolvable) != 1 || out.Unresolvable[0] != "broken" {
		t.Fatalf("expected broken to be reported, got %v", out.Unresolvable)
	}
}

func TestScoreRejectsEmptyBank(t *testing.T) {
	if _, err := Score(nil, PositionSubmission([]Answer{Selected(0)})); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestPercentageRounding(t *testing.T) {
	tests := []struct{ score, total, want int }{
		{0, 3, 0}, {1, 3, 33}, {2, 3, 67}, {1, 2, 50}, {1, 8, 13}, {3, 3, 100}, {0, 0, 0},
	}
	for _, tc := range tests {
		if got := Percentage(tc.score, tc.total); got != tc.want {
			t.Fatalf("Percentage(%d, %d) = %d, want %d", tc.score, tc.total, got, tc.want)
		}
	}
}

func TestResolveCorrectIndex(t *testing.T) {
	tests := []struct {
		name string
		q    question.Question
		want int
		ok   bool
	}{
		{name: "index wins", q: question.Question{Options: []string{"a", "b"}, CorrectAnswer: "a", CorrectAnswerIndex: intPtr(1)}, want: 1, ok: true},
		{name: "bad index falls back to text", q: question.Question{Options: []string{"a", "b"}, CorrectAnswer: "b", CorrectAnswerIndex: intPtr(5)}, want: 1, ok: true},
		{name: "first matching text", q: question.Question{Options: []string{"x", "y", "x"}, CorrectAnswer: "x"}, want: 0, ok: true},
		{name: "nothing matches", q: question.Question{Options: []string{"a", "b"}, CorrectAnswer: "c"}, want: -1, ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolveCorrectIndex(tc.q)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("got (%d, %v), want (%d, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}
