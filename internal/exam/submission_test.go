package exam

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeAnswer(t *testing.T) {
	tests := []struct {
		raw      string
		want     int
		selected bool
	}{
		{raw: `0`, want: 0, selected: true},
		{raw: `3`, want: 3, selected: true},
		{raw: `2.0`, want: 2, selected: true},
		{raw: `1.5`},
		{raw: `-1`},
		{raw: `"1"`},
		{raw: `null`},
		{raw: `true`},
		{raw: `{}`},
		{raw: ``},
		{raw: `1e30`},
	}
	for _, tc := range tests {
		got, ok := DecodeAnswer(json.RawMessage(tc.raw)).Index()
		if ok != tc.selected || (ok && got != tc.want) {
			t.Fatalf("DecodeAnswer(%q) = (%d, %v), want (%d, %v)", tc.raw, got, ok, tc.want, tc.selected)
		}
	}
}

func TestDecodeSubmission(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		mode    Mode
		wantErr bool
	}{
		{name: "positional", raw: `[1, 0, null, "x"]`, mode: ModePosition},
		{name: "empty array", raw: `[]`, mode: ModePosition},
		{name: "keyed", raw: `[{"questionId":"q1","selectedOptionIndex":1},{"questionId":"q2"}]`, mode: ModeKeyed},
		{name: "mixed falls back to position", raw: `[1, {"questionId":"q1","selectedOptionIndex":1}]`, mode: ModePosition},
		{name: "objects without id are positional", raw: `[{"selectedOptionIndex":1}]`, mode: ModePosition},
		{name: "nested array", raw: `[[1]]`, mode: ModePosition},
		{name: "object", raw: `{"0":1}`, wantErr: true},
		{name: "string", raw: `"1,0"`, wantErr: true},
		{name: "missing", raw: ``, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub, err := DecodeSubmission(json.RawMessage(tc.raw))
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidAnswers) {
					t.Fatalf("expected ErrInvalidAnswers, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if sub.Mode != tc.mode {
				t.Fatalf("mode = %s, want %s", sub.Mode, tc.mode)
			}
		})
	}
}

func TestDecodeSubmissionKeyedValues(t *testing.T) {
	sub, err := DecodeSubmission(json.RawMessage(`[{"questionId":" q1 ","selectedOptionIndex":2},{"questionId":"q2","selectedOptionIndex":"2"}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if idx, ok := sub.answerFor(0, "q1").Index(); !ok || idx != 2 {
		t.Fatalf("q1 = (%d, %v)", idx, ok)
	}
	if _, ok := sub.answerFor(1, "q2").Index(); ok {
		t.Fatalf("string index must be unanswered")
	}
}

func TestDecodeSubmissionMalformedElementsAreUnanswered(t *testing.T) {
	sub, err := DecodeSubmission(json.RawMessage(`[1, [0], {"x":1}, "0", null, true, {"questionId":"q1","selectedOptionIndex":0}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sub.Mode != ModePosition {
		t.Fatalf("mode = %s, want %s", sub.Mode, ModePosition)
	}
	if idx, ok := sub.answerFor(0, "").Index(); !ok || idx != 1 {
		t.Fatalf("position 0 = (%d, %v), want (1, true)", idx, ok)
	}
	for i := 1; i < 7; i++ {
		if _, ok := sub.answerFor(i, "").Index(); ok {
			t.Fatalf("position %d should be unanswered", i)
		}
	}
}
