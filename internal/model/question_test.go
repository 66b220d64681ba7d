package model

import (
	"testing"
	"time"
)

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		value  string
		want   time.Duration
		wantOK bool
	}{
		{value: "60000", want: time.Minute, wantOK: true},
		{value: "86400000", want: 24 * time.Hour, wantOK: true},
		{value: "61000"},
		{value: ""},
		{value: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := ParseTimeout(tt.value)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseTimeout(%q) = %v, %v; want %v, %v", tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTimeoutOptions_AllParse(t *testing.T) {
	for _, opt := range TimeoutOptions {
		if _, ok := ParseTimeout(opt.Value); !ok {
			t.Errorf("option %q does not parse", opt.Name)
		}
	}
}

func TestChoiceLetter(t *testing.T) {
	if got := ChoiceLetter(0); got != "A" {
		t.Errorf("expected A, got %q", got)
	}
	if got := ChoiceLetter(MaxChoices - 1); got != "O" {
		t.Errorf("expected O for the last allowed choice, got %q", got)
	}
}

func TestQuestion_IsActive(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	q := &Question{ClosesAt: now}

	if q.IsActive(now) {
		t.Error("a question is closed at its closing time")
	}
	if !q.IsActive(now.Add(-time.Nanosecond)) {
		t.Error("a question is open before its closing time")
	}
}

func TestQuestion_HasResponded(t *testing.T) {
	q := &Question{Responses: []string{"b", "a"}, Responders: []string{"u2", "u1"}}

	if !q.HasResponded("u1") || q.HasResponded("u3") {
		t.Error("HasResponded must be set membership over Responders")
	}
	if q.ResponseCount() != 2 {
		t.Errorf("expected 2 responses, got %d", q.ResponseCount())
	}
}

func TestQuestionType(t *testing.T) {
	if !QuestionTypeMultipleChoice.Valid() || QuestionType("poll").Valid() {
		t.Error("unexpected Valid result")
	}
	if QuestionTypeFreeResponse.Label() != "Free Response" {
		t.Errorf("unexpected label %q", QuestionTypeFreeResponse.Label())
	}
}
