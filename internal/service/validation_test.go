package service

import (
	"strings"
	"testing"

	"github.com/stemsi/anonq-bot/internal/model"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  hello   world ", "hello world"},
		{"a\t\tb\n\nc", "a b c"},
		{"", ""},
		{"   ", ""},
		{"Red, I think", "Red, I think"},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateCreation_MultipleChoice(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		choices  string
		wantKind ValidationKind
		wantLen  int
	}{
		{name: "three choices", prompt: "Pick one", choices: "Red, Blue ,  Green", wantLen: 3},
		{name: "fifteen choices", prompt: "Pick", choices: strings.Repeat("x,", 14) + "x", wantLen: 15},
		{name: "sixteen choices", prompt: "Pick", choices: strings.Repeat("x,", 15) + "x", wantKind: KindInvalidChoiceCount},
		{name: "empty choice", prompt: "Pick", choices: "a,,b", wantKind: KindEmptyOrOversizedContent},
		{name: "empty prompt", prompt: "   ", choices: "a,b", wantKind: KindEmptyOrOversizedContent},
		{
			name:    "budget exactly 1500",
			prompt:  strings.Repeat("p", 1000),
			choices: strings.Repeat("c", 250) + "," + strings.Repeat("d", 250),
			wantLen: 2,
		},
		{
			name:     "budget 1501",
			prompt:   strings.Repeat("p", 1001),
			choices:  strings.Repeat("c", 250) + "," + strings.Repeat("d", 250),
			wantKind: KindEmptyOrOversizedContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nq, err := ValidateCreation(model.QuestionTypeMultipleChoice, tt.prompt, tt.choices, "", nil)
			if tt.wantKind != "" {
				kind, ok := ValidationKindOf(err)
				if !ok || kind != tt.wantKind {
					t.Fatalf("expected %s, got %v", tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(nq.Choices) != tt.wantLen {
				t.Errorf("expected %d choices, got %d", tt.wantLen, len(nq.Choices))
			}
		})
	}
}

// A single choice is accepted even though the user-facing message asks for
// at least two. The enforced bound is kept as-is until product intent is settled.
func TestValidateCreation_SingleChoiceAccepted(t *testing.T) {
	nq, err := ValidateCreation(model.QuestionTypeMultipleChoice, "Only option?", "Yes", "", nil)
	if err != nil {
		t.Fatalf("single choice should be accepted: %v", err)
	}
	if len(nq.Choices) != 1 || nq.Choices[0] != "Yes" {
		t.Errorf("unexpected choices %v", nq.Choices)
	}
}

func TestValidateCreation_FreeResponse(t *testing.T) {
	if _, err := ValidateCreation(model.QuestionTypeFreeResponse, strings.Repeat("a", 1500), "", "", nil); err != nil {
		t.Errorf("1500 characters should be accepted: %v", err)
	}

	_, err := ValidateCreation(model.QuestionTypeFreeResponse, strings.Repeat("a", 1501), "", "", nil)
	if kind, _ := ValidationKindOf(err); kind != KindEmptyOrOversizedContent {
		t.Errorf("expected %s, got %v", KindEmptyOrOversizedContent, err)
	}

	_, err = ValidateCreation("true-false", "Is it?", "", "", nil)
	if kind, _ := ValidationKindOf(err); kind != KindInvalidQuestionType {
		t.Errorf("expected %s, got %v", KindInvalidQuestionType, err)
	}
}

func TestValidateCreation_ThreadName(t *testing.T) {
	long := strings.Repeat("word ", 40)

	nq, err := ValidateCreation(model.QuestionTypeFreeResponse, long, "", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n := len([]rune(nq.ThreadName)); n != model.DerivedThreadNameLength {
		t.Errorf("derived thread name should be %d chars, got %d", model.DerivedThreadNameLength, n)
	}
	if !strings.HasSuffix(nq.ThreadName, "...") {
		t.Errorf("derived thread name should end with ellipsis: %q", nq.ThreadName)
	}

	nq, err = ValidateCreation(model.QuestionTypeFreeResponse, "Hi <@42>", "", "", func(s string) string {
		return strings.ReplaceAll(s, "<@42>", "@alice")
	})
	if err != nil {
		t.Fatal(err)
	}
	if nq.ThreadName != "Hi @alice" {
		t.Errorf("expected cleaned thread name, got %q", nq.ThreadName)
	}
	if nq.Prompt != "Hi <@42>" {
		t.Errorf("prompt must keep mention markup, got %q", nq.Prompt)
	}

	if _, err := ValidateCreation(model.QuestionTypeFreeResponse, "Q", "", strings.Repeat("t", 100), nil); err != nil {
		t.Errorf("100 character thread name should be accepted: %v", err)
	}
	_, err = ValidateCreation(model.QuestionTypeFreeResponse, "Q", "", strings.Repeat("t", 101), nil)
	if kind, _ := ValidationKindOf(err); kind != KindThreadNameTooLong {
		t.Errorf("expected %s, got %v", KindThreadNameTooLong, err)
	}
}

func TestValidateResponse_MultipleChoice(t *testing.T) {
	q := &model.Question{QuestionType: model.QuestionTypeMultipleChoice, Choices: []string{"Red", "Blue", "Green"}}

	tests := []struct {
		raw       string
		wantValue string
		wantIndex int
		wantErr   bool
	}{
		{raw: "A", wantValue: "a", wantIndex: 0},
		{raw: " c ", wantValue: "c", wantIndex: 2},
		{raw: "b", wantValue: "b", wantIndex: 1},
		{raw: "D", wantErr: true},
		{raw: "AB", wantErr: true},
		{raw: "1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			resp, err := ValidateResponse(q, tt.raw)
			if tt.wantErr {
				if kind, _ := ValidationKindOf(err); kind != KindInvalidLetterResponse {
					t.Fatalf("expected %s, got %v", KindInvalidLetterResponse, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if resp.Value != tt.wantValue || resp.ChoiceIndex != tt.wantIndex {
				t.Errorf("got %+v, want %s/%d", resp, tt.wantValue, tt.wantIndex)
			}
		})
	}
}

func TestValidateResponse_FreeResponseBoundaries(t *testing.T) {
	q := &model.Question{QuestionType: model.QuestionTypeFreeResponse}

	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{name: "3 characters", raw: "abc", ok: true},
		{name: "2 characters", raw: "ab", ok: false},
		{name: "2 characters after trimming", raw: "  ab  ", ok: false},
		{name: "1500 characters", raw: strings.Repeat("z", 1500), ok: true},
		{name: "1501 characters", raw: strings.Repeat("z", 1501), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateResponse(q, tt.raw)
			if tt.ok && err != nil {
				t.Errorf("expected acceptance, got %v", err)
			}
			if !tt.ok {
				if kind, _ := ValidationKindOf(err); kind != KindResponseLengthOutOfRange {
					t.Errorf("expected %s, got %v", KindResponseLengthOutOfRange, err)
				}
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 99); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("abcdefgh", 6); got != "abc..." {
		t.Errorf("got %q", got)
	}
}
