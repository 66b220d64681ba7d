package embed

import (
	"strings"
	"testing"
	"time"

	"github.com/stemsi/anonq-bot/internal/model"
)

func TestFormatClosingTime(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	ts := time.Date(2026, 10, 18, 19, 5, 9, 0, loc)

	if got, want := FormatClosingTime(ts), "10/18/2026, 12:05:09 PM UTC"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSuccess_AppendsExtra(t *testing.T) {
	e := Success("Saved.", "You chose **Red**.")
	if e.Description != "Saved.\n\nYou chose **Red**." {
		t.Errorf("unexpected description %q", e.Description)
	}
	if Success("Saved.", "").Description != "Saved." {
		t.Error("empty extra must not add a paragraph")
	}
}

func TestQuestion_MultipleChoiceListsLetters(t *testing.T) {
	q := &model.Question{
		QuestionID:   "abc123",
		QuestionType: model.QuestionTypeMultipleChoice,
		Prompt:       "Favorite?",
		Choices:      []string{"Red", "Blue"},
		ClosesAt:     time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}

	e := Question(q)
	if e.Description != "Favorite?\n\nA. Red\nB. Blue" {
		t.Errorf("unexpected description %q", e.Description)
	}
	if len(e.Fields) != 3 || e.Fields[1].Value != "Multiple Choice" {
		t.Errorf("unexpected fields %+v", e.Fields)
	}
	if !strings.Contains(HowToRespond(q).Description, "/respond abc123 A") {
		t.Error("multiple-choice example should use a letter")
	}
}

func TestStart_Closed(t *testing.T) {
	e := Start("abc123", "asker#0001", true)
	if e.Description != "This question has been closed." || e.Author.Name != "Question abc123" {
		t.Errorf("unexpected closed start embed %+v", e)
	}
}
