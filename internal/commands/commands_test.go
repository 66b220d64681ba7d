package commands

import (
	"testing"

	"github.com/stemsi/anonq-bot/internal/model"
)

func TestAskCommand_TimeoutChoicesMatchModel(t *testing.T) {
	for _, sub := range AskCommand().Options {
		timeout := sub.Options[0]
		if timeout.Name != OptTimeout || !timeout.Required {
			t.Fatalf("%s: first option must be the required timeout", sub.Name)
		}
		if len(timeout.Choices) != len(model.TimeoutOptions) {
			t.Fatalf("%s: expected %d timeout choices, got %d", sub.Name, len(model.TimeoutOptions), len(timeout.Choices))
		}
		for _, c := range timeout.Choices {
			if _, ok := model.ParseTimeout(c.Value.(string)); !ok {
				t.Errorf("%s: choice %q does not parse", sub.Name, c.Name)
			}
		}
	}
}

func TestAskCommand_ChoicesOnlyOnMultipleChoice(t *testing.T) {
	for _, sub := range AskCommand().Options {
		has := false
		for _, opt := range sub.Options {
			if opt.Name == OptChoices {
				has = true
			}
		}
		if want := sub.Name == SubMultipleChoice; has != want {
			t.Errorf("%s: choices option present=%v, want %v", sub.Name, has, want)
		}
	}
}
