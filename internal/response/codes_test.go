package response

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stemsi/anonq-bot/internal/service"
)

func TestCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrCode
	}{
		{"not found", service.ErrQuestionNotFound, ErrInvalidQuestion},
		{"closed", service.ErrQuestionClosed, ErrInvalidQuestion},
		{"duplicate", fmt.Errorf("respond: %w", service.ErrDuplicateResponse), ErrInvalidQuestion},
		{"non member", service.ErrNotAGuildMember, ErrNotGuildMember},
		{"choice count", &service.ValidationError{Kind: service.KindInvalidChoiceCount}, ErrInvalidChoiceCount},
		{"letter", &service.ValidationError{Kind: service.KindInvalidLetterResponse}, ErrInvalidLetter},
		{"infrastructure", errors.New("connection refused"), ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeFor(tt.err); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCodeFor_IndistinguishableRejections(t *testing.T) {
	a := GetMessage(CodeFor(service.ErrQuestionClosed))
	b := GetMessage(CodeFor(service.ErrDuplicateResponse))
	c := GetMessage(CodeFor(service.ErrQuestionNotFound))
	if a != b || b != c {
		t.Error("closed, duplicate and unknown questions must read the same to the user")
	}
}

func TestGetMessage_ChoiceCountWording(t *testing.T) {
	// The enforced minimum is one choice; the wording has always said two.
	if got := GetMessage(ErrInvalidChoiceCount); got != "Specify at least 2 and no more than 15 answer choices." {
		t.Errorf("unexpected message %q", got)
	}
}
