package service

import (
	"errors"
	"fmt"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuestionClosed is reported to users exactly like ErrQuestionNotFound.
	ErrQuestionClosed    = errors.New("question closed")
	ErrDuplicateResponse = errors.New("responder already responded")
	ErrNotAGuildMember   = errors.New("responder is not a member of the question's guild")
	ErrWrongChannel      = errors.New("questions can only be asked in a guild text channel")
)

// ValidationKind names the rule a creation or response input broke.
type ValidationKind string

const (
	KindEmptyOrOversizedContent  ValidationKind = "EMPTY_OR_OVERSIZED_CONTENT"
	KindInvalidChoiceCount       ValidationKind = "INVALID_CHOICE_COUNT"
	KindThreadNameTooLong        ValidationKind = "THREAD_NAME_TOO_LONG"
	KindInvalidLetterResponse    ValidationKind = "INVALID_LETTER_RESPONSE"
	KindResponseLengthOutOfRange ValidationKind = "RESPONSE_LENGTH_OUT_OF_RANGE"
	KindInvalidQuestionType      ValidationKind = "INVALID_QUESTION_TYPE"
	KindInvalidTimeout           ValidationKind = "INVALID_TIMEOUT"
)

// ValidationError is a user-facing rejection that mutates no state.
type ValidationError struct {
	Kind   ValidationKind
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func invalid(kind ValidationKind, format string, args ...any) error {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// ValidationKindOf returns the kind of a wrapped *ValidationError.
func ValidationKindOf(err error) (ValidationKind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}
