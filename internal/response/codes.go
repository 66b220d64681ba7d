package response

import (
	"errors"

	"github.com/stemsi/anonq-bot/internal/service"
)

// CodeFor maps a service error to the code shown to the user. Unknown
// errors map to ErrInternal and are expected to be logged by the caller.
func CodeFor(err error) ErrCode {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrQuestionClosed),
		errors.Is(err, service.ErrDuplicateResponse):
		return ErrInvalidQuestion
	case errors.Is(err, service.ErrNotAGuildMember):
		return ErrNotGuildMember
	case errors.Is(err, service.ErrWrongChannel):
		return ErrTextChannel
	}

	kind, ok := service.ValidationKindOf(err)
	if !ok {
		return ErrInternal
	}
	switch kind {
	case service.KindEmptyOrOversizedContent:
		return ErrContentTooLong
	case service.KindInvalidChoiceCount:
		return ErrInvalidChoiceCount
	case service.KindThreadNameTooLong:
		return ErrThreadNameTooLong
	case service.KindInvalidLetterResponse:
		return ErrInvalidLetter
	case service.KindResponseLengthOutOfRange:
		return ErrResponseLength
	case service.KindInvalidQuestionType:
		return ErrInvalidType
	case service.KindInvalidTimeout:
		return ErrInvalidTimeout
	default:
		return ErrValidation
	}
}

// IsUserError reports whether err is a rejection of user input rather than
// an infrastructure failure.
func IsUserError(err error) bool {
	return CodeFor(err) != ErrInternal
}
