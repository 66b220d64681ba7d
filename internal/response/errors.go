package response

// ErrCode is a typed error code enum for consistent error identification,
// both in slash-command replies and in ops API envelopes.
type ErrCode string

const (
	// ─── Channel ───────────────────────────────────────────────────────
	ErrGuildOnly   ErrCode = "GUILD_ONLY"
	ErrTextChannel ErrCode = "TEXT_CHANNEL_ONLY"

	// ─── Question creation ─────────────────────────────────────────────
	ErrInvalidChoiceCount ErrCode = "INVALID_CHOICE_COUNT"
	ErrContentTooLong     ErrCode = "CONTENT_TOO_LONG"
	ErrThreadNameTooLong  ErrCode = "THREAD_NAME_TOO_LONG"
	ErrInvalidTimeout     ErrCode = "INVALID_TIMEOUT"
	ErrInvalidType        ErrCode = "INVALID_QUESTION_TYPE"

	// ─── Responses ─────────────────────────────────────────────────────
	// ErrInvalidQuestion covers unknown, closed and already answered questions alike.
	ErrInvalidQuestion ErrCode = "INVALID_QUESTION"
	ErrNotGuildMember  ErrCode = "NOT_GUILD_MEMBER"
	ErrInvalidLetter   ErrCode = "INVALID_LETTER_RESPONSE"
	ErrResponseLength  ErrCode = "RESPONSE_LENGTH_OUT_OF_RANGE"

	// ─── Ops authentication ────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal    ErrCode = "INTERNAL_ERROR"
	ErrUnavailable ErrCode = "SERVICE_UNAVAILABLE"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Channel ───────────────────────────────────────────────────────
	case ErrGuildOnly:
		return "This command can only be run in a server text channel."
	case ErrTextChannel:
		return "This command can only be run in a text channel, not a thread."

	// ─── Question creation ─────────────────────────────────────────────
	case ErrInvalidChoiceCount:
		return "Specify at least 2 and no more than 15 answer choices."
	case ErrContentTooLong:
		return "Too much content. Try shortening your question and/or answer choices."
	case ErrThreadNameTooLong:
		return "Thread name too long."
	case ErrInvalidTimeout:
		return "Pick one of the listed timeouts."
	case ErrInvalidType:
		return "Unknown question type."

	// ─── Responses ─────────────────────────────────────────────────────
	case ErrInvalidQuestion:
		return "**Invalid question ID**\n\nMake sure your question ID is valid, the question is not closed and you have not responded yet. " +
			"Questions only accept responses before the closing time noted in the bot message."
	case ErrNotGuildMember:
		return "You must be in the server the question was asked in to respond."
	case ErrInvalidLetter:
		return "Invalid answer choice. Your response to this multiple-choice question should be one letter of an answer choice."
	case ErrResponseLength:
		return "Your response should be at least 3 and less than 1,500 characters in length."

	// ─── Ops authentication ────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Some options are missing or invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "You're doing that too often. Try again in a moment."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Something went wrong. Please try again later."
	case ErrUnavailable:
		return "A backing service is unavailable."
	default:
		return "An unexpected error occurred."
	}
}
