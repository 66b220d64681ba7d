package model

import (
	"slices"
	"time"
)

// QuestionType tags which variant a question is. Every switch over it must be exhaustive.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple-choice"
	QuestionTypeFreeResponse   QuestionType = "free-response"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeFreeResponse
}

// Label is the human-readable type name shown in the question embed.
func (t QuestionType) Label() string {
	switch t {
	case QuestionTypeMultipleChoice:
		return "Multiple Choice"
	case QuestionTypeFreeResponse:
		return "Free Response"
	default:
		return string(t)
	}
}

const (
	// MaxContentLength bounds the prompt, the prompt plus all choices, and free responses.
	MaxContentLength = 1500
	// MinFreeResponseLength is the shortest accepted free response.
	MinFreeResponseLength = 3
	MinChoices            = 1
	MaxChoices            = 15
	MaxThreadNameLength   = 100
	// DerivedThreadNameLength is the truncation length for thread names taken from the prompt.
	DerivedThreadNameLength = 99
)

// ChoiceLetters holds the uppercase letters used to label choices by position.
const ChoiceLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ChoiceLetter returns the uppercase letter for the choice at index i.
func ChoiceLetter(i int) string {
	return ChoiceLetters[i : i+1]
}

// Question is a single asked question and its collected, anonymized responses.
//
// Responses and Responders have equal length but are shuffled independently
// after every append: index i of one says nothing about index i of the other.
type Question struct {
	ID             int64        `json:"id"`
	QuestionID     string       `json:"question_id"`
	QuestionType   QuestionType `json:"question_type"`
	Prompt         string       `json:"prompt"`
	ThreadName     string       `json:"thread_name"`
	Choices        []string     `json:"choices,omitempty"`
	ClosesAt       time.Time    `json:"closes_at"`
	AskerID        string       `json:"asker_id"`
	GuildID        string       `json:"guild_id"`
	ChannelID      string       `json:"channel_id"`
	ThreadID       string       `json:"thread_id"`
	StartMessageID string       `json:"start_message_id"`
	Responses      []string     `json:"-"`
	Responders     []string     `json:"-"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsActive reports whether the question still accepts responses at now.
func (q *Question) IsActive(now time.Time) bool {
	return now.Before(q.ClosesAt)
}

// HasResponded is the only legitimate responder check: set membership.
func (q *Question) HasResponded(userID string) bool {
	return slices.Contains(q.Responders, userID)
}

// ResponseCount returns the number of accepted responses.
func (q *Question) ResponseCount() int {
	return len(q.Responses)
}
