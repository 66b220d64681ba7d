package model

import (
	"strconv"
	"time"
)

// TimeoutOption is one entry of the fixed timeout choice list; Value is milliseconds.
type TimeoutOption struct {
	Name  string
	Value string
}

// TimeoutOptions are the only closing windows a question can be asked with.
var TimeoutOptions = []TimeoutOption{
	{Name: "1 minute", Value: "60000"},
	{Name: "5 minutes", Value: "300000"},
	{Name: "15 minutes", Value: "900000"},
	{Name: "30 minutes", Value: "1800000"},
	{Name: "1 hour", Value: "3600000"},
	{Name: "2 hours", Value: "7200000"},
	{Name: "4 hours", Value: "14400000"},
	{Name: "6 hours", Value: "21600000"},
	{Name: "8 hours", Value: "28800000"},
	{Name: "12 hours", Value: "43200000"},
	{Name: "24 hours", Value: "86400000"},
}

// ParseTimeout converts a timeout option value to a duration.
// Values outside TimeoutOptions are rejected.
func ParseTimeout(value string) (time.Duration, bool) {
	for _, opt := range TimeoutOptions {
		if opt.Value == value {
			ms, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, false
			}
			return time.Duration(ms) * time.Millisecond, true
		}
	}
	return 0, false
}

// AskRequest is the decoded /ask invocation.
type AskRequest struct {
	Type       QuestionType `json:"type" validate:"required,oneof=multiple-choice free-response"`
	Timeout    string       `json:"timeout" validate:"required,oneof=60000 300000 900000 1800000 3600000 7200000 14400000 21600000 28800000 43200000 86400000"`
	Question   string       `json:"question" validate:"required"`
	Choices    string       `json:"choices" validate:"required_if=Type multiple-choice"`
	ThreadName string       `json:"thread-name"`
	AskerID    string       `json:"asker_id" validate:"required"`
	GuildID    string       `json:"guild_id" validate:"required"`
	ChannelID  string       `json:"channel_id" validate:"required"`
}

// RespondRequest is the decoded /respond invocation.
type RespondRequest struct {
	QuestionID string `json:"question-id" validate:"required"`
	Response   string `json:"response" validate:"required"`
	UserID     string `json:"user_id" validate:"required"`
}
