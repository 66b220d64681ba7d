package embed

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Colors used across every bot message.
const (
	ColorInfo    = 0x5865f2
	ColorSuccess = 0x57f287
	ColorError   = 0xed4245
)

// ClosingTimeLayout renders timestamps like "10/18/2026, 12:00:00 PM UTC".
const ClosingTimeLayout = "1/2/2006, 3:04:05 PM MST"

// FormatClosingTime renders t in UTC with ClosingTimeLayout.
func FormatClosingTime(t time.Time) string {
	return t.UTC().Format(ClosingTimeLayout)
}

func Info(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Color: ColorInfo, Description: description}
}

// Success builds a green embed. extra, when non-empty, is appended as a second paragraph.
func Success(description, extra string) *discordgo.MessageEmbed {
	if extra != "" {
		description += "\n\n" + extra
	}
	return &discordgo.MessageEmbed{Color: ColorSuccess, Description: description}
}

func Error(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Color: ColorError, Description: description}
}

// WithAuthor sets the author line and returns e.
func WithAuthor(e *discordgo.MessageEmbed, name string) *discordgo.MessageEmbed {
	e.Author = &discordgo.MessageEmbedAuthor{Name: name}
	return e
}

// QuestionAuthor is the author line shared by every message about a question.
func QuestionAuthor(questionID string) string {
	return "Question " + questionID
}
