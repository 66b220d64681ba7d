package embed

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/stemsi/anonq-bot/internal/model"
)

const howToRespondFooter = "Your response will be anonymously published in this channel at the time of closing (noted above). " +
	"Responders must be current guild members. You may only respond once. " +
	"Your user ID will be saved separately from your response to prevent multiple responses from the same user."

// Start is the public reply to /ask that the discussion thread hangs off.
// Once closed it is edited in place.
func Start(questionID, askerTag string, closed bool) *discordgo.MessageEmbed {
	description := "Follow this thread for info!"
	if closed {
		description = "This question has been closed."
	}
	return &discordgo.MessageEmbed{
		Color:       ColorInfo,
		Author:      &discordgo.MessageEmbedAuthor{Name: QuestionAuthor(questionID)},
		Title:       "New question asked by " + askerTag,
		Description: description,
	}
}

// Question renders the prompt with lettered choices and the id/type/closing fields.
func Question(q *model.Question) *discordgo.MessageEmbed {
	description := q.Prompt
	switch q.QuestionType {
	case model.QuestionTypeMultipleChoice:
		lines := make([]string, len(q.Choices))
		for i, c := range q.Choices {
			lines[i] = fmt.Sprintf("%s. %s", model.ChoiceLetter(i), c)
		}
		description += "\n\n" + strings.Join(lines, "\n")
	case model.QuestionTypeFreeResponse:
	}

	return &discordgo.MessageEmbed{
		Color:       ColorInfo,
		Description: description,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Question ID", Value: q.QuestionID, Inline: true},
			{Name: "Type", Value: q.QuestionType.Label(), Inline: true},
			{Name: "Closing Time", Value: FormatClosingTime(q.ClosesAt), Inline: true},
		},
	}
}

// HowToRespond explains the /respond command with an example for the question type.
func HowToRespond(q *model.Question) *discordgo.MessageEmbed {
	example := "Lorem ipsum dolor sit amet…"
	if q.QuestionType == model.QuestionTypeMultipleChoice {
		example = "A"
	}
	return &discordgo.MessageEmbed{
		Color:       ColorInfo,
		Title:       "How to respond",
		Description: fmt.Sprintf("Use the /respond command with your response. \nExample: /respond %s %s", q.QuestionID, example),
		Footer:      &discordgo.MessageEmbedFooter{Text: howToRespondFooter},
	}
}
