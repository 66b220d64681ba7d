package commands

import (
	"github.com/bwmarrin/discordgo"
	"github.com/stemsi/anonq-bot/internal/model"
)

// Command and option names.
const (
	Ask     = "ask"
	Respond = "respond"

	SubMultipleChoice = string(model.QuestionTypeMultipleChoice)
	SubFreeResponse   = string(model.QuestionTypeFreeResponse)

	OptTimeout    = "timeout"
	OptQuestion   = "question"
	OptChoices    = "choices"
	OptThreadName = "thread-name"
	OptQuestionID = "question-id"
	OptResponse   = "response"
)

func timeoutOption() *discordgo.ApplicationCommandOption {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(model.TimeoutOptions))
	for i, opt := range model.TimeoutOptions {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: opt.Name, Value: opt.Value}
	}
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptTimeout,
		Description: "How long responses should be accepted for.",
		Required:    true,
		Choices:     choices,
	}
}

func questionOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptQuestion,
		Description: "Question to ask.",
		Required:    true,
	}
}

func threadNameOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        OptThreadName,
		Description: "Optional custom thread name. If not provided, the question will be used as the title.",
	}
}

// AskCommand defines /ask with one subcommand per question type.
func AskCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        Ask,
		Description: "Ask a new question. This command creates a public thread and thus should be run in a text channel.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubMultipleChoice,
				Description: "Ask a multiple choice question.",
				Options: []*discordgo.ApplicationCommandOption{
					timeoutOption(),
					questionOption(),
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        OptChoices,
						Description: `Comma-separated list of choices, e.g. "Option A, Option B, Option C".`,
						Required:    true,
					},
					threadNameOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        SubFreeResponse,
				Description: "Ask a free response question.",
				Options: []*discordgo.ApplicationCommandOption{
					timeoutOption(),
					questionOption(),
					threadNameOption(),
				},
			},
		},
	}
}

// RespondCommand defines /respond.
func RespondCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        Respond,
		Description: "Respond to an open question",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptQuestionID,
				Description: "ID for the question you are responding to; located in the question embed.",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptResponse,
				Description: "Response to the question. Use a single letter (e.g. `A`) for multiple-choice questions.",
				Required:    true,
			},
		},
	}
}

// All returns every command the bot registers.
func All() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{AskCommand(), RespondCommand()}
}
