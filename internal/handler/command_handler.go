package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/commands"
	"github.com/stemsi/anonq-bot/internal/embed"
	"github.com/stemsi/anonq-bot/internal/middleware"
	"github.com/stemsi/anonq-bot/internal/model"
	"github.com/stemsi/anonq-bot/internal/response"
	"github.com/stemsi/anonq-bot/internal/service"
	"github.com/stemsi/anonq-bot/internal/validator"
)

const interactionTimeout = 15 * time.Second

// Platform is what the slash-command handler needs from the chat platform.
type Platform interface {
	Reply(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed, ephemeral bool) (string, error)
	Defer(ctx context.Context, i *discordgo.Interaction, ephemeral bool) error
	EditReply(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed) error
	FollowUp(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed, ephemeral bool) error
	IsAskableChannel(ctx context.Context, channelID string) (bool, error)
	CreateThread(ctx context.Context, channelID, messageID, name string) (string, error)
	SendEmbed(ctx context.Context, channelID string, e *discordgo.MessageEmbed) (string, error)
	Pin(ctx context.Context, channelID, messageID string) error
}

// CommandHandler serves /ask and /respond.
type CommandHandler struct {
	questions      *service.QuestionService
	platform       Platform
	askLimiter     *middleware.RateLimiter
	respondLimiter *middleware.RateLimiter
	log            zerolog.Logger
}

// NewCommandHandler creates a new CommandHandler. Either limiter may be nil.
func NewCommandHandler(
	questions *service.QuestionService,
	platform Platform,
	askLimiter, respondLimiter *middleware.RateLimiter,
	log zerolog.Logger,
) *CommandHandler {
	return &CommandHandler{
		questions:      questions,
		platform:       platform,
		askLimiter:     askLimiter,
		respondLimiter: respondLimiter,
		log:            log.With().Str("component", "command_handler").Logger(),
	}
}

// OnInteraction is registered with the discord session.
func (h *CommandHandler) OnInteraction(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Str("command", ic.ApplicationCommandData().Name).Msg("command panicked")
		}
	}()

	h.Handle(ctx, ic.Interaction)
}

// Handle dispatches one application command interaction.
func (h *CommandHandler) Handle(ctx context.Context, i *discordgo.Interaction) {
	switch i.ApplicationCommandData().Name {
	case commands.Ask:
		h.Ask(ctx, i)
	case commands.Respond:
		h.Respond(ctx, i)
	}
}

// Ask creates a question: public start message, thread, pinned question and
// instructions, then persists it.
func (h *CommandHandler) Ask(ctx context.Context, i *discordgo.Interaction) {
	user := interactionUser(i)
	if i.GuildID == "" || user == nil {
		h.replyError(ctx, i, response.ErrGuildOnly)
		return
	}

	askable, err := h.platform.IsAskableChannel(ctx, i.ChannelID)
	if err != nil {
		h.log.Error().Err(err).Str("channel_id", i.ChannelID).Msg("resolve channel")
		h.replyError(ctx, i, response.ErrInternal)
		return
	}
	if !askable {
		h.replyError(ctx, i, response.CodeFor(service.ErrWrongChannel))
		return
	}

	if h.askLimiter != nil && !h.askLimiter.Allow(user.ID) {
		h.replyError(ctx, i, response.ErrRateLimitExceeded)
		return
	}

	req := parseAsk(i)
	req.AskerID = user.ID
	if fields := validator.Struct(&req); fields != nil {
		h.reply(ctx, i, embed.Error(validationMessage(fields)), true)
		return
	}

	q, err := h.questions.Prepare(ctx, req)
	if err != nil {
		h.replyError(ctx, i, h.codeFor(err, "prepare question"))
		return
	}

	startID, err := h.platform.Reply(ctx, i, embed.Start(q.QuestionID, user.String(), false), false)
	if err != nil {
		h.log.Error().Err(err).Str("question_id", q.QuestionID).Msg("send start message")
		return
	}
	q.StartMessageID = startID

	log := h.log.With().Str("question_id", q.QuestionID).Str("guild_id", q.GuildID).Logger()

	threadID, err := h.platform.CreateThread(ctx, i.ChannelID, startID, q.ThreadName)
	if err != nil {
		log.Error().Err(err).Msg("create thread")
		h.followUpError(ctx, i, response.ErrInternal)
		return
	}
	q.ThreadID = threadID

	questionMsg, err := h.platform.SendEmbed(ctx, threadID, embed.Question(q))
	if err != nil {
		log.Error().Err(err).Msg("send question message")
		h.followUpError(ctx, i, response.ErrInternal)
		return
	}
	howToMsg, err := h.platform.SendEmbed(ctx, threadID, embed.HowToRespond(q))
	if err != nil {
		log.Error().Err(err).Msg("send instructions")
		h.followUpError(ctx, i, response.ErrInternal)
		return
	}
	for _, id := range []string{howToMsg, questionMsg} {
		if err := h.platform.Pin(ctx, threadID, id); err != nil {
			log.Warn().Err(err).Str("message_id", id).Msg("pin failed")
		}
	}

	if err := h.questions.Create(ctx, q); err != nil {
		log.Error().Err(err).Msg("persist question")
		h.followUpError(ctx, i, response.ErrInternal)
	}
}

// Respond records an anonymous response. Every reply is ephemeral.
func (h *CommandHandler) Respond(ctx context.Context, i *discordgo.Interaction) {
	if err := h.platform.Defer(ctx, i, true); err != nil {
		h.log.Error().Err(err).Msg("defer respond")
		return
	}

	user := interactionUser(i)
	if user == nil {
		h.editError(ctx, i, response.ErrInternal)
		return
	}
	if h.respondLimiter != nil && !h.respondLimiter.Allow(user.ID) {
		h.editError(ctx, i, response.ErrRateLimitExceeded)
		return
	}

	opts := optionMap(i.ApplicationCommandData().Options)
	req := model.RespondRequest{
		QuestionID: opts[commands.OptQuestionID],
		Response:   opts[commands.OptResponse],
		UserID:     user.ID,
	}
	if fields := validator.Struct(&req); fields != nil {
		h.edit(ctx, i, embed.Error(validationMessage(fields)))
		return
	}

	accepted, err := h.questions.Respond(ctx, req)
	if err != nil {
		h.editError(ctx, i, h.codeFor(err, "record response"))
		return
	}

	extra := ""
	if accepted.QuestionType == model.QuestionTypeMultipleChoice {
		extra = fmt.Sprintf("You chose **%s**.", accepted.Choice)
	}
	msg := fmt.Sprintf("Successfully added your response! Come back at %s to see all the responses.",
		embed.FormatClosingTime(accepted.ClosesAt))
	h.edit(ctx, i, embed.WithAuthor(embed.Success(msg, extra), embed.QuestionAuthor(accepted.QuestionID)))
}

// codeFor maps err to a user-facing code and logs infrastructure failures.
func (h *CommandHandler) codeFor(err error, action string) response.ErrCode {
	code := response.CodeFor(err)
	if code == response.ErrInternal {
		h.log.Error().Err(err).Msg(action)
	}
	return code
}

func (h *CommandHandler) reply(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed, ephemeral bool) {
	if _, err := h.platform.Reply(ctx, i, e, ephemeral); err != nil {
		h.log.Error().Err(err).Msg("reply to interaction")
	}
}

func (h *CommandHandler) replyError(ctx context.Context, i *discordgo.Interaction, code response.ErrCode) {
	h.reply(ctx, i, embed.Error(response.GetMessage(code)), true)
}

func (h *CommandHandler) followUpError(ctx context.Context, i *discordgo.Interaction, code response.ErrCode) {
	if err := h.platform.FollowUp(ctx, i, embed.Error(response.GetMessage(code)), true); err != nil {
		h.log.Error().Err(err).Msg("follow up on interaction")
	}
}

func (h *CommandHandler) edit(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed) {
	if err := h.platform.EditReply(ctx, i, e); err != nil {
		h.log.Error().Err(err).Msg("edit interaction reply")
	}
}

func (h *CommandHandler) editError(ctx context.Context, i *discordgo.Interaction, code response.ErrCode) {
	h.edit(ctx, i, embed.Error(response.GetMessage(code)))
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func parseAsk(i *discordgo.Interaction) model.AskRequest {
	req := model.AskRequest{GuildID: i.GuildID, ChannelID: i.ChannelID}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return req
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	req.Type = model.QuestionType(sub.Name)
	req.Timeout = opts[commands.OptTimeout]
	req.Question = opts[commands.OptQuestion]
	req.Choices = opts[commands.OptChoices]
	req.ThreadName = opts[commands.OptThreadName]
	return req
}

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	out := make(map[string]string, len(opts))
	for _, o := range opts {
		if o.Type == discordgo.ApplicationCommandOptionString {
			out[o.Name] = o.StringValue()
		}
	}
	return out
}

func validationMessage(fields map[string]string) string {
	lines := make([]string, 0, len(fields)+1)
	lines = append(lines, response.GetMessage(response.ErrValidation))
	for _, msg := range fields {
		lines = append(lines, "• "+msg)
	}
	return strings.Join(lines, "\n")
}
