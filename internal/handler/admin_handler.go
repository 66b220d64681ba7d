package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/commands"
	"github.com/stemsi/anonq-bot/internal/config"
	"github.com/stemsi/anonq-bot/internal/embed"
)

// Admin text commands.
const (
	AdminClear  = "aq.clear"
	AdminDeploy = "aq.deploy"
	AdminStats  = "aq.stats"
)

const adminTimeout = 30 * time.Second

// AdminPlatform is what the admin text commands need from the chat platform.
type AdminPlatform interface {
	ReplyToMessage(ctx context.Context, m *discordgo.Message, e *discordgo.MessageEmbed) error
	// DeployCommands registers cmds for guildID, or globally when guildID is empty.
	DeployCommands(ctx context.Context, guildID string, cmds []*discordgo.ApplicationCommand) (int, error)
	GuildName(guildID string) string
}

// QuestionClearer removes every stored question.
type QuestionClearer interface {
	ClearAll(ctx context.Context) (int64, error)
}

// AdminHandler handles the aq.* text commands of BOT_ADMINISTRATORS.
type AdminHandler struct {
	cfg       *config.Config
	platform  AdminPlatform
	questions QuestionClearer
	counters  Counters
	log       zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cfg *config.Config, platform AdminPlatform, questions QuestionClearer, counters Counters, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		cfg:       cfg,
		platform:  platform,
		questions: questions,
		counters:  counters,
		log:       log.With().Str("component", "admin_handler").Logger(),
	}
}

// OnMessage is registered with the discord session.
func (h *AdminHandler) OnMessage(_ *discordgo.Session, mc *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()
	h.Handle(ctx, mc.Message)
}

// Handle runs m if it is an admin command from an administrator in a guild.
// Everything else is ignored silently.
func (h *AdminHandler) Handle(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.GuildID == "" || m.Author == nil || m.Author.Bot {
		return
	}
	if !h.cfg.IsAdministrator(m.Author.ID) {
		return
	}

	log := h.log.With().Str("command", m.Content).Str("user_id", m.Author.ID).Logger()

	var reply *discordgo.MessageEmbed
	switch strings.TrimSpace(m.Content) {
	case AdminClear:
		if !h.cfg.DevMode() {
			return
		}
		n, err := h.questions.ClearAll(ctx)
		if err != nil {
			log.Error().Err(err).Msg("clear questions")
			reply = embed.Error("Could not clear questions.")
			break
		}
		log.Info().Int64("count", n).Msg("Questions cleared")
		reply = embed.Success(fmt.Sprintf("Cleared %d questions", n), "")

	case AdminDeploy:
		guildID, target := "", "**globally**"
		if h.cfg.DevMode() {
			guildID = m.GuildID
			target = fmt.Sprintf("to **%s**", h.platform.GuildName(m.GuildID))
		}
		n, err := h.platform.DeployCommands(ctx, guildID, commands.All())
		if err != nil {
			log.Error().Err(err).Msg("deploy commands")
			reply = embed.Error("Could not deploy commands.")
			break
		}
		log.Info().Int("count", n).Str("guild_id", guildID).Msg("Commands deployed")
		reply = embed.Success(fmt.Sprintf("Deployed %d commands %s", n, target), "")

	case AdminStats:
		snapshot, err := h.counters.Snapshot(ctx)
		if err != nil {
			log.Error().Err(err).Msg("read statistics")
			reply = embed.Error("Could not read statistics.")
			break
		}
		reply = embed.Info(formatCounters(snapshot))

	default:
		return
	}

	if err := h.platform.ReplyToMessage(ctx, m, reply); err != nil {
		log.Error().Err(err).Msg("reply to admin command")
	}
}

func formatCounters(snapshot map[string]int64) string {
	if len(snapshot) == 0 {
		return "No statistics recorded yet."
	}
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%s: **%d**", name, snapshot[name])
	}
	return strings.Join(lines, "\n")
}
