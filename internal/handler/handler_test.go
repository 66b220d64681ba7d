package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/commands"
	"github.com/stemsi/anonq-bot/internal/idgen"
	"github.com/stemsi/anonq-bot/internal/repository"
	"github.com/stemsi/anonq-bot/internal/service"
)

type sentEmbed struct {
	channelID string
	embed     *discordgo.MessageEmbed
	ephemeral bool
}

// fakePlatform records every call made by the handlers.
type fakePlatform struct {
	mu sync.Mutex

	askable   bool
	threadErr error
	pinErr    error

	replies   []sentEmbed
	followUps []sentEmbed
	edits     []*discordgo.MessageEmbed
	deferred  int
	sent      []sentEmbed
	pinned    []string
	threads   []string

	deployedGuild string
	deployed      int
	adminReplies  []*discordgo.MessageEmbed
	nextID        int
}

func (f *fakePlatform) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakePlatform) Reply(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed, ephemeral bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, sentEmbed{channelID: i.ChannelID, embed: e, ephemeral: ephemeral})
	if ephemeral {
		return "", nil
	}
	return f.id("msg"), nil
}

func (f *fakePlatform) Defer(ctx context.Context, i *discordgo.Interaction, ephemeral bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deferred++
	return nil
}

func (f *fakePlatform) EditReply(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, e)
	return nil
}

func (f *fakePlatform) FollowUp(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed, ephemeral bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followUps = append(f.followUps, sentEmbed{embed: e, ephemeral: ephemeral})
	return nil
}

func (f *fakePlatform) IsAskableChannel(ctx context.Context, channelID string) (bool, error) {
	return f.askable, nil
}

func (f *fakePlatform) CreateThread(ctx context.Context, channelID, messageID, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.threadErr != nil {
		return "", f.threadErr
	}
	f.threads = append(f.threads, name)
	return f.id("thread"), nil
}

func (f *fakePlatform) SendEmbed(ctx context.Context, channelID string, e *discordgo.MessageEmbed) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmbed{channelID: channelID, embed: e})
	return f.id("msg"), nil
}

func (f *fakePlatform) Pin(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pinErr != nil {
		return f.pinErr
	}
	f.pinned = append(f.pinned, messageID)
	return nil
}

func (f *fakePlatform) ReplyToMessage(ctx context.Context, m *discordgo.Message, e *discordgo.MessageEmbed) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminReplies = append(f.adminReplies, e)
	return nil
}

func (f *fakePlatform) DeployCommands(ctx context.Context, guildID string, cmds []*discordgo.ApplicationCommand) (int, error) {
	f.deployedGuild = guildID
	f.deployed = len(cmds)
	return len(cmds), nil
}

func (f *fakePlatform) GuildName(guildID string) string {
	return "Test Guild"
}

type allMembers struct{}

func (allMembers) IsGuildMember(ctx context.Context, guildID, userID string) (bool, error) {
	return userID != "outsider", nil
}

type brokenCounters struct{}

func (brokenCounters) Snapshot(ctx context.Context) (map[string]int64, error) {
	return nil, errors.New("database is down")
}

func newQuestionService(t *testing.T, store *repository.MemoryStore) *service.QuestionService {
	t.Helper()
	if err := service.NewStatisticService(store, zerolog.Nop()).EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("ensure statistics: %v", err)
	}
	return service.NewQuestionService(store, idgen.New(), allMembers{}, nil, nil, zerolog.Nop())
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func askInteraction(sub string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "asker", Username: "asker"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: commands.Ask,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{
				Name:    sub,
				Type:    discordgo.ApplicationCommandOptionSubCommand,
				Options: opts,
			}},
		},
	}
}

func respondInteraction(userID, questionID, resp string) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "dm",
		User:      &discordgo.User{ID: userID, Username: userID},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: commands.Respond,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				stringOpt(commands.OptQuestionID, questionID),
				stringOpt(commands.OptResponse, resp),
			},
		},
	}
}

func embedText(e *discordgo.MessageEmbed) string {
	var b strings.Builder
	b.WriteString(e.Title)
	b.WriteString("\n")
	b.WriteString(e.Description)
	for _, f := range e.Fields {
		b.WriteString("\n" + f.Name + ": " + f.Value)
	}
	return b.String()
}
