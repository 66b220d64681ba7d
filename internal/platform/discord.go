package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// ThreadArchiveMinutes is the auto-archive duration of question threads.
const ThreadArchiveMinutes = 1440

// Intents needed for slash commands and administrator text commands.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

// Discord adapts a discordgo session to the narrow interfaces the bot uses.
type Discord struct {
	s   *discordgo.Session
	log zerolog.Logger
}

// New creates a session for a bot token. Call Open to connect the gateway.
func New(token string, log zerolog.Logger) (*Discord, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	s.StateEnabled = true

	return &Discord{s: s, log: log.With().Str("component", "discord").Logger()}, nil
}

// Session exposes the underlying session for handler registration.
func (d *Discord) Session() *discordgo.Session {
	return d.s
}

func (d *Discord) Open() error {
	if err := d.s.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

func (d *Discord) Close() error {
	return d.s.Close()
}

// ApplicationID is the bot user's id, available once the gateway is ready.
func (d *Discord) ApplicationID() string {
	if d.s.State == nil || d.s.State.User == nil {
		return ""
	}
	return d.s.State.User.ID
}

// IsGuildMember asks the REST API every time. The state cache is never
// consulted: without the guild members intent it misses member removals.
// It reports false for unknown members and unknown users, and an error for
// anything else.
func (d *Discord) IsGuildMember(ctx context.Context, guildID, userID string) (bool, error) {
	_, err := d.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("fetch guild member: %w", err)
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func (d *Discord) SendEmbed(ctx context.Context, channelID string, e *discordgo.MessageEmbed) (string, error) {
	m, err := d.s.ChannelMessageSendEmbed(channelID, e, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (d *Discord) EditEmbed(ctx context.Context, channelID, messageID string, e *discordgo.MessageEmbed) error {
	_, err := d.s.ChannelMessageEditEmbed(channelID, messageID, e, discordgo.WithContext(ctx))
	return err
}

// UserTag returns the display tag of a user, e.g. "name" or "name#1234".
func (d *Discord) UserTag(ctx context.Context, userID string) (string, error) {
	u, err := d.s.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// CreateThread starts a public thread from messageID in channelID.
func (d *Discord) CreateThread(ctx context.Context, channelID, messageID, name string) (string, error) {
	ch, err := d.s.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: ThreadArchiveMinutes,
		Type:                discordgo.ChannelTypeGuildPublicThread,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

func (d *Discord) Pin(ctx context.Context, channelID, messageID string) error {
	return d.s.ChannelMessagePin(channelID, messageID, discordgo.WithContext(ctx))
}

// IsAskableChannel reports whether questions may be asked in channelID:
// guild text and announcement channels only, never threads or DMs.
func (d *Discord) IsAskableChannel(ctx context.Context, channelID string) (bool, error) {
	ch, err := d.s.State.Channel(channelID)
	if err != nil {
		if ch, err = d.s.Channel(channelID, discordgo.WithContext(ctx)); err != nil {
			return false, fmt.Errorf("fetch channel: %w", err)
		}
	}
	return AskableChannelType(ch.Type), nil
}

// AskableChannelType is the channel-type rule behind IsAskableChannel.
func AskableChannelType(t discordgo.ChannelType) bool {
	return t == discordgo.ChannelTypeGuildText || t == discordgo.ChannelTypeGuildNews
}

// GuildName returns the guild's name, or its id when it cannot be resolved.
func (d *Discord) GuildName(guildID string) string {
	if g, err := d.s.State.Guild(guildID); err == nil {
		return g.Name
	}
	if g, err := d.s.Guild(guildID); err == nil {
		return g.Name
	}
	return guildID
}

var mentionPattern = regexp.MustCompile(`<(@!?|@&|#)(\d+)>|@(everyone|here)`)

// CleanContent replaces user, role and channel mentions with readable names
// and defuses @everyone and @here.
func (d *Discord) CleanContent(guildID, content string) string {
	return CleanMentions(content, func(kind, id string) (string, bool) {
		switch kind {
		case "@", "@!":
			if m, err := d.s.State.Member(guildID, id); err == nil && m.User != nil {
				if m.Nick != "" {
					return m.Nick, true
				}
				return m.User.Username, true
			}
			if u, err := d.s.User(id); err == nil {
				return u.Username, true
			}
		case "@&":
			if r, err := d.s.State.Role(guildID, id); err == nil {
				return r.Name, true
			}
		case "#":
			if c, err := d.s.State.Channel(id); err == nil {
				return c.Name, true
			}
		}
		return "", false
	})
}

// CleanMentions rewrites mention markup using resolve. Unresolved mentions
// fall back to a generic name.
func CleanMentions(content string, resolve func(kind, id string) (string, bool)) string {
	return mentionPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := mentionPattern.FindStringSubmatch(match)
		if sub[3] != "" {
			return "@\u200b" + sub[3]
		}

		kind, id := sub[1], sub[2]
		name, ok := resolve(kind, id)
		switch kind {
		case "#":
			if !ok {
				name = "deleted-channel"
			}
			return "#" + name
		case "@&":
			if !ok {
				name = "deleted-role"
			}
			return "@" + name
		default:
			if !ok {
				name = "unknown-user"
			}
			return "@" + strings.TrimPrefix(name, "@")
		}
	})
}
