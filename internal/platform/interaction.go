package platform

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

func flags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

// Reply sends the initial response to an interaction. For public replies the
// created message id is returned so a thread can be started from it.
func (d *Discord) Reply(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed, ephemeral bool) (string, error) {
	err := d.s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{e},
			Flags:  flags(ephemeral),
		},
	}, discordgo.WithContext(ctx))
	if err != nil || ephemeral {
		return "", err
	}

	m, err := d.s.InteractionResponse(i, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

// Defer acknowledges an interaction whose reply will come through EditReply.
func (d *Discord) Defer(ctx context.Context, i *discordgo.Interaction, ephemeral bool) error {
	return d.s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags(ephemeral)},
	}, discordgo.WithContext(ctx))
}

func (d *Discord) EditReply(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed) error {
	embeds := []*discordgo.MessageEmbed{e}
	_, err := d.s.InteractionResponseEdit(i, &discordgo.WebhookEdit{Embeds: &embeds}, discordgo.WithContext(ctx))
	return err
}

// FollowUp sends an additional message after the interaction was answered.
func (d *Discord) FollowUp(ctx context.Context, i *discordgo.Interaction, e *discordgo.MessageEmbed, ephemeral bool) error {
	_, err := d.s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{e},
		Flags:  flags(ephemeral),
	}, discordgo.WithContext(ctx))
	return err
}

// ReplyToMessage answers a text message in its channel.
func (d *Discord) ReplyToMessage(ctx context.Context, m *discordgo.Message, e *discordgo.MessageEmbed) error {
	_, err := d.s.ChannelMessageSendEmbedReply(m.ChannelID, e, m.Reference(), discordgo.WithContext(ctx))
	return err
}

// DeployCommands overwrites the application's commands in guildID, or
// globally when guildID is empty.
func (d *Discord) DeployCommands(ctx context.Context, guildID string, cmds []*discordgo.ApplicationCommand) (int, error) {
	return DeployCommands(ctx, d.s, d.ApplicationID(), guildID, cmds)
}

// DeployCommands is the session-level form used by cmd/deploy-commands.
func DeployCommands(ctx context.Context, s *discordgo.Session, appID, guildID string, cmds []*discordgo.ApplicationCommand) (int, error) {
	out, err := s.ApplicationCommandBulkOverwrite(appID, guildID, cmds, discordgo.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	return len(out), nil
}
