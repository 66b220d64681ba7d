package publisher

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/embed"
	"github.com/stemsi/anonq-bot/internal/model"
)

// DefaultSendDelay paces free-response disclosure, one message per response.
const DefaultSendDelay = time.Second

// Messenger is the slice of the chat platform the publisher needs.
type Messenger interface {
	SendEmbed(ctx context.Context, channelID string, e *discordgo.MessageEmbed) (string, error)
	EditEmbed(ctx context.Context, channelID, messageID string, e *discordgo.MessageEmbed) error
	UserTag(ctx context.Context, userID string) (string, error)
	CleanContent(guildID, content string) string
}

// ChoiceTally is the published count for one multiple-choice option.
type ChoiceTally struct {
	Letter  string
	Choice  string
	Count   int
	Percent int
}

// Publisher renders the closing summary of a question into its thread.
type Publisher struct {
	msg   Messenger
	delay time.Duration
	log   zerolog.Logger

	shuffle func(n int, swap func(i, j int))
}

func NewPublisher(msg Messenger, delay time.Duration, log zerolog.Logger) *Publisher {
	return &Publisher{
		msg:     msg,
		delay:   delay,
		log:     log.With().Str("component", "publisher").Logger(),
		shuffle: rand.Shuffle,
	}
}

// Publish announces the closing of q. The start message edit is best effort;
// any failure after it aborts the rest of the publication.
func (p *Publisher) Publish(ctx context.Context, q *model.Question) error {
	log := p.log.With().
		Str("question_id", q.QuestionID).
		Str("guild_id", q.GuildID).
		Str("thread_id", q.ThreadID).
		Logger()

	p.closeStartMessage(ctx, q, log)

	summary := &discordgo.MessageEmbed{
		Color:       embed.ColorInfo,
		Title:       "Question closed",
		Description: SummaryText(q),
	}
	if _, err := p.msg.SendEmbed(ctx, q.ThreadID, summary); err != nil {
		return fmt.Errorf("send closing summary: %w", err)
	}

	if q.ResponseCount() == 0 {
		log.Info().Msg("Question closed without responses")
		return nil
	}

	switch q.QuestionType {
	case model.QuestionTypeMultipleChoice:
		if _, err := p.msg.SendEmbed(ctx, q.ThreadID, embed.Info(TallyText(Tally(q)))); err != nil {
			return fmt.Errorf("send tally: %w", err)
		}
	case model.QuestionTypeFreeResponse:
		if err := p.disclose(ctx, q); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown question type %q", q.QuestionType)
	}

	log.Info().Int("responses", q.ResponseCount()).Msg("Question results published")
	return nil
}

func (p *Publisher) closeStartMessage(ctx context.Context, q *model.Question, log zerolog.Logger) {
	if q.StartMessageID == "" {
		return
	}

	tag, err := p.msg.UserTag(ctx, q.AskerID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", q.AskerID).Msg("could not resolve asker tag")
		tag = "unknown user"
	}

	if err := p.msg.EditEmbed(ctx, q.ChannelID, q.StartMessageID, embed.Start(q.QuestionID, tag, true)); err != nil {
		log.Warn().Err(err).Msg("could not mark start message closed")
	}
}

// disclose posts every free response as its own message, reshuffled once more
// and paced by the publisher delay.
func (p *Publisher) disclose(ctx context.Context, q *model.Question) error {
	responses := slices.Clone(q.Responses)
	p.shuffle(len(responses), func(i, j int) {
		responses[i], responses[j] = responses[j], responses[i]
	})

	for i, r := range responses {
		if i > 0 && p.delay > 0 {
			if err := sleep(ctx, p.delay); err != nil {
				return err
			}
		}
		if _, err := p.msg.SendEmbed(ctx, q.ThreadID, embed.Info(p.msg.CleanContent(q.GuildID, r))); err != nil {
			return fmt.Errorf("send response %d of %d: %w", i+1, len(responses), err)
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SummaryText is the body of the "Question closed" notice.
func SummaryText(q *model.Question) string {
	var b strings.Builder
	b.WriteString("This question is no longer accepting responses.\n\n")

	n := q.ResponseCount()
	switch {
	case n == 0:
		b.WriteString("No one responded in the alotted time.")
		return b.String()
	case n == 1:
		b.WriteString("1 response was received and are shown below")
	default:
		fmt.Fprintf(&b, "%d responses were received and are shown below", n)
	}

	if q.QuestionType == model.QuestionTypeFreeResponse {
		b.WriteString(", in no particular order:")
	} else {
		b.WriteString(":")
	}
	return b.String()
}

// Tally counts each choice letter in q.Responses. Percentages are rounded and
// are all zero when there are no responses.
func Tally(q *model.Question) []ChoiceTally {
	counts := make(map[string]int, len(q.Choices))
	for _, r := range q.Responses {
		counts[strings.ToLower(r)]++
	}

	total := q.ResponseCount()
	out := make([]ChoiceTally, len(q.Choices))
	for i, c := range q.Choices {
		letter := model.ChoiceLetter(i)
		n := counts[strings.ToLower(letter)]

		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(n) / float64(total) * 100))
		}
		out[i] = ChoiceTally{Letter: letter, Choice: c, Count: n, Percent: pct}
	}
	return out
}

// TallyText renders one "A. Red: **2** (67%)" line per choice.
func TallyText(tallies []ChoiceTally) string {
	lines := make([]string, len(tallies))
	for i, t := range tallies {
		lines[i] = fmt.Sprintf("%s. %s: **%d** (%d%%)", t.Letter, t.Choice, t.Count, t.Percent)
	}
	return strings.Join(lines, "\n")
}
