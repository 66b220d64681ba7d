package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/config"
)

// Event types.
const (
	TypeQuestionCreated = "question.created"
	TypeQuestionClosed  = "question.closed"
)

// Event is a question lifecycle notification. It never carries response
// text or responder ids.
type Event struct {
	Type         string    `json:"type"`
	QuestionID   string    `json:"question_id"`
	GuildID      string    `json:"guild_id"`
	QuestionType string    `json:"question_type"`
	Responses    int       `json:"responses"`
	ClosesAt     time.Time `json:"closes_at"`
	At           time.Time `json:"at"`
}

// Emitter publishes lifecycle events. Emit never fails the caller.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}

// RedisBus fans events out over Redis pub/sub so every replica's ops
// server can stream them.
type RedisBus struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewRedisBus(rdb *redis.Client, log zerolog.Logger) *RedisBus {
	return &RedisBus{
		rdb: rdb,
		log: log.With().Str("component", "event_bus").Logger(),
	}
}

func (b *RedisBus) Emit(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Error().Err(err).Str("type", ev.Type).Msg("marshal event")
		return
	}
	if err := b.rdb.Publish(ctx, config.CacheKey.EventsChannel(), payload).Err(); err != nil {
		b.log.Warn().Err(err).Str("type", ev.Type).Str("question_id", ev.QuestionID).Msg("publish event failed")
	}
}

// Source delivers lifecycle events to a listener until stop is called.
type Source interface {
	Listen(ctx context.Context) (ch <-chan Event, stop func(), err error)
}

// Listen subscribes to the events channel and decodes every message.
func (b *RedisBus) Listen(ctx context.Context) (<-chan Event, func(), error) {
	pubsub := b.rdb.Subscribe(ctx, config.CacheKey.EventsChannel())
	// Wait for the subscription confirmation so early events are not missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn().Err(err).Msg("drop malformed event")
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { _ = pubsub.Close() }, nil
}

// Recorder keeps emitted events in memory.
type Recorder struct {
	ch chan Event
}

// NewRecorder buffers up to size events; further events are dropped.
func NewRecorder(size int) *Recorder {
	return &Recorder{ch: make(chan Event, size)}
}

func (r *Recorder) Emit(_ context.Context, ev Event) {
	select {
	case r.ch <- ev:
	default:
	}
}

// Events returns the buffered channel of recorded events.
func (r *Recorder) Events() <-chan Event {
	return r.ch
}

// Listen hands out the recorded events. Only one listener is supported.
func (r *Recorder) Listen(context.Context) (<-chan Event, func(), error) {
	return r.ch, func() {}, nil
}
