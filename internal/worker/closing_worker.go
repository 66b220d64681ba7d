package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/events"
	"github.com/stemsi/anonq-bot/internal/model"
	"github.com/stemsi/anonq-bot/internal/repository"
)

const (
	DefaultSweepInterval = 5 * time.Second
	// SweepLeaseTTL bounds how long a crashed replica can hold the sweep.
	SweepLeaseTTL = 2 * time.Minute

	removeAttempts = 3
	removeBackoff  = 500 * time.Millisecond
)

// Publisher announces the results of a closed question.
type Publisher interface {
	Publish(ctx context.Context, q *model.Question) error
}

// ClosingWorker periodically removes expired questions from the store and
// publishes their results, one question at a time.
type ClosingWorker struct {
	store    repository.Store
	pub      Publisher
	lock     Locker
	events   events.Emitter
	interval time.Duration
	log      zerolog.Logger

	now     func() time.Time
	backoff time.Duration
}

// NewClosingWorker creates a new ClosingWorker. lock may be nil for a single replica.
func NewClosingWorker(
	store repository.Store,
	pub Publisher,
	lock Locker,
	emitter events.Emitter,
	interval time.Duration,
	log zerolog.Logger,
) *ClosingWorker {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if emitter == nil {
		emitter = events.Nop{}
	}
	return &ClosingWorker{
		store:    store,
		pub:      pub,
		lock:     lock,
		events:   emitter,
		interval: interval,
		log:      log.With().Str("component", "closing_worker").Logger(),
		now:      time.Now,
		backoff:  removeBackoff,
	}
}

// Start runs the sweep loop until ctx is cancelled. Call in a goroutine.
func (w *ClosingWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("ClosingWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ClosingWorker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep closes every question whose closing time has passed and returns how
// many were removed. A publication failure never stops the sweep.
func (w *ClosingWorker) Sweep(ctx context.Context) int {
	if w.lock != nil {
		release, err := w.lock.TryAcquire(ctx)
		if err != nil {
			w.log.Error().Err(err).Msg("sweep lease failed")
			return 0
		}
		if release == nil {
			return 0
		}
		defer release()
	}

	ids, err := w.store.Questions().ListExpiredIDs(ctx, w.now())
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("list expired questions")
		}
		return 0
	}

	closed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}

		q, err := w.remove(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			// Closed by another sweeper or cleared by an administrator.
			continue
		}
		if err != nil {
			w.log.Error().Err(err).Int64("id", id).Msg("remove expired question")
			continue
		}
		closed++

		// Publication runs to completion even if shutdown starts mid-way.
		w.publishSafe(context.WithoutCancel(ctx), q)
	}

	if closed > 0 {
		w.log.Info().Int("closed", closed).Msg("Sweep finished")
	}
	return closed
}

// remove deletes the question, retrying transient failures. Nothing is
// published until the removal succeeds.
func (w *ClosingWorker) remove(ctx context.Context, id int64) (*model.Question, error) {
	var lastErr error
	for attempt := 1; attempt <= removeAttempts; attempt++ {
		q, err := w.store.Questions().Remove(ctx, id)
		if err == nil || errors.Is(err, repository.ErrNotFound) {
			return q, err
		}
		lastErr = err

		w.log.Warn().Err(err).Int64("id", id).Int("attempt", attempt).Msg("remove failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(w.backoff):
		}
	}
	return nil, fmt.Errorf("remove question %d after %d attempts: %w", id, removeAttempts, lastErr)
}

func (w *ClosingWorker) publishSafe(ctx context.Context, q *model.Question) {
	log := w.log.With().
		Str("question_id", q.QuestionID).
		Str("guild_id", q.GuildID).
		Str("thread_id", q.ThreadID).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("publisher panicked")
		}
	}()

	w.events.Emit(ctx, events.Event{
		Type:         events.TypeQuestionClosed,
		QuestionID:   q.QuestionID,
		GuildID:      q.GuildID,
		QuestionType: string(q.QuestionType),
		Responses:    q.ResponseCount(),
		ClosesAt:     q.ClosesAt,
	})

	if err := w.pub.Publish(ctx, q); err != nil {
		log.Error().Err(err).Int("responses", q.ResponseCount()).Msg("publish results failed; question is lost")
	}
}
