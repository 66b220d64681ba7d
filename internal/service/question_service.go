package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/events"
	"github.com/stemsi/anonq-bot/internal/idgen"
	"github.com/stemsi/anonq-bot/internal/model"
	"github.com/stemsi/anonq-bot/internal/repository"
)

// MemberChecker resolves whether a user currently belongs to a guild.
type MemberChecker interface {
	IsGuildMember(ctx context.Context, guildID, userID string) (bool, error)
}

// ContentCleaner rewrites platform mention markup into readable text.
type ContentCleaner interface {
	CleanContent(guildID, content string) string
}

// IDAllocator hands out public question ids not present in the active set.
type IDAllocator interface {
	Allocate(existing map[string]struct{}) (string, error)
}

// AcceptedResponse is what a responder is told after a successful submission.
type AcceptedResponse struct {
	QuestionID   string
	QuestionType model.QuestionType
	ClosesAt     time.Time
	// Choice is the chosen option text for multiple-choice questions.
	Choice string
}

// QuestionService owns the question lifecycle: creation and anonymized response collection.
type QuestionService struct {
	store   repository.Store
	ids     IDAllocator
	members MemberChecker
	cleaner ContentCleaner
	events  events.Emitter
	log     zerolog.Logger

	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

// NewQuestionService creates a new QuestionService. cleaner may be nil.
func NewQuestionService(
	store repository.Store,
	ids IDAllocator,
	members MemberChecker,
	cleaner ContentCleaner,
	emitter events.Emitter,
	log zerolog.Logger,
) *QuestionService {
	if emitter == nil {
		emitter = events.Nop{}
	}
	return &QuestionService{
		store:   store,
		ids:     ids,
		members: members,
		cleaner: cleaner,
		events:  emitter,
		log:     log.With().Str("component", "question_service").Logger(),
		now:     time.Now,
		shuffle: rand.Shuffle,
	}
}

// Prepare validates an ask request and allocates its public id. Nothing is
// persisted; call Create once the platform thread exists.
func (s *QuestionService) Prepare(ctx context.Context, req model.AskRequest) (*model.Question, error) {
	timeout, ok := model.ParseTimeout(req.Timeout)
	if !ok {
		return nil, invalid(KindInvalidTimeout, "%q", req.Timeout)
	}

	var clean func(string) string
	if s.cleaner != nil {
		clean = func(content string) string { return s.cleaner.CleanContent(req.GuildID, content) }
	}

	nq, err := ValidateCreation(req.Type, req.Question, req.Choices, req.ThreadName, clean)
	if err != nil {
		return nil, err
	}

	now := s.now()
	questionID, err := s.allocateID(ctx, now)
	if err != nil {
		return nil, err
	}

	return &model.Question{
		QuestionID:   questionID,
		QuestionType: nq.Type,
		Prompt:       nq.Prompt,
		ThreadName:   nq.ThreadName,
		Choices:      nq.Choices,
		ClosesAt:     now.Add(timeout),
		AskerID:      req.AskerID,
		GuildID:      req.GuildID,
		ChannelID:    req.ChannelID,
		Responses:    []string{},
		Responders:   []string{},
	}, nil
}

func (s *QuestionService) allocateID(ctx context.Context, now time.Time) (string, error) {
	active, err := s.store.Questions().ListActiveQuestionIDs(ctx, now)
	if err != nil {
		return "", fmt.Errorf("list active question ids: %w", err)
	}

	existing := make(map[string]struct{}, len(active))
	for _, id := range active {
		existing[id] = struct{}{}
	}

	id, err := s.ids.Allocate(existing)
	if err != nil {
		return "", fmt.Errorf("allocate question id: %w", err)
	}
	return id, nil
}

// Create persists a prepared question and bumps the questions counter in the same transaction.
func (s *QuestionService) Create(ctx context.Context, q *model.Question) error {
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.Questions().Create(ctx, q); err != nil {
			return fmt.Errorf("create question: %w", err)
		}
		if _, err := uow.Statistics().Increment(ctx, model.StatisticQuestions); err != nil {
			return fmt.Errorf("increment questions statistic: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("question_id", q.QuestionID).
		Str("type", string(q.QuestionType)).
		Str("guild_id", q.GuildID).
		Str("thread_id", q.ThreadID).
		Time("closes_at", q.ClosesAt).
		Msg("Question created")

	s.events.Emit(ctx, events.Event{
		Type:         events.TypeQuestionCreated,
		QuestionID:   q.QuestionID,
		GuildID:      q.GuildID,
		QuestionType: string(q.QuestionType),
		ClosesAt:     q.ClosesAt,
	})
	return nil
}

// Respond records one anonymized response. Checks run in order: question is
// open, responder has not answered, responder is a guild member, response is valid.
// The whole check-and-append is one transaction holding the question's row lock.
func (s *QuestionService) Respond(ctx context.Context, req model.RespondRequest) (*AcceptedResponse, error) {
	questionID := strings.ToLower(strings.TrimSpace(req.QuestionID))
	now := s.now()

	var accepted *AcceptedResponse
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		q, err := uow.Questions().FindActiveForUpdate(ctx, questionID, now)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrQuestionNotFound
			}
			return fmt.Errorf("find question: %w", err)
		}
		if !q.IsActive(now) {
			return ErrQuestionClosed
		}
		if q.HasResponded(req.UserID) {
			return ErrDuplicateResponse
		}

		member, err := s.members.IsGuildMember(ctx, q.GuildID, req.UserID)
		if err != nil {
			return fmt.Errorf("check guild membership: %w", err)
		}
		if !member {
			return ErrNotAGuildMember
		}

		resp, err := ValidateResponse(q, req.Response)
		if err != nil {
			return err
		}

		AppendAnonymized(q, resp.Value, req.UserID, s.shuffle)

		if err := uow.Questions().UpdateResponses(ctx, q); err != nil {
			return fmt.Errorf("update responses: %w", err)
		}
		if _, err := uow.Statistics().Increment(ctx, model.StatisticResponses); err != nil {
			return fmt.Errorf("increment responses statistic: %w", err)
		}

		accepted = &AcceptedResponse{
			QuestionID:   q.QuestionID,
			QuestionType: q.QuestionType,
			ClosesAt:     q.ClosesAt,
		}
		if resp.ChoiceIndex >= 0 {
			accepted.Choice = q.Choices[resp.ChoiceIndex]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("question_id", accepted.QuestionID).Msg("Response recorded")
	return accepted, nil
}

// AppendAnonymized appends the pair, then shuffles responses and responders
// with two independent permutations so positions no longer pair them up.
func AppendAnonymized(q *model.Question, response, responder string, shuffle func(n int, swap func(i, j int))) {
	q.Responses = append(q.Responses, response)
	q.Responders = append(q.Responders, responder)

	shuffle(len(q.Responses), func(i, j int) {
		q.Responses[i], q.Responses[j] = q.Responses[j], q.Responses[i]
	})
	shuffle(len(q.Responders), func(i, j int) {
		q.Responders[i], q.Responders[j] = q.Responders[j], q.Responders[i]
	})
}

// ClearAll removes every stored question without publishing anything.
func (s *QuestionService) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.store.Questions().RemoveAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("remove all questions: %w", err)
	}
	s.log.Warn().Int64("count", n).Msg("Cleared all questions")
	return n, nil
}

// ActiveCount returns how many questions are currently open.
func (s *QuestionService) ActiveCount(ctx context.Context) (int, error) {
	return s.store.Questions().CountActive(ctx, s.now())
}

// idgen.Generator is the production allocator.
var _ IDAllocator = (*idgen.Generator)(nil)
