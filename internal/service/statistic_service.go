package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/model"
	"github.com/stemsi/anonq-bot/internal/repository"
)

type StatisticService struct {
	store repository.Store
	log   zerolog.Logger
}

func NewStatisticService(store repository.Store, log zerolog.Logger) *StatisticService {
	return &StatisticService{
		store: store,
		log:   log.With().Str("component", "statistic_service").Logger(),
	}
}

// EnsureDefaults creates the questions and responses counters at "0" if absent.
func (s *StatisticService) EnsureDefaults(ctx context.Context) error {
	for _, name := range []string{model.StatisticQuestions, model.StatisticResponses} {
		if err := s.store.Statistics().Ensure(ctx, name, "0"); err != nil {
			s.log.Error().Err(err).Str("name", name).Msg("failed to ensure statistic")
			return fmt.Errorf("ensure statistic %q: %w", name, err)
		}
	}
	return nil
}

// Snapshot returns every counter parsed to an integer.
func (s *StatisticService) Snapshot(ctx context.Context) (map[string]int64, error) {
	stats, err := s.store.Statistics().List(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(stats))
	for _, st := range stats {
		n, err := strconv.ParseInt(st.Value, 10, 64)
		if err != nil {
			s.log.Warn().Str("name", st.Name).Str("value", st.Value).Msg("non-integer statistic")
			continue
		}
		out[st.Name] = n
	}
	return out, nil
}
