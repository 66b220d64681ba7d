package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/stemsi/anonq-bot/internal/model"
)

// MemoryStore is a process-local Store for development without PostgreSQL
// and for tests. InTx holds a single lock, so transactions are serialized,
// and rolls back by restoring a snapshot when fn fails.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	nextID    int64
	questions map[int64]*model.Question
	stats     map[string]model.Statistic
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{
		questions: make(map[int64]*model.Question),
		stats:     make(map[string]model.Statistic),
	}}
}

func (s *MemoryStore) Questions() QuestionStore   { return &memoryQuestions{store: s, lock: true} }
func (s *MemoryStore) Statistics() StatisticStore { return &memoryStatistics{store: s, lock: true} }

// InTx runs fn while holding the store lock.
func (s *MemoryStore) InTx(ctx context.Context, fn func(uow UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.state.clone()
	if err := fn(memoryUnit{store: s}); err != nil {
		s.state = backup
		return err
	}
	return nil
}

// Snapshot returns a copy of the stored question with the given storage id.
func (s *MemoryStore) Snapshot(id int64) (*model.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.state.questions[id]
	if !ok {
		return nil, false
	}
	return cloneQuestion(q), true
}

type memoryUnit struct {
	store *MemoryStore
}

func (u memoryUnit) Questions() QuestionStore   { return &memoryQuestions{store: u.store} }
func (u memoryUnit) Statistics() StatisticStore { return &memoryStatistics{store: u.store} }

func (st memoryState) clone() memoryState {
	out := memoryState{
		nextID:    st.nextID,
		questions: make(map[int64]*model.Question, len(st.questions)),
		stats:     make(map[string]model.Statistic, len(st.stats)),
	}
	for id, q := range st.questions {
		out.questions[id] = cloneQuestion(q)
	}
	for name, v := range st.stats {
		out.stats[name] = v
	}
	return out
}

func cloneQuestion(q *model.Question) *model.Question {
	c := *q
	c.Choices = slices.Clone(q.Choices)
	c.Responses = slices.Clone(q.Responses)
	c.Responders = slices.Clone(q.Responders)
	return &c
}

// acquire locks the store unless the caller already holds it inside InTx.
func acquire(s *MemoryStore, lock bool) func() {
	if !lock {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type memoryQuestions struct {
	store *MemoryStore
	lock  bool
}

func (r *memoryQuestions) ListActiveQuestionIDs(ctx context.Context, now time.Time) ([]string, error) {
	defer acquire(r.store, r.lock)()

	var ids []string
	for _, q := range r.store.state.questions {
		if q.IsActive(now) {
			ids = append(ids, q.QuestionID)
		}
	}
	return ids, nil
}

func (r *memoryQuestions) Create(ctx context.Context, q *model.Question) error {
	defer acquire(r.store, r.lock)()

	st := &r.store.state
	st.nextID++
	q.ID = st.nextID
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	if q.Responses == nil {
		q.Responses = []string{}
	}
	if q.Responders == nil {
		q.Responders = []string{}
	}
	st.questions[q.ID] = cloneQuestion(q)
	return nil
}

func (r *memoryQuestions) FindActiveForUpdate(ctx context.Context, questionID string, now time.Time) (*model.Question, error) {
	defer acquire(r.store, r.lock)()

	var found *model.Question
	for _, q := range r.store.state.questions {
		if q.QuestionID == questionID && q.IsActive(now) && (found == nil || q.ID < found.ID) {
			found = q
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return cloneQuestion(found), nil
}

func (r *memoryQuestions) UpdateResponses(ctx context.Context, q *model.Question) error {
	defer acquire(r.store, r.lock)()

	if len(q.Responses) != len(q.Responders) {
		return fmt.Errorf("responses/responders length mismatch: %d != %d",
			len(q.Responses), len(q.Responders))
	}
	stored, ok := r.store.state.questions[q.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Responses = slices.Clone(q.Responses)
	stored.Responders = slices.Clone(q.Responders)
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *memoryQuestions) ListExpiredIDs(ctx context.Context, now time.Time) ([]int64, error) {
	defer acquire(r.store, r.lock)()

	var expired []*model.Question
	for _, q := range r.store.state.questions {
		if !q.IsActive(now) {
			expired = append(expired, q)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		if expired[i].ClosesAt.Equal(expired[j].ClosesAt) {
			return expired[i].ID < expired[j].ID
		}
		return expired[i].ClosesAt.Before(expired[j].ClosesAt)
	})

	ids := make([]int64, len(expired))
	for i, q := range expired {
		ids[i] = q.ID
	}
	return ids, nil
}

func (r *memoryQuestions) Remove(ctx context.Context, id int64) (*model.Question, error) {
	defer acquire(r.store, r.lock)()

	q, ok := r.store.state.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.store.state.questions, id)
	return q, nil
}

func (r *memoryQuestions) RemoveAll(ctx context.Context) (int64, error) {
	defer acquire(r.store, r.lock)()

	n := int64(len(r.store.state.questions))
	r.store.state.questions = make(map[int64]*model.Question)
	return n, nil
}

func (r *memoryQuestions) CountActive(ctx context.Context, now time.Time) (int, error) {
	defer acquire(r.store, r.lock)()

	n := 0
	for _, q := range r.store.state.questions {
		if q.IsActive(now) {
			n++
		}
	}
	return n, nil
}

type memoryStatistics struct {
	store *MemoryStore
	lock  bool
}

func (r *memoryStatistics) Ensure(ctx context.Context, name, initial string) error {
	defer acquire(r.store, r.lock)()

	if _, ok := r.store.state.stats[name]; !ok {
		r.store.state.stats[name] = model.Statistic{Name: name, Value: initial, UpdatedAt: time.Now()}
	}
	return nil
}

func (r *memoryStatistics) Increment(ctx context.Context, name string) (int64, error) {
	defer acquire(r.store, r.lock)()

	st, ok := r.store.state.stats[name]
	if !ok {
		return 0, fmt.Errorf("statistic %q: %w", name, ErrNotFound)
	}
	n, err := strconv.ParseInt(st.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("statistic %q holds non-integer %q: %w", name, st.Value, err)
	}
	n++
	st.Value = strconv.FormatInt(n, 10)
	st.UpdatedAt = time.Now()
	r.store.state.stats[name] = st
	return n, nil
}

func (r *memoryStatistics) List(ctx context.Context) ([]model.Statistic, error) {
	defer acquire(r.store, r.lock)()

	out := make([]model.Statistic, 0, len(r.store.state.stats))
	for _, st := range r.store.state.stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
