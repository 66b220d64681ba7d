package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/anonq-bot/internal/model"
)

const questionColumns = `id, question_id, question_type, prompt, COALESCE(thread_name, ''), choices,
	closes_at, asker_id, guild_id, channel_id, thread_id, start_message_id,
	responses, responders, created_at, updated_at`

// QuestionRepository handles question data access.
type QuestionRepository struct {
	db DBTX
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(db DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// ListActiveQuestionIDs returns the public ids of all open questions.
func (r *QuestionRepository) ListActiveQuestionIDs(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT question_id FROM questions WHERE closes_at > $1`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	var choices []byte
	if q.QuestionType == model.QuestionTypeMultipleChoice {
		var err error
		if choices, err = json.Marshal(q.Choices); err != nil {
			return fmt.Errorf("encode choices: %w", err)
		}
	}
	responses, responders, err := encodeResponses(q)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx,
		`INSERT INTO questions (question_id, question_type, prompt, thread_name, choices, closes_at,
			asker_id, guild_id, channel_id, thread_id, start_message_id, responses, responders)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		q.QuestionID, q.QuestionType, q.Prompt, q.ThreadName, choices, q.ClosesAt,
		q.AskerID, q.GuildID, q.ChannelID, q.ThreadID, q.StartMessageID, responses, responders,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// FindActiveForUpdate row-locks the open question with the given public id
// for the rest of the surrounding transaction.
func (r *QuestionRepository) FindActiveForUpdate(ctx context.Context, questionID string, now time.Time) (*model.Question, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE question_id = $1 AND closes_at > $2
		 ORDER BY id
		 LIMIT 1
		 FOR UPDATE`, questionID, now)
	return scanQuestion(row)
}

// UpdateResponses persists the responses and responders arrays.
func (r *QuestionRepository) UpdateResponses(ctx context.Context, q *model.Question) error {
	responses, responders, err := encodeResponses(q)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE questions SET responses = $1, responders = $2, updated_at = NOW() WHERE id = $3`,
		responses, responders, q.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListExpiredIDs returns ids of questions whose closing time has passed, oldest first.
func (r *QuestionRepository) ListExpiredIDs(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM questions WHERE closes_at <= $1 ORDER BY closes_at, id`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Remove deletes a question and returns its final state.
func (r *QuestionRepository) Remove(ctx context.Context, id int64) (*model.Question, error) {
	row := r.db.QueryRow(ctx,
		`DELETE FROM questions WHERE id = $1 RETURNING `+questionColumns, id)
	return scanQuestion(row)
}

// RemoveAll deletes every question and reports how many were removed.
func (r *QuestionRepository) RemoveAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM questions`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountActive counts questions still accepting responses.
func (r *QuestionRepository) CountActive(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE closes_at > $1`, now).Scan(&n)
	return n, err
}

func scanQuestion(row pgx.Row) (*model.Question, error) {
	var (
		q                               model.Question
		choices, responses, responders []byte
	)
	err := row.Scan(
		&q.ID, &q.QuestionID, &q.QuestionType, &q.Prompt, &q.ThreadName, &choices,
		&q.ClosesAt, &q.AskerID, &q.GuildID, &q.ChannelID, &q.ThreadID, &q.StartMessageID,
		&responses, &responders, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(choices) > 0 {
		if err := json.Unmarshal(choices, &q.Choices); err != nil {
			return nil, fmt.Errorf("decode choices: %w", err)
		}
	}
	if err := json.Unmarshal(responses, &q.Responses); err != nil {
		return nil, fmt.Errorf("decode responses: %w", err)
	}
	if err := json.Unmarshal(responders, &q.Responders); err != nil {
		return nil, fmt.Errorf("decode responders: %w", err)
	}
	return &q, nil
}

func encodeResponses(q *model.Question) ([]byte, []byte, error) {
	if len(q.Responses) != len(q.Responders) {
		return nil, nil, fmt.Errorf("responses/responders length mismatch: %d != %d",
			len(q.Responses), len(q.Responders))
	}
	responses, err := json.Marshal(nonNil(q.Responses))
	if err != nil {
		return nil, nil, fmt.Errorf("encode responses: %w", err)
	}
	responders, err := json.Marshal(nonNil(q.Responders))
	if err != nil {
		return nil, nil, fmt.Errorf("encode responders: %w", err)
	}
	return responses, responders, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
