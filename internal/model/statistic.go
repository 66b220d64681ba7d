package model

import "time"

// Names of the counters kept in the statistics table.
const (
	StatisticQuestions = "questions"
	StatisticResponses = "responses"
)

// Statistic is a named counter stored as a string-encoded integer.
type Statistic struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
