package dto

import "time"

// Ranking modes accepted by the ranking endpoint.
const (
	// RankingModeLive recomputes on read and never persists.
	RankingModeLive = "live"
	// RankingModeFinal persists score and rank onto each submission.
	RankingModeFinal = "final"
)

// RankedSubmission is one row of a computed ranking.
type RankedSubmission struct {
	Rank           int       `json:"rank"`
	SubmissionID   uint      `json:"submission_id"`
	Title          string    `json:"title"`
	AggregateScore float64   `json:"aggregate_score"`
	EvaluatorCount int       `json:"evaluator_count"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// RankingResponse lists submissions in final order for a competition.
type RankingResponse struct {
	CompetitionID uint               `json:"competition_id"`
	StageID       uint               `json:"stage_id"`
	Mode          string             `json:"mode"`
	ComputedAt    time.Time          `json:"computed_at"`
	Entries       []RankedSubmission `json:"entries"`
}
