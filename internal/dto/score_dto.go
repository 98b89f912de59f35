package dto

import (
	"time"

	"github.com/venturekit/accel-api/internal/models"
)

// ScoreSubmitRequest carries one evaluator's criterion scores for a submission.
type ScoreSubmitRequest struct {
	SubmissionID   uint             `json:"submission_id" validate:"required,gt=0"`
	StageID        uint             `json:"stage_id" validate:"required,gt=0"`
	CriteriaScores map[uint]float64 `json:"criteria_scores" validate:"required,min=1"`
	Notes          string           `json:"notes" validate:"omitempty,max=4000"`
}

// ScoreResponse is returned after a score is recorded or revised.
type ScoreResponse struct {
	ID             uint               `json:"id"`
	SubmissionID   uint               `json:"submission_id"`
	StageID        uint               `json:"stage_id"`
	EvaluatorID    uint               `json:"evaluator_id"`
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	WeightedTotal  float64            `json:"weighted_total"`
	Notes          string             `json:"notes"`
	ScoredAt       time.Time          `json:"scored_at"`
}

// NewScoreResponse converts a score record into its API representation.
func NewScoreResponse(record models.ScoreRecord) ScoreResponse {
	scores := make(map[string]float64, len(record.CriteriaScores))
	for key, value := range record.CriteriaScores {
		if score, ok := value.(float64); ok {
			scores[key] = score
		}
	}

	return ScoreResponse{
		ID:             record.ID,
		SubmissionID:   record.SubmissionID,
		StageID:        record.StageID,
		EvaluatorID:    record.EvaluatorID,
		CriteriaScores: scores,
		WeightedTotal:  record.WeightedTotal,
		Notes:          record.Notes,
		ScoredAt:       record.ScoredAt,
	}
}

// NewScoreResponses converts a batch of score records.
func NewScoreResponses(records []models.ScoreRecord) []ScoreResponse {
	responses := make([]ScoreResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewScoreResponse(record))
	}
	return responses
}
