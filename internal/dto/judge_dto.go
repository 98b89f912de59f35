package dto

import (
	"time"

	"github.com/venturekit/accel-api/internal/models"
)

// JudgeAssignRequest binds an evaluator to a competition. Weight defaults to
// 1.0 when omitted and must be positive when supplied.
type JudgeAssignRequest struct {
	EvaluatorID   uint     `json:"evaluator_id" validate:"required,gt=0"`
	CompetitionID uint     `json:"competition_id" validate:"required,gt=0"`
	Weight        *float64 `json:"weight" validate:"omitempty,gt=0"`
}

// JudgeAssignmentResponse is the API view of a judge assignment.
type JudgeAssignmentResponse struct {
	ID            uint      `json:"id"`
	EvaluatorID   uint      `json:"evaluator_id"`
	CompetitionID uint      `json:"competition_id"`
	Weight        float64   `json:"weight"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewJudgeAssignmentResponse converts an assignment model.
func NewJudgeAssignmentResponse(assignment models.JudgeAssignment) JudgeAssignmentResponse {
	return JudgeAssignmentResponse{
		ID:            assignment.ID,
		EvaluatorID:   assignment.EvaluatorID,
		CompetitionID: assignment.CompetitionID,
		Weight:        assignment.Weight,
		CreatedAt:     assignment.CreatedAt,
	}
}

// NewJudgeAssignmentResponses converts a batch of assignments.
func NewJudgeAssignmentResponses(assignments []models.JudgeAssignment) []JudgeAssignmentResponse {
	responses := make([]JudgeAssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewJudgeAssignmentResponse(assignment))
	}
	return responses
}
