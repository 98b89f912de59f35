package models

import (
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// ScoreRecord holds one evaluator's scoring of one submission at one stage.
// The (submission, stage, evaluator) triple is unique; the database index is
// the authority, application code never check-then-acts around it.
type ScoreRecord struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	SubmissionID   uint              `gorm:"not null;uniqueIndex:idx_score_submission_stage_evaluator" json:"submission_id"`
	StageID        uint              `gorm:"not null;uniqueIndex:idx_score_submission_stage_evaluator;index" json:"stage_id"`
	EvaluatorID    uint              `gorm:"not null;uniqueIndex:idx_score_submission_stage_evaluator" json:"evaluator_id"`
	CriteriaScores datatypes.JSONMap `gorm:"type:json" json:"criteria_scores"`
	WeightedTotal  float64           `gorm:"not null" json:"weighted_total"`
	Notes          string            `gorm:"type:text" json:"notes"`
	ScoredAt       time.Time         `gorm:"not null" json:"scored_at"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// CriterionScore returns the raw score recorded for a criterion id.
func (r ScoreRecord) CriterionScore(criterionID uint) (float64, bool) {
	value, ok := r.CriteriaScores[CriterionKey(criterionID)]
	if !ok {
		return 0, false
	}
	score, ok := value.(float64)
	return score, ok
}

// CriterionKey converts a criterion id into the JSON map key used for raw scores.
func CriterionKey(criterionID uint) string {
	return strconv.FormatUint(uint64(criterionID), 10)
}
