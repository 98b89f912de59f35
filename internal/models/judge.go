package models

import "time"

// JudgeAssignment binds an evaluator to a competition with an explicit weight
// multiplier used by demo-day aggregate reduction. Weight is validated at
// assignment time; the reduction never falls back to an implicit default.
type JudgeAssignment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EvaluatorID   uint      `gorm:"not null;uniqueIndex:idx_judge_evaluator_competition" json:"evaluator_id"`
	CompetitionID uint      `gorm:"not null;uniqueIndex:idx_judge_evaluator_competition;index" json:"competition_id"`
	Weight        float64   `gorm:"not null" json:"weight"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
