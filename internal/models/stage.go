package models

import "time"

// Stage represents one scored phase of a competition.
type Stage struct {
	ID                   uint        `gorm:"primaryKey" json:"id"`
	CompetitionID        uint        `gorm:"not null;index" json:"competition_id"`
	Number               int         `gorm:"not null" json:"number"`
	Kind                 string      `gorm:"size:32" json:"kind"`
	IsActive             bool        `gorm:"not null;default:true" json:"is_active"`
	CutoffScore          float64     `gorm:"not null;default:0" json:"cutoff_score"`
	RequiredEvaluatorPct float64     `gorm:"not null;default:75" json:"required_evaluator_pct"`
	ScoreMin             float64     `gorm:"not null;default:0" json:"score_min"`
	ScoreMax             float64     `gorm:"not null;default:0" json:"score_max"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
	Criteria             []Criterion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"criteria"`
}

// HasCutoff reports whether a minimum aggregate is required to pass the stage.
func (s Stage) HasCutoff() bool {
	return s.CutoffScore > 0
}

// HasScoreRange reports whether raw criterion scores are range-checked.
func (s Stage) HasScoreRange() bool {
	return s.ScoreMax > s.ScoreMin
}

// Criterion is a named, weighted scoring dimension within a stage.
type Criterion struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StageID    uint      `gorm:"not null;index" json:"stage_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Weight     float64   `gorm:"not null" json:"weight"`
	OrderIndex int       `gorm:"not null;default:0" json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
