package models

import "time"

// Competition represents one evaluation programme, either a staged
// accelerator application round or a single demo-day judging round.
type Competition struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Kind      string    `gorm:"size:32;not null" json:"kind"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Stages    []Stage   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"stages"`
}

const (
	// CompetitionKindApplication marks a multi-stage accelerator application round.
	CompetitionKindApplication = "application"
	// CompetitionKindDemoDay marks a single-stage demo-day judging round.
	CompetitionKindDemoDay = "demo_day"
)

// IsDemoDay reports whether aggregate reduction should apply judge weights.
func (c Competition) IsDemoDay() bool {
	return c.Kind == CompetitionKindDemoDay
}
