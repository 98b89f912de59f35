package models

import "time"

// Submission represents one competitive entry under evaluation.
type Submission struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	CompetitionID  uint        `gorm:"not null;index" json:"competition_id"`
	OwnerID        uint        `gorm:"not null" json:"owner_id"`
	Title          string      `gorm:"size:255;not null" json:"title"`
	Description    string      `gorm:"type:text" json:"description"`
	CurrentStage   *int        `json:"current_stage"`
	Status         string      `gorm:"size:32;not null" json:"status"`
	SubmittedAt    time.Time   `gorm:"not null" json:"submitted_at"`
	AggregateScore *float64    `json:"aggregate_score"`
	Rank           *int        `json:"rank"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Competition    Competition `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

const (
	// SubmissionStatusPending indicates the submission is still moving through stages.
	SubmissionStatusPending = "pending"
	// SubmissionStatusAccepted indicates the submission was admitted to the programme.
	SubmissionStatusAccepted = "accepted"
	// SubmissionStatusRejected indicates the submission was turned down.
	SubmissionStatusRejected = "rejected"
)

// IsTerminal reports whether the submission has left the stage pipeline.
func (s Submission) IsTerminal() bool {
	return s.Status == SubmissionStatusAccepted || s.Status == SubmissionStatusRejected
}
