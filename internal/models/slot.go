package models

import "time"

// InterviewSlot is a bookable interview time-block. A slot binds to at most
// one submission and a submission holds at most one slot per stage; both
// constraints are enforced by the store, not by application reads.
type InterviewSlot struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StageID      uint      `gorm:"not null;index;uniqueIndex:idx_slot_stage_submission" json:"stage_id"`
	Date         time.Time `gorm:"not null" json:"date"`
	StartTime    string    `gorm:"size:16;not null" json:"start_time"`
	EndTime      string    `gorm:"size:16;not null" json:"end_time"`
	MeetingURL   string    `gorm:"size:512" json:"meeting_url"`
	SubmissionID *uint     `gorm:"uniqueIndex:idx_slot_stage_submission" json:"submission_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsBooked reports whether the slot is already bound to a submission.
func (s InterviewSlot) IsBooked() bool {
	return s.SubmissionID != nil
}
