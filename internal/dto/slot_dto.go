package dto

import (
	"time"

	"github.com/venturekit/accel-api/internal/models"
)

// SlotSpec describes one interview slot to generate.
type SlotSpec struct {
	Date      time.Time `json:"date" validate:"required"`
	StartTime string    `json:"start_time" validate:"required,len=5"`
	EndTime   string    `json:"end_time" validate:"required,len=5"`
}

// SlotGenerateRequest bulk-creates interview slots for a stage.
type SlotGenerateRequest struct {
	StageID uint       `json:"stage_id" validate:"required,gt=0"`
	Slots   []SlotSpec `json:"slots" validate:"required,min=1,dive"`
}

// SlotBookRequest binds a submission to a free slot.
type SlotBookRequest struct {
	SubmissionID uint `json:"submission_id" validate:"required,gt=0"`
	SlotID       uint `json:"slot_id" validate:"required,gt=0"`
}

// SlotResponse is the API view of an interview slot.
type SlotResponse struct {
	ID           uint      `json:"id"`
	StageID      uint      `json:"stage_id"`
	Date         time.Time `json:"date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	MeetingURL   string    `json:"meeting_url"`
	SubmissionID *uint     `json:"submission_id"`
	IsBooked     bool      `json:"is_booked"`
}

// NewSlotResponse converts a slot model into its API representation.
func NewSlotResponse(slot models.InterviewSlot) SlotResponse {
	return SlotResponse{
		ID:           slot.ID,
		StageID:      slot.StageID,
		Date:         slot.Date,
		StartTime:    slot.StartTime,
		EndTime:      slot.EndTime,
		MeetingURL:   slot.MeetingURL,
		SubmissionID: slot.SubmissionID,
		IsBooked:     slot.IsBooked(),
	}
}

// NewSlotResponses converts a batch of slots.
func NewSlotResponses(slots []models.InterviewSlot) []SlotResponse {
	responses := make([]SlotResponse, 0, len(slots))
	for _, slot := range slots {
		responses = append(responses, NewSlotResponse(slot))
	}
	return responses
}
