package dto

// AdvanceRequest moves a batch of submissions between stages. The engine does
// not check that the submissions passed the source stage; administrators are
// expected to have filtered the batch from the scoreboard.
type AdvanceRequest struct {
	SubmissionIDs []uint `json:"submission_ids" validate:"required,min=1,dive,gt=0"`
	FromStage     int    `json:"from_stage" validate:"required,gt=0"`
	ToStage       int    `json:"to_stage" validate:"required,gt=0,nefield=FromStage"`
}

// DecisionRequest admits or rejects a batch of submissions terminally.
type DecisionRequest struct {
	SubmissionIDs []uint `json:"submission_ids" validate:"required,min=1,dive,gt=0"`
}

// BatchResult reports how many submissions a batch transition actually touched.
type BatchResult struct {
	Affected int64 `json:"affected"`
}
