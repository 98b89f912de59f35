package dto

import "time"

// Scoreboard statuses reported per submission and stage.
const (
	// ScoreboardStatusPending means too few evaluators have scored yet.
	ScoreboardStatusPending = "pending"
	// ScoreboardStatusPassed means the evaluator requirement and cutoff both hold.
	ScoreboardStatusPassed = "passed"
	// ScoreboardStatusFailed means enough evaluators scored but the cutoff did not hold.
	ScoreboardStatusFailed = "failed"
)

// ScoreboardEntry is the aggregate view of one submission at one stage.
// AggregateScore is nil until the evaluator requirement is met; the raw mean
// is never exposed on too few opinions.
type ScoreboardEntry struct {
	SubmissionID              uint      `json:"submission_id"`
	Title                     string    `json:"title"`
	SubmittedAt               time.Time `json:"submitted_at"`
	AggregateScore            *float64  `json:"aggregate_score"`
	EvaluatorCount            int       `json:"evaluator_count"`
	TotalEvaluators           int       `json:"total_evaluators"`
	EvaluatorPercentage       float64   `json:"evaluator_percentage"`
	MeetsEvaluatorRequirement bool      `json:"meets_evaluator_requirement"`
	MeetsCutoff               bool      `json:"meets_cutoff"`
	Passed                    bool      `json:"passed"`
	Status                    string    `json:"status"`
}

// StageScoreboard lists aggregate entries for every submission in a stage.
type StageScoreboard struct {
	StageID           uint              `json:"stage_id"`
	CutoffScore       float64           `json:"cutoff_score"`
	RequiredPct       float64           `json:"required_evaluator_pct"`
	DenominatorApprox bool              `json:"denominator_approx"`
	Entries           []ScoreboardEntry `json:"entries"`
}
