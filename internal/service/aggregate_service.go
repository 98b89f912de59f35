package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/venturekit/accel-api/internal/dto"
	"github.com/venturekit/accel-api/internal/models"
	"github.com/venturekit/accel-api/internal/observability"
	"github.com/venturekit/accel-api/internal/repository"
)

// ErrStageNotFound indicates the stage was not located.
var ErrStageNotFound = errors.New("stage not found")

// ErrSubmissionNotFound indicates the submission was not located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrJudgeNotAssigned indicates a demo-day score came from an evaluator with
// no judge assignment, so no weight exists for the reduction.
var ErrJudgeNotAssigned = errors.New("evaluator has no judge assignment")

// AggregateService reduces score records into per-submission aggregates with
// the evaluator-percentage and cutoff gates applied.
type AggregateService interface {
	Compute(ctx context.Context, submissionID, stageID uint) (dto.ScoreboardEntry, error)
	Scoreboard(ctx context.Context, stageID uint) (dto.StageScoreboard, error)
	RefreshFromSnapshot(ctx context.Context, submission models.Submission, stage models.Stage, records []models.ScoreRecord) (dto.ScoreboardEntry, error)
}

type aggregateService struct {
	scores      repository.ScoreRepository
	stages      repository.StageRepository
	submissions repository.SubmissionRepository
	judges      repository.JudgeRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAggregateService constructs the aggregate calculator.
func NewAggregateService(scores repository.ScoreRepository, stages repository.StageRepository, submissions repository.SubmissionRepository, judges repository.JudgeRepository, logger zerolog.Logger) AggregateService {
	return &aggregateService{
		scores:      scores,
		stages:      stages,
		submissions: submissions,
		judges:      judges,
		logger:      logger.With().Str("component", "aggregate_service").Logger(),
		now:         time.Now,
	}
}

// reductionInput carries the stage-wide facts every entry computation shares.
type reductionInput struct {
	stage             models.Stage
	weighted          bool
	judgeWeights      map[uint]float64
	totalEvaluators   int
	denominatorApprox bool
}

func (s *aggregateService) Compute(ctx context.Context, submissionID, stageID uint) (dto.ScoreboardEntry, error) {
	stage, err := s.stages.GetByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScoreboardEntry{}, ErrStageNotFound
		}
		return dto.ScoreboardEntry{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScoreboardEntry{}, ErrSubmissionNotFound
		}
		return dto.ScoreboardEntry{}, err
	}

	records, err := s.scores.ListForSubmissionStage(ctx, submissionID, stageID)
	if err != nil {
		return dto.ScoreboardEntry{}, err
	}

	input, err := s.reductionInput(ctx, stage)
	if err != nil {
		return dto.ScoreboardEntry{}, err
	}

	return computeEntry(submission, records, input)
}

func (s *aggregateService) Scoreboard(ctx context.Context, stageID uint) (dto.StageScoreboard, error) {
	tracer := otel.Tracer("github.com/venturekit/accel-api/internal/service/aggregate")
	ctx, span := tracer.Start(ctx, "aggregate.scoreboard")
	span.SetAttributes(attribute.Int64("scoreboard.stage_id", int64(stageID)))
	defer span.End()

	stage, err := s.stages.GetByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "stage_not_found")
			return dto.StageScoreboard{}, ErrStageNotFound
		}
		return dto.StageScoreboard{}, err
	}

	submissions, err := s.submissions.ListByCompetition(ctx, stage.CompetitionID)
	if err != nil {
		return dto.StageScoreboard{}, err
	}

	input, err := s.reductionInput(ctx, stage)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reduction_input_failed")
		return dto.StageScoreboard{}, err
	}

	recordsBySubmission := make(map[uint][]models.ScoreRecord)
	for _, submission := range submissions {
		records, listErr := s.scores.ListForSubmissionStage(ctx, submission.ID, stageID)
		if listErr != nil {
			return dto.StageScoreboard{}, listErr
		}
		recordsBySubmission[submission.ID] = records
	}

	board := dto.StageScoreboard{
		StageID:           stage.ID,
		CutoffScore:       stage.CutoffScore,
		RequiredPct:       stage.RequiredEvaluatorPct,
		DenominatorApprox: input.denominatorApprox,
		Entries:           make([]dto.ScoreboardEntry, 0, len(submissions)),
	}
	for _, submission := range submissions {
		entry, entryErr := computeEntry(submission, recordsBySubmission[submission.ID], input)
		if entryErr != nil {
			return dto.StageScoreboard{}, entryErr
		}
		board.Entries = append(board.Entries, entry)
	}

	span.SetAttributes(attribute.Int("scoreboard.entries", len(board.Entries)))
	return board, nil
}

// RefreshFromSnapshot recomputes one submission's aggregate from a snapshot
// the caller already holds and persists the cached score. The cache write is
// guarded by the snapshot's size, so a racing writer with an older snapshot
// cannot clobber the fresher value. Invalid aggregates clear the cache rather
// than leaving a stale value behind.
func (s *aggregateService) RefreshFromSnapshot(ctx context.Context, submission models.Submission, stage models.Stage, records []models.ScoreRecord) (dto.ScoreboardEntry, error) {
	start := s.now()

	input, err := s.reductionInput(ctx, stage)
	if err != nil {
		return dto.ScoreboardEntry{}, err
	}

	entry, err := computeEntry(submission, records, input)
	if err != nil {
		return dto.ScoreboardEntry{}, err
	}

	if err := s.submissions.UpdateAggregateCache(ctx, submission.ID, stage.ID, entry.AggregateScore, len(records)); err != nil {
		return dto.ScoreboardEntry{}, err
	}

	observability.AggregateRecomputeSeconds().Observe(s.now().Sub(start).Seconds())
	s.logger.Debug().
		Uint("submission_id", submission.ID).
		Uint("stage_id", stage.ID).
		Int("evaluator_count", entry.EvaluatorCount).
		Str("status", entry.Status).
		Msg("aggregate refreshed")

	return entry, nil
}

func (s *aggregateService) reductionInput(ctx context.Context, stage models.Stage) (reductionInput, error) {
	competition, err := s.stages.GetCompetition(ctx, stage.CompetitionID)
	if err != nil {
		return reductionInput{}, err
	}

	input := reductionInput{stage: stage, weighted: competition.IsDemoDay()}

	assignments, err := s.judges.ListByCompetition(ctx, stage.CompetitionID)
	if err != nil {
		return reductionInput{}, err
	}

	if len(assignments) > 0 {
		input.totalEvaluators = len(assignments)
		input.judgeWeights = make(map[uint]float64, len(assignments))
		for _, assignment := range assignments {
			input.judgeWeights[assignment.EvaluatorID] = assignment.Weight
		}
		return input, nil
	}

	// No assignment roster: fall back to counting everyone who has scored
	// anything in the stage. The scoreboard flags this weaker denominator.
	distinct, err := s.scores.DistinctEvaluatorCount(ctx, stage.ID)
	if err != nil {
		return reductionInput{}, err
	}
	input.totalEvaluators = int(distinct)
	input.denominatorApprox = true

	return input, nil
}

// computeEntry is the pure reduction: identical inputs always produce an
// identical entry, and nothing is mutated.
func computeEntry(submission models.Submission, records []models.ScoreRecord, input reductionInput) (dto.ScoreboardEntry, error) {
	entry := dto.ScoreboardEntry{
		SubmissionID:    submission.ID,
		Title:           submission.Title,
		SubmittedAt:     submission.SubmittedAt,
		EvaluatorCount:  len(records),
		TotalEvaluators: input.totalEvaluators,
		Status:          dto.ScoreboardStatusPending,
	}

	if input.totalEvaluators > 0 {
		entry.EvaluatorPercentage = float64(entry.EvaluatorCount) / float64(input.totalEvaluators) * 100
		entry.MeetsEvaluatorRequirement = entry.EvaluatorPercentage >= input.stage.RequiredEvaluatorPct
	}

	if len(records) == 0 {
		entry.MeetsCutoff = !input.stage.HasCutoff()
		return entry, nil
	}

	mean, err := reduceWeightedTotals(records, input)
	if err != nil {
		return dto.ScoreboardEntry{}, err
	}

	entry.MeetsCutoff = !input.stage.HasCutoff() || mean >= input.stage.CutoffScore
	entry.Passed = entry.MeetsEvaluatorRequirement && entry.MeetsCutoff

	if !entry.MeetsEvaluatorRequirement {
		// The mean exists internally but the submission is not yet
		// comparable to others, so callers see no aggregate at all.
		return entry, nil
	}

	score := mean
	entry.AggregateScore = &score
	if entry.Passed {
		entry.Status = dto.ScoreboardStatusPassed
	} else {
		entry.Status = dto.ScoreboardStatusFailed
	}

	return entry, nil
}

func reduceWeightedTotals(records []models.ScoreRecord, input reductionInput) (float64, error) {
	if !input.weighted {
		var sum float64
		for _, record := range records {
			sum += record.WeightedTotal
		}
		return sum / float64(len(records)), nil
	}

	var weightedSum, weightSum float64
	for _, record := range records {
		weight, ok := input.judgeWeights[record.EvaluatorID]
		if !ok {
			return 0, ErrJudgeNotAssigned
		}
		weightedSum += record.WeightedTotal * weight
		weightSum += weight
	}

	return weightedSum / weightSum, nil
}
