package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/venturekit/accel-api/internal/dto"
	"github.com/venturekit/accel-api/internal/models"
	"github.com/venturekit/accel-api/internal/observability"
	"github.com/venturekit/accel-api/internal/repository"
)

// ErrMissingCriterionScore indicates a stage criterion has no entry in the
// submitted scores. The wrapped message names the criterion.
var ErrMissingCriterionScore = errors.New("missing criterion score")

// ErrUnknownCriterion indicates a submitted score references a criterion
// outside the stage's set.
var ErrUnknownCriterion = errors.New("unknown criterion")

// ErrScoreOutOfRange indicates a raw score lies outside the stage's range.
var ErrScoreOutOfRange = errors.New("score out of range")

// ErrZeroCriteriaWeight indicates the stage's criteria weights sum to zero,
// which is a configuration fault, not a zero score.
var ErrZeroCriteriaWeight = errors.New("criteria weights sum to zero")

// ErrStageHasNoCriteria indicates the stage was configured without criteria.
var ErrStageHasNoCriteria = errors.New("stage has no criteria")

// ErrDuplicateScore indicates the evaluator already scored this submission at
// this stage; revision requires the explicit revise operation.
var ErrDuplicateScore = errors.New("evaluator already scored this submission")

// ErrScoreNotFound indicates there is no prior score to revise.
var ErrScoreNotFound = errors.New("score not found")

// RankingInvalidator drops any live ranking computed before a score write.
type RankingInvalidator interface {
	InvalidateLive(ctx context.Context, competitionID uint) error
}

// ScoreActor identifies the pre-authorized evaluator performing a call.
type ScoreActor struct {
	EvaluatorID uint
}

// ScoreService is the score ledger: it validates and records one evaluator's
// criterion scores and keeps the submission's cached aggregate in step.
type ScoreService interface {
	Submit(ctx context.Context, payload dto.ScoreSubmitRequest, actor ScoreActor) (dto.ScoreResponse, error)
	Revise(ctx context.Context, payload dto.ScoreSubmitRequest, actor ScoreActor) (dto.ScoreResponse, error)
	ListForSubmission(ctx context.Context, submissionID, stageID uint) ([]dto.ScoreResponse, error)
}

type scoreService struct {
	scores      repository.ScoreRepository
	stages      repository.StageRepository
	submissions repository.SubmissionRepository
	aggregates  AggregateService
	rankings    RankingInvalidator
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewScoreService constructs the score ledger. The ranking invalidator may be
// nil when no live ranking cache is wired.
func NewScoreService(scores repository.ScoreRepository, stages repository.StageRepository, submissions repository.SubmissionRepository, aggregates AggregateService, rankings RankingInvalidator, validate *validator.Validate, logger zerolog.Logger) ScoreService {
	return &scoreService{
		scores:      scores,
		stages:      stages,
		submissions: submissions,
		aggregates:  aggregates,
		rankings:    rankings,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		logger:      logger.With().Str("component", "score_service").Logger(),
		now:         time.Now,
	}
}

func (s *scoreService) Submit(ctx context.Context, payload dto.ScoreSubmitRequest, actor ScoreActor) (dto.ScoreResponse, error) {
	return s.record(ctx, payload, actor, false)
}

func (s *scoreService) Revise(ctx context.Context, payload dto.ScoreSubmitRequest, actor ScoreActor) (dto.ScoreResponse, error) {
	return s.record(ctx, payload, actor, true)
}

func (s *scoreService) record(ctx context.Context, payload dto.ScoreSubmitRequest, actor ScoreActor, revise bool) (dto.ScoreResponse, error) {
	tracer := otel.Tracer("github.com/venturekit/accel-api/internal/service/score")
	operation := "score.submit"
	if revise {
		operation = "score.revise"
	}
	ctx, span := tracer.Start(ctx, operation)
	span.SetAttributes(
		attribute.Int64("score.submission_id", int64(payload.SubmissionID)),
		attribute.Int64("score.stage_id", int64(payload.StageID)),
		attribute.Int64("score.evaluator_id", int64(actor.EvaluatorID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.ScoreResponse{}, err
	}

	stage, err := s.stages.GetByID(ctx, payload.StageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "stage_not_found")
			return dto.ScoreResponse{}, ErrStageNotFound
		}
		return dto.ScoreResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.ScoreResponse{}, ErrSubmissionNotFound
		}
		return dto.ScoreResponse{}, err
	}

	total, err := weightedTotal(stage, payload.CriteriaScores)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "score_invalid")
		if errors.Is(err, ErrZeroCriteriaWeight) || errors.Is(err, ErrStageHasNoCriteria) {
			s.logger.Error().Err(err).Uint("stage_id", stage.ID).Msg("stage criteria misconfigured")
		}
		return dto.ScoreResponse{}, err
	}

	scores := make(datatypes.JSONMap, len(payload.CriteriaScores))
	for criterionID, raw := range payload.CriteriaScores {
		scores[models.CriterionKey(criterionID)] = raw
	}

	record := &models.ScoreRecord{
		SubmissionID:   payload.SubmissionID,
		StageID:        payload.StageID,
		EvaluatorID:    actor.EvaluatorID,
		CriteriaScores: scores,
		WeightedTotal:  total,
		Notes:          s.sanitizer.Sanitize(payload.Notes),
		ScoredAt:       s.now(),
	}

	var snapshot []models.ScoreRecord
	if revise {
		snapshot, err = s.scores.Replace(ctx, record)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "score_not_found")
			return dto.ScoreResponse{}, ErrScoreNotFound
		}
	} else {
		snapshot, err = s.scores.Submit(ctx, record)
		if errors.Is(err, repository.ErrDuplicateScore) {
			span.SetStatus(codes.Error, "duplicate_score")
			observability.ScoreConflicts().Inc()
			return dto.ScoreResponse{}, ErrDuplicateScore
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "score_write_failed")
		return dto.ScoreResponse{}, err
	}

	if _, err := s.aggregates.RefreshFromSnapshot(ctx, submission, stage, snapshot); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate_refresh_failed")
		return dto.ScoreResponse{}, err
	}

	if s.rankings != nil {
		if err := s.rankings.InvalidateLive(ctx, submission.CompetitionID); err != nil {
			s.logger.Warn().Err(err).Uint("competition_id", submission.CompetitionID).Msg("failed to invalidate live ranking")
			span.RecordError(err)
		}
	}

	observability.ScoresRecorded().WithLabelValues(operation).Inc()
	span.SetAttributes(attribute.Float64("score.weighted_total", total))

	return dto.NewScoreResponse(*record), nil
}

func (s *scoreService) ListForSubmission(ctx context.Context, submissionID, stageID uint) ([]dto.ScoreResponse, error) {
	records, err := s.scores.ListForSubmissionStage(ctx, submissionID, stageID)
	if err != nil {
		return nil, err
	}

	return dto.NewScoreResponses(records), nil
}

// weightedTotal reduces raw criterion scores to one weight-normalized total.
// Every stage criterion must be scored and every score must name a stage
// criterion; range checks apply only when the stage configures a range.
func weightedTotal(stage models.Stage, raw map[uint]float64) (float64, error) {
	if len(stage.Criteria) == 0 {
		return 0, ErrStageHasNoCriteria
	}

	known := make(map[uint]struct{}, len(stage.Criteria))
	var weightedSum, weightSum float64
	for _, criterion := range stage.Criteria {
		known[criterion.ID] = struct{}{}

		score, ok := raw[criterion.ID]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingCriterionScore, criterion.Name)
		}
		if stage.HasScoreRange() && (score < stage.ScoreMin || score > stage.ScoreMax) {
			return 0, fmt.Errorf("%w: %s got %.2f, want %.2f-%.2f", ErrScoreOutOfRange, criterion.Name, score, stage.ScoreMin, stage.ScoreMax)
		}

		weightedSum += score * criterion.Weight
		weightSum += criterion.Weight
	}

	for criterionID := range raw {
		if _, ok := known[criterionID]; !ok {
			return 0, fmt.Errorf("%w: id %d", ErrUnknownCriterion, criterionID)
		}
	}

	if weightSum == 0 {
		return 0, ErrZeroCriteriaWeight
	}

	return weightedSum / weightSum, nil
}
