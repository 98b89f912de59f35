package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/venturekit/accel-api/internal/dto"
	"github.com/venturekit/accel-api/internal/models"
	"github.com/venturekit/accel-api/internal/repository"
)

// AdminActor identifies the pre-authorized administrator performing a call.
type AdminActor struct {
	ID uint
}

// ProgressionService applies explicit administrator stage transitions. It
// never moves a submission on its own: a passing aggregate changes nothing
// until an administrator acts on it.
type ProgressionService interface {
	Advance(ctx context.Context, payload dto.AdvanceRequest, actor AdminActor) (dto.BatchResult, error)
	Admit(ctx context.Context, payload dto.DecisionRequest, actor AdminActor) (dto.BatchResult, error)
	Reject(ctx context.Context, payload dto.DecisionRequest, actor AdminActor) (dto.BatchResult, error)
}

type progressionService struct {
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProgressionService constructs the stage progression service.
func NewProgressionService(submissions repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger) ProgressionService {
	return &progressionService{
		submissions: submissions,
		validator:   validate,
		logger:      logger.With().Str("component", "progression_service").Logger(),
		now:         time.Now,
	}
}

func (s *progressionService) Advance(ctx context.Context, payload dto.AdvanceRequest, actor AdminActor) (dto.BatchResult, error) {
	tracer := otel.Tracer("github.com/venturekit/accel-api/internal/service/progression")
	ctx, span := tracer.Start(ctx, "progression.advance")
	span.SetAttributes(
		attribute.Int("progression.batch_size", len(payload.SubmissionIDs)),
		attribute.Int("progression.from_stage", payload.FromStage),
		attribute.Int("progression.to_stage", payload.ToStage),
		attribute.Int64("progression.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.BatchResult{}, err
	}

	affected, err := s.submissions.AdvanceStage(ctx, payload.SubmissionIDs, payload.FromStage, payload.ToStage)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "advance_failed")
		return dto.BatchResult{Affected: affected}, err
	}

	s.logger.Info().
		Uint("actor_id", actor.ID).
		Int("from_stage", payload.FromStage).
		Int("to_stage", payload.ToStage).
		Int("requested", len(payload.SubmissionIDs)).
		Int64("affected", affected).
		Msg("submissions advanced")
	span.SetAttributes(attribute.Int64("progression.affected", affected))

	return dto.BatchResult{Affected: affected}, nil
}

func (s *progressionService) Admit(ctx context.Context, payload dto.DecisionRequest, actor AdminActor) (dto.BatchResult, error) {
	return s.decide(ctx, payload, actor, models.SubmissionStatusAccepted)
}

func (s *progressionService) Reject(ctx context.Context, payload dto.DecisionRequest, actor AdminActor) (dto.BatchResult, error) {
	return s.decide(ctx, payload, actor, models.SubmissionStatusRejected)
}

func (s *progressionService) decide(ctx context.Context, payload dto.DecisionRequest, actor AdminActor, status string) (dto.BatchResult, error) {
	tracer := otel.Tracer("github.com/venturekit/accel-api/internal/service/progression")
	ctx, span := tracer.Start(ctx, "progression.decide")
	span.SetAttributes(
		attribute.Int("progression.batch_size", len(payload.SubmissionIDs)),
		attribute.String("progression.status", status),
		attribute.Int64("progression.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.BatchResult{}, err
	}

	affected, err := s.submissions.SetDecision(ctx, payload.SubmissionIDs, status)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decision_failed")
		return dto.BatchResult{Affected: affected}, err
	}

	s.logger.Info().
		Uint("actor_id", actor.ID).
		Str("status", status).
		Int("requested", len(payload.SubmissionIDs)).
		Int64("affected", affected).
		Msg("submission decisions applied")
	span.SetAttributes(attribute.Int64("progression.affected", affected))

	return dto.BatchResult{Affected: affected}, nil
}
