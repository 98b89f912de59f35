package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/venturekit/accel-api/internal/dto"
	"github.com/venturekit/accel-api/internal/models"
	"github.com/venturekit/accel-api/internal/repository"
)

// ErrJudgeAlreadyAssigned indicates the evaluator is already on the
// competition's roster.
var ErrJudgeAlreadyAssigned = errors.New("judge already assigned")

// defaultJudgeWeight applies when an assignment omits the weight. It is fixed
// here, at configuration time; the aggregate reduction never defaults.
const defaultJudgeWeight = 1.0

// JudgeService manages the explicit evaluator roster per competition.
type JudgeService interface {
	Assign(ctx context.Context, payload dto.JudgeAssignRequest, actor AdminActor) (dto.JudgeAssignmentResponse, error)
	List(ctx context.Context, competitionID uint) ([]dto.JudgeAssignmentResponse, error)
}

type judgeService struct {
	judges    repository.JudgeRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewJudgeService constructs the judge roster service.
func NewJudgeService(judges repository.JudgeRepository, validate *validator.Validate, logger zerolog.Logger) JudgeService {
	return &judgeService{
		judges:    judges,
		validator: validate,
		logger:    logger.With().Str("component", "judge_service").Logger(),
	}
}

func (s *judgeService) Assign(ctx context.Context, payload dto.JudgeAssignRequest, actor AdminActor) (dto.JudgeAssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.JudgeAssignmentResponse{}, err
	}

	weight := defaultJudgeWeight
	if payload.Weight != nil {
		weight = *payload.Weight
	}

	assignment := &models.JudgeAssignment{
		EvaluatorID:   payload.EvaluatorID,
		CompetitionID: payload.CompetitionID,
		Weight:        weight,
	}
	if err := s.judges.Create(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrJudgeAlreadyAssigned) {
			return dto.JudgeAssignmentResponse{}, ErrJudgeAlreadyAssigned
		}
		return dto.JudgeAssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("evaluator_id", payload.EvaluatorID).
		Uint("competition_id", payload.CompetitionID).
		Float64("weight", weight).
		Uint("actor_id", actor.ID).
		Msg("judge assigned")

	return dto.NewJudgeAssignmentResponse(*assignment), nil
}

func (s *judgeService) List(ctx context.Context, competitionID uint) ([]dto.JudgeAssignmentResponse, error) {
	assignments, err := s.judges.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	return dto.NewJudgeAssignmentResponses(assignments), nil
}
