package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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

// ErrSlotNotFound indicates the slot was not located.
var ErrSlotNotFound = errors.New("slot not found")

// ErrSlotAlreadyBooked indicates another submission holds the slot.
var ErrSlotAlreadyBooked = errors.New("slot already booked")

// ErrSubmissionAlreadyBooked indicates the submission already holds a slot
// for the stage.
var ErrSubmissionAlreadyBooked = errors.New("submission already booked a slot")

// SlotService manages interview slot generation and exclusive booking.
type SlotService interface {
	Generate(ctx context.Context, payload dto.SlotGenerateRequest, actor AdminActor) ([]dto.SlotResponse, error)
	Book(ctx context.Context, payload dto.SlotBookRequest) (dto.SlotResponse, error)
	ListAvailable(ctx context.Context, stageID uint) ([]dto.SlotResponse, error)
	ListAll(ctx context.Context, stageID uint) ([]dto.SlotResponse, error)
}

type slotService struct {
	slots       repository.SlotRepository
	stages      repository.StageRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	meetingHost string
	logger      zerolog.Logger
}

// NewSlotService constructs the slot booking manager.
func NewSlotService(slots repository.SlotRepository, stages repository.StageRepository, submissions repository.SubmissionRepository, validate *validator.Validate, meetingHost string, logger zerolog.Logger) SlotService {
	return &slotService{
		slots:       slots,
		stages:      stages,
		submissions: submissions,
		validator:   validate,
		meetingHost: meetingHost,
		logger:      logger.With().Str("component", "slot_service").Logger(),
	}
}

func (s *slotService) Generate(ctx context.Context, payload dto.SlotGenerateRequest, actor AdminActor) ([]dto.SlotResponse, error) {
	tracer := otel.Tracer("github.com/venturekit/accel-api/internal/service/slot")
	ctx, span := tracer.Start(ctx, "slot.generate")
	span.SetAttributes(
		attribute.Int64("slot.stage_id", int64(payload.StageID)),
		attribute.Int("slot.count", len(payload.Slots)),
		attribute.Int64("slot.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return nil, err
	}

	if _, err := s.stages.GetByID(ctx, payload.StageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "stage_not_found")
			return nil, ErrStageNotFound
		}
		return nil, err
	}

	slots := make([]models.InterviewSlot, 0, len(payload.Slots))
	for _, spec := range payload.Slots {
		slots = append(slots, models.InterviewSlot{
			StageID:    payload.StageID,
			Date:       spec.Date,
			StartTime:  spec.StartTime,
			EndTime:    spec.EndTime,
			MeetingURL: fmt.Sprintf("%s/%s", s.meetingHost, uuid.NewString()),
		})
	}

	created, err := s.slots.CreateBatch(ctx, slots)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "slot_create_failed")
		return nil, err
	}

	s.logger.Info().
		Uint("stage_id", payload.StageID).
		Uint("actor_id", actor.ID).
		Int("count", len(created)).
		Msg("interview slots generated")

	return dto.NewSlotResponses(created), nil
}

func (s *slotService) Book(ctx context.Context, payload dto.SlotBookRequest) (dto.SlotResponse, error) {
	tracer := otel.Tracer("github.com/venturekit/accel-api/internal/service/slot")
	ctx, span := tracer.Start(ctx, "slot.book")
	span.SetAttributes(
		attribute.Int64("slot.id", int64(payload.SlotID)),
		attribute.Int64("slot.submission_id", int64(payload.SubmissionID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SlotResponse{}, err
	}

	if _, err := s.submissions.GetByID(ctx, payload.SubmissionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SlotResponse{}, ErrSubmissionNotFound
		}
		return dto.SlotResponse{}, err
	}

	slot, err := s.slots.Book(ctx, payload.SlotID, payload.SubmissionID)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, repository.ErrSlotTaken):
			span.SetStatus(codes.Error, "slot_taken")
			observability.BookingConflicts().Inc()
			return dto.SlotResponse{}, ErrSlotAlreadyBooked
		case errors.Is(err, repository.ErrSubmissionHasSlot):
			span.SetStatus(codes.Error, "submission_has_slot")
			observability.BookingConflicts().Inc()
			return dto.SlotResponse{}, ErrSubmissionAlreadyBooked
		case errors.Is(err, gorm.ErrRecordNotFound):
			span.SetStatus(codes.Error, "slot_not_found")
			return dto.SlotResponse{}, ErrSlotNotFound
		default:
			span.SetStatus(codes.Error, "booking_failed")
			return dto.SlotResponse{}, err
		}
	}

	s.logger.Info().
		Uint("slot_id", slot.ID).
		Uint("submission_id", payload.SubmissionID).
		Msg("slot booked")

	return dto.NewSlotResponse(slot), nil
}

func (s *slotService) ListAvailable(ctx context.Context, stageID uint) ([]dto.SlotResponse, error) {
	return s.list(ctx, stageID, true)
}

func (s *slotService) ListAll(ctx context.Context, stageID uint) ([]dto.SlotResponse, error) {
	return s.list(ctx, stageID, false)
}

func (s *slotService) list(ctx context.Context, stageID uint, onlyAvailable bool) ([]dto.SlotResponse, error) {
	slots, err := s.slots.ListByStage(ctx, stageID, onlyAvailable)
	if err != nil {
		return nil, err
	}

	return dto.NewSlotResponses(slots), nil
}
