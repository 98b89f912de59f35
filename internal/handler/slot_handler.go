package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/venturekit/accel-api/internal/dto"
	"github.com/venturekit/accel-api/internal/service"
	"github.com/venturekit/accel-api/internal/utils"
)

// SlotHandler wires interview slot generation and booking endpoints.
type SlotHandler struct {
	service service.SlotService
	logger  zerolog.Logger
}

// NewSlotHandler constructs the handler.
func NewSlotHandler(service service.SlotService, logger zerolog.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		logger:  logger.With().Str("component", "slot_handler").Logger(),
	}
}

// Register attaches the booking and listing endpoints to the router group.
func (h *SlotHandler) Register(router fiber.Router) {
	router.Post("/book", h.book)
	router.Get("/stages/:stageID", h.list)
}

// RegisterAdmin attaches the bulk generation endpoint. Slots are created by
// administrators only; booking stays open to evaluators.
func (h *SlotHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/generate", h.generate)
}

func (h *SlotHandler) generate(c *fiber.Ctx) error {
	var payload dto.SlotGenerateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	slots, err := h.service.Generate(c.Context(), payload, adminFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStageNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "stage not found")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("stage_id", payload.StageID).Msg("failed to generate slots")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to generate slots")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "slots generated", slots)
}

func (h *SlotHandler) book(c *fiber.Ctx) error {
	var payload dto.SlotBookRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	slot, err := h.service.Book(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "slot not found")
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, service.ErrSlotAlreadyBooked):
			return utils.SendError(c, fiber.StatusConflict, "slot already booked")
		case errors.Is(err, service.ErrSubmissionAlreadyBooked):
			return utils.SendError(c, fiber.StatusConflict, "submission already booked a slot")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("slot_id", payload.SlotID).Uint("submission_id", payload.SubmissionID).Msg("failed to book slot")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to book slot")
		}
	}

	return utils.SendSuccess(c, "slot booked", slot)
}

func (h *SlotHandler) list(c *fiber.Ctx) error {
	stageID, err := parseUintParam(c, "stageID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid stage identifier")
	}

	var slots []dto.SlotResponse
	if c.QueryBool("available", false) {
		slots, err = h.service.ListAvailable(c.Context(), stageID)
	} else {
		slots, err = h.service.ListAll(c.Context(), stageID)
	}
	if err != nil {
		h.logger.Error().Err(err).Uint("stage_id", stageID).Msg("failed to list slots")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list slots")
	}

	return utils.SendSuccess(c, "slots retrieved", slots)
}
