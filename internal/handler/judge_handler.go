package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/venturekit/accel-api/internal/dto"
	"github.com/venturekit/accel-api/internal/service"
	"github.com/venturekit/accel-api/internal/utils"
)

// JudgeHandler wires judge roster management endpoints.
type JudgeHandler struct {
	service service.JudgeService
	logger  zerolog.Logger
}

// NewJudgeHandler constructs the handler.
func NewJudgeHandler(service service.JudgeService, logger zerolog.Logger) *JudgeHandler {
	return &JudgeHandler{
		service: service,
		logger:  logger.With().Str("component", "judge_handler").Logger(),
	}
}

// Register attaches judge endpoints to the router group.
func (h *JudgeHandler) Register(router fiber.Router) {
	router.Post("/", h.assign)
	router.Get("/competitions/:competitionID", h.list)
}

func (h *JudgeHandler) assign(c *fiber.Ctx) error {
	var payload dto.JudgeAssignRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assignment, err := h.service.Assign(c.Context(), payload, adminFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJudgeAlreadyAssigned):
			return utils.SendError(c, fiber.StatusConflict, "judge already assigned to this competition")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("evaluator_id", payload.EvaluatorID).Msg("failed to assign judge")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to assign judge")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "judge assigned", assignment)
}

func (h *JudgeHandler) list(c *fiber.Ctx) error {
	competitionID, err := parseUintParam(c, "competitionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid competition identifier")
	}

	assignments, err := h.service.List(c.Context(), competitionID)
	if err != nil {
		h.logger.Error().Err(err).Uint("competition_id", competitionID).Msg("failed to list judges")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list judges")
	}

	return utils.SendSuccess(c, "judges retrieved", assignments)
}
