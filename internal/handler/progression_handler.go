package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/venturekit/accel-api/internal/dto"
	"github.com/venturekit/accel-api/internal/service"
	"github.com/venturekit/accel-api/internal/utils"
)

// ProgressionHandler wires the manual stage transition endpoints for
// administrators.
type ProgressionHandler struct {
	service service.ProgressionService
	logger  zerolog.Logger
}

// NewProgressionHandler constructs the handler.
func NewProgressionHandler(service service.ProgressionService, logger zerolog.Logger) *ProgressionHandler {
	return &ProgressionHandler{
		service: service,
		logger:  logger.With().Str("component", "progression_handler").Logger(),
	}
}

// Register attaches progression endpoints to the router group.
func (h *ProgressionHandler) Register(router fiber.Router) {
	router.Post("/advance", h.advance)
	router.Post("/admit", h.admit)
	router.Post("/reject", h.reject)
}

func (h *ProgressionHandler) advance(c *fiber.Ctx) error {
	var payload dto.AdvanceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Advance(c.Context(), payload, adminFromContext(c))
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Int("to_stage", payload.ToStage).Msg("failed to advance submissions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to advance submissions")
	}

	return utils.SendSuccess(c, "submissions advanced", result)
}

func (h *ProgressionHandler) admit(c *fiber.Ctx) error {
	return h.decide(c, true)
}

func (h *ProgressionHandler) reject(c *fiber.Ctx) error {
	return h.decide(c, false)
}

func (h *ProgressionHandler) decide(c *fiber.Ctx, admit bool) error {
	var payload dto.DecisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := adminFromContext(c)

	var (
		result dto.BatchResult
		err    error
	)
	if admit {
		result, err = h.service.Admit(c.Context(), payload, actor)
	} else {
		result, err = h.service.Reject(c.Context(), payload, actor)
	}
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Bool("admit", admit).Msg("failed to decide submissions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to decide submissions")
	}

	if admit {
		return utils.SendSuccess(c, "submissions admitted", result)
	}
	return utils.SendSuccess(c, "submissions rejected", result)
}
