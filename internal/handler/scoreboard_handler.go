package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/venturekit/accel-api/internal/service"
	"github.com/venturekit/accel-api/internal/utils"
)

// ScoreboardHandler exposes per-stage aggregate views for administrators.
type ScoreboardHandler struct {
	service service.AggregateService
	logger  zerolog.Logger
}

// NewScoreboardHandler constructs the handler.
func NewScoreboardHandler(service service.AggregateService, logger zerolog.Logger) *ScoreboardHandler {
	return &ScoreboardHandler{
		service: service,
		logger:  logger.With().Str("component", "scoreboard_handler").Logger(),
	}
}

// Register attaches scoreboard endpoints to the router group.
func (h *ScoreboardHandler) Register(router fiber.Router) {
	router.Get("/stages/:stageID", h.stageScoreboard)
	router.Get("/stages/:stageID/submissions/:submissionID", h.submissionAggregate)
}

func (h *ScoreboardHandler) stageScoreboard(c *fiber.Ctx) error {
	stageID, err := parseUintParam(c, "stageID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid stage identifier")
	}

	board, err := h.service.Scoreboard(c.Context(), stageID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStageNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "stage not found")
		case errors.Is(err, service.ErrJudgeNotAssigned):
			return utils.SendError(c, fiber.StatusConflict, "competition has no judge roster")
		default:
			h.logger.Error().Err(err).Uint("stage_id", stageID).Msg("failed to build scoreboard")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to build scoreboard")
		}
	}

	return utils.SendSuccess(c, "scoreboard retrieved", board)
}

func (h *ScoreboardHandler) submissionAggregate(c *fiber.Ctx) error {
	stageID, err := parseUintParam(c, "stageID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid stage identifier")
	}
	submissionID, err := parseUintParam(c, "submissionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission identifier")
	}

	entry, err := h.service.Compute(c.Context(), submissionID, stageID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStageNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "stage not found")
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, service.ErrJudgeNotAssigned):
			return utils.SendError(c, fiber.StatusConflict, "competition has no judge roster")
		default:
			h.logger.Error().Err(err).Uint("submission_id", submissionID).Uint("stage_id", stageID).Msg("failed to compute aggregate")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute aggregate")
		}
	}

	return utils.SendSuccess(c, "aggregate retrieved", entry)
}
