package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/venturekit/accel-api/internal/dto"
	"github.com/venturekit/accel-api/internal/service"
	"github.com/venturekit/accel-api/internal/utils"
)

// ScoreHandler wires the score ledger endpoints for evaluators.
type ScoreHandler struct {
	service service.ScoreService
	logger  zerolog.Logger
}

// NewScoreHandler constructs the handler.
func NewScoreHandler(service service.ScoreService, logger zerolog.Logger) *ScoreHandler {
	return &ScoreHandler{
		service: service,
		logger:  logger.With().Str("component", "score_handler").Logger(),
	}
}

// Register attaches score endpoints to the router group.
func (h *ScoreHandler) Register(router fiber.Router) {
	router.Post("/", h.submit)
	router.Put("/", h.revise)
	router.Get("/submissions/:submissionID/stages/:stageID", h.listForSubmission)
}

func (h *ScoreHandler) submit(c *fiber.Ctx) error {
	return h.record(c, false)
}

func (h *ScoreHandler) revise(c *fiber.Ctx) error {
	return h.record(c, true)
}

func (h *ScoreHandler) record(c *fiber.Ctx, revise bool) error {
	var payload dto.ScoreSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := evaluatorFromContext(c)

	var (
		score dto.ScoreResponse
		err   error
	)
	if revise {
		score, err = h.service.Revise(c.Context(), payload, actor)
	} else {
		score, err = h.service.Submit(c.Context(), payload, actor)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateScore):
			return utils.SendError(c, fiber.StatusConflict, "score already recorded for this submission and stage")
		case errors.Is(err, service.ErrScoreNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "no prior score to revise")
		case errors.Is(err, service.ErrStageNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "stage not found")
		case errors.Is(err, service.ErrSubmissionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		case errors.Is(err, service.ErrMissingCriterionScore),
			errors.Is(err, service.ErrUnknownCriterion),
			errors.Is(err, service.ErrScoreOutOfRange),
			errors.Is(err, service.ErrStageHasNoCriteria):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("submission_id", payload.SubmissionID).Uint("stage_id", payload.StageID).Msg("failed to record score")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record score")
		}
	}

	if revise {
		return utils.SendSuccess(c, "score revised", score)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "score recorded", score)
}

func (h *ScoreHandler) listForSubmission(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "submissionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission identifier")
	}
	stageID, err := parseUintParam(c, "stageID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid stage identifier")
	}

	scores, err := h.service.ListForSubmission(c.Context(), submissionID, stageID)
	if err != nil {
		h.logger.Error().Err(err).Uint("submission_id", submissionID).Uint("stage_id", stageID).Msg("failed to list scores")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list scores")
	}

	return utils.SendSuccess(c, "scores retrieved", scores)
}
