package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/venturekit/accel-api/internal/dto"
	"github.com/venturekit/accel-api/internal/service"
	"github.com/venturekit/accel-api/internal/utils"
)

// RankingHandler exposes live and finalized competition rankings.
type RankingHandler struct {
	service service.RankingService
	logger  zerolog.Logger
}

// NewRankingHandler constructs the handler.
func NewRankingHandler(service service.RankingService, logger zerolog.Logger) *RankingHandler {
	return &RankingHandler{
		service: service,
		logger:  logger.With().Str("component", "ranking_handler").Logger(),
	}
}

// Register attaches the read-only ranking endpoint to the router group.
func (h *RankingHandler) Register(router fiber.Router) {
	router.Get("/competitions/:competitionID", h.live)
}

// RegisterAdmin attaches the finalize endpoint. Finalizing persists ranks, so
// it belongs on an admin-guarded group.
func (h *RankingHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/competitions/:competitionID/finalize", h.finalize)
}

func (h *RankingHandler) live(c *fiber.Ctx) error {
	return h.rank(c, dto.RankingModeLive, "ranking retrieved")
}

func (h *RankingHandler) finalize(c *fiber.Ctx) error {
	return h.rank(c, dto.RankingModeFinal, "ranking finalized")
}

func (h *RankingHandler) rank(c *fiber.Ctx, mode, message string) error {
	competitionID, err := parseUintParam(c, "competitionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid competition identifier")
	}

	ranking, err := h.service.Rank(c.Context(), competitionID, mode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCompetitionNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "competition not found")
		case errors.Is(err, service.ErrNoStages):
			return utils.SendError(c, fiber.StatusConflict, "competition has no stages")
		case errors.Is(err, service.ErrJudgeNotAssigned):
			return utils.SendError(c, fiber.StatusConflict, "competition has no judge roster")
		case errors.Is(err, service.ErrUnknownRankingMode):
			return utils.SendError(c, fiber.StatusBadRequest, "unknown ranking mode")
		default:
			h.logger.Error().Err(err).Uint("competition_id", competitionID).Str("mode", mode).Msg("failed to rank competition")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to rank competition")
		}
	}

	return utils.SendSuccess(c, message, ranking)
}
