package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/venturekit/accel-api/internal/dto"
	"github.com/venturekit/accel-api/internal/observability"
	"github.com/venturekit/accel-api/internal/repository"
)

// ErrCompetitionNotFound indicates the competition was not located.
var ErrCompetitionNotFound = errors.New("competition not found")

// ErrNoStages indicates the competition has no stages to rank against.
var ErrNoStages = errors.New("competition has no stages")

// ErrUnknownRankingMode indicates the mode was neither live nor final.
var ErrUnknownRankingMode = errors.New("unknown ranking mode")

// RankingService orders a competition's submissions by aggregate score with a
// deterministic tie-break. Live rankings are recomputed on read and cached;
// finalized rankings are additionally persisted onto the submissions.
type RankingService interface {
	Rank(ctx context.Context, competitionID uint, mode string) (dto.RankingResponse, error)
	InvalidateLive(ctx context.Context, competitionID uint) error
}

type rankingService struct {
	stages      repository.StageRepository
	submissions repository.SubmissionRepository
	aggregates  AggregateService
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewRankingService constructs the ranking engine. The cache client may be
// nil, in which case live rankings are recomputed on every read.
func NewRankingService(stages repository.StageRepository, submissions repository.SubmissionRepository, aggregates AggregateService, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) RankingService {
	return &rankingService{
		stages:      stages,
		submissions: submissions,
		aggregates:  aggregates,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "ranking_service").Logger(),
		now:         time.Now,
	}
}

func liveRankingKey(competitionID uint) string {
	return fmt.Sprintf("ranking:live:%d", competitionID)
}

func (s *rankingService) Rank(ctx context.Context, competitionID uint, mode string) (dto.RankingResponse, error) {
	tracer := otel.Tracer("github.com/venturekit/accel-api/internal/service/ranking")
	ctx, span := tracer.Start(ctx, "ranking.rank")
	span.SetAttributes(
		attribute.Int64("ranking.competition_id", int64(competitionID)),
		attribute.String("ranking.mode", mode),
	)
	defer span.End()

	if mode != dto.RankingModeLive && mode != dto.RankingModeFinal {
		return dto.RankingResponse{}, ErrUnknownRankingMode
	}

	if mode == dto.RankingModeLive && s.cache != nil {
		if cached, err := s.cache.Get(ctx, liveRankingKey(competitionID)).Result(); err == nil {
			var response dto.RankingResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("competition_id", competitionID).Msg("live ranking cache hit")
				observability.RankingsServed().WithLabelValues(mode, "cache").Inc()
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read live ranking cache")
		}
	}

	response, err := s.compute(ctx, competitionID, mode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ranking_failed")
		return dto.RankingResponse{}, err
	}

	switch mode {
	case dto.RankingModeLive:
		s.cacheLive(ctx, competitionID, response)
	case dto.RankingModeFinal:
		freezes := make([]repository.RankFreeze, 0, len(response.Entries))
		for _, entry := range response.Entries {
			freezes = append(freezes, repository.RankFreeze{
				SubmissionID:   entry.SubmissionID,
				AggregateScore: entry.AggregateScore,
				Rank:           entry.Rank,
			})
		}
		if err := s.submissions.FreezeRanks(ctx, competitionID, freezes); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rank_freeze_failed")
			return dto.RankingResponse{}, err
		}
		if err := s.InvalidateLive(ctx, competitionID); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate live ranking after freeze")
		}
		s.logger.Info().
			Uint("competition_id", competitionID).
			Int("ranked", len(response.Entries)).
			Msg("ranking finalized")
	}

	observability.RankingsServed().WithLabelValues(mode, "computed").Inc()
	span.SetAttributes(attribute.Int("ranking.entries", len(response.Entries)))

	return response, nil
}

// InvalidateLive drops the cached live ranking so the next read recomputes.
func (s *rankingService) InvalidateLive(ctx context.Context, competitionID uint) error {
	if s.cache == nil {
		return nil
	}

	return s.cache.Del(ctx, liveRankingKey(competitionID)).Err()
}

// compute builds the ranking from the scoreboard of the competition's final
// stage. Submissions without a valid aggregate are excluded entirely rather
// than ranked last.
func (s *rankingService) compute(ctx context.Context, competitionID uint, mode string) (dto.RankingResponse, error) {
	if _, err := s.stages.GetCompetition(ctx, competitionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RankingResponse{}, ErrCompetitionNotFound
		}
		return dto.RankingResponse{}, err
	}

	stages, err := s.stages.ListByCompetition(ctx, competitionID)
	if err != nil {
		return dto.RankingResponse{}, err
	}
	if len(stages) == 0 {
		return dto.RankingResponse{}, ErrNoStages
	}
	stage := stages[len(stages)-1]

	board, err := s.aggregates.Scoreboard(ctx, stage.ID)
	if err != nil {
		return dto.RankingResponse{}, err
	}

	ranked := make([]dto.ScoreboardEntry, 0, len(board.Entries))
	for _, entry := range board.Entries {
		if entry.AggregateScore != nil {
			ranked = append(ranked, entry)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		left, right := ranked[i], ranked[j]
		if *left.AggregateScore != *right.AggregateScore {
			return *left.AggregateScore > *right.AggregateScore
		}
		if !left.SubmittedAt.Equal(right.SubmittedAt) {
			return left.SubmittedAt.Before(right.SubmittedAt)
		}
		return left.SubmissionID < right.SubmissionID
	})

	response := dto.RankingResponse{
		CompetitionID: competitionID,
		StageID:       stage.ID,
		Mode:          mode,
		ComputedAt:    s.now().UTC(),
		Entries:       make([]dto.RankedSubmission, 0, len(ranked)),
	}
	for i, entry := range ranked {
		response.Entries = append(response.Entries, dto.RankedSubmission{
			Rank:           i + 1,
			SubmissionID:   entry.SubmissionID,
			Title:          entry.Title,
			AggregateScore: *entry.AggregateScore,
			EvaluatorCount: entry.EvaluatorCount,
			SubmittedAt:    entry.SubmittedAt,
		})
	}

	return response, nil
}

func (s *rankingService) cacheLive(ctx context.Context, competitionID uint, response dto.RankingResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal live ranking for cache")
		return
	}
	if err := s.cache.Set(ctx, liveRankingKey(competitionID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache live ranking")
	}
}
