package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/venturekit/accel-api/internal/models"
)

// RankFreeze is one row of a finalized ranking to persist onto a submission.
type RankFreeze struct {
	SubmissionID   uint
	AggregateScore float64
	Rank           int
}

// SubmissionRepository defines data operations for submissions, including the
// batch transitions used by stage progression and rank finalization.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	ListByCompetition(ctx context.Context, competitionID uint) ([]models.Submission, error)
	ListByStage(ctx context.Context, competitionID uint, stageNumber int) ([]models.Submission, error)
	AdvanceStage(ctx context.Context, ids []uint, fromStage, toStage int) (int64, error)
	SetDecision(ctx context.Context, ids []uint, status string) (int64, error)
	UpdateAggregateCache(ctx context.Context, id, stageID uint, score *float64, snapshotSize int) error
	FreezeRanks(ctx context.Context, competitionID uint, freezes []RankFreeze) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByCompetition(ctx context.Context, competitionID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("competition_id = ?", competitionID).
		Order("submitted_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByStage(ctx context.Context, competitionID uint, stageNumber int) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("competition_id = ?", competitionID).
		Where("current_stage = ?", stageNumber).
		Order("submitted_at ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

// AdvanceStage moves every listed submission still sitting in fromStage to
// toStage. Submissions already moved or in a terminal state are left alone,
// which makes retries of the same batch harmless.
func (r *submissionRepository) AdvanceStage(ctx context.Context, ids []uint, fromStage, toStage int) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id IN ?", ids).
		Where("current_stage = ?", fromStage).
		Where("status = ?", models.SubmissionStatusPending).
		Update("current_stage", toStage)

	return result.RowsAffected, result.Error
}

// SetDecision applies a terminal accept/reject decision and clears the stage
// pointer. Rows already carrying the requested status are not rewritten.
func (r *submissionRepository) SetDecision(ctx context.Context, ids []uint, status string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id IN ?", ids).
		Where("status <> ?", status).
		Updates(map[string]interface{}{
			"status":        status,
			"current_stage": nil,
		})

	return result.RowsAffected, result.Error
}

// UpdateAggregateCache writes the cached aggregate only while the score set it
// was computed from is still current. A racing writer whose snapshot has since
// grown or shrunk no-ops here and leaves the fresher value in place.
func (r *submissionRepository) UpdateAggregateCache(ctx context.Context, id, stageID uint, score *float64, snapshotSize int) error {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", id).
		Where("(SELECT COUNT(*) FROM score_records WHERE submission_id = ? AND stage_id = ?) = ?", id, stageID, snapshotSize).
		Update("aggregate_score", score).Error
}

// FreezeRanks replaces the competition's persisted ranking as one transaction.
// Every submission is cleared first so a row that fell out of the ranked set
// since the prior freeze does not keep its stale rank.
func (r *submissionRepository) FreezeRanks(ctx context.Context, competitionID uint, freezes []RankFreeze) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Submission{}).
			Where("competition_id = ?", competitionID).
			Updates(map[string]interface{}{
				"aggregate_score": nil,
				"rank":            nil,
			}).Error; err != nil {
			return err
		}
		for _, freeze := range freezes {
			if err := tx.Model(&models.Submission{}).
				Where("id = ?", freeze.SubmissionID).
				Updates(map[string]interface{}{
					"aggregate_score": freeze.AggregateScore,
					"rank":            freeze.Rank,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
