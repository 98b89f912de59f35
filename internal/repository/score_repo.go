package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/venturekit/accel-api/internal/models"
)

// ErrDuplicateScore indicates the evaluator already scored this submission at
// this stage. The unique index is the arbiter; concurrent submitters race at
// the store, never in application code.
var ErrDuplicateScore = errors.New("score already recorded for evaluator")

// ScoreRepository defines data operations for score records.
type ScoreRepository interface {
	Submit(ctx context.Context, record *models.ScoreRecord) ([]models.ScoreRecord, error)
	Replace(ctx context.Context, record *models.ScoreRecord) ([]models.ScoreRecord, error)
	ListForSubmissionStage(ctx context.Context, submissionID, stageID uint) ([]models.ScoreRecord, error)
	DistinctEvaluatorCount(ctx context.Context, stageID uint) (int64, error)
}

type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository instantiates the repository.
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

var scoreConflictColumns = []clause.Column{
	{Name: "submission_id"},
	{Name: "stage_id"},
	{Name: "evaluator_id"},
}

// Submit inserts the record unless one already exists for the same
// (submission, stage, evaluator) and returns the full set of records for the
// pair, read in the same transaction as the insert so the caller aggregates
// over a consistent snapshot.
func (r *scoreRepository) Submit(ctx context.Context, record *models.ScoreRecord) ([]models.ScoreRecord, error) {
	var snapshot []models.ScoreRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   scoreConflictColumns,
			DoNothing: true,
		}).Create(record)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrDuplicateScore
		}

		return listForPair(tx, record.SubmissionID, record.StageID, &snapshot)
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Replace overwrites the evaluator's existing record in place and returns the
// post-write snapshot for the pair. Missing records surface as
// gorm.ErrRecordNotFound so revision never turns into a blind insert.
func (r *scoreRepository) Replace(ctx context.Context, record *models.ScoreRecord) ([]models.ScoreRecord, error) {
	var snapshot []models.ScoreRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ScoreRecord{}).
			Where("submission_id = ?", record.SubmissionID).
			Where("stage_id = ?", record.StageID).
			Where("evaluator_id = ?", record.EvaluatorID).
			Updates(map[string]interface{}{
				"criteria_scores": record.CriteriaScores,
				"weighted_total":  record.WeightedTotal,
				"notes":           record.Notes,
				"scored_at":       record.ScoredAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return listForPair(tx, record.SubmissionID, record.StageID, &snapshot)
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (r *scoreRepository) ListForSubmissionStage(ctx context.Context, submissionID, stageID uint) ([]models.ScoreRecord, error) {
	var records []models.ScoreRecord
	if err := listForPair(r.db.WithContext(ctx), submissionID, stageID, &records); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *scoreRepository) DistinctEvaluatorCount(ctx context.Context, stageID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ScoreRecord{}).
		Where("stage_id = ?", stageID).
		Distinct("evaluator_id").
		Count(&count).Error

	return count, err
}

func listForPair(db *gorm.DB, submissionID, stageID uint, out *[]models.ScoreRecord) error {
	return db.Model(&models.ScoreRecord{}).
		Where("submission_id = ?", submissionID).
		Where("stage_id = ?", stageID).
		Order("evaluator_id ASC").
		Find(out).Error
}
