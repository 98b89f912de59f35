package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/venturekit/accel-api/internal/models"
)

// StageRepository defines data operations for stages and their criteria.
type StageRepository interface {
	GetByID(ctx context.Context, id uint) (models.Stage, error)
	GetByCompetitionAndNumber(ctx context.Context, competitionID uint, number int) (models.Stage, error)
	ListByCompetition(ctx context.Context, competitionID uint) ([]models.Stage, error)
	GetCompetition(ctx context.Context, id uint) (models.Competition, error)
}

type stageRepository struct {
	db *gorm.DB
}

// NewStageRepository instantiates the repository.
func NewStageRepository(db *gorm.DB) StageRepository {
	return &stageRepository{db: db}
}

func (r *stageRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Stage{}).
		Preload("Criteria", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		})
}

func (r *stageRepository) GetByID(ctx context.Context, id uint) (models.Stage, error) {
	var stage models.Stage
	if err := r.baseQuery(ctx).First(&stage, id).Error; err != nil {
		return models.Stage{}, err
	}

	return stage, nil
}

func (r *stageRepository) GetByCompetitionAndNumber(ctx context.Context, competitionID uint, number int) (models.Stage, error) {
	var stage models.Stage
	if err := r.baseQuery(ctx).
		Where("competition_id = ?", competitionID).
		Where("number = ?", number).
		First(&stage).Error; err != nil {
		return models.Stage{}, err
	}

	return stage, nil
}

func (r *stageRepository) ListByCompetition(ctx context.Context, competitionID uint) ([]models.Stage, error) {
	var stages []models.Stage
	if err := r.baseQuery(ctx).
		Where("competition_id = ?", competitionID).
		Order("number ASC").
		Find(&stages).Error; err != nil {
		return nil, err
	}

	return stages, nil
}

func (r *stageRepository) GetCompetition(ctx context.Context, id uint) (models.Competition, error) {
	var competition models.Competition
	if err := r.db.WithContext(ctx).First(&competition, id).Error; err != nil {
		return models.Competition{}, err
	}

	return competition, nil
}
