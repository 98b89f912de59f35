package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/venturekit/accel-api/internal/models"
)

// ErrJudgeAlreadyAssigned indicates the evaluator is already assigned to the
// competition.
var ErrJudgeAlreadyAssigned = errors.New("judge already assigned to competition")

// JudgeRepository defines data operations for judge assignments.
type JudgeRepository interface {
	Create(ctx context.Context, assignment *models.JudgeAssignment) error
	ListByCompetition(ctx context.Context, competitionID uint) ([]models.JudgeAssignment, error)
}

type judgeRepository struct {
	db *gorm.DB
}

// NewJudgeRepository instantiates the repository.
func NewJudgeRepository(db *gorm.DB) JudgeRepository {
	return &judgeRepository{db: db}
}

func (r *judgeRepository) Create(ctx context.Context, assignment *models.JudgeAssignment) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "evaluator_id"},
			{Name: "competition_id"},
		},
		DoNothing: true,
	}).Create(assignment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJudgeAlreadyAssigned
	}

	return nil
}

func (r *judgeRepository) ListByCompetition(ctx context.Context, competitionID uint) ([]models.JudgeAssignment, error) {
	var assignments []models.JudgeAssignment
	if err := r.db.WithContext(ctx).
		Where("competition_id = ?", competitionID).
		Order("evaluator_id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}
