package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/venturekit/accel-api/internal/models"
)

// ErrSlotTaken indicates the slot was already bound to another submission.
var ErrSlotTaken = errors.New("slot already booked")

// ErrSubmissionHasSlot indicates the submission already holds a slot for the
// stage.
var ErrSubmissionHasSlot = errors.New("submission already booked a slot")

// SlotRepository defines data operations for interview slots.
type SlotRepository interface {
	CreateBatch(ctx context.Context, slots []models.InterviewSlot) ([]models.InterviewSlot, error)
	GetByID(ctx context.Context, id uint) (models.InterviewSlot, error)
	ListByStage(ctx context.Context, stageID uint, onlyAvailable bool) ([]models.InterviewSlot, error)
	Book(ctx context.Context, slotID, submissionID uint) (models.InterviewSlot, error)
}

type slotRepository struct {
	db *gorm.DB
}

// NewSlotRepository instantiates the repository.
func NewSlotRepository(db *gorm.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) CreateBatch(ctx context.Context, slots []models.InterviewSlot) ([]models.InterviewSlot, error) {
	if err := r.db.WithContext(ctx).Create(&slots).Error; err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *slotRepository) GetByID(ctx context.Context, id uint) (models.InterviewSlot, error) {
	var slot models.InterviewSlot
	if err := r.db.WithContext(ctx).First(&slot, id).Error; err != nil {
		return models.InterviewSlot{}, err
	}

	return slot, nil
}

func (r *slotRepository) ListByStage(ctx context.Context, stageID uint, onlyAvailable bool) ([]models.InterviewSlot, error) {
	query := r.db.WithContext(ctx).
		Where("stage_id = ?", stageID)
	if onlyAvailable {
		query = query.Where("submission_id IS NULL")
	}

	var slots []models.InterviewSlot
	if err := query.Order("date ASC, start_time ASC").Find(&slots).Error; err != nil {
		return nil, err
	}

	return slots, nil
}

// Book binds the slot to the submission with a single conditional update.
// The WHERE submission_id IS NULL guard makes concurrent attempts race at the
// store: exactly one update matches, the loser sees zero rows. The unique
// (stage_id, submission_id) index rejects a submission grabbing a second slot.
func (r *slotRepository) Book(ctx context.Context, slotID, submissionID uint) (models.InterviewSlot, error) {
	result := r.db.WithContext(ctx).Model(&models.InterviewSlot{}).
		Where("id = ?", slotID).
		Where("submission_id IS NULL").
		Update("submission_id", submissionID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return models.InterviewSlot{}, ErrSubmissionHasSlot
		}
		return models.InterviewSlot{}, result.Error
	}

	if result.RowsAffected == 0 {
		var slot models.InterviewSlot
		if err := r.db.WithContext(ctx).First(&slot, slotID).Error; err != nil {
			return models.InterviewSlot{}, err
		}
		return models.InterviewSlot{}, ErrSlotTaken
	}

	return r.GetByID(ctx, slotID)
}
