package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/venturekit/accel-api/internal/models"
)

func slotFixture(stageID uint, start string) models.InterviewSlot {
	return models.InterviewSlot{
		StageID:   stageID,
		Date:      time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		StartTime: start,
		EndTime:   "00:00",
	}
}

func TestSlotRepositoryBookWinnerTakesSlot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSlotRepository(db)
	ctx := context.Background()

	slots, err := repo.CreateBatch(ctx, []models.InterviewSlot{slotFixture(1, "09:00")})
	require.NoError(t, err)

	booked, err := repo.Book(ctx, slots[0].ID, 100)
	require.NoError(t, err)
	require.NotNil(t, booked.SubmissionID)
	require.Equal(t, uint(100), *booked.SubmissionID)

	_, err = repo.Book(ctx, slots[0].ID, 200)
	require.ErrorIs(t, err, ErrSlotTaken)

	reloaded, err := repo.GetByID(ctx, slots[0].ID)
	require.NoError(t, err)
	require.Equal(t, uint(100), *reloaded.SubmissionID, "first binding must never be overwritten")
}

func TestSlotRepositoryBookRejectsSecondSlotForSubmission(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSlotRepository(db)
	ctx := context.Background()

	slots, err := repo.CreateBatch(ctx, []models.InterviewSlot{
		slotFixture(1, "09:00"),
		slotFixture(1, "10:00"),
	})
	require.NoError(t, err)

	_, err = repo.Book(ctx, slots[0].ID, 100)
	require.NoError(t, err)

	_, err = repo.Book(ctx, slots[1].ID, 100)
	require.ErrorIs(t, err, ErrSubmissionHasSlot)

	available, err := repo.ListByStage(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, available, 1)
	require.Equal(t, slots[1].ID, available[0].ID)
}

func TestSlotRepositoryBookMissingSlot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSlotRepository(db)

	_, err := repo.Book(context.Background(), 999, 100)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSlotRepositoryListByStage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSlotRepository(db)
	ctx := context.Background()

	slots, err := repo.CreateBatch(ctx, []models.InterviewSlot{
		slotFixture(1, "10:00"),
		slotFixture(1, "09:00"),
		slotFixture(2, "09:00"),
	})
	require.NoError(t, err)

	_, err = repo.Book(ctx, slots[0].ID, 100)
	require.NoError(t, err)

	all, err := repo.ListByStage(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "09:00", all[0].StartTime, "slots ordered by start time")

	available, err := repo.ListByStage(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, available, 1)
	require.Equal(t, "09:00", available[0].StartTime)
}
