package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/venturekit/accel-api/internal/dto"
	"github.com/venturekit/accel-api/internal/models"
)

func newProgressionFixture(t *testing.T) (ProgressionService, *fakeSubmissionRepo) {
	t.Helper()

	stageOne := 1
	otherStage := 1
	repo := &fakeSubmissionRepo{
		submissions: map[uint]models.Submission{
			1: {ID: 1, CompetitionID: 1, Status: models.SubmissionStatusPending, CurrentStage: &stageOne, SubmittedAt: time.Now()},
			2: {ID: 2, CompetitionID: 1, Status: models.SubmissionStatusPending, CurrentStage: &otherStage, SubmittedAt: time.Now()},
		},
	}
	validate := validator.New(validator.WithRequiredStructEnabled())

	return NewProgressionService(repo, validate, testLogger()), repo
}

func TestProgressionAdvance(t *testing.T) {
	svc, repo := newProgressionFixture(t)
	ctx := context.Background()

	result, err := svc.Advance(ctx, dto.AdvanceRequest{SubmissionIDs: []uint{1, 2}, FromStage: 1, ToStage: 2}, AdminActor{ID: 7})
	require.NoError(t, err)
	require.Equal(t, int64(2), result.Affected)
	require.Equal(t, 2, *repo.submissions[1].CurrentStage)

	result, err = svc.Advance(ctx, dto.AdvanceRequest{SubmissionIDs: []uint{1, 2}, FromStage: 1, ToStage: 2}, AdminActor{ID: 7})
	require.NoError(t, err)
	require.Equal(t, int64(0), result.Affected, "re-applying a transition is a no-op, not an error")
}

func TestProgressionAdvanceRejectsSameStage(t *testing.T) {
	svc, _ := newProgressionFixture(t)

	_, err := svc.Advance(context.Background(), dto.AdvanceRequest{SubmissionIDs: []uint{1}, FromStage: 2, ToStage: 2}, AdminActor{ID: 7})
	require.Error(t, err)
}

func TestProgressionAdmitIsIdempotent(t *testing.T) {
	svc, repo := newProgressionFixture(t)
	ctx := context.Background()

	result, err := svc.Admit(ctx, dto.DecisionRequest{SubmissionIDs: []uint{1}}, AdminActor{ID: 7})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Affected)

	result, err = svc.Admit(ctx, dto.DecisionRequest{SubmissionIDs: []uint{1}}, AdminActor{ID: 7})
	require.NoError(t, err)
	require.Equal(t, int64(0), result.Affected)

	submission := repo.submissions[1]
	require.Equal(t, models.SubmissionStatusAccepted, submission.Status)
	require.Nil(t, submission.CurrentStage)
}

func TestProgressionReject(t *testing.T) {
	svc, repo := newProgressionFixture(t)

	result, err := svc.Reject(context.Background(), dto.DecisionRequest{SubmissionIDs: []uint{2}}, AdminActor{ID: 7})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Affected)
	require.Equal(t, models.SubmissionStatusRejected, repo.submissions[2].Status)
}

func TestProgressionValidatesBatch(t *testing.T) {
	svc, _ := newProgressionFixture(t)

	_, err := svc.Admit(context.Background(), dto.DecisionRequest{}, AdminActor{ID: 7})
	require.Error(t, err)
}
