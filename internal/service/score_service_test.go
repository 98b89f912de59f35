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

type scoreFixture struct {
	svc         ScoreService
	scores      *fakeScoreRepo
	stages      *fakeStageRepo
	submissions *fakeSubmissionRepo
	judges      *fakeJudgeRepo
}

func newScoreFixture(t *testing.T, judgeIDs ...uint) *scoreFixture {
	t.Helper()

	stageOne := 1
	stages := &fakeStageRepo{
		stages: map[uint]models.Stage{
			1: {
				ID:                   1,
				CompetitionID:        1,
				Number:               1,
				RequiredEvaluatorPct: 75,
				ScoreMin:             0,
				ScoreMax:             10,
				Criteria: []models.Criterion{
					{ID: 1, StageID: 1, Name: "Team", Weight: 2, OrderIndex: 0},
					{ID: 2, StageID: 1, Name: "Market", Weight: 1, OrderIndex: 1},
					{ID: 3, StageID: 1, Name: "Product", Weight: 1, OrderIndex: 2},
				},
			},
		},
		competitions: map[uint]models.Competition{
			1: {ID: 1, Name: "Spring Batch", Kind: models.CompetitionKindApplication},
		},
	}
	submissions := &fakeSubmissionRepo{
		submissions: map[uint]models.Submission{
			1: {
				ID:            1,
				CompetitionID: 1,
				Title:         "Acme",
				CurrentStage:  &stageOne,
				Status:        models.SubmissionStatusPending,
				SubmittedAt:   time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
			},
		},
	}
	judges := &fakeJudgeRepo{}
	for _, id := range judgeIDs {
		judges.assignments = append(judges.assignments, models.JudgeAssignment{EvaluatorID: id, CompetitionID: 1, Weight: 1})
	}
	scores := &fakeScoreRepo{}

	validate := validator.New(validator.WithRequiredStructEnabled())
	aggregates := NewAggregateService(scores, stages, submissions, judges, testLogger())
	svc := NewScoreService(scores, stages, submissions, aggregates, nil, validate, testLogger())

	return &scoreFixture{svc: svc, scores: scores, stages: stages, submissions: submissions, judges: judges}
}

func fullScores() map[uint]float64 {
	return map[uint]float64{1: 8, 2: 6, 3: 4}
}

func TestScoreServiceWeightedTotal(t *testing.T) {
	f := newScoreFixture(t, 10)

	response, err := f.svc.Submit(context.Background(), dto.ScoreSubmitRequest{
		SubmissionID:   1,
		StageID:        1,
		CriteriaScores: fullScores(),
	}, ScoreActor{EvaluatorID: 10})
	require.NoError(t, err)
	require.Equal(t, 6.5, response.WeightedTotal, "(8*2+6*1+4*1)/4")
	require.Equal(t, uint(10), response.EvaluatorID)
}

func TestScoreServiceMissingCriterion(t *testing.T) {
	f := newScoreFixture(t, 10)

	_, err := f.svc.Submit(context.Background(), dto.ScoreSubmitRequest{
		SubmissionID:   1,
		StageID:        1,
		CriteriaScores: map[uint]float64{1: 8, 2: 6},
	}, ScoreActor{EvaluatorID: 10})
	require.ErrorIs(t, err, ErrMissingCriterionScore)
	require.ErrorContains(t, err, "Product")
	require.Empty(t, f.scores.records, "nothing may be written on validation failure")
}

func TestScoreServiceUnknownCriterion(t *testing.T) {
	f := newScoreFixture(t, 10)

	payload := fullScores()
	payload[99] = 5
	_, err := f.svc.Submit(context.Background(), dto.ScoreSubmitRequest{
		SubmissionID:   1,
		StageID:        1,
		CriteriaScores: payload,
	}, ScoreActor{EvaluatorID: 10})
	require.ErrorIs(t, err, ErrUnknownCriterion)
}

func TestScoreServiceOutOfRange(t *testing.T) {
	f := newScoreFixture(t, 10)

	_, err := f.svc.Submit(context.Background(), dto.ScoreSubmitRequest{
		SubmissionID:   1,
		StageID:        1,
		CriteriaScores: map[uint]float64{1: 11, 2: 6, 3: 4},
	}, ScoreActor{EvaluatorID: 10})
	require.ErrorIs(t, err, ErrScoreOutOfRange)
	require.ErrorContains(t, err, "Team")
}

func TestScoreServiceZeroWeightConfiguration(t *testing.T) {
	f := newScoreFixture(t, 10)
	stage := f.stages.stages[1]
	for i := range stage.Criteria {
		stage.Criteria[i].Weight = 0
	}
	f.stages.stages[1] = stage

	_, err := f.svc.Submit(context.Background(), dto.ScoreSubmitRequest{
		SubmissionID:   1,
		StageID:        1,
		CriteriaScores: fullScores(),
	}, ScoreActor{EvaluatorID: 10})
	require.ErrorIs(t, err, ErrZeroCriteriaWeight)
}

func TestScoreServiceRejectsDuplicate(t *testing.T) {
	f := newScoreFixture(t, 10)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, dto.ScoreSubmitRequest{SubmissionID: 1, StageID: 1, CriteriaScores: fullScores()}, ScoreActor{EvaluatorID: 10})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, dto.ScoreSubmitRequest{SubmissionID: 1, StageID: 1, CriteriaScores: fullScores()}, ScoreActor{EvaluatorID: 10})
	require.ErrorIs(t, err, ErrDuplicateScore)
	require.Len(t, f.scores.records, 1)
}

func TestScoreServiceReviseRequiresExistingScore(t *testing.T) {
	f := newScoreFixture(t, 10)
	ctx := context.Background()

	_, err := f.svc.Revise(ctx, dto.ScoreSubmitRequest{SubmissionID: 1, StageID: 1, CriteriaScores: fullScores()}, ScoreActor{EvaluatorID: 10})
	require.ErrorIs(t, err, ErrScoreNotFound)

	_, err = f.svc.Submit(ctx, dto.ScoreSubmitRequest{SubmissionID: 1, StageID: 1, CriteriaScores: fullScores()}, ScoreActor{EvaluatorID: 10})
	require.NoError(t, err)

	revised, err := f.svc.Revise(ctx, dto.ScoreSubmitRequest{SubmissionID: 1, StageID: 1, CriteriaScores: map[uint]float64{1: 10, 2: 10, 3: 10}}, ScoreActor{EvaluatorID: 10})
	require.NoError(t, err)
	require.Equal(t, 10.0, revised.WeightedTotal)
	require.Len(t, f.scores.records, 1, "revision replaces in place")
}

func TestScoreServiceRefreshesAggregateCache(t *testing.T) {
	f := newScoreFixture(t, 10)

	_, err := f.svc.Submit(context.Background(), dto.ScoreSubmitRequest{SubmissionID: 1, StageID: 1, CriteriaScores: fullScores()}, ScoreActor{EvaluatorID: 10})
	require.NoError(t, err)

	submission := f.submissions.submissions[1]
	require.NotNil(t, submission.AggregateScore, "full roster coverage makes the aggregate valid")
	require.Equal(t, 6.5, *submission.AggregateScore)
}

func TestScoreServiceInvalidAggregateClearsCache(t *testing.T) {
	// Two judges assigned, one score: 50% coverage under a 75% requirement.
	f := newScoreFixture(t, 10, 11)

	_, err := f.svc.Submit(context.Background(), dto.ScoreSubmitRequest{SubmissionID: 1, StageID: 1, CriteriaScores: fullScores()}, ScoreActor{EvaluatorID: 10})
	require.NoError(t, err)

	submission := f.submissions.submissions[1]
	require.Nil(t, submission.AggregateScore, "aggregate stays hidden until enough evaluators scored")
}

func TestScoreServiceDoesNotTouchStage(t *testing.T) {
	f := newScoreFixture(t, 10)

	_, err := f.svc.Submit(context.Background(), dto.ScoreSubmitRequest{SubmissionID: 1, StageID: 1, CriteriaScores: map[uint]float64{1: 10, 2: 10, 3: 10}}, ScoreActor{EvaluatorID: 10})
	require.NoError(t, err)

	submission := f.submissions.submissions[1]
	require.NotNil(t, submission.CurrentStage)
	require.Equal(t, 1, *submission.CurrentStage, "a passing score never advances a submission on its own")
	require.Equal(t, models.SubmissionStatusPending, submission.Status)
}

func TestScoreServiceSanitizesNotes(t *testing.T) {
	f := newScoreFixture(t, 10)

	response, err := f.svc.Submit(context.Background(), dto.ScoreSubmitRequest{
		SubmissionID:   1,
		StageID:        1,
		CriteriaScores: fullScores(),
		Notes:          `<script>alert("x")</script>strong team`,
	}, ScoreActor{EvaluatorID: 10})
	require.NoError(t, err)
	require.Equal(t, "strong team", response.Notes)
}

func TestScoreServiceStageNotFound(t *testing.T) {
	f := newScoreFixture(t, 10)

	_, err := f.svc.Submit(context.Background(), dto.ScoreSubmitRequest{SubmissionID: 1, StageID: 99, CriteriaScores: fullScores()}, ScoreActor{EvaluatorID: 10})
	require.ErrorIs(t, err, ErrStageNotFound)
}
