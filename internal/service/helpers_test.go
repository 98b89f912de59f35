package service

import (
	"context"
	"io"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/venturekit/accel-api/internal/models"
	"github.com/venturekit/accel-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeStageRepo struct {
	stages       map[uint]models.Stage
	competitions map[uint]models.Competition
}

func (f *fakeStageRepo) GetByID(ctx context.Context, id uint) (models.Stage, error) {
	stage, ok := f.stages[id]
	if !ok {
		return models.Stage{}, gorm.ErrRecordNotFound
	}
	return stage, nil
}

func (f *fakeStageRepo) GetByCompetitionAndNumber(ctx context.Context, competitionID uint, number int) (models.Stage, error) {
	for _, stage := range f.stages {
		if stage.CompetitionID == competitionID && stage.Number == number {
			return stage, nil
		}
	}
	return models.Stage{}, gorm.ErrRecordNotFound
}

func (f *fakeStageRepo) ListByCompetition(ctx context.Context, competitionID uint) ([]models.Stage, error) {
	var stages []models.Stage
	for _, stage := range f.stages {
		if stage.CompetitionID == competitionID {
			stages = append(stages, stage)
		}
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i].Number < stages[j].Number })
	return stages, nil
}

func (f *fakeStageRepo) GetCompetition(ctx context.Context, id uint) (models.Competition, error) {
	competition, ok := f.competitions[id]
	if !ok {
		return models.Competition{}, gorm.ErrRecordNotFound
	}
	return competition, nil
}

type fakeSubmissionRepo struct {
	submissions map[uint]models.Submission
	freezeCalls [][]repository.RankFreeze
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) ListByCompetition(ctx context.Context, competitionID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	for _, submission := range f.submissions {
		if submission.CompetitionID == competitionID {
			submissions = append(submissions, submission)
		}
	}
	sort.Slice(submissions, func(i, j int) bool {
		return submissions[i].SubmittedAt.Before(submissions[j].SubmittedAt)
	})
	return submissions, nil
}

func (f *fakeSubmissionRepo) ListByStage(ctx context.Context, competitionID uint, stageNumber int) ([]models.Submission, error) {
	all, _ := f.ListByCompetition(ctx, competitionID)
	var submissions []models.Submission
	for _, submission := range all {
		if submission.CurrentStage != nil && *submission.CurrentStage == stageNumber {
			submissions = append(submissions, submission)
		}
	}
	return submissions, nil
}

func (f *fakeSubmissionRepo) AdvanceStage(ctx context.Context, ids []uint, fromStage, toStage int) (int64, error) {
	var affected int64
	for _, id := range ids {
		submission, ok := f.submissions[id]
		if !ok || submission.Status != models.SubmissionStatusPending {
			continue
		}
		if submission.CurrentStage == nil || *submission.CurrentStage != fromStage {
			continue
		}
		stage := toStage
		submission.CurrentStage = &stage
		f.submissions[id] = submission
		affected++
	}
	return affected, nil
}

func (f *fakeSubmissionRepo) SetDecision(ctx context.Context, ids []uint, status string) (int64, error) {
	var affected int64
	for _, id := range ids {
		submission, ok := f.submissions[id]
		if !ok || submission.Status == status {
			continue
		}
		submission.Status = status
		submission.CurrentStage = nil
		f.submissions[id] = submission
		affected++
	}
	return affected, nil
}

func (f *fakeSubmissionRepo) UpdateAggregateCache(ctx context.Context, id, stageID uint, score *float64, snapshotSize int) error {
	submission, ok := f.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	submission.AggregateScore = score
	f.submissions[id] = submission
	return nil
}

func (f *fakeSubmissionRepo) FreezeRanks(ctx context.Context, competitionID uint, freezes []repository.RankFreeze) error {
	f.freezeCalls = append(f.freezeCalls, freezes)
	for id, submission := range f.submissions {
		if submission.CompetitionID != competitionID {
			continue
		}
		submission.AggregateScore = nil
		submission.Rank = nil
		f.submissions[id] = submission
	}
	for _, freeze := range freezes {
		submission, ok := f.submissions[freeze.SubmissionID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		score := freeze.AggregateScore
		rank := freeze.Rank
		submission.AggregateScore = &score
		submission.Rank = &rank
		f.submissions[freeze.SubmissionID] = submission
	}
	return nil
}

type fakeScoreRepo struct {
	records []models.ScoreRecord
	nextID  uint
}

func (f *fakeScoreRepo) find(submissionID, stageID, evaluatorID uint) int {
	for i, record := range f.records {
		if record.SubmissionID == submissionID && record.StageID == stageID && record.EvaluatorID == evaluatorID {
			return i
		}
	}
	return -1
}

func (f *fakeScoreRepo) snapshot(submissionID, stageID uint) []models.ScoreRecord {
	var records []models.ScoreRecord
	for _, record := range f.records {
		if record.SubmissionID == submissionID && record.StageID == stageID {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].EvaluatorID < records[j].EvaluatorID })
	return records
}

func (f *fakeScoreRepo) Submit(ctx context.Context, record *models.ScoreRecord) ([]models.ScoreRecord, error) {
	if f.find(record.SubmissionID, record.StageID, record.EvaluatorID) >= 0 {
		return nil, repository.ErrDuplicateScore
	}
	f.nextID++
	record.ID = f.nextID
	f.records = append(f.records, *record)
	return f.snapshot(record.SubmissionID, record.StageID), nil
}

func (f *fakeScoreRepo) Replace(ctx context.Context, record *models.ScoreRecord) ([]models.ScoreRecord, error) {
	index := f.find(record.SubmissionID, record.StageID, record.EvaluatorID)
	if index < 0 {
		return nil, gorm.ErrRecordNotFound
	}
	record.ID = f.records[index].ID
	f.records[index] = *record
	return f.snapshot(record.SubmissionID, record.StageID), nil
}

func (f *fakeScoreRepo) ListForSubmissionStage(ctx context.Context, submissionID, stageID uint) ([]models.ScoreRecord, error) {
	return f.snapshot(submissionID, stageID), nil
}

func (f *fakeScoreRepo) DistinctEvaluatorCount(ctx context.Context, stageID uint) (int64, error) {
	seen := make(map[uint]struct{})
	for _, record := range f.records {
		if record.StageID == stageID {
			seen[record.EvaluatorID] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

type fakeJudgeRepo struct {
	assignments []models.JudgeAssignment
}

func (f *fakeJudgeRepo) Create(ctx context.Context, assignment *models.JudgeAssignment) error {
	for _, existing := range f.assignments {
		if existing.EvaluatorID == assignment.EvaluatorID && existing.CompetitionID == assignment.CompetitionID {
			return repository.ErrJudgeAlreadyAssigned
		}
	}
	assignment.ID = uint(len(f.assignments) + 1)
	f.assignments = append(f.assignments, *assignment)
	return nil
}

func (f *fakeJudgeRepo) ListByCompetition(ctx context.Context, competitionID uint) ([]models.JudgeAssignment, error) {
	var assignments []models.JudgeAssignment
	for _, assignment := range f.assignments {
		if assignment.CompetitionID == competitionID {
			assignments = append(assignments, assignment)
		}
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].EvaluatorID < assignments[j].EvaluatorID })
	return assignments, nil
}

type fakeSlotRepo struct {
	slots  map[uint]models.InterviewSlot
	nextID uint
}

func (f *fakeSlotRepo) CreateBatch(ctx context.Context, slots []models.InterviewSlot) ([]models.InterviewSlot, error) {
	if f.slots == nil {
		f.slots = make(map[uint]models.InterviewSlot)
	}
	created := make([]models.InterviewSlot, 0, len(slots))
	for _, slot := range slots {
		f.nextID++
		slot.ID = f.nextID
		f.slots[slot.ID] = slot
		created = append(created, slot)
	}
	return created, nil
}

func (f *fakeSlotRepo) GetByID(ctx context.Context, id uint) (models.InterviewSlot, error) {
	slot, ok := f.slots[id]
	if !ok {
		return models.InterviewSlot{}, gorm.ErrRecordNotFound
	}
	return slot, nil
}

func (f *fakeSlotRepo) ListByStage(ctx context.Context, stageID uint, onlyAvailable bool) ([]models.InterviewSlot, error) {
	var slots []models.InterviewSlot
	for _, slot := range f.slots {
		if slot.StageID != stageID {
			continue
		}
		if onlyAvailable && slot.IsBooked() {
			continue
		}
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].ID < slots[j].ID })
	return slots, nil
}

func (f *fakeSlotRepo) Book(ctx context.Context, slotID, submissionID uint) (models.InterviewSlot, error) {
	slot, ok := f.slots[slotID]
	if !ok {
		return models.InterviewSlot{}, gorm.ErrRecordNotFound
	}
	if slot.IsBooked() {
		return models.InterviewSlot{}, repository.ErrSlotTaken
	}
	for _, other := range f.slots {
		if other.StageID == slot.StageID && other.SubmissionID != nil && *other.SubmissionID == submissionID {
			return models.InterviewSlot{}, repository.ErrSubmissionHasSlot
		}
	}
	slot.SubmissionID = &submissionID
	f.slots[slotID] = slot
	return slot, nil
}
