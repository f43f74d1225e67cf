package service

import (
	"context"
	"errors"
	"testing"

	"surveyor/internal/instrument"
	"surveyor/internal/model"
	"surveyor/internal/scoring"
	"surveyor/pkg/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExperiment_SummaryAndFinalize(t *testing.T) {
	repo := newTestRepository(t)
	exp := expandOne(t, repo, 2)
	cfg := testQueueConfig()
	cfg.MaxAttempts = 1
	queue := NewQueueService(repo, cfg)
	svc := NewExperimentService(repo)
	ctx := context.Background()

	summary, err := svc.GetSummary(ctx, exp.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.Total)
	assert.EqualValues(t, 2, summary.Counts.Pending)
	assert.Len(t, summary.Experiment.Configs, 1)
	assert.Equal(t, "ocean", summary.Experiment.ProfileSet)

	phq9, _ := instrument.NewDefaultRegistry().Get("phq9")

	// one unit completes, the other exhausts its single attempt
	done, err := queue.Claim(ctx, "deepseek", "w1")
	require.NoError(t, err)
	require.NoError(t, queue.Begin(ctx, done, "prompt"))
	var responses []model.ItemResponse
	for _, item := range phq9.Items {
		responses = append(responses, scoring.ScoreItem(phq9, item, "2"))
	}
	require.NoError(t, queue.Complete(ctx, done, responses, scoring.ScoreResponses(phq9, responses)))

	finalized, err := svc.FinalizeCompleted(ctx)
	require.NoError(t, err)
	assert.Zero(t, finalized)

	lost, err := queue.Claim(ctx, "deepseek", "w1")
	require.NoError(t, err)
	require.NoError(t, queue.Begin(ctx, lost, "prompt"))
	status, err := queue.Fail(ctx, lost, errors.New("timeout"))
	require.NoError(t, err)
	assert.Equal(t, model.WorkUnitStatusFailed, status)

	finalized, err = svc.FinalizeCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, finalized)

	summary, err = svc.GetSummary(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExperimentStatusComplete, summary.Experiment.Status)
	assert.EqualValues(t, 1, summary.Counts.Complete)
	assert.EqualValues(t, 1, summary.Counts.Failed)

	detail, err := svc.GetUnit(ctx, done.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Result)
	assert.Len(t, detail.Responses, 9)
	require.NotNil(t, detail.Result.TotalScore)
	assert.InDelta(t, 18, *detail.Result.TotalScore, 1e-9)

	failed, err := svc.ListUnits(ctx, exp.ID, string(model.WorkUnitStatusFailed), 10, 0)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "timeout", failed[0].ErrorMessage)

	// complete experiments cannot be cancelled
	err = svc.Cancel(ctx, exp.ID)
	assert.True(t, errors.Is(err, model.ErrInvalidTransition))
}

func TestExperiment_CancelBlocksClaims(t *testing.T) {
	repo := newTestRepository(t)
	exp := expandOne(t, repo, 3)
	queue := NewQueueService(repo, testQueueConfig())
	svc := NewExperimentService(repo)
	ctx := context.Background()

	inFlight, err := queue.Claim(ctx, "deepseek", "w1")
	require.NoError(t, err)
	require.NoError(t, queue.Begin(ctx, inFlight, "prompt"))

	require.NoError(t, svc.Cancel(ctx, exp.ID))

	unit, err := queue.Claim(ctx, "deepseek", "w2")
	require.NoError(t, err)
	assert.Nil(t, unit)

	// the running unit still finishes
	require.NoError(t, queue.Complete(ctx, inFlight, nil, model.UnitResult{QuestionsTotal: 9}))

	summary, err := svc.GetSummary(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExperimentStatusCancelled, summary.Experiment.Status)
	assert.EqualValues(t, 2, summary.Counts.Pending)
	assert.EqualValues(t, 1, summary.Counts.Complete)

	assert.True(t, errors.Is(svc.Cancel(ctx, exp.ID), model.ErrInvalidTransition))
	assert.True(t, errors.Is(svc.Cancel(ctx, 999), model.ErrExperimentNotFound))
	_, err = svc.GetSummary(ctx, 999)
	assert.True(t, errors.Is(err, model.ErrExperimentNotFound))
}

type recordingNotifier struct {
	sent []*notification.ExperimentFinished
	err  error
}

func (r *recordingNotifier) SendExperimentFinished(_ context.Context, n *notification.ExperimentFinished) error {
	r.sent = append(r.sent, n)
	return r.err
}

func TestExperiment_FinalizeNotifies(t *testing.T) {
	repo := newTestRepository(t)
	exp := expandOne(t, repo, 1)
	cfg := testQueueConfig()
	cfg.MaxAttempts = 1
	queue := NewQueueService(repo, cfg)
	svc := NewExperimentService(repo)
	notifier := &recordingNotifier{err: errors.New("webhook down")}
	svc.SetNotifier(notifier)
	ctx := context.Background()

	unit, err := queue.Claim(ctx, "deepseek", "w1")
	require.NoError(t, err)
	require.NoError(t, queue.Begin(ctx, unit, "prompt"))
	_, err = queue.Fail(ctx, unit, errors.New("boom"))
	require.NoError(t, err)

	// a failing notifier does not block finalization
	finalized, err := svc.FinalizeCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, finalized)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, exp.ID, notifier.sent[0].ExperimentID)
	assert.Equal(t, exp.Name, notifier.sent[0].Name)
	assert.EqualValues(t, 1, notifier.sent[0].Failed)
	assert.Zero(t, notifier.sent[0].Complete)

	finalized, err = svc.FinalizeCompleted(ctx)
	require.NoError(t, err)
	assert.Zero(t, finalized)
	assert.Len(t, notifier.sent, 1)
}
