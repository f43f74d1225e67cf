package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"surveyor/internal/encoding"
	"surveyor/internal/instrument"
	"surveyor/internal/model"
	"surveyor/internal/service"
	"surveyor/pkg/config"
	"surveyor/pkg/provider"
	"surveyor/pkg/ratelimit"
	"surveyor/pkg/store/mysql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
		// started at init by the genai client's opencensus dependency
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

// fakeClient answers through respond and records every request
type fakeClient struct {
	name    string
	respond func(call int, req provider.Request) (string, error)

	mu       sync.Mutex
	requests []provider.Request
	active   int
	peak     int
	delay    time.Duration
}

func (f *fakeClient) Name() string { return f.name }

func (f *fakeClient) Invoke(ctx context.Context, req provider.Request) (*provider.Completion, error) {
	f.mu.Lock()
	call := len(f.requests)
	f.requests = append(f.requests, req)
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}

	text, err := f.respond(call, req)
	if err != nil {
		return nil, err
	}
	tokens := 40 + call
	return &provider.Completion{Text: text, Latency: time.Millisecond, PromptTokens: &tokens}, nil
}

func (f *fakeClient) calls() []provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.Request(nil), f.requests...)
}

type harness struct {
	repo        *mysql.Repository
	queue       *service.QueueService
	experiments *service.ExperimentService
	expander    *service.ExpanderService
	providers   []config.ProviderConfig
}

func newHarness(t *testing.T, maxConcurrent int, providers ...string) *harness {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	repo, err := mysql.NewRepository("sqlite", fmt.Sprintf("file:disp_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(context.Background()))
	t.Cleanup(func() { _ = repo.Close() })

	h := &harness{
		repo:        repo,
		queue:       service.NewQueueService(repo, config.QueueConfig{MaxAttempts: 3, StaleAfter: 300, BackoffBase: 1, BackoffMax: 5}),
		experiments: service.NewExperimentService(repo),
		expander:    service.NewExpanderService(repo, instrument.NewDefaultRegistry(), encoding.NewDefaultRegistry(), providers),
	}
	for _, p := range providers {
		h.providers = append(h.providers, config.ProviderConfig{
			Name:              p,
			Kind:              "openai",
			RequestsPerSecond: 1000,
			MaxConcurrent:     maxConcurrent,
			MaxTokens:         10,
		})
	}
	return h
}

func (h *harness) experiment(t *testing.T, profiles int, longitudinal bool, instruments ...string) *model.Experiment {
	t.Helper()
	ctx := context.Background()

	set := &model.ProfileSet{Name: fmt.Sprintf("set-%d", profiles)}
	for i := 0; i < profiles; i++ {
		set.Profiles = append(set.Profiles, model.Profile{Index: i, Label: fmt.Sprintf("p%d", i), Traits: model.Traits{Openness: 50}})
	}
	_, err := service.NewProfileService(h.repo).CreateSet(ctx, set)
	require.NoError(t, err)

	var names []string
	for _, p := range h.providers {
		names = append(names, p.Name)
	}
	exp, _, err := h.expander.CreateAndExpand(ctx, &model.ExperimentDefinition{
		Name:         "dispatch",
		Description:  "dispatcher test",
		ProfileSet:   set.Name,
		Encodings:    []string{"ocean_direct"},
		Instruments:  instruments,
		Providers:    names,
		Longitudinal: longitudinal,
	})
	require.NoError(t, err)
	return exp
}

func (h *harness) start(t *testing.T, clients ...*fakeClient) *Dispatcher {
	t.Helper()

	clientMap := make(map[string]provider.Client)
	limiters := make(map[string]ratelimit.Limiter)
	for _, c := range clients {
		clientMap[c.name] = c
		limiters[c.name] = ratelimit.NewLocalLimiter(1000)
	}
	d, err := New(config.DispatcherConfig{PollInterval: 5, CallTimeout: 5, WorkerPrefix: "test"},
		h.providers, h.queue, instrument.NewDefaultRegistry(), encoding.NewDefaultRegistry(), clientMap, limiters)
	require.NoError(t, err)

	d.Start(context.Background())
	return d
}

func stop(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))
}

func (h *harness) waitSettled(t *testing.T, experimentID int64) model.StatusCounts {
	t.Helper()
	var counts model.StatusCounts
	require.Eventually(t, func() bool {
		var err error
		counts, err = h.repo.WorkUnit.CountByStatus(context.Background(), experimentID)
		return err == nil && counts.Total() > 0 && counts.Outstanding() == 0
	}, 10*time.Second, 10*time.Millisecond)
	return counts
}

func TestDispatcher_PHQ9EndToEnd(t *testing.T) {
	h := newHarness(t, 1, "fake")
	exp := h.experiment(t, 1, false, "phq9")

	answers := []string{"3", "2.", "I'd say 4", "1", "5", "2", "3", "4", "2"}
	client := &fakeClient{name: "fake", respond: func(call int, _ provider.Request) (string, error) {
		return answers[call%len(answers)], nil
	}}
	d := h.start(t, client)
	counts := h.waitSettled(t, exp.ID)
	stop(t, d)

	assert.EqualValues(t, 1, counts.Complete)

	units, err := h.repo.WorkUnit.ListByExperiment(context.Background(), exp.ID, "", 10, 0)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, 1, units[0].Attempts)
	assert.Contains(t, units[0].PromptSent, "Based on these personality traits")

	result, err := h.repo.Result.GetByWorkUnit(context.Background(), units[0].ID)
	require.NoError(t, err)
	require.NotNil(t, result.TotalScore)
	assert.InDelta(t, 26, *result.TotalScore, 1e-9)
	assert.Equal(t, 9, result.QuestionsAnswered)

	responses, err := h.repo.Result.ListResponses(context.Background(), units[0].ID)
	require.NoError(t, err)
	require.Len(t, responses, 9)
	assert.Nil(t, responses[0].SequencePosition)
	for _, req := range client.calls() {
		assert.Empty(t, req.Context)
	}

	finalized, err := h.experiments.FinalizeCompleted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, finalized)
}

func TestDispatcher_RetryThenSuccess(t *testing.T) {
	h := newHarness(t, 1, "fake")
	exp := h.experiment(t, 1, false, "phq3_a")

	client := &fakeClient{name: "fake", respond: func(call int, _ provider.Request) (string, error) {
		if call < 2 {
			return "", fmt.Errorf("upstream: %w", provider.ErrRateLimited)
		}
		return "4", nil
	}}
	d := h.start(t, client)
	counts := h.waitSettled(t, exp.ID)
	stop(t, d)

	assert.EqualValues(t, 1, counts.Complete)
	units, err := h.repo.WorkUnit.ListByExperiment(context.Background(), exp.ID, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, units[0].Attempts)

	// only the final attempt's responses are stored
	responses, err := h.repo.Result.ListResponses(context.Background(), units[0].ID)
	require.NoError(t, err)
	assert.Len(t, responses, 3)
}

func TestDispatcher_FailsAfterMaxAttempts(t *testing.T) {
	h := newHarness(t, 1, "fake")
	exp := h.experiment(t, 1, false, "phq3_a")

	client := &fakeClient{name: "fake", respond: func(int, provider.Request) (string, error) {
		return "", errors.New("connection reset")
	}}
	d := h.start(t, client)
	counts := h.waitSettled(t, exp.ID)
	stop(t, d)

	assert.EqualValues(t, 1, counts.Failed)
	assert.Len(t, client.calls(), 3)

	units, err := h.repo.WorkUnit.ListByExperiment(context.Background(), exp.ID, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, units[0].Attempts)
	assert.Contains(t, units[0].ErrorMessage, "connection reset")

	result, err := h.repo.Result.GetByWorkUnit(context.Background(), units[0].ID)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestDispatcher_LongitudinalCarriesConversation(t *testing.T) {
	h := newHarness(t, 1, "fake")
	exp := h.experiment(t, 1, true, "gad7")

	client := &fakeClient{name: "fake", respond: func(int, provider.Request) (string, error) {
		return "2", nil
	}}
	d := h.start(t, client)
	h.waitSettled(t, exp.ID)
	stop(t, d)

	calls := client.calls()
	require.Len(t, calls, 7)
	for i, req := range calls {
		require.Len(t, req.Context, 2*i)
		if i > 0 {
			assert.Equal(t, provider.RoleAssistant, req.Context[2*i-1].Role)
			assert.Equal(t, calls[i-1].Prompt, req.Context[2*i-2].Content)
		}
	}

	units, err := h.repo.WorkUnit.ListByExperiment(context.Background(), exp.ID, "", 10, 0)
	require.NoError(t, err)
	responses, err := h.repo.Result.ListResponses(context.Background(), units[0].ID)
	require.NoError(t, err)
	for i, r := range responses {
		require.NotNil(t, r.SequencePosition)
		assert.Equal(t, i+1, *r.SequencePosition)
		assert.NotNil(t, r.PromptTokens)
	}
}

func TestDispatcher_ProvidersAreIsolated(t *testing.T) {
	h := newHarness(t, 2, "healthy", "broken")
	exp := h.experiment(t, 3, false, "phq3_a")

	healthy := &fakeClient{name: "healthy", respond: func(int, provider.Request) (string, error) { return "3", nil }}
	broken := &fakeClient{name: "broken", respond: func(int, provider.Request) (string, error) {
		return "", errors.New("503 service unavailable")
	}}
	d := h.start(t, healthy, broken)
	counts := h.waitSettled(t, exp.ID)
	stop(t, d)

	assert.EqualValues(t, 3, counts.Complete)
	assert.EqualValues(t, 3, counts.Failed)

	complete, err := h.repo.WorkUnit.ListByExperiment(context.Background(), exp.ID, string(model.WorkUnitStatusComplete), 10, 0)
	require.NoError(t, err)
	for _, u := range complete {
		assert.Equal(t, "healthy", u.Provider)
	}
}

func TestDispatcher_RespectsMaxConcurrent(t *testing.T) {
	h := newHarness(t, 2, "fake")
	exp := h.experiment(t, 5, false, "phq3_a")

	client := &fakeClient{name: "fake", delay: 10 * time.Millisecond, respond: func(int, provider.Request) (string, error) {
		return "1", nil
	}}
	d := h.start(t, client)
	counts := h.waitSettled(t, exp.ID)
	stop(t, d)

	assert.EqualValues(t, 5, counts.Complete)
	client.mu.Lock()
	defer client.mu.Unlock()
	assert.LessOrEqual(t, client.peak, 2)
	assert.GreaterOrEqual(t, client.peak, 1)
}

func TestDispatcher_StopWithoutWork(t *testing.T) {
	h := newHarness(t, 1, "fake")
	client := &fakeClient{name: "fake", respond: func(int, provider.Request) (string, error) { return "1", nil }}

	d := h.start(t, client)
	time.Sleep(20 * time.Millisecond)
	stop(t, d)
	assert.Empty(t, client.calls())

	// stopping twice is a no-op
	assert.NoError(t, d.Stop(context.Background()))
}

func TestNew_RequiresClientAndLimiter(t *testing.T) {
	providers := []config.ProviderConfig{{Name: "fake", MaxConcurrent: 1}}
	_, err := New(config.DispatcherConfig{}, providers, nil, nil, nil, nil, nil)
	assert.Error(t, err)

	clients := map[string]provider.Client{"fake": &fakeClient{name: "fake"}}
	_, err = New(config.DispatcherConfig{}, providers, nil, nil, nil, clients, nil)
	assert.Error(t, err)
}
