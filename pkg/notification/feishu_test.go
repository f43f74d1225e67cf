package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendExperimentFinished(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewFeishuNotifier(srv.URL).SendExperimentFinished(context.Background(), &ExperimentFinished{
		ExperimentID: 7,
		Number:       3,
		Name:         "baseline",
		Complete:     10,
		Failed:       2,
		FinishedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "interactive", got["msg_type"])
	header := got["card"].(map[string]interface{})["header"].(map[string]interface{})
	assert.Equal(t, "orange", header["template"])
	assert.Equal(t, "Experiment #3 finished", header["title"].(map[string]interface{})["content"])
}

func TestSendExperimentFinished_Disabled(t *testing.T) {
	assert.NoError(t, NewFeishuNotifier("").SendExperimentFinished(context.Background(), &ExperimentFinished{}))
}

func TestSendExperimentFinished_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewFeishuNotifier(srv.URL).SendExperimentFinished(context.Background(), &ExperimentFinished{FinishedAt: time.Now()})
	assert.Error(t, err)
}
