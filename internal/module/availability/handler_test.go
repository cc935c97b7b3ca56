package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slurm-eta/internal/estimator"
	"slurm-eta/internal/pkg/client/exec"
	"slurm-eta/internal/pkg/common/slurm"
	slurmtime "slurm-eta/internal/pkg/common/time"
	"slurm-eta/internal/pkg/log"
	"slurm-eta/internal/pkg/options"
	"slurm-eta/internal/snapshot"
)

type fakeSnapshots struct {
	snap *snapshot.Snapshot
	err  error
	got  snapshot.Options
}

func (f *fakeSnapshots) Read(_ context.Context, cluster string, opts snapshot.Options) (*snapshot.Snapshot, error) {
	f.got = opts
	if cluster != "hpc1" {
		return nil, fmt.Errorf("%w: %s", options.ErrUnknownCluster, cluster)
	}
	return f.snap, f.err
}

func running(id string, limit int64, gpus int, host string) estimator.RunningJob {
	return estimator.RunningJob{
		ID:          id,
		State:       slurm.JobRunning,
		Elapsed:     slurmtime.Finite(0),
		Limit:       slurmtime.Finite(limit),
		Hosts:       []string{host},
		GPUsPerNode: gpus,
	}
}

func newEngine(f *fakeSnapshots) *gin.Engine {
	gin.SetMode(gin.TestMode)
	rt := NewRouter(f, log.Discard())
	rt.now = func() time.Time { return time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC) }
	r := gin.New()
	rt.Register(r)
	return r
}

type envelope struct {
	Count    int    `json:"count"`
	Previous string `json:"previous"`
	Next     string `json:"next"`
	Detail   string `json:"detail"`
	Results  struct {
		Mode    string             `json:"mode"`
		Outcome string             `json:"outcome"`
		Wait    *int64             `json:"wait_seconds"`
		ETA     string             `json:"eta"`
		Reason  string             `json:"reason"`
		MaxGPUs int                `json:"max_gpus_per_node"`
		Details []estimator.Detail `json:"details"`
	} `json:"results"`
}

func get(t *testing.T, r *gin.Engine, target string) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func cluster() *fakeSnapshots {
	return &fakeSnapshots{snap: &snapshot.Snapshot{
		Inventory: estimator.NewNodeInventory(
			estimator.Node{Name: "n1", GPUs: 8},
			estimator.Node{Name: "n2", GPUs: 8},
			estimator.Node{Name: "n3", GPUs: 8},
		),
		Jobs: []estimator.RunningJob{
			running("1", 100, 8, "n1"),
			running("2", 600, 4, "n2"),
		},
	}}
}

func TestNodes(t *testing.T) {
	f := cluster()
	r := newEngine(f)

	code, env := get(t, r, "/api/v1/hpc1/availability/nodes?count=2&partition=gpu&exclude=n9&exclude=x[1-2]&completing=true")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "nodes", env.Results.Mode)
	assert.Equal(t, "wait", env.Results.Outcome)
	require.NotNil(t, env.Results.Wait)
	assert.Equal(t, int64(100), *env.Results.Wait)
	assert.Equal(t, "2026-10-15T08:01:40.000Z", env.Results.ETA)
	require.Len(t, env.Results.Details, 2)
	assert.Equal(t, "n3", env.Results.Details[0].Host)
	assert.Equal(t, "n1", env.Results.Details[1].Host)
	assert.Equal(t, snapshot.Options{Partition: "gpu", Exclude: []string{"n9", "x[1-2]"}, IncludeCompleting: true}, f.got)
}

func TestNodesPaging(t *testing.T) {
	r := newEngine(cluster())
	code, env := get(t, r, "/api/v1/hpc1/availability/nodes?count=3&paging=true&page=2&page_size=1")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, env.Count)
	require.Len(t, env.Results.Details, 1)
	assert.Equal(t, "n1", env.Results.Details[0].Host)
	assert.Contains(t, env.Previous, "page=1")
	assert.Contains(t, env.Next, "page=3")

	code, env = get(t, r, "/api/v1/hpc1/availability/nodes?count=3&paging=true&page=500000000000000001")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, env.Count)
	assert.Empty(t, env.Results.Details)
	assert.Contains(t, env.Previous, "page=1")
	assert.Empty(t, env.Next)
}

func TestGPUs(t *testing.T) {
	r := newEngine(cluster())

	code, env := get(t, r, "/api/v1/hpc1/availability/gpus?count=8")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "available", env.Results.Outcome)
	require.Len(t, env.Results.Details, 1)
	assert.Equal(t, "n3", env.Results.Details[0].Host)

	code, env = get(t, r, "/api/v1/hpc1/availability/gpus?count=16")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "infeasible", env.Results.Outcome)
	assert.Equal(t, "exceeds_node_capacity", env.Results.Reason)
	assert.Equal(t, 8, env.Results.MaxGPUs)
	assert.Nil(t, env.Results.Wait)
	assert.Empty(t, env.Results.ETA)
}

func TestBadRequests(t *testing.T) {
	r := newEngine(cluster())
	for _, target := range []string{
		"/api/v1/hpc1/availability/nodes",
		"/api/v1/hpc1/availability/nodes?count=abc",
		"/api/v1/hpc1/availability/gpus?count=0",
		"/api/v1/hpc1/availability/gpus?count=1&completing=maybe",
	} {
		code, env := get(t, r, target)
		assert.Equal(t, http.StatusBadRequest, code, target)
		assert.NotEmpty(t, env.Detail, target)
	}
}

func TestSnapshotErrors(t *testing.T) {
	f := cluster()
	r := newEngine(f)

	code, env := get(t, r, "/api/v1/hpc9/availability/nodes?count=1")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, env.Detail, "hpc9")

	f.err = fmt.Errorf("%w in partition %q", snapshot.ErrNoNodes, "gpu")
	code, _ = get(t, r, "/api/v1/hpc1/availability/nodes?count=1")
	assert.Equal(t, http.StatusNotFound, code)

	f.err = &exec.QueryError{Command: "squeue", Err: errors.New("exit status 1")}
	code, env = get(t, r, "/api/v1/hpc1/availability/gpus?count=1")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, env.Detail, "squeue")

	f.err = context.DeadlineExceeded
	code, _ = get(t, r, "/api/v1/hpc1/availability/gpus?count=1")
	assert.Equal(t, http.StatusGatewayTimeout, code)
}
