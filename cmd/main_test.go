package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slurm-eta/internal/pkg/client/exec"
	"slurm-eta/internal/pkg/log"
	"slurm-eta/internal/pkg/options"
	"slurm-eta/internal/report"
	"slurm-eta/internal/snapshot"
)

type fakeSource struct {
	jobsErr error
}

func (fakeSource) Name() string { return "fake" }

func (fakeSource) Nodes(context.Context) ([]snapshot.NodeRecord, error) {
	return []snapshot.NodeRecord{
		{Name: "gpu01", Gres: "gpu:a100:4", Partition: "gpu*"},
		{Name: "gpu02", Gres: "gpu:a100:4", Partition: "gpu*"},
		{Name: "gpu03", Gres: "gpu:a100:4", Partition: "gpu*"},
	}, nil
}

func (fakeSource) NodeDetail(context.Context, string) (string, error) {
	return "", errors.New("unexpected detail lookup")
}

func (s fakeSource) Jobs(context.Context) ([]snapshot.JobRecord, error) {
	if s.jobsErr != nil {
		return nil, s.jobsErr
	}
	return []snapshot.JobRecord{
		{ID: "1", State: "R", Elapsed: "10:00", Limit: "1:00:00", Nodelist: "gpu01", Gres: "gpu:4"},
		{ID: "2", State: "R", Elapsed: "0:30", Limit: "2:00", Nodelist: "gpu02", Gres: "gpu:2"},
		{ID: "3", State: "PD", Elapsed: "0:00", Limit: "UNLIMITED", Nodelist: "(Resources)", Gres: "gpu:4"},
	}, nil
}

func runWith(t *testing.T, src snapshot.Source, o estimateOptions) (int, string, string) {
	t.Helper()
	if o.output == "" {
		o.output = "text"
	}
	var stdout, stderr bytes.Buffer
	reader := snapshot.NewReader(src, log.Discard())
	code := estimate(context.Background(), log.Discard(), reader, o, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestEstimateNodes(t *testing.T) {
	code, out, _ := runWith(t, fakeSource{}, estimateOptions{nodes: 1})
	assert.Equal(t, report.ExitAvailable, code)
	assert.Equal(t, "✅ 1 node(s) are available now.\n", out)

	code, out, _ = runWith(t, fakeSource{}, estimateOptions{nodes: 3, maxDetails: 10})
	assert.Equal(t, report.ExitAvailable, code)
	assert.Contains(t, out, "Estimated wait for 3 free node(s): 50m 0s")
	assert.Contains(t, out, "  - gpu02: 1m 30s\n")

	code, out, _ = runWith(t, fakeSource{}, estimateOptions{nodes: 4})
	assert.Equal(t, report.ExitInfeasible, code)
	assert.Contains(t, out, "❌")
}

func TestEstimateGPUs(t *testing.T) {
	code, out, _ := runWith(t, fakeSource{}, estimateOptions{gpus: 4})
	assert.Equal(t, report.ExitAvailable, code)
	assert.Equal(t, "✅ 4 GPU(s) are available now on gpu03.\n", out)

	code, out, _ = runWith(t, fakeSource{}, estimateOptions{gpus: 8})
	assert.Equal(t, report.ExitInfeasible, code)
	assert.Contains(t, out, "max per node 4")
}

func TestEstimateJSON(t *testing.T) {
	code, out, _ := runWith(t, fakeSource{}, estimateOptions{nodes: 3, output: "json", maxDetails: 1})
	assert.Equal(t, report.ExitAvailable, code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, float64(3000), doc["wait_seconds"])
	assert.Len(t, doc["details"], 1)
}

func TestEstimateFailures(t *testing.T) {
	code, out, errOut := runWith(t, fakeSource{}, estimateOptions{nodes: 1, partition: "debug"})
	assert.Equal(t, report.ExitNoNodes, code)
	assert.Contains(t, out, "No nodes found")
	assert.Empty(t, errOut)

	queryErr := &exec.QueryError{Command: "squeue", Stderr: "slurm_load_jobs error: Unable to contact slurm controller", Err: errors.New("exit status 1")}
	code, out, errOut = runWith(t, fakeSource{jobsErr: queryErr}, estimateOptions{gpus: 1})
	assert.Equal(t, report.ExitQueryFailed, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Unable to contact slurm controller")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, estimateOptions{nodes: 2}.validate())
	assert.NoError(t, estimateOptions{gpus: 2}.validate())
	assert.Error(t, estimateOptions{}.validate())
	assert.Error(t, estimateOptions{nodes: 1, gpus: 1}.validate())
	assert.Error(t, estimateOptions{nodes: -1}.validate())
	assert.Error(t, estimateOptions{gpus: 1, maxDetails: -1}.validate())
}

func TestRunRejectsBadFlags(t *testing.T) {
	assert.Equal(t, report.ExitQueryFailed, run([]string{"--n-nodes", "1", "--n-gpu", "2"}))
	assert.Equal(t, report.ExitQueryFailed, run([]string{"estimate"}))
	assert.Equal(t, report.ExitQueryFailed, run([]string{"--n-gpu", "1", "--output", "yaml"}))
	assert.Equal(t, report.ExitQueryFailed, run([]string{"--n-gpu", "0"}))
	assert.Equal(t, report.ExitQueryFailed, run([]string{"serve", "--no-such-flag"}))
}

func TestSourceFactory(t *testing.T) {
	f := newSourceFactory(log.Discard(), serveOptions{})
	src, err := f(options.Cluster{Name: "a", Source: options.SourceExec})
	require.NoError(t, err)
	assert.Equal(t, "exec", src.Name())

	src, err = f(options.Cluster{Name: "b", Source: options.SourceSlurmrest, Address: "127.0.0.1:39999"})
	require.NoError(t, err)
	assert.Equal(t, "slurmrest", src.Name())

	_, err = f(options.Cluster{Name: "c", Source: "ssh"})
	assert.Error(t, err)
}

func TestIsValidFilePath(t *testing.T) {
	assert.True(t, isValidFilePath("/var/log/slurm-eta.log"))
	assert.True(t, isValidFilePath("eta.log"))
	assert.False(t, isValidFilePath(""))
	assert.False(t, isValidFilePath("/var/log/"))
}
