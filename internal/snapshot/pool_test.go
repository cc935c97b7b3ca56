package snapshot

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slurm-eta/internal/pkg/client/slurmrest"
	"slurm-eta/internal/pkg/options"
)

func TestPoolCreatesSourceOnce(t *testing.T) {
	reg := options.NewStaticRegistry([]options.Cluster{{Name: "hpc1", Source: options.SourceExec}})
	var created atomic.Int32
	factory := func(c options.Cluster) (Source, error) {
		created.Add(1)
		r, _ := newFakeReader()
		return r.src, nil
	}
	p := NewPool(reg, factory, func(s Source) *Reader { return NewReader(s, discard) })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.FetchOrCreate(context.Background(), "hpc1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), created.Load())

	snap, err := p.Read(context.Background(), "hpc1", Options{Partition: "gpu"})
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Inventory.Len())

	_, err = p.Read(context.Background(), "nope", Options{})
	assert.True(t, errors.Is(err, options.ErrUnknownCluster))
}

func TestReadKeyIgnoresExcludeOrder(t *testing.T) {
	a := readKey("c", Options{Exclude: []string{"b", "a"}})
	b := readKey("c", Options{Exclude: []string{"a", "b"}})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, readKey("c", Options{Exclude: []string{"a", "b"}, IncludeCompleting: true}))
}

func TestRestSource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/slurm/nodes", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("node") == "gpu02" {
			_, _ = io.WriteString(w, `{"results":[{"name":"gpu02","gpu":"(null)","cfg_tres":"cpu=64,gres/gpu=4"}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"results":[{"name":"gpu01","partition":["gpu*","debug"],"gpu":"gpu:8"},{"name":"gpu02","partition":["gpu*"],"gpu":"(null)"}]}`)
	})
	mux.HandleFunc("/api/v1/slurm/scheduling/jobs", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = io.WriteString(w, `{"count":2,"results":[{"jobid":"1","state":"R","time":"1:00","time_limit":"10:00","nodelist":"gpu01","tres_per_node":"gres/gpu:8"}]}`)
		default:
			_, _ = io.WriteString(w, `{"count":2,"results":[{"jobid":"2","state":"R","time":"2:00","time_limit":"10:00","nodelist":"gpu02","tres_per_node":"gres/gpu:1"}]}`)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := slurmrest.New(srv.Client(), time.Second, discard)
	src := NewRestSource(client, strings.TrimPrefix(srv.URL, "http://"))
	snap, err := NewReader(src, discard).Read(context.Background(), Options{})
	require.NoError(t, err)

	require.Equal(t, 2, snap.Inventory.Len())
	gpu02, _ := snap.Inventory.Get("gpu02")
	assert.Equal(t, 4, gpu02.GPUs)
	gpu01, _ := snap.Inventory.Get("gpu01")
	assert.True(t, gpu01.InPartition("debug"))

	require.Len(t, snap.Jobs, 2)
	assert.Equal(t, "2", snap.Jobs[1].ID)
	assert.Equal(t, 1, snap.Jobs[1].GPUsPerNode)
}
