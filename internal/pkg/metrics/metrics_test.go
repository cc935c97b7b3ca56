package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEstimate(t *testing.T) {
	before := testutil.ToFloat64(estimatesCounter.WithLabelValues("gpus", "wait"))
	RecordEstimate("gpus", "wait")
	RecordEstimate("gpus", "wait")
	assert.Equal(t, before+2, testutil.ToFloat64(estimatesCounter.WithLabelValues("gpus", "wait")))
}

func TestSetInventoryNodes(t *testing.T) {
	SetInventoryNodes("exec", 42)
	assert.Equal(t, float64(42), testutil.ToFloat64(inventoryNodesGauge.WithLabelValues("exec")))
}

func TestObserveQuery(t *testing.T) {
	ObserveQuery("squeue", 20*time.Millisecond, nil)
	ObserveQuery("squeue", time.Second, errors.New("exit status 1"))
	assert.Equal(t, 2, testutil.CollectAndCount(queryDurationHist))
	ObserveRequest("/api/v1/:cluster/availability/gpus", 200, time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(requestDurationHist))
}
