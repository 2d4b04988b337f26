package metrics

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("test_%d", seq)
}

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.httpRequestsTotal)
	assert.NotNil(t, collector.mutationsTotal)
	assert.NotNil(t, collector.resolvesTotal)
	assert.NotNil(t, collector.verifyMismatches)
}

func TestCollector_RecordHTTPRequest(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordHTTPRequest("GET", "/api/v1/extensions", 200, 10*time.Millisecond)
	collector.RecordHTTPRequest("POST", "/api/v1/extensions", 409, 5*time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(collector.httpRequestsTotal))
}

func TestCollector_RecordMutation(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordMutation("register", nil)
	collector.RecordMutation("register", errors.New("duplicate"))
	collector.RecordMutation("remove", nil)

	assert.Equal(t, 3, testutil.CollectAndCount(collector.mutationsTotal))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(collector.mutationsTotal.WithLabelValues("register", "error")))
}

func TestCollector_RecordResolve(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordResolve(true)
	collector.RecordResolve(true)
	collector.RecordResolve(false)

	assert.Equal(t, float64(2), testutil.ToFloat64(collector.resolvesTotal.WithLabelValues("bound")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.resolvesTotal.WithLabelValues("unbound")))
}

func TestCollector_RecordVerify(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordVerify(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(collector.verifyMismatches))

	collector.RecordVerify(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(collector.verifyMismatches))
}

func TestCollector_SetInventorySize(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.SetInventorySize(4, 17)
	assert.Equal(t, float64(4), testutil.ToFloat64(collector.extensionsRegistered))
	assert.Equal(t, float64(17), testutil.ToFloat64(collector.operationsBound))
}
