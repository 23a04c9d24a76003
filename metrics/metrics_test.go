package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryCountersStartAtZero(t *testing.T) {
	m := NewRegistry()
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "firelocal_puts_total 0")
}

func TestMultipleRegistriesDoNotCollide(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.Puts.Inc()
	b.Puts.Inc()
	b.Puts.Inc()

	reqA := httptest.NewRequest("GET", "/metrics", nil)
	recA := httptest.NewRecorder()
	a.Handler().ServeHTTP(recA, reqA)
	assert.Contains(t, recA.Body.String(), "firelocal_puts_total 1")

	reqB := httptest.NewRequest("GET", "/metrics", nil)
	recB := httptest.NewRecorder()
	b.Handler().ServeHTTP(recB, reqB)
	assert.Contains(t, recB.Body.String(), "firelocal_puts_total 2")
}

func TestIncrementingCountersAndGaugesDoesNotPanic(t *testing.T) {
	m := NewRegistry()
	m.Gets.Inc()
	m.GetHits.Inc()
	m.PermissionDenied.Inc()
	m.TxnAttempts.Inc()
	m.TxnCommits.Inc()
	m.TxnConflicts.Inc()
	m.TxnRetries.Inc()
	m.FlushesTotal.Inc()
	m.FlushDuration.Observe(0.01)
	m.CompactionsTotal.Inc()
	m.CompactionDuration.Observe(0.02)
	m.TombstonesDropped.Add(3)
	m.MemtableBytes.Set(1024)
	m.LiveSSTs.Set(2)
	m.ListenerQueues.WithLabelValues("sub-1").Set(5)
}
