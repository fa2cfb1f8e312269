package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, interface{}) error {
	return errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("connection refused")
}

func (brokenCache) DeleteByPattern(context.Context, string) (int, error) {
	return 0, errors.New("connection refused")
}

func TestCacheServiceDisabledIsMiss(t *testing.T) {
	repo := newMemCache()
	svc := NewCacheService(repo, nil, 0, nil, false)

	svc.Set(context.Background(), "roster:snapshot", []string{"a"}, 0)
	var out []string
	assert.False(t, svc.Get(context.Background(), "roster:snapshot", &out))
	assert.Empty(t, repo.entries)
}

func TestCacheServiceRoundTripRecordsLookups(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemCache(), metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out []string
	assert.False(t, svc.Get(ctx, "roster:snapshot", &out))

	svc.Set(ctx, "roster:snapshot", []string{"North", "South"}, 0)
	require.True(t, svc.Get(ctx, "roster:snapshot", &out))
	assert.Equal(t, []string{"North", "South"}, out)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}

func TestCacheServiceInvalidateByPattern(t *testing.T) {
	repo := newMemCache()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()

	svc.Set(ctx, "roster:snapshot", 1, 0)
	svc.Set(ctx, "roster:grid:2024-06-02", 2, 0)
	svc.Set(ctx, "other:key", 3, 0)

	svc.Invalidate(ctx, "roster:*")

	assert.Len(t, repo.entries, 1)
	assert.Contains(t, repo.entries, "other:key")
}

func TestCacheServiceSwallowsBackendFailures(t *testing.T) {
	svc := NewCacheService(brokenCache{}, NewMetricsService(), time.Minute, nil, true)
	ctx := context.Background()

	var out int
	assert.False(t, svc.Get(ctx, "roster:snapshot", &out))
	assert.NotPanics(t, func() {
		svc.Set(ctx, "roster:snapshot", 1, 0)
		svc.Invalidate(ctx, "roster:*")
	})
}

func TestMetricsServiceNilIsSafe(t *testing.T) {
	var metrics *MetricsService
	assert.NotPanics(t, func() {
		metrics.ObserveHTTPRequest("GET", "/branches", 200, time.Millisecond)
		metrics.RecordRuleViolation(ruleBranchInUse)
		metrics.RecordLedgerWrite("assign", 1)
		metrics.RecordExport("csv", "completed")
	})
}

func TestMetricsServiceLedgerWritesIgnoreEmptyBatches(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordLedgerWrite("unassign_all", 0)
	metrics.RecordLedgerWrite("unassign_all", 3)

	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.ledgerWrites.WithLabelValues("unassign_all")))
}
