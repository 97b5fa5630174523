package ogimet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/synop-etl/internal/domain"
	"github.com/couchcryptid/synop-etl/internal/observability"
)

// --- mock for cache tests ---

type countingSource struct {
	calls int
	text  string
	err   error
}

func (m *countingSource) FetchBulletin(_ context.Context, w domain.Window) (domain.Bulletin, error) {
	m.calls++
	if m.err != nil {
		return domain.Bulletin{}, m.err
	}
	return domain.Bulletin{Window: w, Text: m.text}, nil
}

func hourWindow(h int) domain.Window {
	t := time.Date(2024, 1, 15, h, 0, 0, 0, time.UTC)
	return domain.Window{Start: t, End: t}
}

// --- CachedSource tests ---

func TestCachedSource_Hit(t *testing.T) {
	inner := &countingSource{text: "AAXX"}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedSource(inner, 10, time.Hour, metrics)

	b1, err := cached.FetchBulletin(context.Background(), hourWindow(6))
	require.NoError(t, err)
	b2, err := cached.FetchBulletin(context.Background(), hourWindow(6))
	require.NoError(t, err)

	assert.Equal(t, b1, b2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchCache.WithLabelValues("miss")), 0)
}

func TestCachedSource_DifferentWindowsMiss(t *testing.T) {
	inner := &countingSource{text: "AAXX"}
	cached := NewCachedSource(inner, 10, time.Hour, observability.NewMetricsForTesting())

	_, _ = cached.FetchBulletin(context.Background(), hourWindow(6))
	_, _ = cached.FetchBulletin(context.Background(), hourWindow(9))

	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_EmptyNotCached(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, 10, time.Hour, observability.NewMetricsForTesting())

	_, _ = cached.FetchBulletin(context.Background(), hourWindow(6))
	_, _ = cached.FetchBulletin(context.Background(), hourWindow(6))

	assert.Equal(t, 2, inner.calls, "empty bulletins should be fetched again")
}

func TestCachedSource_ErrorNotCached(t *testing.T) {
	inner := &countingSource{err: errors.New("boom")}
	cached := NewCachedSource(inner, 10, time.Hour, observability.NewMetricsForTesting())

	_, err := cached.FetchBulletin(context.Background(), hourWindow(6))
	require.Error(t, err)
	_, err = cached.FetchBulletin(context.Background(), hourWindow(6))
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedSource_EvictsLeastRecentWindow(t *testing.T) {
	inner := &countingSource{text: "AAXX"}
	cached := NewCachedSource(inner, 2, time.Hour, observability.NewMetricsForTesting())
	ctx := context.Background()

	_, _ = cached.FetchBulletin(ctx, hourWindow(0))
	_, _ = cached.FetchBulletin(ctx, hourWindow(3))
	_, _ = cached.FetchBulletin(ctx, hourWindow(0)) // hit, 00Z is now most recent
	_, _ = cached.FetchBulletin(ctx, hourWindow(6)) // evicts 03Z
	require.Equal(t, 3, inner.calls)

	_, _ = cached.FetchBulletin(ctx, hourWindow(0))
	assert.Equal(t, 3, inner.calls, "00Z should still be cached")
	_, _ = cached.FetchBulletin(ctx, hourWindow(3))
	assert.Equal(t, 4, inner.calls, "03Z should have been evicted")
}

func TestCachedSource_EntryExpires(t *testing.T) {
	inner := &countingSource{text: "AAXX"}
	cached := NewCachedSource(inner, 10, 20*time.Millisecond, observability.NewMetricsForTesting())
	ctx := context.Background()

	_, _ = cached.FetchBulletin(ctx, hourWindow(6))
	_, _ = cached.FetchBulletin(ctx, hourWindow(6))
	require.Equal(t, 1, inner.calls)

	inner.text = "AAXX 42182"
	time.Sleep(50 * time.Millisecond)

	b, err := cached.FetchBulletin(ctx, hourWindow(6))
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "AAXX 42182", b.Text, "an expired window is refetched")
}
