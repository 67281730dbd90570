package station_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrolnearme/petrolnearme/internal/station"
)

type mockProvider struct {
	mu         sync.Mutex
	snapshot   *station.Snapshot
	err        error
	fetchCount atomic.Int32
}

func (m *mockProvider) FetchSnapshot(_ context.Context) (*station.Snapshot, error) {
	m.fetchCount.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

func (m *mockProvider) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

type stubFlags struct {
	enabled map[string]bool
}

func (f *stubFlags) IsEnabled(_ context.Context, key string) bool {
	return f.enabled[key]
}

func liveSnapshot() *station.Snapshot {
	return &station.Snapshot{
		Stations: []*station.Station{
			{ID: "1", Name: "Shell Frankston", Suburb: "Frankston", PriceSource: station.PriceSourceLive},
			{ID: "2", Name: "BP Coburg", Suburb: "Coburg", PriceSource: station.PriceSourceLive},
			{ID: "3", Name: "United Frankston", Suburb: "Frankston", PriceSource: station.PriceSourceLive},
		},
		FetchedAt: time.Now(),
		Source:    station.SnapshotSourceLive,
	}
}

func newTestService(p station.Provider, opts ...func(*station.ServiceConfig)) *station.Service {
	cfg := station.ServiceConfig{
		Provider: p,
		Cache:    station.NewCache(),
		Logger:   zerolog.Nop(),
		CacheTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return station.NewService(cfg)
}

func TestService_Directory_Live(t *testing.T) {
	provider := &mockProvider{snapshot: liveSnapshot()}
	svc := newTestService(provider)

	page, err := svc.Directory(context.Background(), station.DirectoryQuery{})
	require.NoError(t, err)

	assert.Len(t, page.Stations, 3)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, station.SnapshotSourceLive, page.Source)
	assert.Empty(t, page.Warning)

	// Second request inside the TTL hits the cache.
	_, err = svc.Directory(context.Background(), station.DirectoryQuery{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), provider.fetchCount.Load())
}

func TestService_Directory_RegionFilter(t *testing.T) {
	provider := &mockProvider{snapshot: liveSnapshot()}
	svc := newTestService(provider)

	page, err := svc.Directory(context.Background(), station.DirectoryQuery{RegionID: "southern"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	for _, st := range page.Stations {
		assert.Equal(t, "Frankston", st.Suburb)
	}
}

func TestService_Directory_UnknownRegion(t *testing.T) {
	svc := newTestService(&mockProvider{snapshot: liveSnapshot()})

	_, err := svc.Directory(context.Background(), station.DirectoryQuery{RegionID: "atlantis"})
	assert.ErrorIs(t, err, station.ErrUnknownRegion)
}

func TestService_ServesStaleAfterFailedRefresh(t *testing.T) {
	provider := &mockProvider{snapshot: liveSnapshot()}
	cache := station.NewCache()
	svc := newTestService(provider, func(cfg *station.ServiceConfig) {
		cfg.Cache = cache
		cfg.CacheTTL = 1 * time.Millisecond
		cfg.StaleIfErrorTTL = time.Hour
	})

	// Prime the cache, then break the provider and wait out the TTL.
	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	provider.fail(errors.New("upstream down"))
	time.Sleep(5 * time.Millisecond)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err, "stale data is a degraded success, not a failure")
	assert.Equal(t, station.SnapshotSourceStale, snap.Source)
	assert.Len(t, snap.Stations, 3)

	page, err := svc.Directory(context.Background(), station.DirectoryQuery{})
	require.NoError(t, err)
	assert.NotEmpty(t, page.Warning)
}

func TestService_FallsBackToPersistedSnapshot(t *testing.T) {
	provider := &mockProvider{}
	provider.fail(errors.New("upstream down"))

	repo := station.NewMemoryRepository()
	persisted := liveSnapshot()
	require.NoError(t, repo.SaveSnapshot(context.Background(), persisted))

	svc := newTestService(provider, func(cfg *station.ServiceConfig) {
		cfg.Repository = repo
	})

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, station.SnapshotSourceStale, snap.Source)
	assert.Len(t, snap.Stations, 3)
}

func TestService_FallsBackToSampleData(t *testing.T) {
	provider := &mockProvider{}
	provider.fail(errors.New("upstream down"))
	svc := newTestService(provider)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, station.SnapshotSourceSample, snap.Source)
	require.NotEmpty(t, snap.Stations)
	for _, st := range snap.Stations {
		assert.Equal(t, station.PriceSourceMock, st.PriceSource, "sample prices must be marked mock")
	}
}

func TestService_SampleFallbackDisabled(t *testing.T) {
	upstreamErr := errors.New("upstream down")
	provider := &mockProvider{}
	provider.fail(upstreamErr)

	svc := newTestService(provider, func(cfg *station.ServiceConfig) {
		cfg.Flags = &stubFlags{enabled: map[string]bool{station.FlagDisableSampleFallback: true}}
	})

	_, err := svc.Snapshot(context.Background())
	assert.ErrorIs(t, err, upstreamErr)
}

func TestService_CachedOnlyDirectory(t *testing.T) {
	provider := &mockProvider{snapshot: liveSnapshot()}
	svc := newTestService(provider, func(cfg *station.ServiceConfig) {
		cfg.Flags = &stubFlags{enabled: map[string]bool{station.FlagCachedOnlyDirectory: true}}
	})

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, station.SnapshotSourceSample, snap.Source)
	assert.Equal(t, int32(0), provider.fetchCount.Load(), "cached-only mode must not fetch")
}

func TestService_CachedOnlyDirectory_ExpiredSnapshotIsStale(t *testing.T) {
	provider := &mockProvider{snapshot: liveSnapshot()}
	flags := &stubFlags{enabled: map[string]bool{}}
	svc := newTestService(provider, func(cfg *station.ServiceConfig) {
		cfg.Flags = flags
		cfg.CacheTTL = 1 * time.Millisecond
	})

	// Prime the cache while fetching is allowed, then flip to cached-only
	// and wait out the TTL.
	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	flags.enabled[station.FlagCachedOnlyDirectory] = true
	time.Sleep(5 * time.Millisecond)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, station.SnapshotSourceStale, snap.Source, "expired snapshot must not claim to be live")
	assert.Equal(t, int32(1), provider.fetchCount.Load(), "cached-only mode must not fetch")

	page, err := svc.Directory(context.Background(), station.DirectoryQuery{})
	require.NoError(t, err)
	assert.NotEmpty(t, page.Warning)
}

func TestService_GetStation(t *testing.T) {
	svc := newTestService(&mockProvider{snapshot: liveSnapshot()})

	st, source, err := svc.GetStation(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "BP Coburg", st.Name)
	assert.Equal(t, station.SnapshotSourceLive, source)

	_, _, err = svc.GetStation(context.Background(), "missing")
	assert.ErrorIs(t, err, station.ErrStationNotFound)
}

func TestService_Refresh(t *testing.T) {
	provider := &mockProvider{snapshot: liveSnapshot()}
	svc := newTestService(provider)

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, int32(1), provider.fetchCount.Load())

	status := svc.CacheStatus()
	assert.True(t, status.HasData)
	assert.Equal(t, 3, status.StationCount)

	// A failed forced refresh surfaces the error and keeps the old cache.
	provider.fail(errors.New("upstream down"))
	assert.Error(t, svc.Refresh(context.Background()))
	assert.True(t, svc.CacheStatus().HasData)
}

func TestService_InvalidateCache(t *testing.T) {
	provider := &mockProvider{snapshot: liveSnapshot()}
	svc := newTestService(provider)

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.True(t, svc.CacheStatus().HasData)

	svc.InvalidateCache()
	assert.False(t, svc.CacheStatus().HasData)

	_, err = svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), provider.fetchCount.Load())
}

func TestService_WritesThroughToRepository(t *testing.T) {
	provider := &mockProvider{snapshot: liveSnapshot()}
	repo := station.NewMemoryRepository()
	svc := newTestService(provider, func(cfg *station.ServiceConfig) {
		cfg.Repository = repo
	})

	_, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	saved, err := repo.LatestSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, saved.Stations, 3)
}
