package station

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/petrolnearme/petrolnearme/internal/region"
)

// ErrUnknownRegion is returned for a directory query naming a region that
// is not configured.
var ErrUnknownRegion = errors.New("unknown region")

// Feature flag keys the service consults.
const (
	// FlagCachedOnlyDirectory suppresses remote fetches entirely; only
	// cached, persisted, or sample data is served.
	FlagCachedOnlyDirectory = "cached_only_directory"

	// FlagDisableSampleFallback turns the bundled sample dataset off so
	// source outages surface as errors instead.
	FlagDisableSampleFallback = "disable_sample_fallback"
)

// DefaultDirectoryPageSize is the page size used when a query omits one.
const DefaultDirectoryPageSize = 10

const cacheKey = "directory"

// FlagChecker evaluates feature flags.
type FlagChecker interface {
	IsEnabled(ctx context.Context, key string) bool
}

// Metrics records provider call and cache outcomes.
type Metrics interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// ServiceConfig holds configuration for the station service.
type ServiceConfig struct {
	// Provider is the upstream snapshot source. Required.
	Provider Provider

	// Cache is the injected snapshot cache. Required.
	Cache *Cache

	// Repository persists snapshots across restarts. Optional.
	Repository Repository

	// Flags evaluates feature flags. Optional.
	Flags FlagChecker

	// Metrics records provider and cache outcomes. Optional.
	Metrics Metrics

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long a snapshot stays fresh (default: 5 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL bounds how old an in-memory snapshot may be and
	// still be served after a failed refresh (default: 30 minutes).
	StaleIfErrorTTL time.Duration
}

// Service provides the station directory with caching and layered
// fallback: fresh cache, remote fetch, stale cache, persisted snapshot,
// bundled sample data.
type Service struct {
	provider        Provider
	cache           *Cache
	repo            Repository
	flags           FlagChecker
	metrics         Metrics
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
}

// NewService creates a new station service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		cache:           cfg.Cache,
		repo:            cfg.Repository,
		flags:           cfg.Flags,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
	}
}

// Snapshot returns the current directory snapshot, fetching when the cache
// has expired. Failures degrade through stale cache, persisted snapshot,
// and sample data before an error reaches the caller.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s.flags != nil && s.flags.IsEnabled(ctx, FlagCachedOnlyDirectory) {
		if snap, fetchedAt, ok := s.cache.Get(cacheKey); ok {
			// An expired snapshot is still served here, but its age must
			// be visible to clients, not passed off as live data.
			if snap.Source == SnapshotSourceLive && time.Since(fetchedAt) > s.cacheTTL {
				return snap.WithSource(SnapshotSourceStale), nil
			}
			return snap, nil
		}
		return s.fallback(ctx, nil)
	}

	s.recordCacheOutcome()

	snap, stale, err := s.cache.GetOrFetch(ctx, cacheKey, s.cacheTTL, s.fetchFresh)

	switch {
	case err == nil && snap != nil:
		return snap, nil

	case stale && snap != nil:
		if time.Since(snap.FetchedAt) > s.staleIfErrorTTL {
			s.logger.Warn().
				Time("fetched_at", snap.FetchedAt).
				Msg("cached snapshot too old to serve stale")
			return s.fallback(ctx, err)
		}
		s.logger.Warn().
			Err(err).
			Time("fetched_at", snap.FetchedAt).
			Msg("serving stale directory snapshot after failed refresh")
		return snap.WithSource(SnapshotSourceStale), nil

	default:
		return s.fallback(ctx, err)
	}
}

// Directory returns one filtered, paginated directory page.
func (s *Service) Directory(ctx context.Context, q DirectoryQuery) (*DirectoryPage, error) {
	if q.PageSize <= 0 {
		q.PageSize = DefaultDirectoryPageSize
	}
	if q.Page < 0 {
		q.Page = 0
	}

	var def *region.Definition
	if q.RegionID != "" {
		def = region.Get(q.RegionID)
		if def == nil {
			return nil, ErrUnknownRegion
		}
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	filtered := FilterStations(snap.Stations, def, q.Search)

	page := &DirectoryPage{
		Stations:   PageOf(filtered, q.Page, q.PageSize),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalCount: len(filtered),
		TotalPages: TotalPages(len(filtered), q.PageSize),
		Source:     snap.Source,
	}
	if snap.Source != SnapshotSourceLive {
		page.Warning = "showing cached or sample data"
	}

	return page, nil
}

// AllStations returns the complete unfiltered snapshot for bulk
// client-side filtering.
func (s *Service) AllStations(ctx context.Context) (*Snapshot, error) {
	return s.Snapshot(ctx)
}

// GetStation returns a single station by ID.
func (s *Service) GetStation(ctx context.Context, id string) (*Station, SnapshotSource, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, "", err
	}
	st := snap.FindByID(id)
	if st == nil {
		return nil, "", ErrStationNotFound
	}
	return st, snap.Source, nil
}

// Refresh forces a remote fetch and replaces the cached snapshot. Unlike
// Snapshot it does not degrade; the caller (admin endpoint, scheduled
// refresher) wants to know the fetch failed.
func (s *Service) Refresh(ctx context.Context) error {
	snap, err := s.fetchFresh(ctx)
	if err != nil {
		return err
	}
	s.cache.Set(cacheKey, snap)
	return nil
}

// InvalidateCache clears the cached snapshot.
func (s *Service) InvalidateCache() {
	s.cache.Invalidate(cacheKey)
}

// CacheStatus reports the current cache state for operational endpoints.
func (s *Service) CacheStatus() CacheStatus {
	snap, fetchedAt, ok := s.cache.Get(cacheKey)
	if !ok {
		return CacheStatus{}
	}

	now := time.Now()
	expiresAt := fetchedAt.Add(s.cacheTTL)
	return CacheStatus{
		HasData:      true,
		FetchedAt:    fetchedAt,
		ExpiresAt:    expiresAt,
		IsExpired:    now.After(expiresAt),
		StationCount: len(snap.Stations),
		Source:       snap.Source,
	}
}

// CacheStatus represents the current state of the snapshot cache.
type CacheStatus struct {
	HasData      bool
	FetchedAt    time.Time
	ExpiresAt    time.Time
	IsExpired    bool
	StationCount int
	Source       SnapshotSource
}

// fetchFresh fetches from the provider and writes through to the
// repository. Persistence failures are logged, not fatal; the snapshot is
// already in hand.
func (s *Service) fetchFresh(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	snap, err := s.provider.FetchSnapshot(ctx)
	if s.metrics != nil {
		s.metrics.RecordRequest("baserow", "fetch_snapshot", time.Since(start), err)
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch directory snapshot")
		return nil, err
	}

	if s.repo != nil {
		if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist directory snapshot")
		}
	}

	s.logger.Info().
		Int("stations", len(snap.Stations)).
		Msg("directory snapshot refreshed")

	return snap, nil
}

// fallback serves the persisted snapshot or the bundled sample dataset
// when no fetched data is available.
func (s *Service) fallback(ctx context.Context, fetchErr error) (*Snapshot, error) {
	if s.repo != nil {
		snap, err := s.repo.LatestSnapshot(ctx)
		if err == nil {
			s.logger.Warn().
				Time("fetched_at", snap.FetchedAt).
				Msg("serving persisted directory snapshot")
			return snap.WithSource(SnapshotSourceStale), nil
		}
		if !errors.Is(err, ErrNoSnapshot) {
			s.logger.Warn().Err(err).Msg("failed to load persisted snapshot")
		}
	}

	if s.flags == nil || !s.flags.IsEnabled(ctx, FlagDisableSampleFallback) {
		s.logger.Warn().Msg("serving bundled sample dataset")
		return SampleSnapshot(), nil
	}

	if fetchErr != nil {
		return nil, fetchErr
	}
	return nil, ErrSourceUnavailable
}

// recordCacheOutcome records a hit or miss against the current TTL before
// the lookup runs. A near-simultaneous refresh can skew one data point,
// which is acceptable for a counter.
func (s *Service) recordCacheOutcome() {
	if s.metrics == nil {
		return
	}
	if _, fetchedAt, ok := s.cache.Get(cacheKey); ok && time.Since(fetchedAt) <= s.cacheTTL {
		s.metrics.RecordCacheHit("baserow", "directory")
		return
	}
	s.metrics.RecordCacheMiss("baserow", "directory")
}
