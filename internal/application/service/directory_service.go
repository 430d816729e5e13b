package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/peopleops/hris-core/internal/application/port"
	"github.com/peopleops/hris-core/internal/domain/directory"
)

// DirectoryService serves directory snapshots to the resolvers. The source
// is read-only; the service only caches what the external sync provides.
type DirectoryService interface {
	// Snapshot returns the current directory snapshot, refreshing from the
	// source when the cached one has expired
	Snapshot(ctx context.Context) (*directory.Snapshot, error)

	// Invalidate drops the cached snapshot, forcing a reload on next use
	Invalidate()
}

type directoryServiceImpl struct {
	source port.DirectorySource
	logger Logger

	mu       sync.RWMutex
	snap     *directory.Snapshot
	loadedAt time.Time
	ttl      time.Duration
}

// DirectoryServiceOption configures the directory service
type DirectoryServiceOption func(*directoryServiceImpl)

// WithSnapshotTTL sets how long a cached snapshot is served before reload
func WithSnapshotTTL(ttl time.Duration) DirectoryServiceOption {
	return func(s *directoryServiceImpl) {
		s.ttl = ttl
	}
}

// NewDirectoryService creates a snapshot-caching directory service
func NewDirectoryService(source port.DirectorySource, logger Logger, opts ...DirectoryServiceOption) DirectoryService {
	s := &directoryServiceImpl{
		source: source,
		logger: logger,
		ttl:    5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *directoryServiceImpl) Snapshot(ctx context.Context) (*directory.Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	loadedAt := s.loadedAt
	s.mu.RUnlock()

	if snap != nil && time.Since(loadedAt) < s.ttl {
		return snap, nil
	}

	actors, err := s.source.LoadActors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load actors: %w", err)
	}
	units, err := s.source.LoadOrgUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("load org units: %w", err)
	}

	fresh := directory.NewSnapshot(actors, units)

	s.mu.Lock()
	s.snap = fresh
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("Directory snapshot refreshed",
		"actors", len(actors),
		"org_units", len(units),
	)
	return fresh, nil
}

func (s *directoryServiceImpl) Invalidate() {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
}
