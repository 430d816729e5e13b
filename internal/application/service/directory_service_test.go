package service

import (
	"context"
	"testing"
	"time"

	"github.com/peopleops/hris-core/internal/domain/directory"
)

type countingSource struct {
	loads  int
	actors []directory.Actor
	units  []directory.OrgUnit
}

func (s *countingSource) LoadActors(ctx context.Context) ([]directory.Actor, error) {
	s.loads++
	return s.actors, nil
}

func (s *countingSource) LoadOrgUnits(ctx context.Context) ([]directory.OrgUnit, error) {
	return s.units, nil
}

func TestDirectoryService_CachesSnapshot(t *testing.T) {
	source := &countingSource{
		actors: []directory.Actor{{ID: "emp-1", Role: directory.RoleEmployee, Status: directory.ActorStatusActive}},
	}
	svc := NewDirectoryService(source, noopLogger{}, WithSnapshotTTL(time.Minute))
	ctx := context.Background()

	first, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() unexpected error: %v", err)
	}
	second, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() unexpected error: %v", err)
	}

	if source.loads != 1 {
		t.Errorf("source loaded %d times, want 1 within TTL", source.loads)
	}
	if first != second {
		t.Error("cached call returned a different snapshot instance")
	}
}

func TestDirectoryService_InvalidateForcesReload(t *testing.T) {
	source := &countingSource{}
	svc := NewDirectoryService(source, noopLogger{}, WithSnapshotTTL(time.Minute))
	ctx := context.Background()

	if _, err := svc.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot() unexpected error: %v", err)
	}
	svc.Invalidate()
	if _, err := svc.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot() unexpected error: %v", err)
	}

	if source.loads != 2 {
		t.Errorf("source loaded %d times, want 2 after invalidation", source.loads)
	}
}
