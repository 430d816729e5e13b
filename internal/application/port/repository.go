package port

import (
	"context"

	"github.com/peopleops/hris-core/internal/domain/authz"
	"github.com/peopleops/hris-core/internal/domain/directory"
	"github.com/peopleops/hris-core/internal/domain/routing"
)

// CaseFilter narrows a case listing. The store only promises that filtering
// by the computed visible-subject set is possible; scope logic itself stays
// in the resolver.
type CaseFilter struct {
	Resource   authz.Resource
	SubjectIDs []string
	Statuses   []routing.Status
	Limit      int
	Offset     int
}

// CaseRepository defines persistence operations for cases and their steps.
// Save enforces optimistic concurrency on the case version and returns
// routing.ErrConflict when a concurrent mutation won the race.
type CaseRepository interface {
	Create(ctx context.Context, c *routing.Case) error
	GetByID(ctx context.Context, id int64) (*routing.Case, error)
	Save(ctx context.Context, c *routing.Case) error
	List(ctx context.Context, filter CaseFilter) ([]*routing.Case, error)
}

// DirectorySource provides read-only directory data. The core never fetches
// by itself; callers snapshot these lists and pass them in.
type DirectorySource interface {
	LoadActors(ctx context.Context) ([]directory.Actor, error)
	LoadOrgUnits(ctx context.Context) ([]directory.OrgUnit, error)
}

// NotificationSink delivers a fire-and-forget notification to a user.
// Actual delivery is an external collaborator's concern.
type NotificationSink interface {
	Notify(ctx context.Context, userID, title, message, link string) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
