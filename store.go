package permalink

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence collaborator of the registry. Implementations
// must enforce value uniqueness per scope: Insert and Update return
// ErrDuplicateValue when another entry in the same scope already holds the
// value. That constraint is what closes the check-then-act race between
// concurrent writers computing the same free value.
type Store interface {
	// Insert persists a new entry.
	Insert(ctx context.Context, p *Permalink) error

	// Update replaces a persisted entry. Returns ErrNotFound for unknown ids.
	Update(ctx context.Context, p *Permalink) error

	// Delete removes the entry. Returns ErrNotFound for unknown ids.
	Delete(ctx context.Context, p *Permalink) error

	// Find returns all entries matching the query.
	Find(ctx context.Context, q Query) ([]*Permalink, error)

	// FindOne returns the first entry matching the query, or ErrNotFound.
	FindOne(ctx context.Context, q Query) (*Permalink, error)

	// UnsetCurrent demotes every entry of the linkable within the given
	// scope except the one identified by exceptID. It runs as a single bulk
	// write; on stores without multi-document transactions there is a brief
	// window between the triggering save and the demotion in which two
	// current entries are visible.
	UnsetCurrent(ctx context.Context, ref Ref, scope Scope, exceptID uuid.UUID) error
}
