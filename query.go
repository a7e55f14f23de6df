package permalink

import (
	"regexp"

	"github.com/google/uuid"
)

// Order controls result ordering by update time.
type Order int

const (
	// Unordered leaves the store's natural order.
	Unordered Order = iota
	// NewestFirst sorts by update time, most recent first.
	NewestFirst
	// OldestFirst sorts by update time, oldest first.
	OldestFirst
)

// Query describes a filter over permalink entries. All set conditions
// combine with AND; the zero value matches everything. Store
// implementations translate it into their native filter representation.
type Query struct {
	// Linkable restricts to entries of one owner.
	Linkable *Ref
	// Value matches exactly.
	Value string
	// Values matches any of the given values (set membership).
	Values []string
	// ValuePatterns matches any of the given anchored regular expressions.
	ValuePatterns []string
	// Scope matches the canonical scope list exactly. nil means any scope;
	// use Scope{} to match unscoped entries only.
	Scope Scope
	// CurrentOnly restricts to current entries.
	CurrentOnly bool
	// ExcludeID drops the entry with the given id from the result.
	ExcludeID uuid.UUID
	// Sort orders the result by update time.
	Sort Order
	// Limit caps the number of results when positive.
	Limit int
}

// ForLinkable starts a query over all entries of one owner.
func ForLinkable(ref Ref) Query {
	return Query{Linkable: &ref}
}

// ForScope starts a query over all entries within a scope.
func ForScope(s Scope) Query {
	return Query{Scope: NormalizeScope(s)}
}

// InScope narrows the query to one scope.
func (q Query) InScope(s Scope) Query {
	q.Scope = NormalizeScope(s)
	return q
}

// OnlyCurrent narrows the query to current entries.
func (q Query) OnlyCurrent() Query {
	q.CurrentOnly = true
	return q
}

// Excluding drops the entry with the given id.
func (q Query) Excluding(id uuid.UUID) Query {
	q.ExcludeID = id
	return q
}

// OrderBy sets the result ordering.
func (q Query) OrderBy(o Order) Query {
	q.Sort = o
	return q
}

// WithLimit caps the result size.
func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

// ValuePattern builds the anchored expression matching a value and its
// numbered variants: "foo" matches "foo", "foo-2", "foo-17".
func ValuePattern(value string) string {
	return "^" + regexp.QuoteMeta(value) + `(-\d+)?$`
}
