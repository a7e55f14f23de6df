package permalink

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Ref identifies the entity a permalink belongs to. Permalinks never own
// their linkable; the reference is a back-pointer only.
type Ref struct {
	Type string
	ID   uuid.UUID
}

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool {
	return r.Type == "" && r.ID == uuid.Nil
}

// String renders the reference as "type#id", the form used as dedup key
// during path dispatch.
func (r Ref) String() string {
	return fmt.Sprintf("%s#%s", r.Type, r.ID)
}

// Scope is the canonical, ordered list of "key:value" tokens that
// partitions the uniqueness namespace of permalink values. An empty scope
// means unscoped, which is distinct from every non-empty scope.
type Scope []string

// NewScope converts key/value qualifiers into canonical form. Tokens are
// sorted by key so that equal scopes always compare equal regardless of
// map iteration order.
func NewScope(kv map[string]string) Scope {
	if len(kv) == 0 {
		return Scope{}
	}
	s := make(Scope, 0, len(kv))
	for k, v := range kv {
		s = append(s, k+":"+v)
	}
	sort.Strings(s)
	return s
}

// NormalizeScope brings scope input into canonical form. Already-normalized
// lists pass through unchanged, so the function is idempotent; nil becomes
// the empty (unscoped) scope.
func NormalizeScope(s Scope) Scope {
	if s == nil {
		return Scope{}
	}
	return s
}

// Equal reports whether two scopes address the same namespace.
func (s Scope) Equal(other Scope) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Permalink is one historied slug value of a linkable entity. Within a
// scope, values are unique; per linkable and scope, exactly one entry is
// current at any committed state.
type Permalink struct {
	ID        uuid.UUID
	Value     string
	Scope     Scope
	Linkable  Ref
	Current   bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// persisted holds the value as of the last store round trip. Assigning
	// the same source text again must not re-increment against the entry
	// itself, so increments are driven from this snapshot, not from Value.
	persisted string
}

// New constructs an unsaved entry for the given linkable. New entries are
// current by default; persisting them demotes all siblings in the same
// scope.
func New(ref Ref, opts ...EntryOption) *Permalink {
	p := &Permalink{
		ID:       uuid.New(),
		Linkable: ref,
		Current:  true,
		Scope:    Scope{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EntryOption configures a new entry.
type EntryOption func(*Permalink)

// InScope places the entry into the given uniqueness scope.
func InScope(s Scope) EntryOption {
	return func(p *Permalink) {
		p.Scope = NormalizeScope(s)
	}
}

// InScopeMap is InScope for a key/value mapping.
func InScopeMap(kv map[string]string) EntryOption {
	return InScope(NewScope(kv))
}

// MarkCurrent flags the entry as the canonical one for its linkable and
// scope. Siblings are only demoted once the entry is persisted.
func (p *Permalink) MarkCurrent() {
	p.Current = true
}

// IsNew reports whether the entry has never been persisted.
func (p *Permalink) IsNew() bool {
	return p.persisted == ""
}

// PersistedValue returns the value as of the last successful store round
// trip, or "" for a new entry.
func (p *Permalink) PersistedValue() string {
	return p.persisted
}

// MarkPersisted records the current value as the persisted one. Store
// implementations call it after every successful read or write.
func (p *Permalink) MarkPersisted() {
	p.persisted = p.Value
}

// Validate checks the entry's own invariants: a non-blank value and a
// linkable reference.
func (p *Permalink) Validate() error {
	if p.Value == "" {
		return ErrBlankValue
	}
	if p.Linkable.IsZero() {
		return ErrMissingLinkable
	}
	return nil
}
