package permalink

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Linkable is an entity that carries a permalink. Implementations expose a
// stable identity and the attribute values that feed the slug.
type Linkable interface {
	// LinkableType names the entity type, e.g. "asset".
	LinkableType() string
	// LinkableID is the stable identity within the type.
	LinkableID() uuid.UUID
	// PermalinkAttribute returns the named attribute's current text.
	PermalinkAttribute(name string) string
}

// RefOf builds the stored back-reference for a linkable.
func RefOf(l Linkable) Ref {
	return Ref{Type: l.LinkableType(), ID: l.LinkableID()}
}

// ScopeSource derives one scope value from the linkable at sync time, e.g.
// its tenant id.
type ScopeSource func(l Linkable) string

// Definition declares, per linkable type, which attributes feed the slug
// and how the uniqueness scope is derived. It replaces configuration that
// would otherwise live on the entity type itself.
type Definition struct {
	// Attributes are the attribute names whose values are joined with a
	// space to form the slug source text, in order.
	Attributes []string
	// Scope derives the entry's scope from the linkable, keyed by scope key.
	Scope map[string]ScopeSource
	// Transient disables the stored history: Sync only derives the value
	// without persisting an entry.
	Transient bool
}

// definitions is the per-type registry of Definitions.
type definitions struct {
	mu     sync.RWMutex
	byType map[string]Definition
}

func newDefinitions() *definitions {
	return &definitions{byType: make(map[string]Definition)}
}

// Define registers the permalink definition of a linkable type. A
// definition without attributes is rejected with ErrNotConfigured.
func (s *Service) Define(linkableType string, def Definition) error {
	if linkableType == "" || len(def.Attributes) == 0 {
		return ErrNotConfigured
	}
	s.defs.mu.Lock()
	defer s.defs.mu.Unlock()
	s.defs.byType[linkableType] = def
	return nil
}

func (s *Service) definition(linkableType string) (Definition, error) {
	s.defs.mu.RLock()
	defer s.defs.mu.RUnlock()
	def, ok := s.defs.byType[linkableType]
	if !ok {
		return Definition{}, ErrNotConfigured
	}
	return def, nil
}

// Sync derives the owner's slug text from its defined attributes and
// brings the registry up to date: a historical entry whose value matches
// the derived text is promoted back to current, otherwise a new current
// entry is created. The caller decides when to sync, typically after the
// tracked attributes changed.
//
// For Transient definitions no entry is persisted; the returned entry only
// carries the derived value.
func (s *Service) Sync(ctx context.Context, owner Linkable) (*Permalink, error) {
	def, err := s.definition(owner.LinkableType())
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(def.Attributes))
	for _, attr := range def.Attributes {
		values = append(values, owner.PermalinkAttribute(attr))
	}
	text := strings.TrimSpace(strings.Join(values, " "))
	if text == "" {
		return nil, ErrBlankValue
	}

	ref := RefOf(owner)
	scope := scopeFrom(def, owner)

	if def.Transient {
		value := s.Sanitize(text, false)
		if value == "" {
			return nil, ErrBlankValue
		}
		p := New(ref, InScope(scope))
		p.Value = value
		return p, nil
	}

	// Reuse the historical entry this text re-derives to, if any, so that
	// renaming back and forth flips between existing entries instead of
	// incrementing new ones.
	q := s.ForValue(text, true).InScope(scope)
	q.Linkable = &ref
	p, err := s.store.FindOne(ctx, q)
	switch {
	case err == nil:
		p.MarkCurrent()
	case errors.Is(err, ErrNotFound):
		p = New(ref, InScope(scope))
	default:
		return nil, err
	}

	if err := s.Assign(ctx, p, text); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteAllFor removes every entry of the linkable without promoting a
// successor. It is the cascade used when the owner itself is destroyed.
func (s *Service) DeleteAllFor(ctx context.Context, ref Ref) error {
	entries, err := s.store.Find(ctx, ForLinkable(ref))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.store.Delete(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func scopeFrom(def Definition, owner Linkable) Scope {
	if len(def.Scope) == 0 {
		return Scope{}
	}
	kv := make(map[string]string, len(def.Scope))
	for key, source := range def.Scope {
		kv[key] = source(owner)
	}
	return NewScope(kv)
}
