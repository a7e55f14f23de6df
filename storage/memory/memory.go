package memory

import (
	"context"
	"regexp"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/permalink"
)

// Store is an in-memory permalink.Store. It enforces the same scope+value
// uniqueness as the persistent backends and is safe for concurrent use,
// which makes it the reference implementation for tests and single-process
// setups.
type Store struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*permalink.Permalink
}

// New creates an empty store.
func New() *Store {
	return &Store{entries: make(map[uuid.UUID]*permalink.Permalink)}
}

// Insert persists a new entry.
func (s *Store) Insert(ctx context.Context, p *permalink.Permalink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(p); err != nil {
		return err
	}
	s.entries[p.ID] = clone(p)
	p.MarkPersisted()
	return nil
}

// Update replaces a persisted entry.
func (s *Store) Update(ctx context.Context, p *permalink.Permalink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[p.ID]; !ok {
		return permalink.ErrNotFound
	}
	if err := s.checkUnique(p); err != nil {
		return err
	}
	s.entries[p.ID] = clone(p)
	p.MarkPersisted()
	return nil
}

// Delete removes an entry.
func (s *Store) Delete(ctx context.Context, p *permalink.Permalink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[p.ID]; !ok {
		return permalink.ErrNotFound
	}
	delete(s.entries, p.ID)
	return nil
}

// Find returns all entries matching the query.
func (s *Store) Find(ctx context.Context, q permalink.Query) ([]*permalink.Permalink, error) {
	patterns, err := compilePatterns(q.ValuePatterns)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	var result []*permalink.Permalink
	for _, e := range s.entries {
		if matches(q, patterns, e) {
			result = append(result, clone(e))
		}
	}
	s.mu.RUnlock()

	switch q.Sort {
	case permalink.NewestFirst:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		})
	case permalink.OldestFirst:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].UpdatedAt.Before(result[j].UpdatedAt)
		})
	}
	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

// FindOne returns the first match or permalink.ErrNotFound.
func (s *Store) FindOne(ctx context.Context, q permalink.Query) (*permalink.Permalink, error) {
	q.Limit = 1
	result, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, permalink.ErrNotFound
	}
	return result[0], nil
}

// UnsetCurrent demotes all current entries of the linkable within the
// scope except the given one. The sweep runs under the write lock, so no
// reader observes a half-demoted state.
func (s *Store) UnsetCurrent(ctx context.Context, ref permalink.Ref, scope permalink.Scope, exceptID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope = permalink.NormalizeScope(scope)
	for _, e := range s.entries {
		if e.ID == exceptID || e.Linkable != ref || !e.Current {
			continue
		}
		if !e.Scope.Equal(scope) {
			continue
		}
		e.Current = false
	}
	return nil
}

// checkUnique enforces value uniqueness per scope; callers hold the write
// lock.
func (s *Store) checkUnique(p *permalink.Permalink) error {
	for _, e := range s.entries {
		if e.ID != p.ID && e.Value == p.Value && e.Scope.Equal(permalink.NormalizeScope(p.Scope)) {
			return permalink.ErrDuplicateValue
		}
	}
	return nil
}

func matches(q permalink.Query, patterns []*regexp.Regexp, e *permalink.Permalink) bool {
	if q.Linkable != nil && e.Linkable != *q.Linkable {
		return false
	}
	if q.Value != "" && e.Value != q.Value {
		return false
	}
	if len(q.Values) > 0 && !slices.Contains(q.Values, e.Value) {
		return false
	}
	if len(patterns) > 0 {
		any := false
		for _, re := range patterns {
			if re.MatchString(e.Value) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	if q.Scope != nil && !e.Scope.Equal(q.Scope) {
		return false
	}
	if q.CurrentOnly && !e.Current {
		return false
	}
	if q.ExcludeID != uuid.Nil && e.ID == q.ExcludeID {
		return false
	}
	return true
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// clone isolates stored state from caller mutation.
func clone(p *permalink.Permalink) *permalink.Permalink {
	c := *p
	c.Scope = slices.Clone(p.Scope)
	c.MarkPersisted()
	return &c
}
