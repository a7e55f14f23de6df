package cached

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/permalink"
)

// ErrCacheMiss is returned by a Cache when a key is not present.
var ErrCacheMiss = errors.New("cached: cache miss")

// Cache is the minimal key/value interface the store caches through.
// RedisCache adapts go-redis to it; tests plug in a map.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

const (
	defaultTTL       = 5 * time.Minute
	defaultKeyPrefix = "permalink:current"
)

// Store decorates a permalink.Store with a cache for current-entry lookups,
// the query Dispatch issues per resolved linkable when building a redirect
// path. All writes invalidate the affected linkable's key, so a cached
// current entry is never older than the last write that went through this
// store. Other queries pass through uncached.
type Store struct {
	inner     permalink.Store
	cache     Cache
	ttl       time.Duration
	keyPrefix string
}

// Option configures a Store.
type Option func(*Store)

// WithTTL bounds how long a current entry may be served from cache.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithKeyPrefix overrides the cache key prefix, e.g. to separate
// applications sharing one Redis.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// New wraps the inner store with the cache.
func New(inner permalink.Store, cache Cache, opts ...Option) *Store {
	s := &Store{
		inner:     inner,
		cache:     cache,
		ttl:       defaultTTL,
		keyPrefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// payload is the cached shape of an entry.
type payload struct {
	ID           uuid.UUID       `json:"id"`
	Value        string          `json:"value"`
	Scope        permalink.Scope `json:"scope"`
	LinkableType string          `json:"linkable_type"`
	LinkableID   uuid.UUID       `json:"linkable_id"`
	Current      bool            `json:"current"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func encode(p *permalink.Permalink) ([]byte, error) {
	return json.Marshal(payload{
		ID:           p.ID,
		Value:        p.Value,
		Scope:        permalink.NormalizeScope(p.Scope),
		LinkableType: p.Linkable.Type,
		LinkableID:   p.Linkable.ID,
		Current:      p.Current,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	})
}

func decode(data []byte) (*permalink.Permalink, error) {
	var pl payload
	if err := json.Unmarshal(data, &pl); err != nil {
		return nil, err
	}
	p := &permalink.Permalink{
		ID:        pl.ID,
		Value:     pl.Value,
		Scope:     permalink.NormalizeScope(pl.Scope),
		Linkable:  permalink.Ref{Type: pl.LinkableType, ID: pl.LinkableID},
		Current:   pl.Current,
		CreatedAt: pl.CreatedAt,
		UpdatedAt: pl.UpdatedAt,
	}
	p.MarkPersisted()
	return p, nil
}

// key addresses the current entry of one linkable within one scope.
func (s *Store) key(ref permalink.Ref, scope permalink.Scope) string {
	return s.keyPrefix + ":" + ref.Type + ":" + ref.ID.String() + ":" + strings.Join(permalink.NormalizeScope(scope), "|")
}

// cacheable reports whether the query is exactly a current-entry lookup.
func cacheable(q permalink.Query) bool {
	return q.Linkable != nil && q.CurrentOnly && q.Scope != nil &&
		q.Value == "" && len(q.Values) == 0 && len(q.ValuePatterns) == 0 &&
		q.ExcludeID == uuid.Nil
}

// Insert persists a new entry and invalidates its linkable's cached
// current entry.
func (s *Store) Insert(ctx context.Context, p *permalink.Permalink) error {
	if err := s.inner.Insert(ctx, p); err != nil {
		return err
	}
	return s.invalidate(ctx, p)
}

// Update replaces a persisted entry and invalidates its linkable's cached
// current entry.
func (s *Store) Update(ctx context.Context, p *permalink.Permalink) error {
	if err := s.inner.Update(ctx, p); err != nil {
		return err
	}
	return s.invalidate(ctx, p)
}

// Delete removes an entry and invalidates its linkable's cached current
// entry.
func (s *Store) Delete(ctx context.Context, p *permalink.Permalink) error {
	if err := s.inner.Delete(ctx, p); err != nil {
		return err
	}
	return s.invalidate(ctx, p)
}

// Find passes through uncached.
func (s *Store) Find(ctx context.Context, q permalink.Query) ([]*permalink.Permalink, error) {
	return s.inner.Find(ctx, q)
}

// FindOne serves current-entry lookups from the cache when possible and
// fills the cache on a miss. Everything else passes through.
func (s *Store) FindOne(ctx context.Context, q permalink.Query) (*permalink.Permalink, error) {
	if !cacheable(q) {
		return s.inner.FindOne(ctx, q)
	}

	key := s.key(*q.Linkable, q.Scope)
	if data, err := s.cache.Get(ctx, key); err == nil {
		if p, err := decode(data); err == nil {
			return p, nil
		}
		// Undecodable payloads fall through to the store and get rewritten.
	}

	p, err := s.inner.FindOne(ctx, q)
	if err != nil {
		return nil, err
	}
	if data, err := encode(p); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// UnsetCurrent demotes siblings in the inner store and invalidates the
// linkable's cached current entry.
func (s *Store) UnsetCurrent(ctx context.Context, ref permalink.Ref, scope permalink.Scope, exceptID uuid.UUID) error {
	if err := s.inner.UnsetCurrent(ctx, ref, scope, exceptID); err != nil {
		return err
	}
	return s.cache.Del(ctx, s.key(ref, scope))
}

func (s *Store) invalidate(ctx context.Context, p *permalink.Permalink) error {
	return s.cache.Del(ctx, s.key(p.Linkable, p.Scope))
}
