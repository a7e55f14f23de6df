package permalink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/permalink/pkg/slugify"
	"github.com/dmitrymomot/permalink/pkg/words"
)

// maxKeywords caps how many significant words feed a stopword-reduced value.
const maxKeywords = 10

// defaultRetryAttempts bounds the increment recomputation when concurrent
// writers race for the same value.
const defaultRetryAttempts = 3

// KeywordExtractor returns the significant words of a text in original
// order. pkg/words provides the default implementation.
type KeywordExtractor interface {
	Keywords(text string, max int) []string
}

// Service is the slug registry: it derives values from free text, keeps
// them collision-free within their scope, tracks which entry is current
// per linkable, and dispatches request paths back to entries.
type Service struct {
	store         Store
	words         KeywordExtractor
	defs          *definitions
	retryAttempts int
	clock         func() time.Time
	log           *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithKeywordExtractor replaces the default English stopword extractor.
func WithKeywordExtractor(e KeywordExtractor) Option {
	return func(s *Service) {
		s.words = e
	}
}

// WithRetryAttempts sets how often a save recomputes its value after a
// uniqueness conflict before giving up with ErrConflict.
func WithRetryAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retryAttempts = n
		}
	}
}

// WithLogger sets the logger for operational events such as value
// conflicts. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// withClock overrides time for tests.
func withClock(now func() time.Time) Option {
	return func(s *Service) {
		s.clock = now
	}
}

// NewService creates a registry backed by the given store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:         store,
		words:         words.New(),
		defs:          newDefinitions(),
		retryAttempts: defaultRetryAttempts,
		clock:         time.Now,
		log:           slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize turns free text into a URL-safe value. Unless keepStopwords is
// set, the text is first reduced to its significant words; a reduction
// that comes out blank falls back to the full text. Blank input yields "".
func (s *Service) Sanitize(text string, keepStopwords bool) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if !keepStopwords {
		text = s.reduce(text)
	}
	return slugify.Make(text)
}

// reduce drops stopwords from text, falling back to the original text when
// nothing significant remains.
func (s *Service) reduce(text string) string {
	clean := strings.Join(s.words.Keywords(text, maxKeywords), " ")
	if strings.TrimSpace(clean) == "" {
		return text
	}
	return clean
}

// Create derives a value from text and persists a new current entry for
// the linkable. Use InScope / InScopeMap options to partition uniqueness.
func (s *Service) Create(ctx context.Context, ref Ref, text string, opts ...EntryOption) (*Permalink, error) {
	p := New(ref, opts...)
	if err := s.Assign(ctx, p, text); err != nil {
		return nil, err
	}
	return p, nil
}

// Assign derives a fresh value for the entry from text and persists it.
// Assigning text that sanitizes to the entry's stored value is idempotent:
// the value stays put and no increment runs against the entry itself.
func (s *Service) Assign(ctx context.Context, p *Permalink, text string) error {
	if p.Linkable.IsZero() {
		return ErrMissingLinkable
	}
	if strings.TrimSpace(text) == "" {
		return ErrBlankValue
	}
	p.Scope = NormalizeScope(p.Scope)

	for range s.retryAttempts {
		// The sibling snapshot is cached per attempt only; a retry must see
		// fresh data, and nothing may be memoized beyond a single operation.
		op := newOpCache()

		if err := s.assignValue(ctx, p, text, op); err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}

		now := s.clock().UTC()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now

		var err error
		if p.IsNew() {
			err = s.store.Insert(ctx, p)
		} else {
			err = s.store.Update(ctx, p)
		}
		if errors.Is(err, ErrDuplicateValue) {
			// Lost the race, recompute against fresh data.
			s.log.DebugContext(ctx, "permalink value taken concurrently, recomputing",
				"value", p.Value, "linkable", p.Linkable.String())
			continue
		}
		if err != nil {
			return err
		}
		p.MarkPersisted()

		if p.Current {
			return s.store.UnsetCurrent(ctx, p.Linkable, p.Scope, p.ID)
		}
		return nil
	}

	s.log.WarnContext(ctx, "permalink retry budget exhausted",
		"linkable", p.Linkable.String(), "attempts", s.retryAttempts)
	return ErrConflict
}

// SetCurrent promotes a persisted entry to the current one of its linkable
// and scope, demoting all siblings.
func (s *Service) SetCurrent(ctx context.Context, p *Permalink) error {
	p.MarkCurrent()
	p.UpdatedAt = s.clock().UTC()
	if err := s.store.Update(ctx, p); err != nil {
		return err
	}
	p.MarkPersisted()
	return s.store.UnsetCurrent(ctx, p.Linkable, p.Scope, p.ID)
}

// Delete removes the entry. When the deleted entry was current, the most
// recently updated remaining entry of the linkable — across all of its
// scopes — is promoted; with no remainder the deletion is complete as is.
func (s *Service) Delete(ctx context.Context, p *Permalink) error {
	if err := s.store.Delete(ctx, p); err != nil {
		return err
	}
	if !p.Current {
		return nil
	}

	next, err := s.store.FindOne(ctx, ForLinkable(p.Linkable).OrderBy(NewestFirst).WithLimit(1))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.SetCurrent(ctx, next)
}

// Current resolves the current entry for the entry's linkable and scope.
// The entry itself is returned when it is current. Without a linkable
// reference, and when no sibling is current, there is no current entry and
// (nil, nil) is returned.
func (s *Service) Current(ctx context.Context, p *Permalink) (*Permalink, error) {
	if p.Current {
		return p, nil
	}
	if p.Linkable.IsZero() {
		return nil, nil
	}
	return s.CurrentFor(ctx, p.Linkable, p.Scope)
}

// CurrentFor resolves the current entry of a linkable within a scope, or
// (nil, nil) when none is current.
func (s *Service) CurrentFor(ctx context.Context, ref Ref, scope Scope) (*Permalink, error) {
	cur, err := s.store.FindOne(ctx, ForLinkable(ref).InScope(scope).OnlyCurrent())
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cur, nil
}

// Lookup returns the entry holding exactly the given value within the
// scope, or ErrNotFound. A nil scope matches any scope; pass Scope{} to
// look up unscoped entries only.
func (s *Service) Lookup(ctx context.Context, value string, scope Scope) (*Permalink, error) {
	return s.store.FindOne(ctx, Query{Value: value, Scope: scope})
}

// History returns all entries of a linkable ordered by update time,
// oldest first.
func (s *Service) History(ctx context.Context, ref Ref) ([]*Permalink, error) {
	return s.store.Find(ctx, ForLinkable(ref).OrderBy(OldestFirst))
}

// ForValue builds a query matching the bare and numbered forms of the
// sanitized text. Since sanitization may or may not drop stopwords
// depending on collisions at write time, both variants are matched. With
// doSanitize false, text is used as the pattern base verbatim.
func (s *Service) ForValue(text string, doSanitize bool) Query {
	if !doSanitize {
		return Query{ValuePatterns: []string{ValuePattern(text)}}
	}
	patterns := []string{ValuePattern(s.Sanitize(text, false))}
	if full := s.Sanitize(text, true); ValuePattern(full) != patterns[0] {
		patterns = append(patterns, ValuePattern(full))
	}
	return Query{ValuePatterns: patterns}
}

// assignValue computes the entry's value from text: collision-aware
// sanitization, then incrementing when the value actually changed relative
// to the persisted one.
func (s *Service) assignValue(ctx context.Context, p *Permalink, text string, op *opCache) error {
	candidate, err := s.sanitizeFor(ctx, p, text, op)
	if err != nil {
		return err
	}
	if candidate == "" {
		return ErrBlankValue
	}
	if !p.IsNew() && candidate == p.PersistedValue() {
		p.Value = candidate
		return nil
	}

	value, err := s.increment(ctx, p, candidate, op)
	if err != nil {
		return err
	}
	p.Value = value
	return nil
}

// sanitizeFor prefers the stopword-reduced form of text, but only when the
// reduction changed something, produced a non-blank token, and no sibling
// within the entry's scope already holds that token or a numbered variant
// of it. Everything else falls back to the full form.
func (s *Service) sanitizeFor(ctx context.Context, p *Permalink, text string, op *opCache) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if clean := s.reduce(text); clean != text {
		if candidate := slugify.Make(clean); candidate != "" {
			siblings, err := s.existing(ctx, p, candidate, op)
			if err != nil {
				return "", err
			}
			if len(siblings) == 0 {
				return candidate, nil
			}
		}
	}
	return slugify.Make(text), nil
}

// increment appends the first available number to the candidate if it is
// already in use. Numbering starts at 2, the bare form counts as 1, and
// numbers freed by deletion are reused.
func (s *Service) increment(ctx context.Context, p *Permalink, candidate string, op *opCache) (string, error) {
	siblings, err := s.existing(ctx, p, candidate, op)
	if err != nil {
		return "", err
	}
	if len(siblings) == 0 {
		return candidate, nil
	}

	taken := make(map[string]struct{}, len(siblings))
	for _, e := range siblings {
		taken[e.Value] = struct{}{}
	}
	if _, ok := taken[candidate]; !ok {
		// Only numbered variants exist; the bare form is free.
		return candidate, nil
	}
	for n := 2; ; n++ {
		desired := fmt.Sprintf("%s-%d", candidate, n)
		if _, ok := taken[desired]; !ok {
			return desired, nil
		}
	}
}

// existing returns the sibling entries holding the candidate value or a
// numbered variant of it within the entry's scope, excluding the entry
// itself. Results are cached in the per-operation cache.
func (s *Service) existing(ctx context.Context, p *Permalink, candidate string, op *opCache) ([]*Permalink, error) {
	if cached, ok := op.siblings[candidate]; ok {
		return cached, nil
	}
	q := Query{
		ValuePatterns: []string{ValuePattern(candidate)},
		Scope:         NormalizeScope(p.Scope),
		ExcludeID:     p.ID,
	}
	siblings, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	op.siblings[candidate] = siblings
	return siblings, nil
}

// opCache memoizes sibling lookups within a single registry operation.
// It never outlives the operation that created it.
type opCache struct {
	siblings map[string][]*Permalink
}

func newOpCache() *opCache {
	return &opCache{siblings: make(map[string][]*Permalink)}
}
