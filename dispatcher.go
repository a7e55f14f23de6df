package permalink

import (
	"context"
	"path"
	"strings"
)

// Dispatch is the result of resolving a request path against the registry.
// Objects holds one slot per path segment, in segment order, with nil for
// segments no entry matched.
type Dispatch struct {
	// Path is the requested path as given.
	Path string
	// Parts are the non-empty path segments, query string and file
	// extension stripped.
	Parts []string
	// Objects are the resolved entries, one slot per part. Each linkable
	// claims at most one slot even when several segments carry its values.
	Objects []*Permalink
	// Found reports whether every segment resolved to an entry.
	Found bool
	// Redirect reports whether any resolved entry is not the current one of
	// its linkable. Only meaningful when Found is true.
	Redirect bool
	// RedirectPath is the canonical path built from the current values of
	// all resolved linkables, in segment order. Set only when Redirect is
	// true.
	RedirectPath string
}

// DispatchOption configures a dispatch call.
type DispatchOption func(*dispatchConfig)

type dispatchConfig struct {
	scope Scope
}

// DispatchScope restricts resolution to entries in the given scope.
func DispatchScope(s Scope) DispatchOption {
	return func(c *dispatchConfig) {
		c.scope = NormalizeScope(s)
	}
}

// Dispatch resolves an absolute request path into permalink entries and
// decides whether the client should be redirected to the canonical path.
// Resolution is read-only: one batched query over the segment values plus,
// only when a redirect is needed, one current lookup per resolved linkable.
func (s *Service) Dispatch(ctx context.Context, requestPath string, opts ...DispatchOption) (*Dispatch, error) {
	if !strings.HasPrefix(requestPath, "/") {
		return nil, ErrPathNotAbsolute
	}
	var cfg dispatchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Dispatch{
		Path:  requestPath,
		Parts: splitPath(requestPath),
	}
	d.Objects = make([]*Permalink, len(d.Parts))

	if err := s.resolve(ctx, d, cfg.scope); err != nil {
		return nil, err
	}

	d.Found = true
	for _, o := range d.Objects {
		if o == nil {
			d.Found = false
			break
		}
	}
	if !d.Found {
		return d, nil
	}

	for _, o := range d.Objects {
		if !o.Current {
			d.Redirect = true
			break
		}
	}
	if !d.Redirect {
		return d, nil
	}

	redirectPath, err := s.currentPath(ctx, d.Objects)
	if err != nil {
		return nil, err
	}
	d.RedirectPath = redirectPath
	return d, nil
}

// resolve places matching entries into the segment slots, scanning
// segments left to right: a segment takes the first unclaimed linkable
// holding its value, and each linkable claims at most one slot. Segment
// order, not store result order, decides the outcome, so a linkable whose
// values appear in several segments always claims the leftmost one.
func (s *Service) resolve(ctx context.Context, d *Dispatch, scope Scope) error {
	if len(d.Parts) == 0 {
		return nil
	}
	matches, err := s.store.Find(ctx, Query{Values: d.Parts, Scope: scope})
	if err != nil {
		return err
	}

	claimed := make(map[Ref]struct{}, len(matches))
	for i, part := range d.Parts {
		for _, m := range matches {
			if m.Value != part {
				continue
			}
			if _, done := claimed[m.Linkable]; done {
				continue
			}
			d.Objects[i] = m
			claimed[m.Linkable] = struct{}{}
			break
		}
	}
	return nil
}

// currentPath joins the current values of all resolved entries. An entry
// whose linkable has no recoverable current permalink keeps its requested
// value in place rather than failing the whole dispatch.
func (s *Service) currentPath(ctx context.Context, objects []*Permalink) (string, error) {
	parts := make([]string, len(objects))
	for i, o := range objects {
		cur, err := s.Current(ctx, o)
		if err != nil {
			return "", err
		}
		if cur == nil {
			cur = o
		}
		parts[i] = cur.Value
	}
	return "/" + strings.Join(parts, "/"), nil
}

// splitPath returns the non-empty segments of the path, with the query
// string and a trailing file extension stripped.
func splitPath(requestPath string) []string {
	if i := strings.IndexByte(requestPath, '?'); i >= 0 {
		requestPath = requestPath[:i]
	}
	if ext := path.Ext(requestPath); ext != "" {
		requestPath = strings.TrimSuffix(requestPath, ext)
	}

	var parts []string
	for _, part := range strings.Split(requestPath, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
