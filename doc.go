// Package permalink maintains human-readable, historied URL slugs for
// arbitrary entities and resolves request paths back into them.
//
// A Permalink entry binds a URL-safe value to a linkable entity within an
// optional scope. Values are unique per scope; when a value is taken, the
// registry appends the first available number ("hey-joe", "hey-joe-2", ...)
// and reuses numbers freed by deletion. Per linkable and scope exactly one
// entry is current; older entries stay around so stale URLs keep resolving
// and can be redirected to the canonical path.
//
// # Registry
//
//	svc := permalink.NewService(store)
//	ref := permalink.Ref{Type: "asset", ID: assetID}
//
//	entry, err := svc.Create(ctx, ref, "Hey Joe!")
//	// entry.Value: "hey-joe"
//
// Renaming derives a new value and keeps the old entry as history:
//
//	err = svc.Assign(ctx, entry, "Something Else")
//
// # Dispatching
//
// Dispatch maps an N-segment request path to N entries and decides whether
// the client used a stale slug:
//
//	d, err := svc.Dispatch(ctx, "/something/pretty")
//	switch {
//	case !d.Found:
//		// 404
//	case d.Redirect:
//		// 301 to d.RedirectPath
//	default:
//		// 200, d.Objects holds the entries in segment order
//	}
//
// The mapping of dispatch results onto HTTP responses is left to the
// caller; this package owns no transport.
//
// # Storage
//
// Persistence is pluggable through the Store interface. The storage
// subpackages provide MongoDB, PostgreSQL, in-memory, and Redis-cached
// implementations; all of them enforce value uniqueness per scope, which
// closes the race between concurrent writers computing the same free
// value.
package permalink
