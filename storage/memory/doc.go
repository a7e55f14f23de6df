// Package memory provides an in-memory permalink.Store.
//
// The store keeps all entries in a mutex-guarded map and applies queries
// by predicate evaluation. It enforces the same scope+value uniqueness
// constraint as the persistent backends, which makes it a faithful drop-in
// for tests and small single-process deployments. State does not survive
// restarts.
package memory
