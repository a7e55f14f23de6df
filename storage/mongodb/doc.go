// Package mongodb provides a MongoDB-backed permalink.Store.
//
// Entries live in one collection with a unique compound index on the
// flattened scope and the value; the driver's duplicate key error is
// translated into permalink.ErrDuplicateValue, which is what lets the
// registry detect concurrent writers and recompute. Call EnsureIndexes once
// at startup before serving traffic. pkg/mongodb provides the database
// handle.
//
//	store := mongodb.New(db)
//	if err := store.EnsureIndexes(ctx); err != nil { ... }
//	svc := permalink.NewService(store)
package mongodb
