// Package cached decorates a permalink.Store with a Redis-backed cache for
// current-entry lookups.
//
// Dispatching a path needs the current entry of every resolved linkable,
// which on a busy site is the same small set of lookups over and over. The
// decorator serves those from Redis and invalidates on every write through
// it, so it never serves a current entry older than the last local write;
// the TTL bounds staleness from writes that bypassed this process.
//
//	client, err := redisconn.Connect(ctx, cfg) // pkg/redis
//	store := cached.New(postgres.New(pool), cached.NewRedisCache(client))
//	svc := permalink.NewService(store)
package cached
