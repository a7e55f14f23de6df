// Package redis manages the Redis connection behind storage/cached.
//
// Configuration comes from the environment (see pkg/config) and Connect
// retries until the server answers a ping or the connect timeout runs out.
// The cache layout itself lives in storage/cached.
package redis
