// Package api is the single point of HTTP access to the megaverse service.
//
// Ownership boundary:
// - request construction and candidate id injection
//
// - client-side rate limiting and retry on 429
//
// - goal/current map caches and their invalidation
//
// - per-entity create/delete operations and descriptor dispatch
//
// A Client assumes one logical caller; cache state is mutex-guarded so sharing it
// across goroutines stays consistent, but requests are not coordinated.
package api
