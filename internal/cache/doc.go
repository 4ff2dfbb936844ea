// Package cache is the bounded read cache for listing responses.
// Entries are keyed by a fingerprint of the canonical query, expire
// after a TTL, and are evicted least-recently-used when the entry or
// byte budget is exceeded. Concurrent lookups for the same key share
// one computation.
package cache
