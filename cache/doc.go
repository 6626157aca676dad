// Package cache provides a persistent translation cache backed by BadgerDB.
//
// Natural-language query translation is the slowest and least reliable step
// of hybrid search, so validated filters are cached keyed by the query text
// that produced them. Only filters that already passed validation are ever
// stored; a cache hit skips the model call entirely.
//
// Entries expire after a TTL so wording whose translation improves with a
// model upgrade is not pinned forever.
package cache
