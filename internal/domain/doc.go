// Package domain contains the core model for roulette: communities, posts,
// the user's stored preferences and the session against a home instance.
//
// The domain is transport- and persistence-agnostic: it does not depend on the
// Lemmy wire format, net/http, SQLite or the filesystem. Infra adapters map
// into/from these types.
package domain
