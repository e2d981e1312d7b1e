// Package store holds the in-memory record collections and their mutations:
// issues, events, tickets, chat messages and signed-in sessions.
//
// Every store is an ordinary value created by its constructor and injected
// where it is needed; there are no package-level singletons.
//
// CONCURRENCY:
// Each store guards its collection with a sync.RWMutex. Mutations build a new
// slice and swap it in (copy-on-write), and every read hands out deep copies,
// so a caller never observes a half-applied mutation or aliases store state.
//
// TOTALITY:
// Mutations on an unknown id are no-ops reported through an ok=false result.
// They never return an error for that case. Only the TicketStore can fail,
// because it writes through to durable storage.
package store

import "github.com/rs/xid"

// newID returns a collision-resistant, time-sortable record id.
func newID() string {
	return xid.New().String()
}
