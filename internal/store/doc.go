// Package store provides the routing journal.
//
// Every decision taken through the gateway's timed entry points can be
// appended to a Store: which router decided, for which message, which
// connector won (if any), the URI handed to dispatch, and how long the
// decision took.
//
// SQLiteStore persists to a file using modernc.org/sqlite (pure Go, no cgo)
// in WAL mode. MockStore keeps decisions in memory for tests.
//
//	s, err := store.NewSQLiteStore("/var/lib/mokai/journal.db", logger)
//	...
//	recent, err := s.ListDecisions(ctx, store.DecisionFilter{UnroutableOnly: true})
package store
