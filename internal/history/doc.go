// Package history records every render attempt in a SQLite ledger.
//
// Each row is one format of one soundbite: the run that produced it, where
// the file went, how long it is, and whether it failed. The `audiogram
// history` command reads the ledger back; nothing in a run depends on it.
package history
