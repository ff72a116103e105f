// Package storage provides the ledger storage backends.
//
// SQLiteStorage works with the pure Go modernc.org/sqlite driver ("sqlite")
// or with github.com/mattn/go-sqlite3 ("sqlite3") when the binary is built
// with cgo. MemoryStorage is used in tests and when persistence is not
// wanted.
package storage
