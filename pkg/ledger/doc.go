// Package ledger keeps a durable record of every media request the relay
// answers: which identifier was asked for, which byte window was served,
// how many bytes reached the client and how the transfer ended.
//
// The recorder subpackage writes records off the request path, storage
// provides SQLite and in-memory backends, retention prunes old records on
// a cron schedule and export renders query results as JSON or CSV.
package ledger
