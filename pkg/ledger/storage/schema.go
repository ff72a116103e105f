package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the ledger schema.
const Schema = `
CREATE TABLE IF NOT EXISTS playback (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,

    -- Unix nanoseconds, so both drivers agree on the encoding.
    request_time INTEGER NOT NULL,
    recorded_time INTEGER NOT NULL,

    route TEXT NOT NULL,
    method TEXT NOT NULL,
    remote_addr TEXT,

    client_id INTEGER NOT NULL,
    message_id INTEGER NOT NULL,

    range_start INTEGER NOT NULL DEFAULT -1,
    range_end INTEGER NOT NULL DEFAULT -1,
    total_size INTEGER NOT NULL DEFAULT 0,

    status INTEGER NOT NULL,
    bytes_sent INTEGER NOT NULL DEFAULT 0,
    strategy TEXT,
    outcome TEXT NOT NULL,
    duration_ms INTEGER NOT NULL DEFAULT 0,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_playback_request_time ON playback(request_time);
CREATE INDEX IF NOT EXISTS idx_playback_client_id ON playback(client_id);
CREATE INDEX IF NOT EXISTS idx_playback_outcome ON playback(outcome);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// InsertSchemaVersion records the schema version if it is not present yet.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion returns the newest applied schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`

const insertRecord = `
INSERT INTO playback (
    id, request_id, request_time, recorded_time,
    route, method, remote_addr, client_id, message_id,
    range_start, range_end, total_size,
    status, bytes_sent, strategy, outcome, duration_ms, error
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const selectColumns = `
SELECT id, request_id, request_time, recorded_time,
    route, method, remote_addr, client_id, message_id,
    range_start, range_end, total_size,
    status, bytes_sent, strategy, outcome, duration_ms, error
FROM playback`
