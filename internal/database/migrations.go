package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
var migrationsSQL = map[int]string{
	1: migrationV1Exports,
	2: migrationV2ExportBatchIndex,
}

// migrationV1Exports creates the export image store.
//
// One row per rendered month image. Rows sharing a batch_id were rendered
// by the same export request and are listed and revoked together.
const migrationV1Exports = `
CREATE TABLE IF NOT EXISTS exports (
    id TEXT PRIMARY KEY,
    batch_id TEXT NOT NULL,

    year INTEGER NOT NULL,
    month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),

    -- Comma-separated worker names in roster order
    workers TEXT NOT NULL,

    filename TEXT NOT NULL,
    png BLOB NOT NULL,
    size_bytes INTEGER NOT NULL,

    -- Fixed-width UTC timestamp so text comparison orders correctly
    created_at TEXT NOT NULL
);
`

const migrationV2ExportBatchIndex = `
CREATE INDEX IF NOT EXISTS idx_exports_batch
    ON exports(batch_id, year, month);

CREATE INDEX IF NOT EXISTS idx_exports_created
    ON exports(created_at);
`
