package memory

// schemaVersionV1 is the current session-store schema.
const schemaVersionV1 = 1

// schemaV1 holds one envelope JSON document per session. The envelope is the
// unit of persistence: steps never update individual columns.
const schemaV1 = `
CREATE TABLE schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE sessions (
	session_id TEXT PRIMARY KEY,
	envelope   TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`
