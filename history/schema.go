package history

// Schema for the revision journal. One row per distinct document state.
const Schema = `
CREATE TABLE IF NOT EXISTS revisions (
    id         TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    html       TEXT NOT NULL,
    hash       TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_revisions_session
    ON revisions(session_id, created_at);

CREATE INDEX IF NOT EXISTS idx_revisions_hash
    ON revisions(session_id, hash);
`
