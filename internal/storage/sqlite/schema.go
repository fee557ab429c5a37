package sqlite

// Schema contains the SQL statements to create the database schema for SQLite.
//
// The edges table is the shared resource of the whole system. The uniqueness
// constraint over (subject_id, object_id, relation_type) is the real guard
// against duplicate relationships — application-level existence checks are an
// optimization on top of it. The (object_id, subject_id) index supports the
// reverse lookups the mirror maintenance code performs on every write.
const Schema = `
-- People: profile data for graph members. Identity/authentication is external.
CREATE TABLE IF NOT EXISTS people (
    id TEXT PRIMARY KEY,
    first_name TEXT,
    last_name TEXT,
    email TEXT NOT NULL DEFAULT '',
    gender TEXT,
    bio TEXT,
    birthday TIMESTAMP,
    date_died TIMESTAMP,
    city_born TEXT,
    state_born TEXT,
    city_current TEXT,
    state_current TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Edges: directed relationship records. Every edge has a mirror row in the
-- opposite direction with the reciprocal type.
CREATE TABLE IF NOT EXISTS edges (
    id TEXT PRIMARY KEY,
    subject_id TEXT NOT NULL,
    object_id TEXT NOT NULL,
    relation_type TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    initiator_id TEXT NOT NULL,
    start_date TIMESTAMP,
    end_date TIMESTAMP,
    notes TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (subject_id, object_id, relation_type)
);

CREATE INDEX IF NOT EXISTS idx_edges_subject ON edges(subject_id);
CREATE INDEX IF NOT EXISTS idx_edges_reverse ON edges(object_id, subject_id);
CREATE INDEX IF NOT EXISTS idx_edges_status ON edges(status);
CREATE INDEX IF NOT EXISTS idx_edges_initiator ON edges(initiator_id);
`
