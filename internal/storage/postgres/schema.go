// Package postgres provides the PostgreSQL implementation of the Kindred
// storage interfaces.
package postgres

// Schema contains the SQL statements to create the database schema for
// PostgreSQL. Mirrors the SQLite schema: the uniqueness constraint over
// (subject_id, object_id, relation_type) is the hard guard against duplicate
// relationships, and the (object_id, subject_id) index serves the reverse
// lookups used by mirror maintenance.
const Schema = `
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
