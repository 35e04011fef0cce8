package store

// schema mirrors the columns of stack's pantry tables that are queried.
const schema = `
CREATE TABLE IF NOT EXISTS package_name (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS version (
    id INTEGER PRIMARY KEY,
    version TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS hackage_cabal (
    id INTEGER PRIMARY KEY,
    name INTEGER NOT NULL REFERENCES package_name(id),
    version INTEGER NOT NULL REFERENCES version(id),
    revision INTEGER NOT NULL,
    UNIQUE (name, version, revision)
);
`
