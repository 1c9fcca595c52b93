package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS clients (
    client_id            TEXT PRIMARY KEY,
    position             INTEGER NOT NULL,
    name                 TEXT NOT NULL DEFAULT '',
    ndis_number          TEXT NOT NULL DEFAULT '',
    support_level        TEXT NOT NULL DEFAULT '',
    hourly_rate          REAL NOT NULL DEFAULT 0,
    total_budget         REAL NOT NULL DEFAULT 0,
    balance              REAL NOT NULL DEFAULT 0,
    plan_end             TEXT NOT NULL DEFAULT '',
    hours_per_week       REAL NOT NULL DEFAULT 0,
    notes                TEXT NOT NULL DEFAULT '',
    saved_at             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS retired_ids (
    client_id            TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS meta (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clients_position ON clients(position);
`
