package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS preferences (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    name                 TEXT NOT NULL,
    email                TEXT NOT NULL,
    phone                TEXT,
    company              TEXT,
    message              TEXT NOT NULL,
    calc_bill            TEXT,
    calc_waste           TEXT,
    calc_shifts          INTEGER,
    calc_solar           TEXT,
    calc_savings_yearly  TEXT,
    created_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_created ON leads(created_at);
`
