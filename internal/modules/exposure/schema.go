package exposure

// Schema is the DDL for the etf_holdings table in universe.db.
const Schema = `
CREATE TABLE IF NOT EXISTS etf_holdings (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    etf_name         TEXT NOT NULL,
    etf_code         TEXT NOT NULL DEFAULT '',
    constituent_name TEXT NOT NULL,
    weight_percent   REAL NOT NULL DEFAULT 0,
    category         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_etf_holdings_etf_name ON etf_holdings(etf_name);
`
