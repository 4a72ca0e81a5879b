package universe

// Schema is the DDL for the securities table in universe.db.
const Schema = `
CREATE TABLE IF NOT EXISTS securities (
    code                TEXT PRIMARY KEY,
    name                TEXT NOT NULL,
    category            TEXT NOT NULL DEFAULT 'domestic',
    current_price       REAL NOT NULL DEFAULT 0,
    dividend_manual     REAL NOT NULL DEFAULT 0,
    dividend_legacy     REAL NOT NULL DEFAULT 0,
    dividend_auto       REAL NOT NULL DEFAULT 0,
    ttm_yield           REAL NOT NULL DEFAULT 0,
    newly_listed_months INTEGER NOT NULL DEFAULT 0,
    dividend_history    TEXT NOT NULL DEFAULT '',
    ex_dividend_day     TEXT NOT NULL DEFAULT '',
    asset_type          TEXT NOT NULL DEFAULT '',
    updated_at          INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_securities_category ON securities(category);
CREATE INDEX IF NOT EXISTS idx_securities_name ON securities(name);
`
