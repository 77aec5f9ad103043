package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	order_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	time DATETIME NOT NULL,
	realized_pl REAL NOT NULL
);
`
