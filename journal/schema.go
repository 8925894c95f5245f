package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	price REAL NOT NULL,
	shares REAL NOT NULL,
	cost_or_proceeds REAL NOT NULL,
	profit REAL NOT NULL,
	balance REAL NOT NULL,
	total_account_worth REAL NOT NULL,
	total_profit REAL NOT NULL,
	result TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_symbol_time ON trades(symbol, time);
`
