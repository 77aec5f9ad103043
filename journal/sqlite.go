package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(order_id, symbol, side, quantity, price, time, realized_pl)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.OrderID, t.Symbol, t.Side, t.Quantity, t.Price, t.Time, t.RealizedPL,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
