package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	trades *csv.Writer
	file   *os.File
}

func NewCSV(path string) (*CSVJournal, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(file)
	if err := w.Write([]string{"order_id", "symbol", "side", "quantity", "price", "time", "realized_pl"}); err != nil {
		file.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return nil, err
	}

	return &CSVJournal{trades: w, file: file}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.OrderID,
		t.Symbol,
		t.Side,
		f(t.Quantity),
		f(t.Price),
		t.Time.Format(time.RFC3339),
		f(t.RealizedPL),
	})
	if err != nil {
		return err
	}

	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	return j.file.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
