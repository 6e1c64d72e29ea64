// Package dataset handles uploaded tabular data: CSV parsing with column
// validation, the per-session dataset store, and CSV export artifacts.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
)

// Required header columns of a transaction upload.
var transactionColumns = []string{
	"transaction_id", "customer_id", "product_id", "product_name",
	"purchase_date", "quantity", "price_per_unit", "total_amount",
	"mobile_number",
}

// Required header columns of a stock upload.
var stockColumns = []string{"product_name", "total_sold", "initial_stock"}

// Purchase dates arrive in whichever format the upstream export used.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"02/01/2006",
	time.RFC3339,
}

// ParseTransactions reads a transaction CSV. Header names are matched
// case-insensitively; missing columns or unparseable cells yield a typed
// data error naming the column and row.
func ParseTransactions(r io.Reader) ([]domain.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &domain.ErrInvalidData{Column: "header", Reason: "empty or unreadable file"}
	}
	idx, err := columnIndex(header, transactionColumns)
	if err != nil {
		return nil, err
	}

	var txns []domain.Transaction
	row := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &domain.ErrInvalidData{Column: "row", Row: row, Reason: err.Error()}
		}
		row++

		date, err := parseDate(rec[idx["purchase_date"]])
		if err != nil {
			return nil, &domain.ErrInvalidData{Column: "purchase_date", Row: row, Reason: err.Error()}
		}
		qty, err := parseInt(rec[idx["quantity"]])
		if err != nil {
			return nil, &domain.ErrInvalidData{Column: "quantity", Row: row, Reason: err.Error()}
		}
		price, err := parseFloat(rec[idx["price_per_unit"]])
		if err != nil {
			return nil, &domain.ErrInvalidData{Column: "price_per_unit", Row: row, Reason: err.Error()}
		}
		total, err := parseFloat(rec[idx["total_amount"]])
		if err != nil {
			return nil, &domain.ErrInvalidData{Column: "total_amount", Row: row, Reason: err.Error()}
		}

		txns = append(txns, domain.Transaction{
			TransactionID: strings.TrimSpace(rec[idx["transaction_id"]]),
			CustomerID:    strings.TrimSpace(rec[idx["customer_id"]]),
			ProductID:     strings.TrimSpace(rec[idx["product_id"]]),
			ProductName:   strings.TrimSpace(rec[idx["product_name"]]),
			PurchaseDate:  date,
			Quantity:      qty,
			PricePerUnit:  price,
			TotalAmount:   total,
			MobileNumber:  strings.TrimSpace(rec[idx["mobile_number"]]),
		})
	}

	if len(txns) == 0 {
		return nil, &domain.ErrInvalidData{Column: "rows", Reason: "no data rows"}
	}
	return txns, nil
}

// ParseStock reads a stock CSV with the same validation rules.
func ParseStock(r io.Reader) ([]domain.StockRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &domain.ErrInvalidData{Column: "header", Reason: "empty or unreadable file"}
	}
	idx, err := columnIndex(header, stockColumns)
	if err != nil {
		return nil, err
	}

	var records []domain.StockRecord
	row := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &domain.ErrInvalidData{Column: "row", Row: row, Reason: err.Error()}
		}
		row++

		sold, err := parseFloat(rec[idx["total_sold"]])
		if err != nil {
			return nil, &domain.ErrInvalidData{Column: "total_sold", Row: row, Reason: err.Error()}
		}
		initial, err := parseFloat(rec[idx["initial_stock"]])
		if err != nil {
			return nil, &domain.ErrInvalidData{Column: "initial_stock", Row: row, Reason: err.Error()}
		}

		records = append(records, domain.StockRecord{
			ProductName:  strings.TrimSpace(rec[idx["product_name"]]),
			TotalSold:    sold,
			InitialStock: initial,
		})
	}

	if len(records) == 0 {
		return nil, &domain.ErrInvalidData{Column: "rows", Reason: "no data rows"}
	}
	return records, nil
}

func columnIndex(header, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, &domain.ErrInvalidData{Column: col, Reason: "required column missing"}
		}
	}
	return idx, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return v, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}
