package domain

import (
	"math"
	"time"
)

// Transaction is one raw purchase row from an uploaded dataset.
// CustomerID is canonicalized to a trimmed string at ingestion so lookups
// never compare mixed representations of the same id.
type Transaction struct {
	TransactionID string    `json:"transaction_id"`
	CustomerID    string    `json:"customer_id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	PurchaseDate  time.Time `json:"purchase_date"`
	Quantity      int       `json:"quantity"`
	PricePerUnit  float64   `json:"price_per_unit"`
	TotalAmount   float64   `json:"total_amount"`
	MobileNumber  string    `json:"mobile_number"`
}

// StockRecord is one row of the stock table used for dead-stock detection.
type StockRecord struct {
	ProductName  string  `json:"product_name"`
	TotalSold    float64 `json:"total_sold"`
	InitialStock float64 `json:"initial_stock"`
}

// SoldRatio returns sold/initial. Initial stock of zero yields +Inf so a
// never-stocked product is not flagged as dead.
func (s StockRecord) SoldRatio() float64 {
	if s.InitialStock <= 0 {
		return math.Inf(1)
	}
	return s.TotalSold / s.InitialStock
}

// Dataset is one uploaded transaction table plus its optional stock table,
// held per upload (keyed by ID) instead of as process-wide state.
type Dataset struct {
	ID           string        `json:"id"`
	Transactions []Transaction `json:"-"`
	Stock        []StockRecord `json:"-"`
	UploadedAt   time.Time     `json:"uploaded_at"`
}

// DatasetSummary is returned after an upload.
type DatasetSummary struct {
	DatasetID string    `json:"dataset_id"`
	Rows      int       `json:"rows"`
	Customers int       `json:"customers"`
	Products  int       `json:"products"`
	CreatedAt time.Time `json:"created_at"`
}
