package service_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/service"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func txn(id, customer, product string, date string, qty int, price, total float64) domain.Transaction {
	return domain.Transaction{
		TransactionID: id,
		CustomerID:    customer,
		ProductID:     product,
		ProductName:   product,
		PurchaseDate:  day(date),
		Quantity:      qty,
		PricePerUnit:  price,
		TotalAmount:   total,
		MobileNumber:  "+15551230000",
	}
}

func TestBuildCustomerFeatures_OneRowPerCustomer(t *testing.T) {
	txns := []domain.Transaction{
		txn("t1", "c1", "p1", "2025-01-01", 1, 10, 10),
		txn("t2", "c1", "p2", "2025-01-05", 2, 20, 40),
		txn("t3", "c2", "p1", "2025-01-03", 1, 10, 10),
	}

	rows, err := service.BuildCustomerFeatures(txns, day("2025-01-10"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	// Rows sorted by customer id.
	c1 := rows[0]
	if c1.CustomerID != "c1" {
		t.Fatalf("rows[0] = %s, want c1", c1.CustomerID)
	}
	if c1.Frequency != 2 {
		t.Errorf("frequency = %d, want 2 (one per transaction row)", c1.Frequency)
	}
	if c1.Monetary != 50 {
		t.Errorf("monetary = %v, want 50", c1.Monetary)
	}
	if c1.TotalQuantity != 3 {
		t.Errorf("total quantity = %d, want 3", c1.TotalQuantity)
	}
	if c1.NumUniqueProducts != 2 {
		t.Errorf("unique products = %d, want 2", c1.NumUniqueProducts)
	}
	if c1.AvgPricePerUnit != 15 {
		t.Errorf("avg price = %v, want 15", c1.AvgPricePerUnit)
	}
}

func TestBuildCustomerFeatures_RecencyUsesAsOf(t *testing.T) {
	txns := []domain.Transaction{
		txn("t1", "c1", "p1", "2025-01-01", 1, 10, 10),
	}

	rows, err := service.BuildCustomerFeatures(txns, day("2025-01-31"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rows[0].Recency != 30 {
		t.Errorf("recency = %d, want 30", rows[0].Recency)
	}
}

func TestBuildCustomerFeatures_ActiveDaysUsesBatchReference(t *testing.T) {
	// c1 stops buying on Jan 5 but the batch runs through Jan 9 (c2):
	// active days are measured against the batch-wide latest purchase.
	txns := []domain.Transaction{
		txn("t1", "c1", "p1", "2025-01-01", 1, 10, 10),
		txn("t2", "c1", "p1", "2025-01-05", 1, 10, 10),
		txn("t3", "c2", "p1", "2025-01-09", 1, 10, 10),
	}

	rows, err := service.BuildCustomerFeatures(txns, day("2025-01-20"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rows[0].ActiveDays != 8 {
		t.Errorf("c1 active days = %d, want 8", rows[0].ActiveDays)
	}
	if rows[1].ActiveDays != 0 {
		t.Errorf("c2 active days = %d, want 0", rows[1].ActiveDays)
	}
}

func TestBuildCustomerFeatures_PurchaseGap(t *testing.T) {
	// 2 distinct visit dates over 10 active days: gap = 5.
	txns := []domain.Transaction{
		txn("t1", "c1", "p1", "2025-01-01", 1, 10, 10),
		txn("t2", "c1", "p1", "2025-01-11", 1, 10, 10),
	}

	rows, err := service.BuildCustomerFeatures(txns, day("2025-01-11"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if math.Abs(rows[0].AvgPurchaseGapDays-5.0) > 1e-9 {
		t.Errorf("avg purchase gap = %v, want 5.0", rows[0].AvgPurchaseGapDays)
	}
}

func TestPurchaseGap(t *testing.T) {
	tests := []struct {
		name       string
		activeDays int
		visits     int
		want       float64
	}{
		{"two visits over ten days", 10, 2, 5},
		{"single visit", 7, 1, 7},
		{"zero visits falls back to span", 10, 0, 10},
		{"negative visits falls back to span", 10, -1, 10},
		{"zero everything", 0, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := service.PurchaseGap(tc.activeDays, tc.visits); got != tc.want {
				t.Errorf("PurchaseGap(%d, %d) = %v, want %v", tc.activeDays, tc.visits, got, tc.want)
			}
		})
	}
}

func TestBuildCustomerFeatures_SingleDayCustomer(t *testing.T) {
	txns := []domain.Transaction{
		txn("t1", "c1", "p1", "2025-01-01", 1, 10, 10),
	}

	rows, err := service.BuildCustomerFeatures(txns, day("2025-01-01"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rows[0].ActiveDays != 0 {
		t.Errorf("active days = %d, want 0", rows[0].ActiveDays)
	}
	if rows[0].AvgPurchaseGapDays != 0 {
		t.Errorf("avg purchase gap = %v, want 0", rows[0].AvgPurchaseGapDays)
	}
}

func TestBuildCustomerFeatures_EmptyInput(t *testing.T) {
	_, err := service.BuildCustomerFeatures(nil, time.Now())
	var invalid *domain.ErrInvalidData
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidData, got %v", err)
	}
}
