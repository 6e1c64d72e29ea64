// Package service holds the analytics pipeline: feature engineering,
// segmentation, reward policy, churn prediction, bundling and insights.
package service

import (
	"sort"
	"time"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
)

// BuildCustomerFeatures aggregates raw transactions into one feature row
// per distinct customer. The reference date for ActiveDays is the maximum
// last purchase date across the batch; asOf is the explicit "today" used
// for Recency so runs are reproducible.
func BuildCustomerFeatures(txns []domain.Transaction, asOf time.Time) ([]domain.CustomerFeatures, error) {
	if len(txns) == 0 {
		return nil, &domain.ErrInvalidData{Column: "transactions", Reason: "empty input"}
	}

	type agg struct {
		monetary      float64
		frequency     int
		totalQuantity int
		products      map[string]bool
		visitDates    map[string]bool
		priceSum      float64
		first         time.Time
		last          time.Time
		mobile        string
	}

	byCustomer := make(map[string]*agg)
	for _, t := range txns {
		a, ok := byCustomer[t.CustomerID]
		if !ok {
			a = &agg{
				products:   make(map[string]bool),
				visitDates: make(map[string]bool),
				first:      t.PurchaseDate,
				last:       t.PurchaseDate,
				mobile:     t.MobileNumber,
			}
			byCustomer[t.CustomerID] = a
		}
		a.monetary += t.TotalAmount
		a.frequency++
		a.totalQuantity += t.Quantity
		a.products[t.ProductID] = true
		a.visitDates[t.PurchaseDate.Format("2006-01-02")] = true
		a.priceSum += t.PricePerUnit
		if t.PurchaseDate.Before(a.first) {
			a.first = t.PurchaseDate
		}
		if t.PurchaseDate.After(a.last) {
			a.last = t.PurchaseDate
		}
	}

	// Reference date: latest purchase across all customers in the batch.
	var reference time.Time
	for _, a := range byCustomer {
		if a.last.After(reference) {
			reference = a.last
		}
	}

	rows := make([]domain.CustomerFeatures, 0, len(byCustomer))
	for id, a := range byCustomer {
		activeDays := daysBetween(a.first, reference)
		if activeDays < 0 {
			activeDays = 0
		}

		gap := PurchaseGap(activeDays, len(a.visitDates))

		rows = append(rows, domain.CustomerFeatures{
			CustomerID:          id,
			Mobile:              a.mobile,
			Monetary:            a.monetary,
			Frequency:           a.frequency,
			TotalQuantity:       a.totalQuantity,
			NumUniqueProducts:   len(a.products),
			LastPurchaseDate:    a.last,
			AvgPricePerUnit:     a.priceSum / float64(a.frequency),
			StoreVisitFrequency: len(a.visitDates),
			MembershipStartDate: a.first,
			ActiveDays:          activeDays,
			AvgPurchaseGapDays:  gap,
			Recency:             daysBetween(a.last, asOf),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].CustomerID < rows[j].CustomerID })
	return rows, nil
}

// PurchaseGap is the guarded division behind AvgPurchaseGapDays: zero
// store visits falls back to the active-day span instead of dividing by
// zero.
func PurchaseGap(activeDays, visits int) float64 {
	if visits <= 0 {
		return float64(activeDays)
	}
	return float64(activeDays) / float64(visits)
}

// daysBetween returns whole days from a to b, comparing calendar dates.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
