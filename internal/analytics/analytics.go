// Package analytics computes spending rollups over classified transactions.
// All money math uses decimals; floats appear only in derived ratios.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/coinsort/internal/merchant"
	"github.com/Veraticus/coinsort/internal/model"
)

// CategoryTotal aggregates debit spending for one category.
type CategoryTotal struct {
	Category   model.Category
	Total      decimal.Decimal
	Count      int
	Percentage float64
}

// MerchantTotal aggregates debit spending for one extracted merchant.
type MerchantTotal struct {
	Merchant string
	Category model.Category
	Total    decimal.Decimal
	Count    int
}

// DailySpending is one day's activity.
type DailySpending struct {
	Date     time.Time
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

// MonthlySpending is one calendar month's activity.
type MonthlySpending struct {
	Year             int
	Month            time.Month
	Income           decimal.Decimal
	Expenses         decimal.Decimal
	TransactionCount int
}

// Summary is the headline view of a statement.
type Summary struct {
	Start              time.Time
	End                time.Time
	TotalIncome        decimal.Decimal
	TotalExpenses      decimal.Decimal
	NetChange          decimal.Decimal
	AverageTransaction decimal.Decimal
	TransactionCount   int
}

// CategoryTotals sums debit spending by category, sorted by total
// descending, with each category's share of the grand total.
func CategoryTotals(txns []model.Transaction) []CategoryTotal {
	byCategory := make(map[model.Category]*CategoryTotal)

	for _, txn := range txns {
		if !txn.IsDebit() {
			continue
		}
		entry, ok := byCategory[txn.Category]
		if !ok {
			entry = &CategoryTotal{Category: txn.Category}
			byCategory[txn.Category] = entry
		}
		entry.Total = entry.Total.Add(txn.Amount)
		entry.Count++
	}

	grandTotal := decimal.Zero
	for _, entry := range byCategory {
		grandTotal = grandTotal.Add(entry.Total)
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for _, entry := range byCategory {
		if grandTotal.IsPositive() {
			entry.Percentage = entry.Total.Div(grandTotal).InexactFloat64() * 100
		}
		totals = append(totals, *entry)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})
	return totals
}

// TopMerchants returns up to limit merchants by debit spending, extracting
// merchant names from descriptions. A merchant keeps the category of its
// first-seen transaction.
func TopMerchants(txns []model.Transaction, limit int) []MerchantTotal {
	byMerchant := make(map[string]*MerchantTotal)

	for _, txn := range txns {
		if !txn.IsDebit() {
			continue
		}
		name := merchant.Extract(txn.Description)
		entry, ok := byMerchant[name]
		if !ok {
			entry = &MerchantTotal{Merchant: name, Category: txn.Category}
			byMerchant[name] = entry
		}
		entry.Total = entry.Total.Add(txn.Amount)
		entry.Count++
	}

	totals := make([]MerchantTotal, 0, len(byMerchant))
	for _, entry := range byMerchant {
		totals = append(totals, *entry)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})

	if len(totals) > limit {
		totals = totals[:limit]
	}
	return totals
}

// DailyTotals groups activity by calendar day, sorted ascending. The
// balance recorded for a day is its last transaction's running balance.
func DailyTotals(txns []model.Transaction) []DailySpending {
	byDay := make(map[time.Time]*DailySpending)

	for _, txn := range txns {
		day := txn.Date.Truncate(24 * time.Hour)
		entry, ok := byDay[day]
		if !ok {
			entry = &DailySpending{Date: day}
			byDay[day] = entry
		}
		if txn.Type == model.TypeCredit {
			entry.Income = entry.Income.Add(txn.Amount)
		} else {
			entry.Expenses = entry.Expenses.Add(txn.Amount)
		}
		entry.Balance = txn.Balance
	}

	days := make([]DailySpending, 0, len(byDay))
	for _, entry := range byDay {
		days = append(days, *entry)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

// MonthlyTotals groups activity by calendar month, sorted ascending.
func MonthlyTotals(txns []model.Transaction) []MonthlySpending {
	type monthKey struct {
		year  int
		month time.Month
	}
	byMonth := make(map[monthKey]*MonthlySpending)

	for _, txn := range txns {
		key := monthKey{year: txn.Date.Year(), month: txn.Date.Month()}
		entry, ok := byMonth[key]
		if !ok {
			entry = &MonthlySpending{Year: key.year, Month: key.month}
			byMonth[key] = entry
		}
		if txn.Type == model.TypeCredit {
			entry.Income = entry.Income.Add(txn.Amount)
		} else {
			entry.Expenses = entry.Expenses.Add(txn.Amount)
		}
		entry.TransactionCount++
	}

	months := make([]MonthlySpending, 0, len(byMonth))
	for _, entry := range byMonth {
		months = append(months, *entry)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})
	return months
}

// Summarize computes overall totals and the covered date range.
func Summarize(txns []model.Transaction) Summary {
	var s Summary
	s.TransactionCount = len(txns)

	for _, txn := range txns {
		if txn.Type == model.TypeCredit {
			s.TotalIncome = s.TotalIncome.Add(txn.Amount)
		} else {
			s.TotalExpenses = s.TotalExpenses.Add(txn.Amount)
		}

		if s.Start.IsZero() || txn.Date.Before(s.Start) {
			s.Start = txn.Date
		}
		if s.End.IsZero() || txn.Date.After(s.End) {
			s.End = txn.Date
		}
	}

	s.NetChange = s.TotalIncome.Sub(s.TotalExpenses)
	if len(txns) > 0 {
		s.AverageTransaction = s.TotalExpenses.Div(decimal.NewFromInt(int64(len(txns))))
	}
	return s
}

// DetectAnomalies returns debit transactions whose amounts sit more than
// threshold standard deviations from the debit mean. Fewer than three
// debits yields no anomalies.
func DetectAnomalies(txns []model.Transaction, threshold float64) []model.Transaction {
	var amounts []float64
	for _, txn := range txns {
		if txn.IsDebit() {
			amounts = append(amounts, txn.Amount.InexactFloat64())
		}
	}
	if len(amounts) < 3 {
		return nil
	}

	var sum float64
	for _, a := range amounts {
		sum += a
	}
	mean := sum / float64(len(amounts))

	var variance float64
	for _, a := range amounts {
		variance += (a - mean) * (a - mean)
	}
	variance /= float64(len(amounts))
	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return nil
	}

	var anomalies []model.Transaction
	for _, txn := range txns {
		if !txn.IsDebit() {
			continue
		}
		z := math.Abs((txn.Amount.InexactFloat64() - mean) / stdDev)
		if z > threshold {
			anomalies = append(anomalies, txn)
		}
	}
	return anomalies
}
