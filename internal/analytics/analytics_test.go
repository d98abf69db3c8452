package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/coinsort/internal/model"
)

func mkTxn(day int, description string, amount float64, txnType model.TransactionType, category model.Category) model.Transaction {
	return model.Transaction{
		ID:          description,
		Date:        time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC),
		Description: description,
		Type:        txnType,
		Category:    category,
		Amount:      decimal.NewFromFloat(amount),
	}
}

func sampleTxns() []model.Transaction {
	return []model.Transaction{
		mkTxn(1, "STARBUCKS COFFEE", 5, model.TypeDebit, model.CategoryDining),
		mkTxn(1, "WHOLE FOODS MARKET", 80, model.TypeDebit, model.CategoryGroceries),
		mkTxn(2, "STARBUCKS COFFEE", 15, model.TypeDebit, model.CategoryDining),
		mkTxn(3, "PAYROLL DEPOSIT", 2000, model.TypeCredit, model.CategoryIncome),
	}
}

func TestCategoryTotals(t *testing.T) {
	totals := CategoryTotals(sampleTxns())
	require.Len(t, totals, 2)

	// Sorted by total descending; credits excluded entirely.
	assert.Equal(t, model.CategoryGroceries, totals[0].Category)
	assert.True(t, totals[0].Total.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, 1, totals[0].Count)
	assert.InDelta(t, 80.0, totals[0].Percentage, 1e-9)

	assert.Equal(t, model.CategoryDining, totals[1].Category)
	assert.True(t, totals[1].Total.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 2, totals[1].Count)
	assert.InDelta(t, 20.0, totals[1].Percentage, 1e-9)
}

func TestCategoryTotalsEmpty(t *testing.T) {
	assert.Empty(t, CategoryTotals(nil))
	assert.Empty(t, CategoryTotals([]model.Transaction{
		mkTxn(1, "PAYROLL DEPOSIT", 2000, model.TypeCredit, model.CategoryIncome),
	}))
}

func TestTopMerchants(t *testing.T) {
	merchants := TopMerchants(sampleTxns(), 10)
	require.Len(t, merchants, 2)

	assert.Equal(t, "WHOLE FOODS MARKET", merchants[0].Merchant)
	assert.True(t, merchants[0].Total.Equal(decimal.NewFromInt(80)))

	assert.Equal(t, "STARBUCKS COFFEE", merchants[1].Merchant)
	assert.True(t, merchants[1].Total.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 2, merchants[1].Count)
	assert.Equal(t, model.CategoryDining, merchants[1].Category)
}

func TestTopMerchantsLimit(t *testing.T) {
	merchants := TopMerchants(sampleTxns(), 1)
	require.Len(t, merchants, 1)
	assert.Equal(t, "WHOLE FOODS MARKET", merchants[0].Merchant)
}

func TestTopMerchantsGroupsVariants(t *testing.T) {
	txns := []model.Transaction{
		mkTxn(1, "PURCHASE AT WALMART #1234 05/01/24", 40, model.TypeDebit, model.CategoryGroceries),
		mkTxn(2, "PURCHASE AT WALMART #5678 05/02/24", 60, model.TypeDebit, model.CategoryGroceries),
	}

	merchants := TopMerchants(txns, 10)
	require.Len(t, merchants, 1)
	assert.Equal(t, "WALMART", merchants[0].Merchant)
	assert.True(t, merchants[0].Total.Equal(decimal.NewFromInt(100)))
}

func TestDailyTotals(t *testing.T) {
	days := DailyTotals(sampleTxns())
	require.Len(t, days, 3)

	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), days[0].Date)
	assert.True(t, days[0].Expenses.Equal(decimal.NewFromInt(85)))
	assert.True(t, days[0].Income.IsZero())

	assert.True(t, days[1].Expenses.Equal(decimal.NewFromInt(15)))

	assert.True(t, days[2].Income.Equal(decimal.NewFromInt(2000)))
	assert.True(t, days[2].Expenses.IsZero())
}

func TestMonthlyTotals(t *testing.T) {
	txns := append(sampleTxns(),
		model.Transaction{
			Date:   time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			Type:   model.TypeDebit,
			Amount: decimal.NewFromInt(30),
		})

	months := MonthlyTotals(txns)
	require.Len(t, months, 2)

	assert.Equal(t, 2024, months[0].Year)
	assert.Equal(t, time.May, months[0].Month)
	assert.True(t, months[0].Expenses.Equal(decimal.NewFromInt(100)))
	assert.True(t, months[0].Income.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, 4, months[0].TransactionCount)

	assert.Equal(t, time.June, months[1].Month)
	assert.True(t, months[1].Expenses.Equal(decimal.NewFromInt(30)))
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleTxns())

	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), s.Start)
	assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), s.End)
	assert.True(t, s.TotalIncome.Equal(decimal.NewFromInt(2000)))
	assert.True(t, s.TotalExpenses.Equal(decimal.NewFromInt(100)))
	assert.True(t, s.NetChange.Equal(decimal.NewFromInt(1900)))
	assert.True(t, s.AverageTransaction.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 4, s.TransactionCount)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.TransactionCount)
	assert.True(t, s.Start.IsZero())
	assert.True(t, s.NetChange.IsZero())
}

func TestDetectAnomalies(t *testing.T) {
	txns := []model.Transaction{
		mkTxn(1, "COFFEE", 5, model.TypeDebit, model.CategoryDining),
		mkTxn(2, "COFFEE", 6, model.TypeDebit, model.CategoryDining),
		mkTxn(3, "COFFEE", 5, model.TypeDebit, model.CategoryDining),
		mkTxn(4, "COFFEE", 6, model.TypeDebit, model.CategoryDining),
		mkTxn(5, "JEWELRY STORE", 900, model.TypeDebit, model.CategoryShopping),
	}

	anomalies := DetectAnomalies(txns, 1.5)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "JEWELRY STORE", anomalies[0].Description)
}

func TestDetectAnomaliesEdgeCases(t *testing.T) {
	// Fewer than three debits: nothing to measure against.
	assert.Nil(t, DetectAnomalies([]model.Transaction{
		mkTxn(1, "A", 5, model.TypeDebit, model.CategoryDining),
		mkTxn(2, "B", 900, model.TypeDebit, model.CategoryShopping),
	}, 1.0))

	// Identical amounts: zero deviation, no anomalies.
	assert.Nil(t, DetectAnomalies([]model.Transaction{
		mkTxn(1, "A", 5, model.TypeDebit, model.CategoryDining),
		mkTxn(2, "B", 5, model.TypeDebit, model.CategoryDining),
		mkTxn(3, "C", 5, model.TypeDebit, model.CategoryDining),
	}, 1.0))

	// Credits never count as anomalies.
	assert.Nil(t, DetectAnomalies([]model.Transaction{
		mkTxn(1, "A", 5, model.TypeDebit, model.CategoryDining),
		mkTxn(2, "B", 6, model.TypeDebit, model.CategoryDining),
		mkTxn(3, "C", 5, model.TypeDebit, model.CategoryDining),
		mkTxn(4, "PAYROLL", 100000, model.TypeCredit, model.CategoryIncome),
	}, 2.0))
}
