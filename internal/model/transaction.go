// Package model defines the core domain types shared across the categorizer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money leaving the account from money
// arriving. The two are mutually exclusive.
type TransactionType string

const (
	// TypeDebit represents money leaving the account.
	TypeDebit TransactionType = "debit"
	// TypeCredit represents money arriving in the account.
	TypeCredit TransactionType = "credit"
)

// Transaction represents a single ledger entry from any source. Records
// arrive already parsed; this core never touches raw document bytes.
type Transaction struct {
	Date        time.Time       `json:"date"`
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
}

// NewTransaction creates a transaction with a fresh ID and the
// Uncategorized sink as its initial label.
func NewTransaction(date time.Time, description string, amount, balance decimal.Decimal, txnType TransactionType) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Description: description,
		Amount:      amount,
		Balance:     balance,
		Type:        txnType,
		Category:    CategoryUncategorized,
	}
}

// IsDebit reports whether the transaction is money leaving the account.
func (t Transaction) IsDebit() bool {
	return t.Type == TypeDebit
}
