package model

import "github.com/shopspring/decimal"

// TrainingExample is a snapshot of a transaction at the moment a user
// corrected its category. Examples are owned exclusively by the adaptive
// categorizer's training log: appended during normal operation, replaced
// wholesale only by import or clear.
type TrainingExample struct {
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewTrainingExample captures the fields of txn the model trains on.
func NewTrainingExample(txn Transaction) TrainingExample {
	return TrainingExample{
		Description: txn.Description,
		Amount:      txn.Amount,
		Type:        txn.Type,
		Category:    txn.Category,
	}
}
