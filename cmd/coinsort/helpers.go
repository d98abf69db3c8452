package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/coinsort/internal/engine"
	"github.com/Veraticus/coinsort/internal/ml"
	"github.com/Veraticus/coinsort/internal/model"
	"github.com/Veraticus/coinsort/internal/report"
	"github.com/Veraticus/coinsort/internal/rules"
	"github.com/Veraticus/coinsort/internal/storage"
)

// transactionRecord is the wire format for already-parsed statement files.
// Dates arrive in any supported locale format; categories are optional.
type transactionRecord struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Balance     string `json:"balance"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
}

func loadTransactions(path string) ([]model.Transaction, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied input file
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []transactionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	txns := make([]model.Transaction, 0, len(records))
	for i, rec := range records {
		date, err := model.ParseDate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		amount, err := decimal.NewFromString(rec.Amount)
		if err != nil {
			return nil, fmt.Errorf("record %d: invalid amount %q: %w", i, rec.Amount, err)
		}
		balance := decimal.Zero
		if rec.Balance != "" {
			if balance, err = decimal.NewFromString(rec.Balance); err != nil {
				return nil, fmt.Errorf("record %d: invalid balance %q: %w", i, rec.Balance, err)
			}
		}

		txnType := model.TypeDebit
		if rec.Type == string(model.TypeCredit) {
			txnType = model.TypeCredit
		}

		txn := model.NewTransaction(date, rec.Description, amount.Abs(), balance, txnType)
		if rec.Category != "" {
			txn.Category = model.ParseCategory(rec.Category)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func statePath() (string, error) {
	if path := viper.GetString("database.path"); path != "" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "coinsort", "state.db"), nil
}

func openStore(ctx context.Context) (*storage.StateStore, error) {
	path, err := statePath()
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStateStore(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}
	return store, nil
}

// newEngine wires the session's engine: rule classifier, one adaptive
// categorizer over the state store, and the best-effort report sink.
func newEngine(store *storage.StateStore) *engine.Engine {
	categorizer := ml.NewCategorizer(store)

	var reporter *report.Client
	if endpoint := viper.GetString("report.endpoint"); endpoint != "" {
		reporter = report.NewClient(endpoint)
	}

	if reporter == nil {
		return engine.New(rules.NewDefaultClassifier(), categorizer, nil)
	}
	return engine.New(rules.NewDefaultClassifier(), categorizer, reporter)
}
