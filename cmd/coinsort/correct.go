package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/coinsort/internal/common"
	"github.com/Veraticus/coinsort/internal/ml"
	"github.com/Veraticus/coinsort/internal/model"
)

func correctCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Record a category correction as training data",
		Long: `Record one corrected transaction for the adaptive categorizer.

Each correction is appended to the persisted training log; once at least
ten have accumulated, 'coinsort train' can build a model from them.`,
		RunE: runCorrect,
	}

	cmd.Flags().String("description", "", "transaction description (required)")
	cmd.Flags().String("amount", "0", "transaction amount")
	cmd.Flags().String("type", string(model.TypeDebit), "transaction type (debit or credit)")
	cmd.Flags().String("category", "", "corrected category (required)")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runCorrect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	description, _ := cmd.Flags().GetString("description")
	amountStr, _ := cmd.Flags().GetString("amount")
	typeStr, _ := cmd.Flags().GetString("type")
	categoryStr, _ := cmd.Flags().GetString("category")

	category := model.Category(categoryStr)
	if !category.Valid() {
		return fmt.Errorf("unknown category %q; see the fixed taxonomy in the docs", categoryStr)
	}

	txnType := model.TransactionType(typeStr)
	if txnType != model.TypeDebit && txnType != model.TypeCredit {
		return fmt.Errorf("type must be %q or %q", model.TypeDebit, model.TypeCredit)
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	categorizer := ml.NewCategorizer(store)
	if err := categorizer.LoadTrainingLog(ctx); err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}

	txn := model.NewTransaction(time.Now(), description, amount.Abs(), decimal.Zero, txnType)
	txn.Category = category
	categorizer.AddTrainingExample(txn)

	if err := categorizer.SaveTrainingLog(ctx); err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recorded correction (%d total); %d needed before training\n",
		categorizer.TrainingDataSize(), max(0, ml.MinTrainingExamples-categorizer.TrainingDataSize()))
	return nil
}
