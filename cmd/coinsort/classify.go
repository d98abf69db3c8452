package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/coinsort/internal/common"
	"github.com/Veraticus/coinsort/internal/ml"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <transactions.json>",
		Short: "Classify a statement's transactions",
		Long: `Classify already-parsed transactions from a JSON file.

Each transaction gets a deterministic rule-based category. With --ml and a
trained model, the adaptive categorizer's predictions override the rules.`,
		Args: cobra.ExactArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().Bool("ml", false, "apply the trained model on top of rule classification")
	cmd.Flags().String("output", "", "write classified transactions to this file instead of stdout")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	useML, _ := cmd.Flags().GetBool("ml")
	output, _ := cmd.Flags().GetString("output")

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng := newEngine(store)

	txns, err := loadTransactions(args[0])
	if err != nil {
		return err
	}

	started := time.Now()
	eng.AddTransactions(txns)

	if useML {
		if err := eng.Categorizer().ImportState(ctx); err != nil {
			return fmt.Errorf("no trained model available: %w", err)
		}
		if err := eng.Reclassify(ctx); err != nil {
			if errors.Is(err, ml.ErrModelNotTrained) {
				return common.NewUserError("no trained model available; run 'coinsort train' first", nil)
			}
			return err
		}
	}

	eng.Report(ctx, args[0], time.Since(started), true)

	encoded, err := json.MarshalIndent(eng.Transactions(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}

	if output != "" {
		if err := os.WriteFile(output, encoded, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d classified transactions to %s\n", len(txns), output)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
