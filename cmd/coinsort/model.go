package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/coinsort/internal/common"
	"github.com/Veraticus/coinsort/internal/ml"
)

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect or reset the adaptive categorizer's state",
	}

	cmd.AddCommand(modelInfoCmd())
	cmd.AddCommand(modelClearCmd())

	return cmd
}

func modelInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show persisted model and training log status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categorizer := ml.NewCategorizer(store)
			out := cmd.OutOrStdout()

			if err := categorizer.ImportState(ctx); err != nil {
				if !errors.Is(err, common.ErrNotFound) {
					return err
				}
				if err := categorizer.LoadTrainingLog(ctx); err != nil {
					fmt.Fprintln(out, "No model or corrections recorded yet")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "No trained model; %d corrections recorded (%d needed to train)\n",
					categorizer.TrainingDataSize(), ml.MinTrainingExamples)
				return nil
			}

			fmt.Fprintf(out, "Trained model: yes\nTraining examples: %d\n",
				categorizer.TrainingDataSize())
			return nil
		},
	}
}

func modelClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the model, vocabulary, and training log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categorizer := ml.NewCategorizer(store)
			if err := categorizer.Clear(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Cleared adaptive categorizer state")
			return nil
		},
	}
}
