package main

import (
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/coinsort/internal/common"
	"github.com/Veraticus/coinsort/internal/ml"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the adaptive categorizer on accumulated corrections",
		Long: `Retrain the on-device model from every correction recorded so far.

The vocabulary is rebuilt from all accumulated descriptions, the model is
fitted for the requested epochs, and the resulting state is persisted.
Training needs at least ten corrections.`,
		RunE: runTrain,
	}

	cmd.Flags().Int("epochs", ml.DefaultEpochs, "training epochs")
	cmd.Flags().Float64("validation-split", ml.DefaultValidationSplit, "fraction of examples held out for validation")

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	epochs, _ := cmd.Flags().GetInt("epochs")
	validationSplit, _ := cmd.Flags().GetFloat64("validation-split")

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	categorizer := ml.NewCategorizer(store)

	// A prior model is optional: before the first training run only the
	// correction log exists, so fall back to loading it alone.
	if err := categorizer.ImportState(ctx); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		if err := categorizer.LoadTrainingLog(ctx); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return common.NewUserError("no recorded corrections; use 'coinsort correct' first", nil)
			}
			return err
		}
	}

	bar := progressbar.NewOptions(epochs,
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Training model..."),
	)

	metrics, err := categorizer.Train(ctx, epochs, validationSplit, func(_, _ int, _, _ float64) {
		_ = bar.Add(1)
	})
	if err != nil {
		if errors.Is(err, ml.ErrInsufficientTrainingData) {
			return fmt.Errorf("not enough corrections to train: %w", err)
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())

	if err := categorizer.ExportState(ctx); err != nil {
		return fmt.Errorf("model trained but state could not be saved: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"Training complete: accuracy %.2f%%, loss %.4f, %d examples, %d-token vocabulary\n",
		metrics.Accuracy*100, metrics.Loss, metrics.TrainingSize, metrics.VocabularySize)
	return nil
}
