// Package engine orchestrates the classification pipeline: deterministic
// rule labeling on ingest, user corrections feeding the adaptive
// categorizer's training log, and model predictions with rule fallback.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/coinsort/internal/analytics"
	"github.com/Veraticus/coinsort/internal/common"
	"github.com/Veraticus/coinsort/internal/ml"
	"github.com/Veraticus/coinsort/internal/model"
	"github.com/Veraticus/coinsort/internal/rules"
	"github.com/Veraticus/coinsort/internal/service"
)

// Engine owns the session's transaction collection and the single adaptive
// categorizer instance. It is the composition root's one mutable object;
// all interaction goes through its methods.
type Engine struct {
	rules        *rules.Classifier
	categorizer  *ml.Categorizer
	reporter     service.Reporter
	transactions []model.Transaction
}

// New wires an engine from its collaborators. reporter may be nil when no
// logging sink is configured.
func New(ruleClassifier *rules.Classifier, categorizer *ml.Categorizer, reporter service.Reporter) *Engine {
	return &Engine{
		rules:       ruleClassifier,
		categorizer: categorizer,
		reporter:    reporter,
	}
}

// Categorizer exposes the adaptive categorizer for training control.
func (e *Engine) Categorizer() *ml.Categorizer {
	return e.categorizer
}

// Transactions returns the session's transactions in ingest order.
func (e *Engine) Transactions() []model.Transaction {
	return e.transactions
}

// AddTransactions ingests already-parsed records, rule-classifying any that
// arrive unlabeled or labeled with the Uncategorized sink.
func (e *Engine) AddTransactions(txns []model.Transaction) {
	for _, txn := range txns {
		if txn.Category == "" || txn.Category == model.CategoryUncategorized {
			txn.Category = e.rules.ClassifyTransaction(txn)
		}
		e.transactions = append(e.transactions, txn)
	}

	common.LogInfo("ingested transactions", common.Fields{
		"count": len(txns),
		"total": len(e.transactions),
	})
}

// Correct applies a user's category override to the transaction with the
// given ID. A genuine change (old label != new label) is snapshotted into
// the categorizer's training log.
func (e *Engine) Correct(id string, category model.Category) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}

	for i := range e.transactions {
		if e.transactions[i].ID != id {
			continue
		}

		if e.transactions[i].Category == category {
			return nil
		}

		e.transactions[i].Category = category
		e.categorizer.AddTrainingExample(e.transactions[i])

		common.LogDebug("recorded correction", common.Fields{
			"transaction":   id,
			"category":      category,
			"training_size": e.categorizer.TrainingDataSize(),
		})
		return nil
	}

	return fmt.Errorf("transaction %q not found", id)
}

// ClassifyOne labels a single transaction, preferring the trained model and
// falling back to the rule classifier when no model exists. The fallback
// guarantees every transaction receives some category.
func (e *Engine) ClassifyOne(txn model.Transaction) (model.Category, float64) {
	prediction, err := e.categorizer.Predict(txn)
	if err != nil {
		if !errors.Is(err, ml.ErrModelNotTrained) {
			common.LogError(err, "prediction failed, using rule classifier", common.Fields{
				"transaction": txn.ID,
			})
		}
		return e.rules.ClassifyTransaction(txn), 0
	}
	return prediction.Category, prediction.Confidence
}

// Reclassify re-labels every held transaction with the trained model,
// preserving order. Without a trained model it returns ErrModelNotTrained
// and leaves all labels untouched.
func (e *Engine) Reclassify(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	predictions, err := e.categorizer.PredictBatch(e.transactions)
	if err != nil {
		return err
	}

	for i := range e.transactions {
		e.transactions[i].Category = predictions[i].Category
	}

	common.LogInfo("reclassified transactions", common.Fields{"count": len(e.transactions)})
	return nil
}

// Clear drops the session's transaction collection. The categorizer's
// training log is unaffected.
func (e *Engine) Clear() {
	e.transactions = nil
}

// Report sends an analysis summary for the session to the logging sink.
// Strictly fire-and-forget: failures are logged locally and never returned.
func (e *Engine) Report(ctx context.Context, fileName string, duration time.Duration, success bool) {
	if e.reporter == nil {
		return
	}

	summary := analytics.Summarize(e.transactions)

	seen := make(map[model.Category]bool)
	categories := make([]string, 0)
	for _, txn := range e.transactions {
		if !seen[txn.Category] {
			seen[txn.Category] = true
			categories = append(categories, string(txn.Category))
		}
	}

	payload := service.AnalysisSummary{
		Timestamp:        time.Now().UTC(),
		FileName:         fileName,
		TransactionCount: len(e.transactions),
		Categories:       categories,
		DateRangeStart:   summary.Start.Format("2006-01-02"),
		DateRangeEnd:     summary.End.Format("2006-01-02"),
		DurationMillis:   duration.Milliseconds(),
		Success:          success,
	}

	if err := e.reporter.Send(ctx, payload); err != nil {
		common.LogError(err, "failed to send analysis summary", common.Fields{
			"file":         fileName,
			"transactions": len(e.transactions),
		})
	}
}
