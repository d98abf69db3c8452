package ml

import (
	"errors"
	"fmt"
)

// Typed failure conditions for training, prediction, and persistence.
var (
	// ErrInsufficientTrainingData is returned by Train when fewer than
	// MinTrainingExamples corrections have accumulated. Recoverable: the
	// caller keeps collecting corrections.
	ErrInsufficientTrainingData = errors.New("insufficient training data")

	// ErrModelNotTrained is returned by Predict and PredictBatch before the
	// first successful training or import. Callers fall back to the rule
	// classifier.
	ErrModelNotTrained = errors.New("model not trained")

	// ErrTrainingInProgress is returned when Train is entered while a
	// previous Train call has not finished.
	ErrTrainingInProgress = errors.New("training already in progress")
)

// PersistenceError reports a storage or deserialization failure during
// ExportState or ImportState.
type PersistenceError struct {
	Err error
	Op  string
	Key string
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed for %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
