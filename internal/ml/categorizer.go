// Package ml implements the adaptive transaction categorizer: a trainable
// classifier that learns from user corrections and persists its full state
// through a key-value store.
package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Veraticus/coinsort/internal/model"
	"github.com/Veraticus/coinsort/internal/service"
	"github.com/Veraticus/coinsort/internal/vectorizer"
)

const (
	// MinTrainingExamples is the floor below which Train refuses to build
	// or retrain a model.
	MinTrainingExamples = 10

	// DefaultEpochs and DefaultValidationSplit mirror the fit defaults.
	DefaultEpochs          = 50
	DefaultValidationSplit = 0.2

	// Vocabulary sizing for the description vectorizer.
	defaultMaxVocabSize = 100
	defaultVectorLength = 100
)

// StateNamespace scopes the categorizer's persisted keys in the store.
const StateNamespace = "categorizer"

// Persisted state keys.
const (
	KeyModel        = "model"
	KeyVocabulary   = "vocabulary"
	KeyTrainingData = "trainingData"
)

// Metrics summarizes a completed training run.
type Metrics struct {
	Accuracy       float64
	Loss           float64
	TrainingSize   int
	VocabularySize int
}

// Prediction is a predicted category with the softmax probability that
// backs it.
type Prediction struct {
	Category   model.Category
	Confidence float64
}

// EpochFunc observes training progress after each epoch.
type EpochFunc func(epoch, totalEpochs int, loss, accuracy float64)

// Categorizer owns the trainable model, its vocabulary, and the append-only
// training log. It moves between three states: untrained (no model),
// training (exclusive), and trained (ready for inference).
//
// The categorizer is a single-goroutine cooperative object: exactly one
// instance serves a session, owned by the composition root, and its
// mutating operations must not be interleaved. The training guard is a
// cooperative entry check, not a lock.
type Categorizer struct {
	store      service.StateStore
	vectorizer *vectorizer.Vectorizer
	net        *network
	rng        *rand.Rand

	categoryToIndex map[model.Category]int
	indexToCategory []model.Category

	trainingData []model.TrainingExample
	isTraining   bool
}

// NewCategorizer constructs a categorizer whose category index mapping is
// fixed, at construction time, from the full taxonomy in declaration order.
// The mapping is independent of which categories appear in training data.
func NewCategorizer(store service.StateStore) *Categorizer {
	categories := model.Categories()

	c := &Categorizer{
		store:           store,
		vectorizer:      vectorizer.New(defaultMaxVocabSize, defaultVectorLength),
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		categoryToIndex: make(map[model.Category]int, len(categories)),
		indexToCategory: categories,
	}
	for i, cat := range categories {
		c.categoryToIndex[cat] = i
	}

	return c
}

// AddTrainingExample appends a snapshot of txn to the training log. Valid
// in any state; never changes state.
func (c *Categorizer) AddTrainingExample(txn model.Transaction) {
	c.trainingData = append(c.trainingData, model.NewTrainingExample(txn))
}

// AddTrainingBatch appends snapshots of every transaction in txns.
func (c *Categorizer) AddTrainingBatch(txns []model.Transaction) {
	for _, txn := range txns {
		c.AddTrainingExample(txn)
	}
}

// Train rebuilds the vocabulary from the accumulated descriptions, derives
// the feature and one-hot label matrices, and fits the model for the
// requested epochs. The model is constructed on first call and reused
// afterwards. Returns ErrInsufficientTrainingData below the example floor
// and ErrTrainingInProgress on reentry.
func (c *Categorizer) Train(ctx context.Context, epochs int, validationSplit float64, onEpoch EpochFunc) (Metrics, error) {
	if c.isTraining {
		return Metrics{}, ErrTrainingInProgress
	}
	if len(c.trainingData) < MinTrainingExamples {
		return Metrics{}, fmt.Errorf("%w: have %d examples, need %d",
			ErrInsufficientTrainingData, len(c.trainingData), MinTrainingExamples)
	}
	if err := ctx.Err(); err != nil {
		return Metrics{}, err
	}

	c.isTraining = true
	defer func() { c.isTraining = false }()

	descriptions := make([]string, len(c.trainingData))
	for i, example := range c.trainingData {
		descriptions[i] = example.Description
	}
	c.vectorizer.BuildVocabulary(descriptions)

	features := make([][]float64, len(c.trainingData))
	labels := make([][]float64, len(c.trainingData))
	for i, example := range c.trainingData {
		features[i] = c.vectorizer.Features(example.Description, example.Amount, example.Type)

		oneHot := make([]float64, len(c.indexToCategory))
		oneHot[c.categoryToIndex[example.Category]] = 1
		labels[i] = oneHot
	}

	if c.net == nil {
		c.net = newNetwork(c.vectorizer.FeatureLength(), len(c.indexToCategory), c.rng)
	}

	slog.Info("training adaptive categorizer",
		"examples", len(c.trainingData),
		"vocabulary", c.vectorizer.VocabularySize(),
		"epochs", epochs)

	var callback func(epoch int, loss, accuracy float64)
	if onEpoch != nil {
		callback = func(epoch int, loss, accuracy float64) {
			onEpoch(epoch, epochs, loss, accuracy)
		}
	}

	result, err := c.net.fit(features, labels, epochs, validationSplit, callback)
	if err != nil {
		return Metrics{}, fmt.Errorf("model fit failed: %w", err)
	}

	return Metrics{
		Accuracy:       result.accuracy,
		Loss:           result.loss,
		TrainingSize:   len(c.trainingData),
		VocabularySize: c.vectorizer.VocabularySize(),
	}, nil
}

// Predict returns the most probable category for txn with its softmax
// probability as confidence. Features are extracted with the current
// vocabulary. Returns ErrModelNotTrained before the first training or
// import.
func (c *Categorizer) Predict(txn model.Transaction) (Prediction, error) {
	if c.net == nil {
		return Prediction{}, ErrModelNotTrained
	}

	features := c.vectorizer.Features(txn.Description, txn.Amount, txn.Type)
	probs := c.net.predict([][]float64{features})

	return c.prediction(probs[0]), nil
}

// PredictBatch predicts categories for every transaction, preserving input
// order in the output.
func (c *Categorizer) PredictBatch(txns []model.Transaction) ([]Prediction, error) {
	if c.net == nil {
		return nil, ErrModelNotTrained
	}
	if len(txns) == 0 {
		return nil, nil
	}

	features := make([][]float64, len(txns))
	for i, txn := range txns {
		features[i] = c.vectorizer.Features(txn.Description, txn.Amount, txn.Type)
	}

	probs := c.net.predict(features)
	predictions := make([]Prediction, len(txns))
	for i, row := range probs {
		predictions[i] = c.prediction(row)
	}
	return predictions, nil
}

// prediction converts a probability row into a Prediction via stable
// argmax: ties keep the first-encountered index.
func (c *Categorizer) prediction(probs []float64) Prediction {
	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return Prediction{
		Category:   c.indexToCategory[best],
		Confidence: probs[best],
	}
}

// IsTrained reports whether a model exists for inference.
func (c *Categorizer) IsTrained() bool {
	return c.net != nil
}

// IsTraining reports whether a Train call is in flight.
func (c *Categorizer) IsTraining() bool {
	return c.isTraining
}

// TrainingDataSize returns the number of accumulated examples.
func (c *Categorizer) TrainingDataSize() int {
	return len(c.trainingData)
}

// ExportState persists the model weights, vocabulary, and training log as
// three independent keys. Callable from the untrained state, in which case
// the model key is skipped. Export failures are reported but in-memory
// state is never rolled back.
func (c *Categorizer) ExportState(ctx context.Context) error {
	if c.net != nil {
		modelBytes, err := c.net.marshal()
		if err != nil {
			return &PersistenceError{Op: "export", Key: KeyModel, Err: err}
		}
		if err := c.store.Put(ctx, StateNamespace, KeyModel, modelBytes); err != nil {
			return &PersistenceError{Op: "export", Key: KeyModel, Err: err}
		}
	}

	vocabBytes, err := c.vectorizer.Export()
	if err != nil {
		return &PersistenceError{Op: "export", Key: KeyVocabulary, Err: err}
	}
	if err := c.store.Put(ctx, StateNamespace, KeyVocabulary, vocabBytes); err != nil {
		return &PersistenceError{Op: "export", Key: KeyVocabulary, Err: err}
	}

	trainingBytes, err := json.Marshal(c.trainingData)
	if err != nil {
		return &PersistenceError{Op: "export", Key: KeyTrainingData, Err: err}
	}
	if err := c.store.Put(ctx, StateNamespace, KeyTrainingData, trainingBytes); err != nil {
		return &PersistenceError{Op: "export", Key: KeyTrainingData, Err: err}
	}

	return nil
}

// ImportState restores all three persisted keys. The import is atomic from
// the caller's view: every key is read and parsed before anything is
// applied, so a failure on any of them leaves the in-memory state exactly
// as it was.
func (c *Categorizer) ImportState(ctx context.Context) error {
	modelBytes, err := c.store.Get(ctx, StateNamespace, KeyModel)
	if err != nil {
		return &PersistenceError{Op: "import", Key: KeyModel, Err: err}
	}
	vocabBytes, err := c.store.Get(ctx, StateNamespace, KeyVocabulary)
	if err != nil {
		return &PersistenceError{Op: "import", Key: KeyVocabulary, Err: err}
	}
	trainingBytes, err := c.store.Get(ctx, StateNamespace, KeyTrainingData)
	if err != nil {
		return &PersistenceError{Op: "import", Key: KeyTrainingData, Err: err}
	}

	net, err := unmarshalNetwork(modelBytes, c.rng)
	if err != nil {
		return &PersistenceError{Op: "import", Key: KeyModel, Err: err}
	}

	restored := vectorizer.New(defaultMaxVocabSize, defaultVectorLength)
	if err := restored.Import(vocabBytes); err != nil {
		return &PersistenceError{Op: "import", Key: KeyVocabulary, Err: err}
	}

	var trainingData []model.TrainingExample
	if err := json.Unmarshal(trainingBytes, &trainingData); err != nil {
		return &PersistenceError{Op: "import", Key: KeyTrainingData, Err: err}
	}

	// All three parsed; apply together.
	c.net = net
	c.vectorizer = restored
	c.trainingData = trainingData

	slog.Info("imported categorizer state",
		"examples", len(trainingData),
		"vocabulary", restored.VocabularySize())
	return nil
}

// SaveTrainingLog persists only the training log, leaving the model and
// vocabulary keys untouched. Corrections recorded between training runs go
// through this so they survive the session without clobbering model state.
func (c *Categorizer) SaveTrainingLog(ctx context.Context) error {
	trainingBytes, err := json.Marshal(c.trainingData)
	if err != nil {
		return &PersistenceError{Op: "export", Key: KeyTrainingData, Err: err}
	}
	if err := c.store.Put(ctx, StateNamespace, KeyTrainingData, trainingBytes); err != nil {
		return &PersistenceError{Op: "export", Key: KeyTrainingData, Err: err}
	}
	return nil
}

// LoadTrainingLog restores only the persisted training log, leaving any
// model and vocabulary untouched. Used before the first training run, when
// corrections exist but no model artifact does.
func (c *Categorizer) LoadTrainingLog(ctx context.Context) error {
	trainingBytes, err := c.store.Get(ctx, StateNamespace, KeyTrainingData)
	if err != nil {
		return &PersistenceError{Op: "import", Key: KeyTrainingData, Err: err}
	}

	var trainingData []model.TrainingExample
	if err := json.Unmarshal(trainingBytes, &trainingData); err != nil {
		return &PersistenceError{Op: "import", Key: KeyTrainingData, Err: err}
	}

	c.trainingData = trainingData
	return nil
}

// Clear disposes the model, empties the training log, and deletes all
// persisted keys. Missing keys are tolerated.
func (c *Categorizer) Clear(ctx context.Context) error {
	c.net = nil
	c.trainingData = nil
	c.vectorizer = vectorizer.New(defaultMaxVocabSize, defaultVectorLength)

	for _, key := range []string{KeyModel, KeyVocabulary, KeyTrainingData} {
		if err := c.store.Delete(ctx, StateNamespace, key); err != nil {
			return &PersistenceError{Op: "clear", Key: key, Err: err}
		}
	}
	return nil
}
