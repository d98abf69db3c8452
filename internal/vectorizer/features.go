package vectorizer

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/coinsort/internal/model"
)

// numericFeatures is the count of scalar features appended after the text
// vector: log-scaled amount and the debit indicator.
const numericFeatures = 2

// FeatureLength returns the width of vectors produced by Features. Changing
// VectorLength invalidates any model trained against the old width.
func (v *Vectorizer) FeatureLength() int {
	return v.vectorLength + numericFeatures
}

// Features builds the model input for one transaction: the bag-of-words
// vector concatenated with ln(|amount|+1) and a binary debit flag. This
// fixed-width layout is the exact contract the adaptive categorizer
// trains and predicts against.
func (v *Vectorizer) Features(description string, amount decimal.Decimal, txnType model.TransactionType) []float64 {
	features := make([]float64, 0, v.FeatureLength())
	features = append(features, v.BagOfWords(description)...)

	features = append(features, math.Log(amount.Abs().InexactFloat64()+1))

	if txnType == model.TypeDebit {
		features = append(features, 1)
	} else {
		features = append(features, 0)
	}

	return features
}
