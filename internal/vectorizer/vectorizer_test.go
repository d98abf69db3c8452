package vectorizer

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/coinsort/internal/model"
)

func TestTokenize(t *testing.T) {
	v := New(100, 100)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and splits",
			text: "COFFEE SHOP DOWNTOWN",
			want: []string{"coffee", "shop", "downtown"},
		},
		{
			name: "normalizes through the merchant cleaner",
			text: "PURCHASE AT WALMART INC.",
			want: []string{"walmart"},
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Tokenize(tt.text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildVocabularyDeterminism(t *testing.T) {
	corpus := []string{
		"coffee shop",
		"coffee roasters",
		"shop local",
		"grocery store",
	}

	v := New(100, 100)
	v.BuildVocabulary(corpus)
	reference := v.Tokens()

	for i := 0; i < 5; i++ {
		other := New(100, 100)
		other.BuildVocabulary(corpus)
		assert.Equal(t, reference, other.Tokens())
	}
}

func TestBuildVocabularyRanking(t *testing.T) {
	v := New(100, 100)
	v.BuildVocabulary([]string{
		"alpha beta",
		"alpha beta",
		"alpha gamma",
	})

	// alpha:3, beta:2, gamma:1; indices follow frequency rank.
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, v.Tokens())
	assert.Equal(t, 3, v.VocabularySize())
}

func TestBuildVocabularyTieBreak(t *testing.T) {
	v := New(100, 100)
	// Every token occurs exactly once; first-seen order must decide.
	v.BuildVocabulary([]string{"zeta yankee xray"})

	assert.Equal(t, []string{"zeta", "yankee", "xray"}, v.Tokens())
}

func TestBuildVocabularyCap(t *testing.T) {
	v := New(2, 100)
	v.BuildVocabulary([]string{
		"alpha alpha alpha",
		"beta beta",
		"gamma",
	})

	assert.Equal(t, 2, v.VocabularySize())
	assert.Equal(t, []string{"alpha", "beta"}, v.Tokens())
}

func TestBuildVocabularyReplacesPrior(t *testing.T) {
	v := New(100, 100)
	v.BuildVocabulary([]string{"old tokens"})
	v.BuildVocabulary([]string{"fresh words"})

	assert.Equal(t, []string{"fresh", "words"}, v.Tokens())
}

func TestBagOfWords(t *testing.T) {
	v := New(100, 100)
	v.BuildVocabulary([]string{"coffee shop", "coffee roasters"})

	vector := v.BagOfWords("coffee coffee shop")
	require.Len(t, vector, 100)
	assert.Equal(t, 2.0, vector[0]) // coffee
	assert.Equal(t, 1.0, vector[1]) // shop

	// Out-of-vocabulary tokens contribute nothing.
	assert.Equal(t, make([]float64, 100), v.BagOfWords("unknown merchant"))
}

func TestBagOfWordsDropsOverflowIndices(t *testing.T) {
	// Vocabulary holds five tokens but only three feature slots exist;
	// tokens ranked fourth and fifth are silently dropped.
	v := New(5, 3)
	v.BuildVocabulary([]string{
		"alpha alpha alpha alpha alpha",
		"beta beta beta beta",
		"gamma gamma gamma",
		"delta delta",
		"epsilon",
	})
	require.Equal(t, 5, v.VocabularySize())

	vector := v.BagOfWords("alpha delta epsilon")
	require.Len(t, vector, 3)
	assert.Equal(t, []float64{1, 0, 0}, vector)
}

func TestTFIDF(t *testing.T) {
	v := New(100, 100)
	v.BuildVocabulary([]string{"coffee shop"})

	dfs := map[string]int{"coffee": 2, "shop": 1}
	vector := v.TFIDF("coffee shop", dfs, 3)

	require.Len(t, vector, 100)
	assert.InDelta(t, 0.5*math.Log(4.0/3.0), vector[0], 1e-12)
	assert.InDelta(t, 0.5*math.Log(4.0/2.0), vector[1], 1e-12)
}

func TestTFIDFUnknownDocumentFrequency(t *testing.T) {
	v := New(100, 100)
	v.BuildVocabulary([]string{"coffee"})

	// A term missing from the frequency table is floored at one document.
	vector := v.TFIDF("coffee", map[string]int{}, 4)
	assert.InDelta(t, math.Log(5.0/2.0), vector[0], 1e-12)
}

func TestTFIDFEmptyText(t *testing.T) {
	v := New(100, 100)
	v.BuildVocabulary([]string{"coffee"})

	assert.Equal(t, make([]float64, 100), v.TFIDF("", nil, 10))
}

func TestNormalizeUnit(t *testing.T) {
	v := New(100, 100)

	vector := v.NormalizeUnit([]float64{3, 4})
	assert.InDelta(t, 0.6, vector[0], 1e-12)
	assert.InDelta(t, 0.8, vector[1], 1e-12)

	var magnitude float64
	for _, val := range vector {
		magnitude += val * val
	}
	assert.InDelta(t, 1.0, magnitude, 1e-12)

	// A zero vector comes back unchanged instead of dividing by zero.
	assert.Equal(t, []float64{0, 0, 0}, v.NormalizeUnit([]float64{0, 0, 0}))
}

func TestFeatures(t *testing.T) {
	v := New(10, 10)
	v.BuildVocabulary([]string{"coffee shop"})

	amount := decimal.NewFromFloat(-42.50)
	features := v.Features("coffee shop", amount, model.TypeDebit)

	require.Len(t, features, v.FeatureLength())
	require.Len(t, features, 12)

	assert.Equal(t, 1.0, features[0])
	assert.Equal(t, 1.0, features[1])
	assert.InDelta(t, math.Log(43.5), features[10], 1e-9) // ln(|amount|+1)
	assert.Equal(t, 1.0, features[11])                    // debit flag

	credit := v.Features("coffee", decimal.NewFromInt(100), model.TypeCredit)
	assert.Equal(t, 0.0, credit[11])
}

func TestExportImportRoundTrip(t *testing.T) {
	original := New(50, 50)
	original.BuildVocabulary([]string{
		"coffee shop downtown",
		"coffee roasters",
		"grocery store",
	})

	data, err := original.Export()
	require.NoError(t, err)

	restored := New(1, 1) // parameters are overwritten by the import
	require.NoError(t, restored.Import(data))

	assert.Equal(t, original.Tokens(), restored.Tokens())
	assert.Equal(t, original.VectorLength(), restored.VectorLength())
	assert.Equal(t, original.BagOfWords("coffee store"), restored.BagOfWords("coffee store"))
}

func TestImportRejectsMalformedData(t *testing.T) {
	v := New(10, 10)
	v.BuildVocabulary([]string{"coffee"})

	err := v.Import([]byte("{not json"))
	require.Error(t, err)

	// Failed imports leave the existing vocabulary untouched.
	assert.Equal(t, []string{"coffee"}, v.Tokens())
}

func TestImportRejectsInvalidIndices(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "negative index",
			data: `{"vocabulary":[["coffee",-1]],"maxVocabSize":10,"vectorLength":10}`,
		},
		{
			name: "index beyond entry count",
			data: `{"vocabulary":[["coffee",0],["shop",5]],"maxVocabSize":10,"vectorLength":10}`,
		},
		{
			name: "duplicate index",
			data: `{"vocabulary":[["coffee",0],["shop",0]],"maxVocabSize":10,"vectorLength":10}`,
		},
		{
			name: "duplicate token",
			data: `{"vocabulary":[["coffee",0],["coffee",1]],"maxVocabSize":10,"vectorLength":10}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(10, 10)
			v.BuildVocabulary([]string{"existing"})

			require.Error(t, v.Import([]byte(tt.data)))

			// A rejected import must not clobber the prior vocabulary,
			// and the survivor must still enumerate without panicking.
			assert.Equal(t, []string{"existing"}, v.Tokens())
		})
	}
}
