// Package vectorizer converts transaction descriptions into fixed-length
// numeric feature vectors over a bounded, frequency-ranked vocabulary.
package vectorizer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/Veraticus/coinsort/internal/merchant"
)

// Vectorizer owns a vocabulary mapping normalized tokens to dense indices
// in [0, len(vocabulary)). Only indices below VectorLength are usable as
// feature slots.
type Vectorizer struct {
	vocabulary   map[string]int
	maxVocabSize int
	vectorLength int
}

// New creates a vectorizer. The parameters are independent: maxVocabSize
// bounds how many tokens the vocabulary retains, vectorLength fixes the
// feature-vector width. When maxVocabSize exceeds vectorLength the least
// frequent tokens are built but never addressable, so the mismatch is
// logged rather than silently accepted.
func New(maxVocabSize, vectorLength int) *Vectorizer {
	if maxVocabSize > vectorLength {
		slog.Warn("vocabulary capacity exceeds vector length; least frequent tokens will be unaddressable",
			"max_vocab_size", maxVocabSize,
			"vector_length", vectorLength)
	}

	return &Vectorizer{
		vocabulary:   make(map[string]int),
		maxVocabSize: maxVocabSize,
		vectorLength: vectorLength,
	}
}

// Tokenize normalizes text through the merchant normalizer and splits it
// into non-empty whitespace-delimited tokens.
func (v *Vectorizer) Tokenize(text string) []string {
	return strings.Fields(merchant.Normalize(text))
}

// BuildVocabulary rebuilds the vocabulary from scratch: token frequencies
// are accumulated over the corpus, sorted descending by frequency with ties
// broken by first-seen order, and the top maxVocabSize tokens are assigned
// indices 0..n-1. Any prior vocabulary is replaced atomically.
func (v *Vectorizer) BuildVocabulary(corpus []string) {
	frequency := make(map[string]int)
	firstSeen := make([]string, 0)

	for _, text := range corpus {
		for _, token := range v.Tokenize(text) {
			if _, seen := frequency[token]; !seen {
				firstSeen = append(firstSeen, token)
			}
			frequency[token]++
		}
	}

	// firstSeen preserves encounter order; a stable sort keeps it for ties.
	sort.SliceStable(firstSeen, func(i, j int) bool {
		return frequency[firstSeen[i]] > frequency[firstSeen[j]]
	})

	if len(firstSeen) > v.maxVocabSize {
		firstSeen = firstSeen[:v.maxVocabSize]
	}

	vocab := make(map[string]int, len(firstSeen))
	for i, token := range firstSeen {
		vocab[token] = i
	}
	v.vocabulary = vocab
}

// BagOfWords converts text into a vector of length VectorLength counting
// in-vocabulary token occurrences. Tokens absent from the vocabulary, or
// whose index falls outside the vector, are dropped.
func (v *Vectorizer) BagOfWords(text string) []float64 {
	vector := make([]float64, v.vectorLength)

	for _, token := range v.Tokenize(text) {
		if idx, ok := v.vocabulary[token]; ok && idx < v.vectorLength {
			vector[idx]++
		}
	}

	return vector
}

// TFIDF converts text into a TF-IDF weighted vector. Term frequency is the
// token's count divided by the total token count of the text; inverse
// document frequency is ln((totalDocs+1)/(df+1)) with a floor of one
// document per term. Slot values are overwritten, not accumulated.
func (v *Vectorizer) TFIDF(text string, documentFrequencies map[string]int, totalDocs int) []float64 {
	vector := make([]float64, v.vectorLength)

	tokens := v.Tokenize(text)
	if len(tokens) == 0 {
		return vector
	}

	counts := make(map[string]int)
	for _, token := range tokens {
		counts[token]++
	}

	for token, count := range counts {
		idx, ok := v.vocabulary[token]
		if !ok || idx >= v.vectorLength {
			continue
		}

		df := documentFrequencies[token]
		if df == 0 {
			df = 1
		}

		tf := float64(count) / float64(len(tokens))
		idf := math.Log(float64(totalDocs+1) / float64(df+1))
		vector[idx] = tf * idf
	}

	return vector
}

// NormalizeUnit L2-normalizes the vector in place and returns it. A
// zero-magnitude vector is returned unchanged.
func (v *Vectorizer) NormalizeUnit(vector []float64) []float64 {
	var sum float64
	for _, val := range vector {
		sum += val * val
	}

	magnitude := math.Sqrt(sum)
	if magnitude == 0 {
		return vector
	}

	for i := range vector {
		vector[i] /= magnitude
	}
	return vector
}

// VocabularySize returns the number of tokens in the vocabulary.
func (v *Vectorizer) VocabularySize() int {
	return len(v.vocabulary)
}

// VectorLength returns the fixed text-vector width.
func (v *Vectorizer) VectorLength() int {
	return v.vectorLength
}

// Tokens returns the vocabulary in index order.
func (v *Vectorizer) Tokens() []string {
	tokens := make([]string, len(v.vocabulary))
	for token, idx := range v.vocabulary {
		tokens[idx] = token
	}
	return tokens
}

// vocabularyState is the self-describing export format: an array of
// [token, index] pairs plus the size parameters.
type vocabularyState struct {
	Vocabulary   []vocabEntry `json:"vocabulary"`
	MaxVocabSize int          `json:"maxVocabSize"`
	VectorLength int          `json:"vectorLength"`
}

// vocabEntry serializes as a two-element [token, index] JSON array.
type vocabEntry struct {
	Token string
	Index int
}

func (e vocabEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Token, e.Index})
}

func (e *vocabEntry) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &e.Token); err != nil {
		return fmt.Errorf("vocabulary entry token: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Index); err != nil {
		return fmt.Errorf("vocabulary entry index: %w", err)
	}
	return nil
}

// Export serializes the vocabulary and its size parameters. The format
// round-trips exactly through Import.
func (v *Vectorizer) Export() ([]byte, error) {
	entries := make([]vocabEntry, 0, len(v.vocabulary))
	for _, token := range v.Tokens() {
		entries = append(entries, vocabEntry{Token: token, Index: v.vocabulary[token]})
	}

	return json.Marshal(vocabularyState{
		Vocabulary:   entries,
		MaxVocabSize: v.maxVocabSize,
		VectorLength: v.vectorLength,
	})
}

// Import replaces the vectorizer's state with a previously exported
// vocabulary. On parse failure the existing state is left untouched.
func (v *Vectorizer) Import(data []byte) error {
	var state vocabularyState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to parse vocabulary: %w", err)
	}

	// Indices must form a dense 0..n-1 mapping or Tokens and Export would
	// index out of range.
	vocab := make(map[string]int, len(state.Vocabulary))
	claimed := make([]bool, len(state.Vocabulary))
	for _, entry := range state.Vocabulary {
		if entry.Index < 0 || entry.Index >= len(state.Vocabulary) {
			return fmt.Errorf("vocabulary index %d for %q out of range [0, %d)",
				entry.Index, entry.Token, len(state.Vocabulary))
		}
		if claimed[entry.Index] {
			return fmt.Errorf("duplicate vocabulary index %d for %q", entry.Index, entry.Token)
		}
		claimed[entry.Index] = true
		vocab[entry.Token] = entry.Index
	}
	if len(vocab) != len(state.Vocabulary) {
		return fmt.Errorf("duplicate vocabulary tokens in %d entries", len(state.Vocabulary))
	}

	v.vocabulary = vocab
	v.maxVocabSize = state.MaxVocabSize
	v.vectorLength = state.VectorLength
	return nil
}
