package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/coinsort/internal/model"
)

func TestClassify(t *testing.T) {
	classifier := NewDefaultClassifier()

	tests := []struct {
		name        string
		description string
		txnType     model.TransactionType
		want        model.Category
	}{
		{
			name:        "starbucks store is dining",
			description: "STARBUCKS STORE #4521",
			txnType:     model.TypeDebit,
			want:        model.CategoryDining,
		},
		{
			name:        "payroll credit is income",
			description: "PAYROLL DIRECT DEPOSIT ACME CORP",
			txnType:     model.TypeCredit,
			want:        model.CategoryIncome,
		},
		{
			name:        "grocery store",
			description: "KROGER FUEL CTR", // groceries declared before transportation
			txnType:     model.TypeDebit,
			want:        model.CategoryGroceries,
		},
		{
			name:        "streaming subscription",
			description: "NETFLIX.COM",
			txnType:     model.TypeDebit,
			want:        model.CategoryEntertainment,
		},
		{
			name:        "rideshare",
			description: "UBER TRIP 49XK2",
			txnType:     model.TypeDebit,
			want:        model.CategoryTransportation,
		},
		{
			name:        "peer transfer",
			description: "VENMO PAYMENT 002",
			txnType:     model.TypeDebit,
			want:        model.CategoryTransfer,
		},
		{
			name:        "overdraft fee",
			description: "OVERDRAFT ITEM",
			txnType:     model.TypeDebit,
			want:        model.CategoryFees,
		},
		{
			name:        "nothing matches",
			description: "XK9 QQQQ 77",
			txnType:     model.TypeDebit,
			want:        model.CategoryUncategorized,
		},
		{
			name:        "empty description",
			description: "",
			txnType:     model.TypeDebit,
			want:        model.CategoryUncategorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.description, tt.txnType))
		})
	}
}

func TestClassifyDeterminism(t *testing.T) {
	classifier := NewDefaultClassifier()

	inputs := []struct {
		description string
		txnType     model.TransactionType
	}{
		{"STARBUCKS STORE #4521", model.TypeDebit},
		{"PAYROLL DIRECT DEPOSIT", model.TypeCredit},
		{"XK9 QQQQ 77", model.TypeDebit},
	}

	for _, input := range inputs {
		first := classifier.Classify(input.description, input.txnType)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, classifier.Classify(input.description, input.txnType))
		}
	}
}

func TestIncomePrecedence(t *testing.T) {
	classifier := NewDefaultClassifier()

	// "WALMART REFUND" holds both a groceries keyword and an income
	// keyword. For credits income wins ahead of everything; for debits the
	// income rule is skipped entirely.
	assert.Equal(t, model.CategoryIncome, classifier.Classify("WALMART REFUND", model.TypeCredit))
	assert.Equal(t, model.CategoryGroceries, classifier.Classify("WALMART REFUND", model.TypeDebit))

	// A debit matching only income keywords falls through to other rules
	// or the sink; it can never be labeled Income by the income rule.
	assert.NotEqual(t, model.CategoryIncome, classifier.Classify("SALARY ADVANCE", model.TypeDebit))
}

func TestDeclarationOrderBreaksTies(t *testing.T) {
	rulesTable := []Rule{
		{Category: model.CategoryShopping, Keywords: []string{"prime"}},
		{Category: model.CategoryEntertainment, Keywords: []string{"prime"}},
	}

	classifier, err := NewClassifier(rulesTable)
	require.NoError(t, err)

	assert.Equal(t, model.CategoryShopping, classifier.Classify("AMAZON PRIME", model.TypeDebit))
}

func TestPatternRules(t *testing.T) {
	classifier, err := NewClassifier([]Rule{
		{Category: model.CategoryFees, Patterns: []string{`fee\s+\d+`}},
	})
	require.NoError(t, err)

	assert.Equal(t, model.CategoryFees, classifier.Classify("FEE 1234", model.TypeDebit))
	assert.Equal(t, model.CategoryUncategorized, classifier.Classify("FEEBLE", model.TypeDebit))
}

func TestNewClassifierInvalidPattern(t *testing.T) {
	_, err := NewClassifier([]Rule{
		{Category: model.CategoryFees, Patterns: []string{`[invalid`}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile pattern")
}
