// Package rules implements the deterministic keyword/pattern classifier
// that assigns every transaction an initial category.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/coinsort/internal/model"
)

// Rule maps a category to the keywords and regex patterns that select it.
// Rules are immutable after the classifier is constructed.
type Rule struct {
	Category model.Category
	Keywords []string
	Patterns []string
}

type compiledRule struct {
	category model.Category
	keywords []string
	patterns []*regexp.Regexp
}

// Classifier matches descriptions against an ordered rule table. Rule
// declaration order is part of the contract: when a description contains
// keywords from multiple categories, the earlier-declared rule wins.
type Classifier struct {
	rules  []compiledRule
	income *compiledRule
}

// NewClassifier compiles the given rules. Keywords are lowercased once at
// construction; patterns are compiled once and tested against lowercased
// descriptions.
func NewClassifier(ruleSet []Rule) (*Classifier, error) {
	c := &Classifier{rules: make([]compiledRule, 0, len(ruleSet))}

	for _, r := range ruleSet {
		compiled := compiledRule{
			category: r.Category,
			keywords: make([]string, len(r.Keywords)),
			patterns: make([]*regexp.Regexp, 0, len(r.Patterns)),
		}
		for i, kw := range r.Keywords {
			compiled.keywords[i] = strings.ToLower(kw)
		}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("failed to compile pattern for %s: %w", r.Category, err)
			}
			compiled.patterns = append(compiled.patterns, re)
		}

		c.rules = append(c.rules, compiled)
		if r.Category == model.CategoryIncome {
			c.income = &c.rules[len(c.rules)-1]
		}
	}

	return c, nil
}

// Classify returns the category for a description. It is a total function:
// unmatched descriptions fall through to the Uncategorized sink, and
// identical (description, type) inputs always yield the identical category.
//
// Income is special-cased: for credit transactions the income rule's
// keywords are tested ahead of everything else, and the main pass skips the
// income rule entirely, so debits can never be labeled Income by it.
func (c *Classifier) Classify(description string, txnType model.TransactionType) model.Category {
	lower := strings.ToLower(description)

	if txnType == model.TypeCredit && c.income != nil {
		for _, kw := range c.income.keywords {
			if strings.Contains(lower, kw) {
				return model.CategoryIncome
			}
		}
	}

	for _, rule := range c.rules {
		if rule.category == model.CategoryIncome {
			continue
		}

		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
		for _, re := range rule.patterns {
			if re.MatchString(lower) {
				return rule.category
			}
		}
	}

	return model.CategoryUncategorized
}

// ClassifyTransaction labels a transaction from its description and type.
func (c *Classifier) ClassifyTransaction(txn model.Transaction) model.Category {
	return c.Classify(txn.Description, txn.Type)
}
