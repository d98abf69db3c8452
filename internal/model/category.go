package model

// Category is one of the fixed semantic labels a transaction can carry.
// The set is closed: rule tables and model index maps are both built from
// Categories(), so the two can never drift apart.
type Category string

const (
	CategoryGroceries      Category = "Groceries"
	CategoryDining         Category = "Dining & Restaurants"
	CategoryTransportation Category = "Transportation"
	CategoryUtilities      Category = "Utilities"
	CategoryShopping       Category = "Shopping"
	CategoryEntertainment  Category = "Entertainment"
	CategoryHealthcare     Category = "Healthcare"
	CategoryTravel         Category = "Travel"
	CategoryIncome         Category = "Income"
	CategoryTransfer       Category = "Transfer"
	CategoryBills          Category = "Bills & Subscriptions"
	CategoryEducation      Category = "Education"
	CategoryPersonalCare   Category = "Personal Care"
	CategoryHome           Category = "Home & Garden"
	CategoryInsurance      Category = "Insurance"
	CategoryFees           Category = "Fees & Charges"
	// CategoryUncategorized is the sink assigned when no rule matches.
	CategoryUncategorized Category = "Uncategorized"
)

// Categories returns every category in declaration order. The order is part
// of the classification contract: earlier categories win rule ties, and the
// adaptive model's output indices follow this ordering.
func Categories() []Category {
	return []Category{
		CategoryGroceries,
		CategoryDining,
		CategoryTransportation,
		CategoryUtilities,
		CategoryShopping,
		CategoryEntertainment,
		CategoryHealthcare,
		CategoryTravel,
		CategoryIncome,
		CategoryTransfer,
		CategoryBills,
		CategoryEducation,
		CategoryPersonalCare,
		CategoryHome,
		CategoryInsurance,
		CategoryFees,
		CategoryUncategorized,
	}
}

// Valid reports whether c is a member of the taxonomy.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory maps a raw label to a taxonomy category, returning the
// Uncategorized sink for anything unknown or empty.
func ParseCategory(s string) Category {
	c := Category(s)
	if c.Valid() {
		return c
	}
	return CategoryUncategorized
}
