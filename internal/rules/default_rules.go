package rules

import "github.com/Veraticus/coinsort/internal/model"

// DefaultRules returns the built-in rule table, one rule per category except
// the Uncategorized sink. Declaration order decides ties.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: model.CategoryGroceries,
			Keywords: []string{
				"walmart", "target", "costco", "kroger", "safeway", "whole foods",
				"trader joe", "aldi", "publix", "food lion", "wegmans", "heb",
				"sprouts", "albertsons", "giant", "stop & shop", "market", "grocery",
				"supermarket", "food mart", "fresh market",
			},
		},
		{
			Category: model.CategoryDining,
			Keywords: []string{
				"restaurant", "cafe", "coffee", "starbucks", "dunkin", "mcdonald",
				"burger king", "wendy", "taco bell", "subway", "chipotle", "panera",
				"pizza", "domino", "papa john", "kfc", "chick-fil-a", "popeyes",
				"five guys", "shake shack", "in-n-out", "dining", "food delivery",
				"doordash", "uber eats", "grubhub", "postmates", "bar & grill",
				"bistro", "diner", "eatery", "bakery", "deli",
			},
		},
		{
			Category: model.CategoryTransportation,
			Keywords: []string{
				"shell", "exxon", "chevron", "bp", "mobil", "texaco", "gas station",
				"fuel", "gasoline", "parking", "uber", "lyft", "taxi", "metro",
				"transit", "train", "bus fare", "subway", "toll", "car wash",
				"auto repair", "mechanic", "oil change", "tire", "dmv",
			},
		},
		{
			Category: model.CategoryUtilities,
			Keywords: []string{
				"electric", "power", "energy", "water", "gas company", "utility",
				"internet", "cable", "phone", "wireless", "verizon", "at&t",
				"t-mobile", "sprint", "comcast", "xfinity", "spectrum", "cox",
				"trash", "waste management", "recycling",
			},
		},
		{
			Category: model.CategoryShopping,
			Keywords: []string{
				"amazon", "ebay", "etsy", "best buy", "apple store", "microsoft",
				"department store", "mall", "outlet", "retail", "clothing",
				"fashion", "shoes", "nordstrom", "macy", "gap", "old navy",
				"tj maxx", "marshalls", "ross", "burlington", "kohl", "jcpenney",
				"sears", "online shopping",
			},
		},
		{
			Category: model.CategoryEntertainment,
			Keywords: []string{
				"netflix", "hulu", "disney", "spotify", "apple music", "youtube",
				"amazon prime", "hbo", "movie", "theater", "cinema", "concert",
				"ticket", "game", "steam", "playstation", "xbox", "nintendo",
				"entertainment", "amusement", "theme park", "zoo", "museum",
				"gym", "fitness", "sports",
			},
		},
		{
			Category: model.CategoryHealthcare,
			Keywords: []string{
				"pharmacy", "cvs", "walgreens", "rite aid", "medical", "doctor",
				"hospital", "clinic", "urgent care", "dental", "dentist", "vision",
				"optometry", "health", "prescription", "rx", "medicine", "lab corp",
				"quest diagnostics",
			},
		},
		{
			Category: model.CategoryTravel,
			Keywords: []string{
				"airline", "united", "delta", "american airlines", "southwest",
				"jetblue", "hotel", "motel", "marriott", "hilton", "hyatt",
				"holiday inn", "airbnb", "booking.com", "expedia", "travel",
				"vacation", "rental car", "hertz", "enterprise", "avis", "budget",
			},
		},
		{
			Category: model.CategoryIncome,
			Keywords: []string{
				"salary", "payroll", "direct deposit", "wage", "payment received",
				"dividend", "interest", "refund", "reimbursement", "paycheck",
				"income", "deposit", "transfer from",
			},
		},
		{
			Category: model.CategoryTransfer,
			Keywords: []string{
				"transfer to", "transfer from", "venmo", "paypal", "zelle",
				"cash app", "apple pay", "google pay", "atm withdrawal",
				"withdrawal", "internal transfer", "savings transfer",
			},
		},
		{
			Category: model.CategoryBills,
			Keywords: []string{
				"subscription", "monthly payment", "autopay", "bill pay",
				"insurance payment", "loan payment", "mortgage", "rent",
				"lease", "hoa", "condo fee", "membership", "dues",
			},
		},
		{
			Category: model.CategoryEducation,
			Keywords: []string{
				"school", "university", "college", "tuition", "student",
				"textbook", "education", "learning", "course", "class",
				"academy", "institute", "library", "bookstore",
			},
		},
		{
			Category: model.CategoryPersonalCare,
			Keywords: []string{
				"salon", "spa", "barber", "haircut", "nail", "beauty",
				"cosmetic", "skincare", "massage", "personal care",
			},
		},
		{
			Category: model.CategoryHome,
			Keywords: []string{
				"home depot", "lowes", "menards", "hardware", "furniture",
				"ikea", "bed bath", "garden", "nursery", "plant", "lawn",
				"home improvement", "repair", "contractor", "plumber",
				"electrician", "hvac",
			},
		},
		{
			Category: model.CategoryInsurance,
			Keywords: []string{
				"insurance", "geico", "state farm", "allstate", "progressive",
				"usaa", "liberty mutual", "nationwide", "farmers insurance",
				"auto insurance", "health insurance", "life insurance",
			},
		},
		{
			Category: model.CategoryFees,
			Keywords: []string{
				"fee", "charge", "overdraft", "late fee", "annual fee",
				"service charge", "maintenance fee", "atm fee", "penalty",
				"interest charge", "finance charge",
			},
		},
	}
}

// NewDefaultClassifier builds a classifier over the built-in rule table.
// The table contains no invalid patterns, so construction cannot fail.
func NewDefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultRules())
	if err != nil {
		panic(err) // unreachable: DefaultRules contains no regex patterns
	}
	return c
}
