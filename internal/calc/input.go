package calc

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseNumericOrZero reads the longest leading decimal number from s and
// ignores the rest, so "12abc" is 12 and "abc" is 0. Leading whitespace is
// skipped. Anything unparseable or non-finite becomes 0.
func ParseNumericOrZero(s string) float64 {
	m := numericPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// Form types carry raw user input. Calculate coerces every field with
// ParseNumericOrZero before computing.
type (
	ProfitForm struct {
		Revenue string
		Cost    string
	}

	LoanForm struct {
		Principal string
		Rate      string
		Years     string
	}

	BudgetForm struct {
		Income   string
		Expenses map[string]string
	}

	TaxForm struct {
		Income     string
		Deductions string
	}
)

func (f ProfitForm) Calculate() ProfitResult {
	return ProfitMargin(ParseNumericOrZero(f.Revenue), ParseNumericOrZero(f.Cost))
}

func (f LoanForm) Calculate() LoanResult {
	return LoanAmortization(ParseNumericOrZero(f.Principal), ParseNumericOrZero(f.Rate), ParseNumericOrZero(f.Years))
}

// Items lists the default categories first, in their fixed order, then any
// extra categories sorted by name.
func (f BudgetForm) Items() []BudgetItem {
	items := make([]BudgetItem, 0, len(f.Expenses))
	seen := make(map[string]bool, len(DefaultBudgetCategories))
	for _, c := range DefaultBudgetCategories {
		seen[c] = true
		items = append(items, BudgetItem{Category: c, Amount: ParseNumericOrZero(f.Expenses[c])})
	}
	var extra []string
	for c := range f.Expenses {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	slices.Sort(extra)
	for _, c := range extra {
		items = append(items, BudgetItem{Category: c, Amount: ParseNumericOrZero(f.Expenses[c])})
	}
	return items
}

func (f BudgetForm) Calculate() BudgetResult {
	return BudgetRemainder(ParseNumericOrZero(f.Income), f.Items())
}

func (f TaxForm) Calculate() TaxResult {
	return ProgressiveTax(ParseNumericOrZero(f.Income), ParseNumericOrZero(f.Deductions))
}
