package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumericOrZero(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"abc", 0},
		{"42", 42},
		{"  12.5  ", 12.5},
		{"-3", -3},
		{"+7", 7},
		{".5", 0.5},
		{"12abc", 12},
		{"1,000", 1},
		{"1e3", 1000},
		{"1e", 1},
		{"2.", 2},
		{"1e999", 0},
		{"NaN", 0},
		{"Infinity", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumericOrZero(tt.in))
		})
	}
}

func TestFormsCoerceInput(t *testing.T) {
	assert.Equal(t, ProfitResult{Profit: 400, MarginPercent: 40}, ProfitForm{Revenue: "1000", Cost: "600"}.Calculate())
	assert.Equal(t, ProfitResult{}, ProfitForm{Revenue: "", Cost: "x"}.Calculate())
	assert.Equal(t, LoanResult{}, LoanForm{Principal: "1000", Rate: "", Years: "2"}.Calculate())

	tax := TaxForm{Income: "600000", Deductions: "oops"}.Calculate()
	assert.InDelta(t, 32500, tax.Tax, 1e-6)

	assert.Equal(t, ProfitResult{Profit: -150, MarginPercent: 0}, ProfitForm{Revenue: "-100", Cost: "50"}.Calculate())

	deducted := TaxForm{Income: "700000", Deductions: "200000"}.Calculate()
	assert.InDelta(t, 687500, deducted.NetIncome, 1e-6)
}

func TestBudgetFormItems(t *testing.T) {
	f := BudgetForm{
		Income: "10000",
		Expenses: map[string]string{
			"supplies": "1000",
			"rent":     "4000",
			"travel":   "250",
			"ads":      "bad",
		},
	}
	items := f.Items()
	cats := make([]string, len(items))
	for i, it := range items {
		cats[i] = it.Category
	}
	assert.Equal(t, []string{"rent", "supplies", "marketing", "utilities", "other", "ads", "travel"}, cats)
	assert.Equal(t, BudgetResult{TotalExpenses: 5250, Remaining: 4750}, f.Calculate())
}
