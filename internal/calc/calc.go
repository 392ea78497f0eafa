// Package calc implements the finance calculators: profit margin, loan EMI,
// budget remainder and a simplified progressive income tax.
//
// All functions are pure. Invalid arithmetic (division by zero, overflow)
// yields zero instead of NaN or Inf.
package calc

import "math"

type (
	ProfitResult struct {
		Profit        float64 `json:"profit"`
		MarginPercent float64 `json:"marginPercent"`
	}

	LoanResult struct {
		MonthlyPayment float64 `json:"monthlyPayment"`
		TotalPayment   float64 `json:"totalPayment"`
		TotalInterest  float64 `json:"totalInterest"`
	}

	BudgetItem struct {
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
	}

	BudgetResult struct {
		TotalExpenses float64 `json:"totalExpenses"`
		Remaining     float64 `json:"remaining"`
	}

	TaxResult struct {
		TaxableIncome float64 `json:"taxableIncome"`
		Tax           float64 `json:"tax"`
		NetIncome     float64 `json:"netIncome"`
	}
)

// DefaultBudgetCategories is the order the budget form lists its inputs in.
var DefaultBudgetCategories = []string{"rent", "supplies", "marketing", "utilities", "other"}

// ProfitMargin returns revenue minus cost and the margin as a percentage of
// revenue. Zero or negative revenue gives a zero margin.
func ProfitMargin(revenue, cost float64) ProfitResult {
	profit := revenue - cost
	var margin float64
	if revenue > 0 {
		margin = profit / revenue * 100
	}
	return ProfitResult{Profit: profit, MarginPercent: margin}
}

// LoanAmortization computes the equal monthly installment
//
//	P * r * (1+r)^n / ((1+r)^n - 1)
//
// with r the monthly rate and n the number of months. A zero rate or zero
// term makes the formula non-finite. The monthly payment, the total and the
// interest are then each reported as 0, not only the monthly payment.
func LoanAmortization(principal, annualRatePercent, years float64) LoanResult {
	r := annualRatePercent / 100 / 12
	n := years * 12
	pow := math.Pow(1+r, n)
	monthly := principal * (r * pow) / (pow - 1)
	total := monthly * n
	interest := total - principal
	return LoanResult{
		MonthlyPayment: finiteOrZero(monthly),
		TotalPayment:   finiteOrZero(total),
		TotalInterest:  finiteOrZero(interest),
	}
}

// BudgetRemainder sums the expense lines in order and subtracts them from
// income. The remainder may be negative.
func BudgetRemainder(income float64, expenses []BudgetItem) BudgetResult {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return BudgetResult{TotalExpenses: total, Remaining: income - total}
}

// Tax bracket edges and the cumulative tax owed at each edge.
const (
	bracket1 = 250000.0
	bracket2 = 500000.0
	bracket3 = 1000000.0

	taxAtBracket2 = 12500.0  // 5% of 250000..500000
	taxAtBracket3 = 112500.0 // plus 20% of 500000..1000000
)

// ProgressiveTax applies 0% up to 2.5 lakh, 5% up to 5 lakh, 20% up to
// 10 lakh and 30% above on gross minus deductions. Net income is gross
// minus tax; deductions only lower the taxable base.
func ProgressiveTax(gross, deductions float64) TaxResult {
	taxable := math.Max(0, gross-deductions)
	var tax float64
	switch {
	case taxable <= bracket1:
		tax = 0
	case taxable <= bracket2:
		tax = (taxable - bracket1) * 0.05
	case taxable <= bracket3:
		tax = taxAtBracket2 + (taxable-bracket2)*0.20
	default:
		tax = taxAtBracket3 + (taxable-bracket3)*0.30
	}
	return TaxResult{TaxableIncome: taxable, Tax: tax, NetIncome: gross - tax}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
