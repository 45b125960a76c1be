package validator

import (
	"fmt"

	"budgettracker/internal/calc"
)

// Accepted budget years.
const (
	MinYear = 1900
	MaxYear = 2200
)

// PeriodInput is a budget period as entered by a user. A non-nil
// MonthlyPayments takes precedence over MonthlyPayment.
type PeriodInput struct {
	Year            int
	MonthlyPayment  float64
	MonthlyPayments []float64
	PreviousBalance float64
}

// ValidatePeriod checks a budget period and collects every problem found.
// The previous balance may be negative.
func ValidatePeriod(in PeriodInput) Result {
	var errs []string

	if in.Year < MinYear || in.Year > MaxYear {
		errs = append(errs, fmt.Sprintf("year must be between %d and %d", MinYear, MaxYear))
	}
	if in.MonthlyPayments != nil {
		if len(in.MonthlyPayments) != calc.MonthsPerYear {
			errs = append(errs, fmt.Sprintf("monthlyPayments must have exactly %d entries", calc.MonthsPerYear))
		} else if ValidateMonthlyAmounts(in.MonthlyPayments) == nil {
			errs = append(errs, "monthlyPayments must be non-negative numbers")
		}
	} else if !finite(in.MonthlyPayment) || in.MonthlyPayment < 0 {
		errs = append(errs, "monthlyPayment must be a non-negative number")
	}
	if !finite(in.PreviousBalance) {
		errs = append(errs, "previousBalance must be a number")
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}
