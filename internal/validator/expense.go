package validator

import (
	"fmt"
	"maps"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"budgettracker/internal/calc"
	"budgettracker/internal/dataset"
)

// MaxNameLength is the longest accepted expense name, in characters.
const MaxNameLength = 100

// Result is the outcome of a validation. Valid is true when Errors is empty.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ExpenseInput is an expense as entered by a user. A non-nil MonthlyAmounts
// takes precedence over Amount.
type ExpenseInput struct {
	Name           string
	Amount         *float64
	MonthlyAmounts []float64
	Frequency      string
	StartMonth     int
	EndMonth       int
}

// ValidateAmount parses a user-entered amount. Both "1.234,50" and
// "1,234.50" read as 1234.5: the last separator is the decimal mark, except
// that a single dot followed by exactly three digits groups thousands when
// the digits before it form a leading group (1-3 digits, no leading zero).
// Unparseable and negative input yields 0.
func ValidateAmount(input string) float64 {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-':
			return r
		}
		return -1
	}, input)
	if s == "" {
		return 0
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		lead := strings.TrimPrefix(s[:lastDot], "-")
		grouping := len(lead) >= 1 && len(lead) <= 3 && lead[0] != '0'
		if strings.Count(s, ".") > 1 || (grouping && len(s)-lastDot-1 == 3) {
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0
	}
	return d.InexactFloat64()
}

// ValidateMonthRange clamps both months to 1..12 and moves end up to start
// when the range is inverted.
func ValidateMonthRange(start, end int) (int, int) {
	start = clampMonth(start)
	end = clampMonth(end)
	if end < start {
		end = start
	}
	return start, end
}

// ValidateMonthlyAmounts returns the values as a fixed array when there are
// exactly twelve finite, non-negative entries, and nil otherwise.
func ValidateMonthlyAmounts(values []float64) *[calc.MonthsPerYear]float64 {
	if len(values) != calc.MonthsPerYear {
		return nil
	}
	var out [calc.MonthsPerYear]float64
	for i, v := range values {
		if !finite(v) || v < 0 {
			return nil
		}
		out[i] = v
	}
	return &out
}

// ValidateExpense checks an expense as entered by a user and collects every
// problem found.
func ValidateExpense(in ExpenseInput) Result {
	var errs []string

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		errs = append(errs, "name is required")
	case utf8.RuneCountInString(name) > MaxNameLength:
		errs = append(errs, fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}

	if in.MonthlyAmounts != nil {
		if len(in.MonthlyAmounts) != calc.MonthsPerYear {
			errs = append(errs, fmt.Sprintf("monthlyAmounts must have exactly %d entries", calc.MonthsPerYear))
		} else if ValidateMonthlyAmounts(in.MonthlyAmounts) == nil {
			errs = append(errs, "monthlyAmounts must be non-negative numbers")
		}
	} else {
		switch {
		case in.Amount == nil:
			errs = append(errs, "amount is required")
		case !finite(*in.Amount) || *in.Amount < 0:
			errs = append(errs, "amount must be a non-negative number")
		}
	}

	if !calc.Frequency(in.Frequency).Valid() {
		errs = append(errs, "frequency must be one of monthly, quarterly, yearly")
	}

	startOK := in.StartMonth >= 1 && in.StartMonth <= calc.MonthsPerYear
	endOK := in.EndMonth >= 1 && in.EndMonth <= calc.MonthsPerYear
	if !startOK {
		errs = append(errs, "startMonth must be between 1 and 12")
	}
	if !endOK {
		errs = append(errs, "endMonth must be between 1 and 12")
	}
	if startOK && endOK && in.EndMonth < in.StartMonth {
		errs = append(errs, "endMonth must not be before startMonth")
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// SanitizeExpense coerces an expense into a usable shape: the name is
// trimmed, the amount floored at 0, the month range clamped, an unknown
// frequency replaced by monthly and malformed monthly amounts dropped.
// Unknown fields are kept.
func SanitizeExpense(e dataset.Expense) dataset.Expense {
	out := e
	out.Name = strings.TrimSpace(e.Name)
	if !finite(e.Amount) || e.Amount < 0 {
		out.Amount = 0
	}
	out.StartMonth, out.EndMonth = ValidateMonthRange(e.StartMonth, e.EndMonth)
	if !calc.Frequency(e.Frequency).Valid() {
		out.Frequency = string(calc.Monthly)
	}

	out.MonthlyAmounts = nil
	if e.MonthlyAmounts != nil {
		if values := ValidateMonthlyAmounts(e.MonthlyAmounts); values != nil {
			out.MonthlyAmounts = values[:]
		}
	}

	if e.Extra != nil {
		out.Extra = maps.Clone(e.Extra)
	}
	return out
}

func clampMonth(m int) int {
	if m < 1 {
		return 1
	}
	if m > calc.MonthsPerYear {
		return calc.MonthsPerYear
	}
	return m
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
