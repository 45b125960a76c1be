// Package calc derives annualized totals, monthly breakdowns, summaries,
// projections and year-over-year comparisons from a list of recurring
// expenses and an income configuration. Every function is pure.
package calc

import (
	"math"

	"github.com/shopspring/decimal"
)

// MonthsPerYear is the number of months in a budget period.
const MonthsPerYear = 12

// QuarterMonths are the months in which a quarterly expense is charged.
var QuarterMonths = [4]int{1, 4, 7, 10}

// Frequency is how often an expense recurs.
type Frequency string

const (
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

// Frequencies lists the supported frequencies in display order.
var Frequencies = []Frequency{Monthly, Quarterly, Yearly}

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

// Label returns the Danish display label used in charts and CSV exports.
func (f Frequency) Label() string {
	switch f {
	case Monthly:
		return "Månedlig"
	case Quarterly:
		return "Kvartalsvis"
	case Yearly:
		return "Årlig"
	}
	return string(f)
}

// Amount is either a single fixed value or twelve per-month values.
// The zero value is Fixed(0).
type Amount struct {
	variable bool
	fixed    float64
	monthly  [MonthsPerYear]float64
}

// Fixed returns an amount that is the same in every month.
func Fixed(v float64) Amount {
	return Amount{fixed: v}
}

// Variable returns an amount with an individual value per month,
// index 0 being January.
func Variable(values [MonthsPerYear]float64) Amount {
	return Amount{variable: true, monthly: values}
}

// IsVariable reports whether the amount carries per-month values.
func (a Amount) IsVariable() bool { return a.variable }

// Value returns the fixed value, or the monthly average for variable amounts.
func (a Amount) Value() float64 {
	if a.variable {
		return a.Average()
	}
	return a.fixed
}

// Months returns the per-month values; a fixed amount repeats its value.
func (a Amount) Months() [MonthsPerYear]float64 {
	if a.variable {
		return a.monthly
	}
	var out [MonthsPerYear]float64
	for i := range out {
		out[i] = a.fixed
	}
	return out
}

// At returns the value for a 1-based month, or 0 for months outside 1..12.
func (a Amount) At(month int) float64 {
	if month < 1 || month > MonthsPerYear {
		return 0
	}
	if a.variable {
		return a.monthly[month-1]
	}
	return a.fixed
}

// Average returns the mean monthly value.
func (a Amount) Average() float64 {
	if !a.variable {
		return finite(a.fixed)
	}
	total := decimal.Zero
	for _, v := range a.monthly {
		total = total.Add(dec(v))
	}
	return total.Div(decimal.NewFromInt(MonthsPerYear)).InexactFloat64()
}

// dec converts a float to a decimal, treating NaN and infinities as zero.
func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(finite(v))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// whole rounds to the nearest whole currency unit.
func whole(d decimal.Decimal) float64 {
	return d.Round(0).InexactFloat64()
}
