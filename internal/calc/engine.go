package calc

import (
	"github.com/shopspring/decimal"
)

var twelve = decimal.NewFromInt(MonthsPerYear)

// Expense is the calculation view of a recurring cost. StartMonth and
// EndMonth are 1-based and inclusive.
type Expense struct {
	ID         string
	Name       string
	Amount     Amount
	Frequency  Frequency
	StartMonth int
	EndMonth   int
}

// Summary holds the headline figures of a budget period, rounded to whole
// currency units.
type Summary struct {
	TotalAnnual    float64 `json:"totalAnnual"`
	AvgMonthly     float64 `json:"avgMonthly"`
	MonthlyBalance float64 `json:"monthlyBalance"`
	AnnualReserve  float64 `json:"annualReserve"`
}

// ProjectionPoint is the running balance at the end of a month.
type ProjectionPoint struct {
	Month   int     `json:"month"`
	Balance float64 `json:"balance"`
}

// FrequencyGroup is the annual total of all expenses sharing a frequency.
type FrequencyGroup struct {
	Frequency Frequency `json:"frequency"`
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
}

// AnnualAmount returns what an expense costs over the whole year.
func AnnualAmount(e Expense) float64 {
	return annual(e).InexactFloat64()
}

// MonthlyAmount returns what an expense costs in the given 1-based month.
func MonthlyAmount(e Expense, month int) float64 {
	return monthly(e, month).InexactFloat64()
}

// MonthlyTotals returns the combined cost of all expenses per month,
// index 0 being January.
func MonthlyTotals(expenses []Expense) [MonthsPerYear]float64 {
	totals := monthlyTotals(expenses)
	var out [MonthsPerYear]float64
	for i, t := range totals {
		out[i] = t.InexactFloat64()
	}
	return out
}

// Summarize computes the period summary for the given expenses, income and
// balance carried over from the previous period.
func Summarize(expenses []Expense, income Amount, previousBalance float64) Summary {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(annual(e))
	}

	avg := total.Div(twelve)
	balance := dec(income.Average()).Sub(avg)
	reserve := balance.Mul(twelve).Add(dec(previousBalance))

	return Summary{
		TotalAnnual:    whole(total),
		AvgMonthly:     whole(avg),
		MonthlyBalance: whole(balance),
		AnnualReserve:  whole(reserve),
	}
}

// BalanceProjection returns the running balance for each month of the year,
// starting from previousBalance and adding the income minus the expenses of
// every month.
func BalanceProjection(expenses []Expense, income Amount, previousBalance float64) []ProjectionPoint {
	totals := monthlyTotals(expenses)
	running := dec(previousBalance)

	points := make([]ProjectionPoint, 0, MonthsPerYear)
	for m := 1; m <= MonthsPerYear; m++ {
		running = running.Add(dec(income.At(m))).Sub(totals[m-1])
		points = append(points, ProjectionPoint{Month: m, Balance: whole(running)})
	}
	return points
}

// GroupByFrequency buckets annual totals by frequency. Buckets whose total is
// zero are left out.
func GroupByFrequency(expenses []Expense) []FrequencyGroup {
	buckets := make(map[Frequency]decimal.Decimal, len(Frequencies))
	for _, e := range expenses {
		if !e.Frequency.Valid() {
			continue
		}
		sum, ok := buckets[e.Frequency]
		if !ok {
			sum = decimal.Zero
		}
		buckets[e.Frequency] = sum.Add(annual(e))
	}

	groups := make([]FrequencyGroup, 0, len(Frequencies))
	for _, f := range Frequencies {
		v, ok := buckets[f]
		if !ok || v.IsZero() {
			continue
		}
		groups = append(groups, FrequencyGroup{Frequency: f, Name: f.Label(), Value: v.InexactFloat64()})
	}
	return groups
}

func annual(e Expense) decimal.Decimal {
	if e.Amount.IsVariable() {
		total := decimal.Zero
		for m := 1; m <= MonthsPerYear; m++ {
			total = total.Add(monthly(e, m))
		}
		return total
	}

	amount := dec(e.Amount.fixed)
	if !amount.IsPositive() {
		return decimal.Zero
	}

	start, end, ok := monthRange(e)
	if !ok {
		return decimal.Zero
	}

	switch e.Frequency {
	case Yearly:
		return amount
	case Quarterly:
		return amount.Mul(decimal.NewFromInt(int64(quartersIn(start, end))))
	case Monthly:
		return amount.Mul(decimal.NewFromInt(int64(end - start + 1)))
	}
	return decimal.Zero
}

func monthly(e Expense, month int) decimal.Decimal {
	start, end, ok := monthRange(e)
	if !ok || month < start || month > end {
		return decimal.Zero
	}

	v := dec(e.Amount.At(month))
	if !v.IsPositive() {
		return decimal.Zero
	}

	switch e.Frequency {
	case Yearly:
		if month == start {
			return v
		}
	case Quarterly:
		if isQuarterMonth(month) {
			return v
		}
	case Monthly:
		return v
	}
	return decimal.Zero
}

func monthlyTotals(expenses []Expense) [MonthsPerYear]decimal.Decimal {
	var totals [MonthsPerYear]decimal.Decimal
	for i := range totals {
		totals[i] = decimal.Zero
	}
	for _, e := range expenses {
		for m := 1; m <= MonthsPerYear; m++ {
			totals[m-1] = totals[m-1].Add(monthly(e, m))
		}
	}
	return totals
}

// monthRange clamps the expense's month range to 1..12. It reports false for
// an inverted range.
func monthRange(e Expense) (int, int, bool) {
	start, end := e.StartMonth, e.EndMonth
	if start < 1 {
		start = 1
	}
	if end > MonthsPerYear {
		end = MonthsPerYear
	}
	if end < start {
		return 0, 0, false
	}
	return start, end, true
}

func quartersIn(start, end int) int {
	n := 0
	for _, q := range QuarterMonths {
		if q >= start && q <= end {
			n++
		}
	}
	return n
}

func isQuarterMonth(month int) bool {
	for _, q := range QuarterMonths {
		if q == month {
			return true
		}
	}
	return false
}
