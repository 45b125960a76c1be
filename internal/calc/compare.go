package calc

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Change statuses reported by CompareExpenses.
const (
	StatusAdded     = "added"
	StatusRemoved   = "removed"
	StatusChanged   = "changed"
	StatusUnchanged = "unchanged"
)

// Period is the input of the year comparison functions.
type Period struct {
	Year            int
	Expenses        []Expense
	Income          Amount
	PreviousBalance float64
}

// Change is the difference between a current and a previous value.
// Percent is relative to the magnitude of the previous value, rounded to one
// decimal, and 0 when the previous value is 0.
type Change struct {
	Current    float64 `json:"current"`
	Previous   float64 `json:"previous"`
	Difference float64 `json:"difference"`
	Percent    float64 `json:"percent"`
}

// PeriodComparison compares the summaries of two periods.
type PeriodComparison struct {
	CurrentYear    int     `json:"currentYear"`
	PreviousYear   int     `json:"previousYear"`
	Current        Summary `json:"current"`
	Previous       Summary `json:"previous"`
	TotalAnnual    Change  `json:"totalAnnual"`
	AvgMonthly     Change  `json:"avgMonthly"`
	MonthlyBalance Change  `json:"monthlyBalance"`
	AnnualReserve  Change  `json:"annualReserve"`
}

// MonthComparison compares the expense total of one month across periods.
type MonthComparison struct {
	Month int `json:"month"`
	Change
}

// ExpenseComparison compares one expense, matched by name, across periods.
type ExpenseComparison struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Change
}

// YearTrend is one year of a multi-year trend.
type YearTrend struct {
	Year    int     `json:"year"`
	Summary Summary `json:"summary"`
	// Change of the total annual expenses relative to the preceding year.
	// Zero for the first year.
	TotalAnnualChange Change `json:"totalAnnualChange"`
}

// ComparePeriods summarizes both periods and reports the differences.
func ComparePeriods(current, previous Period) PeriodComparison {
	cur := Summarize(current.Expenses, current.Income, current.PreviousBalance)
	prev := Summarize(previous.Expenses, previous.Income, previous.PreviousBalance)

	return PeriodComparison{
		CurrentYear:    current.Year,
		PreviousYear:   previous.Year,
		Current:        cur,
		Previous:       prev,
		TotalAnnual:    change(dec(cur.TotalAnnual), dec(prev.TotalAnnual)),
		AvgMonthly:     change(dec(cur.AvgMonthly), dec(prev.AvgMonthly)),
		MonthlyBalance: change(dec(cur.MonthlyBalance), dec(prev.MonthlyBalance)),
		AnnualReserve:  change(dec(cur.AnnualReserve), dec(prev.AnnualReserve)),
	}
}

// CompareMonthlyTotals compares the monthly expense totals of two periods.
func CompareMonthlyTotals(current, previous []Expense) []MonthComparison {
	cur := monthlyTotals(current)
	prev := monthlyTotals(previous)

	out := make([]MonthComparison, 0, MonthsPerYear)
	for i := 0; i < MonthsPerYear; i++ {
		out = append(out, MonthComparison{Month: i + 1, Change: change(cur[i], prev[i])})
	}
	return out
}

// CompareExpenses matches expenses across periods by case-insensitive name
// and reports how each one changed. Expenses of the current period come first
// in their original order, followed by expenses that were removed.
// Several expenses sharing a name are compared by their combined total.
func CompareExpenses(current, previous []Expense) []ExpenseComparison {
	curTotals, curOrder, curNames := totalsByName(current)
	prevTotals, prevOrder, prevNames := totalsByName(previous)

	out := make([]ExpenseComparison, 0, len(curOrder)+len(prevOrder))
	for _, key := range curOrder {
		cur := curTotals[key]
		prev, seen := prevTotals[key]
		if !seen {
			out = append(out, ExpenseComparison{Name: curNames[key], Status: StatusAdded, Change: change(cur, decimal.Zero)})
			continue
		}
		status := StatusUnchanged
		if !cur.Equal(prev) {
			status = StatusChanged
		}
		out = append(out, ExpenseComparison{Name: curNames[key], Status: status, Change: change(cur, prev)})
	}

	for _, key := range prevOrder {
		if _, ok := curTotals[key]; ok {
			continue
		}
		out = append(out, ExpenseComparison{Name: prevNames[key], Status: StatusRemoved, Change: change(decimal.Zero, prevTotals[key])})
	}
	return out
}

// CalculateYearlyTrends summarizes every period and relates each year's total
// to the year before it. The result is ordered by year; the first year has
// no change.
func CalculateYearlyTrends(periods []Period) []YearTrend {
	sorted := make([]Period, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	trends := make([]YearTrend, 0, len(sorted))
	for i, p := range sorted {
		s := Summarize(p.Expenses, p.Income, p.PreviousBalance)
		t := YearTrend{Year: p.Year, Summary: s}
		if i > 0 {
			t.TotalAnnualChange = change(dec(s.TotalAnnual), dec(trends[i-1].Summary.TotalAnnual))
		}
		trends = append(trends, t)
	}
	return trends
}

// NameKey folds an expense name for case-insensitive matching.
func NameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func totalsByName(expenses []Expense) (map[string]decimal.Decimal, []string, map[string]string) {
	totals := make(map[string]decimal.Decimal, len(expenses))
	names := make(map[string]string, len(expenses))
	order := make([]string, 0, len(expenses))
	for _, e := range expenses {
		key := NameKey(e.Name)
		sum, ok := totals[key]
		if !ok {
			sum = decimal.Zero
			order = append(order, key)
			names[key] = strings.TrimSpace(e.Name)
		}
		totals[key] = sum.Add(annual(e))
	}
	return totals, order, names
}

func change(current, previous decimal.Decimal) Change {
	diff := current.Sub(previous)
	c := Change{
		Current:    current.InexactFloat64(),
		Previous:   previous.InexactFloat64(),
		Difference: diff.InexactFloat64(),
	}
	if !previous.IsZero() {
		c.Percent = diff.Div(previous.Abs()).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
	}
	return c
}
