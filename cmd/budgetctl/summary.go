package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"budgettracker/internal/calc"
	"budgettracker/internal/csvio"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
)

var (
	flagYear     int
	flagCompare  int
	flagByMonths bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the summary of a budget period",
	Long:  "Show the summary of a budget period. Without --year the active period is used.",
	RunE:  runSummary,
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show year-over-year totals of all periods",
	RunE:  runTrends,
}

func init() {
	summaryCmd.Flags().IntVar(&flagYear, "year", 0, "Period year (default: the active period)")
	summaryCmd.Flags().IntVar(&flagCompare, "compare", 0, "Compare against the period of this year")
	summaryCmd.Flags().BoolVar(&flagByMonths, "months", false, "Also show the monthly totals")
	rootCmd.AddCommand(summaryCmd, trendsCmd)
}

// resolvePeriod returns the period of year, or the active period when year
// is zero.
func resolvePeriod(s *session, year int) (*models.BudgetPeriod, error) {
	if year == 0 {
		return s.app.Periods.GetActivePeriod(s.user.ID)
	}
	periods, err := s.app.Periods.GetUserPeriods(s.user.ID, nil)
	if err != nil {
		return nil, err
	}
	for i := range periods {
		if periods[i].Year == year {
			return &periods[i], nil
		}
	}
	return nil, apperrors.WithMessage(apperrors.ErrPeriodNotFound, fmt.Sprintf("No budget period for %d", year))
}

func runSummary(cmd *cobra.Command, _ []string) error {
	s, err := open(cmd)
	if err != nil {
		return err
	}

	period, err := resolvePeriod(s, flagYear)
	if err != nil {
		return err
	}
	summary, err := s.app.Reports.GetSummary(s.user.ID, period.ID)
	if err != nil {
		return err
	}
	groups, err := s.app.Reports.GetFrequencyBreakdown(s.user.ID, period.ID)
	if err != nil {
		return err
	}

	fmt.Println(RenderTitle(fmt.Sprintf("BUDGET %d  %s", period.Year, period.Status)))
	fmt.Println(RenderTable(Table{
		Rows: [][]string{
			{"Annual expenses", formatMoney(summary.TotalAnnual)},
			{"Average per month", formatMoney(summary.AvgMonthly)},
			{"Monthly payment", formatMoney(period.Income().Average())},
			{"Monthly balance", formatMoney(summary.MonthlyBalance)},
			{"---"},
			{"Previous balance", formatMoney(period.PreviousBalance)},
			{"Annual reserve", formatMoney(summary.AnnualReserve)},
		},
	}))

	if len(groups) > 0 {
		rows := make([][]string, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, []string{g.Name, formatMoney(g.Value)})
		}
		fmt.Println(RenderTable(Table{
			Title:   "By frequency",
			Headers: []string{"Frequency", "Annual"},
			Rows:    rows,
		}))
	}

	if flagByMonths {
		totals, err := s.app.Reports.GetMonthlyTotals(s.user.ID, period.ID)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, calc.MonthsPerYear)
		for i, v := range totals {
			rows = append(rows, []string{csvio.MonthNames[i], formatMoney(v)})
		}
		fmt.Println(RenderTable(Table{
			Title:   "Monthly expenses",
			Headers: []string{"Month", "Total"},
			Rows:    rows,
		}))
	}

	if flagCompare != 0 {
		previous, err := resolvePeriod(s, flagCompare)
		if err != nil {
			return err
		}
		return printComparison(s, period, previous)
	}
	return nil
}

func printComparison(s *session, current, previous *models.BudgetPeriod) error {
	cmp, err := s.app.Reports.ComparePeriods(s.user.ID, current.ID, previous.ID)
	if err != nil {
		return err
	}
	row := func(label string, c calc.Change) []string {
		return []string{label, formatMoney(c.Previous), formatMoney(c.Current), formatMoney(c.Difference), formatPercent(c.Percent)}
	}
	fmt.Println(RenderTable(Table{
		Title:   fmt.Sprintf("%d vs %d", cmp.CurrentYear, cmp.PreviousYear),
		Headers: []string{"", strconv.Itoa(cmp.PreviousYear), strconv.Itoa(cmp.CurrentYear), "Change", "%"},
		Rows: [][]string{
			row("Annual expenses", cmp.TotalAnnual),
			row("Average per month", cmp.AvgMonthly),
			row("Monthly balance", cmp.MonthlyBalance),
			row("Annual reserve", cmp.AnnualReserve),
		},
	}))

	expenses, err := s.app.Reports.CompareExpenses(s.user.ID, current.ID, previous.ID)
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []string{e.Name, e.Status, formatMoney(e.Previous), formatMoney(e.Current), formatMoney(e.Difference)})
	}
	fmt.Println(RenderTable(Table{
		Title:   "Expenses",
		Headers: []string{"Name", "Status", "Before", "Now", "Change"},
		Rows:    rows,
	}))
	return nil
}

func runTrends(cmd *cobra.Command, _ []string) error {
	s, err := open(cmd)
	if err != nil {
		return err
	}
	trends, err := s.app.Reports.GetYearlyTrends(s.user.ID)
	if err != nil {
		return err
	}
	if len(trends) == 0 {
		fmt.Println(renderWarning("no budget periods yet"))
		return nil
	}

	rows := make([][]string, 0, len(trends))
	for i, t := range trends {
		change := ""
		if i > 0 {
			change = formatMoney(t.TotalAnnualChange.Difference) + " (" + formatPercent(t.TotalAnnualChange.Percent) + ")"
		}
		rows = append(rows, []string{
			strconv.Itoa(t.Year),
			formatMoney(t.Summary.TotalAnnual),
			formatMoney(t.Summary.AvgMonthly),
			formatMoney(t.Summary.MonthlyBalance),
			change,
		})
	}
	fmt.Println(RenderTable(Table{
		Title:   "Trends",
		Headers: []string{"Year", "Annual", "Per month", "Balance", "Change"},
		Rows:    rows,
	}))
	return nil
}
