// Package csvio reads and writes the spreadsheet form of a budget period.
//
// An export has three sections separated by blank lines: one row per
// expense under the header
//
//	Udgift,Beløb,Frekvens,Start Måned,Slut Måned,Årlig Total
//
// then a month-by-month breakdown with a totals row, then the period
// summary. Every field is written quoted. Files start with a UTF-8 byte
// order mark so spreadsheet programs pick the right encoding.
package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"budgettracker/internal/calc"
	"budgettracker/internal/validator"
)

const bom = "\ufeff"

// Header is the header of the expense section.
var Header = []string{"Udgift", "Beløb", "Frekvens", "Start Måned", "Slut Måned", "Årlig Total"}

// MonthNames are the Danish month names used in exports.
var MonthNames = [calc.MonthsPerYear]string{
	"Januar", "Februar", "Marts", "April", "Maj", "Juni",
	"Juli", "August", "September", "Oktober", "November", "December",
}

const (
	colName = iota
	colAmount
	colFrequency
	colStart
	colEnd
)

// Export writes period as CSV. Variable amounts leave the Beløb column
// empty; their values are in the breakdown section.
func Export(w io.Writer, period calc.Period) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := newQuotedWriter(w)

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range period.Expenses {
		amount := ""
		if !e.Amount.IsVariable() {
			amount = money(e.Amount.Value())
		}
		record := []string{
			e.Name,
			amount,
			e.Frequency.Label(),
			MonthNames[clampMonth(e.StartMonth)-1],
			MonthNames[clampMonth(e.EndMonth)-1],
			money(calc.AnnualAmount(e)),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	breakdown := make([]string, 0, calc.MonthsPerYear+2)
	breakdown = append(breakdown, "Udgift")
	breakdown = append(breakdown, MonthNames[:]...)
	breakdown = append(breakdown, "Total")
	if err := writeSection(cw, breakdown); err != nil {
		return err
	}
	for _, e := range period.Expenses {
		record := []string{e.Name}
		for m := 1; m <= calc.MonthsPerYear; m++ {
			record = append(record, money(calc.MonthlyAmount(e, m)))
		}
		record = append(record, money(calc.AnnualAmount(e)))
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	totals := calc.MonthlyTotals(period.Expenses)
	sum := decimal.Zero
	record := []string{"Total"}
	for _, v := range totals {
		record = append(record, money(v))
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	record = append(record, money(sum.InexactFloat64()))
	if err := cw.Write(record); err != nil {
		return err
	}

	s := calc.Summarize(period.Expenses, period.Income, period.PreviousBalance)
	if err := writeSection(cw, []string{"Oversigt", strconv.Itoa(period.Year)}); err != nil {
		return err
	}
	rows := [][]string{
		{"Årlige udgifter", money(s.TotalAnnual)},
		{"Gennemsnit pr. måned", money(s.AvgMonthly)},
		{"Månedlig indbetaling", money(period.Income.Average())},
		{"Månedlig balance", money(s.MonthlyBalance)},
		{"Overført saldo", money(period.PreviousBalance)},
		{"Årlig reserve", money(s.AnnualReserve)},
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// quotedWriter writes CSV records with every field quoted. encoding/csv
// only quotes fields that need it.
type quotedWriter struct {
	w *bufio.Writer
}

func newQuotedWriter(w io.Writer) *quotedWriter {
	return &quotedWriter{w: bufio.NewWriter(w)}
}

// Write writes one record. A nil record writes an empty line.
func (q *quotedWriter) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if err := q.w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := q.w.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	return q.w.WriteByte('\n')
}

func (q *quotedWriter) Flush() error {
	return q.w.Flush()
}

func writeSection(cw *quotedWriter, header []string) error {
	if err := cw.Write(nil); err != nil {
		return err
	}
	return cw.Write(header)
}

// Parse reads expenses from the first section of a CSV file. The header row
// is optional and may be Danish or English. Rows are returned as entered so
// that validation can report problems per row; months and frequencies are
// understood in Danish and English, and amounts in either decimal
// convention. Empty rows are skipped.
func Parse(r io.Reader) ([]validator.ExpenseInput, error) {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(bom)); err == nil && string(lead) == bom {
		_, _ = br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var inputs []validator.ExpenseInput
	var variable []int
	breakdown := map[string][]float64{}
	section := 0
	first := true

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if blank(record) {
			continue
		}

		key := fold(record[0])
		switch {
		case first && isExpenseHeader(key) && !isBreakdown(record):
			first = false
			continue
		case isBreakdown(record):
			section = 1
			if isExpenseHeader(key) {
				continue
			}
		case key == fold("Oversigt") || key == fold("Summary"):
			section = 2
		}
		first = false

		switch section {
		case 0:
			in := parseRow(record)
			if in.Amount == nil {
				variable = append(variable, len(inputs))
			}
			inputs = append(inputs, in)
		case 1:
			if _, seen := breakdown[key]; !seen && key != fold("Total") {
				breakdown[key] = parseMonths(record[1:])
			}
		}
	}

	for _, i := range variable {
		if months, ok := breakdown[fold(inputs[i].Name)]; ok {
			inputs[i].MonthlyAmounts = months
		}
	}
	return inputs, nil
}

func parseRow(record []string) validator.ExpenseInput {
	in := validator.ExpenseInput{
		Name:       cell(record, colName),
		Frequency:  ParseFrequency(cell(record, colFrequency)),
		StartMonth: 1,
		EndMonth:   calc.MonthsPerYear,
	}
	if raw := cell(record, colAmount); raw != "" {
		v := validator.ValidateAmount(raw)
		in.Amount = &v
	}
	if raw := cell(record, colStart); raw != "" {
		in.StartMonth = ParseMonth(raw)
	}
	if raw := cell(record, colEnd); raw != "" {
		in.EndMonth = ParseMonth(raw)
	}
	return in
}

func parseMonths(cells []string) []float64 {
	if len(cells) < calc.MonthsPerYear {
		return nil
	}
	out := make([]float64, calc.MonthsPerYear)
	for i := range out {
		out[i] = validator.ValidateAmount(cells[i])
	}
	return out
}

var monthWords = map[string]int{}

func init() {
	english := []string{
		"january", "february", "march", "april", "may", "june",
		"july", "august", "september", "october", "november", "december",
	}
	for i := range MonthNames {
		for _, name := range []string{fold(MonthNames[i]), english[i]} {
			monthWords[name] = i + 1
			monthWords[name[:3]] = i + 1
		}
	}
}

// ParseMonth reads a month number or a Danish or English month name, full
// or abbreviated to three letters. It returns 0 when the month is unknown.
func ParseMonth(s string) int {
	s = strings.TrimSuffix(fold(s), ".")
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > calc.MonthsPerYear {
			return 0
		}
		return n
	}
	return monthWords[s]
}

var frequencyWords = map[string]calc.Frequency{
	"monthly": calc.Monthly, "month": calc.Monthly,
	"månedlig": calc.Monthly, "månedligt": calc.Monthly, "maanedlig": calc.Monthly, "måned": calc.Monthly,
	"quarterly": calc.Quarterly, "quarter": calc.Quarterly,
	"kvartalsvis": calc.Quarterly, "kvartal": calc.Quarterly, "kvartalsvist": calc.Quarterly,
	"yearly": calc.Yearly, "annual": calc.Yearly, "annually": calc.Yearly, "year": calc.Yearly,
	"årlig": calc.Yearly, "årligt": calc.Yearly, "aarlig": calc.Yearly, "år": calc.Yearly,
}

// ParseFrequency maps a Danish or English frequency word to its frequency.
// Unknown words are returned unchanged so validation can report them.
func ParseFrequency(s string) string {
	if f, ok := frequencyWords[fold(s)]; ok {
		return string(f)
	}
	return strings.TrimSpace(s)
}

func isExpenseHeader(key string) bool {
	switch key {
	case fold(Header[colName]), "expense", "name":
		return true
	}
	return false
}

// isBreakdown reports whether record belongs to the monthly breakdown:
// a name followed by twelve months and a total.
func isBreakdown(record []string) bool {
	return len(record) >= calc.MonthsPerYear+2
}

func blank(record []string) bool {
	for _, c := range record {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func clampMonth(m int) int {
	start, _ := validator.ValidateMonthRange(m, calc.MonthsPerYear)
	return start
}
