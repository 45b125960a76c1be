package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"budgettracker/internal/csvio"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
)

var flagOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a budget period as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		period, err := resolvePeriod(s, flagYear)
		if err != nil {
			return err
		}
		expenses, err := s.app.Expenses.GetAllPeriodExpenses(s.user.ID, period.ID)
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if flagOut != "" && flagOut != "-" {
			f, err := os.Create(flagOut)
			if err != nil {
				return fmt.Errorf("creating %s: %w", flagOut, err)
			}
			defer f.Close()
			w = f
		}
		if err := csvio.Export(w, period.CalcPeriod(expenses)); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		if w != os.Stdout {
			progress("Wrote %d expenses of %d to %s", len(expenses), period.Year, flagOut)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add the expenses of a CSV file to a budget period",
	Long:  "Add the expenses of a CSV file to a budget period. Use - to read from stdin. Invalid rows are skipped and listed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		period, err := resolvePeriod(s, flagYear)
		if err != nil {
			return err
		}

		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()
			r = f
		}

		inputs, err := csvio.Parse(r)
		if err != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
		}
		if len(inputs) == 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "The file contains no expenses")
		}

		result, err := s.app.Expenses.ImportExpenses(s.user.ID, period.ID, inputs)
		if err != nil {
			return err
		}
		s.app.Audit.Log(s.user.ID, models.AuditActionImport, models.AuditResourcePeriod, period.ID, "",
			map[string]interface{}{"imported": result.Imported, "skipped": len(result.Skipped), "source": "cli"})

		fmt.Println(renderSuccess(fmt.Sprintf("Imported %d expenses into %d", result.Imported, period.Year)))
		if len(result.Skipped) > 0 {
			rows := make([][]string, 0, len(result.Skipped))
			for _, sk := range result.Skipped {
				rows = append(rows, []string{strconv.Itoa(sk.Row), sk.Name, strings.Join(sk.Errors, "; ")})
			}
			fmt.Println(RenderTable(Table{
				Title:   "Skipped",
				Headers: []string{"Row", "Name", "Errors"},
				Rows:    rows,
			}))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().IntVar(&flagYear, "year", 0, "Period year (default: the active period)")
	exportCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output file (default: stdout)")
	importCmd.Flags().IntVar(&flagYear, "year", 0, "Period year (default: the active period)")
	rootCmd.AddCommand(exportCmd, importCmd)
}
