package validator

import (
	"fmt"

	"budgettracker/internal/dataset"
)

// IntegrityResult is the outcome of checking a document before upload.
// Critical marks a document that would destroy cloud state if written,
// such as expenses without any budget period.
type IntegrityResult struct {
	Valid    bool         `json:"valid"`
	Critical bool         `json:"critical"`
	Errors   []string     `json:"errors"`
	Warnings []string     `json:"warnings"`
	Orphans  []dataset.ID `json:"orphans,omitempty"`
}

// DownloadResult is the outcome of checking a downloaded document. Data is
// the cleaned document and is only set when Valid is true.
type DownloadResult struct {
	Valid    bool             `json:"valid"`
	Errors   []string         `json:"errors"`
	Warnings []string         `json:"warnings"`
	Data     *dataset.Dataset `json:"-"`
}

// ValidateCloudData checks that a document is complete enough to upload.
// Every expense that references a budget period must find that period in
// the same document. Expenses without a reference are accepted.
func ValidateCloudData(d *dataset.Dataset) IntegrityResult {
	res := IntegrityResult{}
	res.Errors = append(res.Errors, structuralErrors(d)...)
	if len(res.Errors) > 0 {
		return res
	}

	if len(d.BudgetPeriods) == 0 && len(d.Expenses) > 0 {
		res.Critical = true
		res.Errors = append(res.Errors,
			fmt.Sprintf("document has %d expenses but no budget periods", len(d.Expenses)))
	}

	periods, dupes := periodIndex(d.BudgetPeriods)
	for _, id := range dupes {
		res.Warnings = append(res.Warnings, fmt.Sprintf("budget period %q appears more than once", id))
	}

	if !res.Critical {
		for _, e := range d.Expenses {
			if e.BudgetPeriodID == "" {
				continue
			}
			if _, ok := periods[e.BudgetPeriodID]; !ok {
				res.Orphans = append(res.Orphans, e.ID)
				res.Errors = append(res.Errors,
					fmt.Sprintf("expense %q references missing budget period %q", e.ID, e.BudgetPeriodID))
			}
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// ValidateDownloadedData checks a downloaded document and returns a cleaned
// copy. A document missing its arrays is invalid. Expenses referencing a
// budget period that is not in the document are dropped with a warning, and
// the remaining expenses are sanitized.
func ValidateDownloadedData(d *dataset.Dataset) DownloadResult {
	res := DownloadResult{Errors: structuralErrors(d)}
	if len(res.Errors) > 0 {
		return res
	}

	periods, dupes := periodIndex(d.BudgetPeriods)
	for _, id := range dupes {
		res.Warnings = append(res.Warnings, fmt.Sprintf("budget period %q appears more than once", id))
	}

	cleaned := &dataset.Dataset{
		Version:       d.Version,
		LastModified:  d.LastModified,
		Expenses:      make([]dataset.Expense, 0, len(d.Expenses)),
		BudgetPeriods: append([]dataset.BudgetPeriod{}, d.BudgetPeriods...),
	}
	if cleaned.Version == "" {
		cleaned.Version = dataset.SchemaVersion
		res.Warnings = append(res.Warnings, "document has no version, assuming "+dataset.SchemaVersion)
	}

	dropped := 0
	for _, e := range d.Expenses {
		if e.BudgetPeriodID != "" {
			if _, ok := periods[e.BudgetPeriodID]; !ok {
				dropped++
				continue
			}
		}
		cleaned.Expenses = append(cleaned.Expenses, SanitizeExpense(e))
	}
	if dropped > 0 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("removed %d expenses referencing missing budget periods", dropped))
	}

	res.Valid = true
	res.Data = cleaned
	return res
}

func structuralErrors(d *dataset.Dataset) []string {
	if d == nil {
		return []string{"document is empty"}
	}
	var errs []string
	if d.Expenses == nil {
		errs = append(errs, "document is missing the expenses array")
	}
	if d.BudgetPeriods == nil {
		errs = append(errs, "document is missing the budgetPeriods array")
	}
	return errs
}

func periodIndex(periods []dataset.BudgetPeriod) (map[dataset.ID]struct{}, []dataset.ID) {
	index := make(map[dataset.ID]struct{}, len(periods))
	var dupes []dataset.ID
	for _, p := range periods {
		if _, seen := index[p.ID]; seen {
			dupes = append(dupes, p.ID)
			continue
		}
		index[p.ID] = struct{}{}
	}
	return index, dupes
}
