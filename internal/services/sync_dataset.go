package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"budgettracker/internal/dataset"
	"budgettracker/internal/models"
	"budgettracker/internal/uuid"
)

// buildDataset reads the user's complete budget from the local database.
func buildDataset(db *gorm.DB, userID string) (*dataset.Dataset, error) {
	var periods []models.BudgetPeriod
	if err := db.Scopes(models.OwnedBy(userID)).Order("year ASC").Find(&periods).Error; err != nil {
		return nil, err
	}
	var expenses []models.Expense
	if err := db.Scopes(models.OwnedBy(userID)).Order("created_at ASC, id ASC").Find(&expenses).Error; err != nil {
		return nil, err
	}

	d := dataset.New()
	for i := range periods {
		d.BudgetPeriods = append(d.BudgetPeriods, periods[i].ToDataset())
	}
	for i := range expenses {
		d.Expenses = append(d.Expenses, expenses[i].ToDataset())
	}
	return d, nil
}

type replaceStats struct {
	periods  int
	expenses int
	warnings []string
}

// replaceLocal swaps the user's periods and expenses for the content of d.
// Record IDs are kept unless they are empty or taken by another user, in
// which case new ones are assigned and expense references follow. Expenses
// without a period join the active period. The result has exactly one
// active period when it has any periods.
func replaceLocal(tx *gorm.DB, userID string, d *dataset.Dataset) (replaceStats, error) {
	var stats replaceStats

	if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.Expense{}).Error; err != nil {
		return stats, err
	}
	if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.BudgetPeriod{}).Error; err != nil {
		return stats, err
	}

	periods := make([]models.BudgetPeriod, 0, len(d.BudgetPeriods))
	for _, dp := range d.BudgetPeriods {
		periods = append(periods, models.PeriodFromDataset(userID, dp))
	}
	stats.warnings = append(stats.warnings, normalizeActive(periods)...)

	created := time.Now().UTC()
	ids := make(map[dataset.ID]string, len(periods))
	activeID := ""
	for i := range periods {
		p := &periods[i]
		original := d.BudgetPeriods[i].ID
		id, err := freeID(tx, &models.BudgetPeriod{}, p.ID)
		if err != nil {
			return stats, err
		}
		p.ID = id
		p.CreatedAt = created.Add(time.Duration(i) * time.Microsecond)
		if err := tx.Create(p).Error; err != nil {
			return stats, err
		}
		if _, seen := ids[original]; !seen && original != "" {
			ids[original] = id
		}
		if p.Status == models.PeriodStatusActive {
			activeID = id
		}
	}
	stats.periods = len(periods)

	for i, de := range d.Expenses {
		periodID, ok := ids[de.BudgetPeriodID]
		if de.BudgetPeriodID == "" {
			periodID, ok = activeID, activeID != ""
		}
		if !ok {
			stats.warnings = append(stats.warnings, fmt.Sprintf("skipped expense %q without a budget period", de.Name))
			continue
		}

		e := models.ExpenseFromDataset(userID, periodID, de)
		id, err := freeID(tx, &models.Expense{}, e.ID)
		if err != nil {
			return stats, err
		}
		e.ID = id
		e.CreatedAt = created.Add(time.Duration(i) * time.Microsecond)
		if err := tx.Create(&e).Error; err != nil {
			return stats, err
		}
		stats.expenses++
	}

	return stats, nil
}

// normalizeActive leaves exactly one active period, preferring the latest
// year, and reports what it changed.
func normalizeActive(periods []models.BudgetPeriod) []string {
	if len(periods) == 0 {
		return nil
	}

	best := -1
	count := 0
	for i := range periods {
		if periods[i].Status != models.PeriodStatusActive {
			continue
		}
		count++
		if best < 0 || periods[i].Year > periods[best].Year {
			best = i
		}
	}

	var warnings []string
	if count == 0 {
		for i := range periods {
			if best < 0 || periods[i].Year > periods[best].Year {
				best = i
			}
		}
		warnings = append(warnings, fmt.Sprintf("no active budget period, activated %d", periods[best].Year))
	} else if count > 1 {
		warnings = append(warnings, fmt.Sprintf("%d active budget periods, kept %d", count, periods[best].Year))
	}

	for i := range periods {
		if i == best {
			periods[i].Status = models.PeriodStatusActive
		} else {
			periods[i].Status = models.PeriodStatusArchived
		}
	}
	return warnings
}

// freeID returns id when no row of model uses it, including soft-deleted
// rows, and a fresh id otherwise.
func freeID(tx *gorm.DB, model interface{}, id string) (string, error) {
	if id == "" {
		return uuid.New(), nil
	}
	var count int64
	if err := tx.Unscoped().Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return uuid.New(), nil
	}
	return id, nil
}
