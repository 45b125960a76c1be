package models

import (
	"budgettracker/internal/calc"
	"budgettracker/internal/dataset"
)

// Expense is a recurring cost within a budget period. When MonthlyAmounts
// holds twelve values they replace Amount.
type Expense struct {
	Base
	UserID         string         `gorm:"not null;index;type:text" json:"user_id"`
	BudgetPeriodID string         `gorm:"not null;index;type:text" json:"budget_period_id"`
	Name           string         `gorm:"not null" json:"name"`
	Amount         float64        `gorm:"not null;default:0" json:"amount"`
	MonthlyAmounts []float64      `gorm:"type:text;serializer:json" json:"monthly_amounts,omitempty"`
	Frequency      calc.Frequency `gorm:"not null" json:"frequency"`
	StartMonth     int            `gorm:"not null;default:1" json:"start_month"`
	EndMonth       int            `gorm:"not null;default:12" json:"end_month"`
}

// Calc converts the expense for the calculation engine.
func (e *Expense) Calc() calc.Expense {
	return e.ToDataset().Calc()
}

// CalcExpenses converts a list of expenses for the calculation engine.
func CalcExpenses(expenses []Expense) []calc.Expense {
	out := make([]calc.Expense, len(expenses))
	for i := range expenses {
		out[i] = expenses[i].Calc()
	}
	return out
}

// ToDataset converts the expense to its cloud document form.
func (e *Expense) ToDataset() dataset.Expense {
	return dataset.Expense{
		ID:             dataset.ID(e.ID),
		BudgetPeriodID: dataset.ID(e.BudgetPeriodID),
		Name:           e.Name,
		Amount:         e.Amount,
		Frequency:      string(e.Frequency),
		StartMonth:     e.StartMonth,
		EndMonth:       e.EndMonth,
		MonthlyAmounts: e.MonthlyAmounts,
	}
}

// ExpenseFromDataset builds an expense owned by userID from its cloud
// document form. The input is expected to be sanitized.
func ExpenseFromDataset(userID, periodID string, d dataset.Expense) Expense {
	e := Expense{
		UserID:         userID,
		BudgetPeriodID: periodID,
		Name:           d.Name,
		Amount:         d.Amount,
		Frequency:      calc.Frequency(d.Frequency),
		StartMonth:     d.StartMonth,
		EndMonth:       d.EndMonth,
	}
	if len(d.MonthlyAmounts) == calc.MonthsPerYear {
		e.MonthlyAmounts = append([]float64(nil), d.MonthlyAmounts...)
	}
	e.ID = string(d.ID)
	return e
}
