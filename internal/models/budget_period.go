package models

import (
	"budgettracker/internal/calc"
	"budgettracker/internal/dataset"
)

// PeriodStatus is the lifecycle state of a budget period.
type PeriodStatus string

const (
	PeriodStatusActive   PeriodStatus = dataset.StatusActive
	PeriodStatusArchived PeriodStatus = dataset.StatusArchived
)

// BudgetPeriod is one year of income and expense configuration. A user has
// at most one active period; archived periods are read-only.
type BudgetPeriod struct {
	Base
	UserID          string       `gorm:"not null;index;type:text" json:"user_id"`
	Year            int          `gorm:"not null" json:"year"`
	MonthlyPayment  float64      `gorm:"not null;default:0" json:"monthly_payment"`
	MonthlyPayments []float64    `gorm:"type:text;serializer:json" json:"monthly_payments,omitempty"`
	PreviousBalance float64      `gorm:"not null;default:0" json:"previous_balance"`
	Status          PeriodStatus `gorm:"not null;default:active;index" json:"status"`

	Expenses []Expense `gorm:"foreignKey:BudgetPeriodID" json:"expenses,omitempty"`
}

// IsArchived reports whether the period is read-only.
func (p *BudgetPeriod) IsArchived() bool {
	return p.Status == PeriodStatusArchived
}

// Income returns the period's income; twelve monthly payments take
// precedence over the single monthly payment.
func (p *BudgetPeriod) Income() calc.Amount {
	return p.ToDataset().Income()
}

// CalcPeriod converts the period and the given expenses for the comparison
// functions of the calculation engine.
func (p *BudgetPeriod) CalcPeriod(expenses []Expense) calc.Period {
	return calc.Period{
		Year:            p.Year,
		Expenses:        CalcExpenses(expenses),
		Income:          p.Income(),
		PreviousBalance: p.PreviousBalance,
	}
}

// ToDataset converts the period to its cloud document form.
func (p *BudgetPeriod) ToDataset() dataset.BudgetPeriod {
	return dataset.BudgetPeriod{
		ID:              dataset.ID(p.ID),
		Year:            p.Year,
		MonthlyPayment:  p.MonthlyPayment,
		PreviousBalance: p.PreviousBalance,
		MonthlyPayments: p.MonthlyPayments,
		Status:          string(p.Status),
	}
}

// PeriodFromDataset builds a period owned by userID from its cloud document
// form. Unknown statuses become archived.
func PeriodFromDataset(userID string, d dataset.BudgetPeriod) BudgetPeriod {
	status := PeriodStatus(d.Status)
	if status != PeriodStatusActive {
		status = PeriodStatusArchived
	}
	p := BudgetPeriod{
		UserID:          userID,
		Year:            d.Year,
		MonthlyPayment:  d.MonthlyPayment,
		PreviousBalance: d.PreviousBalance,
		Status:          status,
	}
	if len(d.MonthlyPayments) == calc.MonthsPerYear {
		p.MonthlyPayments = append([]float64(nil), d.MonthlyPayments...)
	}
	p.ID = string(d.ID)
	return p
}
