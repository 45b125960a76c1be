// Package validator provides the input validators of the budget tracker:
// custom rules for Gin's binding engine, and pure functions that check and
// coerce expenses and cloud documents. None of them panic; problems are
// returned as lists of messages.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"budgettracker/internal/calc"
	"budgettracker/internal/dataset"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("frequency", validateFrequency)
		_ = v.RegisterValidation("month", validateMonth)
		_ = v.RegisterValidation("period_status", validatePeriodStatus)
	}
}

func validateFrequency(fl validator.FieldLevel) bool {
	return calc.Frequency(fl.Field().String()).Valid()
}

func validateMonth(fl validator.FieldLevel) bool {
	m := fl.Field().Int()
	return m >= 1 && m <= calc.MonthsPerYear
}

func validatePeriodStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case dataset.StatusActive, dataset.StatusArchived:
		return true
	}
	return false
}
