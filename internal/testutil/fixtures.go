package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"budgettracker/internal/calc"
	"budgettracker/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPeriod creates an active budget period for the given year with
// a monthly income of 6000.
func CreateTestPeriod(t *testing.T, db *gorm.DB, userID string, year int) *models.BudgetPeriod {
	t.Helper()
	return CreateTestPeriodWithStatus(t, db, userID, year, models.PeriodStatusActive)
}

// CreateTestPeriodWithStatus creates a budget period with the given status.
func CreateTestPeriodWithStatus(t *testing.T, db *gorm.DB, userID string, year int, status models.PeriodStatus) *models.BudgetPeriod {
	t.Helper()

	period := &models.BudgetPeriod{
		UserID:         userID,
		Year:           year,
		MonthlyPayment: 6000,
		Status:         status,
	}
	if err := db.Create(period).Error; err != nil {
		t.Fatalf("failed to create test period: %v", err)
	}
	return period
}

// CreateTestExpense creates a monthly expense running all year.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, periodID string, amount float64) *models.Expense {
	t.Helper()
	return CreateTestExpenseWithFrequency(t, db, userID, periodID, amount, calc.Monthly, 1, 12)
}

// CreateTestExpenseWithFrequency creates an expense with the given schedule.
func CreateTestExpenseWithFrequency(t *testing.T, db *gorm.DB, userID, periodID string, amount float64, freq calc.Frequency, start, end int) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:         userID,
		BudgetPeriodID: periodID,
		Name:           fmt.Sprintf("Test Expense %d", nextID()),
		Amount:         amount,
		Frequency:      freq,
		StartMonth:     start,
		EndMonth:       end,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
