package services

import (
	"context"
	"errors"
	"testing"

	"budgettracker/internal/calc"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
	"budgettracker/internal/testutil"
	"budgettracker/internal/validator"
)

func amountPtr(v float64) *float64 { return &v }

func validExpenseInput(name string, amount float64) validator.ExpenseInput {
	return validator.ExpenseInput{
		Name:       name,
		Amount:     amountPtr(amount),
		Frequency:  string(calc.Monthly),
		StartMonth: 1,
		EndMonth:   12,
	}
}

func TestCreateExpense(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := &recordingNotifier{}
		svc := NewExpenseService(db, notifier)
		user := testutil.CreateTestUser(t, db)
		period := testutil.CreateTestPeriod(t, db, user.ID, 2025)

		expense, err := svc.CreateExpense(user.ID, period.ID, validExpenseInput("  Netflix ", 79))
		testutil.AssertNoError(t, err)

		if expense.Name != "Netflix" {
			t.Errorf("expected trimmed name, got %q", expense.Name)
		}
		if expense.BudgetPeriodID != period.ID || expense.UserID != user.ID {
			t.Error("expected expense to belong to the period and user")
		}
		if dirty, _ := notifier.counts(); dirty != 1 {
			t.Errorf("expected 1 change notification, got %d", dirty)
		}
	})

	t.Run("monthly_amounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		user := testutil.CreateTestUser(t, db)
		period := testutil.CreateTestPeriod(t, db, user.ID, 2025)

		in := validator.ExpenseInput{
			Name:           "El",
			MonthlyAmounts: []float64{900, 850, 700, 500, 300, 200, 200, 200, 300, 500, 700, 900},
			Frequency:      string(calc.Monthly),
			StartMonth:     1,
			EndMonth:       12,
		}
		expense, err := svc.CreateExpense(user.ID, period.ID, in)
		testutil.AssertNoError(t, err)

		reloaded, err := svc.GetExpenseByID(user.ID, expense.ID)
		testutil.AssertNoError(t, err)
		if len(reloaded.MonthlyAmounts) != 12 || reloaded.MonthlyAmounts[0] != 900 {
			t.Errorf("expected monthly amounts to be stored, got %v", reloaded.MonthlyAmounts)
		}
		if got := calc.AnnualAmount(reloaded.Calc()); got != 6250 {
			t.Errorf("expected annual amount 6250, got %v", got)
		}
	})

	t.Run("validation_failed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		user := testutil.CreateTestUser(t, db)
		period := testutil.CreateTestPeriod(t, db, user.ID, 2025)

		in := validExpenseInput("", -5)
		in.StartMonth = 6
		in.EndMonth = 3
		_, err := svc.CreateExpense(user.ID, period.ID, in)
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			t.Fatal("expected AppError")
		}
		if len(appErr.Details) != 3 {
			t.Errorf("expected 3 validation errors, got %v", appErr.Details)
		}
	})

	t.Run("archived_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		user := testutil.CreateTestUser(t, db)
		period := testutil.CreateTestPeriodWithStatus(t, db, user.ID, 2024, models.PeriodStatusArchived)

		_, err := svc.CreateExpense(user.ID, period.ID, validExpenseInput("Netflix", 79))
		testutil.AssertAppError(t, err, "PERIOD_ARCHIVED")
	})

	t.Run("unknown_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateExpense(user.ID, "missing", validExpenseInput("Netflix", 79))
		testutil.AssertAppError(t, err, "PERIOD_NOT_FOUND")
	})
}

func TestGetPeriodExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db, nil)
	user := testutil.CreateTestUser(t, db)
	period := testutil.CreateTestPeriod(t, db, user.ID, 2025)
	for i := 0; i < 5; i++ {
		testutil.CreateTestExpense(t, db, user.ID, period.ID, float64(100+i))
	}

	t.Run("paginated", func(t *testing.T) {
		page, err := svc.GetPeriodExpenses(user.ID, period.ID, pagination.PageRequest{Page: 2, PageSize: 2})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 5 || page.TotalPages != 3 {
			t.Errorf("expected 5 items over 3 pages, got %d over %d", page.TotalItems, page.TotalPages)
		}
		if len(page.Data) != 2 {
			t.Fatalf("expected 2 items, got %d", len(page.Data))
		}
	})

	t.Run("defaults", func(t *testing.T) {
		page, err := svc.GetPeriodExpenses(user.ID, period.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.Page != 1 || page.PageSize != 20 || len(page.Data) != 5 {
			t.Errorf("unexpected page: page=%d size=%d items=%d", page.Page, page.PageSize, len(page.Data))
		}
	})

	t.Run("sorted", func(t *testing.T) {
		page, err := svc.GetPeriodExpenses(user.ID, period.ID, pagination.PageRequest{PageSize: 2, Sort: "-amount"})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 2 || page.Data[0].Amount != 104 || page.Data[1].Amount != 103 {
			t.Errorf("expected the two largest amounts first, got %+v", page.Data)
		}

		page, err = svc.GetPeriodExpenses(user.ID, period.ID, pagination.PageRequest{Sort: "bogus; DROP TABLE expenses"})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 5 || page.Data[0].Amount != 100 {
			t.Errorf("expected creation order for an unknown sort key, got %+v", page.Data)
		}
	})

	t.Run("all", func(t *testing.T) {
		all, err := svc.GetAllPeriodExpenses(user.ID, period.ID)
		testutil.AssertNoError(t, err)
		if len(all) != 5 {
			t.Errorf("expected 5 expenses, got %d", len(all))
		}
	})

	t.Run("other_user", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		_, err := svc.GetPeriodExpenses(other.ID, period.ID, pagination.PageRequest{})
		testutil.AssertAppError(t, err, "PERIOD_NOT_FOUND")
	})
}

func TestUpdateExpense(t *testing.T) {
	t.Run("merges_changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		user := testutil.CreateTestUser(t, db)
		period := testutil.CreateTestPeriod(t, db, user.ID, 2025)
		expense := testutil.CreateTestExpense(t, db, user.ID, period.ID, 79)

		freq := string(calc.Quarterly)
		updated, err := svc.UpdateExpense(user.ID, expense.ID, ExpenseUpdate{Frequency: &freq})
		testutil.AssertNoError(t, err)

		if updated.ID != expense.ID {
			t.Errorf("expected ID %s to be kept, got %s", expense.ID, updated.ID)
		}
		if updated.Amount != 79 || updated.Name != expense.Name {
			t.Error("expected unchanged fields to be kept")
		}

		reloaded, _ := svc.GetExpenseByID(user.ID, expense.ID)
		if reloaded.Frequency != calc.Quarterly {
			t.Errorf("expected quarterly, got %s", reloaded.Frequency)
		}
	})

	t.Run("invalid_result", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		user := testutil.CreateTestUser(t, db)
		period := testutil.CreateTestPeriod(t, db, user.ID, 2025)
		expense := testutil.CreateTestExpenseWithFrequency(t, db, user.ID, period.ID, 50, calc.Monthly, 6, 12)

		end := 3
		_, err := svc.UpdateExpense(user.ID, expense.ID, ExpenseUpdate{EndMonth: &end})
		testutil.AssertAppError(t, err, "VALIDATION_FAILED")
	})

	t.Run("other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		period := testutil.CreateTestPeriod(t, db, owner.ID, 2025)
		expense := testutil.CreateTestExpense(t, db, owner.ID, period.ID, 79)

		name := "Hijacked"
		_, err := svc.UpdateExpense(other.ID, expense.ID, ExpenseUpdate{Name: &name})
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})
}

func TestDeleteExpense(t *testing.T) {
	t.Run("syncs_immediately", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := &recordingNotifier{}
		svc := NewExpenseService(db, notifier)
		user := testutil.CreateTestUser(t, db)
		period := testutil.CreateTestPeriod(t, db, user.ID, 2025)
		expense := testutil.CreateTestExpense(t, db, user.ID, period.ID, 79)

		testutil.AssertNoError(t, svc.DeleteExpense(context.Background(), user.ID, expense.ID))

		_, err := svc.GetExpenseByID(user.ID, expense.ID)
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
		if _, now := notifier.counts(); now != 1 {
			t.Errorf("expected 1 immediate sync, got %d", now)
		}
	})

	t.Run("upload_failure_keeps_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := &recordingNotifier{nowErr: apperrors.ErrCloudUnavailable}
		svc := NewExpenseService(db, notifier)
		user := testutil.CreateTestUser(t, db)
		period := testutil.CreateTestPeriod(t, db, user.ID, 2025)
		expense := testutil.CreateTestExpense(t, db, user.ID, period.ID, 79)

		err := svc.DeleteExpense(context.Background(), user.ID, expense.ID)
		testutil.AssertAppError(t, err, "CLOUD_UNAVAILABLE")

		_, err = svc.GetExpenseByID(user.ID, expense.ID)
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})
}

func TestBulkDeleteExpenses(t *testing.T) {
	t.Run("deletes_own_expenses", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := &recordingNotifier{}
		svc := NewExpenseService(db, notifier)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		period := testutil.CreateTestPeriod(t, db, user.ID, 2025)
		otherPeriod := testutil.CreateTestPeriod(t, db, other.ID, 2025)
		a := testutil.CreateTestExpense(t, db, user.ID, period.ID, 10)
		b := testutil.CreateTestExpense(t, db, user.ID, period.ID, 20)
		keep := testutil.CreateTestExpense(t, db, user.ID, period.ID, 30)
		foreign := testutil.CreateTestExpense(t, db, other.ID, otherPeriod.ID, 40)

		deleted, err := svc.BulkDeleteExpenses(context.Background(), user.ID, []string{a.ID, b.ID, foreign.ID, "missing"})
		testutil.AssertNoError(t, err)
		if deleted != 2 {
			t.Errorf("expected 2 deleted, got %d", deleted)
		}

		if _, err := svc.GetExpenseByID(user.ID, keep.ID); err != nil {
			t.Errorf("expected untouched expense to remain: %v", err)
		}
		if _, err := svc.GetExpenseByID(other.ID, foreign.ID); err != nil {
			t.Errorf("expected other user's expense to remain: %v", err)
		}
		if _, now := notifier.counts(); now != 1 {
			t.Errorf("expected 1 immediate sync, got %d", now)
		}
	})

	t.Run("empty_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.BulkDeleteExpenses(context.Background(), user.ID, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("archived_aborts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		user := testutil.CreateTestUser(t, db)
		active := testutil.CreateTestPeriod(t, db, user.ID, 2025)
		archived := testutil.CreateTestPeriodWithStatus(t, db, user.ID, 2024, models.PeriodStatusArchived)
		a := testutil.CreateTestExpense(t, db, user.ID, active.ID, 10)
		b := testutil.CreateTestExpense(t, db, user.ID, archived.ID, 20)

		_, err := svc.BulkDeleteExpenses(context.Background(), user.ID, []string{a.ID, b.ID})
		testutil.AssertAppError(t, err, "PERIOD_ARCHIVED")

		if _, err := svc.GetExpenseByID(user.ID, a.ID); err != nil {
			t.Errorf("expected expense to remain after aborted delete: %v", err)
		}
	})

	t.Run("nothing_matched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifier := &recordingNotifier{}
		svc := NewExpenseService(db, notifier)
		user := testutil.CreateTestUser(t, db)

		deleted, err := svc.BulkDeleteExpenses(context.Background(), user.ID, []string{"missing"})
		testutil.AssertNoError(t, err)
		if deleted != 0 {
			t.Errorf("expected 0 deleted, got %d", deleted)
		}
		if _, now := notifier.counts(); now != 0 {
			t.Error("expected no sync when nothing was deleted")
		}
	})
}

func TestImportExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	notifier := &recordingNotifier{}
	svc := NewExpenseService(db, notifier)
	user := testutil.CreateTestUser(t, db)
	period := testutil.CreateTestPeriod(t, db, user.ID, 2025)

	bad := validExpenseInput("Broken", 10)
	bad.Frequency = "weekly"
	inputs := []validator.ExpenseInput{
		validExpenseInput("Netflix", 79),
		bad,
		validExpenseInput("Husleje", 5000),
	}

	result, err := svc.ImportExpenses(user.ID, period.ID, inputs)
	testutil.AssertNoError(t, err)

	if result.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", result.Imported)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Row != 2 || result.Skipped[0].Name != "Broken" {
		t.Errorf("unexpected skipped rows: %+v", result.Skipped)
	}

	all, err := svc.GetAllPeriodExpenses(user.ID, period.ID)
	testutil.AssertNoError(t, err)
	if len(all) != 2 {
		t.Errorf("expected 2 stored expenses, got %d", len(all))
	}
	if dirty, _ := notifier.counts(); dirty != 1 {
		t.Errorf("expected 1 change notification, got %d", dirty)
	}
}
