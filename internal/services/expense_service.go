package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"budgettracker/internal/calc"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
	"budgettracker/internal/validator"
)

// expenseService handles expense business logic.
type expenseService struct {
	db     *gorm.DB
	notify ChangeNotifier
}

// NewExpenseService creates a new ExpenseServicer. notifier may be nil.
func NewExpenseService(db *gorm.DB, notifier ChangeNotifier) ExpenseServicer {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &expenseService{db: db, notify: notifier}
}

// CreateExpense adds an expense to a period that is not archived.
func (s *expenseService) CreateExpense(userID, periodID string, in validator.ExpenseInput) (*models.Expense, error) {
	if _, err := s.writablePeriod(userID, periodID); err != nil {
		return nil, err
	}

	check := validator.ValidateExpense(in)
	if !check.Valid {
		return nil, apperrors.WithDetails(apperrors.ErrValidationFailed, check.Errors)
	}

	expense := newExpense(userID, periodID, in)
	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify.MarkDirty(userID)
	return expense, nil
}

// expenseSortColumns are the sort keys accepted when listing expenses.
var expenseSortColumns = map[string]string{
	"created": "created_at",
	"name":    "name",
	"amount":  "amount",
	"start":   "start_month",
}

// GetPeriodExpenses returns a page of a period's expenses, in creation
// order unless the request sorts by another key.
func (s *expenseService) GetPeriodExpenses(userID, periodID string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	if _, err := findPeriod(s.db, userID, periodID); err != nil {
		return nil, err
	}

	base := s.db.Model(&models.Expense{}).Where("user_id = ? AND budget_period_id = ?", userID, periodID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Order(page.OrderBy(expenseSortColumns, "created_at ASC")).Scopes(pagination.Paginate(page)).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAllPeriodExpenses returns every expense of a period in creation order.
func (s *expenseService) GetAllPeriodExpenses(userID, periodID string) ([]models.Expense, error) {
	if _, err := findPeriod(s.db, userID, periodID); err != nil {
		return nil, err
	}
	return periodExpenses(s.db, userID, periodID)
}

// GetExpenseByID returns an expense if it belongs to the user.
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense applies the given changes and validates the result as a
// whole.
func (s *expenseService) UpdateExpense(userID, expenseID string, upd ExpenseUpdate) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.writablePeriod(userID, expense.BudgetPeriodID); err != nil {
		return nil, err
	}

	amount := expense.Amount
	in := validator.ExpenseInput{
		Name:           expense.Name,
		Amount:         &amount,
		MonthlyAmounts: expense.MonthlyAmounts,
		Frequency:      string(expense.Frequency),
		StartMonth:     expense.StartMonth,
		EndMonth:       expense.EndMonth,
	}
	if upd.Name != nil {
		in.Name = *upd.Name
	}
	if upd.Amount != nil {
		in.Amount = upd.Amount
	}
	if upd.MonthlyAmounts != nil {
		in.MonthlyAmounts = upd.MonthlyAmounts
		if len(upd.MonthlyAmounts) == 0 {
			in.MonthlyAmounts = nil
		}
	}
	if upd.Frequency != nil {
		in.Frequency = *upd.Frequency
	}
	if upd.StartMonth != nil {
		in.StartMonth = *upd.StartMonth
	}
	if upd.EndMonth != nil {
		in.EndMonth = *upd.EndMonth
	}

	check := validator.ValidateExpense(in)
	if !check.Valid {
		return nil, apperrors.WithDetails(apperrors.ErrValidationFailed, check.Errors)
	}

	updated := newExpense(userID, expense.BudgetPeriodID, in)
	updated.Base = expense.Base
	if err := s.db.Save(updated).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify.MarkDirty(userID)
	return updated, nil
}

// DeleteExpense deletes an expense and uploads the change right away. The
// returned error reports a failed upload; the local delete is kept either
// way.
func (s *expenseService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}
	if _, err := s.writablePeriod(userID, expense.BudgetPeriodID); err != nil {
		return err
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.notify.MarkDirtyNow(ctx, userID)
}

// BulkDeleteExpenses deletes the user's expenses with the given IDs and
// returns how many were removed. Unknown IDs are ignored; expenses of an
// archived period abort the whole delete.
func (s *expenseService) BulkDeleteExpenses(ctx context.Context, userID string, expenseIDs []string) (int64, error) {
	if len(expenseIDs) == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one expense id is required")
	}

	var archived int64
	err := s.db.Model(&models.Expense{}).
		Joins("JOIN budget_periods ON budget_periods.id = expenses.budget_period_id").
		Where("expenses.user_id = ? AND expenses.id IN ? AND budget_periods.status = ?",
			userID, expenseIDs, models.PeriodStatusArchived).
		Count(&archived).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if archived > 0 {
		return 0, apperrors.ErrPeriodArchived
	}

	result := s.db.Where("user_id = ? AND id IN ?", userID, expenseIDs).Delete(&models.Expense{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, nil
	}

	return result.RowsAffected, s.notify.MarkDirtyNow(ctx, userID)
}

// ImportExpenses adds many expenses to a period in one transaction. Invalid
// rows are skipped and reported; rows are numbered from 1.
func (s *expenseService) ImportExpenses(userID, periodID string, inputs []validator.ExpenseInput) (*ImportResult, error) {
	if _, err := s.writablePeriod(userID, periodID); err != nil {
		return nil, err
	}

	result := &ImportResult{Skipped: []ImportRowError{}}
	var expenses []*models.Expense
	for i, in := range inputs {
		check := validator.ValidateExpense(in)
		if !check.Valid {
			result.Skipped = append(result.Skipped, ImportRowError{
				Row:    i + 1,
				Name:   strings.TrimSpace(in.Name),
				Errors: check.Errors,
			})
			continue
		}
		expenses = append(expenses, newExpense(userID, periodID, in))
	}

	if len(expenses) > 0 {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			for _, e := range expenses {
				if err := tx.Create(e).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.notify.MarkDirty(userID)
	}

	result.Imported = len(expenses)
	return result, nil
}

func (s *expenseService) writablePeriod(userID, periodID string) (*models.BudgetPeriod, error) {
	period, err := findPeriod(s.db, userID, periodID)
	if err != nil {
		return nil, err
	}
	if period.IsArchived() {
		return nil, apperrors.ErrPeriodArchived
	}
	return period, nil
}

// newExpense builds an expense from validated input.
func newExpense(userID, periodID string, in validator.ExpenseInput) *models.Expense {
	e := &models.Expense{
		UserID:         userID,
		BudgetPeriodID: periodID,
		Name:           strings.TrimSpace(in.Name),
		Frequency:      calc.Frequency(in.Frequency),
		StartMonth:     in.StartMonth,
		EndMonth:       in.EndMonth,
	}
	if in.Amount != nil {
		e.Amount = *in.Amount
	}
	if in.MonthlyAmounts != nil {
		e.MonthlyAmounts = append([]float64(nil), in.MonthlyAmounts...)
	}
	return e
}

func periodExpenses(db *gorm.DB, userID, periodID string) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := db.Where("user_id = ? AND budget_period_id = ?", userID, periodID).
		Order("created_at ASC, id ASC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	return expenses, nil
}
