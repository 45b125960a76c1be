package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/validator"
)

// periodService handles budget period business logic.
type periodService struct {
	db     *gorm.DB
	notify ChangeNotifier
}

// NewPeriodService creates a new PeriodServicer. notifier may be nil.
func NewPeriodService(db *gorm.DB, notifier ChangeNotifier) PeriodServicer {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &periodService{db: db, notify: notifier}
}

// CreatePeriod creates a budget period, optionally copying the expenses of
// another period. A user keeps at most one active period.
func (s *periodService) CreatePeriod(userID string, in PeriodInput) (*models.BudgetPeriod, error) {
	check := validator.ValidatePeriod(validator.PeriodInput{
		Year:            in.Year,
		MonthlyPayment:  in.MonthlyPayment,
		MonthlyPayments: in.MonthlyPayments,
		PreviousBalance: in.PreviousBalance,
	})
	if !check.Valid {
		return nil, apperrors.WithDetails(apperrors.ErrValidationFailed, check.Errors)
	}

	if err := s.checkYearFree(userID, in.Year, ""); err != nil {
		return nil, err
	}

	var source []models.Expense
	if in.CopyFromID != "" {
		if _, err := s.GetPeriodByID(userID, in.CopyFromID); err != nil {
			return nil, err
		}
		if err := s.db.Where("user_id = ? AND budget_period_id = ?", userID, in.CopyFromID).
			Order("created_at ASC, id ASC").Find(&source).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	period := &models.BudgetPeriod{
		UserID:          userID,
		Year:            in.Year,
		MonthlyPayment:  in.MonthlyPayment,
		PreviousBalance: in.PreviousBalance,
		Status:          models.PeriodStatusArchived,
	}
	if len(in.MonthlyPayments) > 0 {
		period.MonthlyPayments = append([]float64(nil), in.MonthlyPayments...)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.BudgetPeriod{}).
			Where("user_id = ? AND status = ?", userID, models.PeriodStatusActive).
			Count(&active).Error; err != nil {
			return err
		}
		if in.Activate || active == 0 {
			if err := archiveOthers(tx, userID, ""); err != nil {
				return err
			}
			period.Status = models.PeriodStatusActive
		}

		if err := tx.Create(period).Error; err != nil {
			return err
		}

		for _, src := range source {
			copied := models.Expense{
				UserID:         userID,
				BudgetPeriodID: period.ID,
				Name:           src.Name,
				Amount:         src.Amount,
				MonthlyAmounts: append([]float64(nil), src.MonthlyAmounts...),
				Frequency:      src.Frequency,
				StartMonth:     src.StartMonth,
				EndMonth:       src.EndMonth,
			}
			if len(copied.MonthlyAmounts) == 0 {
				copied.MonthlyAmounts = nil
			}
			if err := tx.Create(&copied).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify.MarkDirty(userID)
	return period, nil
}

// GetUserPeriods returns the user's periods, newest year first.
func (s *periodService) GetUserPeriods(userID string, status *models.PeriodStatus) ([]models.BudgetPeriod, error) {
	query := s.db.Scopes(models.OwnedBy(userID))
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var periods []models.BudgetPeriod
	if err := query.Order("year DESC").Find(&periods).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if periods == nil {
		periods = []models.BudgetPeriod{}
	}
	return periods, nil
}

// GetPeriodByID returns a period if it belongs to the user.
func (s *periodService) GetPeriodByID(userID, periodID string) (*models.BudgetPeriod, error) {
	return findPeriod(s.db, userID, periodID)
}

// GetActivePeriod returns the user's active period.
func (s *periodService) GetActivePeriod(userID string) (*models.BudgetPeriod, error) {
	return findActivePeriod(s.db, userID)
}

// UpdatePeriod changes the income settings of an active period.
func (s *periodService) UpdatePeriod(userID, periodID string, upd PeriodUpdate) (*models.BudgetPeriod, error) {
	period, err := s.GetPeriodByID(userID, periodID)
	if err != nil {
		return nil, err
	}
	if period.IsArchived() {
		return nil, apperrors.ErrPeriodArchived
	}

	if upd.Year != nil {
		period.Year = *upd.Year
	}
	if upd.MonthlyPayment != nil {
		period.MonthlyPayment = *upd.MonthlyPayment
	}
	if upd.MonthlyPayments != nil {
		period.MonthlyPayments = append([]float64(nil), upd.MonthlyPayments...)
		if len(period.MonthlyPayments) == 0 {
			period.MonthlyPayments = nil
		}
	}
	if upd.PreviousBalance != nil {
		period.PreviousBalance = *upd.PreviousBalance
	}

	check := validator.ValidatePeriod(validator.PeriodInput{
		Year:            period.Year,
		MonthlyPayment:  period.MonthlyPayment,
		MonthlyPayments: period.MonthlyPayments,
		PreviousBalance: period.PreviousBalance,
	})
	if !check.Valid {
		return nil, apperrors.WithDetails(apperrors.ErrValidationFailed, check.Errors)
	}
	if upd.Year != nil {
		if err := s.checkYearFree(userID, period.Year, period.ID); err != nil {
			return nil, err
		}
	}

	if err := s.db.Save(period).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.notify.MarkDirty(userID)
	return period, nil
}

// ActivatePeriod makes a period the active one and archives all others.
func (s *periodService) ActivatePeriod(userID, periodID string) (*models.BudgetPeriod, error) {
	period, err := s.GetPeriodByID(userID, periodID)
	if err != nil {
		return nil, err
	}
	if !period.IsArchived() {
		return period, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := archiveOthers(tx, userID, period.ID); err != nil {
			return err
		}
		return tx.Model(period).Update("status", models.PeriodStatusActive).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	period.Status = models.PeriodStatusActive

	s.notify.MarkDirty(userID)
	return period, nil
}

// ArchivePeriod makes a period read-only.
func (s *periodService) ArchivePeriod(userID, periodID string) (*models.BudgetPeriod, error) {
	period, err := s.GetPeriodByID(userID, periodID)
	if err != nil {
		return nil, err
	}
	if period.IsArchived() {
		return period, nil
	}

	if err := s.db.Model(period).Update("status", models.PeriodStatusArchived).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	period.Status = models.PeriodStatusArchived

	s.notify.MarkDirty(userID)
	return period, nil
}

// DeletePeriod deletes a period together with its expenses and uploads the
// change right away. The returned error reports a failed upload; the local
// delete is kept either way.
func (s *periodService) DeletePeriod(ctx context.Context, userID, periodID string) error {
	period, err := s.GetPeriodByID(userID, periodID)
	if err != nil {
		return err
	}
	if period.IsArchived() {
		return apperrors.ErrPeriodArchived
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND budget_period_id = ?", userID, period.ID).
			Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		return tx.Delete(period).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.notify.MarkDirtyNow(ctx, userID)
}

func (s *periodService) checkYearFree(userID string, year int, exceptID string) error {
	query := s.db.Model(&models.BudgetPeriod{}).Where("user_id = ? AND year = ?", userID, year)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicatePeriod
	}
	return nil
}

func findPeriod(db *gorm.DB, userID, periodID string) (*models.BudgetPeriod, error) {
	var period models.BudgetPeriod
	if err := db.Where("id = ? AND user_id = ?", periodID, userID).First(&period).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPeriodNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &period, nil
}

func findActivePeriod(db *gorm.DB, userID string) (*models.BudgetPeriod, error) {
	var period models.BudgetPeriod
	err := db.Where("user_id = ? AND status = ?", userID, models.PeriodStatusActive).
		Order("year DESC").First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoActivePeriod
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &period, nil
}

// archiveOthers archives every active period of the user except keepID.
func archiveOthers(tx *gorm.DB, userID, keepID string) error {
	query := tx.Model(&models.BudgetPeriod{}).
		Where("user_id = ? AND status = ?", userID, models.PeriodStatusActive)
	if keepID != "" {
		query = query.Where("id <> ?", keepID)
	}
	return query.Update("status", models.PeriodStatusArchived).Error
}

// noopNotifier is used when a service is built without a ChangeNotifier.
type noopNotifier struct{}

func (noopNotifier) MarkDirty(string) {}

func (noopNotifier) MarkDirtyNow(context.Context, string) error { return nil }
