package services

import (
	"gorm.io/gorm"

	"budgettracker/internal/calc"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
)

// reportService computes budget reports from the local database.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// GetSummary returns the headline figures of a period.
func (s *reportService) GetSummary(userID, periodID string) (*calc.Summary, error) {
	period, expenses, err := s.load(userID, periodID)
	if err != nil {
		return nil, err
	}
	summary := calc.Summarize(models.CalcExpenses(expenses), period.Income(), period.PreviousBalance)
	return &summary, nil
}

// GetMonthlyTotals returns the expense total of each month of a period.
func (s *reportService) GetMonthlyTotals(userID, periodID string) ([calc.MonthsPerYear]float64, error) {
	_, expenses, err := s.load(userID, periodID)
	if err != nil {
		return [calc.MonthsPerYear]float64{}, err
	}
	return calc.MonthlyTotals(models.CalcExpenses(expenses)), nil
}

// GetProjection returns the running account balance at the end of each
// month of a period.
func (s *reportService) GetProjection(userID, periodID string) ([]calc.ProjectionPoint, error) {
	period, expenses, err := s.load(userID, periodID)
	if err != nil {
		return nil, err
	}
	return calc.BalanceProjection(models.CalcExpenses(expenses), period.Income(), period.PreviousBalance), nil
}

// GetFrequencyBreakdown returns the annual expense totals per frequency.
func (s *reportService) GetFrequencyBreakdown(userID, periodID string) ([]calc.FrequencyGroup, error) {
	_, expenses, err := s.load(userID, periodID)
	if err != nil {
		return nil, err
	}
	groups := calc.GroupByFrequency(models.CalcExpenses(expenses))
	if groups == nil {
		groups = []calc.FrequencyGroup{}
	}
	return groups, nil
}

// ComparePeriods compares the summaries of two periods.
func (s *reportService) ComparePeriods(userID, currentID, previousID string) (*calc.PeriodComparison, error) {
	current, previous, err := s.loadPair(userID, currentID, previousID)
	if err != nil {
		return nil, err
	}
	cmp := calc.ComparePeriods(current, previous)
	return &cmp, nil
}

// CompareMonthlyTotals compares the monthly expense totals of two periods.
func (s *reportService) CompareMonthlyTotals(userID, currentID, previousID string) ([]calc.MonthComparison, error) {
	current, previous, err := s.loadPair(userID, currentID, previousID)
	if err != nil {
		return nil, err
	}
	return calc.CompareMonthlyTotals(current.Expenses, previous.Expenses), nil
}

// CompareExpenses matches the expenses of two periods by name.
func (s *reportService) CompareExpenses(userID, currentID, previousID string) ([]calc.ExpenseComparison, error) {
	current, previous, err := s.loadPair(userID, currentID, previousID)
	if err != nil {
		return nil, err
	}
	out := calc.CompareExpenses(current.Expenses, previous.Expenses)
	if out == nil {
		out = []calc.ExpenseComparison{}
	}
	return out, nil
}

// GetYearlyTrends returns the summary of every period of the user in year
// order, with the change in annual expenses from the year before.
func (s *reportService) GetYearlyTrends(userID string) ([]calc.YearTrend, error) {
	var periods []models.BudgetPeriod
	if err := s.db.Where("user_id = ?", userID).Order("year ASC").Find(&periods).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	byPeriod := make(map[string][]models.Expense, len(periods))
	for _, e := range expenses {
		byPeriod[e.BudgetPeriodID] = append(byPeriod[e.BudgetPeriodID], e)
	}

	input := make([]calc.Period, len(periods))
	for i := range periods {
		input[i] = periods[i].CalcPeriod(byPeriod[periods[i].ID])
	}
	trends := calc.CalculateYearlyTrends(input)
	if trends == nil {
		trends = []calc.YearTrend{}
	}
	return trends, nil
}

// load returns a period and its expenses. An empty periodID selects the
// active period.
func (s *reportService) load(userID, periodID string) (*models.BudgetPeriod, []models.Expense, error) {
	var period *models.BudgetPeriod
	var err error
	if periodID == "" {
		period, err = findActivePeriod(s.db, userID)
	} else {
		period, err = findPeriod(s.db, userID, periodID)
	}
	if err != nil {
		return nil, nil, err
	}

	expenses, err := periodExpenses(s.db, userID, period.ID)
	if err != nil {
		return nil, nil, err
	}
	return period, expenses, nil
}

func (s *reportService) loadPair(userID, currentID, previousID string) (calc.Period, calc.Period, error) {
	if previousID == "" {
		return calc.Period{}, calc.Period{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "a period to compare against is required")
	}
	cur, curExpenses, err := s.load(userID, currentID)
	if err != nil {
		return calc.Period{}, calc.Period{}, err
	}
	prev, prevExpenses, err := s.load(userID, previousID)
	if err != nil {
		return calc.Period{}, calc.Period{}, err
	}
	return cur.CalcPeriod(curExpenses), prev.CalcPeriod(prevExpenses), nil
}
