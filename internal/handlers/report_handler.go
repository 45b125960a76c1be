package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/services"
)

// ReportHandler serves the calculated views of budget periods.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

type reportQuery struct {
	PeriodID   string `form:"period_id" binding:"max=64"`
	PreviousID string `form:"previous_id" binding:"max=64"`
}

// bindReport reads the user and the period query parameters. A missing
// period_id selects the active period.
func bindReport(c *gin.Context) (string, reportQuery, bool) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return "", reportQuery{}, false
	}

	var q reportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return "", reportQuery{}, false
	}
	q.PeriodID = strings.TrimSpace(q.PeriodID)
	q.PreviousID = strings.TrimSpace(q.PreviousID)
	return userID, q, true
}

// GetSummary returns the headline figures of a period.
// @Summary     Period summary
// @Description Total annual expenses, average per month, monthly balance and annual reserve
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       period_id query string false "Period ID (default: active period)"
// @Success     200 {object} calc.Summary "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	userID, q, ok := bindReport(c)
	if !ok {
		return
	}

	summary, err := h.reportService.GetSummary(userID, q.PeriodID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetMonthlyTotals returns the expenses of each month.
// @Summary     Monthly totals
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       period_id query string false "Period ID (default: active period)"
// @Success     200 {object} map[string][]float64 "Twelve monthly totals, January first"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/monthly [get]
func (h *ReportHandler) GetMonthlyTotals(c *gin.Context) {
	userID, q, ok := bindReport(c)
	if !ok {
		return
	}

	totals, err := h.reportService.GetMonthlyTotals(userID, q.PeriodID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"monthly_totals": totals})
}

// GetProjection returns the running balance of each month.
// @Summary     Balance projection
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       period_id query string false "Period ID (default: active period)"
// @Success     200 {object} map[string][]calc.ProjectionPoint "Projection"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/projection [get]
func (h *ReportHandler) GetProjection(c *gin.Context) {
	userID, q, ok := bindReport(c)
	if !ok {
		return
	}

	points, err := h.reportService.GetProjection(userID, q.PeriodID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projection": points})
}

// GetFrequencyBreakdown returns annual totals per frequency.
// @Summary     Frequency breakdown
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       period_id query string false "Period ID (default: active period)"
// @Success     200 {object} map[string][]calc.FrequencyGroup "Breakdown"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/frequency [get]
func (h *ReportHandler) GetFrequencyBreakdown(c *gin.Context) {
	userID, q, ok := bindReport(c)
	if !ok {
		return
	}

	groups, err := h.reportService.GetFrequencyBreakdown(userID, q.PeriodID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"frequencies": groups})
}

// ComparePeriods compares the headline figures of two periods.
// @Summary     Compare periods
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       period_id   query string false "Current period ID (default: active period)"
// @Param       previous_id query string true  "Period to compare against"
// @Success     200 {object} calc.PeriodComparison "Comparison"
// @Failure     400 {object} ErrorResponse "Missing previous_id"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/compare [get]
func (h *ReportHandler) ComparePeriods(c *gin.Context) {
	userID, q, ok := bindReport(c)
	if !ok {
		return
	}

	comparison, err := h.reportService.ComparePeriods(userID, q.PeriodID, q.PreviousID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comparison": comparison})
}

// CompareMonthlyTotals compares two periods month by month.
// @Summary     Compare monthly totals
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       period_id   query string false "Current period ID (default: active period)"
// @Param       previous_id query string true  "Period to compare against"
// @Success     200 {object} map[string][]calc.MonthComparison "Comparison"
// @Failure     400 {object} ErrorResponse "Missing previous_id"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/compare/monthly [get]
func (h *ReportHandler) CompareMonthlyTotals(c *gin.Context) {
	userID, q, ok := bindReport(c)
	if !ok {
		return
	}

	months, err := h.reportService.CompareMonthlyTotals(userID, q.PeriodID, q.PreviousID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": months})
}

// CompareExpenses compares two periods expense by expense.
// @Summary     Compare expenses
// @Description Match expenses by name and report added, removed, changed and unchanged ones
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       period_id   query string false "Current period ID (default: active period)"
// @Param       previous_id query string true  "Period to compare against"
// @Success     200 {object} map[string][]calc.ExpenseComparison "Comparison"
// @Failure     400 {object} ErrorResponse "Missing previous_id"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/compare/expenses [get]
func (h *ReportHandler) CompareExpenses(c *gin.Context) {
	userID, q, ok := bindReport(c)
	if !ok {
		return
	}

	expenses, err := h.reportService.CompareExpenses(userID, q.PeriodID, q.PreviousID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// GetYearlyTrends returns the summary of every period in year order.
// @Summary     Yearly trends
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]calc.YearTrend "Trends"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/trends [get]
func (h *ReportHandler) GetYearlyTrends(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	trends, err := h.reportService.GetYearlyTrends(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends})
}
