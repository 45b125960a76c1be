package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/services"
)

// PeriodHandler handles budget period requests.
type PeriodHandler struct {
	periodService services.PeriodServicer
	auditService  services.AuditServicer
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periodService services.PeriodServicer, auditService services.AuditServicer) *PeriodHandler {
	return &PeriodHandler{periodService: periodService, auditService: auditService}
}

// CreatePeriodRequest represents the request payload for creating a budget period.
// MonthlyPayments, when given, must hold twelve values and replaces MonthlyPayment.
type CreatePeriodRequest struct {
	Year            int       `json:"year" binding:"required"`
	MonthlyPayment  float64   `json:"monthly_payment"`
	MonthlyPayments []float64 `json:"monthly_payments"`
	PreviousBalance float64   `json:"previous_balance"`
	Activate        bool      `json:"activate"`
	CopyFromID      string    `json:"copy_from_id" binding:"max=64"`
}

// UpdatePeriodRequest represents the request payload for updating a budget period.
// An empty MonthlyPayments list clears the per-month payments.
type UpdatePeriodRequest struct {
	Year            *int      `json:"year"`
	MonthlyPayment  *float64  `json:"monthly_payment"`
	MonthlyPayments []float64 `json:"monthly_payments"`
	PreviousBalance *float64  `json:"previous_balance"`
}

type periodFilter struct {
	Status string `form:"status" binding:"omitempty,period_status"`
}

// CreatePeriod handles the creation of a budget period.
// @Summary     Create a budget period
// @Description Create a budget period for a year, optionally copying the expenses of another period. The first period is always active.
// @Tags        periods
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePeriodRequest true "Period details"
// @Success     201 {object} models.BudgetPeriod "Period created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Source period not found"
// @Failure     409 {object} ErrorResponse "Year already has a period"
// @Failure     422 {object} ErrorResponse "Validation failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods [post]
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	period, err := h.periodService.CreatePeriod(userID, services.PeriodInput{
		Year:            req.Year,
		MonthlyPayment:  req.MonthlyPayment,
		MonthlyPayments: req.MonthlyPayments,
		PreviousBalance: req.PreviousBalance,
		Activate:        req.Activate,
		CopyFromID:      req.CopyFromID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionCreate, models.AuditResourcePeriod, period.ID, c.ClientIP(),
		map[string]interface{}{"year": period.Year, "status": period.Status, "copy_from_id": req.CopyFromID})

	c.JSON(http.StatusCreated, gin.H{"period": period})
}

// GetPeriods handles listing the user's budget periods.
// @Summary     List budget periods
// @Description List the authenticated user's budget periods, newest year first
// @Tags        periods
// @Produce     json
// @Security    BearerAuth
// @Param       status query string false "Filter by status (active/archived)"
// @Success     200 {object} map[string][]models.BudgetPeriod "Periods"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods [get]
func (h *PeriodHandler) GetPeriods(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var filter periodFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid status filter"))
		return
	}
	var status *models.PeriodStatus
	if filter.Status != "" {
		s := models.PeriodStatus(filter.Status)
		status = &s
	}

	periods, err := h.periodService.GetUserPeriods(userID, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"periods": periods})
}

// GetActivePeriod returns the active budget period.
// @Summary     Get the active period
// @Tags        periods
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.BudgetPeriod "Active period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No active period"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/active [get]
func (h *PeriodHandler) GetActivePeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, err := h.periodService.GetActivePeriod(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": period})
}

// GetPeriod returns a single budget period.
// @Summary     Get a budget period
// @Tags        periods
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Period ID"
// @Success     200 {object} models.BudgetPeriod "Period"
// @Failure     400 {object} ErrorResponse "Invalid period ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id} [get]
func (h *PeriodHandler) GetPeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	periodID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, err := h.periodService.GetPeriodByID(userID, periodID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"period": period})
}

// UpdatePeriod updates the income settings of a budget period.
// @Summary     Update a budget period
// @Description Update year, income or carried-over balance of an active period. Archived periods are read-only.
// @Tags        periods
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Period ID"
// @Param       request body UpdatePeriodRequest true "Fields to update"
// @Success     200 {object} models.BudgetPeriod "Period updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     409 {object} ErrorResponse "Period archived or year taken"
// @Failure     422 {object} ErrorResponse "Validation failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id} [put]
func (h *PeriodHandler) UpdatePeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	periodID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	period, err := h.periodService.UpdatePeriod(userID, periodID, services.PeriodUpdate{
		Year:            req.Year,
		MonthlyPayment:  req.MonthlyPayment,
		MonthlyPayments: req.MonthlyPayments,
		PreviousBalance: req.PreviousBalance,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionUpdate, models.AuditResourcePeriod, period.ID, c.ClientIP(),
		map[string]interface{}{"year": period.Year, "monthly_payment": period.MonthlyPayment})

	c.JSON(http.StatusOK, gin.H{"period": period})
}

// ActivatePeriod makes a period the active one.
// @Summary     Activate a budget period
// @Description Make a period the active one. All other periods of the user are archived.
// @Tags        periods
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Period ID"
// @Success     200 {object} models.BudgetPeriod "Period activated"
// @Failure     400 {object} ErrorResponse "Invalid period ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/activate [post]
func (h *PeriodHandler) ActivatePeriod(c *gin.Context) {
	h.changeStatus(c, models.AuditActionActivate, h.periodService.ActivatePeriod)
}

// ArchivePeriod makes a period read-only.
// @Summary     Archive a budget period
// @Tags        periods
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Period ID"
// @Success     200 {object} models.BudgetPeriod "Period archived"
// @Failure     400 {object} ErrorResponse "Invalid period ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/archive [post]
func (h *PeriodHandler) ArchivePeriod(c *gin.Context) {
	h.changeStatus(c, models.AuditActionArchive, h.periodService.ArchivePeriod)
}

func (h *PeriodHandler) changeStatus(c *gin.Context, action string, change func(userID, periodID string) (*models.BudgetPeriod, error)) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	periodID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, err := change(userID, periodID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, action, models.AuditResourcePeriod, period.ID, c.ClientIP(),
		map[string]interface{}{"status": period.Status})

	c.JSON(http.StatusOK, gin.H{"period": period})
}

// DeletePeriod deletes a budget period and its expenses.
// @Summary     Delete a budget period
// @Description Delete a period and its expenses. The change is uploaded right away; an upload failure is reported in sync_error while the delete stands.
// @Tags        periods
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Period ID"
// @Success     200 {object} map[string]interface{} "Period deleted"
// @Failure     400 {object} ErrorResponse "Invalid period ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     409 {object} ErrorResponse "Period archived"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id} [delete]
func (h *PeriodHandler) DeletePeriod(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	periodID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	err = h.periodService.DeletePeriod(c.Request.Context(), userID, periodID)
	if err != nil && syncFailure(err) == nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionDelete, models.AuditResourcePeriod, periodID, c.ClientIP(), nil)

	respondDeleted(c, gin.H{"message": "Budget period deleted successfully"}, err)
}
