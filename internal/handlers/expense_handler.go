package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"budgettracker/internal/calc"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
	"budgettracker/internal/services"
	"budgettracker/internal/validator"
)

// ExpenseHandler handles expense requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// FlexibleAmount accepts a JSON number or a locale formatted string such as
// "1.234,50".
type FlexibleAmount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *FlexibleAmount) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*a = FlexibleAmount(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("amount must be a number or a string")
	}
	*a = FlexibleAmount(validator.ValidateAmount(s))
	return nil
}

// ExpenseRequest represents the request payload for creating or validating an expense.
// MonthlyAmounts, when given, replaces Amount. Months default to the whole year.
type ExpenseRequest struct {
	Name           string          `json:"name"`
	Amount         *FlexibleAmount `json:"amount" swaggertype:"number"`
	MonthlyAmounts []float64       `json:"monthly_amounts"`
	Frequency      string          `json:"frequency"`
	StartMonth     *int            `json:"start_month"`
	EndMonth       *int            `json:"end_month"`
}

// UpdateExpenseRequest represents the request payload for updating an expense.
// An empty MonthlyAmounts list switches the expense back to a fixed amount.
type UpdateExpenseRequest struct {
	Name           *string         `json:"name" binding:"omitempty,min=1,max=100"`
	Amount         *FlexibleAmount `json:"amount" swaggertype:"number"`
	MonthlyAmounts []float64       `json:"monthly_amounts"`
	Frequency      *string         `json:"frequency" binding:"omitempty,frequency"`
	StartMonth     *int            `json:"start_month" binding:"omitempty,month"`
	EndMonth       *int            `json:"end_month" binding:"omitempty,month"`
}

// BulkDeleteRequest represents the request payload for deleting many expenses.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=500,dive,required,max=64"`
}

func (r *ExpenseRequest) input() validator.ExpenseInput {
	in := validator.ExpenseInput{
		Name:           r.Name,
		MonthlyAmounts: r.MonthlyAmounts,
		Frequency:      r.Frequency,
		StartMonth:     1,
		EndMonth:       calc.MonthsPerYear,
	}
	if r.Amount != nil {
		v := float64(*r.Amount)
		in.Amount = &v
	}
	if r.StartMonth != nil {
		in.StartMonth = *r.StartMonth
	}
	if r.EndMonth != nil {
		in.EndMonth = *r.EndMonth
	}
	return in
}

// CreateExpense handles the creation of an expense in a period.
// @Summary     Create an expense
// @Description Add a recurring expense to a budget period that is not archived
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Period ID"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     409 {object} ErrorResponse "Period archived"
// @Failure     422 {object} ErrorResponse "Validation failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
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

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	expense, err := h.expenseService.CreateExpense(userID, periodID, req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionCreate, models.AuditResourceExpense, expense.ID, c.ClientIP(),
		map[string]interface{}{"name": expense.Name, "amount": expense.Amount, "frequency": expense.Frequency})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetPeriodExpenses handles listing the expenses of a period.
// @Summary     List expenses
// @Description Get a paginated list of a period's expenses in creation order
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Period ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       sort      query string false "created, name, amount or start; prefix with - to reverse"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/expenses [get]
func (h *ExpenseHandler) GetPeriodExpenses(c *gin.Context) {
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

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.expenseService.GetPeriodExpenses(userID, periodID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpense returns a single expense.
// @Summary     Get an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense updates an expense.
// @Summary     Update an expense
// @Description Update any field of an expense; the result is validated as a whole
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to update"
// @Success     200 {object} models.Expense "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Period archived"
// @Failure     422 {object} ErrorResponse "Validation failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	upd := services.ExpenseUpdate{
		Name:           req.Name,
		MonthlyAmounts: req.MonthlyAmounts,
		Frequency:      req.Frequency,
		StartMonth:     req.StartMonth,
		EndMonth:       req.EndMonth,
	}
	if req.Amount != nil {
		v := float64(*req.Amount)
		upd.Amount = &v
	}

	expense, err := h.expenseService.UpdateExpense(userID, expenseID, upd)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionUpdate, models.AuditResourceExpense, expense.ID, c.ClientIP(),
		map[string]interface{}{"name": expense.Name, "amount": expense.Amount, "frequency": expense.Frequency})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense deletes an expense.
// @Summary     Delete an expense
// @Description Delete an expense. The change is uploaded right away; an upload failure is reported in sync_error while the delete stands.
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} map[string]interface{} "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Period archived"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	err = h.expenseService.DeleteExpense(c.Request.Context(), userID, expenseID)
	if err != nil && syncFailure(err) == nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionDelete, models.AuditResourceExpense, expenseID, c.ClientIP(), nil)

	respondDeleted(c, gin.H{"message": "Expense deleted successfully"}, err)
}

// BulkDeleteExpenses deletes many expenses at once.
// @Summary     Delete several expenses
// @Description Delete the listed expenses. Unknown IDs are ignored; any expense of an archived period aborts the delete.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BulkDeleteRequest true "Expense IDs"
// @Success     200 {object} map[string]interface{} "Number of deleted expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Period archived"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/bulk-delete [post]
func (h *ExpenseHandler) BulkDeleteExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	deleted, err := h.expenseService.BulkDeleteExpenses(c.Request.Context(), userID, req.IDs)
	if err != nil && syncFailure(err) == nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionBulkDelete, models.AuditResourceExpense, "", c.ClientIP(),
		map[string]interface{}{"ids": req.IDs, "deleted": deleted})

	respondDeleted(c, gin.H{"deleted": deleted}, err)
}

// ValidateExpense checks an expense without saving it.
// @Summary     Validate an expense
// @Description Check an expense and list every problem found
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense details"
// @Success     200 {object} validator.Result "Validation result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses/validate [post]
func (h *ExpenseHandler) ValidateExpense(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result := validator.ValidateExpense(req.input())
	if result.Errors == nil {
		result.Errors = []string{}
	}
	c.JSON(http.StatusOK, result)
}
