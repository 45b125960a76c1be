package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"budgettracker/internal/csvio"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/services"
)

const maxImportSize = 1 << 20

// CSVHandler exports and imports budget periods as spreadsheets.
type CSVHandler struct {
	periodService  services.PeriodServicer
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewCSVHandler creates a new CSVHandler.
func NewCSVHandler(periodService services.PeriodServicer, expenseService services.ExpenseServicer, auditService services.AuditServicer) *CSVHandler {
	return &CSVHandler{periodService: periodService, expenseService: expenseService, auditService: auditService}
}

// ExportPeriod writes a period as CSV.
// @Summary     Export a period as CSV
// @Description Expenses, a month-by-month breakdown and the period summary, UTF-8 with byte order mark
// @Tags        csv
// @Produce     text/csv
// @Security    BearerAuth
// @Param       id path string true "Period ID"
// @Success     200 {file} file "CSV file"
// @Failure     400 {object} ErrorResponse "Invalid period ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/export [get]
func (h *CSVHandler) ExportPeriod(c *gin.Context) {
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
	expenses, err := h.expenseService.GetAllPeriodExpenses(userID, periodID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := csvio.Export(&buf, period.CalcPeriod(expenses)); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="budget-%d.csv"`, period.Year))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ImportPeriod adds the expenses of a CSV file to a period.
// @Summary     Import expenses from CSV
// @Description Accepts a multipart "file" field or a raw text/csv body. Invalid rows are skipped and reported.
// @Tags        csv
// @Accept      multipart/form-data
// @Accept      text/csv
// @Produce     json
// @Security    BearerAuth
// @Param       id   path     string true  "Period ID"
// @Param       file formData file   false "CSV file"
// @Success     200 {object} services.ImportResult "Import result"
// @Failure     400 {object} ErrorResponse "Unreadable CSV"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Period not found"
// @Failure     409 {object} ErrorResponse "Period archived"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /periods/{id}/import [post]
func (h *CSVHandler) ImportPeriod(c *gin.Context) {
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

	body, err := readUpload(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer body.Close()

	inputs, err := csvio.Parse(body)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if len(inputs) == 0 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "The file contains no expenses"))
		return
	}

	result, err := h.expenseService.ImportExpenses(userID, periodID, inputs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, models.AuditActionImport, models.AuditResourcePeriod, periodID, c.ClientIP(),
		map[string]interface{}{"imported": result.Imported, "skipped": len(result.Skipped)})

	c.JSON(http.StatusOK, gin.H{"import": result})
}

// readUpload returns the uploaded CSV, either the multipart "file" field or
// the raw request body.
func readUpload(c *gin.Context) (io.ReadCloser, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "A CSV file is required in the \"file\" field")
		}
		f, err := header.Open()
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "The uploaded file could not be read")
		}
		return f, nil
	}
	return c.Request.Body, nil
}
