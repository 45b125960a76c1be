package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/models"
	"budgettracker/internal/services"
)

// --- mock period service ---

type mockPeriodService struct {
	createPeriodFn    func(userID string, in services.PeriodInput) (*models.BudgetPeriod, error)
	getUserPeriodsFn  func(userID string, status *models.PeriodStatus) ([]models.BudgetPeriod, error)
	getPeriodByIDFn   func(userID, periodID string) (*models.BudgetPeriod, error)
	getActivePeriodFn func(userID string) (*models.BudgetPeriod, error)
	updatePeriodFn    func(userID, periodID string, upd services.PeriodUpdate) (*models.BudgetPeriod, error)
	activatePeriodFn  func(userID, periodID string) (*models.BudgetPeriod, error)
	archivePeriodFn   func(userID, periodID string) (*models.BudgetPeriod, error)
	deletePeriodFn    func(ctx context.Context, userID, periodID string) error
}

var _ services.PeriodServicer = (*mockPeriodService)(nil)

func (m *mockPeriodService) CreatePeriod(userID string, in services.PeriodInput) (*models.BudgetPeriod, error) {
	if m.createPeriodFn != nil {
		return m.createPeriodFn(userID, in)
	}
	return &models.BudgetPeriod{}, nil
}

func (m *mockPeriodService) GetUserPeriods(userID string, status *models.PeriodStatus) ([]models.BudgetPeriod, error) {
	if m.getUserPeriodsFn != nil {
		return m.getUserPeriodsFn(userID, status)
	}
	return []models.BudgetPeriod{}, nil
}

func (m *mockPeriodService) GetPeriodByID(userID, periodID string) (*models.BudgetPeriod, error) {
	if m.getPeriodByIDFn != nil {
		return m.getPeriodByIDFn(userID, periodID)
	}
	return &models.BudgetPeriod{}, nil
}

func (m *mockPeriodService) GetActivePeriod(userID string) (*models.BudgetPeriod, error) {
	if m.getActivePeriodFn != nil {
		return m.getActivePeriodFn(userID)
	}
	return &models.BudgetPeriod{}, nil
}

func (m *mockPeriodService) UpdatePeriod(userID, periodID string, upd services.PeriodUpdate) (*models.BudgetPeriod, error) {
	if m.updatePeriodFn != nil {
		return m.updatePeriodFn(userID, periodID, upd)
	}
	return &models.BudgetPeriod{}, nil
}

func (m *mockPeriodService) ActivatePeriod(userID, periodID string) (*models.BudgetPeriod, error) {
	if m.activatePeriodFn != nil {
		return m.activatePeriodFn(userID, periodID)
	}
	return &models.BudgetPeriod{}, nil
}

func (m *mockPeriodService) ArchivePeriod(userID, periodID string) (*models.BudgetPeriod, error) {
	if m.archivePeriodFn != nil {
		return m.archivePeriodFn(userID, periodID)
	}
	return &models.BudgetPeriod{}, nil
}

func (m *mockPeriodService) DeletePeriod(ctx context.Context, userID, periodID string) error {
	if m.deletePeriodFn != nil {
		return m.deletePeriodFn(ctx, userID, periodID)
	}
	return nil
}

// --- helpers ---

func setupPeriodRouter(handler *PeriodHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("", injectUserID(testUserID))
	g.POST("/periods", handler.CreatePeriod)
	g.GET("/periods", handler.GetPeriods)
	g.GET("/periods/active", handler.GetActivePeriod)
	g.GET("/periods/:id", handler.GetPeriod)
	g.PUT("/periods/:id", handler.UpdatePeriod)
	g.DELETE("/periods/:id", handler.DeletePeriod)
	g.POST("/periods/:id/activate", handler.ActivatePeriod)
	g.POST("/periods/:id/archive", handler.ArchivePeriod)
	return r
}

func testPeriod(id string, year int, status models.PeriodStatus) *models.BudgetPeriod {
	return &models.BudgetPeriod{
		Base:           models.Base{ID: id},
		UserID:         testUserID,
		Year:           year,
		MonthlyPayment: 6000,
		Status:         status,
	}
}

// --- tests ---

func TestPeriodHandler_CreatePeriod(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var got services.PeriodInput
		svc := &mockPeriodService{
			createPeriodFn: func(userID string, in services.PeriodInput) (*models.BudgetPeriod, error) {
				got = in
				return testPeriod("p-2025", in.Year, models.PeriodStatusActive), nil
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/periods",
			`{"year":2025,"monthly_payment":6000,"previous_balance":-250.5,"copy_from_id":"p-2024","activate":true}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Year != 2025 || got.MonthlyPayment != 6000 || got.PreviousBalance != -250.5 {
			t.Errorf("unexpected input %+v", got)
		}
		if got.CopyFromID != "p-2024" || !got.Activate {
			t.Errorf("expected copy and activate flags, got %+v", got)
		}
		period := parseJSON(t, rec)["period"].(map[string]interface{})
		if period["id"] != "p-2025" || period["status"] != "active" {
			t.Errorf("unexpected period %v", period)
		}
	})

	t.Run("returns 400 on missing year", func(t *testing.T) {
		r := setupPeriodRouter(NewPeriodHandler(&mockPeriodService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/periods", `{"monthly_payment":6000}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 422 with details on validation failure", func(t *testing.T) {
		svc := &mockPeriodService{
			createPeriodFn: func(_ string, _ services.PeriodInput) (*models.BudgetPeriod, error) {
				return nil, apperrors.WithDetails(apperrors.ErrValidationFailed,
					[]string{"monthlyPayments must have exactly 12 entries"})
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/periods", `{"year":2025,"monthly_payments":[1,2,3]}`)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "VALIDATION_FAILED")
		details := result["error"].(map[string]interface{})["details"].([]interface{})
		if len(details) != 1 {
			t.Errorf("expected 1 detail, got %v", details)
		}
	})

	t.Run("returns 409 on duplicate year", func(t *testing.T) {
		svc := &mockPeriodService{
			createPeriodFn: func(_ string, _ services.PeriodInput) (*models.BudgetPeriod, error) {
				return nil, apperrors.ErrDuplicatePeriod
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/periods", `{"year":2025}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_PERIOD")
	})
}

func TestPeriodHandler_GetPeriods(t *testing.T) {
	t.Run("returns 200 with status filter", func(t *testing.T) {
		var gotStatus *models.PeriodStatus
		svc := &mockPeriodService{
			getUserPeriodsFn: func(_ string, status *models.PeriodStatus) ([]models.BudgetPeriod, error) {
				gotStatus = status
				return []models.BudgetPeriod{*testPeriod("p-2024", 2024, models.PeriodStatusArchived)}, nil
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/periods?status=archived", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotStatus == nil || *gotStatus != models.PeriodStatusArchived {
			t.Errorf("expected archived filter, got %v", gotStatus)
		}
		periods := parseJSON(t, rec)["periods"].([]interface{})
		if len(periods) != 1 {
			t.Errorf("expected 1 period, got %d", len(periods))
		}
	})

	t.Run("returns 200 without filter", func(t *testing.T) {
		svc := &mockPeriodService{
			getUserPeriodsFn: func(_ string, status *models.PeriodStatus) ([]models.BudgetPeriod, error) {
				if status != nil {
					t.Errorf("expected no filter, got %v", *status)
				}
				return []models.BudgetPeriod{}, nil
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/periods", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on unknown status", func(t *testing.T) {
		r := setupPeriodRouter(NewPeriodHandler(&mockPeriodService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/periods?status=deleted", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestPeriodHandler_GetActivePeriod(t *testing.T) {
	t.Run("returns 404 without active period", func(t *testing.T) {
		svc := &mockPeriodService{
			getActivePeriodFn: func(_ string) (*models.BudgetPeriod, error) {
				return nil, apperrors.ErrNoActivePeriod
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/periods/active", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NO_ACTIVE_PERIOD")
	})
}

func TestPeriodHandler_GetPeriod(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockPeriodService{
			getPeriodByIDFn: func(userID, periodID string) (*models.BudgetPeriod, error) {
				if userID != testUserID {
					t.Errorf("expected user %s, got %s", testUserID, userID)
				}
				return testPeriod(periodID, 2025, models.PeriodStatusActive), nil
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/periods/p-2025", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		period := parseJSON(t, rec)["period"].(map[string]interface{})
		if period["year"] != float64(2025) {
			t.Errorf("expected year 2025, got %v", period["year"])
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockPeriodService{
			getPeriodByIDFn: func(_, _ string) (*models.BudgetPeriod, error) {
				return nil, apperrors.ErrPeriodNotFound
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/periods/missing", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PERIOD_NOT_FOUND")
	})
}

func TestPeriodHandler_UpdatePeriod(t *testing.T) {
	t.Run("passes only given fields", func(t *testing.T) {
		var got services.PeriodUpdate
		svc := &mockPeriodService{
			updatePeriodFn: func(_, periodID string, upd services.PeriodUpdate) (*models.BudgetPeriod, error) {
				got = upd
				return testPeriod(periodID, 2025, models.PeriodStatusActive), nil
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/periods/p-2025", `{"monthly_payment":6500,"monthly_payments":[]}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Year != nil || got.PreviousBalance != nil {
			t.Errorf("expected untouched fields to be nil, got %+v", got)
		}
		if got.MonthlyPayment == nil || *got.MonthlyPayment != 6500 {
			t.Errorf("expected monthly payment 6500, got %v", got.MonthlyPayment)
		}
		if got.MonthlyPayments == nil || len(got.MonthlyPayments) != 0 {
			t.Errorf("expected empty monthly payments to clear, got %v", got.MonthlyPayments)
		}
	})

	t.Run("returns 409 on archived period", func(t *testing.T) {
		svc := &mockPeriodService{
			updatePeriodFn: func(_, _ string, _ services.PeriodUpdate) (*models.BudgetPeriod, error) {
				return nil, apperrors.ErrPeriodArchived
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/periods/p-2024", `{"monthly_payment":1}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PERIOD_ARCHIVED")
	})

	t.Run("returns 400 on malformed body", func(t *testing.T) {
		r := setupPeriodRouter(NewPeriodHandler(&mockPeriodService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/periods/p-2025", `{"year":"next"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestPeriodHandler_ChangeStatus(t *testing.T) {
	t.Run("activate returns active period", func(t *testing.T) {
		svc := &mockPeriodService{
			activatePeriodFn: func(_, periodID string) (*models.BudgetPeriod, error) {
				return testPeriod(periodID, 2024, models.PeriodStatusActive), nil
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/periods/p-2024/activate", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		period := parseJSON(t, rec)["period"].(map[string]interface{})
		if period["status"] != "active" {
			t.Errorf("expected active, got %v", period["status"])
		}
	})

	t.Run("archive returns archived period", func(t *testing.T) {
		svc := &mockPeriodService{
			archivePeriodFn: func(_, periodID string) (*models.BudgetPeriod, error) {
				return testPeriod(periodID, 2025, models.PeriodStatusArchived), nil
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/periods/p-2025/archive", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		period := parseJSON(t, rec)["period"].(map[string]interface{})
		if period["status"] != "archived" {
			t.Errorf("expected archived, got %v", period["status"])
		}
	})
}

func TestPeriodHandler_DeletePeriod(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		r := setupPeriodRouter(NewPeriodHandler(&mockPeriodService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/periods/p-2025", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if _, ok := parseJSON(t, rec)["sync_error"]; ok {
			t.Error("expected no sync_error")
		}
	})

	t.Run("reports upload failure with 200", func(t *testing.T) {
		svc := &mockPeriodService{
			deletePeriodFn: func(_ context.Context, _, _ string) error {
				return apperrors.ErrCloudUnavailable
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/periods/p-2025", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		syncErr, ok := parseJSON(t, rec)["sync_error"].(map[string]interface{})
		if !ok || syncErr["code"] != "CLOUD_UNAVAILABLE" {
			t.Errorf("expected CLOUD_UNAVAILABLE sync_error, got %v", syncErr)
		}
	})

	t.Run("returns 409 on archived period", func(t *testing.T) {
		svc := &mockPeriodService{
			deletePeriodFn: func(_ context.Context, _, _ string) error {
				return apperrors.ErrPeriodArchived
			},
		}
		r := setupPeriodRouter(NewPeriodHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/periods/p-2024", "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}
