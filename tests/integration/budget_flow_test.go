package integration

import (
	"fmt"
	"net/http"
	"testing"

	"budgettracker/internal/cloud"
)

// seedBudget creates the 2025 period with a monthly, a yearly and a
// quarterly expense: 48000 + 1200 + 1200 a year against 5000 a month.
func seedBudget(t *testing.T, app *testApp, token string) (periodID string, expenseIDs []string) {
	t.Helper()
	periodID = app.createPeriod(t, token, `{"year":2025,"monthly_payment":5000,"previous_balance":1000}`)
	expenseIDs = []string{
		app.createExpense(t, token, periodID, `{"name":"Rent","amount":4000,"frequency":"monthly"}`),
		app.createExpense(t, token, periodID, `{"name":"Insurance","amount":"1.200,00","frequency":"yearly","start_month":3}`),
		app.createExpense(t, token, periodID, `{"name":"Gym","amount":300,"frequency":"quarterly"}`),
	}
	return periodID, expenseIDs
}

func TestBudgetFlow_PeriodExpensesAndReports(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "budget@test.com", "password123")

	periodID, _ := seedBudget(t, app, token)

	// The first period is activated automatically
	rec := app.request("GET", "/api/v1/periods/active", "", token)
	expectStatus(t, rec, http.StatusOK)
	active := parseJSON(t, rec)["period"].(map[string]interface{})
	if active["id"] != periodID || active["status"] != "active" {
		t.Fatalf("expected %s to be active, got %v", periodID, active)
	}

	// Expenses are paginated
	rec = app.request("GET", "/api/v1/periods/"+periodID+"/expenses?page=1&page_size=2", "", token)
	expectStatus(t, rec, http.StatusOK)
	page := parseJSON(t, rec)
	if page["total_items"].(float64) != 3 || page["total_pages"].(float64) != 2 {
		t.Errorf("unexpected pagination: %v", page)
	}
	if len(page["data"].([]interface{})) != 2 {
		t.Errorf("expected 2 expenses on the first page, got %d", len(page["data"].([]interface{})))
	}

	// Summary of the active period
	rec = app.request("GET", "/api/v1/reports/summary", "", token)
	expectStatus(t, rec, http.StatusOK)
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	want := map[string]float64{
		"totalAnnual":    50400,
		"avgMonthly":     4200,
		"monthlyBalance": 800,
		"annualReserve":  10600,
	}
	for key, v := range want {
		if summary[key].(float64) != v {
			t.Errorf("summary %s: expected %v, got %v", key, v, summary[key])
		}
	}

	// Monthly totals: gym in January, insurance in March
	rec = app.request("GET", "/api/v1/reports/monthly?period_id="+periodID, "", token)
	expectStatus(t, rec, http.StatusOK)
	totals := parseJSON(t, rec)["monthly_totals"].([]interface{})
	if len(totals) != 12 {
		t.Fatalf("expected 12 monthly totals, got %d", len(totals))
	}
	for month, v := range map[int]float64{1: 4300, 2: 4000, 3: 5200, 4: 4300} {
		if totals[month-1].(float64) != v {
			t.Errorf("month %d: expected %v, got %v", month, v, totals[month-1])
		}
	}

	// Projection starts from the previous balance
	rec = app.request("GET", "/api/v1/reports/projection", "", token)
	expectStatus(t, rec, http.StatusOK)
	points := parseJSON(t, rec)["projection"].([]interface{})
	first := points[0].(map[string]interface{})
	if first["balance"].(float64) != 1700 {
		t.Errorf("expected January balance 1700, got %v", first["balance"])
	}

	// Frequency breakdown
	rec = app.request("GET", "/api/v1/reports/frequency", "", token)
	expectStatus(t, rec, http.StatusOK)
	groups := parseJSON(t, rec)["frequencies"].([]interface{})
	if len(groups) != 3 {
		t.Fatalf("expected 3 frequency groups, got %d", len(groups))
	}
	monthly := groups[0].(map[string]interface{})
	if monthly["name"] != "Månedlig" || monthly["value"].(float64) != 48000 {
		t.Errorf("unexpected monthly group: %v", monthly)
	}
}

func TestBudgetFlow_UpdateAndDeleteExpenses(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "edit@test.com", "password123")
	periodID, ids := seedBudget(t, app, token)

	// Partial update keeps the other fields
	rec := app.request("PUT", "/api/v1/expenses/"+ids[0], `{"amount":"4.500"}`, token)
	expectStatus(t, rec, http.StatusOK)
	expense := parseJSON(t, rec)["expense"].(map[string]interface{})
	if expense["amount"].(float64) != 4500 || expense["name"] != "Rent" {
		t.Errorf("unexpected expense after update: %v", expense)
	}

	// Delete one
	rec = app.request("DELETE", "/api/v1/expenses/"+ids[1], "", token)
	expectStatus(t, rec, http.StatusOK)
	if _, ok := parseJSON(t, rec)["sync_error"]; ok {
		t.Errorf("expected no sync error: %s", rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/expenses/"+ids[1], "", token)
	expectStatus(t, rec, http.StatusNotFound)

	// Bulk delete ignores what is already gone
	body := fmt.Sprintf(`{"ids":[%q,%q]}`, ids[1], ids[2])
	rec = app.request("POST", "/api/v1/expenses/bulk-delete", body, token)
	expectStatus(t, rec, http.StatusOK)
	if parseJSON(t, rec)["deleted"].(float64) != 1 {
		t.Errorf("expected 1 deleted, got %s", rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/reports/summary?period_id="+periodID, "", token)
	expectStatus(t, rec, http.StatusOK)
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})
	if summary["totalAnnual"].(float64) != 54000 {
		t.Errorf("expected 54000 after deletes, got %v", summary["totalAnnual"])
	}

	// Deletes upload immediately
	if app.Store.Calls(cloud.OpCreateFile) == 0 {
		t.Error("expected the delete to upload the budget")
	}
}

func TestBudgetFlow_ValidationErrors(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "invalid@test.com", "password123")
	periodID := app.createPeriod(t, token, `{"year":2025,"monthly_payment":5000}`)

	rec := app.request("POST", "/api/v1/periods/"+periodID+"/expenses",
		`{"name":"","amount":0,"frequency":"weekly","start_month":5,"end_month":2}`, token)
	expectStatus(t, rec, http.StatusUnprocessableEntity)
	if code := errorCode(t, rec); code != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %s", code)
	}

	// Same year twice
	rec = app.request("POST", "/api/v1/periods", `{"year":2025}`, token)
	expectStatus(t, rec, http.StatusConflict)
	if code := errorCode(t, rec); code != "DUPLICATE_PERIOD" {
		t.Errorf("expected DUPLICATE_PERIOD, got %s", code)
	}

	// Periods of other users are invisible
	other, _, _ := app.registerUser(t, "other@test.com", "password123")
	rec = app.request("GET", "/api/v1/periods/"+periodID, "", other)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestBudgetFlow_ArchivedPeriodIsReadOnly(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "archive@test.com", "password123")
	oldID, _ := seedBudget(t, app, token)

	// A new active period copying last year's expenses archives the old one
	body := fmt.Sprintf(`{"year":2026,"monthly_payment":5200,"activate":true,"copy_from_id":%q}`, oldID)
	newID := app.createPeriod(t, token, body)

	rec := app.request("GET", "/api/v1/periods/"+oldID, "", token)
	expectStatus(t, rec, http.StatusOK)
	if status := parseJSON(t, rec)["period"].(map[string]interface{})["status"]; status != "archived" {
		t.Fatalf("expected the old period to be archived, got %v", status)
	}

	rec = app.request("POST", "/api/v1/periods/"+oldID+"/expenses",
		`{"name":"Late","amount":10,"frequency":"monthly"}`, token)
	expectStatus(t, rec, http.StatusConflict)
	if code := errorCode(t, rec); code != "PERIOD_ARCHIVED" {
		t.Errorf("expected PERIOD_ARCHIVED, got %s", code)
	}

	rec = app.request("GET", "/api/v1/periods/"+newID+"/expenses", "", token)
	expectStatus(t, rec, http.StatusOK)
	if parseJSON(t, rec)["total_items"].(float64) != 3 {
		t.Errorf("expected 3 copied expenses: %s", rec.Body.String())
	}

	// Year over year: rent went nowhere, income rose by 200 a month
	path := fmt.Sprintf("/api/v1/reports/compare?previous_id=%s", oldID)
	rec = app.request("GET", path, "", token)
	expectStatus(t, rec, http.StatusOK)
	cmp := parseJSON(t, rec)["comparison"].(map[string]interface{})
	if cmp["currentYear"].(float64) != 2026 || cmp["previousYear"].(float64) != 2025 {
		t.Errorf("unexpected years: %v", cmp)
	}
	balance := cmp["monthlyBalance"].(map[string]interface{})
	if balance["difference"].(float64) != 200 || balance["percent"].(float64) != 25 {
		t.Errorf("unexpected balance change: %v", balance)
	}

	rec = app.request("GET", "/api/v1/reports/trends", "", token)
	expectStatus(t, rec, http.StatusOK)
	if trends := parseJSON(t, rec)["trends"].([]interface{}); len(trends) != 2 {
		t.Errorf("expected 2 trend years, got %d", len(trends))
	}
}
