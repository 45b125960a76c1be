package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"budgettracker/internal/app"
	"budgettracker/internal/cloud"
	"budgettracker/internal/config"
	"budgettracker/internal/logger"
	"budgettracker/internal/testutil"
	"budgettracker/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	App    *app.App
	Store  *cloud.MemoryStore
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// testConfig returns a configuration with rate limiting off and debounced
// uploads pushed far enough out that only explicit syncs reach the store.
func testConfig() *config.Config {
	return &config.Config{
		Env:                   "test",
		JWTSecret:             "integration-test-secret",
		JWTExpirationDur:      time.Hour,
		CloudProvider:         config.CloudProviderMemory,
		CloudFolderName:       "Budget Tracker",
		CloudFileName:         "budget-data.json",
		CloudBackupFolderName: "backups",
		SyncDebounce:          time.Hour,
		BackupKeepCount:       3,
		BackupOnSync:          true,
	}
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite and an in-memory cloud store.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testConfig()
	config.Set(cfg)

	store := cloud.NewMemoryStore()
	application := app.New(db, cfg, store)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = application.Close(ctx)
	})

	return &testApp{DB: db, App: application, Store: store, Router: application.Router()}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// expectStatus fails the test when rec does not carry the wanted status.
func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// errorCode returns the code of an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected an error object: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createPeriod creates a budget period and returns its ID.
func (app *testApp) createPeriod(t *testing.T, token, body string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/periods", body, token)
	expectStatus(t, rec, http.StatusCreated)
	period := parseJSON(t, rec)["period"].(map[string]interface{})
	return period["id"].(string)
}

// createExpense adds an expense to a period and returns its ID.
func (app *testApp) createExpense(t *testing.T, token, periodID, body string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/periods/"+periodID+"/expenses", body, token)
	expectStatus(t, rec, http.StatusCreated)
	expense := parseJSON(t, rec)["expense"].(map[string]interface{})
	return expense["id"].(string)
}
