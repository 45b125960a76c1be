package services

import (
	"context"
	"time"

	"budgettracker/internal/calc"
	"budgettracker/internal/cloud"
	"budgettracker/internal/coordinator"
	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
	"budgettracker/internal/validator"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// ChangeNotifier is told about local mutations so they reach cloud storage.
// MarkDirty schedules a debounced upload; MarkDirtyNow uploads right away
// and returns the upload error.
type ChangeNotifier interface {
	MarkDirty(userID string)
	MarkDirtyNow(ctx context.Context, userID string) error
}

// PeriodInput holds the fields of a new budget period.
type PeriodInput struct {
	Year            int
	MonthlyPayment  float64
	MonthlyPayments []float64
	PreviousBalance float64
	// Activate makes the new period the active one. The first period of a
	// user is always activated.
	Activate bool
	// CopyFromID names a period whose expenses are copied into the new one.
	CopyFromID string
}

// PeriodUpdate holds optional period changes. A non-nil MonthlyPayments
// replaces the stored values; an empty one clears them.
type PeriodUpdate struct {
	Year            *int
	MonthlyPayment  *float64
	MonthlyPayments []float64
	PreviousBalance *float64
}

// PeriodServicer defines the contract for budget period business logic.
type PeriodServicer interface {
	CreatePeriod(userID string, in PeriodInput) (*models.BudgetPeriod, error)
	GetUserPeriods(userID string, status *models.PeriodStatus) ([]models.BudgetPeriod, error)
	GetPeriodByID(userID, periodID string) (*models.BudgetPeriod, error)
	GetActivePeriod(userID string) (*models.BudgetPeriod, error)
	UpdatePeriod(userID, periodID string, upd PeriodUpdate) (*models.BudgetPeriod, error)
	ActivatePeriod(userID, periodID string) (*models.BudgetPeriod, error)
	ArchivePeriod(userID, periodID string) (*models.BudgetPeriod, error)
	DeletePeriod(ctx context.Context, userID, periodID string) error
}

// ExpenseUpdate holds optional expense changes. A non-nil MonthlyAmounts
// replaces the stored values; an empty one clears them.
type ExpenseUpdate struct {
	Name           *string
	Amount         *float64
	MonthlyAmounts []float64
	Frequency      *string
	StartMonth     *int
	EndMonth       *int
}

// ImportRowError describes an expense that was skipped during an import.
type ImportRowError struct {
	Row    int      `json:"row"`
	Name   string   `json:"name"`
	Errors []string `json:"errors"`
}

// ImportResult summarizes a bulk expense import.
type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  []ImportRowError `json:"skipped"`
}

// ExpenseServicer defines the contract for expense business logic.
type ExpenseServicer interface {
	CreateExpense(userID, periodID string, in validator.ExpenseInput) (*models.Expense, error)
	GetPeriodExpenses(userID, periodID string, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	GetAllPeriodExpenses(userID, periodID string) ([]models.Expense, error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID string, upd ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
	BulkDeleteExpenses(ctx context.Context, userID string, expenseIDs []string) (int64, error)
	ImportExpenses(userID, periodID string, inputs []validator.ExpenseInput) (*ImportResult, error)
}

// ReportServicer defines the contract for budget reports. An empty period
// ID selects the active period.
type ReportServicer interface {
	GetSummary(userID, periodID string) (*calc.Summary, error)
	GetMonthlyTotals(userID, periodID string) ([calc.MonthsPerYear]float64, error)
	GetProjection(userID, periodID string) ([]calc.ProjectionPoint, error)
	GetFrequencyBreakdown(userID, periodID string) ([]calc.FrequencyGroup, error)
	ComparePeriods(userID, currentID, previousID string) (*calc.PeriodComparison, error)
	CompareMonthlyTotals(userID, currentID, previousID string) ([]calc.MonthComparison, error)
	CompareExpenses(userID, currentID, previousID string) ([]calc.ExpenseComparison, error)
	GetYearlyTrends(userID string) ([]calc.YearTrend, error)
}

// Sync actions reported in SyncResult.
const (
	SyncActionNone    = "none"
	SyncActionPush    = "push"
	SyncActionPull    = "pull"
	SyncActionRestore = "restore"
)

// SyncResult describes what a sync operation did.
type SyncResult struct {
	Action       string     `json:"action"`
	FileID       string     `json:"file_id,omitempty"`
	ModifiedTime *time.Time `json:"modified_time,omitempty"`
	Periods      int        `json:"periods"`
	Expenses     int        `json:"expenses"`
	BackupID     string     `json:"backup_id,omitempty"`
	Warnings     []string   `json:"warnings,omitempty"`
}

// SyncStatus is the sync state of one user.
type SyncStatus struct {
	Enabled          bool              `json:"enabled"`
	Dirty            bool              `json:"dirty"`
	RemoteFileID     string            `json:"remote_file_id,omitempty"`
	RemoteModifiedAt *time.Time        `json:"remote_modified_at,omitempty"`
	LocalModifiedAt  *time.Time        `json:"local_modified_at,omitempty"`
	LastPushedAt     *time.Time        `json:"last_pushed_at,omitempty"`
	LastPulledAt     *time.Time        `json:"last_pulled_at,omitempty"`
	LastError        string            `json:"last_error,omitempty"`
	FolderState      string            `json:"folder_state,omitempty"`
	Queue            coordinator.Stats `json:"queue"`
}

// SyncServicer defines the contract for cloud synchronization. It also
// receives change notifications from the other services.
type SyncServicer interface {
	ChangeNotifier
	Push(ctx context.Context, userID string) (*SyncResult, error)
	Pull(ctx context.Context, userID string) (*SyncResult, error)
	Sync(ctx context.Context, userID string) (*SyncResult, error)
	Status(ctx context.Context, userID string) (*SyncStatus, error)
	CheckForUpdates(ctx context.Context, userID string) (bool, error)
	CreateBackup(ctx context.Context, userID string) (*cloud.File, error)
	ListBackups(ctx context.Context, userID string) ([]cloud.File, error)
	RestoreBackup(ctx context.Context, userID, fileID string) (*SyncResult, error)
	RotateBackups(ctx context.Context, userID string) (*cloud.RotationResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
	GetUserActivity(userID, action string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
