package models

// Audit actions.
const (
	AuditActionRegister   = "register"
	AuditActionLogin      = "login"
	AuditActionCreate     = "create"
	AuditActionUpdate     = "update"
	AuditActionDelete     = "delete"
	AuditActionBulkDelete = "bulk_delete"
	AuditActionActivate   = "activate"
	AuditActionArchive    = "archive"
	AuditActionImport     = "import"
	AuditActionPush       = "sync_push"
	AuditActionPull       = "sync_pull"
	AuditActionRestore    = "restore"
)

// Audited resource types.
const (
	AuditResourceUser    = "user"
	AuditResourcePeriod  = "budget_period"
	AuditResourceExpense = "expense"
	AuditResourceBudget  = "budget_data"
)

// AuditLog records sensitive user operations, such as deletes and cloud
// overwrites, so that data loss can be traced.
type AuditLog struct {
	Base
	UserID       string `gorm:"not null;index;type:text" json:"user_id"`
	Action       string `gorm:"not null;index" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"type:text" json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
