package services

import (
	"strings"
	"testing"

	"budgettracker/internal/models"
	"budgettracker/internal/pagination"
	"budgettracker/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, models.AuditActionDelete, models.AuditResourceExpense, "exp-1", "10.0.0.1", map[string]any{"name": "Rent"})
	svc.Log(user.ID, models.AuditActionLogin, models.AuditResourceUser, user.ID, "10.0.0.1", nil)

	var entries []models.AuditLog
	if err := db.Where("user_id = ?", user.ID).Order("id ASC").Find(&entries).Error; err != nil {
		t.Fatalf("failed to load audit entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !strings.Contains(entries[0].Changes, `"name":"Rent"`) {
		t.Errorf("expected encoded changes, got %q", entries[0].Changes)
	}
	if entries[1].Changes != "" {
		t.Errorf("expected no changes for a login, got %q", entries[1].Changes)
	}
}

func TestGetUserActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	for _, action := range []string{models.AuditActionCreate, models.AuditActionPush, models.AuditActionUpdate, models.AuditActionPush} {
		svc.Log(user.ID, action, models.AuditResourceBudget, "", "", nil)
	}
	svc.Log(other.ID, models.AuditActionPush, models.AuditResourceBudget, "", "", nil)

	t.Run("newest_first", func(t *testing.T) {
		result, err := svc.GetUserActivity(user.ID, "", pagination.PageRequest{PageSize: 3})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 4 || result.TotalPages != 2 {
			t.Fatalf("expected 4 items on 2 pages, got %d on %d", result.TotalItems, result.TotalPages)
		}
		if len(result.Data) != 3 {
			t.Fatalf("expected 3 entries on the first page, got %d", len(result.Data))
		}
		if result.Data[0].Action != models.AuditActionPush || result.Data[1].Action != models.AuditActionUpdate {
			t.Errorf("unexpected order: %s, %s", result.Data[0].Action, result.Data[1].Action)
		}
	})

	t.Run("filtered_by_action", func(t *testing.T) {
		result, err := svc.GetUserActivity(user.ID, models.AuditActionPush, pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 pushes, got %d", result.TotalItems)
		}
		for _, e := range result.Data {
			if e.UserID != user.ID {
				t.Errorf("entry %s belongs to another user", e.ID)
			}
		}
	})
}
