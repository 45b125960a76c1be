package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"budgettracker/internal/cloud"
	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/services"
)

type mockSyncService struct {
	pushFn            func(ctx context.Context, userID string) (*services.SyncResult, error)
	pullFn            func(ctx context.Context, userID string) (*services.SyncResult, error)
	syncFn            func(ctx context.Context, userID string) (*services.SyncResult, error)
	statusFn          func(ctx context.Context, userID string) (*services.SyncStatus, error)
	checkForUpdatesFn func(ctx context.Context, userID string) (bool, error)
	createBackupFn    func(ctx context.Context, userID string) (*cloud.File, error)
	listBackupsFn     func(ctx context.Context, userID string) ([]cloud.File, error)
	restoreBackupFn   func(ctx context.Context, userID, fileID string) (*services.SyncResult, error)
	rotateBackupsFn   func(ctx context.Context, userID string) (*cloud.RotationResult, error)
}

var _ services.SyncServicer = (*mockSyncService)(nil)

func (m *mockSyncService) MarkDirty(string) {}

func (m *mockSyncService) MarkDirtyNow(context.Context, string) error { return nil }

func (m *mockSyncService) Push(ctx context.Context, userID string) (*services.SyncResult, error) {
	if m.pushFn != nil {
		return m.pushFn(ctx, userID)
	}
	return &services.SyncResult{Action: "push"}, nil
}

func (m *mockSyncService) Pull(ctx context.Context, userID string) (*services.SyncResult, error) {
	if m.pullFn != nil {
		return m.pullFn(ctx, userID)
	}
	return &services.SyncResult{Action: "pull"}, nil
}

func (m *mockSyncService) Sync(ctx context.Context, userID string) (*services.SyncResult, error) {
	if m.syncFn != nil {
		return m.syncFn(ctx, userID)
	}
	return &services.SyncResult{Action: "none"}, nil
}

func (m *mockSyncService) Status(ctx context.Context, userID string) (*services.SyncStatus, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, userID)
	}
	return &services.SyncStatus{}, nil
}

func (m *mockSyncService) CheckForUpdates(ctx context.Context, userID string) (bool, error) {
	if m.checkForUpdatesFn != nil {
		return m.checkForUpdatesFn(ctx, userID)
	}
	return false, nil
}

func (m *mockSyncService) CreateBackup(ctx context.Context, userID string) (*cloud.File, error) {
	if m.createBackupFn != nil {
		return m.createBackupFn(ctx, userID)
	}
	return &cloud.File{}, nil
}

func (m *mockSyncService) ListBackups(ctx context.Context, userID string) ([]cloud.File, error) {
	if m.listBackupsFn != nil {
		return m.listBackupsFn(ctx, userID)
	}
	return []cloud.File{}, nil
}

func (m *mockSyncService) RestoreBackup(ctx context.Context, userID, fileID string) (*services.SyncResult, error) {
	if m.restoreBackupFn != nil {
		return m.restoreBackupFn(ctx, userID, fileID)
	}
	return &services.SyncResult{Action: "restore"}, nil
}

func (m *mockSyncService) RotateBackups(ctx context.Context, userID string) (*cloud.RotationResult, error) {
	if m.rotateBackupsFn != nil {
		return m.rotateBackupsFn(ctx, userID)
	}
	return &cloud.RotationResult{}, nil
}

func setupSyncRouter(handler *SyncHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("/sync", injectUserID(testUserID))
	g.POST("", handler.Sync)
	g.GET("/status", handler.GetStatus)
	g.GET("/check", handler.CheckForUpdates)
	g.POST("/push", handler.Push)
	g.POST("/pull", handler.Pull)
	g.GET("/backups", handler.ListBackups)
	g.POST("/backups", handler.CreateBackup)
	g.POST("/backups/rotate", handler.RotateBackups)
	g.POST("/backups/:id/restore", handler.RestoreBackup)
	return r
}

func TestSyncHandler_GetStatus(t *testing.T) {
	pushed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockSyncService{
		statusFn: func(_ context.Context, _ string) (*services.SyncStatus, error) {
			return &services.SyncStatus{Enabled: true, Dirty: true, LastPushedAt: &pushed}, nil
		},
	}
	r := setupSyncRouter(NewSyncHandler(svc))

	rec := doRequest(r, "GET", "/sync/status", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	status := parseJSON(t, rec)["status"].(map[string]interface{})
	if status["enabled"] != true || status["dirty"] != true {
		t.Errorf("unexpected status %v", status)
	}
	if status["last_pushed_at"] != "2025-03-01T12:00:00Z" {
		t.Errorf("unexpected last_pushed_at %v", status["last_pushed_at"])
	}
}

func TestSyncHandler_CheckForUpdates(t *testing.T) {
	svc := &mockSyncService{
		checkForUpdatesFn: func(_ context.Context, _ string) (bool, error) { return true, nil },
	}
	r := setupSyncRouter(NewSyncHandler(svc))

	rec := doRequest(r, "GET", "/sync/check", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if parseJSON(t, rec)["has_updates"] != true {
		t.Errorf("expected has_updates true, got %s", rec.Body.String())
	}
}

func TestSyncHandler_Operations(t *testing.T) {
	var called []string
	svc := &mockSyncService{
		pushFn: func(_ context.Context, userID string) (*services.SyncResult, error) {
			called = append(called, "push:"+userID)
			return &services.SyncResult{Action: "push", Periods: 2, Expenses: 9}, nil
		},
		pullFn: func(_ context.Context, userID string) (*services.SyncResult, error) {
			called = append(called, "pull:"+userID)
			return &services.SyncResult{Action: "pull"}, nil
		},
		syncFn: func(_ context.Context, userID string) (*services.SyncResult, error) {
			called = append(called, "sync:"+userID)
			return &services.SyncResult{Action: "none"}, nil
		},
	}
	r := setupSyncRouter(NewSyncHandler(svc))

	tests := []struct {
		path   string
		action string
	}{
		{"/sync/push", "push"},
		{"/sync/pull", "pull"},
		{"/sync", "none"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := doRequest(r, "POST", tt.path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			result := parseJSON(t, rec)["result"].(map[string]interface{})
			if result["action"] != tt.action {
				t.Errorf("expected action %q, got %v", tt.action, result["action"])
			}
		})
	}

	want := []string{"push:" + testUserID, "pull:" + testUserID, "sync:" + testUserID}
	if len(called) != len(want) {
		t.Fatalf("expected %v, got %v", want, called)
	}
	for i := range want {
		if called[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], called[i])
		}
	}
}

func TestSyncHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"returns 503 when sync is not configured", apperrors.ErrCloudNotConfigured, http.StatusServiceUnavailable, "CLOUD_NOT_CONFIGURED"},
		{"returns 503 when the cloud is down", apperrors.ErrCloudUnavailable, http.StatusServiceUnavailable, "CLOUD_UNAVAILABLE"},
		{"returns 502 on rejected credentials", apperrors.ErrCloudAuth, http.StatusBadGateway, "CLOUD_AUTH"},
		{"returns 502 on malformed remote data", apperrors.ErrInvalidPayload, http.StatusBadGateway, "INVALID_PAYLOAD"},
		{"returns 409 when local data looks incomplete", apperrors.ErrDataIntegrity, http.StatusConflict, "DATA_INTEGRITY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockSyncService{
				syncFn: func(_ context.Context, _ string) (*services.SyncResult, error) {
					return nil, tt.err
				},
			}
			r := setupSyncRouter(NewSyncHandler(svc))

			rec := doRequest(r, "POST", "/sync", "")

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), tt.code)
		})
	}
}

func TestSyncHandler_Backups(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("lists backups", func(t *testing.T) {
		svc := &mockSyncService{
			listBackupsFn: func(_ context.Context, _ string) ([]cloud.File, error) {
				return []cloud.File{{ID: "b-2", Name: "backup-2.json", CreatedTime: created}, {ID: "b-1"}}, nil
			},
		}
		r := setupSyncRouter(NewSyncHandler(svc))

		rec := doRequest(r, "GET", "/sync/backups", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		backups := parseJSON(t, rec)["backups"].([]interface{})
		if len(backups) != 2 || backups[0].(map[string]interface{})["id"] != "b-2" {
			t.Errorf("unexpected backups %v", backups)
		}
	})

	t.Run("returns 201 on create", func(t *testing.T) {
		svc := &mockSyncService{
			createBackupFn: func(_ context.Context, _ string) (*cloud.File, error) {
				return &cloud.File{ID: "b-3", Name: "backup-3.json", CreatedTime: created}, nil
			},
		}
		r := setupSyncRouter(NewSyncHandler(svc))

		rec := doRequest(r, "POST", "/sync/backups", "")

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		backup := parseJSON(t, rec)["backup"].(map[string]interface{})
		if backup["id"] != "b-3" {
			t.Errorf("unexpected backup %v", backup)
		}
	})

	t.Run("rotates", func(t *testing.T) {
		svc := &mockSyncService{
			rotateBackupsFn: func(_ context.Context, _ string) (*cloud.RotationResult, error) {
				return &cloud.RotationResult{Deleted: 3, Failed: 1}, nil
			},
		}
		r := setupSyncRouter(NewSyncHandler(svc))

		rec := doRequest(r, "POST", "/sync/backups/rotate", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		rotation := parseJSON(t, rec)["rotation"].(map[string]interface{})
		if rotation["deleted"] != float64(3) || rotation["failed"] != float64(1) {
			t.Errorf("unexpected rotation %v", rotation)
		}
	})

	t.Run("restores the requested backup", func(t *testing.T) {
		var gotID string
		svc := &mockSyncService{
			restoreBackupFn: func(_ context.Context, _, fileID string) (*services.SyncResult, error) {
				gotID = fileID
				return &services.SyncResult{Action: "restore", BackupID: fileID, Warnings: []string{"upload failed"}}, nil
			},
		}
		r := setupSyncRouter(NewSyncHandler(svc))

		rec := doRequest(r, "POST", "/sync/backups/b-1/restore", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotID != "b-1" {
			t.Errorf("expected b-1, got %s", gotID)
		}
		result := parseJSON(t, rec)["result"].(map[string]interface{})
		if warnings := result["warnings"].([]interface{}); len(warnings) != 1 {
			t.Errorf("expected 1 warning, got %v", warnings)
		}
	})

	t.Run("returns 404 for an unknown backup", func(t *testing.T) {
		svc := &mockSyncService{
			restoreBackupFn: func(_ context.Context, _, _ string) (*services.SyncResult, error) {
				return nil, apperrors.ErrBackupNotFound
			},
		}
		r := setupSyncRouter(NewSyncHandler(svc))

		rec := doRequest(r, "POST", "/sync/backups/missing/restore", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BACKUP_NOT_FOUND")
	})
}
