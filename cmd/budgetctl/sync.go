package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"budgettracker/internal/services"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize with cloud storage (newest side wins)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSyncOp(cmd, "Synchronizing", func(s *session, ctx context.Context) (*services.SyncResult, error) {
			return s.app.Sync.Sync(ctx, s.user.ID)
		})
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Replace the cloud copy with the local budget",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSyncOp(cmd, "Uploading", func(s *session, ctx context.Context) (*services.SyncResult, error) {
			return s.app.Sync.Push(ctx, s.user.ID)
		})
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local budget with the cloud copy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSyncOp(cmd, "Downloading", func(s *session, ctx context.Context) (*services.SyncResult, error) {
			return s.app.Sync.Pull(ctx, s.user.ID)
		})
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sync state",
	RunE:  runSyncStatus,
}

func init() {
	syncCmd.AddCommand(syncPushCmd, syncPullCmd, syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSyncOp(cmd *cobra.Command, verb string, op func(*session, context.Context) (*services.SyncResult, error)) error {
	s, err := open(cmd)
	if err != nil {
		return err
	}

	progress("%s for %s...", verb, s.user.Email)
	ctx, cancel := s.cloudContext()
	defer cancel()

	result, err := op(s, ctx)
	if err != nil {
		return err
	}
	printSyncResult(result)
	return nil
}

func printSyncResult(r *services.SyncResult) {
	rows := [][]string{{"Action", r.Action}}
	if r.Action != services.SyncActionNone {
		rows = append(rows,
			[]string{"Periods", strconv.Itoa(r.Periods)},
			[]string{"Expenses", strconv.Itoa(r.Expenses)},
		)
	}
	if r.FileID != "" {
		rows = append(rows, []string{"Remote file", r.FileID})
	}
	if r.ModifiedTime != nil {
		rows = append(rows, []string{"Remote modified", formatTime(r.ModifiedTime)})
	}
	if r.BackupID != "" {
		rows = append(rows, []string{"Backup", r.BackupID})
	}
	fmt.Println(RenderTable(Table{Rows: rows}))
	for _, w := range r.Warnings {
		fmt.Println(renderWarning(w))
	}
}

func runSyncStatus(cmd *cobra.Command, _ []string) error {
	s, err := open(cmd)
	if err != nil {
		return err
	}

	status, err := s.app.Sync.Status(s.ctx, s.user.ID)
	if err != nil {
		return err
	}

	rows := [][]string{
		{"Cloud sync", enabledLabel(status.Enabled)},
		{"Local changes", pendingLabel(status.Dirty)},
		{"Local modified", formatTime(status.LocalModifiedAt)},
		{"Last push", formatTime(status.LastPushedAt)},
		{"Last pull", formatTime(status.LastPulledAt)},
	}
	if status.RemoteFileID != "" {
		rows = append(rows,
			[]string{"---"},
			[]string{"Remote file", status.RemoteFileID},
			[]string{"Remote modified", formatTime(status.RemoteModifiedAt)},
		)
	}
	if status.LastError != "" {
		rows = append(rows, []string{"---"}, []string{"Last error", status.LastError})
	}

	fmt.Println(RenderTitle("SYNC  " + s.user.Email))
	fmt.Println(RenderTable(Table{Rows: rows}))

	if status.Enabled && !flagQuiet {
		ctx, cancel := s.cloudContext()
		defer cancel()
		changed, err := s.app.Sync.CheckForUpdates(ctx, s.user.ID)
		switch {
		case err != nil:
			fmt.Println(renderWarning("could not reach cloud storage: " + err.Error()))
		case changed:
			fmt.Println(renderWarning("the cloud copy changed since the last sync; run `budgetctl sync`"))
		default:
			fmt.Println(renderSuccess("cloud copy is up to date"))
		}
	}
	return nil
}

func enabledLabel(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func pendingLabel(dirty bool) string {
	if dirty {
		return "pending upload"
	}
	return "none"
}
