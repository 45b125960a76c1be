package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagYes bool

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage cloud backups",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Save the local budget as a new backup",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := s.cloudContext()
		defer cancel()

		progress("Creating backup...")
		file, err := s.app.Sync.CreateBackup(ctx, s.user.ID)
		if err != nil {
			return err
		}
		fmt.Println(renderSuccess(fmt.Sprintf("Created %s (%s)", file.Name, formatSize(file.Size))))
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := s.cloudContext()
		defer cancel()

		files, err := s.app.Sync.ListBackups(ctx, s.user.ID)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println(renderWarning("no backups yet"))
			return nil
		}

		rows := make([][]string, 0, len(files))
		for i := range files {
			f := files[i]
			rows = append(rows, []string{f.ID, f.Name, formatTime(&f.CreatedTime), formatSize(f.Size)})
		}
		fmt.Println(RenderTable(Table{
			Title:   "Backups",
			Headers: []string{"ID", "Name", "Created", "Size"},
			Rows:    rows,
		}))
		return nil
	},
}

var backupRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Delete all but the newest backups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}
		ctx, cancel := s.cloudContext()
		defer cancel()

		res, err := s.app.Sync.RotateBackups(ctx, s.user.ID)
		if err != nil {
			return err
		}
		fmt.Println(renderSuccess("Deleted " + strconv.Itoa(res.Deleted) + " backups"))
		if res.Failed > 0 {
			fmt.Println(renderWarning(strconv.Itoa(res.Failed) + " backups could not be deleted"))
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Replace the local budget with a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := open(cmd)
		if err != nil {
			return err
		}

		if !flagYes {
			ok, err := confirm(fmt.Sprintf("Replace all budget data of %s with backup %s?", s.user.Email, args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println(renderWarning("restore cancelled"))
				return nil
			}
		}

		ctx, cancel := s.cloudContext()
		defer cancel()

		progress("Restoring %s...", args[0])
		result, err := s.app.Sync.RestoreBackup(ctx, s.user.ID, args[0])
		if err != nil {
			return err
		}
		printSyncResult(result)
		return nil
	},
}

func init() {
	backupRestoreCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip the confirmation prompt")
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRotateCmd, backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

// confirm asks a yes/no question on the terminal.
func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Restore").
				Negative("Cancel").
				Value(&ok),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
