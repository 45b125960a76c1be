// Command budgetctl manages a user's budget from the terminal: cloud sync,
// backups, summaries and CSV files. It works on the same database as the
// API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"budgettracker/internal/app"
	"budgettracker/internal/config"
	"budgettracker/internal/database"
	"budgettracker/internal/logger"
	"budgettracker/internal/models"
)

var (
	flagEmail   string
	flagTimeout time.Duration
	flagQuiet   bool
)

// session is the state shared by the commands of one invocation.
type session struct {
	app  *app.App
	db   *database.Manager
	user *models.User
	ctx  context.Context
}

var current *session

var rootCmd = &cobra.Command{
	Use:           "budgetctl",
	Short:         "Budget tracker CLI",
	Long:          "Synchronize, back up, summarize and export your budget.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagEmail, "email", "e", "", "Account email (defaults to the saved one)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 2*time.Minute, "Timeout for cloud operations")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only print results")
}

func main() {
	env := os.Getenv("ENV")
	if env == "" {
		env = "cli"
	}
	logger.Init(env)
	defer logger.Sync()
	if err := logger.SetLevel(os.Getenv("LOG_LEVEL")); err != nil {
		fmt.Fprintln(os.Stderr, "ignoring LOG_LEVEL:", err)
	}

	err := rootCmd.Execute()
	if current != nil {
		closeSession(current)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

// open connects to the database and the cloud store and resolves the user.
// Commands that need an account call it first.
func open(cmd *cobra.Command) (*session, error) {
	if current != nil {
		return current, nil
	}

	settings, err := LoadSettings()
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(flagEmail)
	if email == "" {
		email = settings.Email
	}
	if email == "" {
		return nil, errors.New("no account selected: pass --email or run `budgetctl config set email <address>`")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if settings.DBPath != "" && cfg.DBDriver == database.DriverSQLite {
		cfg.DBPath = settings.DBPath
	}

	manager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, err
	}
	if err := manager.RunMigrations(); err != nil {
		_ = manager.Close()
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		_ = manager.Close()
		return nil, err
	}

	application := app.New(manager.DB(), cfg, store)
	user, err := application.Users.GetUserByEmail(email)
	if err != nil {
		_ = application.Close(context.Background())
		_ = manager.Close()
		return nil, fmt.Errorf("account %s: %w", email, err)
	}

	current = &session{app: application, db: manager, user: user, ctx: ctx}
	return current, nil
}

// closeSession waits for pending uploads and closes the database.
func closeSession(s *session) {
	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()
	if err := s.app.Close(ctx); err != nil {
		fmt.Fprintln(os.Stderr, renderWarning("pending uploads did not finish: "+err.Error()))
	}
	_ = s.db.Close()
}

// cloudContext bounds a cloud operation by --timeout.
func (s *session) cloudContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(s.ctx, flagTimeout)
}

func progress(format string, args ...interface{}) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}
