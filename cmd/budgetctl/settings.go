package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// Settings are the saved defaults of budgetctl.
type Settings struct {
	// Email selects the account when --email is not given.
	Email string `toml:"email,omitempty"`
	// DBPath overrides DB_PATH for the sqlite driver.
	DBPath string `toml:"db_path,omitempty"`
}

// SettingsDir returns the XDG-compliant config directory.
func SettingsDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "budgetctl")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "budgetctl")
}

// SettingsPath returns the full path to the settings file.
func SettingsPath() string {
	return filepath.Join(SettingsDir(), "config.toml")
}

// LoadSettings reads the settings file, returning empty settings if it
// doesn't exist.
func LoadSettings() (Settings, error) {
	var s Settings

	data, err := os.ReadFile(SettingsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings: %w", err)
	}

	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing settings: %w", err)
	}
	return s, nil
}

// SaveSettings writes the settings to disk.
func SaveSettings(s Settings) error {
	if err := os.MkdirAll(SettingsDir(), 0o755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	f, err := os.OpenFile(SettingsPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating settings file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(s)
}

// set assigns a setting by its TOML key.
func (s *Settings) set(key, value string) error {
	switch key {
	case "email":
		s.Email = strings.TrimSpace(value)
	case "db_path":
		s.DBPath = strings.TrimSpace(value)
	default:
		return fmt.Errorf("unknown setting %q (use email or db_path)", key)
	}
	return nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change saved defaults",
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := LoadSettings()
		if err != nil {
			return err
		}
		fmt.Println(RenderTable(Table{
			Title: SettingsPath(),
			Rows: [][]string{
				{"email", s.Email},
				{"db_path", s.DBPath},
			},
		}))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Save a default (email, db_path)",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := LoadSettings()
		if err != nil {
			return err
		}
		if err := s.set(args[0], args[1]); err != nil {
			return err
		}
		if err := SaveSettings(s); err != nil {
			return err
		}
		fmt.Println(renderSuccess(fmt.Sprintf("Saved %s", args[0])))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
