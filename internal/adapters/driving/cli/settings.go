package cli

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in ~/.duediligence/config.toml.

Any setting can be overridden for one run with an environment variable:
backend.base_url is read from DD_BACKEND_BASE_URL, and so on.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Change one setting, e.g.

  duediligence settings set backend.base_url http://localhost:8000/api
  duediligence settings set tracker.poll_interval 5s
  duediligence settings set archive.kind redis`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Backend]")
	cmd.Printf("  Base URL: %s\n", settings.Backend.BaseURL)
	cmd.Printf("  Timeout: %s\n", settings.Backend.Timeout)
	cmd.Printf("  Read attempts: %d\n", settings.Backend.ReadAttempts)
	if settings.Backend.RequestsPerSecond > 0 {
		cmd.Printf("  Requests per second: %g\n", settings.Backend.RequestsPerSecond)
	} else {
		cmd.Printf("  Requests per second: unlimited\n")
	}
	cmd.Println()

	cmd.Println("[Tracker]")
	cmd.Printf("  Poll interval: %s\n", settings.Tracker.PollInterval)
	cmd.Printf("  Max interval: %s\n", settings.Tracker.MaxInterval)
	cmd.Printf("  Backoff multiplier: %g\n", settings.Tracker.BackoffMultiplier)
	cmd.Printf("  Max consecutive failures: %d\n", settings.Tracker.MaxConsecutiveFailures)
	cmd.Println()

	cmd.Println("[Archive]")
	cmd.Printf("  Kind: %s\n", settings.Archive.Kind.Description())
	switch settings.Archive.Kind {
	case domain.ArchiveSQLite:
		path := settings.Archive.Path
		if path == "" {
			path = "(default)"
		}
		cmd.Printf("  Path: %s\n", path)
	case domain.ArchiveRedis:
		cmd.Printf("  Address: %s\n", settings.Archive.RedisAddr)
		cmd.Printf("  DB: %d\n", settings.Archive.RedisDB)
		if settings.Archive.RedisPassword != "" {
			cmd.Printf("  Password: %s\n", maskSecret(settings.Archive.RedisPassword))
		}
		cmd.Printf("  TTL: %s\n", settings.Archive.TTL)
	}
	cmd.Println()

	cmd.Println("[Events]")
	if settings.Events.Enabled() {
		cmd.Printf("  AMQP URL: %s\n", redactURL(settings.Events.AMQPURL))
		cmd.Printf("  Queue: %s\n", settings.Events.Queue)
	} else {
		cmd.Printf("  Disabled\n")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	cmd.Printf("%s updated.\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

// maskSecret masks a secret for display, showing first 4 and last 4 chars.
func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// redactURL hides the password of a URL with credentials.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	return strings.Replace(u.Redacted(), "xxxxx", "****", 1)
}
