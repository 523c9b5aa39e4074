package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
)

// healthTimeout bounds the backend check of `version --check`.
const healthTimeout = 5 * time.Second

var (
	versionShort bool
	versionCheck bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if versionShort {
			cmd.Println(version)
			return nil
		}
		cmd.Printf("duediligence version %s\n", version)
		cmd.Printf("  %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		if !versionCheck {
			return nil
		}
		if backendHealth == nil {
			return errors.New("backend not configured")
		}
		ctx, cancel := context.WithTimeout(commandContext(cmd), healthTimeout)
		defer cancel()
		if err := backendHealth(ctx); err != nil {
			return fmt.Errorf("backend unreachable: %w", err)
		}
		cmd.Println("  backend: ok")
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version")
	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Also check the backend is reachable")
	rootCmd.AddCommand(versionCmd)
}
