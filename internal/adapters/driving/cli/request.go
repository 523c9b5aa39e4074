package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "Inspect background jobs",
	Long:  `Show or follow backend jobs such as document indexing.`,
}

var requestStatusCmd = &cobra.Command{
	Use:   "status [request-id]",
	Short: "Show a job's current state",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRequestStatus,
}

var requestWaitCmd = &cobra.Command{
	Use:   "wait [request-id]",
	Short: "Follow a job until it finishes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRequestWait,
}

func init() {
	requestCmd.AddCommand(requestStatusCmd)
	requestCmd.AddCommand(requestWaitCmd)
	rootCmd.AddCommand(requestCmd)
}

// resolveRequest returns the request from args or the selected request.
func resolveRequest(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if snapshotStore != nil {
		if id, ok := snapshotStore.CurrentRequest(); ok {
			return id, nil
		}
	}
	return "", errors.New("no request selected: pass a request id")
}

func runRequestStatus(cmd *cobra.Command, args []string) error {
	if jobTracker == nil {
		return errors.New("job tracker not configured")
	}
	requestID, err := resolveRequest(args)
	if err != nil {
		return err
	}

	req, err := jobTracker.Get(commandContext(cmd), requestID)
	if err != nil {
		return fmt.Errorf("failed to get request: %w", err)
	}

	printRequest(cmd, *req)
	return nil
}

func runRequestWait(cmd *cobra.Command, args []string) error {
	if jobTracker == nil {
		return errors.New("job tracker not configured")
	}
	requestID, err := resolveRequest(args)
	if err != nil {
		return err
	}

	handle := domain.RequestHandle{ID: requestID, Status: domain.RequestStatusQueued}
	if snapshotStore != nil {
		if cached, ok := snapshotStore.Request(requestID); ok {
			handle = cached.Handle()
		}
	}

	final, err := waitForJob(cmd, handle)
	if err != nil {
		return fmt.Errorf("request %s: %w", requestID, err)
	}

	printRequest(cmd, final)
	return nil
}
