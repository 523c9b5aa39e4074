// Package cli implements the duediligence command line interface.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
	"github.com/s-nishad/DueDiligence/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Services holds the driving ports the commands use.
type Services struct {
	Projects       driving.ProjectService
	Documents      driving.DocumentService
	Answers        driving.AnswerService
	Review         driving.ReviewController
	Tracker        driving.JobTracker
	Evaluation     driving.EvaluationService
	Questionnaires driving.QuestionnaireService
	Settings       driving.SettingsService
	Store          driven.SnapshotStore

	// Health checks the backend is reachable.
	Health func(ctx context.Context) error
}

var (
	projectService       driving.ProjectService
	documentService      driving.DocumentService
	answerService        driving.AnswerService
	reviewController     driving.ReviewController
	jobTracker           driving.JobTracker
	evaluationService    driving.EvaluationService
	questionnaireService driving.QuestionnaireService
	settingsService      driving.SettingsService
	snapshotStore        driven.SnapshotStore
	backendHealth        func(ctx context.Context) error
)

// errNoProject is returned when a command needs a project and none was
// given or selected.
var errNoProject = errors.New("no project selected: pass --project or set DD_PROJECT")

var verboseFlag bool

// projectFlag selects the project for project-scoped commands.
var projectFlag string

var rootCmd = &cobra.Command{
	Use:   "duediligence",
	Short: "Answer due diligence questionnaires from your documents",
	Long: `duediligence drives a questionnaire answering backend.

Create a project, index documents into it, generate answers with citations,
review them, and evaluate the answers against human ground truth.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "Project ID (defaults to the selected project)")
}

// SetServices injects the services used by all commands.
func SetServices(s Services) {
	projectService = s.Projects
	documentService = s.Documents
	answerService = s.Answers
	reviewController = s.Review
	jobTracker = s.Tracker
	evaluationService = s.Evaluation
	questionnaireService = s.Questionnaires
	settingsService = s.Settings
	backendHealth = s.Health
	snapshotStore = s.Store
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command context, falling back to Background
// when the command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// projectEnv names the environment variable that selects a project
// across invocations.
const projectEnv = "DD_PROJECT"

// resolveProject returns the project from args, --project, DD_PROJECT or
// the selected project, in that order.
func resolveProject(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if projectFlag != "" {
		return projectFlag, nil
	}
	if id := os.Getenv(projectEnv); id != "" {
		return id, nil
	}
	if snapshotStore != nil {
		if id, ok := snapshotStore.CurrentProject(); ok {
			return id, nil
		}
	}
	return "", errNoProject
}
