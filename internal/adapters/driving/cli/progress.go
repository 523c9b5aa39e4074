package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

const jobBar pb.ProgressBarTemplate = `{{with string . "prefix"}}{{.}} {{end}}{{bar . }} {{percent . }} {{with string . "suffix"}}{{.}}{{end}}`

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// progressPercent maps the backend progress value onto 0..100. Values
// above one are taken as percentages already.
func progressPercent(p *float64) int64 {
	if p == nil {
		return 0
	}
	v := *p
	if v <= 1 {
		v *= 100
	}
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int64(v)
	}
}

// waitForJob tracks a job until it finishes, rendering progress to the
// command output. The returned error is the job failure, if any.
func waitForJob(cmd *cobra.Command, handle domain.RequestHandle) (domain.Request, error) {
	if jobTracker == nil {
		return domain.Request{}, errors.New("job tracker not configured")
	}
	ctx := commandContext(cmd)
	job := jobTracker.Track(ctx, handle)
	out := cmd.OutOrStdout()

	var render func(domain.JobEvent)
	var finish func()
	if isTerminal(out) {
		bar := jobBar.New(100)
		bar.SetWriter(out)
		bar.Set("prefix", fmt.Sprintf("%s %s:", handle.Kind, handle.ID))
		bar.Start()
		render = func(ev domain.JobEvent) {
			bar.SetCurrent(progressPercent(ev.Request.Progress))
			bar.Set("suffix", string(ev.Request.Status))
			if ev.Type == domain.JobEventCompleted {
				bar.SetCurrent(100)
			}
		}
		finish = func() { bar.Finish() }
	} else {
		render = func(ev domain.JobEvent) {
			line := fmt.Sprintf("%s: %s", ev.Request.ID, ev.Request.Status)
			if ev.Request.Progress != nil {
				line += fmt.Sprintf(" (%d%%)", progressPercent(ev.Request.Progress))
			}
			fmt.Fprintln(out, line)
		}
		finish = func() {}
	}

	unsubscribe := job.Subscribe(render)
	final, err := job.Wait(ctx)
	unsubscribe()
	finish()

	return final, err
}

// printRequest writes a request snapshot.
func printRequest(cmd *cobra.Command, req domain.Request) {
	cmd.Printf("Request: %s\n", req.ID)
	if req.Kind != "" {
		cmd.Printf("  Kind:      %s\n", req.Kind)
	}
	if req.ProjectID != "" {
		cmd.Printf("  Project:   %s\n", req.ProjectID)
	}
	cmd.Printf("  Status:    %s\n", req.Status)
	if req.Progress != nil {
		cmd.Printf("  Progress:  %d%%\n", progressPercent(req.Progress))
	}
	if !req.CreatedAt.IsZero() {
		cmd.Printf("  Created:   %s\n", req.CreatedAt.Format(timeLayout))
	}
	if req.CompletedAt != nil {
		cmd.Printf("  Completed: %s\n", req.CompletedAt.Format(timeLayout))
	}
	if req.Error != "" {
		cmd.Printf("  Error:     %s\n", req.Error)
	}
	switch r := req.Result.(type) {
	case domain.IndexDocumentResult:
		cmd.Printf("  Document:  %s (%s)\n", r.Filename, r.DocumentID)
	case domain.GenerateAnswersResult:
		cmd.Printf("  Answers:   %d\n", len(r.Answers))
	case domain.UpdateProjectResult:
		cmd.Printf("  Project status: %s\n", r.Status)
	}
}

const timeLayout = "2006-01-02 15:04:05"
