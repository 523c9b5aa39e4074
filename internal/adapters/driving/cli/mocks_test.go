package cli

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/s-nishad/DueDiligence/internal/adapters/driven/storage/memory"
	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
)

// fakeProjects is a driving.ProjectService over fixed data.
type fakeProjects struct {
	info    domain.ProjectInfo
	created domain.CreateProjectInput
	renamed domain.UpdateProjectInput
	err     error
}

func (f *fakeProjects) Create(_ context.Context, in domain.CreateProjectInput) (domain.ProjectStatusInfo, error) {
	if f.err != nil {
		return domain.ProjectStatusInfo{}, f.err
	}
	if err := in.Validate(); err != nil {
		return domain.ProjectStatusInfo{}, err
	}
	f.created = in
	return domain.ProjectStatusInfo{ProjectID: "p-new", Status: domain.ProjectStatusCreated}, nil
}

func (f *fakeProjects) Get(_ context.Context, projectID string) (*domain.ProjectInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	if projectID != f.info.ID {
		return nil, domain.NewError(domain.ErrorKindNotFound, "Project not found", nil)
	}
	out := f.info.Clone()
	return &out, nil
}

func (f *fakeProjects) Status(ctx context.Context, projectID string) (domain.ProjectStatusInfo, error) {
	info, err := f.Get(ctx, projectID)
	if err != nil {
		return domain.ProjectStatusInfo{}, err
	}
	return domain.ProjectStatusInfo{ProjectID: info.ID, Status: info.Status}, nil
}

func (f *fakeProjects) List(_ context.Context) ([]domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.Project{f.info.Project}, nil
}

func (f *fakeProjects) Update(_ context.Context, projectID string, in domain.UpdateProjectInput) (domain.ProjectStatusInfo, error) {
	if err := in.Validate(); err != nil {
		return domain.ProjectStatusInfo{}, err
	}
	f.renamed = in
	return domain.ProjectStatusInfo{ProjectID: projectID, Status: domain.ProjectStatusOutdated}, nil
}

func (f *fakeProjects) Refresh(_ context.Context, _ string) error { return f.err }

func (f *fakeProjects) Cached(_ string) (domain.ProjectInfo, bool) { return f.info, true }

// fakeDocuments records uploads.
type fakeDocuments struct {
	mu      sync.Mutex
	uploads []string
	docs    []domain.Document
}

func (f *fakeDocuments) Index(_ context.Context, projectID string, upload domain.Upload) (domain.RequestHandle, error) {
	if _, err := io.ReadAll(upload.Content); err != nil {
		return domain.RequestHandle{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, upload.Filename)
	return domain.RequestHandle{
		ID: "r-" + upload.Filename, Status: domain.RequestStatusQueued,
		Kind: domain.RequestKindIndexDocument, ProjectID: projectID,
	}, nil
}

func (f *fakeDocuments) List(_ context.Context, _ string) ([]domain.Document, error) {
	return f.docs, nil
}

// fakeAnswers answers every question with its own text reversed in status.
type fakeAnswers struct {
	questions []string
}

func (f *fakeAnswers) Generate(_ context.Context, projectID, question string) (*domain.Answer, error) {
	f.questions = append(f.questions, question)
	a := answerFor(projectID, question, len(f.questions))
	return &a, nil
}

func (f *fakeAnswers) GenerateAll(_ context.Context, projectID string, questions []string) ([]domain.Answer, error) {
	f.questions = append(f.questions, questions...)
	out := make([]domain.Answer, len(questions))
	for i, q := range questions {
		out[i] = answerFor(projectID, q, i+1)
	}
	return out, nil
}

func answerFor(projectID, question string, n int) domain.Answer {
	if question == "Moon?" {
		a := domain.UnanswerablePlaceholder(projectID, question)
		a.ID = "a-missing"
		return a
	}
	page := n
	return domain.Answer{
		ID: "a-" + question, ProjectID: projectID, Question: question,
		AnswerText: "Answer to " + question, Answerable: true, Confidence: 0.9,
		Status: domain.AnswerStatusPending,
		Citations: []domain.Citation{{
			DocumentID: "d-1", DocumentName: "report.pdf", ChunkText: "supporting text", PageNumber: &page,
		}},
	}
}

// fakeReview applies decisions without a backend.
type fakeReview struct {
	current map[string]domain.Answer
}

func (f *fakeReview) Review(_ context.Context, in driving.ReviewInput) (*domain.Answer, error) {
	if err := domain.ValidateTransition(nil, in.Status, in.ManualText); err != nil {
		return nil, err
	}
	a := domain.Answer{ID: in.AnswerID, Status: in.Status, ManualAnswer: in.ManualText, AnswerText: "generated"}
	return &a, nil
}

func (f *fakeReview) Register(_ ...domain.Answer) {}

func (f *fakeReview) Current(projectID, questionID string) (domain.Answer, bool) {
	a, ok := f.current[projectID+"/"+questionID]
	return a, ok
}

func (f *fakeReview) Authoritative(projectID, questionID string) (domain.Answer, bool) {
	a, ok := f.Current(projectID, questionID)
	return a, ok && a.Status.IsAuthoritative()
}

// fakeJob finishes as soon as it is created.
type fakeJob struct {
	final domain.Request
	err   error
	done  chan struct{}
}

func (j *fakeJob) ID() string               { return j.final.ID }
func (j *fakeJob) Snapshot() domain.Request { return j.final }
func (j *fakeJob) Cancel()                  {}
func (j *fakeJob) Done() <-chan struct{}    { return j.done }

func (j *fakeJob) Subscribe(fn func(domain.JobEvent)) func() {
	typ := domain.JobEventCompleted
	if j.err != nil {
		typ = domain.JobEventFailed
	}
	fn(domain.JobEvent{Type: typ, Request: j.final, Err: j.err, At: time.Now()})
	return func() {}
}

func (j *fakeJob) Wait(_ context.Context) (domain.Request, error) {
	return j.final, j.err
}

// fakeTracker completes every job, failing the ones named in fail.
type fakeTracker struct {
	fail map[string]string
}

func (f *fakeTracker) Track(_ context.Context, handle domain.RequestHandle) driving.JobHandle {
	progress := 1.0
	req := domain.Request{
		ID: handle.ID, Kind: handle.Kind, ProjectID: handle.ProjectID,
		Status: domain.RequestStatusCompleted, Progress: &progress,
	}
	job := &fakeJob{final: req, done: make(chan struct{})}
	if msg, ok := f.fail[handle.ID]; ok {
		job.final.Status = domain.RequestStatusFailed
		job.final.Error = msg
		job.err = job.final.FailureError()
	}
	close(job.done)
	return job
}

func (f *fakeTracker) Get(_ context.Context, requestID string) (*domain.Request, error) {
	if requestID != "r-1" {
		return nil, domain.NewError(domain.ErrorKindNotFound, "Request not found", nil)
	}
	progress := 0.1
	return &domain.Request{
		ID: "r-1", Kind: domain.RequestKindIndexDocument, ProjectID: "p-1",
		Status: domain.RequestStatusRunning, Progress: &progress,
	}, nil
}

// fakeEvaluation scores by exact match.
type fakeEvaluation struct {
	human map[string]string
}

func (f *fakeEvaluation) Compare(_ context.Context, answerID, humanAnswer string) (*domain.Comparison, error) {
	return &domain.Comparison{AnswerID: answerID, HumanAnswer: humanAnswer, SimilarityScore: 0.75, KeywordOverlap: 0.5, SemanticSimilarity: 0.9}, nil
}

func (f *fakeEvaluation) EvaluateProject(_ context.Context, projectID string, human map[string]string) (*domain.EvaluationReport, error) {
	f.human = human
	r := &domain.EvaluationReport{ProjectID: projectID}
	for qid := range human {
		r.Results = append(r.Results, domain.EvaluationResult{QuestionID: qid, QuestionText: "Question " + qid, SimilarityScore: 0.2})
	}
	r.Summarize()
	return r, nil
}

func (f *fakeEvaluation) GroundTruth(_ string, questionIDs []string) map[string]string {
	out := make(map[string]string)
	for _, id := range questionIDs {
		if id == "q-1" {
			out[id] = "Up 11%"
		}
	}
	return out
}

func (f *fakeEvaluation) Report(_ context.Context, projectID string) (*domain.EvaluationReport, error) {
	return &domain.EvaluationReport{
		ProjectID: projectID,
		Results: []domain.EvaluationResult{
			{QuestionID: "q-1", QuestionText: "Revenue?", SimilarityScore: 0.9},
			{QuestionID: "q-2", QuestionText: "Churn?", SimilarityScore: 0.3},
		},
		MeanSimilarity: 0.6,
	}, nil
}

// fakeQuestionnaires returns the project's sections.
type fakeQuestionnaires struct {
	sections []domain.Section
}

func (f *fakeQuestionnaires) Parse(_ context.Context, upload domain.Upload) (*domain.ParsedQuestionnaire, error) {
	if err := upload.Validate(); err != nil {
		return nil, err
	}
	return &domain.ParsedQuestionnaire{Filename: upload.Filename, Sections: f.sections}, nil
}

func (f *fakeQuestionnaires) Get(_ context.Context, _ string) ([]domain.Section, error) {
	return f.sections, nil
}

// fakeSettings keeps settings in memory.
type fakeSettings struct {
	current domain.Settings
	set     map[string]string
}

func (f *fakeSettings) Get() (*domain.Settings, error) {
	s := f.current
	return &s, nil
}

func (f *fakeSettings) Save(s *domain.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	f.current = *s
	return nil
}

func (f *fakeSettings) Set(key, value string) error {
	if key != "backend.base_url" {
		return domain.Invalid("unknown setting %q", key)
	}
	if f.set == nil {
		f.set = make(map[string]string)
	}
	f.set[key] = value
	f.current.Backend.BaseURL = value
	return nil
}

func (f *fakeSettings) Keys() []string {
	return []string{"backend.base_url", "tracker.poll_interval"}
}

func (f *fakeSettings) GetDefaults() domain.Settings { return domain.DefaultSettings() }

// testServices holds the fakes installed by setupTestServices.
type testServices struct {
	projects   *fakeProjects
	documents  *fakeDocuments
	answers    *fakeAnswers
	review     *fakeReview
	tracker    *fakeTracker
	evaluation *fakeEvaluation
	settings   *fakeSettings
	store      *memory.Store
}

func sampleSections() []domain.Section {
	return []domain.Section{{
		ID: "s-1", Title: "Finance", Order: 1,
		Questions: []domain.Question{
			{ID: "q-1", Text: "Revenue?", Order: 1},
			{ID: "q-2", Text: "Churn?", Order: 2},
		},
	}}
}

// setupTestServices installs fakes and selects project p-1. The returned
// function restores the previous services and flags.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		projects: &fakeProjects{info: domain.ProjectInfo{
			Project: domain.Project{
				ID: "p-1", Name: "Acme", Status: domain.ProjectStatusReady, Scope: domain.ScopeAllDocs,
				CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			},
			Sections: sampleSections(),
			Documents: []domain.Document{
				{ID: "d-1", Name: "report.pdf", Status: domain.DocumentStatusIndexed},
			},
		}},
		documents: &fakeDocuments{docs: []domain.Document{
			{ID: "d-1", Name: "report.pdf", Status: domain.DocumentStatusIndexed},
			{ID: "d-2", Name: "scan.pdf", Status: domain.DocumentStatusFailed, Error: "cannot extract text"},
		}},
		answers:    &fakeAnswers{},
		review:     &fakeReview{current: make(map[string]domain.Answer)},
		tracker:    &fakeTracker{fail: make(map[string]string)},
		evaluation: &fakeEvaluation{},
		settings:   &fakeSettings{current: domain.DefaultSettings()},
		store:      memory.NewStore(),
	}
	ts.store.SetCurrentProject("p-1")

	SetServices(Services{
		Projects:       ts.projects,
		Documents:      ts.documents,
		Answers:        ts.answers,
		Review:         ts.review,
		Tracker:        ts.tracker,
		Evaluation:     ts.evaluation,
		Questionnaires: &fakeQuestionnaires{sections: sampleSections()},
		Settings:       ts.settings,
		Store:          ts.store,
	})

	return ts, func() {
		SetServices(Services{})
		resetFlags()
	}
}

// resetFlags restores every flag of the command tree to its default so
// state does not leak between executions of the shared root command.
func resetFlags() {
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
