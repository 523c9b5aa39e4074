package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
)

// wireTime accepts RFC 3339 timestamps and the zone-less ISO 8601 form
// the backend emits, which it means as UTC.
type wireTime struct {
	time.Time
}

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *wireTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("timestamp %s: %w", data, err)
	}
	if s == "" {
		return nil
	}
	for _, layout := range wireTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("timestamp %q: unrecognised format", s)
}

func (t *wireTime) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

func (t *wireTime) value() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.Time
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type projectWire struct {
	ProjectID string               `json:"project_id"`
	LegacyID  string               `json:"id"`
	Name      string               `json:"name"`
	Status    domain.ProjectStatus `json:"status"`
	Scope     domain.DocumentScope `json:"scope"`
	CreatedAt *wireTime            `json:"created_at"`
	UpdatedAt *wireTime            `json:"updated_at"`
	ReadyAt   *wireTime            `json:"ready_at"`
	Sections  []sectionWire        `json:"sections"`
	Documents []documentWire       `json:"documents"`
}

func (w *projectWire) project() domain.Project {
	return domain.Project{
		ID:        firstNonEmpty(w.ProjectID, w.LegacyID),
		Name:      w.Name,
		Status:    w.Status,
		Scope:     w.Scope,
		CreatedAt: w.CreatedAt.value(),
		UpdatedAt: w.UpdatedAt.value(),
		ReadyAt:   w.ReadyAt.ptr(),
	}
}

func (w *projectWire) info() *domain.ProjectInfo {
	info := &domain.ProjectInfo{
		Project:   w.project(),
		Sections:  make([]domain.Section, 0, len(w.Sections)),
		Documents: make([]domain.Document, 0, len(w.Documents)),
	}
	for i := range w.Sections {
		info.Sections = append(info.Sections, w.Sections[i].section(i))
	}
	for i := range w.Documents {
		info.Documents = append(info.Documents, w.Documents[i].document())
	}
	return info
}

type documentWire struct {
	DocumentID string                `json:"document_id"`
	LegacyID   string                `json:"id"`
	Name       string                `json:"name"`
	Filename   string                `json:"filename"`
	Status     domain.DocumentStatus `json:"status"`
	Indexed    *bool                 `json:"indexed"`
	Scope      domain.DocumentScope  `json:"scope"`
	Error      string                `json:"error"`
	IndexedAt  *wireTime             `json:"indexed_at"`
	CreatedAt  *wireTime             `json:"created_at"`
	UpdatedAt  *wireTime             `json:"updated_at"`
}

func (w *documentWire) document() domain.Document {
	status := w.Status
	if status == "" {
		switch {
		case w.Error != "":
			status = domain.DocumentStatusFailed
		case w.Indexed != nil && *w.Indexed:
			status = domain.DocumentStatusIndexed
		default:
			status = domain.DocumentStatusPending
		}
	}
	return domain.Document{
		ID:        firstNonEmpty(w.DocumentID, w.LegacyID),
		Name:      firstNonEmpty(w.Name, w.Filename),
		Status:    status,
		Scope:     w.Scope,
		Error:     w.Error,
		IndexedAt: w.IndexedAt.ptr(),
		CreatedAt: w.CreatedAt.value(),
		UpdatedAt: w.UpdatedAt.value(),
	}
}

type sectionWire struct {
	SectionID string         `json:"section_id"`
	Title     string         `json:"title"`
	Section   string         `json:"section"`
	Order     *int           `json:"order"`
	Questions []questionWire `json:"questions"`
}

func (w *sectionWire) section(pos int) domain.Section {
	order := pos + 1
	if w.Order != nil {
		order = *w.Order
	}
	s := domain.Section{
		ID:        w.SectionID,
		Title:     firstNonEmpty(w.Title, w.Section),
		Order:     order,
		Questions: make([]domain.Question, 0, len(w.Questions)),
	}
	for i := range w.Questions {
		s.Questions = append(s.Questions, w.Questions[i].question(i))
	}
	return s
}

type questionWire struct {
	QuestionID string      `json:"question_id"`
	LegacyID   string      `json:"id"`
	Text       string      `json:"text"`
	Question   string      `json:"question"`
	Order      *int        `json:"order"`
	Answer     *answerWire `json:"answer"`
}

func (w *questionWire) question(pos int) domain.Question {
	order := pos + 1
	if w.Order != nil {
		order = *w.Order
	}
	q := domain.Question{
		ID:    firstNonEmpty(w.QuestionID, w.LegacyID),
		Text:  firstNonEmpty(w.Text, w.Question),
		Order: order,
	}
	if w.Answer != nil {
		a := w.Answer.answer()
		if a.QuestionID == "" {
			a.QuestionID = q.ID
		}
		q.Answer = &a
	}
	return q
}

type answerWire struct {
	AnswerID     string              `json:"answer_id"`
	LegacyID     string              `json:"id"`
	QuestionID   string              `json:"question_id"`
	ProjectID    string              `json:"project_id"`
	Question     string              `json:"question"`
	AnswerText   string              `json:"answer_text"`
	LegacyText   string              `json:"text"`
	Answerable   *bool               `json:"answerable"`
	Confidence   float64             `json:"confidence"`
	Citations    []domain.Citation   `json:"citations"`
	Status       domain.AnswerStatus `json:"status"`
	ManualAnswer *string             `json:"manual_answer"`
	LegacyManual *string             `json:"manual_text"`
	Error        string              `json:"error"`
	CreatedAt    *wireTime           `json:"created_at"`
	UpdatedAt    *wireTime           `json:"updated_at"`
}

// failed reports a batch entry the generator could not produce.
func (w *answerWire) failed() bool {
	return w.Error != "" && w.AnswerID == "" && w.LegacyID == ""
}

func (w *answerWire) answer() domain.Answer {
	answerable := w.Status != domain.AnswerStatusMissingData
	if w.Answerable != nil {
		answerable = *w.Answerable
	}
	manual := ""
	switch {
	case w.ManualAnswer != nil:
		manual = *w.ManualAnswer
	case w.LegacyManual != nil:
		manual = *w.LegacyManual
	}
	citations := w.Citations
	if citations == nil {
		citations = []domain.Citation{}
	}
	a := domain.Answer{
		ID:           firstNonEmpty(w.AnswerID, w.LegacyID),
		QuestionID:   w.QuestionID,
		ProjectID:    w.ProjectID,
		Question:     w.Question,
		AnswerText:   firstNonEmpty(w.AnswerText, w.LegacyText),
		Answerable:   answerable,
		Confidence:   w.Confidence,
		Citations:    citations,
		Status:       w.Status,
		ManualAnswer: manual,
		CreatedAt:    w.CreatedAt.value(),
		UpdatedAt:    w.UpdatedAt.value(),
	}
	a.Normalize()
	return a
}

type requestWire struct {
	RequestID   string               `json:"request_id"`
	Status      domain.RequestStatus `json:"status"`
	Progress    *float64             `json:"progress"`
	Error       *string              `json:"error"`
	Result      json.RawMessage      `json:"result"`
	Kind        domain.RequestKind   `json:"kind"`
	ProjectID   string               `json:"project_id"`
	CreatedAt   *wireTime            `json:"created_at"`
	CompletedAt *wireTime            `json:"completed_at"`
}

func (w *requestWire) request() (*domain.Request, error) {
	req := &domain.Request{
		ID:          w.RequestID,
		Kind:        w.Kind,
		ProjectID:   w.ProjectID,
		Status:      w.Status,
		Progress:    w.Progress,
		CreatedAt:   w.CreatedAt.value(),
		CompletedAt: w.CompletedAt.ptr(),
	}
	if w.Error != nil {
		req.Error = *w.Error
	}
	if !req.Status.IsValid() {
		return nil, &domain.Error{
			Kind:    domain.ErrorKindServer,
			Message: fmt.Sprintf("request %s: unknown status %q", w.RequestID, w.Status),
		}
	}
	if req.Kind != "" {
		result, err := domain.DecodeResult(req.Kind, w.Result)
		if err != nil {
			return nil, &domain.Error{Kind: domain.ErrorKindServer, Message: "cannot decode job result", Cause: err}
		}
		req.Result = result
		if req.ProjectID == "" && result != nil {
			req.ProjectID = resultProjectID(result)
		}
	} else if len(w.Result) > 0 {
		req.Result, req.Kind = inferResult(w.Result)
		if req.ProjectID == "" && req.Result != nil {
			req.ProjectID = resultProjectID(req.Result)
		}
	}
	return req, nil
}

// inferResult guesses the result variant when the backend does not name
// the job kind. The tracker overrides the kind with the one it started.
func inferResult(raw json.RawMessage) (domain.RequestResult, domain.RequestKind) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, ""
	}
	var kind domain.RequestKind
	switch {
	case probe["answers"] != nil:
		kind = domain.RequestKindGenerateAnswers
	case probe["filename"] != nil:
		kind = domain.RequestKindIndexDocument
	case probe["status"] != nil:
		kind = domain.RequestKindUpdateProject
	default:
		return nil, ""
	}
	result, err := domain.DecodeResult(kind, raw)
	if err != nil {
		return nil, ""
	}
	return result, kind
}

func resultProjectID(r domain.RequestResult) string {
	switch v := r.(type) {
	case domain.IndexDocumentResult:
		return v.ProjectID
	case domain.GenerateAnswersResult:
		return v.ProjectID
	case domain.UpdateProjectResult:
		return v.ProjectID
	}
	return ""
}

type evaluationWire struct {
	QuestionID         string  `json:"question_id"`
	QuestionText       string  `json:"question_text"`
	AnswerID           string  `json:"answer_id"`
	AIAnswer           string  `json:"ai_answer"`
	HumanAnswer        string  `json:"human_answer"`
	SimilarityScore    float64 `json:"similarity_score"`
	KeywordOverlap     float64 `json:"keyword_overlap"`
	SemanticSimilarity float64 `json:"semantic_similarity"`
	Explanation        string  `json:"explanation"`
}

func (w *evaluationWire) result() domain.EvaluationResult {
	return domain.EvaluationResult{
		QuestionID:         w.QuestionID,
		QuestionText:       w.QuestionText,
		AIAnswer:           w.AIAnswer,
		HumanAnswer:        w.HumanAnswer,
		SimilarityScore:    w.SimilarityScore,
		KeywordOverlap:     w.KeywordOverlap,
		SemanticSimilarity: w.SemanticSimilarity,
		Explanation:        w.Explanation,
	}
}

type reportWire struct {
	ProjectID      string           `json:"project_id"`
	Results        []evaluationWire `json:"results"`
	MeanSimilarity float64          `json:"mean_similarity"`
	EvaluatedAt    *wireTime        `json:"evaluated_at"`
}

func (w *reportWire) report() *domain.EvaluationReport {
	r := &domain.EvaluationReport{
		ProjectID:      w.ProjectID,
		Results:        make([]domain.EvaluationResult, 0, len(w.Results)),
		MeanSimilarity: w.MeanSimilarity,
		EvaluatedAt:    w.EvaluatedAt.ptr(),
	}
	for i := range w.Results {
		r.Results = append(r.Results, w.Results[i].result())
	}
	r.Summarize()
	return r
}
