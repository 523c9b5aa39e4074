package domain

import (
	"strings"
	"time"
)

// AnswerStatus is the review state of an answer.
type AnswerStatus string

// Answer statuses.
const (
	// AnswerStatusPending is a generated answer awaiting review.
	AnswerStatusPending AnswerStatus = "PENDING"

	// AnswerStatusConfirmed is an AI answer accepted by a reviewer.
	AnswerStatusConfirmed AnswerStatus = "CONFIRMED"

	// AnswerStatusRejected is an AI answer declined by a reviewer.
	AnswerStatusRejected AnswerStatus = "REJECTED"

	// AnswerStatusManualUpdated is an answer overridden with reviewer text.
	AnswerStatusManualUpdated AnswerStatus = "MANUAL_UPDATED"

	// AnswerStatusMissingData is an answer the generator could not support
	// with evidence. Only the generator sets it.
	AnswerStatusMissingData AnswerStatus = "MISSING_DATA"
)

// IsValid returns true if the answer status is recognised.
func (s AnswerStatus) IsValid() bool {
	switch s {
	case AnswerStatusPending, AnswerStatusConfirmed, AnswerStatusRejected,
		AnswerStatusManualUpdated, AnswerStatusMissingData:
		return true
	default:
		return false
	}
}

// IsAuthoritative returns true for statuses a reviewer has signed off.
func (s AnswerStatus) IsAuthoritative() bool {
	return s == AnswerStatusConfirmed || s == AnswerStatusManualUpdated
}

// String returns the string representation.
func (s AnswerStatus) String() string {
	return string(s)
}

// Description returns a human-readable description of the status.
func (s AnswerStatus) Description() string {
	switch s {
	case AnswerStatusPending:
		return "Awaiting review"
	case AnswerStatusConfirmed:
		return "Confirmed"
	case AnswerStatusRejected:
		return "Rejected"
	case AnswerStatusManualUpdated:
		return "Manually updated"
	case AnswerStatusMissingData:
		return "Missing data"
	default:
		return "Unknown"
	}
}

// BoundingBox locates a citation on a page. All fields are optional.
type BoundingBox struct {
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  *float64 `json:"width,omitempty" validate:"omitempty,gte=0"`
	Height *float64 `json:"height,omitempty" validate:"omitempty,gte=0"`
}

// Citation is a pointer from an answer back into a source document.
// Citations are immutable once attached.
type Citation struct {
	DocumentID   string       `json:"document_id" validate:"required"`
	DocumentName string       `json:"document_name"`
	ChunkText    string       `json:"chunk_text"`
	PageNumber   *int         `json:"page_number,omitempty" validate:"omitempty,gte=1"`
	BoundingBox  *BoundingBox `json:"bounding_box,omitempty"`
}

// Answer is a generated response to one question.
type Answer struct {
	// ID uniquely identifies the answer.
	ID string `json:"answer_id" validate:"required"`

	// QuestionID is the question this answer belongs to.
	QuestionID string `json:"question_id"`

	// ProjectID is the owning project.
	ProjectID string `json:"project_id"`

	// Question is the question text the answer was generated for.
	Question string `json:"question,omitempty"`

	// AnswerText is the AI-generated text. Never overwritten by a review.
	AnswerText string `json:"answer_text"`

	// Answerable is false when the corpus held no supporting evidence.
	Answerable bool `json:"answerable"`

	// Confidence is the generator's confidence in [0,1].
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`

	// Citations are ordered references into the corpus.
	Citations []Citation `json:"citations" validate:"dive"`

	// Status is the review state.
	Status AnswerStatus `json:"status" validate:"required"`

	// ManualAnswer is the reviewer's override, present iff Status is
	// MANUAL_UPDATED.
	ManualAnswer string `json:"manual_answer,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks field ranges and the status invariants.
func (a *Answer) Validate() error {
	if err := validateStruct("answer", a); err != nil {
		return err
	}
	if !a.Status.IsValid() {
		return Invalid("answer %s: unknown status %q", a.ID, a.Status)
	}
	hasManual := strings.TrimSpace(a.ManualAnswer) != ""
	if a.Status == AnswerStatusManualUpdated && !hasManual {
		return Invalid("answer %s: MANUAL_UPDATED without manual text", a.ID)
	}
	if a.Status != AnswerStatusManualUpdated && hasManual {
		return Invalid("answer %s: manual text present with status %s", a.ID, a.Status)
	}
	if !a.Answerable && a.Status == AnswerStatusConfirmed {
		return Invalid("answer %s: unanswerable answer cannot be CONFIRMED", a.ID)
	}
	return nil
}

// Normalize applies the generator invariant that an unanswerable answer
// starts as MISSING_DATA, and fills an empty status with PENDING.
func (a *Answer) Normalize() {
	if !a.Answerable {
		if a.Status == "" || a.Status == AnswerStatusPending {
			a.Status = AnswerStatusMissingData
		}
		return
	}
	if a.Status == "" {
		a.Status = AnswerStatusPending
	}
}

// DisplayText is the text of record: the manual override when present,
// otherwise the generated text.
func (a *Answer) DisplayText() string {
	if a.Status == AnswerStatusManualUpdated {
		return a.ManualAnswer
	}
	return a.AnswerText
}

// Clone returns a deep copy.
func (a *Answer) Clone() Answer {
	out := *a
	if a.Citations != nil {
		out.Citations = make([]Citation, len(a.Citations))
		copy(out.Citations, a.Citations)
	}
	return out
}

// UnanswerablePlaceholder is the answer recorded for a question whose
// generation failed, so one failure never fails the rest of a batch.
func UnanswerablePlaceholder(projectID, question string) Answer {
	return Answer{
		ProjectID:  projectID,
		Question:   question,
		Answerable: false,
		Status:     AnswerStatusMissingData,
		Citations:  []Citation{},
	}
}

// ValidateTransition checks a human review against the answer state
// machine.
//
// Any state may move to any other except: MISSING_DATA is never a target,
// MANUAL_UPDATED needs manual text, manual text is only accepted with
// MANUAL_UPDATED, and an unanswerable answer cannot be CONFIRMED or put
// back to PENDING since there is no generated text to sign off.
func ValidateTransition(a *Answer, target AnswerStatus, manualText string) error {
	if !target.IsValid() {
		return Invalid("unknown answer status %q", target)
	}
	hasManual := strings.TrimSpace(manualText) != ""
	switch {
	case target == AnswerStatusMissingData:
		return &Error{
			Kind:    ErrorKindValidation,
			Message: "MISSING_DATA is set by the generator and cannot be chosen in review",
			Cause:   ErrIllegalTransition,
		}
	case target == AnswerStatusManualUpdated && !hasManual:
		return &Error{
			Kind:    ErrorKindValidation,
			Message: ErrManualTextRequired.Error(),
			Cause:   ErrManualTextRequired,
		}
	case target != AnswerStatusManualUpdated && hasManual:
		return Invalid("manual text is only accepted with %s", AnswerStatusManualUpdated)
	}
	if a != nil && !a.Answerable && (target == AnswerStatusConfirmed || target == AnswerStatusPending) {
		return &Error{
			Kind:    ErrorKindValidation,
			Message: "answer " + a.ID + " has no supporting evidence and cannot be " + string(target),
			Cause:   ErrIllegalTransition,
		}
	}
	return nil
}

// UpdateAnswerInput is a review decision sent to the backend.
type UpdateAnswerInput struct {
	AnswerID   string       `validate:"required"`
	Status     AnswerStatus `validate:"required"`
	ManualText string
}

// Validate checks the input shape. The state machine check needs the
// current answer and lives in ValidateTransition.
func (in UpdateAnswerInput) Validate() error {
	if err := validateStruct("update answer", in); err != nil {
		return err
	}
	return ValidateTransition(nil, in.Status, in.ManualText)
}

// GeneratedAnswers is the batch result of generating all answers.
type GeneratedAnswers struct {
	ProjectID string   `json:"project_id"`
	Answers   []Answer `json:"answers"`
}
