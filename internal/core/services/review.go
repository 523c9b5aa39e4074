package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/s-nishad/DueDiligence/internal/core/domain"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driven"
	"github.com/s-nishad/DueDiligence/internal/core/ports/driving"
	"github.com/s-nishad/DueDiligence/internal/logger"
)

// Ensure ReviewController implements the interface.
var _ driving.ReviewController = (*ReviewController)(nil)

// questionKey identifies a question within a project. Answers that carry
// no question ID are keyed by their question text.
type questionKey struct {
	projectID string
	question  string
}

func keyOf(a *domain.Answer) questionKey {
	q := a.QuestionID
	if q == "" {
		q = a.Question
	}
	return questionKey{projectID: a.ProjectID, question: q}
}

// ReviewController applies reviewer decisions and tracks the answer of
// record for each question.
//
// Reviews of the same answer are serialized; the last successful review
// wins. Reviews of different answers run concurrently.
type ReviewController struct {
	backend driven.Backend
	store   driven.SnapshotStore
	log     *slog.Logger

	mu         sync.Mutex
	current    map[questionKey]string
	keys       map[string]questionKey
	superseded map[string]string
	locks      map[string]*sync.Mutex
}

// NewReviewController creates a new review controller.
func NewReviewController(backend driven.Backend, store driven.SnapshotStore) *ReviewController {
	return &ReviewController{
		backend:    backend,
		store:      store,
		log:        logger.For("review"),
		current:    make(map[questionKey]string),
		keys:       make(map[string]questionKey),
		superseded: make(map[string]string),
		locks:      make(map[string]*sync.Mutex),
	}
}

// Register records answers as the current answers of their questions and
// caches them. An answer without an ID cannot be reviewed and never
// supersedes anything.
func (c *ReviewController) Register(answers ...domain.Answer) {
	for i := range answers {
		a := &answers[i]
		if a.ID == "" {
			continue
		}
		c.register(a)
		c.store.PutAnswer(*a)
	}
}

func (c *ReviewController) register(a *domain.Answer) {
	key := keyOf(a)
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.current[key]; ok && prev != a.ID {
		c.superseded[prev] = a.ID
		c.log.Debug("answer superseded", "answer_id", prev, "by", a.ID)
	}
	delete(c.superseded, a.ID)
	c.current[key] = a.ID
	c.keys[a.ID] = key
}

// Review validates a decision locally, applies it on the backend and
// caches the stored answer. A rejected decision leaves the cache as it
// was.
func (c *ReviewController) Review(ctx context.Context, in driving.ReviewInput) (*domain.Answer, error) {
	if in.AnswerID == "" {
		return nil, domain.Invalid("answer id is required")
	}

	lock := c.lockFor(in.AnswerID)
	lock.Lock()
	defer lock.Unlock()

	if err := c.checkCurrent(in.AnswerID); err != nil {
		return nil, err
	}

	var known *domain.Answer
	if cached, ok := c.lookup(in.AnswerID); ok {
		known = &cached
	}
	if err := domain.ValidateTransition(known, in.Status, in.ManualText); err != nil {
		return nil, fmt.Errorf("review answer %s: %w", in.AnswerID, err)
	}

	updated, err := c.backend.UpdateAnswer(ctx, domain.UpdateAnswerInput{
		AnswerID:   in.AnswerID,
		Status:     in.Status,
		ManualText: in.ManualText,
	})
	if err != nil {
		return nil, fmt.Errorf("review answer %s: %w", in.AnswerID, err)
	}

	if known != nil {
		if updated.ProjectID == "" {
			updated.ProjectID = known.ProjectID
		}
		if updated.QuestionID == "" {
			updated.QuestionID = known.QuestionID
		}
		if updated.Question == "" {
			updated.Question = known.Question
		}
		if len(updated.Citations) == 0 {
			updated.Citations = known.Citations
		}
	}

	c.mu.Lock()
	if _, tracked := c.keys[updated.ID]; !tracked && (updated.ProjectID != "" || updated.QuestionID != "") {
		key := keyOf(updated)
		if _, taken := c.current[key]; !taken {
			c.current[key] = updated.ID
			c.keys[updated.ID] = key
		}
	}
	c.mu.Unlock()

	c.store.PutAnswer(*updated)
	c.attach(updated)
	c.log.Debug("answer reviewed", "answer_id", updated.ID, "status", updated.Status)

	out := updated.Clone()
	return &out, nil
}

// Current returns the answer of record for a question. When no answer was
// registered in this process, the answer attached to the question in the
// cached project snapshot is adopted.
func (c *ReviewController) Current(projectID, questionID string) (domain.Answer, bool) {
	key := questionKey{projectID: projectID, question: questionID}
	c.mu.Lock()
	id, ok := c.current[key]
	c.mu.Unlock()
	if ok {
		if a, found := c.store.Answer(id); found {
			return a, true
		}
	}

	info, found := c.store.Project(projectID)
	if !found {
		return domain.Answer{}, false
	}
	q, found := info.Question(questionID)
	if !found || q.Answer == nil || q.Answer.ID == "" {
		return domain.Answer{}, false
	}
	a := q.Answer.Clone()
	if a.ProjectID == "" {
		a.ProjectID = projectID
	}
	if a.QuestionID == "" {
		a.QuestionID = q.ID
	}

	c.mu.Lock()
	if _, taken := c.current[key]; !taken {
		c.current[key] = a.ID
		c.keys[a.ID] = key
	}
	c.mu.Unlock()
	c.store.PutAnswer(a)
	return a, true
}

// Authoritative returns the answer of record when a reviewer confirmed
// or overrode it.
func (c *ReviewController) Authoritative(projectID, questionID string) (domain.Answer, bool) {
	a, ok := c.Current(projectID, questionID)
	if !ok || !a.Status.IsAuthoritative() {
		return domain.Answer{}, false
	}
	return a, true
}

// lookup finds an answer in the answer cache, then among the answers
// attached to cached project snapshots.
func (c *ReviewController) lookup(answerID string) (domain.Answer, bool) {
	if a, ok := c.store.Answer(answerID); ok {
		return a, true
	}
	for _, info := range c.store.Projects() {
		for _, q := range info.Questions() {
			if q.Answer == nil || q.Answer.ID != answerID {
				continue
			}
			a := q.Answer.Clone()
			if a.ProjectID == "" {
				a.ProjectID = info.ID
			}
			if a.QuestionID == "" {
				a.QuestionID = q.ID
			}
			return a, true
		}
	}
	return domain.Answer{}, false
}

// attach writes a reviewed answer of record into its question in the
// cached project snapshot, so the decision is archived with the project.
func (c *ReviewController) attach(a *domain.Answer) {
	if a.ProjectID == "" || a.QuestionID == "" {
		return
	}
	c.mu.Lock()
	id, tracked := c.current[keyOf(a)]
	c.mu.Unlock()
	if tracked && id != a.ID {
		return
	}
	info, ok := c.store.Project(a.ProjectID)
	if !ok {
		return
	}
	for si := range info.Sections {
		for qi := range info.Sections[si].Questions {
			q := &info.Sections[si].Questions[qi]
			if q.ID != a.QuestionID {
				continue
			}
			answer := a.Clone()
			q.Answer = &answer
			c.store.PutProject(info)
			return
		}
	}
}

func (c *ReviewController) checkCurrent(answerID string) error {
	c.mu.Lock()
	by, superseded := c.superseded[answerID]
	c.mu.Unlock()
	if !superseded {
		return nil
	}
	return &domain.Error{
		Kind:    domain.ErrorKindValidation,
		Message: fmt.Sprintf("answer %s was superseded by %s", answerID, by),
		Cause:   domain.ErrSupersededAnswer,
	}
}

func (c *ReviewController) lockFor(answerID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[answerID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[answerID] = l
	}
	return l
}
