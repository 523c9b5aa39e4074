package domain

import "time"

// Comparison scores one AI answer against a human ground-truth answer.
type Comparison struct {
	AnswerID           string  `json:"answer_id"`
	QuestionID         string  `json:"question_id"`
	AIAnswer           string  `json:"ai_answer"`
	HumanAnswer        string  `json:"human_answer"`
	SimilarityScore    float64 `json:"similarity_score" validate:"gte=0,lte=1"`
	KeywordOverlap     float64 `json:"keyword_overlap" validate:"gte=0,lte=1"`
	SemanticSimilarity float64 `json:"semantic_similarity" validate:"gte=0,lte=1"`
	Explanation        string  `json:"explanation,omitempty"`
}

// Validate checks every score lies in [0,1].
func (c *Comparison) Validate() error {
	return validateStruct("comparison", c)
}

// EvaluationResult is the per-question outcome of a project evaluation.
type EvaluationResult struct {
	QuestionID         string  `json:"question_id"`
	QuestionText       string  `json:"question_text"`
	AIAnswer           string  `json:"ai_answer"`
	HumanAnswer        string  `json:"human_answer"`
	SimilarityScore    float64 `json:"similarity_score" validate:"gte=0,lte=1"`
	KeywordOverlap     float64 `json:"keyword_overlap" validate:"gte=0,lte=1"`
	SemanticSimilarity float64 `json:"semantic_similarity" validate:"gte=0,lte=1"`
	Explanation        string  `json:"explanation,omitempty"`
}

// EvaluationReport aggregates the evaluation of a whole project.
type EvaluationReport struct {
	ProjectID      string             `json:"project_id"`
	Results        []EvaluationResult `json:"results" validate:"dive"`
	MeanSimilarity float64            `json:"mean_similarity" validate:"gte=0,lte=1"`
	EvaluatedAt    *time.Time         `json:"evaluated_at,omitempty"`
}

// Validate checks every score in the report lies in [0,1].
func (r *EvaluationReport) Validate() error {
	return validateStruct("evaluation report", r)
}

// Summarize fills MeanSimilarity from the results when the backend left
// it out.
func (r *EvaluationReport) Summarize() {
	if r.MeanSimilarity != 0 || len(r.Results) == 0 {
		return
	}
	var sum float64
	for _, res := range r.Results {
		sum += res.SimilarityScore
	}
	r.MeanSimilarity = sum / float64(len(r.Results))
}

// Mismatches returns results scoring below threshold, in report order.
func (r *EvaluationReport) Mismatches(threshold float64) []EvaluationResult {
	var out []EvaluationResult
	for _, res := range r.Results {
		if res.SimilarityScore < threshold {
			out = append(out, res)
		}
	}
	return out
}
