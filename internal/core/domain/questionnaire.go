package domain

// Question is one questionnaire entry. It carries at most one current
// answer.
type Question struct {
	ID     string  `json:"question_id"`
	Text   string  `json:"text"`
	Order  int     `json:"order,omitempty"`
	Answer *Answer `json:"answer,omitempty"`
}

// Section groups questions under a heading.
type Section struct {
	ID        string     `json:"section_id"`
	Title     string     `json:"title"`
	Order     int        `json:"order"`
	Questions []Question `json:"questions"`
}

// Clone returns a deep copy.
func (s *Section) Clone() Section {
	out := *s
	if s.Questions != nil {
		out.Questions = make([]Question, len(s.Questions))
		for i, q := range s.Questions {
			out.Questions[i] = q
			if q.Answer != nil {
				a := q.Answer.Clone()
				out.Questions[i].Answer = &a
			}
		}
	}
	return out
}

// ParsedQuestionnaire is the structure extracted from an uploaded
// questionnaire file.
type ParsedQuestionnaire struct {
	Filename string    `json:"filename"`
	Sections []Section `json:"sections"`
}

// QuestionCount returns the number of questions across all sections.
func (p *ParsedQuestionnaire) QuestionCount() int {
	n := 0
	for _, s := range p.Sections {
		n += len(s.Questions)
	}
	return n
}

// QuestionTexts flattens the questionnaire into generation input.
func (p *ParsedQuestionnaire) QuestionTexts() []string {
	out := make([]string, 0, p.QuestionCount())
	for _, s := range p.Sections {
		for _, q := range s.Questions {
			out = append(out, q.Text)
		}
	}
	return out
}
