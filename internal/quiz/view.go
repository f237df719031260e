package quiz

import "medmcq/internal/domain"

// OptionView is one answer option with its evaluation.
type OptionView struct {
	Option     int               `json:"option"`
	Text       string            `json:"text"`
	Evaluation domain.Evaluation `json:"evaluation"`
}

// QuestionView is the question at the cursor as rendered to the player.
// Correct answers are only revealed through the evaluations once answered.
type QuestionView struct {
	ID       int64         `json:"id"`
	Text     string        `json:"text"`
	Image    string        `json:"image,omitempty"`
	Options  [3]OptionView `json:"options"`
	Answer   int           `json:"answer,omitempty"`
	Answered bool          `json:"answered"`
}

// Snapshot is what a client needs to draw the run.
type Snapshot struct {
	Status   Status         `json:"status"`
	Index    int            `json:"index"`
	Total    int            `json:"total"`
	Answered int            `json:"answered"`
	Current  *QuestionView  `json:"current,omitempty"`
	Results  domain.Results `json:"results"`
	Failure  *Failure       `json:"failure,omitempty"`
}

// View renders the question at the cursor.
func (s State) View() (QuestionView, bool) {
	q, ok := s.Current()
	if !ok {
		return QuestionView{}, false
	}
	chosen := s.Answered(q.ID)
	v := QuestionView{
		ID:       q.ID,
		Text:     q.Text,
		Image:    q.Image,
		Answer:   chosen,
		Answered: chosen != 0,
	}
	for i, text := range [3]string{q.Answer1, q.Answer2, q.Answer3} {
		option := i + 1
		v.Options[i] = OptionView{
			Option:     option,
			Text:       text,
			Evaluation: domain.Evaluate(q.CorrectAnswers, chosen, option),
		}
	}
	return v, true
}

func (s State) Snapshot() Snapshot {
	snap := Snapshot{
		Status:   s.Status,
		Index:    s.Index,
		Total:    len(s.Questions),
		Answered: len(s.Answers),
		Results:  s.Results(),
		Failure:  s.Failure,
	}
	if v, ok := s.View(); ok {
		snap.Current = &v
	}
	return snap
}
