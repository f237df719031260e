package memory

import (
	"cmp"
	"context"
	"fmt"
	"math/rand"
	"slices"

	"medmcq/internal/domain"
)

func (s *Store) CreateQuestion(_ context.Context, in domain.QuestionInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.examSets[in.ExamSetID]; !ok {
		return 0, fmt.Errorf("%w: exam set %d does not exist", domain.ErrModelValidation, in.ExamSetID)
	}
	now := s.now()
	row := questionRow{QuestionInput: in, id: s.nextID("questions"), createdAt: now, updatedAt: now}
	row.CorrectAnswers = slices.Clone(in.CorrectAnswers)
	s.questions[row.id] = row
	return row.id, nil
}

func (s *Store) UpdateQuestion(_ context.Context, id int64, in domain.QuestionInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.questions[id]
	if !ok {
		return fmt.Errorf("%w: question %d", domain.ErrNotFound, id)
	}
	if _, ok := s.examSets[in.ExamSetID]; !ok {
		return fmt.Errorf("%w: exam set %d does not exist", domain.ErrModelValidation, in.ExamSetID)
	}
	row.QuestionInput = in
	row.CorrectAnswers = slices.Clone(in.CorrectAnswers)
	row.updatedAt = s.now()
	s.questions[id] = row
	return nil
}

func (s *Store) DeleteQuestion(_ context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return 0, nil
	}
	s.deleteQuestionLocked(id)
	return 1, nil
}

// deleteQuestionLocked cascades like the foreign keys in the schema do.
func (s *Store) deleteQuestionLocked(id int64) {
	delete(s.questions, id)
	for _, votes := range s.votes {
		for vid, v := range votes {
			if v.QuestionID == id {
				delete(votes, vid)
			}
		}
	}
	s.answers = slices.DeleteFunc(s.answers, func(a domain.UserAnswer) bool { return a.QuestionID == id })
	for cid, c := range s.comments {
		if c.QuestionID == id {
			delete(s.comments, cid)
			delete(s.likes, cid)
		}
	}
	for bid, b := range s.bookmarks {
		if b.QuestionID == id {
			delete(s.bookmarks, bid)
		}
	}
}

func (s *Store) RecordAnswer(_ context.Context, a domain.UserAnswer) (domain.UserAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[a.QuestionID]; !ok {
		return domain.UserAnswer{}, fmt.Errorf("%w: question %d does not exist", domain.ErrModelValidation, a.QuestionID)
	}
	a.ID = s.nextID("answers")
	a.CreatedAt = s.now()
	s.answers = append(s.answers, a)
	return a, nil
}

// UserAnswers returns the user's answers oldest first.
func (s *Store) UserAnswers(_ context.Context, userID, semesterID int64) ([]domain.UserAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.UserAnswer, 0)
	for _, a := range s.answers {
		if a.UserID != userID || !s.inSemesterLocked(a.QuestionID, semesterID) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) ProfileQuestionIDs(_ context.Context, userID, semesterID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int64]struct{})
	for _, a := range s.answers {
		if a.UserID == userID {
			seen[a.QuestionID] = struct{}{}
		}
	}
	for _, b := range s.bookmarks {
		if b.UserID == userID {
			seen[b.QuestionID] = struct{}{}
		}
	}
	ids := make([]int64, 0, len(seen))
	for id := range seen {
		if s.inSemesterLocked(id, semesterID) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) ExamSetQuestionIDs(_ context.Context, setID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]questionRow, 0)
	for _, q := range s.questions {
		if q.ExamSetID == setID {
			rows = append(rows, q)
		}
	}
	slices.SortFunc(rows, func(a, b questionRow) int {
		return cmp.Or(cmp.Compare(a.ExamSetQno, b.ExamSetQno), cmp.Compare(a.id, b.id))
	})
	ids := make([]int64, len(rows))
	for i, q := range rows {
		ids[i] = q.id
	}
	return ids, nil
}

// SearchQuestionIDs matches questions containing any token as a word in the
// text or one of the answers.
func (s *Store) SearchQuestionIDs(_ context.Context, semesterID int64, tokens []string) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0)
	for id, q := range s.questions {
		if !s.inSemesterLocked(id, semesterID) {
			continue
		}
		words := domain.SearchTokens(q.Text + " " + q.Answer1 + " " + q.Answer2 + " " + q.Answer3)
		if slices.ContainsFunc(tokens, func(t string) bool { return slices.Contains(words, t) }) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) FilterQuestionIDs(_ context.Context, f domain.FilteredSelection, excludeAnsweredBy int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answered := make(map[int64]struct{})
	if excludeAnsweredBy > 0 {
		for _, a := range s.answers {
			if a.UserID == excludeAnsweredBy {
				answered[a.QuestionID] = struct{}{}
			}
		}
	}

	ids := make([]int64, 0)
	for id, q := range s.questions {
		set := s.examSets[q.ExamSetID]
		switch {
		case f.Semester > 0 && set.SemesterID != f.Semester:
			continue
		case f.Year > 0 && set.Year != f.Year:
			continue
		case f.Season != "" && set.Season != f.Season:
			continue
		}
		if _, ok := answered[id]; ok {
			continue
		}
		if !s.carriesAnyLocked(domain.MetadataTag, id, f.Tags) || !s.carriesAnyLocked(domain.MetadataSpecialty, id, f.Specialties) {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	if f.N > 0 && len(ids) > 0 {
		rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		ids = ids[:min(f.N, len(ids))]
	}
	return ids, nil
}

// carriesAnyLocked reports whether question has an active association with
// one of metadataIDs. No ids means no constraint.
func (s *Store) carriesAnyLocked(kind domain.MetadataKind, questionID int64, metadataIDs []int64) bool {
	if len(metadataIDs) == 0 {
		return true
	}
	sums := s.pairSumsLocked(kind, questionID)
	for _, id := range metadataIDs {
		if sum, ok := sums[id]; ok && domain.IsActive(sum) {
			return true
		}
	}
	return false
}

func (s *Store) inSemesterLocked(questionID, semesterID int64) bool {
	if semesterID == 0 {
		return true
	}
	q, ok := s.questions[questionID]
	if !ok {
		return false
	}
	return s.examSets[q.ExamSetID].SemesterID == semesterID
}

// LoadQuestion assembles the cacheable payload of a question.
func (s *Store) LoadQuestion(_ context.Context, id int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.questions[id]
	if !ok {
		return domain.Question{}, fmt.Errorf("%w: question %d", domain.ErrNotFound, id)
	}
	set := s.examSets[row.ExamSetID]
	correct := slices.Clone(row.CorrectAnswers)
	slices.Sort(correct)
	return domain.Question{
		ID:             id,
		Text:           row.Text,
		Answer1:        row.Answer1,
		Answer2:        row.Answer2,
		Answer3:        row.Answer3,
		Image:          row.Image,
		ExamSetID:      row.ExamSetID,
		ExamSetQno:     row.ExamSetQno,
		CorrectAnswers: correct,
		ExamSet:        set,
		Semester:       s.semesters[set.SemesterID],
		Tags:           s.associationsLocked(domain.MetadataTag, id),
		Specialties:    s.associationsLocked(domain.MetadataSpecialty, id),
		CreatedAt:      row.createdAt,
		UpdatedAt:      row.updatedAt,
	}, nil
}

func (s *Store) associationsLocked(kind domain.MetadataKind, questionID int64) []domain.Association {
	out := make([]domain.Association, 0)
	for metadataID, sum := range s.pairSumsLocked(kind, questionID) {
		if !domain.IsActive(sum) {
			continue
		}
		out = append(out, domain.Association{MetadataID: metadataID, Name: s.metadata[kind][metadataID].Name, Votes: sum})
	}
	slices.SortFunc(out, func(a, b domain.Association) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.MetadataID, b.MetadataID))
	})
	return out
}
