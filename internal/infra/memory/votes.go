package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"medmcq/internal/domain"
)

// UpsertVote keeps one row per (user, question, metadata) under the store lock.
func (s *Store) UpsertVote(_ context.Context, v domain.Vote) (domain.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	votes, ok := s.votes[v.Kind]
	if !ok {
		return domain.Vote{}, fmt.Errorf("%w: unknown metadata type %q", domain.ErrModelValidation, v.Kind)
	}
	if _, ok := s.questions[v.QuestionID]; !ok {
		return domain.Vote{}, fmt.Errorf("%w: question %d does not exist", domain.ErrModelValidation, v.QuestionID)
	}
	if _, ok := s.metadata[v.Kind][v.MetadataID]; !ok {
		return domain.Vote{}, fmt.Errorf("%w: %s %d does not exist", domain.ErrModelValidation, v.Kind, v.MetadataID)
	}
	v.UpdatedAt = s.now()
	if existing, ok := s.findVoteLocked(v.Kind, v.UserID, v.QuestionID, v.MetadataID); ok {
		v.ID = existing.ID
	} else {
		v.ID = s.nextID("votes:" + string(v.Kind))
	}
	votes[v.ID] = v
	return v, nil
}

func (s *Store) DeleteVote(_ context.Context, kind domain.MetadataKind, userID, questionID, metadataID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.findVoteLocked(kind, userID, questionID, metadataID)
	if !ok {
		return 0, fmt.Errorf("%w: no %s vote on question %d", domain.ErrNotFound, kind, questionID)
	}
	delete(s.votes[kind], v.ID)
	return v.ID, nil
}

func (s *Store) findVoteLocked(kind domain.MetadataKind, userID, questionID, metadataID int64) (domain.Vote, bool) {
	for _, v := range s.votes[kind] {
		if v.UserID == userID && v.QuestionID == questionID && v.MetadataID == metadataID {
			return v, true
		}
	}
	return domain.Vote{}, false
}

func (s *Store) UserVotes(_ context.Context, kind domain.MetadataKind, userID, questionID int64) ([]domain.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Vote, 0)
	for _, v := range s.votes[kind] {
		if v.UserID == userID && v.QuestionID == questionID {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b domain.Vote) int { return cmp.Compare(a.MetadataID, b.MetadataID) })
	return out, nil
}

func (s *Store) QuestionCounts(_ context.Context, kind domain.MetadataKind, metadataIDs []int64) (map[int64]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type pair struct{ question, metadata int64 }
	sums := make(map[pair]int)
	for _, v := range s.votes[kind] {
		if slices.Contains(metadataIDs, v.MetadataID) {
			sums[pair{v.QuestionID, v.MetadataID}] += v.Value
		}
	}
	counts := make(map[int64]int, len(metadataIDs))
	for _, id := range metadataIDs {
		counts[id] = 0
	}
	for p, sum := range sums {
		if domain.IsActive(sum) {
			counts[p.metadata]++
		}
	}
	return counts, nil
}

// LoadVote returns one vote row by id.
func (s *Store) LoadVote(_ context.Context, kind domain.MetadataKind, id int64) (domain.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.votes[kind][id]
	if !ok {
		return domain.Vote{}, fmt.Errorf("%w: %s vote %d", domain.ErrNotFound, kind, id)
	}
	return v, nil
}

// pairSumsLocked sums the votes on questionID per metadata id.
func (s *Store) pairSumsLocked(kind domain.MetadataKind, questionID int64) map[int64]int {
	rows := make([]domain.Vote, 0)
	for _, v := range s.votes[kind] {
		if v.QuestionID == questionID {
			rows = append(rows, v)
		}
	}
	return domain.Tally(rows)
}
