package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"medmcq/internal/domain"
)

// Store keeps every table in process. It enforces the same keys and
// references as the Postgres schema so services behave identically on both.
type Store struct {
	mu    sync.RWMutex
	now   func() time.Time
	seq   map[string]int64
	users map[int64]domain.User

	semesters map[int64]domain.Semester
	examSets  map[int64]domain.ExamSet
	metadata  map[domain.MetadataKind]map[int64]domain.Metadata

	questions map[int64]questionRow
	votes     map[domain.MetadataKind]map[int64]domain.Vote
	answers   []domain.UserAnswer
	comments  map[int64]domain.Comment
	likes     map[int64]map[int64]struct{}
	bookmarks map[int64]domain.Bookmark
}

type questionRow struct {
	domain.QuestionInput
	id        int64
	createdAt time.Time
	updatedAt time.Time
}

func NewStore() *Store {
	return &Store{
		now:       time.Now,
		seq:       make(map[string]int64),
		users:     make(map[int64]domain.User),
		semesters: make(map[int64]domain.Semester),
		examSets:  make(map[int64]domain.ExamSet),
		metadata: map[domain.MetadataKind]map[int64]domain.Metadata{
			domain.MetadataTag:       {},
			domain.MetadataSpecialty: {},
		},
		questions: make(map[int64]questionRow),
		votes: map[domain.MetadataKind]map[int64]domain.Vote{
			domain.MetadataTag:       {},
			domain.MetadataSpecialty: {},
		},
		comments:  make(map[int64]domain.Comment),
		likes:     make(map[int64]map[int64]struct{}),
		bookmarks: make(map[int64]domain.Bookmark),
	}
}

func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// AddSemester seeds a semester.
func (s *Store) AddSemester(sem domain.Semester) domain.Semester {
	s.mu.Lock()
	defer s.mu.Unlock()
	sem.ID = s.nextID("semesters")
	s.semesters[sem.ID] = sem
	return sem
}

// AddMetadata seeds a tag or specialty.
func (s *Store) AddMetadata(m domain.Metadata) (domain.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := domain.ParseMetadataKind(string(m.Kind)); err != nil {
		return domain.Metadata{}, err
	}
	if _, ok := s.semesters[m.SemesterID]; !ok {
		return domain.Metadata{}, fmt.Errorf("%w: semester %d does not exist", domain.ErrModelValidation, m.SemesterID)
	}
	m.ID = s.nextID(string(m.Kind))
	m.QuestionCount = 0
	s.metadata[m.Kind][m.ID] = m
	return m, nil
}

func (s *Store) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return domain.User{}, fmt.Errorf("%w: username %q is taken", domain.ErrUniqueViolation, u.Username)
		}
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	u.ID = s.nextID("users")
	u.CreatedAt = s.now()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("%w: user %q", domain.ErrNotFound, username)
}

func (s *Store) UserByID(_ context.Context, id int64) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
	}
	return u, nil
}

func (s *Store) Semesters(context.Context) ([]domain.Semester, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := valuesSorted(s.semesters, func(a, b domain.Semester) int { return cmp.Compare(a.Value, b.Value) })
	return out, nil
}

// ExamSets lists the sets of a semester, newest first. semesterID 0 lists all.
func (s *Store) ExamSets(_ context.Context, semesterID int64) ([]domain.ExamSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ExamSet, 0)
	for _, e := range s.examSets {
		if semesterID == 0 || e.SemesterID == semesterID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, compareExamSets)
	return out, nil
}

func compareExamSets(a, b domain.ExamSet) int {
	return cmp.Or(
		cmp.Compare(b.Year, a.Year),
		cmp.Compare(a.Season, b.Season),
		cmp.Compare(a.ID, b.ID),
	)
}

func (s *Store) GetExamSet(_ context.Context, id int64) (domain.ExamSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.examSets[id]
	if !ok {
		return domain.ExamSet{}, fmt.Errorf("%w: exam set %d", domain.ErrNotFound, id)
	}
	return e, nil
}

func (s *Store) CreateExamSet(_ context.Context, e domain.ExamSet) (domain.ExamSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.semesters[e.SemesterID]; !ok {
		return domain.ExamSet{}, fmt.Errorf("%w: semester %d does not exist", domain.ErrModelValidation, e.SemesterID)
	}
	e.ID = s.nextID("exam_sets")
	s.examSets[e.ID] = e
	return e, nil
}

func (s *Store) UpdateExamSet(_ context.Context, e domain.ExamSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.examSets[e.ID]; !ok {
		return fmt.Errorf("%w: exam set %d", domain.ErrNotFound, e.ID)
	}
	if _, ok := s.semesters[e.SemesterID]; !ok {
		return fmt.Errorf("%w: semester %d does not exist", domain.ErrModelValidation, e.SemesterID)
	}
	s.examSets[e.ID] = e
	return nil
}

// DeleteExamSet removes the set together with its questions.
func (s *Store) DeleteExamSet(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.examSets[id]; !ok {
		return fmt.Errorf("%w: exam set %d", domain.ErrNotFound, id)
	}
	for qid, q := range s.questions {
		if q.ExamSetID == id {
			s.deleteQuestionLocked(qid)
		}
	}
	delete(s.examSets, id)
	return nil
}

// Metadata lists tags or specialties of a semester by name.
func (s *Store) Metadata(_ context.Context, kind domain.MetadataKind, semesterID int64) ([]domain.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Metadata, 0)
	for _, m := range s.metadata[kind] {
		if semesterID == 0 || m.SemesterID == semesterID {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b domain.Metadata) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *Store) GetMetadata(_ context.Context, kind domain.MetadataKind, id int64) (domain.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.metadata[kind][id]
	if !ok {
		return domain.Metadata{}, fmt.Errorf("%w: %s %d", domain.ErrNotFound, kind, id)
	}
	return m, nil
}

func valuesSorted[K comparable, V any](m map[K]V, less func(a, b V) int) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, less)
	return out
}
