package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vnkhanh/quiz-backend/models"
)

// MemoryStore keeps everything in process. It backs tests and DB_DRIVER=memory.
type MemoryStore struct {
	mu            sync.RWMutex
	questions     map[string]models.Question
	books         map[string]models.Book
	bookQuestions map[string][]models.BookQuestion
	users         map[string]models.User
	answers       []models.Answer
	sessions      []models.Session
	nextSessionID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		questions:     make(map[string]models.Question),
		books:         make(map[string]models.Book),
		bookQuestions: make(map[string][]models.BookQuestion),
		users:         make(map[string]models.User),
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) ListQuestions(_ context.Context, f QuestionFilter) ([]models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if !matchSubject(f.Subject, q.Subject) {
			continue
		}
		if f.GenreID != "" && q.GenreID != f.GenreID {
			continue
		}
		if f.BatchID != "" && q.ImportBatchID != f.BatchID {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (s *MemoryStore) QuestionIDs(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.questions))
	for id := range s.questions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) InsertQuestions(_ context.Context, questions []models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range questions {
		if _, ok := s.questions[q.QuestionID]; ok {
			return ErrConflict
		}
	}
	now := time.Now()
	for _, q := range questions {
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		q.UpdatedAt = now
		if q.ImportBatchID == "" {
			q.ImportBatchID = models.InitialBatch
		}
		s.questions[q.QuestionID] = q
	}
	return nil
}

func (s *MemoryStore) IncrementQuestionUsage(_ context.Context, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[questionID]
	if !ok {
		return ErrNotFound
	}
	q.UsageCount++
	s.questions[questionID] = q
	return nil
}

func (s *MemoryStore) CreateBook(_ context.Context, book models.Book, questions []models.BookQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[book.BookID]; ok {
		return ErrConflict
	}
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}
	book.Questions = nil
	s.books[book.BookID] = book

	qs := make([]models.BookQuestion, len(questions))
	for i, q := range questions {
		q.BookID = book.BookID
		qs[i] = q
	}
	s.bookQuestions[book.BookID] = qs
	return nil
}

func (s *MemoryStore) GetBook(_ context.Context, bookID string) (models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[bookID]
	if !ok {
		return models.Book{}, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) ListBooks(_ context.Context, subject string) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		if matchSubject(subject, b.Subject) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *MemoryStore) BookQuestions(_ context.Context, bookID string) ([]models.BookQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	qs := s.bookQuestions[bookID]
	out := make([]models.BookQuestion, len(qs))
	copy(out, qs)
	return out, nil
}

func (s *MemoryStore) CountBookQuestions(context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.bookQuestions))
	for id, qs := range s.bookQuestions {
		out[id] = len(qs)
	}
	return out, nil
}

func (s *MemoryStore) IncrementBookQuestionUsage(_ context.Context, bookID string, questionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	qs := s.bookQuestions[bookID]
	for i := range qs {
		if qs[i].QuestionID == questionID {
			qs[i].UsageCount++
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) CreateUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return ErrConflict
		}
	}
	if _, ok := s.users[user.UserID]; ok {
		return ErrConflict
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.UserID] = user
	return nil
}

func (s *MemoryStore) FindUserByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryStore) UserIDs(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) TouchLastLogin(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.LastLogin = &at
	s.users[userID] = u
	return nil
}

func (s *MemoryStore) RecordAttempt(_ context.Context, answers []models.Answer, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers = append(s.answers, answers...)
	s.nextSessionID++
	session.ID = s.nextSessionID
	s.sessions = append(s.sessions, session)
	return nil
}

func (s *MemoryStore) AnswersByUser(_ context.Context, userID string) ([]models.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Answer
	for _, a := range s.answers {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) SessionsByUser(_ context.Context, userID string, limit int) ([]models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, sess)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].FinishedAt.Equal(out[j].FinishedAt) {
			return out[i].FinishedAt.After(out[j].FinishedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*GormStore)(nil)
)
