// Package repository persists questions, books, users and attempts.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vnkhanh/quiz-backend/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// QuestionFilter narrows a question scan. Empty fields match everything and
// Subject "all" is the same as empty.
type QuestionFilter struct {
	Subject string
	GenreID string
	BatchID string
}

type QuestionRepository interface {
	ListQuestions(ctx context.Context, f QuestionFilter) ([]models.Question, error)
	QuestionIDs(ctx context.Context) ([]string, error)
	InsertQuestions(ctx context.Context, questions []models.Question) error
	IncrementQuestionUsage(ctx context.Context, questionID string) error
}

type BookRepository interface {
	CreateBook(ctx context.Context, book models.Book, questions []models.BookQuestion) error
	GetBook(ctx context.Context, bookID string) (models.Book, error)
	ListBooks(ctx context.Context, subject string) ([]models.Book, error)
	BookQuestions(ctx context.Context, bookID string) ([]models.BookQuestion, error)
	CountBookQuestions(ctx context.Context) (map[string]int, error)
	IncrementBookQuestionUsage(ctx context.Context, bookID string, questionID int) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) error
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	UserIDs(ctx context.Context) ([]string, error)
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

// AttemptRepository is append-only.
type AttemptRepository interface {
	RecordAttempt(ctx context.Context, answers []models.Answer, session models.Session) error
	AnswersByUser(ctx context.Context, userID string) ([]models.Answer, error)
	// SessionsByUser returns newest first; limit <= 0 means no limit.
	SessionsByUser(ctx context.Context, userID string, limit int) ([]models.Session, error)
}

type Store interface {
	QuestionRepository
	BookRepository
	UserRepository
	AttemptRepository
	Ping(ctx context.Context) error
}

func matchSubject(filter, subject string) bool {
	return filter == "" || filter == models.SubjectAll || filter == subject
}
