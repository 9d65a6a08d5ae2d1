package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/quiz-backend/models"
)

// GormStore works on any gorm dialect; the server uses postgres or sqlite.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates every table the store touches.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.Question{},
		&models.Book{},
		&models.BookQuestion{},
		&models.User{},
		&models.Answer{},
		&models.Session{},
	)
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) ListQuestions(ctx context.Context, f QuestionFilter) ([]models.Question, error) {
	q := s.db.WithContext(ctx).Model(&models.Question{})
	if f.Subject != "" && f.Subject != models.SubjectAll {
		q = q.Where("subject = ?", f.Subject)
	}
	if f.GenreID != "" {
		q = q.Where("genre_id = ?", f.GenreID)
	}
	if f.BatchID != "" {
		q = q.Where("import_batch_id = ?", f.BatchID)
	}

	var out []models.Question
	if err := q.Order("question_id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return out, nil
}

func (s *GormStore) QuestionIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Question{}).Pluck("question_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("question ids: %w", err)
	}
	return ids, nil
}

func (s *GormStore) InsertQuestions(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&questions, 100).Error
	})
	if err != nil {
		return fmt.Errorf("insert questions: %w", conflict(err))
	}
	return nil
}

// conflict maps a duplicate key to ErrConflict. The dialect only reports
// gorm.ErrDuplicatedKey when the DB was opened with TranslateError.
func conflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

// IncrementQuestionUsage is a single UPDATE so concurrent batches never lose
// an increment on the same row.
func (s *GormStore) IncrementQuestionUsage(ctx context.Context, questionID string) error {
	res := s.db.WithContext(ctx).Model(&models.Question{}).
		Where("question_id = ?", questionID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment usage %s: %w", questionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateBook(ctx context.Context, book models.Book, questions []models.BookQuestion) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Book{}).Where("book_id = ?", book.BookID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict
		}
		book.Questions = nil
		if err := tx.Create(&book).Error; err != nil {
			return conflict(err)
		}
		if len(questions) == 0 {
			return nil
		}
		for i := range questions {
			questions[i].BookID = book.BookID
		}
		return conflict(tx.CreateInBatches(&questions, 100).Error)
	})
}

func (s *GormStore) GetBook(ctx context.Context, bookID string) (models.Book, error) {
	var book models.Book
	err := s.db.WithContext(ctx).First(&book, "book_id = ?", bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Book{}, ErrNotFound
	}
	return book, err
}

func (s *GormStore) ListBooks(ctx context.Context, subject string) ([]models.Book, error) {
	q := s.db.WithContext(ctx).Model(&models.Book{})
	if subject != "" && subject != models.SubjectAll {
		q = q.Where("subject = ?", subject)
	}
	var out []models.Book
	if err := q.Order("title").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return out, nil
}

func (s *GormStore) BookQuestions(ctx context.Context, bookID string) ([]models.BookQuestion, error) {
	var out []models.BookQuestion
	err := s.db.WithContext(ctx).Where("book_id = ?", bookID).Order("question_id").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("book questions: %w", err)
	}
	return out, nil
}

func (s *GormStore) CountBookQuestions(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		BookID string
		N      int
	}
	err := s.db.WithContext(ctx).Model(&models.BookQuestion{}).
		Select("book_id, count(*) as n").
		Group("book_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count book questions: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.BookID] = r.N
	}
	return out, nil
}

func (s *GormStore) IncrementBookQuestionUsage(ctx context.Context, bookID string, questionID int) error {
	res := s.db.WithContext(ctx).Model(&models.BookQuestion{}).
		Where("book_id = ? AND question_id = ?", bookID, questionID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment book usage %s/%d: %w", bookID, questionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateUser(ctx context.Context, user models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict
		}
		return conflict(tx.Create(&user).Error)
	})
}

func (s *GormStore) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

func (s *GormStore) UserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.User{}).Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("user ids: %w", err)
	}
	return ids, nil
}

func (s *GormStore) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", userID).
		UpdateColumn("last_login", at).Error
}

func (s *GormStore) RecordAttempt(ctx context.Context, answers []models.Answer, session models.Session) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(answers) > 0 {
			if err := tx.CreateInBatches(&answers, 100).Error; err != nil {
				return fmt.Errorf("append answers: %w", err)
			}
		}
		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("append session: %w", err)
		}
		return nil
	})
}

func (s *GormStore) AnswersByUser(ctx context.Context, userID string) ([]models.Answer, error) {
	var out []models.Answer
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("answers by user: %w", err)
	}
	return out, nil
}

func (s *GormStore) SessionsByUser(ctx context.Context, userID string, limit int) ([]models.Session, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("finished_at desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Session
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("sessions by user: %w", err)
	}
	return out, nil
}
