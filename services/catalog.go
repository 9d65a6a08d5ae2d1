package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"github.com/vnkhanh/quiz-backend/models"
	"github.com/vnkhanh/quiz-backend/repository"
	"github.com/vnkhanh/quiz-backend/rpc"
)

// Catalog serves questions, genres and books.
type Catalog struct {
	questions repository.QuestionRepository
	books     repository.BookRepository
	selector  *Selector
	stats     *StatsAggregator
	events    Notifier
	log       *slog.Logger
}

type Batch struct {
	Questions []rpc.Question
	TimeLimit int
	BookID    string
}

// Questions selects a batch from the shared question pool.
func (c *Catalog) Questions(ctx context.Context, f repository.QuestionFilter, count int) (Batch, error) {
	candidates, err := c.questions.ListQuestions(ctx, f)
	if err != nil {
		return Batch{}, fmt.Errorf("get questions: %w", err)
	}
	picked := c.selector.SelectQuestions(ctx, c.questions, candidates, count)

	out := make([]rpc.Question, 0, len(picked))
	for _, q := range picked {
		out = append(out, rpc.Question{
			QuestionID:   q.QuestionID,
			Subject:      q.Subject,
			GenreID:      q.GenreID,
			GenreName:    q.GenreName,
			QuestionText: q.QuestionText,
			Choices:      q.Choices,
			CorrectIndex: q.CorrectIndex,
			Hint:         q.Hint,
		})
	}
	return Batch{Questions: out, TimeLimit: models.TimeLimit(f.Subject)}, nil
}

// BookQuestions selects a batch from one book.
func (c *Catalog) BookQuestions(ctx context.Context, bookID string, count int) (Batch, error) {
	if _, err := c.books.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Batch{}, notFound("book %q not found", bookID)
		}
		return Batch{}, fmt.Errorf("get book: %w", err)
	}
	candidates, err := c.books.BookQuestions(ctx, bookID)
	if err != nil {
		return Batch{}, fmt.Errorf("get book questions: %w", err)
	}
	if len(candidates) == 0 {
		return Batch{}, notFound("book %q has no questions", bookID)
	}

	subject := SubjectOfBook(bookID)
	picked := c.selector.SelectBookQuestions(ctx, c.books, bookID, candidates, count)
	out := make([]rpc.Question, 0, len(picked))
	for _, q := range picked {
		out = append(out, rpc.Question{
			QuestionID:   strconv.Itoa(q.QuestionID),
			Subject:      subject,
			BookID:       bookID,
			QuestionText: q.QuestionText,
			Choices:      q.Choices,
			CorrectIndex: q.CorrectIndex,
			Hint:         q.Hint,
		})
	}
	return Batch{Questions: out, TimeLimit: models.TimeLimit(subject), BookID: bookID}, nil
}

// Genres counts the questions of each genre of a subject, ordered by genre id.
// Anything but a stored subject code, "all" included, has no genres.
func (c *Catalog) Genres(ctx context.Context, subject string) ([]rpc.Genre, error) {
	if !models.IsSubject(subject) {
		return []rpc.Genre{}, nil
	}
	rows, err := c.questions.ListQuestions(ctx, repository.QuestionFilter{Subject: subject})
	if err != nil {
		return nil, fmt.Errorf("genres: %w", err)
	}
	byID := make(map[string]*rpc.Genre)
	for _, q := range rows {
		g, ok := byID[q.GenreID]
		if !ok {
			g = &rpc.Genre{GenreID: q.GenreID, GenreName: q.GenreName}
			byID[q.GenreID] = g
		}
		g.Count++
	}
	out := make([]rpc.Genre, 0, len(byID))
	for _, g := range byID {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GenreID < out[j].GenreID })
	return out, nil
}

// BookID names a book from its subject and title.
func BookID(subject, title string) string {
	return subject + "_" + strings.TrimSpace(title)
}

// CreateBook stores a new book. The request is validated as a whole before
// anything is written.
func (c *Catalog) CreateBook(ctx context.Context, req rpc.CreateBookRequest) (models.Book, int, error) {
	if err := rpc.Validate(req); err != nil {
		return models.Book{}, 0, invalid("%s", err.Error())
	}

	title := strings.TrimSpace(req.Title)
	book := models.Book{
		BookID:  BookID(req.Subject, title),
		Subject: req.Subject,
		Title:   title,
		Slug:    slug.Make(req.Subject + " " + title),
	}
	qs := make([]models.BookQuestion, 0, len(req.Questions))
	for i, in := range req.Questions {
		qs = append(qs, models.BookQuestion{
			BookID:       book.BookID,
			QuestionID:   i + 1,
			QuestionText: strings.TrimSpace(in.QuestionText),
			Choices:      in.ChoiceList(),
			CorrectIndex: *in.CorrectIndex,
			Hint:         in.Hint,
		})
	}

	if err := c.books.CreateBook(ctx, book, qs); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return models.Book{}, 0, invalid("book %q already exists", book.BookID)
		}
		return models.Book{}, 0, fmt.Errorf("create book: %w", err)
	}

	c.log.InfoContext(ctx, "book created", "book_id", book.BookID, "questions", len(qs))
	c.events.Notify(EventBookCreated, map[string]any{
		"book_id":        book.BookID,
		"subject":        book.Subject,
		"question_count": len(qs),
	})
	return book, len(qs), nil
}

// Books lists books by title. When userID is set each book carries the
// user's progress on it.
func (c *Catalog) Books(ctx context.Context, subject, userID string) ([]rpc.Book, error) {
	books, err := c.books.ListBooks(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("books: %w", err)
	}
	counts, err := c.books.CountBookQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("books: %w", err)
	}
	progress := map[string]BookProgress{}
	if userID != "" {
		if progress, err = c.stats.BookStats(ctx, userID); err != nil {
			return nil, err
		}
	}

	out := make([]rpc.Book, 0, len(books))
	for _, b := range books {
		p := progress[b.BookID]
		out = append(out, rpc.Book{
			BookID:        b.BookID,
			Subject:       b.Subject,
			Title:         b.Title,
			Slug:          b.Slug,
			QuestionCount: counts[b.BookID],
			AnsweredCount: p.Total,
			CorrectCount:  p.Correct,
			Accuracy:      p.Accuracy,
		})
	}
	return out, nil
}
