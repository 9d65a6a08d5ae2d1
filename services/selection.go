package services

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/vnkhanh/quiz-backend/models"
	"github.com/vnkhanh/quiz-backend/repository"
)

// Used is any item that carries a served-count.
type Used interface {
	Usage() int
}

// arrange orders items by ascending usage, shuffling within each usage group,
// and keeps at most count of them.
func arrange[T Used](items []T, count int, shuffle func(n int, swap func(i, j int))) []T {
	if count <= 0 || len(items) == 0 {
		return []T{}
	}

	groups := make(map[int][]T)
	for _, it := range items {
		groups[it.Usage()] = append(groups[it.Usage()], it)
	}
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]T, 0, len(items))
	for _, k := range keys {
		g := groups[k]
		shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
		out = append(out, g...)
	}
	if len(out) > count {
		out = out[:count]
	}
	return out
}

// Selector picks least-used questions and counts every pick.
type Selector struct {
	log     *slog.Logger
	shuffle func(n int, swap func(i, j int))
}

func NewSelector(log *slog.Logger, shuffle func(n int, swap func(i, j int))) *Selector {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &Selector{log: log, shuffle: shuffle}
}

// SelectQuestions returns min(count, len(candidates)) questions and bumps the
// stored usage of each returned one by exactly one. A failed bump is logged
// and the batch is still returned.
func (s *Selector) SelectQuestions(ctx context.Context, store repository.QuestionRepository, candidates []models.Question, count int) []models.Question {
	picked := arrange(candidates, count, s.shuffle)
	for _, q := range picked {
		if err := store.IncrementQuestionUsage(ctx, q.QuestionID); err != nil {
			s.log.WarnContext(ctx, "usage increment failed", "question_id", q.QuestionID, "error", err)
		}
	}
	return picked
}

func (s *Selector) SelectBookQuestions(ctx context.Context, store repository.BookRepository, bookID string, candidates []models.BookQuestion, count int) []models.BookQuestion {
	picked := arrange(candidates, count, s.shuffle)
	for _, q := range picked {
		if err := store.IncrementBookQuestionUsage(ctx, bookID, q.QuestionID); err != nil {
			s.log.WarnContext(ctx, "usage increment failed",
				"book_id", bookID, "question_id", strconv.Itoa(q.QuestionID), "error", err)
		}
	}
	return picked
}
