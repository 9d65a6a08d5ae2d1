package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"

	"github.com/vnkhanh/quiz-backend/repository"
	"github.com/vnkhanh/quiz-backend/rpc"
)

var bookIDPattern = regexp.MustCompile(`^(jp|math|sci|soc)_`)

type StatsAggregator struct {
	answers repository.AttemptRepository
	cache   StatsCache
	log     *slog.Logger
}

// Aggregate totals every recorded answer of the user. A user with no answers
// gets zeros and an empty subject map.
func (s *StatsAggregator) Aggregate(ctx context.Context, userID string) (rpc.Stats, error) {
	if st, ok := s.cache.Get(ctx, userID); ok {
		return st, nil
	}

	rows, err := s.answers.AnswersByUser(ctx, userID)
	if err != nil {
		return rpc.Stats{}, fmt.Errorf("stats for %s: %w", userID, err)
	}
	st := rpc.Stats{BySubject: map[string]rpc.SubjectStats{}}
	for _, a := range rows {
		st.TotalQuestions++
		bs := st.BySubject[a.Subject]
		bs.Total++
		if a.IsCorrect {
			st.TotalCorrect++
			bs.Correct++
		}
		st.BySubject[a.Subject] = bs
	}
	st.OverallAccuracy = ratio(st.TotalCorrect, st.TotalQuestions)

	s.cache.Set(ctx, userID, st)
	return st, nil
}

// BookProgress is the per-book tally for one user. Accuracy is a rounded
// percentage.
type BookProgress struct {
	Total    int
	Correct  int
	Accuracy int
}

// BookStats groups the user's answers by the book id stored in genre_id.
func (s *StatsAggregator) BookStats(ctx context.Context, userID string) (map[string]BookProgress, error) {
	rows, err := s.answers.AnswersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("book stats for %s: %w", userID, err)
	}
	out := make(map[string]BookProgress)
	for _, a := range rows {
		if !bookIDPattern.MatchString(a.GenreID) {
			continue
		}
		p := out[a.GenreID]
		p.Total++
		if a.IsCorrect {
			p.Correct++
		}
		out[a.GenreID] = p
	}
	for id, p := range out {
		p.Accuracy = int(math.Round(ratio(p.Correct, p.Total) * 100))
		out[id] = p
	}
	return out, nil
}

// SubjectOfBook extracts the subject prefix of a book id, or "all".
func SubjectOfBook(bookID string) string {
	m := bookIDPattern.FindStringSubmatch(bookID)
	if m == nil {
		return "all"
	}
	return m[1]
}
