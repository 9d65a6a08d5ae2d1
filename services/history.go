package services

import (
	"context"
	"fmt"

	"github.com/vnkhanh/quiz-backend/repository"
	"github.com/vnkhanh/quiz-backend/rpc"
)

type History struct {
	attempts repository.AttemptRepository
}

// List returns the user's sessions newest first, at most limit of them.
func (h *History) List(ctx context.Context, userID string, limit int) ([]rpc.HistoryEntry, error) {
	if limit <= 0 {
		return []rpc.HistoryEntry{}, nil
	}
	rows, err := h.attempts.SessionsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", userID, err)
	}
	out := make([]rpc.HistoryEntry, 0, len(rows))
	for _, s := range rows {
		out = append(out, rpc.HistoryEntry{
			SessionID:      s.SessionID,
			Subject:        s.Subject,
			GenreID:        s.GenreID,
			TotalQuestions: s.TotalQuestions,
			CorrectCount:   s.CorrectCount,
			TimeLimit:      s.TimeLimit,
			TimeRemaining:  s.TimeRemaining,
			StartedAt:      s.StartedAt,
			FinishedAt:     s.FinishedAt,
		})
	}
	return out, nil
}
