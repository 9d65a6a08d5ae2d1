package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/quiz-backend/models"
	"github.com/vnkhanh/quiz-backend/repository"
	"github.com/vnkhanh/quiz-backend/rpc"
)

// Attempt is a finished quiz as submitted by a client.
type Attempt struct {
	UserID        string
	SessionID     string
	Subject       string
	GenreID       string
	Answers       []rpc.AnswerDraft
	TimeRemaining int
	StartedAt     time.Time
}

type Summary struct {
	CorrectCount int
	Total        int
	Accuracy     float64
}

// Recorder persists attempts. Correctness is always recomputed from the
// draft's correct index; a client-sent verdict is never trusted.
type Recorder struct {
	attempts repository.AttemptRepository
	cache    StatsCache
	events   Notifier
	now      func() time.Time
	log      *slog.Logger
}

// Record appends one answer row per draft and one session row. Submitting the
// same session id twice records it twice.
func (r *Recorder) Record(ctx context.Context, a Attempt) (Summary, error) {
	now := r.now()
	answers := make([]models.Answer, 0, len(a.Answers))
	correct := 0
	for _, d := range a.Answers {
		ok := d.UserAnswer == d.CorrectIndex
		if ok {
			correct++
		}
		answers = append(answers, models.Answer{
			AnswerID:   uuid.New(),
			UserID:     a.UserID,
			SessionID:  a.SessionID,
			QuestionID: d.QuestionID,
			Subject:    a.Subject,
			GenreID:    d.GenreID,
			UserAnswer: d.UserAnswer,
			IsCorrect:  ok,
			TimeTaken:  d.TimeTaken,
			AnsweredAt: now,
		})
	}

	started := a.StartedAt
	if started.IsZero() {
		started = now
	}
	session := models.Session{
		SessionID:      a.SessionID,
		UserID:         a.UserID,
		Subject:        a.Subject,
		GenreID:        a.GenreID,
		TotalQuestions: len(a.Answers),
		CorrectCount:   correct,
		TimeLimit:      models.TimeLimit(a.Subject),
		TimeRemaining:  a.TimeRemaining,
		StartedAt:      started,
		FinishedAt:     now,
	}
	if err := r.attempts.RecordAttempt(ctx, answers, session); err != nil {
		return Summary{}, fmt.Errorf("record attempt: %w", err)
	}

	sum := Summary{CorrectCount: correct, Total: len(a.Answers), Accuracy: ratio(correct, len(a.Answers))}
	r.cache.Invalidate(ctx, a.UserID)
	r.events.Notify(EventSessionRecorded, map[string]any{
		"user_id":       a.UserID,
		"session_id":    a.SessionID,
		"subject":       a.Subject,
		"correct_count": sum.CorrectCount,
		"total":         sum.Total,
	})
	r.log.InfoContext(ctx, "session recorded",
		"user_id", a.UserID, "session_id", a.SessionID, "total", sum.Total, "correct", sum.CorrectCount)
	return sum, nil
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
