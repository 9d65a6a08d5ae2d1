package services

import (
	"context"
	"testing"
	"time"

	"github.com/vnkhanh/quiz-backend/repository"
	"github.com/vnkhanh/quiz-backend/rpc"
)

type recordingNotifier struct {
	events []string
}

func (r *recordingNotifier) Notify(eventType string, _ any) {
	r.events = append(r.events, eventType)
}

type recordingCache struct {
	nopCache
	invalidated []string
}

func (r *recordingCache) Invalidate(_ context.Context, userID string) {
	r.invalidated = append(r.invalidated, userID)
}

var fixedNow = time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC)

func newTestServices(store repository.Store, opts Options) *Services {
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return New(store, opts)
}

func TestRecordComputesAccuracy(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	notifier := &recordingNotifier{}
	cache := &recordingCache{}
	svc := newTestServices(store, Options{Notifier: notifier, Cache: cache})

	sum, err := svc.Recorder.Record(ctx, Attempt{
		UserID:    "user001",
		SessionID: "1700000000000",
		Subject:   "math",
		Answers: []rpc.AnswerDraft{
			{QuestionID: "MA01_001", GenreID: "MA01", UserAnswer: 0, CorrectIndex: 0},
			{QuestionID: "MA01_002", GenreID: "MA01", UserAnswer: 1, CorrectIndex: 0},
		},
		TimeRemaining: 42,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if sum.CorrectCount != 1 || sum.Total != 2 || sum.Accuracy != 0.5 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	answers, _ := store.AnswersByUser(ctx, "user001")
	if len(answers) != 2 || !answers[0].IsCorrect || answers[1].IsCorrect {
		t.Fatalf("unexpected answers %+v", answers)
	}
	sessions, _ := store.SessionsByUser(ctx, "user001", 0)
	if len(sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions))
	}
	s := sessions[0]
	if s.TimeLimit != 300 || s.TimeRemaining != 42 || s.TotalQuestions != 2 || s.CorrectCount != 1 {
		t.Fatalf("unexpected session %+v", s)
	}
	if !s.StartedAt.Equal(fixedNow) || !s.FinishedAt.Equal(fixedNow) {
		t.Fatalf("expected timestamps %v, got %+v", fixedNow, s)
	}

	if len(cache.invalidated) != 1 || cache.invalidated[0] != "user001" {
		t.Fatalf("stats cache not invalidated: %v", cache.invalidated)
	}
	if len(notifier.events) != 1 || notifier.events[0] != EventSessionRecorded {
		t.Fatalf("unexpected events %v", notifier.events)
	}
}

func TestRecordEmptyAttempt(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newTestServices(store, Options{})

	sum, err := svc.Recorder.Record(context.Background(), Attempt{UserID: "u", SessionID: "s", Subject: "jp"})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if sum.Total != 0 || sum.Accuracy != 0 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	sessions, _ := store.SessionsByUser(context.Background(), "u", 0)
	if len(sessions) != 1 || sessions[0].TimeLimit != 120 {
		t.Fatalf("expected one jp session, got %+v", sessions)
	}
}

func TestRecordUnansweredIsWrong(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newTestServices(store, Options{})

	sum, err := svc.Recorder.Record(context.Background(), Attempt{
		UserID: "u", SessionID: "s", Subject: "soc",
		Answers: []rpc.AnswerDraft{{QuestionID: "SO01_001", UserAnswer: rpc.Unanswered, CorrectIndex: 2}},
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if sum.CorrectCount != 0 || sum.Total != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestRecordDuplicateSessionAppends(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := newTestServices(store, Options{})

	a := Attempt{UserID: "u", SessionID: "dup", Subject: "sci",
		Answers: []rpc.AnswerDraft{{QuestionID: "SC01_001", UserAnswer: 1, CorrectIndex: 1}}}
	for i := 0; i < 2; i++ {
		if _, err := svc.Recorder.Record(ctx, a); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	sessions, _ := store.SessionsByUser(ctx, "u", 0)
	answers, _ := store.AnswersByUser(ctx, "u")
	if len(sessions) != 2 || len(answers) != 2 {
		t.Fatalf("expected both submissions kept, got %d sessions and %d answers", len(sessions), len(answers))
	}
}
