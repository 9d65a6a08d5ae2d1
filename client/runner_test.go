package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vnkhanh/quiz-backend/rpc"
)

type fakeQuizAPI struct {
	mu        sync.Mutex
	questions rpc.QuestionsResponse
	loadErr   error
	submitErr error
	submitted []rpc.SubmitAnswersRequest
	block     chan struct{}
}

func (f *fakeQuizAPI) GetQuestions(context.Context, rpc.GetQuestionsRequest) (rpc.QuestionsResponse, error) {
	return f.questions, f.loadErr
}

func (f *fakeQuizAPI) GetBookQuestions(context.Context, rpc.GetBookQuestionsRequest) (rpc.QuestionsResponse, error) {
	return f.questions, f.loadErr
}

func (f *fakeQuizAPI) SubmitAnswers(_ context.Context, req rpc.SubmitAnswersRequest) (rpc.SubmitAnswersResponse, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.submitted = append(f.submitted, req)
	f.mu.Unlock()
	if f.submitErr != nil {
		return rpc.SubmitAnswersResponse{}, f.submitErr
	}
	correct := 0
	for _, a := range req.Answers {
		if a.UserAnswer == a.CorrectIndex {
			correct++
		}
	}
	return rpc.SubmitAnswersResponse{
		Response:     rpc.Response{Success: true},
		CorrectCount: correct,
		Total:        len(req.Answers),
	}, nil
}

func (f *fakeQuizAPI) submissions() []rpc.SubmitAnswersRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rpc.SubmitAnswersRequest(nil), f.submitted...)
}

func threeQuestions(timeLimit int) rpc.QuestionsResponse {
	qs := make([]rpc.Question, 3)
	for i := range qs {
		qs[i] = rpc.Question{
			QuestionID:   "MA01_00" + string(rune('1'+i)),
			Subject:      "math",
			GenreID:      "MA01",
			QuestionText: "q",
			Choices:      []string{"a", "b", "c", "d"},
			CorrectIndex: 1,
		}
	}
	return rpc.QuestionsResponse{Response: rpc.Response{Success: true}, Questions: qs, TimeLimit: timeLimit}
}

func loadedRunner(t *testing.T, api *fakeQuizAPI) *Runner {
	t.Helper()
	r := NewRunner(api, RunnerConfig{UserID: "user001", Subject: "math", SessionID: "s1"})
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if st := r.Snapshot().State; st != StateInProgress {
		t.Fatalf("state after load = %v", st)
	}
	return r
}

func TestRunnerSecondAnswerIsIgnored(t *testing.T) {
	api := &fakeQuizAPI{questions: threeQuestions(300)}
	r := loadedRunner(t, api)

	if !r.Answer(1) {
		t.Fatalf("first answer should be accepted")
	}
	if r.Answer(0) {
		t.Fatalf("second answer on the same question should be ignored")
	}
	s := r.Snapshot()
	if s.State != StateAnswered || s.Score != 1 || s.Selected != 1 || !s.LastCorrect {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	if len(r.Drafts()) != 1 {
		t.Fatalf("expected one draft, got %d", len(r.Drafts()))
	}
}

func TestRunnerFullAttempt(t *testing.T) {
	api := &fakeQuizAPI{questions: threeQuestions(300)}
	r := loadedRunner(t, api)
	ctx := context.Background()

	for i, choice := range []int{1, 0, 1} {
		if !r.Answer(choice) {
			t.Fatalf("answer %d rejected", i)
		}
		r.Next(ctx)
	}

	select {
	case <-r.Done():
	default:
		t.Fatalf("runner should be done after the last question")
	}
	s := r.Snapshot()
	if s.State != StateResult || !s.Result.FromServer || s.Result.Correct != 2 || s.Result.Total != 3 {
		t.Fatalf("unexpected result %+v", s)
	}
	subs := api.submissions()
	if len(subs) != 1 || len(subs[0].Answers) != 3 || subs[0].SessionID != "s1" || subs[0].TimeRemaining != 300 {
		t.Fatalf("unexpected submission %+v", subs)
	}
}

func TestRunnerTimeoutFillsUnanswered(t *testing.T) {
	tests := []struct {
		name       string
		answerLast bool
	}{
		{name: "current question open"},
		{name: "current question answered", answerLast: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeQuizAPI{questions: threeQuestions(2)}
			r := loadedRunner(t, api)
			ctx := context.Background()

			r.Answer(1)
			r.Next(ctx)
			if tt.answerLast {
				r.Answer(3)
			}
			r.Tick(ctx)
			r.Tick(ctx)

			subs := api.submissions()
			if len(subs) != 1 {
				t.Fatalf("expected one submission, got %d", len(subs))
			}
			answers := subs[0].Answers
			if len(answers) != 3 {
				t.Fatalf("every question needs a draft, got %d", len(answers))
			}
			unanswered := 0
			for _, a := range answers {
				if a.UserAnswer == rpc.Unanswered {
					unanswered++
				}
			}
			want := 2
			if tt.answerLast {
				want = 1
			}
			if unanswered != want {
				t.Fatalf("unanswered drafts = %d, want %d", unanswered, want)
			}
			if subs[0].TimeRemaining != 0 {
				t.Fatalf("time remaining = %d", subs[0].TimeRemaining)
			}
		})
	}
}

func TestRunnerSubmitFailureFallsBackToLocalScore(t *testing.T) {
	api := &fakeQuizAPI{questions: threeQuestions(300), submitErr: ErrServiceUnavailable}
	r := loadedRunner(t, api)
	ctx := context.Background()

	r.Answer(1)
	r.Next(ctx)
	r.Quit(ctx)

	s := r.Snapshot()
	if s.State != StateResult || s.Result.FromServer || s.Result.Correct != 1 || s.Result.Total != 3 {
		t.Fatalf("unexpected fallback result %+v", s)
	}
}

func TestRunnerTerminalStatesAreFinal(t *testing.T) {
	api := &fakeQuizAPI{questions: threeQuestions(1)}
	r := loadedRunner(t, api)
	ctx := context.Background()

	r.Tick(ctx)
	before := r.Snapshot()
	if before.State != StateResult {
		t.Fatalf("expected result after timeout, got %v", before.State)
	}

	r.Answer(1)
	r.Next(ctx)
	r.Tick(ctx)
	r.Quit(ctx)
	after := r.Snapshot()
	if after.State != StateResult || after.Score != before.Score || len(api.submissions()) != 1 {
		t.Fatalf("terminal state changed: %+v", after)
	}
}

func TestRunnerSubmitsOnce(t *testing.T) {
	api := &fakeQuizAPI{questions: threeQuestions(1), block: make(chan struct{})}
	r := loadedRunner(t, api)
	ctx := context.Background()
	r.Answer(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Tick(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for r.Snapshot().State != StateSubmitting {
		if time.Now().After(deadline) {
			t.Fatalf("runner never started submitting")
		}
		time.Sleep(time.Millisecond)
	}
	r.Quit(ctx)
	r.Next(ctx)
	close(api.block)
	wg.Wait()

	if n := len(api.submissions()); n != 1 {
		t.Fatalf("expected exactly one submission, got %d", n)
	}
}

func TestRunnerLoadFailures(t *testing.T) {
	tests := []struct {
		name string
		api  *fakeQuizAPI
	}{
		{name: "transport", api: &fakeQuizAPI{loadErr: ErrServiceUnavailable}},
		{name: "server error", api: &fakeQuizAPI{questions: rpc.QuestionsResponse{Response: rpc.Failure("boom")}}},
		{name: "empty batch", api: &fakeQuizAPI{questions: rpc.QuestionsResponse{Response: rpc.Response{Success: true}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(tt.api, RunnerConfig{Subject: "jp"})
			if err := r.Load(context.Background()); err == nil {
				t.Fatalf("expected load error")
			}
			s := r.Snapshot()
			if s.State != StateError || s.Err == nil {
				t.Fatalf("unexpected snapshot %+v", s)
			}
			if tt.name == "empty batch" && !errors.Is(s.Err, ErrNoQuestions) {
				t.Fatalf("expected ErrNoQuestions, got %v", s.Err)
			}
			select {
			case <-r.Done():
			default:
				t.Fatalf("error state should close Done")
			}
		})
	}
}

func TestRunnerBookDraftsUseBookID(t *testing.T) {
	resp := threeQuestions(180)
	for i := range resp.Questions {
		resp.Questions[i].GenreID = ""
		resp.Questions[i].BookID = "sci_abc"
		resp.Questions[i].Subject = "sci"
	}
	api := &fakeQuizAPI{questions: resp}
	r := NewRunner(api, RunnerConfig{UserID: "user001", BookID: "sci_abc"})
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	r.Answer(0)
	r.Quit(context.Background())

	subs := api.submissions()
	if len(subs) != 1 || subs[0].Subject != "sci" {
		t.Fatalf("unexpected submission %+v", subs)
	}
	for _, a := range subs[0].Answers {
		if a.GenreID != "sci_abc" {
			t.Fatalf("draft genre = %q, want book id", a.GenreID)
		}
	}
}

func TestRunnerStartTicks(t *testing.T) {
	api := &fakeQuizAPI{questions: threeQuestions(2)}
	r := NewRunner(api, RunnerConfig{UserID: "user001", Subject: "math", TickInterval: time.Millisecond})
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("timer never expired")
	}
	if s := r.Snapshot(); s.State != StateResult || s.TimeLeft != 0 {
		t.Fatalf("unexpected snapshot %+v", s)
	}
}
