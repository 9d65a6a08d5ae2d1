package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/vnkhanh/quiz-backend/models"
	"github.com/vnkhanh/quiz-backend/rpc"
)

type State int

const (
	StateLoading State = iota
	StateInProgress
	StateAnswered
	StateSubmitting
	StateResult
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateInProgress:
		return "in_progress"
	case StateAnswered:
		return "answered"
	case StateSubmitting:
		return "submitting"
	case StateResult:
		return "result"
	case StateError:
		return "error"
	}
	return "unknown"
}

func (s State) Terminal() bool { return s == StateResult || s == StateError }

var ErrNoQuestions = errors.New("no questions available")

// QuizAPI is the part of the backend a Runner needs.
type QuizAPI interface {
	GetQuestions(ctx context.Context, req rpc.GetQuestionsRequest) (rpc.QuestionsResponse, error)
	GetBookQuestions(ctx context.Context, req rpc.GetBookQuestionsRequest) (rpc.QuestionsResponse, error)
	SubmitAnswers(ctx context.Context, req rpc.SubmitAnswersRequest) (rpc.SubmitAnswersResponse, error)
}

type RunnerConfig struct {
	UserID  string
	Subject string
	GenreID string
	// BookID selects book questions instead of the subject pool.
	BookID       string
	Count        int
	TickInterval time.Duration
	SessionID    string
	Now          func() time.Time
	Logger       *slog.Logger
}

// Result is the final score. FromServer is false when submission failed and
// the score was computed locally.
type Result struct {
	Correct    int
	Total      int
	FromServer bool
}

// Snapshot is a copy of the runner state for rendering.
type Snapshot struct {
	State       State
	Index       int
	Total       int
	Question    *rpc.Question
	Selected    int
	LastCorrect bool
	Score       int
	TimeLeft    int
	TimeLimit   int
	Result      Result
	Err         error
}

// Runner drives one quiz attempt. All transitions hold mu; network calls
// run without it.
type Runner struct {
	mu  sync.Mutex
	api QuizAPI
	cfg RunnerConfig
	log *slog.Logger

	state       State
	questions   []rpc.Question
	index       int
	selected    int
	lastCorrect bool
	answered    map[int]bool
	drafts      []rpc.AnswerDraft
	score       int
	timeLimit   int
	timeLeft    int
	startedAt   time.Time
	shownAt     time.Time
	inFlight    bool
	result      Result
	err         error

	done     chan struct{}
	doneOnce sync.Once
}

func NewRunner(api QuizAPI, cfg RunnerConfig) *Runner {
	if cfg.Count <= 0 {
		cfg.Count = rpc.DefaultQuestionCount
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.SessionID == "" {
		if id, err := gonanoid.New(); err == nil {
			cfg.SessionID = id
		} else {
			cfg.SessionID = cfg.Now().Format("20060102150405.000")
		}
	}
	return &Runner{
		api:      api,
		cfg:      cfg,
		log:      cfg.Logger,
		state:    StateLoading,
		selected: -1,
		answered: make(map[int]bool),
		done:     make(chan struct{}),
	}
}

func (r *Runner) SessionID() string { return r.cfg.SessionID }

// Done is closed once the runner reaches Result or Error.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Load fetches the batch. Only valid in Loading.
func (r *Runner) Load(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateLoading {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	var resp rpc.QuestionsResponse
	var err error
	if r.cfg.BookID != "" {
		resp, err = r.api.GetBookQuestions(ctx, rpc.GetBookQuestionsRequest{BookID: r.cfg.BookID, Count: &r.cfg.Count})
	} else {
		resp, err = r.api.GetQuestions(ctx, rpc.GetQuestionsRequest{
			Subject: r.cfg.Subject,
			GenreID: r.cfg.GenreID,
			Count:   &r.cfg.Count,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateLoading {
		return nil
	}
	switch {
	case err != nil:
		r.fail(err)
	case !resp.Success:
		r.fail(errors.New(resp.Error))
	case len(resp.Questions) == 0:
		r.fail(ErrNoQuestions)
	}
	if r.state == StateError {
		return r.err
	}

	r.questions = resp.Questions
	r.timeLimit = resp.TimeLimit
	if r.timeLimit <= 0 {
		r.timeLimit = models.TimeLimit(r.cfg.Subject)
	}
	r.timeLeft = r.timeLimit
	r.startedAt = r.cfg.Now()
	r.shownAt = r.startedAt
	r.state = StateInProgress
	return nil
}

// Start ticks the countdown until the runner finishes or ctx ends.
func (r *Runner) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.done:
				return
			case <-ticker.C:
				r.Tick(ctx)
			}
		}
	}()
}

// Tick counts one second down. At zero the attempt is submitted.
func (r *Runner) Tick(ctx context.Context) {
	r.mu.Lock()
	if r.state != StateInProgress && r.state != StateAnswered {
		r.mu.Unlock()
		return
	}
	if r.timeLeft > 0 {
		r.timeLeft--
	}
	if r.timeLeft > 0 {
		r.mu.Unlock()
		return
	}
	req, ok := r.beginSubmit()
	r.mu.Unlock()
	if ok {
		r.submit(ctx, req)
	}
}

// Answer records a choice for the current question. It reports false when
// the answer was ignored.
func (r *Runner) Answer(choice int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateInProgress || r.answered[r.index] {
		return false
	}
	q := r.questions[r.index]
	if choice < 0 || choice >= len(q.Choices) {
		return false
	}

	correct := choice == q.CorrectIndex
	r.answered[r.index] = true
	r.drafts = append(r.drafts, r.draft(q, choice))
	if correct {
		r.score++
	}
	r.selected = choice
	r.lastCorrect = correct
	r.state = StateAnswered
	return true
}

// Next moves past an answered question, submitting after the last one.
func (r *Runner) Next(ctx context.Context) {
	r.mu.Lock()
	if r.state != StateAnswered {
		r.mu.Unlock()
		return
	}
	if r.index+1 < len(r.questions) {
		r.index++
		r.selected = -1
		r.lastCorrect = false
		r.shownAt = r.cfg.Now()
		r.state = StateInProgress
		r.mu.Unlock()
		return
	}
	req, ok := r.beginSubmit()
	r.mu.Unlock()
	if ok {
		r.submit(ctx, req)
	}
}

// Quit ends the attempt early, recording the rest as unanswered.
func (r *Runner) Quit(ctx context.Context) {
	r.mu.Lock()
	if r.state != StateInProgress && r.state != StateAnswered {
		r.mu.Unlock()
		return
	}
	req, ok := r.beginSubmit()
	r.mu.Unlock()
	if ok {
		r.submit(ctx, req)
	}
}

func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{
		State:       r.state,
		Index:       r.index,
		Total:       len(r.questions),
		Selected:    r.selected,
		LastCorrect: r.lastCorrect,
		Score:       r.score,
		TimeLeft:    r.timeLeft,
		TimeLimit:   r.timeLimit,
		Result:      r.result,
		Err:         r.err,
	}
	if r.index < len(r.questions) {
		q := r.questions[r.index]
		q.Choices = append([]string(nil), q.Choices...)
		s.Question = &q
	}
	return s
}

// Drafts returns a copy of the answers collected so far.
func (r *Runner) Drafts() []rpc.AnswerDraft {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]rpc.AnswerDraft(nil), r.drafts...)
}

func (r *Runner) draft(q rpc.Question, choice int) rpc.AnswerDraft {
	genre := q.GenreID
	if genre == "" {
		genre = q.BookID
	}
	if genre == "" {
		genre = "unknown"
	}
	return rpc.AnswerDraft{
		QuestionID:   q.QuestionID,
		GenreID:      genre,
		UserAnswer:   choice,
		CorrectIndex: q.CorrectIndex,
		QuestionText: q.QuestionText,
		Choices:      q.Choices,
		Hint:         q.Hint,
		TimeTaken:    int(r.cfg.Now().Sub(r.shownAt).Seconds()),
	}
}

// beginSubmit fills in unanswered drafts and builds the request. Caller
// holds mu. It reports false when a submission is already under way.
func (r *Runner) beginSubmit() (rpc.SubmitAnswersRequest, bool) {
	if r.inFlight || r.state.Terminal() {
		return rpc.SubmitAnswersRequest{}, false
	}
	r.inFlight = true
	r.state = StateSubmitting

	from := r.index
	if r.answered[from] {
		from++
	}
	for i := from; i < len(r.questions); i++ {
		if r.answered[i] {
			continue
		}
		d := r.draft(r.questions[i], rpc.Unanswered)
		d.TimeTaken = 0
		r.drafts = append(r.drafts, d)
		r.answered[i] = true
	}

	subject := r.cfg.Subject
	if subject == "" && r.cfg.BookID != "" {
		subject = r.questions[0].Subject
	}
	return rpc.SubmitAnswersRequest{
		UserID:        r.cfg.UserID,
		SessionID:     r.cfg.SessionID,
		Subject:       subject,
		GenreID:       r.cfg.GenreID,
		Answers:       append([]rpc.AnswerDraft(nil), r.drafts...),
		TimeRemaining: r.timeLeft,
		StartedAt:     r.startedAt.Format(time.RFC3339),
	}, true
}

func (r *Runner) submit(ctx context.Context, req rpc.SubmitAnswersRequest) {
	resp, err := r.api.SubmitAnswers(ctx, req)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight = false
	if err == nil && resp.Success {
		r.result = Result{Correct: resp.CorrectCount, Total: resp.Total, FromServer: true}
	} else {
		if err == nil {
			err = errors.New(resp.Error)
		}
		r.log.WarnContext(ctx, "submit failed, showing local score", "session_id", req.SessionID, "error", err)
		r.result = Result{Correct: r.score, Total: len(r.questions)}
	}
	r.state = StateResult
	r.finish()
}

// fail moves to Error. Caller holds mu.
func (r *Runner) fail(err error) {
	r.err = err
	r.state = StateError
	r.finish()
}

func (r *Runner) finish() {
	r.doneOnce.Do(func() { close(r.done) })
}
