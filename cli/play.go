package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/vnkhanh/quiz-backend/client"
)

func (a *app) play(ctx context.Context, cfg client.RunnerConfig) error {
	u, err := a.auth.Require()
	if err != nil {
		return err
	}
	cfg.UserID = u.UserID
	cfg.Count = a.cfg.Count
	cfg.TickInterval = a.cfg.TickInterval
	cfg.Logger = a.cfg.Logger

	runner := client.NewRunner(a.api, cfg)
	if err := runner.Load(ctx); err != nil {
		return err
	}

	quizCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runner.Start(quizCtx)

	// nil once input is closed so the select below stops firing on it
	lines := a.lines
	lastIndex, lastState := -1, client.StateLoading
	for {
		s := runner.Snapshot()
		if s.State.Terminal() {
			printResult(a, s)
			return nil
		}
		if s.Index != lastIndex || s.State != lastState {
			a.render(s)
			lastIndex, lastState = s.Index, s.State
		}

		select {
		case <-runner.Done():
			fmt.Fprintln(a.out, "\ntime is up!")
		case <-quizCtx.Done():
			return quizCtx.Err()
		case line, ok := <-lines:
			if !ok {
				lines = nil
				runner.Quit(ctx)
				continue
			}
			a.handleQuizInput(ctx, runner, s, strings.TrimSpace(line))
		}
	}
}

func (a *app) handleQuizInput(ctx context.Context, runner *client.Runner, s client.Snapshot, line string) {
	if strings.EqualFold(line, "q") {
		runner.Quit(ctx)
		return
	}
	switch s.State {
	case client.StateInProgress:
		choice, ok := parseChoice(line, len(s.Question.Choices))
		if !ok {
			fmt.Fprintf(a.out, "answer with A-%c or 1-%d (q to quit): ", 'A'+len(s.Question.Choices)-1, len(s.Question.Choices))
			return
		}
		runner.Answer(choice)
	case client.StateAnswered:
		runner.Next(ctx)
	}
}

func (a *app) render(s client.Snapshot) {
	q := s.Question
	switch s.State {
	case client.StateInProgress:
		fmt.Fprintf(a.out, "\n[%d/%d] %s  (%ds left)\n%s\n\n", s.Index+1, s.Total, q.GenreName, s.TimeLeft, q.QuestionText)
		for i, c := range q.Choices {
			fmt.Fprintf(a.out, "%c. %s\n", 'A'+i, c)
		}
		fmt.Fprintf(a.out, "\nYour answer (A-%c): ", 'A'+len(q.Choices)-1)
	case client.StateAnswered:
		if s.LastCorrect {
			fmt.Fprintln(a.out, "Correct!")
		} else {
			fmt.Fprintf(a.out, "Wrong. The answer is %c. %s\n", 'A'+q.CorrectIndex, q.Choices[q.CorrectIndex])
		}
		if q.Hint != "" {
			fmt.Fprintf(a.out, "hint: %s\n", q.Hint)
		}
		fmt.Fprint(a.out, "press enter to continue: ")
	case client.StateSubmitting:
		fmt.Fprintln(a.out, "\nsubmitting...")
	}
}

func printResult(a *app, s client.Snapshot) {
	if s.State == client.StateError {
		fmt.Fprintf(a.out, "could not start the quiz: %v\n", s.Err)
		return
	}
	r := s.Result
	fmt.Fprintf(a.out, "\nScore: %d/%d", r.Correct, r.Total)
	if r.Total > 0 {
		fmt.Fprintf(a.out, " (%s)", formatPercent(float64(r.Correct)/float64(r.Total)))
	}
	fmt.Fprintln(a.out)
	if !r.FromServer {
		fmt.Fprintln(a.out, "result could not be saved; showing the local score")
	}
}
