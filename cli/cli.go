// Package cli is the terminal front end: login, subject or book pick, a timed
// quiz, and the stats and history views.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vnkhanh/quiz-backend/client"
	"github.com/vnkhanh/quiz-backend/models"
)

const (
	defaultServer       = "http://127.0.0.1:8080"
	defaultHTTPTimeout  = 5 * time.Second
	defaultHistoryLimit = 10
)

type Config struct {
	ServerURL    string
	SessionPath  string
	HTTPTimeout  time.Duration
	Count        int
	TickInterval time.Duration
	Logger       *slog.Logger
}

type app struct {
	out       io.Writer
	lines     <-chan string
	api       *client.HTTPClient
	auth      *client.AuthSession
	cfg       Config
	serverURL string
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.SessionPath == "" {
		cfg.SessionPath = client.DefaultSessionPath()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	a := &app{out: out, lines: readLines(in), cfg: cfg, serverURL: serverURL}
	a.api = client.NewHTTPClient(serverURL, &http.Client{Timeout: cfg.HTTPTimeout},
		client.WithToken(func() string { return a.auth.Token() }))
	a.auth = client.NewAuthSession(a.api, client.FileStore{Path: cfg.SessionPath})
	if err := a.auth.Restore(); err != nil {
		fmt.Fprintf(out, "could not restore session: %v\n", err)
	}

	fmt.Fprintf(out, "supergenius quiz\nserver=%s\n", serverURL)
	if u := a.auth.User(); u != nil {
		fmt.Fprintf(out, "logged in as %s (%s)\n", u.Username, u.UserID)
	}
	fmt.Fprintln(out)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, ok := a.next(ctx)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		var err error
		switch strings.ToLower(args[0]) {
		case "help":
			printHelp(out)
		case "exit", "quit":
			return nil
		case "login":
			if len(args) != 3 {
				fmt.Fprintln(out, "usage: login <username> <password>")
				continue
			}
			err = a.login(ctx, args[1], args[2])
		case "logout":
			err = a.auth.Logout()
			if err == nil {
				fmt.Fprintln(out, "logged out")
			}
		case "whoami":
			if u := a.auth.User(); u != nil {
				fmt.Fprintf(out, "%s (%s)\n", u.Username, u.UserID)
			} else {
				fmt.Fprintln(out, "not logged in")
			}
		case "genres":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: genres <subject>")
				continue
			}
			err = a.genres(ctx, args[1])
		case "books":
			subject := ""
			if len(args) > 1 {
				subject = args[1]
			}
			err = a.books(ctx, subject)
		case "play":
			if len(args) < 2 || len(args) > 3 {
				fmt.Fprintln(out, "usage: play <subject> [genre_id]")
				continue
			}
			genre := ""
			if len(args) == 3 {
				genre = args[2]
			}
			err = a.play(ctx, client.RunnerConfig{Subject: args[1], GenreID: genre})
		case "book":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: book <book_id>")
				continue
			}
			err = a.play(ctx, client.RunnerConfig{BookID: args[1]})
		case "stats":
			err = a.stats(ctx)
		case "history":
			limit, parseErr := parsePositiveLimit(args, 1, defaultHistoryLimit)
			if parseErr != nil {
				fmt.Fprintf(out, "invalid history limit: %v\n", parseErr)
				continue
			}
			err = a.history(ctx, limit)
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", describeClientError(err, serverURL))
		}
	}
}

// next waits for a line of input or cancellation.
func (a *app) next(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-a.lines:
		return strings.TrimSpace(line), ok
	}
}

func (a *app) login(ctx context.Context, username, password string) error {
	if err := a.auth.Login(ctx, username, password); err != nil {
		return err
	}
	u := a.auth.User()
	fmt.Fprintf(a.out, "welcome, %s (%s)\n", u.Username, u.UserID)
	return nil
}

func (a *app) genres(ctx context.Context, subject string) error {
	resp, err := a.api.GetGenres(ctx, subject)
	if err != nil {
		return err
	}
	if !resp.Success {
		return errors.New(resp.Error)
	}
	if len(resp.Genres) == 0 {
		fmt.Fprintf(a.out, "no genres for %s\n", subject)
		return nil
	}
	for _, g := range resp.Genres {
		fmt.Fprintf(a.out, "%s  %s (%d)\n", g.GenreID, g.GenreName, g.Count)
	}
	return nil
}

func (a *app) books(ctx context.Context, subject string) error {
	userID := ""
	if u := a.auth.User(); u != nil {
		userID = u.UserID
	}
	resp, err := a.api.GetBooks(ctx, subject, userID)
	if err != nil {
		return err
	}
	if !resp.Success {
		return errors.New(resp.Error)
	}
	if resp.Total == 0 {
		fmt.Fprintln(a.out, "no books")
		return nil
	}
	for _, b := range resp.Books {
		fmt.Fprintf(a.out, "%s  [%s] %s  %d questions", b.BookID, models.SubjectLabel(b.Subject), b.Title, b.QuestionCount)
		if userID != "" && b.AnsweredCount > 0 {
			fmt.Fprintf(a.out, "  %d/%d correct (%d%%)", b.CorrectCount, b.AnsweredCount, b.Accuracy)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

func (a *app) stats(ctx context.Context) error {
	u, err := a.auth.Require()
	if err != nil {
		return err
	}
	resp, err := a.api.GetStats(ctx, u.UserID)
	if err != nil {
		return err
	}
	if !resp.Success || resp.Stats == nil {
		return errors.New(resp.Error)
	}
	st := resp.Stats
	fmt.Fprintf(a.out, "answered %d, correct %d, accuracy %s\n",
		st.TotalQuestions, st.TotalCorrect, formatPercent(st.OverallAccuracy))
	for _, subject := range models.Subjects() {
		s, ok := st.BySubject[subject]
		if !ok {
			continue
		}
		fmt.Fprintf(a.out, "  %-4s %d/%d\n", subject, s.Correct, s.Total)
	}
	return nil
}

func (a *app) history(ctx context.Context, limit int) error {
	u, err := a.auth.Require()
	if err != nil {
		return err
	}
	resp, err := a.api.GetHistory(ctx, u.UserID, limit)
	if err != nil {
		return err
	}
	if !resp.Success {
		return errors.New(resp.Error)
	}
	if len(resp.History) == 0 {
		fmt.Fprintln(a.out, "no sessions yet")
		return nil
	}
	for i, h := range resp.History {
		fmt.Fprintf(a.out, "%d. %s %s %d/%d (%ds left)\n",
			i+1, h.FinishedAt.Local().Format("2006-01-02 15:04"), h.Subject,
			h.CorrectCount, h.TotalQuestions, h.TimeRemaining)
	}
	return nil
}

func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  login <username> <password>")
	fmt.Fprintln(out, "  logout")
	fmt.Fprintln(out, "  whoami")
	fmt.Fprintln(out, "  genres <subject>")
	fmt.Fprintln(out, "  books [subject]")
	fmt.Fprintln(out, "  play <subject> [genre_id]   subjects: jp math sci soc all")
	fmt.Fprintln(out, "  book <book_id>")
	fmt.Fprintln(out, "  stats")
	fmt.Fprintln(out, "  history [limit]")
	fmt.Fprintln(out, "  exit")
}
