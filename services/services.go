// Package services implements the quiz operations on top of a repository.Store.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/vnkhanh/quiz-backend/repository"
	"github.com/vnkhanh/quiz-backend/rpc"
)

// Event types pushed to live dashboards.
const (
	EventQuestionsImported = "questions_imported"
	EventBookCreated       = "book_created"
	EventSessionRecorded   = "session_recorded"
)

// Notifier fans events out to subscribers. Delivery is best effort.
type Notifier interface {
	Notify(eventType string, payload any)
}

// StatsCache holds computed stats per user between submissions.
type StatsCache interface {
	Get(ctx context.Context, userID string) (rpc.Stats, bool)
	Set(ctx context.Context, userID string, stats rpc.Stats)
	Invalidate(ctx context.Context, userID string)
}

// TokenIssuer signs a session token for a logged-in user.
type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

type Options struct {
	Logger   *slog.Logger
	Tokens   TokenIssuer
	Cache    StatsCache
	Notifier Notifier
	Now      func() time.Time
	// Shuffle overrides the random permutation used by selection.
	Shuffle func(n int, swap func(i, j int))
}

type Services struct {
	Selector *Selector
	Catalog  *Catalog
	Recorder *Recorder
	Stats    *StatsAggregator
	Importer *Importer
	Accounts *Accounts
	History  *History
}

func New(store repository.Store, opts Options) *Services {
	opts = opts.withDefaults()

	selector := NewSelector(opts.Logger, opts.Shuffle)
	stats := &StatsAggregator{answers: store, cache: opts.Cache, log: opts.Logger}
	return &Services{
		Selector: selector,
		Stats:    stats,
		Catalog: &Catalog{
			questions: store,
			books:     store,
			selector:  selector,
			stats:     stats,
			events:    opts.Notifier,
			log:       opts.Logger,
		},
		Recorder: &Recorder{
			attempts: store,
			cache:    opts.Cache,
			events:   opts.Notifier,
			now:      opts.Now,
			log:      opts.Logger,
		},
		Importer: &Importer{
			questions: store,
			events:    opts.Notifier,
			now:       opts.Now,
			log:       opts.Logger,
		},
		Accounts: &Accounts{
			users:  store,
			tokens: opts.Tokens,
			now:    opts.Now,
			log:    opts.Logger,
		},
		History: &History{attempts: store},
	}
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Cache == nil {
		o.Cache = nopCache{}
	}
	if o.Notifier == nil {
		o.Notifier = nopNotifier{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, any) {}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (rpc.Stats, bool) { return rpc.Stats{}, false }
func (nopCache) Set(context.Context, string, rpc.Stats)        {}
func (nopCache) Invalidate(context.Context, string)            {}
