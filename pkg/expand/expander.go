package expand

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/hn-fetch/pkg/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Prometheus metrics for expansion.
var (
	expandLevelsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hn_expand_levels_total",
		Help: "Total number of levels fetched by the expander",
	})

	expandItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hn_expand_items_total",
		Help: "Total number of results (present or absent) collected by the expander",
	})
)

// ErrNegativeBudget is returned when Expand is called with a budget below zero.
var ErrNegativeBudget = errors.New("recursion budget must be >= 0")

// DefaultItemURL is the Hacker News item address template.
const DefaultItemURL = "https://hacker-news.firebaseio.com/v0/item/%s.json"

// Fetcher is the single-item fetch capability the expander fans out over.
// *client.Client implements it.
type Fetcher interface {
	// Fetch returns the item at url, or nil when the store holds none.
	Fetch(ctx context.Context, url string) (*client.Item, error)
}

// Config holds expander configuration
type Config struct {
	// ItemURL is the address template child ids are formatted into
	ItemURL string
	// MaxConcurrency bounds the fetches in flight per level; 0 means one
	// goroutine per address
	MaxConcurrency int
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		ItemURL:        DefaultItemURL,
		MaxConcurrency: 0,
	}
}

// Expander fetches item trees level by level
type Expander struct {
	fetcher Fetcher
	config  Config
	logger  zerolog.Logger
}

// New creates a new expander
func New(fetcher Fetcher, config Config) *Expander {
	if config.ItemURL == "" {
		config.ItemURL = DefaultItemURL
	}
	if config.MaxConcurrency < 0 {
		config.MaxConcurrency = 0
	}

	return &Expander{
		fetcher: fetcher,
		config:  config,
		logger:  log.With().Str("component", "expander").Logger(),
	}
}

// Expand fetches every address in urls concurrently and, while budget
// remains, the children of the fetched items.
//
// The result holds one entry per fetch: this level's batch in input order,
// followed by the expansion of all the level's children with budget-1.
// Absent items appear as nil and contribute no children. Duplicate ids are
// fetched once per occurrence. The first failing fetch cancels its siblings
// and the error is returned without partial results.
func (e *Expander) Expand(ctx context.Context, urls []string, budget int) ([]*client.Item, error) {
	if budget < 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrNegativeBudget, budget)
	}

	start := time.Now()
	items, err := e.expand(ctx, urls, budget, 0)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Int("roots", len(urls)).
		Int("budget", budget).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Expansion complete")

	return items, nil
}

func (e *Expander) expand(ctx context.Context, urls []string, budget, depth int) ([]*client.Item, error) {
	if len(urls) == 0 {
		return []*client.Item{}, nil
	}

	e.logger.Debug().
		Int("depth", depth).
		Int("urls", len(urls)).
		Int("budget", budget).
		Msg("Fetching level")

	batch, err := e.fetchLevel(ctx, urls, depth)
	if err != nil {
		return nil, err
	}

	expandLevelsTotal.Inc()
	expandItemsTotal.Add(float64(len(batch)))

	if budget == 0 {
		return batch, nil
	}

	var next []string
	for i, item := range batch {
		kids := item.Children()
		if len(kids) == 0 {
			continue
		}

		e.logger.Debug().
			Int("depth", depth).
			Int("parent", i+1).
			Int("level_size", len(batch)).
			Int("queued", len(next)).
			Int("adding", len(kids)).
			Msg("Queueing children")

		for _, kid := range kids {
			next = append(next, client.FormatURL(e.config.ItemURL, kid.String()))
		}
	}

	if len(next) == 0 {
		return batch, nil
	}

	descendants, err := e.expand(ctx, next, budget-1, depth+1)
	if err != nil {
		return nil, err
	}

	return append(batch, descendants...), nil
}

// fetchLevel fetches all urls concurrently and waits for every one of them.
// Each goroutine owns one slot of the result, so no locking is needed.
func (e *Expander) fetchLevel(ctx context.Context, urls []string, depth int) ([]*client.Item, error) {
	batch := make([]*client.Item, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	if e.config.MaxConcurrency > 0 {
		g.SetLimit(e.config.MaxConcurrency)
	}

	for i, url := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			item, err := e.fetcher.Fetch(gctx, url)
			if err != nil {
				return err
			}
			batch[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		e.logger.Warn().
			Err(err).
			Int("depth", depth).
			Int("urls", len(urls)).
			Msg("Level fetch failed")
		return nil, fmt.Errorf("expand level %d: %w", depth, err)
	}

	return batch, nil
}
