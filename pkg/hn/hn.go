// Package hn is the library entry point: it fetches a user's items, or any
// list of items, and expands their reply trees.
package hn

import (
	"context"
	"fmt"

	"github.com/Sternrassler/hn-fetch/pkg/client"
	"github.com/Sternrassler/hn-fetch/pkg/config"
	"github.com/Sternrassler/hn-fetch/pkg/expand"
	"github.com/rs/zerolog/log"
)

// GetUserItems fetches the profile of username and, for budget > 0, the
// items it submitted and their replies down to budget-1 further levels.
// The profile itself is the first entry of the result.
func GetUserItems(ctx context.Context, cfg config.Config, username string, budget int) ([]*client.Item, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	log.Debug().Str("component", "hn").Str("author", username).Msg("Fetching posts of author")
	return FetchItems(ctx, cfg, []string{cfg.UserAddress(username)}, budget)
}

// GetItems expands the items with the given ids.
func GetItems(ctx context.Context, cfg config.Config, ids []string, budget int) ([]*client.Item, error) {
	urls := make([]string, len(ids))
	for i, id := range ids {
		urls[i] = cfg.ItemAddress(id)
	}
	return FetchItems(ctx, cfg, urls, budget)
}

// FetchItems expands urls with a client that lives for this call only; its
// pooled connections are released on every return path.
func FetchItems(ctx context.Context, cfg config.Config, urls []string, budget int) ([]*client.Item, error) {
	log.Debug().
		Str("component", "hn").
		Int("urls", len(urls)).
		Int("recursive", budget).
		Msg("Fetching urls")

	c, err := client.New(cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	defer c.Close()

	return expand.New(c, cfg.ExpandConfig()).Expand(ctx, urls, budget)
}
