package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/hn-fetch/pkg/client"
	"github.com/Sternrassler/hn-fetch/pkg/config"
	"github.com/Sternrassler/hn-fetch/pkg/hn"
	"github.com/Sternrassler/hn-fetch/pkg/logging"
	"github.com/Sternrassler/hn-fetch/pkg/metrics"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time.
var Version = "dev"

// options holds the flags that are not configuration.
type options struct {
	configFile string
	author     string
	items      []string
	recursive  int
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	opts := &options{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "hn-fetch",
		Short: "Fetch Hacker News posts and their reply trees",
		Long: `hn-fetch downloads a user's submissions (or any items) from the Hacker News
API and expands replies level by level, fetching every level concurrently.

  hn-fetch --author whoishiring --recursive 2
  hn-fetch --item 8863 --item 121003 --recursive 1 --verbose`,
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v, opts, stdout)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default ./hn-fetch.yaml or $HOME/.hn-fetch/hn-fetch.yaml)")
	flags.StringVar(&opts.author, "author", "", "Name of posts author")
	flags.StringSliceVar(&opts.items, "item", nil, "Item id to fetch (repeatable)")
	flags.IntVar(&opts.recursive, "recursive", 0, "Recursion level (default 0)")
	flags.BoolVar(&opts.verbose, "verbose", false, "Detailed output")

	flags.Duration("timeout", client.DefaultTimeout, "Per-fetch timeout")
	flags.Int("max-concurrency", 0, "Max fetches in flight per level (0 = unbounded)")
	flags.String("item-url", config.DefaultItemURL, "Item address template")
	flags.String("user-url", config.DefaultUserURL, "User address template")
	flags.String("user-agent", client.DefaultUserAgent, "User-Agent header")
	flags.String("log-level", "info", "Log level (debug, info, warn, error, disabled)")
	flags.Bool("pretty", false, "Human-readable log output")

	for key, name := range map[string]string{
		"timeout":         "timeout",
		"max_concurrency": "max-concurrency",
		"item_url":        "item-url",
		"user_url":        "user-url",
		"user_agent":      "user-agent",
		"log.level":       "log-level",
		"log.pretty":      "pretty",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic("failed to bind pflag: " + err.Error())
		}
	}

	return cmd
}

func run(ctx context.Context, v *viper.Viper, opts *options, stdout io.Writer) error {
	cfg, err := config.Load(v, opts.configFile)
	if err != nil {
		return err
	}

	logging.Setup(logging.ForCLI(cfg.Log.Level, cfg.Log.Pretty, opts.verbose))
	logger := logging.NewLogger("cli")

	if opts.recursive < 0 {
		return fmt.Errorf("--recursive must be >= 0 (got %d)", opts.recursive)
	}

	if opts.author == "" && len(opts.items) == 0 {
		logger.Debug().Msg("Nothing to fetch: neither --author nor --item given")
		return nil
	}

	var data []*client.Item
	if opts.author != "" {
		items, err := hn.GetUserItems(ctx, *cfg, opts.author, opts.recursive)
		if err != nil {
			return err
		}
		data = append(data, items...)
	}
	if len(opts.items) > 0 {
		items, err := hn.GetItems(ctx, *cfg, opts.items, opts.recursive)
		if err != nil {
			return err
		}
		data = append(data, items...)
	}

	logSummary(logger)

	fmt.Fprintf(stdout, "fetched %d posts\n", len(data))
	return nil
}

// logSummary reports the fetch counters at debug level.
func logSummary(logger zerolog.Logger) {
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		return
	}

	samples, err := metrics.Counters(metrics.Gatherer)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to gather metrics")
		return
	}

	event := logger.Debug()
	for _, s := range samples {
		event = event.Float64(s.Name, s.Value)
	}
	event.Msg("Fetch summary")
}
