// Package main is the entry point for the lolfetch command line tool. It
// wires the document store, the Riot API client, and the cached session
// together and prints flat tables for a summoner's matches.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"lolanalysis/config"
	"lolanalysis/internal/analysis"
	"lolanalysis/internal/httpclient"
	"lolanalysis/internal/league"
	"lolanalysis/internal/logging"
	"lolanalysis/internal/riot"
	"lolanalysis/internal/store"
	"lolanalysis/internal/tabular"
	"lolanalysis/internal/version"
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		summoner    = flag.String("summoner", "", "Summoner name (overrides LOL_SUMMONER)")
		region      = flag.String("region", "", "Platform region, e.g. euw, na, kr (overrides RIOT_REGION)")
		matches     = flag.Int("matches", 0, "Fetch the latest N match ids and print the combined summary table")
		timeline    = flag.String("timeline", "", "Print the event table for the given match id")
		champions   = flag.String("champions", "", "Print the per-champion time series for the given match id")
		mastery     = flag.Bool("mastery", false, "Print the summoner's champion mastery table")
		live        = flag.Bool("live", false, "Print the summoner's live game, if any")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Format, cfg.Logging.Level)

	if *summoner != "" {
		cfg.Riot.DefaultSummoner = *summoner
	}
	if *region != "" {
		cfg.Riot.Region = *region
	}
	if cfg.Riot.APIKey == "" {
		cfg.Riot.APIKey = promptAPIKey()
	}
	if cfg.Riot.APIKey == "" {
		slog.Error("no API key: set RIOT_API_KEY or run interactively")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.StoreSettings())
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("store opened", "type", st.Type())

	client, err := riot.NewClient(riot.Config{
		APIKey:     cfg.Riot.APIKey,
		Region:     cfg.Riot.Region,
		HTTPClient: httpclient.NewDefaultHTTPClient(),
	})
	if err != nil {
		slog.Error("failed to create API client", "error", err, "region", cfg.Riot.Region)
		os.Exit(1)
	}

	session, err := league.NewSession(league.Config{
		Store:           st,
		Client:          client,
		DdragonVersion:  cfg.Riot.DdragonVersion,
		DefaultSummoner: cfg.Riot.DefaultSummoner,
	})
	if err != nil {
		slog.Error("failed to create session", "error", err)
		os.Exit(1)
	}
	reshaper := analysis.NewReshaper(session)

	if err := run(ctx, session, reshaper, options{
		summoner:  cfg.Riot.DefaultSummoner,
		matches:   *matches,
		timeline:  *timeline,
		champions: *champions,
		mastery:   *mastery,
		live:      *live,
	}); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	summoner  string
	matches   int
	timeline  string
	champions string
	mastery   bool
	live      bool
}

func run(ctx context.Context, session *league.Session, reshaper *analysis.Reshaper, opts options) error {
	ran := false

	if opts.matches > 0 {
		ran = true
		ids, err := session.MatchIDs(ctx, opts.summoner, riot.MatchListOptions{Count: opts.matches})
		if err != nil {
			return fmt.Errorf("fetch match list: %w", err)
		}
		table, err := reshaper.CombineMatchSummaries(ctx, opts.summoner, ids)
		if err != nil {
			return fmt.Errorf("combine summaries: %w", err)
		}
		printTable(table)
	}

	if opts.timeline != "" {
		ran = true
		table, err := reshaper.EventTimeline(ctx, opts.timeline, analysis.AllEventJoins())
		if err != nil {
			return fmt.Errorf("event timeline for %s: %w", opts.timeline, err)
		}
		printTable(table)
	}

	if opts.champions != "" {
		ran = true
		table, err := reshaper.ChampionTimeline(ctx, opts.champions)
		if err != nil {
			return fmt.Errorf("champion timeline for %s: %w", opts.champions, err)
		}
		table, err = analysis.ExpandStats(table)
		if err != nil {
			return fmt.Errorf("expand stats for %s: %w", opts.champions, err)
		}
		printTable(table)
	}

	if opts.mastery {
		ran = true
		table, err := reshaper.MasteryTable(ctx, opts.summoner)
		if err != nil {
			return fmt.Errorf("mastery table: %w", err)
		}
		printTable(table)
	}

	if opts.live {
		ran = true
		raw, err := session.LiveGame(ctx, opts.summoner)
		if err != nil {
			return fmt.Errorf("live game: %w", err)
		}
		fmt.Println(string(raw))
	}

	if !ran {
		// Default action: show the summoner profile, cached after first use.
		raw, err := session.Summoner(ctx, opts.summoner)
		if err != nil {
			return fmt.Errorf("summoner profile: %w", err)
		}
		fmt.Println(string(raw))
	}
	return nil
}

// promptAPIKey reads the key from the terminal without echo. Returns empty
// when stdin is not a terminal.
func promptAPIKey() string {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ""
	}
	fmt.Fprint(os.Stderr, "Riot API key: ")
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(key))
}

func printTable(t *tabular.Table) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.Columns, "\t"))
	for i := range t.Rows {
		cells := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			if v := t.Get(i, c); v != nil {
				cells[j] = fmt.Sprintf("%v", v)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
}
