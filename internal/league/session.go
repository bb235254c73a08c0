// Package league is the cached accessor layer: every retrieval checks the
// local document store first and only goes upstream on a miss. A session
// owns explicit references to the store and the API client it composes;
// nothing here is process-global.
package league

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"lolanalysis/internal/metrics"
	"lolanalysis/internal/riot"
	"lolanalysis/internal/store"
)

// ErrNoSummonerName is returned when an operation needs a display name and
// neither an argument nor a session default was provided.
var ErrNoSummonerName = errors.New("summoner name required")

// Config holds the options for creating a Session.
type Config struct {
	// Store is the document store used as the read-through cache.
	Store store.Store

	// Client performs the upstream calls on cache misses.
	Client *riot.Client

	// DdragonVersion selects the champion catalog version (default 9.3.1).
	DdragonVersion string

	// DefaultSummoner is used by name-taking operations when the caller
	// passes an empty name.
	DefaultSummoner string

	// DisableCache turns off both cache reads and writes for this session.
	// Every retrieval then goes upstream.
	DisableCache bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Session is the cache-backed accessor for one credential/region pair.
// It is synchronous and single-user; concurrent sessions sharing one store
// have no defined behaviour.
type Session struct {
	store    store.Store
	api      *riot.Client
	caching  bool
	ddragon  string
	summoner string
	log      *slog.Logger
}

// NewSession composes a session from its dependencies.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Store == nil && !cfg.DisableCache {
		return nil, fmt.Errorf("store is required unless caching is disabled")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("client is required")
	}

	ddragon := cfg.DdragonVersion
	if ddragon == "" {
		ddragon = "9.3.1"
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Session{
		store:    cfg.Store,
		api:      cfg.Client,
		caching:  !cfg.DisableCache,
		ddragon:  ddragon,
		summoner: cfg.DefaultSummoner,
		log:      log,
	}, nil
}

// resolveName picks the name argument or the session default.
func (s *Session) resolveName(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if s.summoner != "" {
		return s.summoner, nil
	}
	return "", ErrNoSummonerName
}

// cached runs the read-through pattern for one collection/key pair: cache
// read, then fetch, then best-effort persist. A failed persist is logged and
// the fetched value is still returned.
func (s *Session) cached(ctx context.Context, collection, keyField, keyValue string, fetch func(context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	if s.caching {
		payload, found, err := s.store.Get(ctx, collection, keyField, keyValue)
		if err != nil {
			s.log.Warn("cache read failed", "collection", collection, "key", keyValue, "error", err)
		} else if found {
			metrics.CacheHits.WithLabelValues(collection).Inc()
			s.log.Debug("cache hit", "collection", collection, "key", keyValue)
			return payload, nil
		}
		metrics.CacheMisses.WithLabelValues(collection).Inc()
	}

	payload, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if s.caching {
		ok, err := s.store.Put(ctx, collection, keyField, keyValue, payload)
		if err != nil || !ok {
			metrics.CacheWriteFailures.WithLabelValues(collection).Inc()
			s.log.Warn("cache write failed", "collection", collection, "key", keyValue, "error", err)
		} else {
			s.log.Debug("cached", "collection", collection, "key", keyValue)
		}
	}

	return payload, nil
}

// Summoner returns the summoner profile for a display name, cached
// indefinitely under that name. A rename silently invalidates nothing;
// the stale profile stays until the store is cleared by hand.
func (s *Session) Summoner(ctx context.Context, name string) (json.RawMessage, error) {
	name, err := s.resolveName(name)
	if err != nil {
		return nil, err
	}

	return s.cached(ctx, store.CollectionSummoners, "account_name", name, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.SummonerByName(ctx, name)
	})
}

// summonerField resolves one identifier field from the (cached) profile.
func (s *Session) summonerField(ctx context.Context, name, path string) (string, error) {
	profile, err := s.Summoner(ctx, name)
	if err != nil {
		return "", err
	}

	v := gjson.GetBytes(profile, path)
	if !v.Exists() {
		return "", fmt.Errorf("summoner profile for %q has no %s field", name, path)
	}
	return v.String(), nil
}

// MatchIDs fetches the recent match ids for a summoner. The API stays the
// source of truth: the call always goes upstream, and on success the ids are
// merged into the stored per-account list (set union, insertion order kept
// for new entries). The fresh ids from the API are returned.
func (s *Session) MatchIDs(ctx context.Context, name string, opts riot.MatchListOptions) ([]string, error) {
	name, err := s.resolveName(name)
	if err != nil {
		return nil, err
	}

	puuid, err := s.summonerField(ctx, name, "puuid")
	if err != nil {
		return nil, err
	}

	raw, err := s.api.MatchIDs(ctx, puuid, opts)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("match-list response is not a string array: %w", err)
	}

	if s.caching {
		if _, err := s.UpdateMatchIDs(ctx, puuid, ids); err != nil {
			metrics.CacheWriteFailures.WithLabelValues(store.CollectionMatchIDs).Inc()
			s.log.Warn("match-id merge failed", "account", puuid, "error", err)
		}
	}

	return ids, nil
}

// matchIDList is the stored shape of the per-account match-id accumulator.
type matchIDList struct {
	Matches []string `json:"matches"`
}

// UpdateMatchIDs merges newly observed match ids into the stored list for an
// account id. Duplicates are skipped and existing order is preserved; the
// merged list is returned. The merge is idempotent.
func (s *Session) UpdateMatchIDs(ctx context.Context, accountID string, newIDs []string) ([]string, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no store configured")
	}

	var list matchIDList

	stored, found, err := s.store.Get(ctx, store.CollectionMatchIDs, "account_id", accountID)
	if err != nil {
		return nil, err
	}
	if found {
		if err := json.Unmarshal(stored, &list); err != nil {
			return nil, fmt.Errorf("stored match-id list for %s is corrupt: %w", accountID, err)
		}
	}

	seen := make(map[string]bool, len(list.Matches))
	for _, id := range list.Matches {
		seen[id] = true
	}
	for _, id := range newIDs {
		if !seen[id] {
			list.Matches = append(list.Matches, id)
			seen[id] = true
		}
	}

	payload, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	if err := s.store.Replace(ctx, store.CollectionMatchIDs, "account_id", accountID, payload); err != nil {
		return nil, err
	}

	return list.Matches, nil
}

// StoredMatchIDs returns the accumulated match-id list for a summoner, or an
// empty list when nothing has been stored yet.
func (s *Session) StoredMatchIDs(ctx context.Context, name string) ([]string, error) {
	if s.store == nil {
		return nil, nil
	}

	name, err := s.resolveName(name)
	if err != nil {
		return nil, err
	}

	puuid, err := s.summonerField(ctx, name, "puuid")
	if err != nil {
		return nil, err
	}

	stored, found, err := s.store.Get(ctx, store.CollectionMatchIDs, "account_id", puuid)
	if err != nil || !found {
		return nil, err
	}

	var list matchIDList
	if err := json.Unmarshal(stored, &list); err != nil {
		return nil, fmt.Errorf("stored match-id list for %s is corrupt: %w", puuid, err)
	}
	return list.Matches, nil
}

// MatchSummary returns the end-of-game summary for a match id, cached by
// match id.
func (s *Session) MatchSummary(ctx context.Context, matchID string) (json.RawMessage, error) {
	return s.cached(ctx, store.CollectionSummaries, "match_id", matchID, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.MatchSummary(ctx, matchID)
	})
}

// MatchTimeline returns the per-frame timeline for a match id, cached by
// match id.
func (s *Session) MatchTimeline(ctx context.Context, matchID string) (json.RawMessage, error) {
	return s.cached(ctx, store.CollectionTimelines, "match_id", matchID, func(ctx context.Context) (json.RawMessage, error) {
		return s.api.MatchTimeline(ctx, matchID)
	})
}

// ChampionCatalog returns the ddragon champion mapping for the session's
// catalog version. Only the data mapping is kept; it is immutable per
// version once fetched.
func (s *Session) ChampionCatalog(ctx context.Context) (json.RawMessage, error) {
	return s.cached(ctx, store.CollectionChampions, "ddragon", s.ddragon, func(ctx context.Context) (json.RawMessage, error) {
		raw, err := s.api.ChampionCatalog(ctx, s.ddragon)
		if err != nil {
			return nil, err
		}
		data := gjson.GetBytes(raw, "data")
		if !data.Exists() {
			return nil, fmt.Errorf("champion catalog %s has no data mapping", s.ddragon)
		}
		return json.RawMessage(data.Raw), nil
	})
}

// ChampionMasteries returns the mastery list for a summoner. Mastery moves
// with every game played, so this is never cached.
func (s *Session) ChampionMasteries(ctx context.Context, name string) (json.RawMessage, error) {
	name, err := s.resolveName(name)
	if err != nil {
		return nil, err
	}

	id, err := s.summonerField(ctx, name, "id")
	if err != nil {
		return nil, err
	}

	return s.api.ChampionMasteries(ctx, id)
}

// LiveGame returns the summoner's active game. Point-in-time by nature and
// never cached; when no game is running the upstream error propagates.
func (s *Session) LiveGame(ctx context.Context, name string) (json.RawMessage, error) {
	name, err := s.resolveName(name)
	if err != nil {
		return nil, err
	}

	id, err := s.summonerField(ctx, name, "id")
	if err != nil {
		return nil, err
	}

	return s.api.LiveGame(ctx, id)
}

// StoredSummoners lists the display names with a cached profile.
func (s *Session) StoredSummoners(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.Keys(ctx, store.CollectionSummoners)
}
