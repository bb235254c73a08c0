package league

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolanalysis/internal/riot"
	"lolanalysis/internal/store"
)

// fakeUpstream serves canned Riot responses and counts hits per path prefix.
type fakeUpstream struct {
	mu       sync.Mutex
	hits     map[string]int
	matchIDs string // JSON array served by the match-list endpoint
	liveErr  bool
}

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		hits:     make(map[string]int),
		matchIDs: `["EUW1_1","EUW1_2"]`,
	}
}

func (f *fakeUpstream) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for path, n := range f.hits {
		if strings.HasPrefix(path, prefix) {
			total += n
		}
	}
	return total
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	f.mu.Unlock()

	switch {
	case strings.HasPrefix(r.URL.Path, "/lol/summoner/v4/summoners/by-name/"):
		w.Write([]byte(`{"id":"enc-id-1","accountId":"acc-1","puuid":"puuid-1","name":"Bob"}`))
	case strings.HasPrefix(r.URL.Path, "/lol/match/v5/matches/by-puuid/"):
		w.Write([]byte(f.matchIDs))
	case strings.HasPrefix(r.URL.Path, "/lol/match/v5/matches/"):
		w.Write([]byte(`{"info":{"participants":[]}}`))
	case strings.HasPrefix(r.URL.Path, "/lol/champion-mastery/"):
		w.Write([]byte(`[{"championId":266,"championLevel":7}]`))
	case strings.HasPrefix(r.URL.Path, "/lol/spectator/"):
		if f.liveErr {
			w.Write([]byte(`{"status":{"status_code":404,"message":"no active game"}}`))
			return
		}
		w.Write([]byte(`{"gameId":123}`))
	case strings.HasPrefix(r.URL.Path, "/cdn/"):
		w.Write([]byte(`{"data":{"Aatrox":{"key":"266","name":"Aatrox"}}}`))
	default:
		w.Write([]byte(`{"status":{"status_code":404,"message":"not found"}}`))
	}
}

func newTestSession(t *testing.T, upstream *fakeUpstream, mutate func(*Config)) *Session {
	t.Helper()

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client, err := riot.NewClient(riot.Config{
		APIKey:            "k",
		Region:            "euw",
		PlatformBaseURL:   srv.URL,
		RegionalBaseURL:   srv.URL,
		DataDragonBaseURL: srv.URL,
	})
	require.NoError(t, err)

	st, err := store.NewSQLite(store.SQLiteConfig{PathPrefix: filepath.Join(t.TempDir(), "loldb")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := Config{Store: st, Client: client, DefaultSummoner: "Bob"}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSession(cfg)
	require.NoError(t, err)
	return s
}

func TestSummonerCacheIdempotence(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestSession(t, upstream, nil)
	ctx := context.Background()

	first, err := s.Summoner(ctx, "Bob")
	require.NoError(t, err)

	second, err := s.Summoner(ctx, "Bob")
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, 1, upstream.count("/lol/summoner/"), "second lookup must be served from cache")
}

func TestMatchSummaryCacheIdempotence(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestSession(t, upstream, nil)
	ctx := context.Background()

	_, err := s.MatchSummary(ctx, "EUW1_1")
	require.NoError(t, err)
	_, err = s.MatchSummary(ctx, "EUW1_1")
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.count("/lol/match/v5/matches/EUW1_1"))
}

func TestCachingDisabled(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestSession(t, upstream, func(cfg *Config) { cfg.DisableCache = true })
	ctx := context.Background()

	_, err := s.Summoner(ctx, "Bob")
	require.NoError(t, err)
	_, err = s.Summoner(ctx, "Bob")
	require.NoError(t, err)

	assert.Equal(t, 2, upstream.count("/lol/summoner/"))
}

func TestMatchIDsMergeIdempotence(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestSession(t, upstream, nil)
	ctx := context.Background()

	merged, err := s.UpdateMatchIDs(ctx, "acc-1", []string{"m1", "m2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, merged)

	merged, err = s.UpdateMatchIDs(ctx, "acc-1", []string{"m2", "m3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3"}, merged)
}

func TestMatchIDsAlwaysFetchAndAccumulate(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestSession(t, upstream, nil)
	ctx := context.Background()

	ids, err := s.MatchIDs(ctx, "", riot.MatchListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"EUW1_1", "EUW1_2"}, ids)

	// New ids appear upstream: the list call goes out again and the stored
	// accumulator grows without duplicates.
	upstream.matchIDs = `["EUW1_2","EUW1_3"]`
	ids, err = s.MatchIDs(ctx, "", riot.MatchListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"EUW1_2", "EUW1_3"}, ids)

	assert.Equal(t, 2, upstream.count("/lol/match/v5/matches/by-puuid/"))

	stored, err := s.StoredMatchIDs(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"EUW1_1", "EUW1_2", "EUW1_3"}, stored)
}

func TestMatchIDsTriggerSummonerLookup(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestSession(t, upstream, nil)

	// No prior Summoner call: the id-substituted endpoint resolves the
	// profile itself on first use.
	_, err := s.MatchIDs(context.Background(), "Bob", riot.MatchListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.count("/lol/summoner/"))
}

func TestMasteriesNeverCached(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestSession(t, upstream, nil)
	ctx := context.Background()

	_, err := s.ChampionMasteries(ctx, "Bob")
	require.NoError(t, err)
	_, err = s.ChampionMasteries(ctx, "Bob")
	require.NoError(t, err)

	assert.Equal(t, 2, upstream.count("/lol/champion-mastery/"))
}

func TestLiveGameFailurePropagates(t *testing.T) {
	upstream := newFakeUpstream()
	upstream.liveErr = true
	s := newTestSession(t, upstream, nil)

	_, err := s.LiveGame(context.Background(), "Bob")
	var apiErr *riot.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)

	// A failed lookup must not leave a cached negative result behind.
	upstream.liveErr = false
	_, err = s.LiveGame(context.Background(), "Bob")
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.count("/lol/spectator/"))
}

func TestChampionCatalogStoresDataMapping(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestSession(t, upstream, nil)
	ctx := context.Background()

	catalog, err := s.ChampionCatalog(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Aatrox":{"key":"266","name":"Aatrox"}}`, string(catalog))

	_, err = s.ChampionCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.count("/cdn/"))
}

func TestMissingSummonerName(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestSession(t, upstream, func(cfg *Config) { cfg.DefaultSummoner = "" })

	_, err := s.Summoner(context.Background(), "")
	require.ErrorIs(t, err, ErrNoSummonerName)
}

func TestDefaultSummonerFallback(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestSession(t, upstream, nil)

	raw, err := s.Summoner(context.Background(), "")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "puuid-1")
}

func TestStoredSummoners(t *testing.T) {
	upstream := newFakeUpstream()
	s := newTestSession(t, upstream, nil)
	ctx := context.Background()

	_, err := s.Summoner(ctx, "Bob")
	require.NoError(t, err)

	names, err := s.StoredSummoners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, names)
}
