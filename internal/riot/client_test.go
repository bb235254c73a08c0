package riot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientUnknownRegion(t *testing.T) {
	_, err := NewClient(Config{APIKey: "k", Region: "moon"})
	require.ErrorIs(t, err, ErrUnknownRegion)
}

func TestRegionRouting(t *testing.T) {
	c, err := NewClient(Config{APIKey: "k", Region: "euw"})
	require.NoError(t, err)
	assert.Equal(t, "https://euw1.api.riotgames.com", c.platformURL)
	assert.Equal(t, "https://europe.api.riotgames.com", c.routingURL)

	c, err = NewClient(Config{APIKey: "k", Region: "na"})
	require.NoError(t, err)
	assert.Equal(t, "https://na1.api.riotgames.com", c.platformURL)
	assert.Equal(t, "https://americas.api.riotgames.com", c.routingURL)

	c, err = NewClient(Config{APIKey: "k", Region: "kr"})
	require.NoError(t, err)
	assert.Equal(t, "https://asia.api.riotgames.com", c.routingURL)
}

func TestBuildURL(t *testing.T) {
	c, err := NewClient(Config{APIKey: "k", Region: "euw"})
	require.NoError(t, err)

	u, err := c.buildURL(EndpointSummonerByName, "Bob", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://euw1.api.riotgames.com/lol/summoner/v4/summoners/by-name/Bob", u)

	// match endpoints ride the continental routing host
	u, err = c.buildURL(EndpointMatchTimeline, "EUW1_5612017679", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://europe.api.riotgames.com/lol/match/v5/matches/EUW1_5612017679/timeline", u)

	_, err = c.buildURL("no-such-endpoint", "x", nil)
	require.ErrorContains(t, err, "unknown endpoint")
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		APIKey:            "test-key",
		Region:            "euw",
		PlatformBaseURL:   srv.URL,
		RegionalBaseURL:   srv.URL,
		DataDragonBaseURL: srv.URL,
	})
	require.NoError(t, err)
	return c
}

func TestCredentialHeaderAttached(t *testing.T) {
	var gotToken, gotPath string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Riot-Token")
		gotPath = r.URL.Path
		w.Write([]byte(`{"id":"abc"}`))
	}))

	raw, err := c.SummonerByName(context.Background(), "Bob")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc"}`, string(raw))
	assert.Equal(t, "test-key", gotToken)
	assert.Equal(t, "/lol/summoner/v4/summoners/by-name/Bob", gotPath)
}

func TestMatchListQueryParams(t *testing.T) {
	var gotQuery string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`["EUW1_1"]`))
	}))

	_, err := c.MatchIDs(context.Background(), "puuid-1", MatchListOptions{Start: 20, Count: 40})
	require.NoError(t, err)
	assert.Equal(t, "count=40&start=20", gotQuery)
}

func TestErrorMarkerDetection(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":{"status_code":404,"message":"Data not found"}}`))
	}))

	_, err := c.MatchSummary(context.Background(), "EUW1_404")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, EndpointMatchSummary, apiErr.Endpoint)
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "Data not found")
}

func TestChampionCatalogUnauthenticated(t *testing.T) {
	var gotToken, gotPath string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Riot-Token")
		gotPath = r.URL.Path
		w.Write([]byte(`{"data":{"Aatrox":{"key":"266"}}}`))
	}))

	raw, err := c.ChampionCatalog(context.Background(), "9.3.1")
	require.NoError(t, err)
	assert.Empty(t, gotToken)
	assert.Equal(t, "/cdn/9.3.1/data/en_GB/champion.json", gotPath)
	assert.Contains(t, string(raw), "Aatrox")
}

func TestTransportErrorWrapsEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force connection refused

	c, err := NewClient(Config{
		APIKey:          "k",
		Region:          "euw",
		PlatformBaseURL: srv.URL,
		RegionalBaseURL: srv.URL,
	})
	require.NoError(t, err)

	_, err = c.MatchTimeline(context.Background(), "EUW1_1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, EndpointMatchTimeline, apiErr.Endpoint)
	assert.Zero(t, apiErr.StatusCode)
	assert.Error(t, apiErr.Unwrap())
}
