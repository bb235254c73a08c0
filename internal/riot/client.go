// Package riot is the HTTP client for the Riot game-data API. It owns the
// endpoint table, the region routing rules, and the single piece of response
// validation this system performs: the nested status.status_code marker that
// distinguishes an upstream error body from a payload.
package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"lolanalysis/internal/httpclient"
	"lolanalysis/internal/metrics"
)

// Config holds the options for creating a Client.
type Config struct {
	// APIKey is the credential attached to every platform/regional request
	// via the X-Riot-Token header.
	APIKey string

	// Region is the player-facing region code ('euw', 'na', ...). An unknown
	// region fails NewClient with ErrUnknownRegion.
	Region string

	// HTTPClient overrides the default transport. Optional.
	HTTPClient *http.Client

	// Base URL overrides, used by tests to point at a local server. When
	// empty they are derived from Region (platform + continental cluster)
	// and the ddragon CDN.
	PlatformBaseURL   string
	RegionalBaseURL   string
	DataDragonBaseURL string
}

// Client performs blocking, synchronous calls against the upstream API.
// There is no retry, backoff, or rate limiting; errors fail fast.
type Client struct {
	apiKey      string
	region      string
	platformURL string
	routingURL  string
	ddragonURL  string
	http        *http.Client
}

// NewClient validates the region and builds a client. No network call is made.
func NewClient(cfg Config) (*Client, error) {
	platform, ok := platformHosts[cfg.Region]
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: br, eune, euw, jp, kr, la1, la2, na, oc, tr, ru)", ErrUnknownRegion, cfg.Region)
	}
	routing := regionalClusters[cfg.Region]

	if cfg.PlatformBaseURL != "" {
		platform = cfg.PlatformBaseURL
	}
	if cfg.RegionalBaseURL != "" {
		routing = cfg.RegionalBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = httpclient.NewDefaultHTTPClient()
	}

	return &Client{
		apiKey:      cfg.APIKey,
		region:      cfg.Region,
		platformURL: platform,
		routingURL:  routing,
		ddragonURL:  cfg.DataDragonBaseURL,
		http:        httpClient,
	}, nil
}

// Region returns the region code the client was built for.
func (c *Client) Region() string {
	return c.region
}

// buildURL assembles the fully-qualified URL for a named endpoint and its
// single substituted identifier.
func (c *Client) buildURL(name, arg string, query url.Values) (string, error) {
	ep, ok := endpoints[name]
	if !ok {
		return "", fmt.Errorf("unknown endpoint: %s", name)
	}

	base := c.platformURL
	if ep.regional {
		base = c.routingURL
	}

	u := base + fmt.Sprintf(ep.path, url.PathEscape(arg))
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u, nil
}

// get performs a credentialed GET against a named endpoint, returning the raw
// JSON body after the error-marker check.
func (c *Client) get(ctx context.Context, name, arg string, query url.Values) (json.RawMessage, error) {
	u, err := c.buildURL(name, arg, query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, newTransportError(name, err)
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	return c.do(req, name)
}

// do executes the request and applies the single validation rule: a JSON body
// carrying status.status_code is an upstream error, everything else is a
// payload. No schema checking happens beyond that marker.
func (c *Client) do(req *http.Request, name string) (json.RawMessage, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(name, "transport_error").Inc()
		return nil, newTransportError(name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(name, "transport_error").Inc()
		return nil, newTransportError(name, err)
	}

	if status := gjson.GetBytes(body, "status.status_code"); status.Exists() {
		metrics.UpstreamRequests.WithLabelValues(name, "upstream_error").Inc()
		return nil, newUpstreamError(name, int(status.Int()), gjson.GetBytes(body, "status.message").String())
	}

	metrics.UpstreamRequests.WithLabelValues(name, "ok").Inc()
	return json.RawMessage(body), nil
}

// SummonerByName fetches the summoner profile for a display name.
func (c *Client) SummonerByName(ctx context.Context, name string) (json.RawMessage, error) {
	return c.get(ctx, EndpointSummonerByName, name, nil)
}

// ChampionMasteries fetches the mastery list for a platform summoner id.
func (c *Client) ChampionMasteries(ctx context.Context, summonerID string) (json.RawMessage, error) {
	return c.get(ctx, EndpointChampionMastery, summonerID, nil)
}

// LiveGame fetches the active game for a platform summoner id. The call
// fails upstream whenever no game is in progress.
func (c *Client) LiveGame(ctx context.Context, summonerID string) (json.RawMessage, error) {
	return c.get(ctx, EndpointLiveGame, summonerID, nil)
}

// MatchListOptions narrows a match-id list request. Zero values are omitted
// from the query, leaving the upstream defaults (most recent 20).
type MatchListOptions struct {
	Start int
	Count int
}

// MatchIDs fetches recent match ids for a global player id (puuid).
func (c *Client) MatchIDs(ctx context.Context, puuid string, opts MatchListOptions) (json.RawMessage, error) {
	query := url.Values{}
	if opts.Start > 0 {
		query.Set("start", strconv.Itoa(opts.Start))
	}
	if opts.Count > 0 {
		query.Set("count", strconv.Itoa(opts.Count))
	}
	return c.get(ctx, EndpointMatchList, puuid, query)
}

// MatchSummary fetches the end-of-game summary for a match id.
func (c *Client) MatchSummary(ctx context.Context, matchID string) (json.RawMessage, error) {
	return c.get(ctx, EndpointMatchSummary, matchID, nil)
}

// MatchTimeline fetches the per-frame timeline for a match id.
func (c *Client) MatchTimeline(ctx context.Context, matchID string) (json.RawMessage, error) {
	return c.get(ctx, EndpointMatchTimeline, matchID, nil)
}

// ChampionCatalog fetches the ddragon champion catalog for a version string.
// This hits the static CDN and carries no credential header.
func (c *Client) ChampionCatalog(ctx context.Context, version string) (json.RawMessage, error) {
	const name = "champ-list"

	u := fmt.Sprintf(ddragonChampionURL, url.PathEscape(version))
	if c.ddragonURL != "" {
		u = fmt.Sprintf(c.ddragonURL+"/cdn/%s/data/en_GB/champion.json", url.PathEscape(version))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, newTransportError(name, err)
	}

	return c.do(req, name)
}
