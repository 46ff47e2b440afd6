// Package blizzard is the REST client for the Blizzard Battle.net game-data
// API: OAuth client-credentials authentication, connected-realm auction
// dumps, the connected-realm index, and item catalog search.
package blizzard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/averdin/realmbroker/internal/domain"
)

// Client is the Battle.net REST client. It lazily obtains an access token via
// the client-credentials grant and refreshes it shortly before expiry. A
// failed token exchange surfaces as domain.ErrUnauthorized, which the scanner
// treats as fatal to the whole sweep.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a Battle.net client with the given API credentials.
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// token returns a valid access token, exchanging credentials when the cached
// one is missing or about to expire.
func (c *Client) token(ctx context.Context, region string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	endpoint := fmt.Sprintf("https://%s.battle.net/oauth/token", region)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("blizzard: create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("blizzard: token exchange: %w: %v", domain.ErrUnauthorized, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("blizzard: token exchange status %d: %s: %w",
			resp.StatusCode, string(body), domain.ErrUnauthorized)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("blizzard: decode token: %w", err)
	}

	c.accessToken = tok.AccessToken
	// Refresh a minute early so in-flight requests never race expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

// doGet performs an authenticated GET against the region's game-data API and
// returns the response body.
func (c *Client) doGet(ctx context.Context, region, path string, params url.Values) ([]byte, error) {
	tok, err := c.token(ctx, region)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("https://%s.api.blizzard.com%s", region, path)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("blizzard: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blizzard: get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Drop the cached token so the next call re-authenticates.
		c.mu.Lock()
		c.accessToken = ""
		c.mu.Unlock()
		return nil, fmt.Errorf("blizzard: get %s status %d: %w", path, resp.StatusCode, domain.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("blizzard: get %s status %d: %s", path, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("blizzard: read response %s: %w", path, err)
	}
	return body, nil
}

// GetAuctions returns the full listing dump for one connected realm. The
// dump can run to tens of megabytes on populated realms.
func (c *Client) GetAuctions(ctx context.Context, region string, realmID int64) ([]domain.Auction, error) {
	params := url.Values{}
	params.Set("namespace", "dynamic-"+region)

	path := fmt.Sprintf("/data/wow/connected-realm/%d/auctions", realmID)
	body, err := c.doGet(ctx, region, path, params)
	if err != nil {
		return nil, err
	}

	var resp auctionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("blizzard: decode auctions for realm %d: %w", realmID, err)
	}

	auctions := make([]domain.Auction, 0, len(resp.Auctions))
	for _, a := range resp.Auctions {
		auctions = append(auctions, a.toDomain())
	}
	return auctions, nil
}

// GetConnectedRealmIndex returns the identifiers of every connected realm in
// the region. The index only carries resource links, so IDs are parsed from
// the trailing path segment of each href.
func (c *Client) GetConnectedRealmIndex(ctx context.Context, region string) ([]int64, error) {
	params := url.Values{}
	params.Set("namespace", "dynamic-"+region)

	body, err := c.doGet(ctx, region, "/data/wow/connected-realm/index", params)
	if err != nil {
		return nil, err
	}

	var resp realmIndexResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("blizzard: decode realm index: %w", err)
	}

	ids := make([]int64, 0, len(resp.ConnectedRealms))
	for _, cr := range resp.ConnectedRealms {
		id, ok := realmIDFromHref(cr.Href)
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetConnectedRealm returns the name and slug of one connected realm, taken
// from its first member realm.
func (c *Client) GetConnectedRealm(ctx context.Context, region string, realmID int64) (domain.ConnectedRealm, error) {
	params := url.Values{}
	params.Set("namespace", "dynamic-"+region)

	path := fmt.Sprintf("/data/wow/connected-realm/%d", realmID)
	body, err := c.doGet(ctx, region, path, params)
	if err != nil {
		return domain.ConnectedRealm{}, err
	}

	var resp connectedRealmResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.ConnectedRealm{}, fmt.Errorf("blizzard: decode connected realm %d: %w", realmID, err)
	}
	if len(resp.Realms) == 0 {
		return domain.ConnectedRealm{}, fmt.Errorf("blizzard: connected realm %d has no member realms", realmID)
	}

	return domain.ConnectedRealm{
		ID:   resp.ID,
		Name: resp.Realms[0].Name,
		Slug: resp.Realms[0].Slug,
	}, nil
}

// realmIDFromHref extracts the numeric realm ID from an index href such as
// "https://us.api.blizzard.com/data/wow/connected-realm/3684?namespace=...".
func realmIDFromHref(href string) (int64, bool) {
	trimmed := href
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		trimmed = trimmed[:i]
	}
	trimmed = strings.TrimRight(trimmed, "/")
	i := strings.LastIndexByte(trimmed, '/')
	if i < 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(trimmed[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
