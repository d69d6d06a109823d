package tileapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// baseURL is the tile service's fixed endpoint, mirroring the original's
// hardcoded URL constant; Config.Endpoint overrides it for tests.
const baseURL = "https://tile.googleapis.com"

// Config configures a Client, following the same shape as the teacher's
// OverpassConfig: an overridable endpoint for tests, a pluggable HTTP
// client, and a logger.
type Config struct {
	// Endpoint overrides baseURL (default: https://tile.googleapis.com).
	Endpoint string
	// HTTPClient allows a custom HTTP client (default: http.DefaultClient).
	HTTPClient *http.Client
	// Logger receives diagnostic messages; defaults to slog.Default() when nil.
	Logger *slog.Logger
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Config) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return baseURL
}

func (c Config) log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Client is the tile service REST client. It holds the API key, the
// session token discovered during bootstrap, and the root node. The
// session token is stable for the client's lifetime and required on every
// subsequent request.
type Client struct {
	cfg     Config
	key     string
	session string
	root    Node
}

// Bootstrap constructs a Client: fetches the tileset root, then walks the
// first two levels of children to the first leaf-ish content URI and
// extracts the "session" query parameter from it. If the key is empty the
// bootstrap still runs — the caller is expected to surface the resulting
// error as "enter an API key" rather than treat it as a crash.
func Bootstrap(ctx context.Context, key string, cfg Config) (*Client, error) {
	c := &Client{cfg: cfg, key: key}

	root, err := c.GetNode(ctx, "/v1/3dtiles/root.json?")
	if err != nil {
		return nil, fmt.Errorf("fetch tileset root: %w", err)
	}
	c.root = root

	session, err := firstSessionToken(root)
	if err != nil {
		return nil, fmt.Errorf("extract session token: %w", err)
	}
	c.session = session

	c.cfg.log().Debug("tileapi session bootstrapped", "session", c.session)
	return c, nil
}

// firstSessionToken walks root -> first child -> first child's content URI
// and extracts its "session" query parameter, matching the original
// bootstrap walk.
func firstSessionToken(root Node) (string, error) {
	if len(root.Children) == 0 || len(root.Children[0].Children) == 0 {
		return "", fmt.Errorf("tileset root does not have the expected two levels of children")
	}
	content := root.Children[0].Children[0].Content
	if content == nil {
		return "", fmt.Errorf("second-level node has no content")
	}

	u, err := url.Parse(baseURL + content.URI)
	if err != nil {
		return "", fmt.Errorf("parse content uri: %w", err)
	}
	session := u.Query().Get("session")
	if session == "" {
		return "", fmt.Errorf("content uri has no session query parameter")
	}
	return session, nil
}

// Session returns the bootstrapped session token, or "" if the client has
// no session (e.g. construction failed and callers chose to keep a
// zero-value Client around instead of propagating the error).
func (c *Client) Session() string {
	return c.session
}

// Root returns the tileset root node fetched during Bootstrap, so callers
// don't need to fetch it a second time.
func (c *Client) Root() Node {
	return c.root
}

// GetURL returns the service URL for path with the API key and, if set,
// the session token appended as query parameters.
func (c *Client) GetURL(path string) (string, error) {
	u, err := url.Parse(c.cfg.endpoint() + path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	q := u.Query()
	q.Set("key", c.key)
	if c.session != "" {
		q.Set("session", c.session)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// GetNode fetches and parses the `{ root: Node }` envelope at path.
func (c *Client) GetNode(ctx context.Context, path string) (Node, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return Node{}, err
	}
	var envelope nodeEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Node{}, fmt.Errorf("decode node json: %w", err)
	}
	return envelope.Root, nil
}

// Download fetches the raw bytes (a GLB payload) at path.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	return c.get(ctx, path)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	targetURL, err := c.GetURL(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", path, err)
	}

	resp, err := c.cfg.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %q: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body for %q: %w", path, err)
	}
	return body, nil
}
