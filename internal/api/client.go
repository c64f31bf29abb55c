package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gopersonal/storefront/internal/storage"
	"github.com/gopersonal/storefront/pkg/config"
	pkgerrors "github.com/gopersonal/storefront/pkg/errors"
	"github.com/gopersonal/storefront/pkg/logger"
)

const errorBodyReadLimit int64 = 4096

var (
	errBaseURLRequired = errors.New("api base url is required")
	errLoggerRequired  = errors.New("api logger is required")
)

// TokenSource yields the persisted bearer token. storage.ErrNotFound means
// nobody is signed in.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the storefront backend: auth, cart, and order endpoint
// groups live on baseURL, the public catalog on catalogURL.
type Client struct {
	httpClient *http.Client
	baseURL    string
	catalogURL string
	tokens     TokenSource
	logg       *logger.Logger

	loginTimeout  time.Duration
	cartTimeout   time.Duration
	uploadTimeout time.Duration
	uploadTries   int
	uploadDelay   time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the storefront API client.
func NewClient(cfg config.APIConfig, upload config.UploadConfig, tokens TokenSource, logg *logger.Logger, opts ...Option) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	catalogURL := strings.TrimRight(strings.TrimSpace(cfg.CatalogURL), "/")
	if catalogURL == "" {
		catalogURL = baseURL
	}

	client := &Client{
		httpClient:    &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:       baseURL,
		catalogURL:    catalogURL,
		tokens:        tokens,
		logg:          logg,
		loginTimeout:  cfg.LoginTimeout,
		cartTimeout:   cfg.CartTimeout,
		uploadTimeout: upload.Timeout,
		uploadTries:   upload.MaxAttempts,
		uploadDelay:   upload.RetryDelay,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// call issues a JSON request and decodes the response into out (when out is
// non-nil). Authenticated calls short-circuit locally when no token is
// persisted: no network request is made.
func (c *Client) call(ctx context.Context, method, url string, body any, authed bool, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := encodeJSON(body)
		if err != nil {
			return err
		}
		payload = encoded
	}

	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if err := c.attachBearer(ctx, req); err != nil {
			return err
		}
	}

	return c.execute(req, out)
}

func (c *Client) attachBearer(ctx context.Context, req *http.Request) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeMissingToken, "no auth token")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read auth token")
	}
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeMissingToken, "no auth token")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (c *Client) execute(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapTransportError(req.Context(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode response body")
	}
	return nil
}

func mapTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "request timed out")
	}
	if errors.Is(err, context.Canceled) {
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "request canceled")
	}
	return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "execute request")
}

// errorFromResponse extracts the server's message field when the body is
// JSON, falling back to a generic message otherwise.
func errorFromResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	message := ""
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		message = strings.TrimSpace(body.Message)
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}

	code := codeForStatus(resp.StatusCode)
	return pkgerrors.New(code, message).WithDetails(map[string]any{"status": resp.StatusCode})
}

func codeForStatus(status int) pkgerrors.Code {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return pkgerrors.CodeUnauthorized
	case status == http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case status >= 500:
		return pkgerrors.CodeServer
	default:
		return pkgerrors.CodeAPI
	}
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) catalogEndpoint(path string) string {
	return c.catalogURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

func encodeJSON(v any) (io.Reader, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
	}
	return bytes.NewReader(buf), nil
}
