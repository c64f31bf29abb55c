package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopersonal/storefront/internal/storage"
	"github.com/gopersonal/storefront/pkg/config"
	pkgerrors "github.com/gopersonal/storefront/pkg/errors"
	"github.com/gopersonal/storefront/pkg/logger"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type staticTokens struct {
	token string
}

func (s staticTokens) Token(context.Context) (string, error) {
	if s.token == "" {
		return "", storage.ErrNotFound
	}
	return s.token, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func testAPIConfig() config.APIConfig {
	return config.APIConfig{
		BaseURL:        "http://backend.test/api",
		CatalogURL:     "http://catalog.test",
		RequestTimeout: 5 * time.Second,
		LoginTimeout:   time.Second,
		CartTimeout:    time.Second,
	}
}

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{Timeout: time.Second, MaxAttempts: 3, RetryDelay: time.Millisecond}
}

func newTestClient(t *testing.T, token string, rt roundTripFunc) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(testAPIConfig(), testUploadConfig(), staticTokens{token: token}, logg,
		WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return client
}

func TestMissingTokenShortCircuitsLocally(t *testing.T) {
	calls := 0
	client := newTestClient(t, "", func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	_, err := client.GetCart(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeMissingToken, pkgerrors.CodeOf(err))
	assert.Zero(t, calls, "no network call should be issued without a token")
}

func TestBearerTokenAttached(t *testing.T) {
	var captured http.Header
	client := newTestClient(t, "tok-123", func(req *http.Request) (*http.Response, error) {
		captured = req.Header.Clone()
		return jsonResponse(http.StatusOK, `{"_id":"c1","user":"u1","items":[]}`), nil
	})

	_, err := client.GetCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", captured.Get("Authorization"))
}

func TestErrorMessageExtractedFromJSONBody(t *testing.T) {
	client := newTestClient(t, "tok", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"message":"quantity must be positive"}`), nil
	})

	_, err := client.UpdateCartItemQuantity(context.Background(), 1, 3)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeAPI, typed.Code())
	assert.Equal(t, "quantity must be positive", typed.Message())
}

func TestErrorMessageFallsBackWhenBodyNotJSON(t *testing.T) {
	client := newTestClient(t, "tok", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `<html>bad gateway</html>`), nil
	})

	_, err := client.GetCart(context.Background())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeServer, typed.Code())
	assert.Equal(t, "request failed with status 502", typed.Message())
}

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeUnauthorized},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusConflict, pkgerrors.CodeAPI},
		{http.StatusInternalServerError, pkgerrors.CodeServer},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, codeForStatus(tt.status), "status %d", tt.status)
	}
}

func TestTimeoutSurfacesAsDistinctError(t *testing.T) {
	client := newTestClient(t, "tok", func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})

	_, err := client.GetCart(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeTimeout, pkgerrors.CodeOf(err))
}

func TestMalformedSuccessBodyIsDecodeError(t *testing.T) {
	client := newTestClient(t, "tok", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"items": not-json`), nil
	})

	_, err := client.GetCart(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDecode, pkgerrors.CodeOf(err))
}
