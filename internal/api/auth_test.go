package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/gopersonal/storefront/pkg/errors"
)

func TestLoginSendsCredentialsAndDecodesProfile(t *testing.T) {
	var capturedURL string
	var capturedBody map[string]any
	client := newTestClient(t, "", func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		raw, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &capturedBody))
		return jsonResponse(http.StatusOK,
			`{"_id":"u1","username":"shopper","email":"s@example.com","name":"Shopper","token":"tok-1"}`), nil
	})

	user, err := client.Login(context.Background(), LoginInput{Email: "s@example.com", Password: "123456"})
	require.NoError(t, err)

	assert.Equal(t, "http://backend.test/api/users/login", capturedURL)
	assert.Equal(t, "s@example.com", capturedBody["email"])
	assert.Equal(t, "123456", capturedBody["password"])
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "tok-1", user.Token)
}

func TestLoginRejectionCarriesServerMessage(t *testing.T) {
	client := newTestClient(t, "", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"message":"invalid credentials"}`), nil
	})

	_, err := client.Login(context.Background(), LoginInput{Email: "s@example.com", Password: "wrong"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	assert.Equal(t, "invalid credentials", typed.Message())
}

func TestUploadProfilePhotoRetriesOn5xx(t *testing.T) {
	attempts := 0
	client := newTestClient(t, "tok", func(req *http.Request) (*http.Response, error) {
		attempts++
		require.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		require.Contains(t, req.Header.Get("Content-Type"), "multipart/form-data")
		if attempts < 3 {
			return jsonResponse(http.StatusInternalServerError, `{"message":"storage hiccup"}`), nil
		}
		return jsonResponse(http.StatusOK, `{"profileImage":"http://cdn.test/p.jpg"}`), nil
	})

	imageURL, err := client.UploadProfilePhoto(context.Background(), "p.jpg", strings.NewReader("img-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/p.jpg", imageURL)
	assert.Equal(t, 3, attempts)
}

func TestUploadProfilePhotoGivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	client := newTestClient(t, "tok", func(req *http.Request) (*http.Response, error) {
		attempts++
		return jsonResponse(http.StatusServiceUnavailable, `{"message":"still down"}`), nil
	})

	_, err := client.UploadProfilePhoto(context.Background(), "p.jpg", strings.NewReader("img"))
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "still down", typed.Message(), "last error surfaces after exhaustion")
}

func TestUploadProfilePhotoDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	client := newTestClient(t, "tok", func(req *http.Request) (*http.Response, error) {
		attempts++
		return jsonResponse(http.StatusRequestEntityTooLarge, `{"message":"image too large"}`), nil
	})

	_, err := client.UploadProfilePhoto(context.Background(), "p.jpg", strings.NewReader("img"))
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "4xx responses are not retried")
}

func TestLogoutIsBestEffort(t *testing.T) {
	client := newTestClient(t, "tok", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `{"message":"session store down"}`), nil
	})

	err := client.Logout(context.Background())
	require.Error(t, err, "the error is reported; callers decide to ignore it")
}
