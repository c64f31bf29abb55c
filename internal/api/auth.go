package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	pkgerrors "github.com/gopersonal/storefront/pkg/errors"
	"github.com/gopersonal/storefront/pkg/types"
)

// LoginInput carries the credentials for the login endpoint.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterInput carries the fields for the register endpoint.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// Login exchanges credentials for a profile plus bearer token. The call is
// bounded by the configured login timeout so a dead server surfaces as a
// timeout error rather than hanging the screen.
func (c *Client) Login(ctx context.Context, input LoginInput) (*types.UserData, error) {
	ctx, cancel := c.withTimeout(ctx, c.loginTimeout)
	defer cancel()

	var user types.UserData
	if err := c.call(ctx, http.MethodPost, c.endpoint("/users/login"), input, false, &user); err != nil {
		c.logg.Error(ctx, "login failed", err)
		return nil, err
	}
	c.logg.Info(c.logg.WithUserID(ctx, user.ID), "login succeeded")
	return &user, nil
}

// Register creates an account; the response carries the same shape as login.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*types.UserData, error) {
	var user types.UserData
	if err := c.call(ctx, http.MethodPost, c.endpoint("/users/register"), input, false, &user); err != nil {
		c.logg.Error(ctx, "register failed", err)
		return nil, err
	}
	c.logg.Info(c.logg.WithUserID(ctx, user.ID), "register succeeded")
	return &user, nil
}

// UpdateProfile replaces the mutable profile fields server-side and returns
// the refreshed profile.
func (c *Client) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*types.UserData, error) {
	var user types.UserData
	if err := c.call(ctx, http.MethodPut, c.endpoint("/users/me"), input, true, &user); err != nil {
		c.logg.Error(ctx, "update profile failed", err)
		return nil, err
	}
	return &user, nil
}

// Logout asks the server to invalidate the session. Best-effort: callers
// clear local credentials regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.call(ctx, http.MethodPost, c.endpoint("/users/logout"), nil, true, nil); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "server-side logout failed")
		return err
	}
	return nil
}

type uploadPhotoResponse struct {
	ProfileImage string `json:"profileImage"`
}

// UploadProfilePhoto sends the image as a multipart payload. Network-class
// failures and 5xx responses are retried up to the configured attempt limit
// with a fixed delay between attempts; the last error wins after exhaustion.
func (c *Client) UploadProfilePhoto(ctx context.Context, filename string, content io.Reader) (string, error) {
	body, contentType, err := buildPhotoForm(filename, content)
	if err != nil {
		return "", err
	}

	ctx, cancel := c.withTimeout(ctx, c.uploadTimeout)
	defer cancel()

	attempts := c.uploadTries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		imageURL, err := c.uploadPhotoOnce(ctx, contentType, body)
		if err == nil {
			return imageURL, nil
		}
		lastErr = err

		attemptCtx := c.logg.WithFields(ctx, map[string]any{"attempt": attempt, "max_attempts": attempts})
		if !pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).Retryable || attempt == attempts {
			c.logg.Error(attemptCtx, "profile photo upload failed", err)
			return "", lastErr
		}
		c.logg.Warn(attemptCtx, "profile photo upload failed, retrying")

		select {
		case <-ctx.Done():
			return "", mapTransportError(ctx, ctx.Err())
		case <-time.After(c.uploadDelay):
		}
	}
	return "", lastErr
}

func (c *Client) uploadPhotoOnce(ctx context.Context, contentType string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/profiles/upload-photo"), bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upload request")
	}
	req.Header.Set("Content-Type", contentType)
	if err := c.attachBearer(ctx, req); err != nil {
		return "", err
	}

	var resp uploadPhotoResponse
	if err := c.execute(req, &resp); err != nil {
		return "", err
	}
	return resp.ProfileImage, nil
}

func buildPhotoForm(filename string, content io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("photo", filename)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build photo form")
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read photo content")
	}
	if err := writer.Close(); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize photo form")
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
