package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gopersonal/storefront/internal/api"
	"github.com/gopersonal/storefront/internal/storage"
	pkgerrors "github.com/gopersonal/storefront/pkg/errors"
	"github.com/gopersonal/storefront/pkg/logger"
	"github.com/gopersonal/storefront/pkg/types"
	"github.com/gopersonal/storefront/pkg/validators"
)

// AuthAPI is the remote auth surface the manager drives.
type AuthAPI interface {
	Login(ctx context.Context, input api.LoginInput) (*types.UserData, error)
	Register(ctx context.Context, input api.RegisterInput) (*types.UserData, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, input api.UpdateProfileInput) (*types.UserData, error)
	UploadProfilePhoto(ctx context.Context, filename string, content io.Reader) (string, error)
}

// CredentialStore is the persisted credential surface.
type CredentialStore interface {
	SaveUser(ctx context.Context, user types.UserData) error
	LoadUser(ctx context.Context) (*types.UserData, error)
	ClearUser(ctx context.Context) error
}

// Manager tracks the auth session: the signed-in user plus derived
// authenticated/loading/error flags. The flags are never persisted; only
// UserData is.
type Manager struct {
	api   AuthAPI
	store CredentialStore
	logg  *logger.Logger

	mu      sync.Mutex
	user    *types.UserData
	loading bool
	lastErr string
}

// NewManager builds an auth manager.
func NewManager(authAPI AuthAPI, store CredentialStore, logg *logger.Logger) *Manager {
	return &Manager{api: authAPI, store: store, logg: logg}
}

// Bootstrap restores the session from persisted credentials without
// contacting the server. A persisted JWT that is already expired is discarded
// so the first authenticated call doesn't fail confusingly; opaque tokens are
// kept as-is.
func (m *Manager) Bootstrap(ctx context.Context) error {
	user, err := m.store.LoadUser(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		m.logg.Error(ctx, "reading persisted credentials failed", err)
		return err
	}

	if tokenExpired(user.Token, time.Now()) {
		m.logg.Info(m.logg.WithUserID(ctx, user.ID), "persisted token expired, clearing session")
		if err := m.store.ClearUser(ctx); err != nil {
			m.logg.Error(ctx, "clearing expired credentials failed", err)
		}
		return nil
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	m.logg.Info(m.logg.WithUserID(ctx, user.ID), "session restored from device storage")
	return nil
}

// Login exchanges credentials for a session. On success the returned token
// and profile are persisted and authenticated flips to true; on failure a
// user-visible error message is set. No retry, a single failure surfaces
// immediately.
func (m *Manager) Login(ctx context.Context, input api.LoginInput) error {
	if err := validators.ValidateStruct(input); err != nil {
		m.fail(ctx, "login", err)
		return err
	}

	m.setLoading(true)
	defer m.setLoading(false)

	user, err := m.api.Login(ctx, input)
	if err != nil {
		m.fail(ctx, "login", err)
		return err
	}

	return m.adopt(ctx, user)
}

// Register creates an account and signs in with the returned session.
func (m *Manager) Register(ctx context.Context, input api.RegisterInput) error {
	if err := validators.ValidateStruct(input); err != nil {
		m.fail(ctx, "register", err)
		return err
	}

	m.setLoading(true)
	defer m.setLoading(false)

	user, err := m.api.Register(ctx, input)
	if err != nil {
		m.fail(ctx, "register", err)
		return err
	}

	return m.adopt(ctx, user)
}

// Logout clears the session. Server-side invalidation is best-effort: local
// credentials are cleared even when the remote call fails.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.api.Logout(ctx); err != nil {
		m.logg.Warn(m.logg.WithField(ctx, "error", err.Error()), "server-side logout failed, clearing locally anyway")
	}

	if err := m.store.ClearUser(ctx); err != nil {
		m.fail(ctx, "logout", err)
		return err
	}

	m.mu.Lock()
	m.user = nil
	m.lastErr = ""
	m.mu.Unlock()
	m.logg.Info(ctx, "signed out")
	return nil
}

// UpdateProfile replaces the persisted profile with the server's response.
func (m *Manager) UpdateProfile(ctx context.Context, input api.UpdateProfileInput) error {
	if err := validators.ValidateStruct(input); err != nil {
		m.fail(ctx, "update_profile", err)
		return err
	}

	user, err := m.api.UpdateProfile(ctx, input)
	if err != nil {
		m.fail(ctx, "update_profile", err)
		return err
	}

	// The update endpoint does not return the token; keep the current one.
	if user.Token == "" {
		if current := m.User(); current != nil {
			user.Token = current.Token
		}
	}
	return m.adopt(ctx, user)
}

// UploadProfilePhoto uploads the image and merges the returned URL into the
// persisted profile without a full profile refetch.
func (m *Manager) UploadProfilePhoto(ctx context.Context, filename string, content io.Reader) (string, error) {
	imageURL, err := m.api.UploadProfilePhoto(ctx, filename, content)
	if err != nil {
		m.fail(ctx, "upload_photo", err)
		return "", err
	}

	m.mu.Lock()
	if m.user != nil {
		m.user.ProfileImage = imageURL
	}
	user := m.user
	m.lastErr = ""
	m.mu.Unlock()

	if user != nil {
		if err := m.store.SaveUser(ctx, *user); err != nil {
			m.logg.Error(ctx, "persisting profile image failed", err)
			return imageURL, err
		}
	}
	return imageURL, nil
}

// IsAuthenticated derives from UserData presence.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil
}

// User returns a copy of the signed-in user, or nil.
func (m *Manager) User() *types.UserData {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// Loading reports whether an auth call is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Err returns the last user-visible error message, empty after a success.
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) adopt(ctx context.Context, user *types.UserData) error {
	if err := m.store.SaveUser(ctx, *user); err != nil {
		m.fail(ctx, "persist_credentials", err)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist credentials")
	}

	m.mu.Lock()
	m.user = user
	m.lastErr = ""
	m.mu.Unlock()
	return nil
}

func (m *Manager) fail(ctx context.Context, op string, err error) {
	m.mu.Lock()
	m.lastErr = pkgerrors.UserMessage(err)
	m.mu.Unlock()
	m.logg.Error(m.logg.WithField(ctx, "operation", op), "auth operation failed", err)
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

// tokenExpired peeks at the JWT expiry without verifying the signature; the
// server remains the authority on token validity. Opaque tokens never expire
// locally.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
