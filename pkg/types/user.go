package types

// UserData is the authenticated user's profile plus the bearer token, exactly
// as the auth endpoints return it. Persisted as a single JSON blob; the token
// is additionally stored under its own key.
type UserData struct {
	ID           string `json:"_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage,omitempty"`
	Token        string `json:"token"`
}
