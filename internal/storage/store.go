package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gopersonal/storefront/pkg/types"
)

// Fixed keys mirrored from the mobile client's device storage.
const (
	KeyToken    = "userToken"
	KeyUserData = "userData"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

type entry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"column:value"`
	UpdatedAt time.Time
}

func (entry) TableName() string {
	return "device_kv"
}

// Store is the persisted credential store: one raw token string and one
// profile JSON blob under fixed keys.
type Store struct {
	db *gorm.DB
}

// NewStore builds a Store over the device database.
func NewStore(client *Client) *Store {
	return &Store{db: client.DB()}
}

// Get returns the raw value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var row entry
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return row.Value, nil
}

// Set upserts the value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	row := entry{Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}

// Delete removes the value under key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&entry{}, "key = ?", key).Error
}

// Token returns the persisted bearer token, or ErrNotFound.
func (s *Store) Token(ctx context.Context) (string, error) {
	return s.Get(ctx, KeyToken)
}

// SaveUser persists the profile blob and duplicates the raw token under its
// own key, matching the layout the mobile client used.
func (s *Store) SaveUser(ctx context.Context, user types.UserData) error {
	blob, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.Set(ctx, KeyUserData, string(blob)); err != nil {
		return err
	}
	return s.Set(ctx, KeyToken, user.Token)
}

// LoadUser reads the persisted profile, or ErrNotFound when nobody is signed
// in.
func (s *Store) LoadUser(ctx context.Context) (*types.UserData, error) {
	blob, err := s.Get(ctx, KeyUserData)
	if err != nil {
		return nil, err
	}
	var user types.UserData
	if err := json.Unmarshal([]byte(blob), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ClearUser removes both the profile blob and the token.
func (s *Store) ClearUser(ctx context.Context) error {
	if err := s.Delete(ctx, KeyUserData); err != nil {
		return err
	}
	return s.Delete(ctx, KeyToken)
}
