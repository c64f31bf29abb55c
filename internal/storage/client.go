package storage

import (
	"fmt"
	"io"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gopersonal/storefront/pkg/config"
)

// Client wraps the on-device GORM connection backing key-value storage.
type Client struct {
	conn *gorm.DB
}

// New opens the device database and ensures the key-value schema exists.
func New(cfg config.StorageConfig) (*Client, error) {
	path := cfg.Path
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening device storage: %w", err)
	}

	if err := conn.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrating device storage: %w", err)
	}

	return &Client{conn: conn}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return fmt.Errorf("getting sql db handle: %w", err)
	}
	return sqlDB.Close()
}

// DB exposes the GORM handle for the store layer.
func (c *Client) DB() *gorm.DB {
	return c.conn
}
