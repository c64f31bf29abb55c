package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Storage  StorageConfig
	Checkout CheckoutConfig
	Upload   UploadConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return nil, fmt.Errorf("STOREFRONT_API_URL is required")
	}
	cfg.API.ensureCatalogURL()
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"development"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"console"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL string `envconfig:"STOREFRONT_API_URL" required:"true"`
	// CatalogURL defaults to BaseURL when the catalog is served by the same
	// backend; the public demo catalog lives on a separate host.
	CatalogURL string `envconfig:"STOREFRONT_CATALOG_URL"`

	RequestTimeout time.Duration `envconfig:"STOREFRONT_API_REQUEST_TIMEOUT" default:"15s"`
	LoginTimeout   time.Duration `envconfig:"STOREFRONT_API_LOGIN_TIMEOUT" default:"10s"`
	CartTimeout    time.Duration `envconfig:"STOREFRONT_API_CART_REFRESH_TIMEOUT" default:"5s"`
}

func (a *APIConfig) ensureCatalogURL() {
	if strings.TrimSpace(a.CatalogURL) == "" {
		a.CatalogURL = a.BaseURL
	}
}

type StorageConfig struct {
	Path string `envconfig:"STOREFRONT_STORAGE_PATH" default:"storefront.db"`
}

type CheckoutConfig struct {
	PaymentMethod string `envconfig:"STOREFRONT_PAYMENT_METHOD" default:"card"`

	ShippingStreet     string `envconfig:"STOREFRONT_SHIPPING_STREET" default:"Example Street 123"`
	ShippingCity       string `envconfig:"STOREFRONT_SHIPPING_CITY" default:"Example City"`
	ShippingPostalCode string `envconfig:"STOREFRONT_SHIPPING_POSTAL_CODE" default:"12345"`
	ShippingCountry    string `envconfig:"STOREFRONT_SHIPPING_COUNTRY" default:"AR"`
}

type UploadConfig struct {
	Timeout     time.Duration `envconfig:"STOREFRONT_UPLOAD_TIMEOUT" default:"30s"`
	MaxAttempts int           `envconfig:"STOREFRONT_UPLOAD_MAX_ATTEMPTS" default:"3"`
	RetryDelay  time.Duration `envconfig:"STOREFRONT_UPLOAD_RETRY_DELAY" default:"1s"`
}
