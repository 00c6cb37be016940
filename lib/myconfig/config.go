package myconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/MarcGrol/courseshop/lib/myerrors"
)

// Config holds the process configuration. Secrets may be empty at start-up: services
// report their absence per request as a configuration error.
type Config struct {
	Port       string
	SiteOrigin string
	Currency   string

	StripeSecretKey            string
	StripeWebhookSigningSecret string

	// StoreURL and StoreServiceKey address the hosted backend that owns the account directory.
	StoreURL        string
	StoreServiceKey string

	// LocalAccounts replaces the hosted account directory with an in-process one.
	LocalAccounts bool

	DatabaseURL string
	RedisURL    string

	// CatalogFile optionally names a semicolon separated course file imported at start-up.
	CatalogFile string

	ProcessedEventTTL time.Duration
}

// Load reads configuration from an optional .env file, an optional courseshop.yaml and the environment.
// Environment variables win over the file.
func Load(paths ...string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("courseshop")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("site_origin", "http://localhost:5173")
	v.SetDefault("currency", "eur")
	v.SetDefault("processed_event_ttl", 72*time.Hour)
	v.SetDefault("local_accounts", false)

	// Keys without a default are only found in the environment once viper knows them
	for _, key := range []string{
		"stripe_secret_key", "stripe_webhook_signing_secret",
		"supabase_url", "supabase_service_role_key",
		"database_url", "redis_url", "catalog_file",
	} {
		err := v.BindEnv(key)
		if err != nil {
			return Config{}, fmt.Errorf("error binding %s: %s", key, err)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %s", err)
		}
	}

	return Config{
		Port:                       v.GetString("port"),
		SiteOrigin:                 strings.TrimSuffix(v.GetString("site_origin"), "/"),
		Currency:                   strings.ToLower(v.GetString("currency")),
		StripeSecretKey:            strings.TrimSpace(v.GetString("stripe_secret_key")),
		StripeWebhookSigningSecret: strings.TrimSpace(v.GetString("stripe_webhook_signing_secret")),
		StoreURL:                   strings.TrimSuffix(strings.TrimSpace(v.GetString("supabase_url")), "/"),
		StoreServiceKey:            strings.TrimSpace(v.GetString("supabase_service_role_key")),
		LocalAccounts:              v.GetBool("local_accounts"),
		DatabaseURL:                strings.TrimSpace(v.GetString("database_url")),
		RedisURL:                   strings.TrimSpace(v.GetString("redis_url")),
		CatalogFile:                strings.TrimSpace(v.GetString("catalog_file")),
		ProcessedEventTTL:          v.GetDuration("processed_event_ttl"),
	}, nil
}

// RequirePaymentProvider fails with a configuration error when the provider secret key is absent.
func (c Config) RequirePaymentProvider() error {
	if c.StripeSecretKey == "" {
		return myerrors.NewConfigurationError("payment provider")
	}
	return nil
}

func (c Config) RequireWebhookSecret() error {
	if c.StripeWebhookSigningSecret == "" {
		return myerrors.NewConfigurationError("webhook verification")
	}
	return nil
}

// RequireStore fails when the backing store credentials are absent and no local directory replaces them.
func (c Config) RequireStore() error {
	if c.LocalAccounts {
		return nil
	}
	if c.StoreURL == "" || c.StoreServiceKey == "" {
		return myerrors.NewConfigurationError("backing store")
	}
	return nil
}
