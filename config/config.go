package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Cart storage backends
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds every setting the service reads from the environment
type Config struct {
	Env     string `env:"ENV" envDefault:"development"`
	Port    string `env:"PORT" envDefault:"8080"`
	BaseURL string `env:"BASE_URL"`

	// Catalog source: CATALOG_URL, then CATALOG_FILE, then CATALOG_DRIVE_FILE_ID.
	CatalogURL          string        `env:"CATALOG_URL"`
	CatalogFile         string        `env:"CATALOG_FILE"`
	CatalogDriveFileID  string        `env:"CATALOG_DRIVE_FILE_ID"`
	GoogleCredentials   string        `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	CatalogRevalidate   time.Duration `env:"CATALOG_REVALIDATE" envDefault:"60s"`
	CatalogFetchTimeout time.Duration `env:"CATALOG_FETCH_TIMEOUT" envDefault:"0s"`

	// Cart persistence
	CartStorage    string `env:"CART_STORAGE" envDefault:"sqlite"`
	CartSQLitePath string `env:"CART_SQLITE_PATH" envDefault:"data/cart.db"`
	DB             DBConfig

	// Quote channels
	WhatsAppNumber string `env:"WHATSAPP_NUMBER"`
	QuoteEmail     string `env:"QUOTE_EMAIL" envDefault:"ventas@origen.com"`

	ChromePath    string `env:"CHROME_PATH"`
	ImageCacheDir string `env:"IMAGE_CACHE_DIR" envDefault:"cache/images"`
	StaticDir     string `env:"STATIC_DIR" envDefault:"static"`
}

// DBConfig mirrors the individual Postgres variables accepted when DATABASE_URL is not set
type DBConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// LoadDotEnv loads .env outside production. A missing file is not an error.
func LoadDotEnv(path string) error {
	if os.Getenv("ENV") == "production" {
		return nil
	}
	if err := godotenv.Overload(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load parses the environment into a Config
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	// PORT from Render may come with a leading colon
	c.Port = strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if c.Port == "" {
		c.Port = "8080"
	}
	c.CatalogURL = strings.TrimSpace(c.CatalogURL)
	c.CatalogFile = strings.TrimSpace(c.CatalogFile)
	c.CatalogDriveFileID = strings.TrimSpace(c.CatalogDriveFileID)
	c.CartStorage = strings.ToLower(strings.TrimSpace(c.CartStorage))
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:" + c.Port
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Validate checks the combinations env.Parse cannot express
func (c *Config) Validate() error {
	switch c.CartStorage {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if _, err := c.DB.DSN(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid CART_STORAGE %q: use memory, sqlite or postgres", c.CartStorage)
	}
	if c.CatalogURL == "" && c.CatalogFile == "" && c.CatalogDriveFileID != "" && c.GoogleCredentials == "" {
		return fmt.Errorf("CATALOG_DRIVE_FILE_ID requires GOOGLE_APPLICATION_CREDENTIALS")
	}
	return nil
}

// Addr is the listen address. 0.0.0.0 so containers accept outside connections.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

// DSN builds the Postgres connection string
func (d DBConfig) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return "", fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode), nil
}
