package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

type DBConfig struct {
	Driver      string `envconfig:"DB_DRIVER" default:"postgres"`
	DSN         string `envconfig:"DATABASE_URL"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"products.db"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"products"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
}

// StoreConfig is everything the record store needs at boot.
type StoreConfig struct {
	Port        string    `envconfig:"STORE_PORT" default:"8000"`
	AdminSecret string    `envconfig:"ADMIN_JWT_SECRET"`
	DB          DBConfig  `ignored:"true"`
	Log         LogConfig `ignored:"true"`
}

// ProxyConfig is everything the enrichment proxy needs at boot.
type ProxyConfig struct {
	Port         string        `envconfig:"PROXY_PORT" default:"3001"`
	StoreBaseURL string        `envconfig:"STORE_API_URL" default:"http://localhost:8000/api"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"10s"`
	Log          LogConfig     `ignored:"true"`
}

// AdminTokenConfig drives cmd/admin-token.
type AdminTokenConfig struct {
	Secret  string        `envconfig:"ADMIN_JWT_SECRET" required:"true"`
	Subject string        `envconfig:"ADMIN_TOKEN_SUBJECT" default:"admin"`
	TTL     time.Duration `envconfig:"ADMIN_TOKEN_TTL" default:"24h"`
}

// LoadDotenv reads .env when present. A missing file is not an error.
func LoadDotenv() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
}

func LoadStore() (*StoreConfig, error) {
	var cfg StoreConfig
	if err := process(&cfg, &cfg.DB, &cfg.Log); err != nil {
		return nil, err
	}
	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadProxy() (*ProxyConfig, error) {
	var cfg ProxyConfig
	if err := process(&cfg, &cfg.Log); err != nil {
		return nil, err
	}
	cfg.StoreBaseURL = strings.TrimRight(strings.TrimSpace(cfg.StoreBaseURL), "/")
	if cfg.StoreBaseURL == "" {
		return nil, fmt.Errorf("STORE_API_URL must not be empty")
	}
	if cfg.StoreTimeout <= 0 {
		return nil, fmt.Errorf("STORE_TIMEOUT must be positive, got %s", cfg.StoreTimeout)
	}
	return &cfg, nil
}

func LoadAdminToken() (*AdminTokenConfig, error) {
	var cfg AdminTokenConfig
	if err := process(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// process fills each target with an empty prefix so variable names match their tags exactly.
func process(targets ...any) error {
	for _, target := range targets {
		if err := envconfig.Process("", target); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	switch db.Driver {
	case DriverSQLite:
		if db.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
		return nil
	case DriverPostgres:
		if db.DSN != "" {
			return nil
		}
		db.DSN = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			db.Host, db.User, db.Password, db.Name, db.Port,
		)
		return nil
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", db.Driver)
	}
}
