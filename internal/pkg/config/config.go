package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const minSessionSecret = 32

type Config struct {
	Port           string        `env:"PORT,            default=8080"`
	Env            string        `env:"ENV,             default=development"`
	LogLevel       string        `env:"LOG_LEVEL,       default=info"`
	LogPretty      bool          `env:"LOG_PRETTY,      default=false"`
	BaseURL        string        `env:"BASE_URL,        default=http://localhost:8080"`
	ViewsDir       string        `env:"VIEWS_DIR,       default=views/pages"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=10s"`
	CORSOrigins    []string      `env:"CORS_ORIGINS"`

	Session  SessionConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Blob     BlobConfig
	SMTP     SMTPConfig
	Google   GoogleConfig
	AMQP     AMQPConfig
	Notify   NotifyConfig
	Admin    AdminConfig
	Password PasswordConfig
}

type SessionConfig struct {
	Secret string        `env:"SESSION_SECRET"`
	TTL    time.Duration `env:"SESSION_TTL,    default=24h"`
	Secure bool          `env:"SESSION_SECURE, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

type BlobConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT,   default=localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET,     default=storefront"`
	UseSSL    bool   `env:"MINIO_USE_SSL,    default=false"`
	PublicURL string `env:"MINIO_PUBLIC_URL"`
}

type SMTPConfig struct {
	Host      string `env:"SMTP_HOST,       default=localhost"`
	Port      int    `env:"SMTP_PORT,       default=587"`
	Username  string `env:"SMTP_USERNAME"`
	Password  string `env:"SMTP_PASSWORD"`
	From      string `env:"SMTP_FROM,       default=no-reply@localhost"`
	TLS       string `env:"SMTP_TLS,        default=mandatory"`
	StoreName string `env:"STORE_NAME,      default=Storefront"`
}

// GoogleConfig enables the Google identity provider when ClientID is set.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	CallbackURL  string `env:"GOOGLE_CALLBACK_URL"`
}

// AMQPConfig enables order event publishing when URL is set.
type AMQPConfig struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE, default=storefront.orders"`
}

type NotifyConfig struct {
	Workers int           `env:"NOTIFY_WORKERS, default=4"`
	Timeout time.Duration `env:"NOTIFY_TIMEOUT, default=10s"`
}

// AdminConfig bootstraps an admin account at startup when both are set.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

type PasswordConfig struct {
	BcryptCost int `env:"BCRYPT_COST, default=10"`
}

// Load reads an optional .env file and then the process environment. Values
// already present in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(envconfig.OsLookuper())
}

func load(lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Session.Secret) < minSessionSecret {
		return fmt.Errorf("config: SESSION_SECRET must be at least %d characters", minSessionSecret)
	}
	if c.Session.TTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	if c.Google.ClientID != "" && (c.Google.ClientSecret == "" || c.Google.CallbackURL == "") {
		return errors.New("config: GOOGLE_CLIENT_SECRET and GOOGLE_CALLBACK_URL are required with GOOGLE_CLIENT_ID")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
