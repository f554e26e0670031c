package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"storefront"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	ServerPort      int           `envconfig:"SERVER_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTAccessSecret  string        `envconfig:"JWT_SECRET" required:"true"`
	JWTRefreshSecret string        `envconfig:"JWT_REFRESH_SECRET" required:"true"`
	AccessTTL        time.Duration `envconfig:"JWT_ACCESS_TTL" default:"15m"`
	RefreshTTL       time.Duration `envconfig:"JWT_REFRESH_TTL" default:"168h"`
	BcryptCost       int           `envconfig:"BCRYPT_COST" default:"10"`

	AdminEmails    []string `envconfig:"ADMIN_EMAILS"`
	GoogleClientID string   `envconfig:"GOOGLE_CLIENT_ID"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`

	ESURL      string `envconfig:"ES_URL"`
	ESUser     string `envconfig:"ES_USER"`
	ESPassword string `envconfig:"ES_PASSWORD"`
	ESIndex    string `envconfig:"ES_INDEX" default:"products"`

	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	RateLimitMax   int           `envconfig:"RATE_LIMIT_MAX" default:"10"`
	RateLimitRange time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	RabbitURL      string `envconfig:"RABBITMQ_URL"`
	EmailExchange  string `envconfig:"EMAIL_EXCHANGE" default:"storefront.email"`
	MailFromName   string `envconfig:"MAIL_FROM_NAME" default:"Storefront"`
	MailFromAddr   string `envconfig:"MAIL_FROM_ADDRESS" default:"no-reply@storefront.local"`

	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	Currency        string `envconfig:"PAYMENT_CURRENCY" default:"eur"`

	CloudinaryURL    string `envconfig:"CLOUDINARY_URL"`
	CloudinaryFolder string `envconfig:"CLOUDINARY_FOLDER" default:"storefront"`
	MaxUploadBytes   int64  `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`

	SideEffectTimeout time.Duration `envconfig:"SIDE_EFFECT_TIMEOUT" default:"3s"`
}

// Load reads .env when present and then the process environment. A missing
// .env is fine; an unreadable or malformed one is an error.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read .env: %w", err)
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	c.AdminEmails = normalizeEmails(c.AdminEmails)
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if c.AccessTTL >= c.RefreshTTL {
		errs = append(errs, errors.New("JWT_ACCESS_TTL must be shorter than JWT_REFRESH_TTL"))
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT out of range: %d", c.ServerPort))
	}
	return errors.Join(errs...)
}

func (c Config) IsAdminEmail(email string) bool {
	return slices.Contains(c.AdminEmails, strings.ToLower(strings.TrimSpace(email)))
}

func normalizeEmails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
