package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "grocerease"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "GROCEREASE_APP_ENV"
	EnvPort                   = "GROCEREASE_APP_PORT"
	EnvDBDSN                  = "GROCEREASE_DB_DSN"
	EnvDBHost                 = "GROCEREASE_DB_HOST"
	EnvDBPort                 = "GROCEREASE_DB_PORT"
	EnvDBUser                 = "GROCEREASE_DB_USER"
	EnvDBPassword             = "GROCEREASE_DB_PASSWORD"
	EnvDBName                 = "GROCEREASE_DB_NAME"
	EnvRedisURL               = "GROCEREASE_REDIS_URL"
	EnvJWTSecret              = "GROCEREASE_JWT_SECRET"
	EnvJWTIssuer              = "GROCEREASE_JWT_ISSUER"
	EnvJWTExpMins             = "GROCEREASE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "GROCEREASE_REFRESH_TOKEN_TTL_MINUTES"
	EnvStripeAPIKey           = "GROCEREASE_STRIPE_API_KEY"
	EnvStripeEnv              = "GROCEREASE_STRIPE_ENV"
	EnvFrontendURL            = "GROCEREASE_FRONTEND_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Stripe        StripeConfig
	Checkout      CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GROCEREASE_APP_ENV" required:"true"`
	Port         string `envconfig:"GROCEREASE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GROCEREASE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GROCEREASE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GROCEREASE_DB_DSN"`
	Driver string `envconfig:"GROCEREASE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GROCEREASE_DB_HOST"`
	LegacyPort     int    `envconfig:"GROCEREASE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GROCEREASE_DB_USER"`
	LegacyPassword string `envconfig:"GROCEREASE_DB_PASSWORD"`
	LegacyName     string `envconfig:"GROCEREASE_DB_NAME"`
	LegacySSLMode  string `envconfig:"GROCEREASE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GROCEREASE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GROCEREASE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GROCEREASE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GROCEREASE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GROCEREASE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GROCEREASE_REDIS_ADDR"`
	Password     string        `envconfig:"GROCEREASE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GROCEREASE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GROCEREASE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GROCEREASE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GROCEREASE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GROCEREASE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GROCEREASE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GROCEREASE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GROCEREASE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GROCEREASE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GROCEREASE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GROCEREASE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GROCEREASE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GROCEREASE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GROCEREASE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GROCEREASE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GROCEREASE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GROCEREASE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GROCEREASE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GROCEREASE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GROCEREASE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GROCEREASE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GROCEREASE_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"GROCEREASE_STRIPE_API_KEY"`
	Env    string `envconfig:"GROCEREASE_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CheckoutConfig struct {
	FrontendURL string `envconfig:"GROCEREASE_FRONTEND_URL" default:"http://localhost:3000"`
	Currency    string `envconfig:"GROCEREASE_CHECKOUT_CURRENCY" default:"usd"`
}

// SuccessURL is where Stripe redirects the buyer after paying.
func (c CheckoutConfig) SuccessURL() string {
	return strings.TrimRight(c.FrontendURL, "/") + "/orders"
}

// CancelURL is where Stripe redirects the buyer when the session is abandoned.
func (c CheckoutConfig) CancelURL() string {
	return strings.TrimRight(c.FrontendURL, "/") + "/cart"
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
