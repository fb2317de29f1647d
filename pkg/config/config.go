package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	OTP           OTPConfig
	Checkout      CheckoutConfig
	Razorpay      RazorpayConfig
	Sendgrid      SendgridConfig
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
	Env          string `envconfig:"AMART_APP_ENV" required:"true"`
	Port         string `envconfig:"AMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AMART_DB_DSN"`
	Driver string `envconfig:"AMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AMART_DB_HOST"`
	LegacyPort     int    `envconfig:"AMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AMART_DB_USER"`
	LegacyPassword string `envconfig:"AMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"AMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"AMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AMART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AMART_REDIS_ADDR"`
	Password     string        `envconfig:"AMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"AMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AMART_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AMART_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"AMART_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"AMART_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AMART_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"AMART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"AMART_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"AMART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"AMART_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"AMART_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"AMART_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AMART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AMART_AUTO_MIGRATE" default:"false"`
}

type OTPConfig struct {
	ValiditySeconds int `envconfig:"AMART_OTP_VALIDITY_SECONDS" default:"60"`
	ResendLimit     int `envconfig:"AMART_OTP_RESEND_LIMIT" default:"3"`
}

// Validity returns the OTP validity window as a duration.
func (o OTPConfig) Validity() time.Duration {
	if o.ValiditySeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(o.ValiditySeconds) * time.Second
}

type CheckoutConfig struct {
	ContextTTL time.Duration `envconfig:"AMART_CHECKOUT_CONTEXT_TTL" default:"30m"`
	CODCeiling int           `envconfig:"AMART_CHECKOUT_COD_CEILING" default:"1000"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"AMART_RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"AMART_RAZORPAY_KEY_SECRET"`
	Currency  string `envconfig:"AMART_RAZORPAY_CURRENCY" default:"INR"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"AMART_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"AMART_SENDGRID_FROM_EMAIL"`
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
