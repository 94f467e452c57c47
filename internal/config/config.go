package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration required by the API process.
// Values come from env, an optional config file, then built-in defaults.
// No business logic should depend on raw environment variables.
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Store     StoreConfig
	DB        DBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	LiveUsers LiveUsersConfig
	Seed      SeedConfig
	Metrics   MetricsConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// LiveStreamInterval is the push cadence of the live-calls event stream.
	LiveStreamInterval time.Duration
}

// StoreConfig selects the fact store and the live-call working set backends.
type StoreConfig struct {
	// Backend accepts: postgres, memory
	Backend string
	// LiveCallsBackend accepts: postgres, redis, memory. Empty follows Backend.
	LiveCallsBackend string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode accepts: disable, require, verify-ca, verify-full
	SSLMode string

	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type AuthConfig struct {
	Enabled        bool
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	AccessTokenTTL time.Duration
}

type LiveUsersConfig struct {
	// BackendURL is the realtime backend serving /api/live-users.
	BackendURL string
	Timeout    time.Duration
}

type SeedConfig struct {
	// Secret guards POST /seed when set.
	Secret string
}

type MetricsConfig struct {
	Enabled bool
}

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

// Load reads configuration. configFile is optional; a missing file is an error only
// when a path was given explicitly.
func Load(configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	c := fromViper(v)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c.withDerivedDefaults(), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("STORE_BACKEND", BackendPostgres)
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("HTTP_READ_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("HTTP_IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("HTTP_SHUTDOWN_TIMEOUT", 20*time.Second)
	v.SetDefault("LIVE_STREAM_INTERVAL", 5*time.Second)
	v.SetDefault("LIVE_USERS_TIMEOUT", 5*time.Second)
	v.SetDefault("JWT_ACCESS_TTL", 15*time.Minute)
	v.SetDefault("METRICS_ENABLED", true)
}

func fromViper(v *viper.Viper) Config {
	c := Config{}

	c.App.Env = strings.TrimSpace(v.GetString("APP_ENV"))
	c.App.Port = v.GetInt("APP_PORT")

	c.HTTP.ReadTimeout = v.GetDuration("HTTP_READ_TIMEOUT")
	c.HTTP.WriteTimeout = v.GetDuration("HTTP_WRITE_TIMEOUT")
	c.HTTP.IdleTimeout = v.GetDuration("HTTP_IDLE_TIMEOUT")
	c.HTTP.ShutdownTimeout = v.GetDuration("HTTP_SHUTDOWN_TIMEOUT")
	c.HTTP.LiveStreamInterval = v.GetDuration("LIVE_STREAM_INTERVAL")

	c.Store.Backend = strings.TrimSpace(v.GetString("STORE_BACKEND"))
	c.Store.LiveCallsBackend = strings.TrimSpace(v.GetString("LIVE_CALLS_BACKEND"))

	c.DB.Host = strings.TrimSpace(v.GetString("DB_HOST"))
	c.DB.Port = v.GetInt("DB_PORT")
	c.DB.User = strings.TrimSpace(v.GetString("DB_USER"))
	c.DB.Password = v.GetString("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(v.GetString("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(v.GetString("DB_SSLMODE"))
	c.DB.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")

	c.Redis.Host = strings.TrimSpace(v.GetString("REDIS_HOST"))
	c.Redis.Port = v.GetInt("REDIS_PORT")
	c.Redis.Password = v.GetString("REDIS_PASSWORD")
	c.Redis.DB = v.GetInt("REDIS_DB")

	c.Auth.Enabled = v.GetBool("AUTH_ENABLED")
	c.Auth.JWTSecret = v.GetString("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(v.GetString("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(v.GetString("JWT_AUDIENCE"))
	c.Auth.AccessTokenTTL = v.GetDuration("JWT_ACCESS_TTL")

	c.LiveUsers.BackendURL = strings.TrimRight(strings.TrimSpace(v.GetString("LIVE_USERS_BACKEND_URL")), "/")
	c.LiveUsers.Timeout = v.GetDuration("LIVE_USERS_TIMEOUT")

	c.Seed.Secret = v.GetString("SEED_SECRET")
	c.Metrics.Enabled = v.GetBool("METRICS_ENABLED")
	return c
}

func (c Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	switch c.Store.Backend {
	case BackendPostgres, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be one of postgres, memory, got %q", c.Store.Backend))
	}
	switch c.Store.LiveCallsBackend {
	case "", BackendPostgres, BackendRedis, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("LIVE_CALLS_BACKEND must be one of postgres, redis, memory, got %q", c.Store.LiveCallsBackend))
	}

	if c.usesPostgres() {
		if c.DB.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required"))
		}
		if c.DB.Port <= 0 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
		}
		if c.DB.User == "" {
			errs = append(errs, errors.New("DB_USER is required"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required"))
		}
		if c.DB.SSLMode == "" && c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		}
		if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
			errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
		}
	}

	if c.LiveCallsBackend() == BackendRedis {
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("REDIS_HOST is required when LIVE_CALLS_BACKEND=redis"))
		}
		if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
			errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
		}
	}

	if c.Auth.Enabled {
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_ENABLED=true"))
		}
		if c.IsProduction() {
			if c.Auth.JWTIssuer == "" {
				errs = append(errs, errors.New("JWT_ISSUER is required in production"))
			}
			if c.Auth.JWTAudience == "" {
				errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
			}
		}
	}

	if c.HTTP.LiveStreamInterval < 0 {
		errs = append(errs, errors.New("LIVE_STREAM_INTERVAL must not be negative"))
	}

	return joinErrors(errs)
}

// withDerivedDefaults fills values that depend on other settings.
func (c Config) withDerivedDefaults() Config {
	if c.DB.SSLMode == "" {
		// Local-friendly default; production must be explicit (see Validate).
		c.DB.SSLMode = "disable"
	}
	if c.Store.LiveCallsBackend == "" {
		c.Store.LiveCallsBackend = c.Store.Backend
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.HTTP.LiveStreamInterval == 0 {
		c.HTTP.LiveStreamInterval = 5 * time.Second
	}
	if c.LiveUsers.Timeout <= 0 {
		c.LiveUsers.Timeout = 5 * time.Second
	}
	return c
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) LiveCallsBackend() string {
	if c.Store.LiveCallsBackend == "" {
		return c.Store.Backend
	}
	return c.Store.LiveCallsBackend
}

func (c Config) usesPostgres() bool {
	return c.Store.Backend == BackendPostgres || c.LiveCallsBackend() == BackendPostgres
}

// UsesPostgres reports whether any component needs a database handle.
func (c Config) UsesPostgres() bool { return c.usesPostgres() }

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
