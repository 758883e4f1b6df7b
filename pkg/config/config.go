package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Reconcile    ReconcileConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Reconcile.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"POOLQUOTE_APP_ENV" required:"true"`
	Port         string `envconfig:"POOLQUOTE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"POOLQUOTE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"POOLQUOTE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"POOLQUOTE_LOG_WARN_STACK" default:"false"`

	CORSOrigins     []string      `envconfig:"POOLQUOTE_CORS_ORIGINS"`
	ShutdownTimeout time.Duration `envconfig:"POOLQUOTE_SHUTDOWN_TIMEOUT" default:"20s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"POOLQUOTE_DB_DSN"`
	SQLitePath string `envconfig:"POOLQUOTE_DB_SQLITE_PATH" default:"file:poolquote.db?cache=shared"`

	LegacyHost     string `envconfig:"POOLQUOTE_DB_HOST"`
	LegacyPort     int    `envconfig:"POOLQUOTE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"POOLQUOTE_DB_USER"`
	LegacyPassword string `envconfig:"POOLQUOTE_DB_PASSWORD"`
	LegacyName     string `envconfig:"POOLQUOTE_DB_NAME"`
	LegacySSLMode  string `envconfig:"POOLQUOTE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"POOLQUOTE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"POOLQUOTE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"POOLQUOTE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"POOLQUOTE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"POOLQUOTE_DB_SLOW_QUERY" default:"500ms"`

	// UseSQLite is copied from the feature flags so db.New can pick a dialector.
	UseSQLite bool `ignored:"true"`
}

// RedisConfig is optional: with neither URL nor address set, reconciliation runs without a
// cross-instance lock.
type RedisConfig struct {
	URL          string        `envconfig:"POOLQUOTE_REDIS_URL"`
	Address      string        `envconfig:"POOLQUOTE_REDIS_ADDR"`
	Password     string        `envconfig:"POOLQUOTE_REDIS_PASSWORD"`
	DB           int           `envconfig:"POOLQUOTE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"POOLQUOTE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"POOLQUOTE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"POOLQUOTE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"POOLQUOTE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"POOLQUOTE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint has been configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"POOLQUOTE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"POOLQUOTE_AUTO_MIGRATE" default:"false"`
}

// ReconcileConfig tunes the debounced persistence of editing sessions.
type ReconcileConfig struct {
	QuietPeriod time.Duration `envconfig:"POOLQUOTE_RECONCILE_QUIET_PERIOD" default:"1500ms"`
	PassTimeout time.Duration `envconfig:"POOLQUOTE_RECONCILE_PASS_TIMEOUT" default:"15s"`
	LockTTL     time.Duration `envconfig:"POOLQUOTE_RECONCILE_LOCK_TTL" default:"30s"`
	FeedSize    int           `envconfig:"POOLQUOTE_RECONCILE_FEED_SIZE" default:"50"`
}

func (r ReconcileConfig) validate() error {
	if r.QuietPeriod <= 0 {
		return fmt.Errorf("%s must be positive", EnvReconcileQuietPeriod)
	}
	if r.PassTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvReconcilePassTimeout)
	}
	if r.FeedSize <= 0 {
		return fmt.Errorf("%s must be positive", EnvReconcileFeedSize)
	}
	return nil
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	db.UseSQLite = useSQLite
	if useSQLite || db.DSN != "" {
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
