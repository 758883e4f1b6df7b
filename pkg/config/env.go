package config

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv      = "POOLQUOTE_APP_ENV"
	EnvPort        = "POOLQUOTE_APP_PORT"
	EnvLogLevel    = "POOLQUOTE_LOG_LEVEL"
	EnvLogFormat   = "POOLQUOTE_LOG_FORMAT"
	EnvCORSOrigins = "POOLQUOTE_CORS_ORIGINS"

	EnvDBDSN  = "POOLQUOTE_DB_DSN"
	EnvDBHost = "POOLQUOTE_DB_HOST"
	EnvDBUser = "POOLQUOTE_DB_USER"
	EnvDBName = "POOLQUOTE_DB_NAME"

	EnvRedisURL = "POOLQUOTE_REDIS_URL"

	EnvUseSQLite   = "POOLQUOTE_USE_SQLITE"
	EnvAutoMigrate = "POOLQUOTE_AUTO_MIGRATE"

	EnvReconcileQuietPeriod = "POOLQUOTE_RECONCILE_QUIET_PERIOD"
	EnvReconcilePassTimeout = "POOLQUOTE_RECONCILE_PASS_TIMEOUT"
	EnvReconcileFeedSize    = "POOLQUOTE_RECONCILE_FEED_SIZE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
