package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Review    ReviewConfig    `yaml:"review"`
	Notify    NotifyConfig    `yaml:"notify"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	ExposedHeaders   string `yaml:"exposed_headers"   env:"CORS_EXPOSED_HEADERS"   env-default:"X-Request-Id,Retry-After"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	MigrationsDir   string        `yaml:"migrations_dir"     env:"DATABASE_MIGRATIONS_DIR"     env-default:"./migrations"`
	LockTimeout     time.Duration `yaml:"lock_timeout"       env:"DATABASE_LOCK_TIMEOUT"       env-default:"5s"`
	ApplicationName string        `yaml:"application_name"   env:"DATABASE_APPLICATION_NAME"   env-default:"healthcard-backend"`
}

// RedisConfig holds settings of the notification batch queue.
type RedisConfig struct {
	Addr      string `yaml:"addr"       env:"REDIS_ADDR"       env-default:"localhost:6379"`
	Password  string `yaml:"password"   env:"REDIS_PASSWORD"`
	DB        int    `yaml:"db"         env:"REDIS_DB"         env-default:"0"`
	KeyPrefix string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"healthcard:batch"`
}

// StorageConfig holds object storage settings used for upload lookups.
type StorageConfig struct {
	Endpoint      string        `yaml:"endpoint"       env:"STORAGE_ENDPOINT"       env-default:"localhost:9000"`
	AccessKey     string        `yaml:"access_key"     env:"STORAGE_ACCESS_KEY"`
	SecretKey     string        `yaml:"secret_key"     env:"STORAGE_SECRET_KEY"`
	Bucket        string        `yaml:"bucket"         env:"STORAGE_BUCKET"         env-default:"healthcard-uploads"`
	Region        string        `yaml:"region"         env:"STORAGE_REGION"         env-default:"us-east-1"`
	UseSSL        bool          `yaml:"use_ssl"        env:"STORAGE_USE_SSL"        env-default:"false"`
	LookupTimeout time.Duration `yaml:"lookup_timeout" env:"STORAGE_LOOKUP_TIMEOUT" env-default:"5s"`
}

// AuthConfig holds bearer-token verification settings.
// Tokens are issued by the external identity provider.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"healthcard"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"15m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// ReviewConfig holds the rejection-limit policy.
type ReviewConfig struct {
	MaxDocumentAttempts   int  `yaml:"max_document_attempts"     env:"REVIEW_MAX_DOCUMENT_ATTEMPTS"     env-default:"3"`
	MaxPaymentAttempts    int  `yaml:"max_payment_attempts"      env:"REVIEW_MAX_PAYMENT_ATTEMPTS"      env-default:"3"`
	WarningThreshold      int  `yaml:"warning_threshold"         env:"REVIEW_WARNING_THRESHOLD"         env-default:"2"`
	AutoLockOnMaxAttempts bool `yaml:"auto_lock_on_max_attempts" env:"REVIEW_AUTO_LOCK_ON_MAX_ATTEMPTS" env-default:"true"`
	GracePeriodHours      int  `yaml:"grace_period_hours"        env:"REVIEW_GRACE_PERIOD_HOURS"        env-default:"72"`
}

// GracePeriod returns the payment grace period as a duration.
func (c ReviewConfig) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodHours) * time.Hour
}

// NotifyConfig holds rejection-notification batching settings.
type NotifyConfig struct {
	BatchWindow   time.Duration `yaml:"batch_window"   env:"NOTIFY_BATCH_WINDOW"   env-default:"2m"`
	FlushSchedule string        `yaml:"flush_schedule" env:"NOTIFY_FLUSH_SCHEDULE" env-default:"@every 30s"`
	FlushLimit    int           `yaml:"flush_limit"    env:"NOTIFY_FLUSH_LIMIT"    env-default:"100"`
}

// RateLimitConfig holds per-caller request rate limits.
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"             env:"RATE_LIMIT_ENABLED"             env-default:"true"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"RATE_LIMIT_REQUESTS_PER_SECOND" env-default:"5"`
	Burst             int           `yaml:"burst"               env:"RATE_LIMIT_BURST"               env-default:"20"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"    env:"RATE_LIMIT_CLEANUP_INTERVAL"    env-default:"5m"`
}
