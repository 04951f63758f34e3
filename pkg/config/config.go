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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Gateway      GatewayConfig
	Wallet       WalletConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
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
	Env          string `envconfig:"BRANDBEAM_APP_ENV" required:"true"`
	Port         string `envconfig:"BRANDBEAM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BRANDBEAM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BRANDBEAM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BRANDBEAM_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BRANDBEAM_DB_DSN"`
	Driver string `envconfig:"BRANDBEAM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BRANDBEAM_DB_HOST"`
	LegacyPort     int    `envconfig:"BRANDBEAM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BRANDBEAM_DB_USER"`
	LegacyPassword string `envconfig:"BRANDBEAM_DB_PASSWORD"`
	LegacyName     string `envconfig:"BRANDBEAM_DB_NAME"`
	LegacySSLMode  string `envconfig:"BRANDBEAM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BRANDBEAM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BRANDBEAM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BRANDBEAM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BRANDBEAM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BRANDBEAM_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"BRANDBEAM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BRANDBEAM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BRANDBEAM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BRANDBEAM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BRANDBEAM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BRANDBEAM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BRANDBEAM_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BRANDBEAM_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// GatewayConfig carries the payment gateway credentials used to sign
// checkout payloads and verify inbound payment proofs.
type GatewayConfig struct {
	MerchantCode string        `envconfig:"BRANDBEAM_GATEWAY_MERCHANT_CODE" required:"true"`
	SharedSecret string        `envconfig:"BRANDBEAM_GATEWAY_SHARED_SECRET" required:"true"`
	CheckoutURL  string        `envconfig:"BRANDBEAM_GATEWAY_CHECKOUT_URL" default:"https://pay.brandbeam.io/checkout"`
	OrderExpiry  time.Duration `envconfig:"BRANDBEAM_GATEWAY_ORDER_EXPIRY" default:"24h"`
}

type WalletConfig struct {
	MinDepositCents int64 `envconfig:"BRANDBEAM_WALLET_MIN_DEPOSIT_CENTS" default:"100"`
	MaxDepositCents int64 `envconfig:"BRANDBEAM_WALLET_MAX_DEPOSIT_CENTS" default:"100000000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BRANDBEAM_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BRANDBEAM_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"BRANDBEAM_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BRANDBEAM_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"BRANDBEAM_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BRANDBEAM_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"BRANDBEAM_PUBSUB_NOTIFICATION_TOPIC" default:"bb-notification-events"`
	NotificationSubscription string `envconfig:"BRANDBEAM_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BRANDBEAM_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BRANDBEAM_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BRANDBEAM_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"BRANDBEAM_OUTBOX_RETENTION_DAYS" default:"14"`
}

type CronConfig struct {
	DepositExpirySchedule string        `envconfig:"BRANDBEAM_CRON_DEPOSIT_EXPIRY_SCHEDULE" default:"*/10 * * * *"`
	OutboxRetentionHour   int           `envconfig:"BRANDBEAM_CRON_OUTBOX_RETENTION_HOUR" default:"4"`
	LockTTL               time.Duration `envconfig:"BRANDBEAM_CRON_LOCK_TTL" default:"10m"`
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
