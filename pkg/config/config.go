package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Cart         CartConfig
	History      HistoryConfig
	Persistence  PersistenceConfig
	Inventory    InventoryConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if cfg.FeatureFlags.ForwardEvents && strings.TrimSpace(cfg.GCP.ProjectID) == "" {
		return nil, fmt.Errorf("%s is required when %s is enabled", EnvGCPProjectID, EnvForwardEvents)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"CHARMCART_APP_ENV" required:"true"`
	Port         string   `envconfig:"CHARMCART_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"CHARMCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"CHARMCART_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"CHARMCART_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CHARMCART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CHARMCART_DB_DSN"`
	Driver string `envconfig:"CHARMCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CHARMCART_DB_HOST"`
	LegacyPort     int    `envconfig:"CHARMCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CHARMCART_DB_USER"`
	LegacyPassword string `envconfig:"CHARMCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"CHARMCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"CHARMCART_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"CHARMCART_DB_SQLITE_PATH" default:"charmcart.db"`

	MaxOpenConns    int           `envconfig:"CHARMCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHARMCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHARMCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHARMCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"CHARMCART_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CHARMCART_REDIS_URL"`
	Address      string        `envconfig:"CHARMCART_REDIS_ADDR"`
	Password     string        `envconfig:"CHARMCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHARMCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHARMCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHARMCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHARMCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHARMCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHARMCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CartConfig carries the cart limits and the flat pricing policy.
type CartConfig struct {
	MaxItemPrice          decimal.Decimal `envconfig:"CHARMCART_CART_MAX_ITEM_PRICE" default:"10000"`
	MaxQuantityPerItem    int             `envconfig:"CHARMCART_CART_MAX_QTY_PER_ITEM" default:"10"`
	MaxLineItems          int             `envconfig:"CHARMCART_CART_MAX_LINE_ITEMS" default:"50"`
	TaxRate               decimal.Decimal `envconfig:"CHARMCART_CART_TAX_RATE" default:"0.08"`
	FreeShippingThreshold decimal.Decimal `envconfig:"CHARMCART_CART_FREE_SHIPPING_THRESHOLD" default:"75"`
	ShippingFee           decimal.Decimal `envconfig:"CHARMCART_CART_SHIPPING_FEE" default:"12.99"`
	DesignBaseFee         decimal.Decimal `envconfig:"CHARMCART_CART_DESIGN_BASE_FEE" default:"5"`
	UndoDepth             int             `envconfig:"CHARMCART_CART_UNDO_DEPTH" default:"20"`
}

func (c CartConfig) validate() error {
	if c.MaxQuantityPerItem <= 0 {
		return fmt.Errorf("%s must be positive", EnvCartMaxQtyPerItem)
	}
	if c.MaxLineItems <= 0 {
		return fmt.Errorf("%s must be positive", EnvCartMaxLineItems)
	}
	if c.TaxRate.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvCartTaxRate)
	}
	if c.ShippingFee.IsNegative() || c.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("shipping settings must not be negative")
	}
	return nil
}

// HistoryConfig tunes the design editor's undo history.
type HistoryConfig struct {
	MaxEntries        int     `envconfig:"CHARMCART_HISTORY_MAX_ENTRIES" default:"50"`
	PositionTolerance float64 `envconfig:"CHARMCART_HISTORY_POSITION_TOLERANCE" default:"0.5"`
	RotationTolerance float64 `envconfig:"CHARMCART_HISTORY_ROTATION_TOLERANCE" default:"0.000001"`
}

type PersistenceConfig struct {
	FlushInterval  time.Duration `envconfig:"CHARMCART_PERSISTENCE_FLUSH_INTERVAL" default:"30s"`
	GuestTTL       time.Duration `envconfig:"CHARMCART_CART_GUEST_TTL" default:"168h"`
	SessionIdleTTL time.Duration `envconfig:"CHARMCART_SESSION_IDLE_TTL" default:"2h"`
	SaveTimeout    time.Duration `envconfig:"CHARMCART_PERSISTENCE_SAVE_TIMEOUT" default:"5s"`
}

type InventoryConfig struct {
	CacheTTL time.Duration `envconfig:"CHARMCART_INVENTORY_CACHE_TTL" default:"15s"`
}

type FeatureFlagsConfig struct {
	UseSQLite      bool `envconfig:"CHARMCART_USE_SQLITE" default:"false"`
	UseMemoryStore bool `envconfig:"CHARMCART_USE_MEMORY_STORE" default:"false"`
	AutoMigrate    bool `envconfig:"CHARMCART_AUTO_MIGRATE" default:"false"`
	ForwardEvents  bool `envconfig:"CHARMCART_FORWARD_EVENTS" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"CHARMCART_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	CartEventsTopic string `envconfig:"CHARMCART_PUBSUB_CART_EVENTS_TOPIC" default:"charmcart-cart-events"`
	OrderBySession  bool   `envconfig:"CHARMCART_PUBSUB_ORDER_BY_SESSION" default:"true"`
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
