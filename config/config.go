package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"time"

	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/configparser"
	"github.com/Temutjin2k/govv-tracker/pkg/logger"
)

// Flags
var (
	modeFlag = flag.String("mode", "", "application mode (tracker, standing-worker)")
)

// Errors
var (
	ErrInvalidMode        = errors.New("invalid mode")
	ErrInvalidStoreDriver = errors.New("invalid store driver")
	ErrInvalidPolicy      = errors.New("invalid gamification policy")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrWorkerNeedsBroker  = errors.New("standing-worker mode requires RABBITMQ_ENABLED=true")
	ErrWorkerSharedStore  = errors.New("standing-worker mode requires a shared store (sqlite or postgres)")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Mode types.ServiceMode `env:"MODE" default:"tracker"`

		Log          LogConfig
		HTTP         HTTPConfig
		Store        StoreConfig
		Database     DatabaseConfig
		Redis        RedisConfig
		RabbitMQ     RabbitMQConfig
		Tracker      TrackerConfig
		Gamification GamificationConfig
		Auth         Auth
		ExternalAPI  ExternalAPIConfig
	}

	LogConfig struct {
		Level string `env:"LOG_LEVEL" default:"INFO"`
	}

	HTTPConfig struct {
		Host            string        `env:"HTTP_HOST" default:"0.0.0.0"`
		Port            string        `env:"HTTP_PORT" default:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" default:"15s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" default:"5s"`
	}

	StoreConfig struct {
		Driver     types.StoreDriver `env:"STORE_DRIVER" default:"file"`
		FilePath   string            `env:"STORE_FILE_PATH" default:"data/activities.json"`
		SQLitePath string            `env:"STORE_SQLITE_PATH" default:"data/govv.db"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"govv_user"`
		Password string `env:"DATABASE_PASSWORD" default:"govv_pass"`
		Database string `env:"DATABASE_DATABASE" default:"govv_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	// RedisConfig: an empty address keeps live fan-out in process and disables the standing cache.
	RedisConfig struct {
		Addr        string        `env:"REDIS_ADDR"`
		Password    string        `env:"REDIS_PASSWORD"`
		DB          int           `env:"REDIS_DB" default:"0"`
		StandingTTL time.Duration `env:"REDIS_STANDING_TTL" default:"10m"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
		Prefetch int    `env:"RABBITMQ_PREFETCH" default:"10"`
	}

	TrackerConfig struct {
		SampleInterval time.Duration `env:"TRACKER_SAMPLE_INTERVAL" default:"1s"`
		BaseLat        float64       `env:"TRACKER_BASE_LAT" default:"12.9716"`
		BaseLng        float64       `env:"TRACKER_BASE_LNG" default:"77.5946"`
		MaxStepDeg     float64       `env:"TRACKER_MAX_STEP_DEG" default:"0.00025"`
		LiveEnabled    bool          `env:"TRACKER_LIVE_ENABLED" default:"true"`
		LiveAttachWait time.Duration `env:"TRACKER_LIVE_ATTACH_WAIT" default:"250ms"`
		SessionIdleTTL time.Duration `env:"TRACKER_SESSION_IDLE_TTL" default:"30m"`
	}

	GamificationConfig struct {
		Policy types.RewardPolicy `env:"GAMIFICATION_POLICY" default:"bonus"`
	}

	// Auth: an empty secret makes every request act as the anonymous rider.
	Auth struct {
		JWTSecret string `env:"AUTH_JWT_SECRET"`
	}

	ExternalAPIConfig struct {
		LocationIQapiKey  string        `env:"LOCATIONIQ_API_KEY"`
		LocationIQBaseURL string        `env:"LOCATIONIQ_BASE_URL" default:"https://us1.locationiq.com"`
		LocationIQTimeout time.Duration `env:"LOCATIONIQ_TIMEOUT" default:"5s"`
	}
)

func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c DatabaseConfig) PoolLimits() (int32, int32, time.Duration, time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func (c RedisConfig) GetAddr() string     { return c.Addr }
func (c RedisConfig) GetPassword() string { return c.Password }
func (c RedisConfig) GetDB() int          { return c.DB }

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	// -mode overrides MODE
	if modeFlag != nil && *modeFlag != "" {
		cfg.Mode = types.ServiceMode(*modeFlag)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case types.TrackerService, types.StandingWorkerService:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if !c.Store.Driver.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStoreDriver, c.Store.Driver)
	}
	if !c.Gamification.Policy.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPolicy, c.Gamification.Policy)
	}
	if !logger.ValidateLogLevel(c.Log.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	if c.Mode == types.StandingWorkerService {
		if !c.RabbitMQ.Enabled {
			return ErrWorkerNeedsBroker
		}
		// the file store is loaded once per process and never sees the tracker's appends
		if c.Store.Driver == types.StoreFile {
			return fmt.Errorf("%w: %q", ErrWorkerSharedStore, c.Store.Driver)
		}
	}
	return nil
}
