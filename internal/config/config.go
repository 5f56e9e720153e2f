package config

import (
	"strings"
	"time"

	"github.com/aims/storefront/internal/payment"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const appID = "storefront"

// Config is read from STOREFRONT_* environment variables.
type Config struct {
	HTTPPort           string        `envconfig:"http_port" default:"8080"`
	GRPCPort           string        `envconfig:"grpc_port" default:"50051"`
	RequestTimeout     time.Duration `envconfig:"request_timeout" default:"30s"`
	ShutdownTimeout    time.Duration `envconfig:"shutdown_timeout" default:"10s"`
	MaxRequestBodySize int64         `envconfig:"max_request_body_size" default:"1048576"`
	AllowedOrigins     []string      `envconfig:"allowed_origins" default:"*"`
	RateLimit          float64       `envconfig:"rate_limit" default:"20"`
	RateBurst          int           `envconfig:"rate_burst" default:"40"`

	// BackendURL points at a remote backend, e.g. http://host:8080/api/backend.
	// Empty runs the in-process simulator.
	BackendURL              string        `envconfig:"backend_url"`
	BackendTimeout          time.Duration `envconfig:"backend_timeout" default:"15s"`
	BackendFailureThreshold uint32        `envconfig:"backend_failure_threshold" default:"5"`
	BackendOpenTimeout      time.Duration `envconfig:"backend_open_timeout" default:"30s"`
	SimulateLatency         bool          `envconfig:"simulate_latency" default:"true"`

	RedisAddr     string        `envconfig:"redis_addr"`
	RedisPassword string        `envconfig:"redis_password"`
	FeeCacheTTL   time.Duration `envconfig:"fee_cache_ttl" default:"5m"`
	FeeTimeout    time.Duration `envconfig:"fee_timeout" default:"5s"`

	KafkaBrokers []string      `envconfig:"kafka_brokers"`
	OutboxTick   time.Duration `envconfig:"outbox_tick" default:"1s"`

	PollInterval  time.Duration `envconfig:"payment_poll_interval" default:"2s"`
	MaxAttempts   int           `envconfig:"payment_max_attempts" default:"10"`
	QRLifetime    time.Duration `envconfig:"payment_qr_lifetime" default:"60s"`
	SuccessDelay  time.Duration `envconfig:"payment_success_delay" default:"1500ms"`
	CardTimeout   time.Duration `envconfig:"payment_card_timeout" default:"10s"`
	InitTimeout   time.Duration `envconfig:"payment_init_timeout" default:"10s"`

	AvailabilityTimeout time.Duration `envconfig:"availability_timeout" default:"5s"`

	NotificationDuration time.Duration `envconfig:"notification_duration" default:"3s"`
	NotificationStagger  time.Duration `envconfig:"notification_stagger" default:"500ms"`

	LogLevel  string `envconfig:"log_level" default:"info"`
	LogFormat string `envconfig:"log_format" default:"text"`
}

func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process(appID, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse env")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.MaxAttempts < 1 {
		return errors.Errorf("payment max attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.PollInterval <= 0 || c.QRLifetime <= 0 {
		return errors.New("payment poll interval and QR lifetime must be positive")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return errors.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

func (c *Config) Payment() payment.Config {
	return payment.Config{
		PollInterval: c.PollInterval,
		MaxAttempts:  c.MaxAttempts,
		QRLifetime:   c.QRLifetime,
		SuccessDelay: c.SuccessDelay,
		InitTimeout:  c.InitTimeout,
		CardTimeout:  c.CardTimeout,
	}
}

// SetupLogging applies the level and formatter to the standard logrus logger.
func (c *Config) SetupLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
