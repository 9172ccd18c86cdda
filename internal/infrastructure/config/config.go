package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Auth     AuthConfig
	Audit    AuditConfig
	Reminder ReminderConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type AuthConfig struct {
	UsersFile     string        `env:"USERS_FILE,           default=users.txt"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,            default=24h"`
	BcryptCost    int           `env:"BCRYPT_COST,          default=12"`
	MaxFailures   int           `env:"LOGIN_MAX_FAILURES,   default=5"`
	FailureWindow time.Duration `env:"LOGIN_FAILURE_WINDOW, default=15m"`
}

type AuditConfig struct {
	File            string        `env:"AUDIT_FILE,             default=audit_log.dat"`
	QueueSize       int           `env:"AUDIT_QUEUE_SIZE,       default=256"`
	ShutdownTimeout time.Duration `env:"AUDIT_SHUTDOWN_TIMEOUT, default=5s"`
	CompactOnStart  bool          `env:"AUDIT_COMPACT_ON_START, default=false"`
}

type ReminderConfig struct {
	Interval   time.Duration `env:"REMINDER_INTERVAL,    default=60s"`
	LeadDays   int           `env:"REMINDER_LEAD_DAYS,   default=7"`
	LowerBound string        `env:"REMINDER_LOWER_BOUND, default=inclusive"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=freelance_tracker"`
}

// RedisConfig is optional: when Redis is disabled or cannot be reached login
// throttling is off.
type RedisConfig struct {
	Enabled     bool          `env:"REDIS_ENABLED,      default=true"`
	Addr        string        `env:"REDIS_ADDR,         default=localhost:6379"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB,           default=0"`
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT, default=5s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether logs should be emitted as JSON.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	switch {
	case c.JWTSecret == "":
		return fmt.Errorf("JWT_SECRET is required")
	case c.Auth.UsersFile == "":
		return fmt.Errorf("USERS_FILE is required")
	case c.Audit.File == "":
		return fmt.Errorf("AUDIT_FILE is required")
	case c.Reminder.Interval <= 0:
		return fmt.Errorf("REMINDER_INTERVAL must be positive")
	case c.Reminder.LeadDays <= 0:
		return fmt.Errorf("REMINDER_LEAD_DAYS must be positive")
	case c.Audit.QueueSize <= 0:
		return fmt.Errorf("AUDIT_QUEUE_SIZE must be positive")
	}
	return nil
}
