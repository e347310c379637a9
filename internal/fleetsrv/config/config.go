package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type ConfigParam struct {
	ServerPort     string         `toml:"server_port"`
	HandleCORS     bool           `toml:"handle_cors"`
	AllowedOrigins []string       `toml:"allowed_origins"`
	LogLevel       string         `toml:"log_level"`
	AutoMigrate    bool           `toml:"auto_migrate"`
	DB             DBConfig       `toml:"db"`
	Auth           AuthConfig     `toml:"auth"`
	Billing        BillingConfig  `toml:"billing"`
	Activity       ActivityConfig `toml:"activity"`
}

type DBConfig struct {
	Host             string `toml:"host"`
	Port             int    `toml:"port"`
	User             string `toml:"user"`
	Password         string `toml:"password"`
	DBName           string `toml:"dbname"`
	SSLMode          string `toml:"sslmode"`
	MaxOpenConns     int    `toml:"max_open_conns"`
	StatementTimeout string `toml:"statement_timeout"`
	LockTimeout      string `toml:"lock_timeout"`
	ConnectAttempts  uint   `toml:"connect_attempts"`
}

type AuthConfig struct {
	SigningKey    string `toml:"signing_key"`
	Issuer        string `toml:"issuer"`
	Audience      string `toml:"audience"`
	TokenValidity string `toml:"token_validity"`
}

type BillingConfig struct {
	WebhookSecret      string `toml:"webhook_secret"`
	SignatureTolerance string `toml:"signature_tolerance"`
}

type ActivityConfig struct {
	QueueSize int    `toml:"queue_size"`
	Workers   int    `toml:"workers"`
	Timeout   string `toml:"timeout"`
}

var cfg *ConfigParam

func Config() *ConfigParam {
	return cfg
}

func defaults() ConfigParam {
	return ConfigParam{
		ServerPort:     "8080",
		HandleCORS:     true,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		LogLevel:       "info",
		DB: DBConfig{
			Host:             "localhost",
			Port:             5432,
			User:             "fleet_api",
			DBName:           "fleetmanage",
			SSLMode:          "disable",
			MaxOpenConns:     20,
			StatementTimeout: "5s",
			LockTimeout:      "5s",
			ConnectAttempts:  5,
		},
		Auth: AuthConfig{
			Issuer:        "fleetmanage",
			Audience:      "fleetmanage-api",
			TokenValidity: "12h",
		},
		Billing: BillingConfig{
			SignatureTolerance: "5m",
		},
		Activity: ActivityConfig{
			QueueSize: 1024,
			Workers:   2,
			Timeout:   "2s",
		},
	}
}

// LoadConfig reads a toml file over the defaults. An empty filename loads the
// defaults only. FLEET_DB_PASSWORD, FLEET_SIGNING_KEY and
// FLEET_BILLING_WEBHOOK_SECRET override the file.
func LoadConfig(filename string) error {
	cp := defaults()
	if filename != "" {
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("error reading config file: %v", err)
		}
		if _, err := toml.Decode(string(content), &cp); err != nil {
			return fmt.Errorf("error parsing config file: %v", err)
		}
	}
	if v := os.Getenv("FLEET_DB_PASSWORD"); v != "" {
		cp.DB.Password = v
	}
	if v := os.Getenv("FLEET_SIGNING_KEY"); v != "" {
		cp.Auth.SigningKey = v
	}
	if v := os.Getenv("FLEET_BILLING_WEBHOOK_SECRET"); v != "" {
		cp.Billing.WebhookSecret = v
	}
	if _, err := ParseTokenDuration(cp.Auth.TokenValidity); err != nil {
		return fmt.Errorf("invalid token_validity: %v", err)
	}
	cfg = &cp
	return nil
}

// DSN returns a pgx connection string. Statement and lock timeouts are sent
// as runtime parameters so they apply to every pooled connection.
func (c DBConfig) DSN() string {
	parts := []string{
		"host=" + c.Host,
		"port=" + strconv.Itoa(c.Port),
		"user=" + c.User,
		"dbname=" + c.DBName,
		"sslmode=" + c.SSLMode,
	}
	if c.Password != "" {
		parts = append(parts, "password='"+strings.ReplaceAll(c.Password, "'", `\'`)+"'")
	}
	if c.StatementTimeout != "" {
		parts = append(parts, "statement_timeout="+pgInterval(c.StatementTimeout))
	}
	if c.LockTimeout != "" {
		parts = append(parts, "lock_timeout="+pgInterval(c.LockTimeout))
	}
	return strings.Join(parts, " ")
}

// pgInterval turns a Go duration into milliseconds, leaving anything else as is.
func pgInterval(s string) string {
	if d, err := time.ParseDuration(s); err == nil {
		return strconv.FormatInt(d.Milliseconds(), 10)
	}
	return s
}

// ParseTokenDuration accepts Go durations ("90m", "12h") and day or year counts ("1d", "1y").
func ParseTokenDuration(input string) (time.Duration, error) {
	if len(input) < 2 {
		return 0, fmt.Errorf("invalid input format")
	}
	if d, err := time.ParseDuration(input); err == nil {
		return d, nil
	}

	unit := input[len(input)-1:]
	valueStr := input[:len(input)-1]
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", err)
	}

	var duration time.Duration
	switch unit {
	case "d":
		duration = time.Duration(value) * 24 * time.Hour
	case "y":
		duration = time.Duration(value) * 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown time unit: %s", unit)
	}

	return duration, nil
}

// MustDuration parses a configured duration, falling back to def.
func MustDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := ParseTokenDuration(s)
	if err != nil {
		return def
	}
	return d
}

func init() {
	err := LoadConfig("")
	if err != nil {
		panic(err)
	}
}
