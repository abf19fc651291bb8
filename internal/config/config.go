package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers understood by the server.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds runtime configuration sourced from configs/config.yml and env vars.
type Config struct {
	Port            string
	LogLevel        string
	LogFormat       string
	DBDriver        string
	DBPath          string
	DBDSN           string
	JWTSecret       string
	TokenTTL        time.Duration
	CORSOrigins     []string
	AMQPURL         string
	AMQPExchange    string
	AMQPRoutingKey  string
	ShutdownTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.path", "expense_tracker.db")
	v.SetDefault("db.dsn", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 2*time.Hour)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "expenses")
	v.SetDefault("amqp.routing_key", "expense.changed")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Load reads config.yml from the given directories (missing file is fine),
// applies env overrides (db.path -> DB_PATH) and validates the result.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Port:            strings.TrimSpace(v.GetString("port")),
		LogLevel:        strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
		LogFormat:       strings.ToLower(strings.TrimSpace(v.GetString("log.format"))),
		DBDriver:        strings.ToLower(strings.TrimSpace(v.GetString("db.driver"))),
		DBPath:          strings.TrimSpace(v.GetString("db.path")),
		DBDSN:           strings.TrimSpace(v.GetString("db.dsn")),
		JWTSecret:       strings.TrimSpace(v.GetString("auth.jwt_secret")),
		TokenTTL:        v.GetDuration("auth.token_ttl"),
		CORSOrigins:     parseOrigins(v.GetStringSlice("cors.allowed_origins")),
		AMQPURL:         strings.TrimSpace(v.GetString("amqp.url")),
		AMQPExchange:    strings.TrimSpace(v.GetString("amqp.exchange")),
		AMQPRoutingKey:  strings.TrimSpace(v.GetString("amqp.routing_key")),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	var problems []string

	if c.Port == "" {
		problems = append(problems, "port is required")
	}
	if c.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret is required (AUTH_JWT_SECRET)")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "auth.token_ttl must be positive")
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			problems = append(problems, "db.path is required for sqlite")
		}
	case DriverPostgres:
		if c.DBDSN == "" {
			problems = append(problems, "db.dsn is required for postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown db.driver %q", c.DBDriver))
	}
	if c.AMQPURL != "" && c.AMQPExchange == "" {
		problems = append(problems, "amqp.exchange is required when amqp.url is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// HTTPAddress returns the listen address for the HTTP server.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// parseOrigins accepts both YAML lists and comma separated env values.
func parseOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
