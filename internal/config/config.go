package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Order    OrderConfig    `yaml:"order"`
	Realtime RealtimeConfig `yaml:"realtime"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwtSecret"`
	Issuer    string        `yaml:"issuer"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`
}

type OrderConfig struct {
	CreateTxTimeout      time.Duration `yaml:"createTxTimeout"`
	MaxRetryAttempts     int           `yaml:"maxRetryAttempts"`
	AssignmentMode       string        `yaml:"assignmentMode"`
	TransitionPolicy     string        `yaml:"transitionPolicy"`
	VerifyTotal          bool          `yaml:"verifyTotal"`
	PreserveReadyOnClaim bool          `yaml:"preserveReadyOnClaim"`
}

type RealtimeConfig struct {
	AllowedOrigins []string      `yaml:"allowedOrigins"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	SendBuffer     int           `yaml:"sendBuffer"`
	RequireToken   bool          `yaml:"requireToken"`
	RedisAddr      string        `yaml:"redisAddr"`
	RedisChannel   string        `yaml:"redisChannel"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "foodhub")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "foodhub")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTH_JWT_SECRET", "change-me")
	v.SetDefault("AUTH_ISSUER", "foodhub")
	v.SetDefault("AUTH_TOKEN_TTL", "24h")
	v.SetDefault("ORDER_CREATE_TX_TIMEOUT", "5s")
	v.SetDefault("ORDER_MAX_RETRY_ATTEMPTS", 3)
	v.SetDefault("ORDER_ASSIGNMENT_MODE", "atomic")
	v.SetDefault("ORDER_TRANSITION_POLICY", "permissive")
	v.SetDefault("ORDER_VERIFY_TOTAL", false)
	v.SetDefault("ORDER_PRESERVE_READY_ON_ASSIGN", false)
	v.SetDefault("REALTIME_ALLOWED_ORIGINS", "*")
	v.SetDefault("REALTIME_WRITE_TIMEOUT", "10s")
	v.SetDefault("REALTIME_SEND_BUFFER", 32)
	v.SetDefault("REALTIME_REQUIRE_TOKEN", false)
	v.SetDefault("REALTIME_REDIS_ADDR", "")
	v.SetDefault("REALTIME_REDIS_CHANNEL", "foodhub:notifications")

	connMaxLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}
	tokenTTL, err := time.ParseDuration(v.GetString("AUTH_TOKEN_TTL"))
	if err != nil {
		return nil, err
	}
	createTxTimeout, err := time.ParseDuration(v.GetString("ORDER_CREATE_TX_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	writeTimeout, err := time.ParseDuration(v.GetString("REALTIME_WRITE_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("AUTH_JWT_SECRET"),
			Issuer:    v.GetString("AUTH_ISSUER"),
			TokenTTL:  tokenTTL,
		},
		Order: OrderConfig{
			CreateTxTimeout:      createTxTimeout,
			MaxRetryAttempts:     v.GetInt("ORDER_MAX_RETRY_ATTEMPTS"),
			AssignmentMode:       v.GetString("ORDER_ASSIGNMENT_MODE"),
			TransitionPolicy:     v.GetString("ORDER_TRANSITION_POLICY"),
			VerifyTotal:          v.GetBool("ORDER_VERIFY_TOTAL"),
			PreserveReadyOnClaim: v.GetBool("ORDER_PRESERVE_READY_ON_ASSIGN"),
		},
		Realtime: RealtimeConfig{
			AllowedOrigins: splitList(v.GetString("REALTIME_ALLOWED_ORIGINS")),
			WriteTimeout:   writeTimeout,
			SendBuffer:     v.GetInt("REALTIME_SEND_BUFFER"),
			RequireToken:   v.GetBool("REALTIME_REQUIRE_TOKEN"),
			RedisAddr:      v.GetString("REALTIME_REDIS_ADDR"),
			RedisChannel:   v.GetString("REALTIME_REDIS_CHANNEL"),
		},
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
