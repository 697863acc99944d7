package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config configures the forum API server.
type Config struct {
	Server     Server     `yaml:"server"`
	Logger     Logger     `yaml:"logger"`
	PostgresDB PostgresDB `yaml:"db"`
	Auth       Auth       `yaml:"auth"`
}

// WebConfig configures the web shell that renders the forum over the API.
type WebConfig struct {
	Server     Server     `yaml:"server"`
	Logger     Logger     `yaml:"logger"`
	Gateway    Gateway    `yaml:"gateway"`
	RedisCache RedisCache `yaml:"rdb"`
	Views      Views      `yaml:"views"`
}

type Server struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type Logger struct {
	Level     string   `yaml:"level"`
	Output    []string `yaml:"output"`
	ErrOutput []string `yaml:"errOutput"`
}

type PostgresDB struct {
	Addr     string `yaml:"addr"`
	Username string `env:"POSTGRES_USER"     env-required:"true" yaml:"username"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	DB       string `env:"POSTGRES_DB"       env-required:"true" yaml:"db"`
	SSLmode  string `yaml:"sslmode"`
	MaxConns string `yaml:"maxConns"`
	Reload   bool   `yaml:"reload"`
	Version  int    `yaml:"version"`
}

type Auth struct {
	TTL    time.Duration `yaml:"ttl"`
	Secret string        `env:"SECRET" env-required:"true" yaml:"secret"`
	Admin  Admin         `yaml:"admin"`
}

// Admin is the account created on startup when Username is set.
type Admin struct {
	Username string `env:"ADMIN_USERNAME" yaml:"username"`
	Email    string `env:"ADMIN_EMAIL"    yaml:"email"`
	Password string `env:"ADMIN_PASSWORD" yaml:"password"`
}

type RedisCache struct {
	Addr     string        `yaml:"addr"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int           `yaml:"db"`
	ExpTime  time.Duration `yaml:"exp"`
}

// Gateway points the web shell at the API server.
type Gateway struct {
	BaseURL string        `env:"STACKIT_API_URL" env-default:"http://localhost:8000" yaml:"baseURL"`
	Timeout time.Duration `env-default:"10s"     yaml:"timeout"`
}

// Views tunes the per-session view models.
type Views struct {
	SearchDelay   time.Duration `env-default:"500ms" yaml:"searchDelay"`
	WorkspaceTTL  time.Duration `env-default:"30m"   yaml:"workspaceTTL"`
	MaxWorkspaces int           `env-default:"10000" yaml:"maxWorkspaces"`
}

func New(configPath string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config error: %w", err)
	}

	return cfg, nil
}

func NewWeb(configPath string) (WebConfig, error) {
	var cfg WebConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return WebConfig{}, fmt.Errorf("read web config error: %w", err)
	}

	return cfg, nil
}

// ConnString builds the pgx connection string for the pool.
func (p PostgresDB) ConnString() string {
	return "postgres://" + p.Username + ":" + p.Password + "@" +
		p.Addr + "/" + p.DB + "?" + "sslmode=" + p.SSLmode + "&pool_max_conns=" + p.MaxConns
}

// MigrationConnString omits pool options that the stdlib driver rejects.
func (p PostgresDB) MigrationConnString() string {
	return "postgres://" + p.Username + ":" + p.Password + "@" +
		p.Addr + "/" + p.DB + "?" + "sslmode=" + p.SSLmode
}
