package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "POKEHUB"

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

type PokeAPIConfig struct {
	BaseURL  string
	Timeout  time.Duration
	RetryMax int
}

type FetchConfig struct {
	Concurrency  int
	DefaultLimit int
}

type LogConfig struct {
	Level  string
	Format string
}

// Config is the resolved configuration for both the API server and the CLI.
type Config struct {
	HTTPAddr string
	DBPath   string
	Auth     AuthConfig
	PokeAPI  PokeAPIConfig
	Fetch    FetchConfig
	Log      LogConfig
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".pokehub", "data.db")
}

// SetDefaults registers every known key so env overrides resolve even
// without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("db.path", defaultDBPath())
	v.SetDefault("jwt.secret", "dev-secret-change-me")
	v.SetDefault("jwt.issuer", "pokehub")
	v.SetDefault("jwt.ttl", "10h")
	v.SetDefault("pokeapi.base_url", "https://pokeapi.co/api/v2")
	v.SetDefault("pokeapi.timeout", "10s")
	v.SetDefault("pokeapi.retry_max", 0)
	v.SetDefault("fetch.concurrency", 1)
	v.SetDefault("fetch.default_limit", 25)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads defaults, an optional YAML file and POKEHUB_* environment
// variables into a Config. An empty file means "look for pokehub.yaml in
// the working directory and $HOME, and carry on if there is none".
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("pokehub")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		HTTPAddr: v.GetString("http.addr"),
		DBPath:   v.GetString("db.path"),
		Auth: AuthConfig{
			JWTSecret:   v.GetString("jwt.secret"),
			JWTIssuer:   v.GetString("jwt.issuer"),
			JWTDuration: v.GetDuration("jwt.ttl"),
		},
		PokeAPI: PokeAPIConfig{
			BaseURL:  strings.TrimRight(v.GetString("pokeapi.base_url"), "/"),
			Timeout:  v.GetDuration("pokeapi.timeout"),
			RetryMax: v.GetInt("pokeapi.retry_max"),
		},
		Fetch: FetchConfig{
			Concurrency:  v.GetInt("fetch.concurrency"),
			DefaultLimit: v.GetInt("fetch.default_limit"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("config: jwt.secret must not be empty")
	}
	if c.Auth.JWTDuration <= 0 {
		return fmt.Errorf("config: jwt.ttl must be positive, got %s", c.Auth.JWTDuration)
	}
	if c.PokeAPI.Timeout <= 0 {
		return fmt.Errorf("config: pokeapi.timeout must be positive, got %s", c.PokeAPI.Timeout)
	}
	if c.PokeAPI.RetryMax < 0 {
		return fmt.Errorf("config: pokeapi.retry_max must be >= 0, got %d", c.PokeAPI.RetryMax)
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("config: fetch.concurrency must be >= 1, got %d", c.Fetch.Concurrency)
	}
	return nil
}
