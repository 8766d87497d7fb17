package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	IdentityStoreMemory = "memory"
	IdentityStoreRedis  = "redis"
)

type Config struct {
	LogLevel      string        `yaml:"log-level" env:"MOLE_LOG_LEVEL" env-default:"info"`
	LogFile       string        `yaml:"log-file" env:"MOLE_LOG_FILE" env-default:"mole.log"`
	Server        Server        `yaml:"server"`
	PollInterval  time.Duration `yaml:"poll-interval" env:"MOLE_POLL_INTERVAL" env-default:"1s"`
	TimerInterval time.Duration `yaml:"timer-interval" env:"MOLE_TIMER_INTERVAL" env-default:"500ms"`
	Identity      Identity      `yaml:"identity"`
}

type Server struct {
	URL            string        `yaml:"url" env:"MOLE_SERVER_URL" env-default:"http://localhost:8000"`
	RequestTimeout time.Duration `yaml:"request-timeout" env:"MOLE_REQUEST_TIMEOUT" env-default:"5s"`
}

type Identity struct {
	Store string `yaml:"store" env:"MOLE_IDENTITY_STORE" env-default:"memory"`
	Redis Redis  `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env:"MOLE_REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"MOLE_REDIS_PORT" env-default:"6379"`
	DB   int    `yaml:"db" env:"MOLE_REDIS_DB" env-default:"0"`
}

// Load reads the config file at path, falling back to env and defaults when the file is missing.
func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read config from env: %w", err)
		}
		return config, config.validate()
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, config.validate()
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Config) validate() error {
	if that.Server.URL == "" {
		return errors.New("server url must not be empty")
	}
	if that.PollInterval <= 0 || that.TimerInterval <= 0 {
		return errors.New("poll-interval and timer-interval must be positive")
	}

	switch that.Identity.Store {
	case IdentityStoreMemory, IdentityStoreRedis:
	default:
		return fmt.Errorf("unknown identity store %q", that.Identity.Store)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
