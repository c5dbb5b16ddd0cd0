package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
)

type Config struct {
	Earshot  EarshotConfig
	Pushover PushoverConfig
}

type EarshotConfig struct {
	Backend      string `env:"EARSHOT_BACKEND"`
	ListenAddr   string `env:"EARSHOT_LISTEN_ADDR"`
	LogLevel     string `env:"EARSHOT_LOG_LEVEL"`
	DbPath       string `env:"EARSHOT_DB_PATH"`
	StorageDir   string `env:"EARSHOT_STORAGE_DIR"`
	PollInterval int    `env:"EARSHOT_POLL_INTERVAL"` // seconds
	ScriptPath   string `env:"EARSHOT_SCRIPT_PATH"`
	AdapterPath  string `env:"EARSHOT_ADAPTER_PATH"`
	MprisDest    string `env:"EARSHOT_MPRIS_DEST"`
}

type PushoverConfig struct {
	Token     string `env:"PUSHOVER_TOKEN"`
	Recipient string `env:"PUSHOVER_RECIPIENT"`
}

func Load() (Config, error) {
	cfg := Config{
		Earshot: EarshotConfig{
			Backend:      "stream",
			ListenAddr:   ":8080",
			LogLevel:     "info",
			DbPath:       "earshot.db",
			StorageDir:   "/tmp",
			PollInterval: 3,
		},
	}

	c := config.New()
	if _, err := os.Stat(".env"); err == nil {
		c.AddFeeder(feeder.DotEnv{Path: ".env"})
	}
	c.AddFeeder(feeder.Env{})
	c.AddStruct(&cfg)

	if err := c.Feed(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) GetLogLevel() slog.Leveler {
	logLevel := strings.ToLower(c.Earshot.LogLevel)
	if logLevel == "error" {
		return slog.LevelError
	}
	if logLevel == "warning" {
		return slog.LevelWarn
	}
	if logLevel == "info" {
		return slog.LevelInfo
	}
	if logLevel == "debug" {
		return slog.LevelDebug
	}
	// default to info if unknown
	slog.With(slog.String("log_level", logLevel)).Info("Received invalid log level. Defaulting to INFO.")
	return slog.LevelInfo
}
