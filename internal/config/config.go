package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/channelmesh/pathfinder/pkg/logger"
	"github.com/channelmesh/pathfinder/pkg/logger/slogx"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configOnce sync.Once
	config     = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		HTTPServer: HTTPServer{
			Port: 8000,
		},
		Modules: Modules{
			Pathfinding: Pathfinding{
				APIHandlers: []string{"http"},
			},
		},
	}
)

type Config struct {
	Logger     logger.Config `mapstructure:"logger"`
	HTTPServer HTTPServer    `mapstructure:"http_server"`
	Modules    Modules       `mapstructure:"modules"`
}

type HTTPServer struct {
	Port int `mapstructure:"port"`
}

type Modules struct {
	Pathfinding Pathfinding `mapstructure:"pathfinding"`
}

type Pathfinding struct {
	// Operator identifies who runs this service in the /v1/info response.
	Operator string `mapstructure:"operator"`

	// Message is a free-form notice surfaced to API consumers.
	Message string `mapstructure:"message"`

	APIHandlers []string `mapstructure:"api_handlers"`
}

// BindPFlag binds a command-line flag to a configuration key so flags win
// over file and environment values.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Failed to bind flag to configuration", slogx.String("key", key), slogx.Error(err))
	}
}

// Parse loads the configuration, preferring the given config file when set.
// Missing files fall back to defaults.
func Parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		}
		viper.AddConfigPath("./")
		viper.SetConfigName("config")

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
		logger.InfoContext(ctx, "loaded config successfully")
	})

	return *config
}

// Load returns the already-parsed configuration, parsing with defaults on
// first use.
func Load() Config {
	return Parse("")
}
