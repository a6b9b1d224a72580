package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix scopes environment overrides: SIM_DB_PATH sets db.path.
const EnvPrefix = "SIM"

// VehicleConfig is one vehicle added to the simulation at startup.
type VehicleConfig struct {
	X        int     `json:"x" mapstructure:"x"`
	Y        int     `json:"y" mapstructure:"y"`
	Capacity float64 `json:"capacity" mapstructure:"capacity"`
}

// Load layers configuration: defaults, then an optional sim.{json,yaml} in
// configDir, then a .env file in the working directory, then the environment.
// A missing config file or .env is not an error.
func Load(configDir string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", true)

	viper.SetDefault("server.port", "8080")

	viper.SetDefault("db.path", "data/sim.db")
	viper.SetDefault("db.url", "")
	viper.SetDefault("seed.path", "data/seeds/region.json")

	viper.SetDefault("cache.paths", "sqlite")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.ttl", "24h")

	viper.SetDefault("delivery.stops", "load")

	viper.SetDefault("events.sink", "sqlite")
	viper.SetDefault("events.recent", 200)

	viper.SetDefault("sim.ticks", 0)
	viper.SetDefault("sim.vehicles", []map[string]any{
		{"x": 0, "y": 0, "capacity": 10},
	})

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("sim")
	viper.AddConfigPath(configDir)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetString(key string) string {
	return viper.GetString(key)
}

func GetInt(key string) int {
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	return viper.GetBool(key)
}

func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetList splits a comma separated value, dropping blanks.
func GetList(key string) []string {
	var out []string
	for _, s := range strings.Split(viper.GetString(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Vehicles returns the startup fleet from sim.vehicles.
func Vehicles() ([]VehicleConfig, error) {
	var out []VehicleConfig
	if err := viper.UnmarshalKey("sim.vehicles", &out); err != nil {
		return nil, fmt.Errorf("decode sim.vehicles: %w", err)
	}
	for i, v := range out {
		if v.Capacity < 0 {
			return nil, fmt.Errorf("sim.vehicles[%d]: negative capacity %.2f", i, v.Capacity)
		}
	}
	return out, nil
}
