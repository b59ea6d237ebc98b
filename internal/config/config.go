package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// SqliteConfig holds local snapshot cache settings for the sqlite backend.
type SqliteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./waymarklogs")

	viper.SetDefault("api.baseUrl", "http://localhost:8000")
	viper.SetDefault("api.mediaPrefix", "/media/")
	viper.SetDefault("api.timeoutSeconds", 30)

	viper.SetDefault("limits.maxRoutes", 15)
	viper.SetDefault("limits.maxPointsPerRoute", 30)
	viper.SetDefault("limits.maxImagesPerPoint", 4)
	viper.SetDefault("limits.maxImageSizeBytes", 1*1024*1024)
	viper.SetDefault("limits.maxRouteNameLength", 100)
	viper.SetDefault("limits.maxRouteDescriptionLength", 500)
	viper.SetDefault("limits.maxPointNameLength", 100)
	viper.SetDefault("limits.maxPointDescriptionLength", 1000)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.sqlite.path", "./waymark_snapshot.db")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "waymark-metrics")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetConfigName("waymark.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Sqlite returns the sqlite snapshot cache settings.
func Sqlite() SqliteConfig {
	return SqliteConfig{
		Path: viper.GetString("storage.sqlite.path"),
	}
}
