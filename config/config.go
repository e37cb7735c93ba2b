package config

import (
	"log"
	"time"

	"kpitracker/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Rolling file sink; empty LOG_PATH logs to stdout only.
	LogPath       string `mapstructure:"LOG_PATH"`
	LogMaxSizeMB  int    `mapstructure:"LOG_MAX_SIZE_MB"`
	LogMaxBackups int    `mapstructure:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays int    `mapstructure:"LOG_MAX_AGE_DAYS"`

	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisTaskDB   int    `mapstructure:"REDIS_TASK_DB"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	LockEnabled   bool   `mapstructure:"LOCK_ENABLED"`
	TasksEnabled  bool   `mapstructure:"TASKS_ENABLED"`
	CacheEnabled  bool   `mapstructure:"CACHE_ENABLED"`
	CacheTTLHours int    `mapstructure:"CACHE_TTL_HOURS"`

	// Period archival schedule, evaluated in Timezone.
	Timezone         string `mapstructure:"TIMEZONE"`
	SchedulerEnabled bool   `mapstructure:"SCHEDULER_ENABLED"`
	ArchiveHour      int    `mapstructure:"ARCHIVE_HOUR"`
	ArchiveMinute    int    `mapstructure:"ARCHIVE_MINUTE"`

	WebhookAPIKey string `mapstructure:"WEBHOOK_API_KEY"`
	AdminToken    string `mapstructure:"ADMIN_TOKEN"`

	Goals     models.Goals     `mapstructure:",squash"`
	SpinRules models.SpinRules `mapstructure:",squash"`
}

var AppConfig Config

func LoadConfig() {
	// A missing .env is fine; real deployments use the environment directly.
	_ = godotenv.Load()

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig.Goals = AppConfig.Goals.WithDerived()
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("LOG_PATH", "")
	viper.SetDefault("LOG_MAX_SIZE_MB", 100)
	viper.SetDefault("LOG_MAX_BACKUPS", 3)
	viper.SetDefault("LOG_MAX_AGE_DAYS", 7)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "kpi_tracker")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_LOCK_DB", 0)
	viper.SetDefault("REDIS_TASK_DB", 1)
	viper.SetDefault("REDIS_CACHE_DB", 2)
	viper.SetDefault("LOCK_ENABLED", false)
	viper.SetDefault("TASKS_ENABLED", false)
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("CACHE_TTL_HOURS", 24)
	viper.SetDefault("TIMEZONE", "Local")
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("ARCHIVE_HOUR", 0)
	viper.SetDefault("ARCHIVE_MINUTE", 0)
	viper.SetDefault("WEBHOOK_API_KEY", "")
	viper.SetDefault("ADMIN_TOKEN", "")

	for key, value := range models.DefaultGoals().Settings() {
		viper.SetDefault(key, value)
	}
	viper.SetDefault("SPIN_BOOKINGS_PER_SPIN", models.DefaultSpinRules().BookingsPerSpin)
	viper.SetDefault("SPIN_SPINS_PER_MEGA", models.DefaultSpinRules().SpinsPerMega)
}

// Location resolves TIMEZONE, falling back to the host zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, using local time: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
