package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                    string
	Env                     string
	MongoURI                string
	MongoDB                 string
	MongoTransactions       bool
	PostgresConnStr         string
	RedisAddr               string
	RedisPassword           string
	RedisDB                 int
	JWTSecret               string
	FirebaseCredentialsPath string
	MetricsPort             string
	LogLevel                string
	LogFile                 string
	RateLimitRPS            float64
	RateLimitBurst          int
	NotifyConcurrency       int
	ProfileCacheTTL         time.Duration
	CORSOrigins             []string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("MONGO_DB", "pressroom")
	v.SetDefault("MONGO_TRANSACTIONS", false)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("NOTIFY_CONCURRENCY", 8)
	v.SetDefault("PROFILE_CACHE_TTL", "5m")

	for _, key := range []string{"MONGO_URI", "POSTGRES_CONN_STR", "REDIS_ADDR", "REDIS_PASSWORD", "JWT_SECRET", "FIREBASE_CREDENTIALS_PATH", "LOG_FILE", "CORS_ORIGINS"} {
		_ = v.BindEnv(key)
	}
}

// Load reads configuration from the environment, a .env file, and an optional
// YAML file named by CONFIG_PATH. Environment variables take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	c := &Config{
		Port:                    v.GetString("PORT"),
		Env:                     v.GetString("ENV"),
		MongoURI:                v.GetString("MONGO_URI"),
		MongoDB:                 v.GetString("MONGO_DB"),
		MongoTransactions:       v.GetBool("MONGO_TRANSACTIONS"),
		PostgresConnStr:         v.GetString("POSTGRES_CONN_STR"),
		RedisAddr:               v.GetString("REDIS_ADDR"),
		RedisPassword:           v.GetString("REDIS_PASSWORD"),
		RedisDB:                 v.GetInt("REDIS_DB"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		MetricsPort:             v.GetString("METRICS_PORT"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		LogFile:                 v.GetString("LOG_FILE"),
		RateLimitRPS:            v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:          v.GetInt("RATE_LIMIT_BURST"),
		NotifyConcurrency:       v.GetInt("NOTIFY_CONCURRENCY"),
		ProfileCacheTTL:         v.GetDuration("PROFILE_CACHE_TTL"),
		CORSOrigins:             splitList(v.GetString("CORS_ORIGINS")),
	}
	return c, c.Validate()
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI environment variable not set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable not set")
	}
	return nil
}
