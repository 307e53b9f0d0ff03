package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Redis  RedisConfig  `yaml:"redis"`
	MQ     MQConfig     `yaml:"mq"`
	JWT    JWTConfig    `yaml:"jwt"`
	Notify NotifyConfig `yaml:"notify"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// RedisConfig is optional; an empty Addr means the in-memory dedup
// tracker is used instead of the redis-backed one.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQConfig is optional; an empty URL disables the notification relay.
type MQConfig struct {
	URL string `yaml:"url"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// NotifyConfig controls the deadline scanner and the websocket fan-out.
type NotifyConfig struct {
	ScanIntervalHours int    `yaml:"scan_interval_hours"`
	LookaheadHours    int    `yaml:"lookahead_hours"`
	DefaultThresholds []int  `yaml:"default_thresholds"`
	SendTimeoutMS     int    `yaml:"send_timeout_ms"`
	DedupBackend      string `yaml:"dedup_backend"`
	DedupTTLHours     int    `yaml:"dedup_ttl_hours"`
}

func (n NotifyConfig) ScanInterval() time.Duration {
	return time.Duration(n.ScanIntervalHours) * time.Hour
}

func (n NotifyConfig) Lookahead() time.Duration {
	return time.Duration(n.LookaheadHours) * time.Hour
}

func (n NotifyConfig) SendTimeout() time.Duration {
	return time.Duration(n.SendTimeoutMS) * time.Millisecond
}

func (n NotifyConfig) DedupTTL() time.Duration {
	return time.Duration(n.DedupTTLHours) * time.Hour
}

// applyDefaults fills in recognized options left unset by the yaml files.
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Notify.ScanIntervalHours == 0 {
		c.Notify.ScanIntervalHours = 1
	}
	if c.Notify.LookaheadHours == 0 {
		c.Notify.LookaheadHours = 72
	}
	if len(c.Notify.DefaultThresholds) == 0 {
		c.Notify.DefaultThresholds = []int{24, 6, 1}
	}
	if c.Notify.SendTimeoutMS == 0 {
		c.Notify.SendTimeoutMS = 5000
	}
	if c.Notify.DedupBackend == "" {
		c.Notify.DedupBackend = "memory"
	}
	if c.Notify.DedupTTLHours == 0 {
		c.Notify.DedupTTLHours = 48
	}
}

// OverrideFromEnv applies environment variable overrides. Env vars win
// over everything loaded from yaml.
func (c *Config) OverrideFromEnv() {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		c.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		c.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		c.DB.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		c.DB.Name = name
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.Redis.Password = password
	}
	if url := os.Getenv("MQ_URL"); url != "" {
		c.MQ.URL = url
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
}

// GetEnv returns the value of an environment variable or a default.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetConfigEnv returns the active config environment (CONFIG_ENV, default local).
func GetConfigEnv() string {
	return GetEnv("CONFIG_ENV", "local")
}
