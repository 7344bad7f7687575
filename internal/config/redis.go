package config

import (
	"time"
)

// RedisConfig is optional infrastructure: the server runs without Redis,
// losing the geocode cache and cross-instance fan-out.
type RedisConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	Password      string        `yaml:"password"`
	DB            int           `yaml:"db"`
	PoolSize      int           `yaml:"pool_size"`
	MinIdleConns  int           `yaml:"min_idle_conns"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	ChannelPrefix string        `yaml:"channel_prefix"`
}

func loadRedisConfig() *RedisConfig {
	return &RedisConfig{
		Enabled:       getEnvAsBool("REDIS_ENABLED", true),
		Host:          getEnv("REDIS_HOST", "localhost"),
		Port:          getEnvAsInt("REDIS_PORT", 6379),
		Password:      getEnv("REDIS_PASSWORD", ""),
		DB:            getEnvAsInt("REDIS_DB", 0),
		PoolSize:      getEnvAsInt("REDIS_POOL_SIZE", 10),
		MinIdleConns:  getEnvAsInt("REDIS_MIN_IDLE_CONNS", 3),
		DialTimeout:   getEnvAsDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:   getEnvAsDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout:  getEnvAsDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		ChannelPrefix: getEnv("REDIS_CHANNEL_PREFIX", "unipool:"),
	}
}
