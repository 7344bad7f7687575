package config

import (
	"time"
)

type DatabaseConfig struct {
	URI                string        `yaml:"uri"`
	Database           string        `yaml:"database"`
	MaxPoolSize        int           `yaml:"max_pool_size"`
	MinPoolSize        int           `yaml:"min_pool_size"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout"`
	SocketTimeout      time.Duration `yaml:"socket_timeout"`
	TransactionTimeout time.Duration `yaml:"transaction_timeout"`
	RunMigrations      bool          `yaml:"run_migrations"`
}

// Transactions need a replica set or sharded cluster; a standalone mongod rejects them.
func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URI:                getEnv("MONGODB_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		Database:           getEnv("MONGODB_DATABASE", "unipool"),
		MaxPoolSize:        getEnvAsInt("MONGODB_MAX_POOL_SIZE", 100),
		MinPoolSize:        getEnvAsInt("MONGODB_MIN_POOL_SIZE", 5),
		ConnectTimeout:     getEnvAsDuration("MONGODB_CONNECT_TIMEOUT", 10*time.Second),
		SocketTimeout:      getEnvAsDuration("MONGODB_SOCKET_TIMEOUT", 30*time.Second),
		TransactionTimeout: getEnvAsDuration("MONGODB_TRANSACTION_TIMEOUT", 10*time.Second),
		RunMigrations:      getEnvAsBool("MONGODB_RUN_MIGRATIONS", true),
	}
}
