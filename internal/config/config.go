// config.go
package config

import (
	"os"
	"time"

	"github.com/wb-go/wbf/retry"
)

type Config struct {
	MongoURI    string
	MongoDBName string
	RedisAddr   string
	RedisPass   string
	AuthURL     string
	RabbitURL   string
	Port        string

	// PublishRetry bounds RabbitMQ publish attempts for notification events.
	PublishRetry retry.Strategy
}

func Load() *Config {
	return &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "topup_orders_db"),
		RedisAddr:   getEnv("REDIS_ADDR", "host.docker.internal:6379"),
		RedisPass:   getEnv("REDIS_PASSWORD", ""),
		AuthURL:     getEnv("AUTH_URL", "http://host.docker.internal:3000"),
		RabbitURL:   getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		Port:        getEnv("PORT", "8080"),
		PublishRetry: retry.Strategy{
			Attempts: 3,
			Delay:    200 * time.Millisecond,
			Backoff:  2,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
