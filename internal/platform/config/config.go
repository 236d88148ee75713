package config

import (
	"os"
	"strings"
	"time"

	platformstrings "previnet/pkg/platform/strings"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	PostgresDSN   string
	RedisAddr     string
	KafkaBrokers  []string
	SyncTopic     string
	JWTSigningKey string
	TokenTTL      time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Empty PostgresDSN / RedisAddr / KafkaBrokers select the in-memory fallbacks,
// which keeps a single binary usable on an offline device.
func FromEnv() Server {
	addr := os.Getenv("PREVINET_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = platformstrings.DedupeAndTrim(strings.Split(v, ","))
	}

	topic := os.Getenv("SYNC_TOPIC")
	if topic == "" {
		topic = "previnet.sync"
	}

	return Server{
		Addr:          addr,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		KafkaBrokers:  brokers,
		SyncTopic:     topic,
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      12 * time.Hour,
	}
}
