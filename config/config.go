// config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Configuration constants for the application
var (
	// Cassandra configuration
	CassandraHost     string
	CassandraUsername string
	CassandraPassword string
	CassandraKeyspace string
	CassandraPort     int

	// MongoDB configuration
	MongoURI      string
	MongoDatabase string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// ServerPort is the port on which the server will run
	ServerPort int

	// JWTSecret signs and verifies caller identity tokens
	JWTSecret string

	// Matching engine tunables
	SweepIntervalSeconds int
	RequestTTLSeconds    int

	// Application configuration
	AppName    = "TALKMATCH"
	AppVersion = "1.0.0"
)

func init() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
	}

	// Cassandra configuration
	CassandraHost = getEnv("CASSANDRA_HOST", "localhost")
	CassandraUsername = getEnv("CASSANDRA_USERNAME", "cassandra")
	CassandraPassword = getEnv("CASSANDRA_PASSWORD", "cassandra")
	CassandraKeyspace = getEnv("CASSANDRA_KEYSPACE", "talkmatch")

	portStr := getEnv("CASSANDRA_PORT", "9042")
	if port, err := strconv.Atoi(portStr); err == nil {
		CassandraPort = port
	} else {
		CassandraPort = 9042
	}

	// MongoDB configuration
	MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017")
	MongoDatabase = getEnv("MONGO_DATABASE", "talkmatch")

	// Server configuration
	portStr = getEnv("SERVER_PORT", "8088")
	if port, err := strconv.Atoi(portStr); err == nil {
		ServerPort = port
	} else {
		ServerPort = 8088
	}

	// Redis configuration
	RedisURL = getEnv("REDIS_URL", "localhost:6379")
	RedisPassword = getEnv("REDIS_PASSWORD", "")
	redisDBStr := getEnv("REDIS_DB", "0")
	if db, err := strconv.Atoi(redisDBStr); err == nil {
		RedisDB = db
	} else {
		RedisDB = 0
	}

	// JWT configuration
	JWTSecret = getEnv("JWT_SECRET", "talkmatch-dev-secret-change-in-production")

	// Matching engine configuration
	sweepStr := getEnv("SWEEP_INTERVAL_SECONDS", "30")
	if v, err := strconv.Atoi(sweepStr); err == nil {
		SweepIntervalSeconds = v
	} else {
		SweepIntervalSeconds = 30
	}

	ttlStr := getEnv("REQUEST_TTL_SECONDS", "300")
	if v, err := strconv.Atoi(ttlStr); err == nil {
		RequestTTLSeconds = v
	} else {
		RequestTTLSeconds = 300
	}
}

// getEnv gets environment variable with fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
