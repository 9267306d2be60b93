package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Service handles all Redis-related operations
type Service struct {
	client *redis.Client
	ctx    context.Context
}

// getRedisConfig gets Redis configuration from environment variables
func getRedisConfig() (string, string, int) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "localhost:6379"
	}

	password := os.Getenv("REDIS_PASSWORD")

	dbStr := os.Getenv("REDIS_DB")
	db := 0
	if dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			db = dbInt
		}
	}

	return url, password, db
}

// NewService creates a new Redis service instance
func NewService() *Service {
	url, password, db := getRedisConfig()

	client := redis.NewClient(&redis.Options{
		Addr:     url,
		Password: password,
		DB:       db,
		// Connection pool settings
		PoolSize:     10,
		MinIdleConns: 5,
		// Timeout settings
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx := context.Background()

	// Test the connection
	_, err := client.Ping(ctx).Result()
	if err != nil {
		// Silent fail - Redis might not be available
	}

	return &Service{
		client: client,
		ctx:    ctx,
	}
}

// Close closes the Redis connection
func (r *Service) Close() error {
	return r.client.Close()
}

// Set stores a key-value pair in Redis
func (r *Service) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %v", err)
	}

	err = r.client.Set(r.ctx, key, jsonValue, expiration).Err()
	if err != nil {
		return fmt.Errorf("failed to set key %s: %v", key, err)
	}
	return nil
}

// Get retrieves a value from Redis
func (r *Service) Get(key string, dest interface{}) error {
	val, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("key %s not found", key)
		}
		return fmt.Errorf("failed to get key %s: %v", key, err)
	}

	err = json.Unmarshal([]byte(val), dest)
	if err != nil {
		return fmt.Errorf("failed to unmarshal value for key %s: %v", key, err)
	}
	return nil
}

// Delete removes a key from Redis
func (r *Service) Delete(key string) error {
	err := r.client.Del(r.ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %v", key, err)
	}
	return nil
}

// Exists checks if a key exists in Redis
func (r *Service) Exists(key string) (bool, error) {
	result, err := r.client.Exists(r.ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check existence of key %s: %v", key, err)
	}

	return result > 0, nil
}

// IncrementCounter increments a counter in Redis
func (r *Service) IncrementCounter(key string) (int64, error) {
	result, err := r.client.Incr(r.ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %v", key, err)
	}
	return result, nil
}

// GetCounter gets the current value of a counter
func (r *Service) GetCounter(key string) (int64, error) {
	result, err := r.client.Get(r.ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get counter %s: %v", key, err)
	}

	return result, nil
}

// GetClient returns the Redis client for advanced operations
func (r *Service) GetClient() *redis.Client {
	return r.client
}

// GetContext returns the Redis context
func (r *Service) GetContext() context.Context {
	return r.ctx
}

// ConnectionData represents an active socket connection stored in Redis,
// used for server-to-client paired-event delivery
type ConnectionData struct {
	SocketID    string    `json:"socket_id"`
	RequesterID string    `json:"requester_id"`
	Namespace   string    `json:"namespace,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// CacheConnection stores connection data keyed by requester, with a reverse
// socket->requester index for disconnect cleanup
func (r *Service) CacheConnection(connectionData ConnectionData, expiration time.Duration) error {
	key := fmt.Sprintf("connection:user:%s", connectionData.RequesterID)
	if err := r.Set(key, connectionData, expiration); err != nil {
		return err
	}

	reverseKey := fmt.Sprintf("connection:socket:%s", connectionData.SocketID)
	return r.Set(reverseKey, connectionData.RequesterID, expiration)
}

// GetConnectionByRequester retrieves connection data for a requester
func (r *Service) GetConnectionByRequester(requesterID string) (*ConnectionData, error) {
	key := fmt.Sprintf("connection:user:%s", requesterID)
	var connectionData ConnectionData
	err := r.Get(key, &connectionData)
	if err != nil {
		return nil, err
	}
	return &connectionData, nil
}

// GetRequesterBySocket resolves the reverse socket->requester index
func (r *Service) GetRequesterBySocket(socketID string) (string, error) {
	key := fmt.Sprintf("connection:socket:%s", socketID)
	var requesterID string
	err := r.Get(key, &requesterID)
	if err != nil {
		return "", err
	}
	return requesterID, nil
}

// DeleteConnectionBySocket removes both sides of a connection mapping
func (r *Service) DeleteConnectionBySocket(socketID string) error {
	requesterID, err := r.GetRequesterBySocket(socketID)
	if err == nil && requesterID != "" {
		r.Delete(fmt.Sprintf("connection:user:%s", requesterID))
	}
	return r.Delete(fmt.Sprintf("connection:socket:%s", socketID))
}

// UpdateConnectionLastSeen updates the last seen timestamp for a requester's connection
func (r *Service) UpdateConnectionLastSeen(requesterID string) error {
	connectionData, err := r.GetConnectionByRequester(requesterID)
	if err != nil {
		return err
	}

	connectionData.LastSeen = time.Now()
	key := fmt.Sprintf("connection:user:%s", requesterID)
	return r.Set(key, connectionData, 24*time.Hour)
}

// GetConnectionCount returns the total number of registered connections
func (r *Service) GetConnectionCount() (int64, error) {
	pattern := "connection:user:*"
	keys, err := r.client.Keys(r.ctx, pattern).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get connection keys: %v", err)
	}
	return int64(len(keys)), nil
}
