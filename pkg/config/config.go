package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreDriverFirestore = "firestore"
	StoreDriverMemory    = "memory"

	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

type Config struct {
	ServerPort      string
	Environment     string
	LogLevel        string
	FirebaseProject string

	// Either an inline JSON credential or a path to one. Empty means application default credentials.
	FirebaseServiceAccountJSON string
	FirebaseServiceAccountPath string

	StorageBucket string

	StoreDriver string
	CacheDriver string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CachePrefix   string

	PushNotifications bool
	ChatRatePerMinute int64
	MaxUploadBytes    int64
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:                 getEnv("SERVER_PORT", "8080"),
		Environment:                getEnv("ENVIRONMENT", "development"),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:              getEnv("STORAGE_BUCKET", ""),
		StoreDriver:                strings.ToLower(getEnv("STORE_DRIVER", StoreDriverFirestore)),
		CacheDriver:                strings.ToLower(getEnv("CACHE_DRIVER", CacheDriverMemory)),
		RedisAddr:                  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:              getEnv("REDIS_PASSWORD", ""),
		RedisDB:                    int(getEnvAsInt64("REDIS_DB", 0)),
		CachePrefix:                getEnv("CACHE_PREFIX", "petadopt"),
		PushNotifications:          getEnvAsBool("PUSH_NOTIFICATIONS", false),
		ChatRatePerMinute:          getEnvAsInt64("CHAT_RATE_PER_MINUTE", 10),
		MaxUploadBytes:             getEnvAsInt64("MAX_UPLOAD_BYTES", 5*1024*1024), // 5MB
	}

	if config.ChatRatePerMinute <= 0 {
		config.ChatRatePerMinute = 10
	}

	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}
