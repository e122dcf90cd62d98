package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisURL string

	ElasticsearchURL string

	KafkaBrokers string

	NotificationGroup string
	FeedGroup         string
	SearchGroup       string

	NotificationPort string
	FeedPort         string
	SearchPort       string

	JWTSecret string

	// Push vendors. Empty credentials mean the vendor is not configured and
	// fan-out falls through to the next option.
	FCMCredentialsFile string
	APNSKeyID          string
	APNSTeamID         string
	APNSBundleID       string
	APNSKeyFile        string

	CommentAggregationWindow time.Duration
	RetentionDays            int
	RetentionSweepInterval   time.Duration

	FeedCacheTTL  time.Duration
	ScoreCacheTTL time.Duration

	PostsPerPage       int
	MaxFeedSize        int
	TrendingWindowDays int

	WeightLikes    float64
	WeightComments float64
	WeightShares   float64
	TimeDecayHours float64

	LogLevel string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, relying on environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "redesocial"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		ElasticsearchURL: getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),

		KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),

		NotificationGroup: getEnv("KAFKA_NOTIFICATION_GROUP", "notification-service"),
		FeedGroup:         getEnv("KAFKA_FEED_GROUP", "recommendation-engine"),
		SearchGroup:       getEnv("KAFKA_SEARCH_GROUP", "search-service"),

		NotificationPort: getEnv("NOTIFICATION_PORT", "8001"),
		FeedPort:         getEnv("FEED_PORT", "8005"),
		SearchPort:       getEnv("SEARCH_PORT", "8004"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		FCMCredentialsFile: getEnv("FCM_CREDENTIALS_FILE", ""),
		APNSKeyID:          getEnv("APNS_KEY_ID", ""),
		APNSTeamID:         getEnv("APNS_TEAM_ID", ""),
		APNSBundleID:       getEnv("APNS_BUNDLE_ID", "com.redesocial.app"),
		APNSKeyFile:        getEnv("APNS_KEY_FILE", ""),

		CommentAggregationWindow: time.Duration(getEnvInt("COMMENT_AGGREGATION_MINUTES", 5)) * time.Minute,
		RetentionDays:            getEnvInt("NOTIFICATION_RETENTION_DAYS", 90),
		RetentionSweepInterval:   time.Duration(getEnvInt("RETENTION_SWEEP_MINUTES", 60)) * time.Minute,

		FeedCacheTTL:  time.Duration(getEnvInt("FEED_CACHE_TTL", 300)) * time.Second,
		ScoreCacheTTL: time.Duration(getEnvInt("SCORE_CACHE_TTL", 3600)) * time.Second,

		PostsPerPage:       getEnvInt("POSTS_PER_PAGE", 20),
		MaxFeedSize:        getEnvInt("MAX_FEED_SIZE", 1000),
		TrendingWindowDays: getEnvInt("TRENDING_WINDOW_DAYS", 7),

		WeightLikes:    getEnvFloat("ENGAGEMENT_WEIGHT_LIKES", 1.0),
		WeightComments: getEnvFloat("ENGAGEMENT_WEIGHT_COMMENTS", 2.0),
		WeightShares:   getEnvFloat("ENGAGEMENT_WEIGHT_SHARES", 3.0),
		TimeDecayHours: getEnvFloat("TIME_DECAY_HOURS", 24.0),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
