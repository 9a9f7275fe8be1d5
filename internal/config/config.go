package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config 是进程唯一的配置来源：启动时从环境变量读取一次，
// 之后以显式参数传入各组件，组件内部不再读取环境变量。
type Config struct {
	AppPort string

	RedisAddr string
	// PostgresDSN 为空时不启用文章归档，只用 Redis 做缓存
	PostgresDSN string

	FeedURL   string
	FeedTitle string
	FeedLink  string

	CacheKey        string
	CacheTTLSeconds int
	CronSpec        string

	MinimumScore   int
	MaxRetries     int
	RetryDelay     time.Duration
	RateLimitDelay time.Duration
}

func Load() *Config {
	cfg := &Config{
		AppPort:     getEnv("APP_PORT", "9000"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6380"),
		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		FeedURL:   getEnv("FEED_URL", "https://lobste.rs/rss"),
		FeedTitle: getEnv("FEED_TITLE", "Lobsters"),
		FeedLink:  getEnv("FEED_LINK", "https://lobste.rs/"),

		CacheKey:        getEnv("CACHE_KEY", "feed:rss"),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 900),
		CronSpec:        getEnv("CRON_SPEC", "*/15 * * * *"),

		MinimumScore:   getEnvInt("MINIMUM_SCORE", 10),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		RetryDelay:     time.Duration(getEnvInt("RETRY_DELAY_MS", 1000)) * time.Millisecond,
		RateLimitDelay: time.Duration(getEnvInt("RATE_LIMIT_DELAY_MS", 200)) * time.Millisecond,
	}

	log.Printf("config loaded: port=%s feed=%s ttl=%ds cron=%s minScore=%d",
		cfg.AppPort, cfg.FeedURL, cfg.CacheTTLSeconds, cfg.CronSpec, cfg.MinimumScore)
	return cfg
}

// CacheTTL 返回缓存 TTL 的 Duration 形式，Redis 客户端需要
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt 解析失败或负数时回退默认值，避免坏配置让进程起不来
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("config: invalid %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}
