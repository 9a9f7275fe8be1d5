package storage

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store 持有两个外部存储：Redis 承担 feed 文档的 KV 缓存（整文档读写，带 TTL），
// Postgres 承担打分文章的归档。DB 为 nil 表示归档未启用。
type Store struct {
	Redis *redis.Client
	DB    *gorm.DB
}

func NewStore(redisAddr, postgresDSN string) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}

	s := &Store{Redis: rdb}

	if postgresDSN != "" {
		db, err := gorm.Open(postgres.Open(postgresDSN), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&ArchivedArticle{}); err != nil {
			return nil, err
		}
		s.DB = db
	} else {
		log.Println("storage: POSTGRES_DSN empty, article archive disabled")
	}

	return s, nil
}

// ArchiveEnabled 返回归档是否可用。nil 接收者安全，测试里可以不建 Store。
func (s *Store) ArchiveEnabled() bool {
	return s != nil && s.DB != nil
}

// Get 读取缓存值。键不存在不是错误，用第二个返回值区分。
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Put 整文档写入并设置 TTL
func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.Redis.Set(ctx, key, value, ttl).Err()
}

// Delete 删除缓存项。键不存在时 Redis DEL 本身就不报错，天然幂等。
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.Redis.Del(ctx, key).Err()
}
