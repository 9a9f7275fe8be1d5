package main

import (
	"context"
	"log"

	"github.com/LJTian/HotFeed/internal/cache"
	"github.com/LJTian/HotFeed/internal/collector"
	"github.com/LJTian/HotFeed/internal/config"
	"github.com/LJTian/HotFeed/internal/pipeline"
	"github.com/LJTian/HotFeed/internal/rss"
	"github.com/LJTian/HotFeed/internal/storage"
)

// 一个仅执行一次缓存预热的命令行入口：适合交给外部 cron / systemd timer 触发
func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.RedisAddr, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	feed := collector.NewFeedFetcher(cfg.FeedURL)
	scores := collector.NewScoreFetcher(cfg.MaxRetries, cfg.RetryDelay)
	p := pipeline.New(feed, scores, cfg.MinimumScore, cfg.RateLimitDelay, rss.Channel{
		Title: cfg.FeedTitle,
		Link:  cfg.FeedLink,
	})

	build := func() string {
		doc, articles := p.Run()
		if err := store.SaveArticles(articles); err != nil {
			log.Printf("archive: save batch error: %v", err)
		}
		return doc
	}

	policy := cache.NewPolicy(store, build, cfg.CacheKey, cfg.CacheTTL())

	// 只执行一轮预热后退出
	policy.Warm(context.Background())
}
