package main

import (
	"log"

	"github.com/LJTian/HotFeed/internal/api"
	"github.com/LJTian/HotFeed/internal/cache"
	"github.com/LJTian/HotFeed/internal/collector"
	"github.com/LJTian/HotFeed/internal/config"
	"github.com/LJTian/HotFeed/internal/pipeline"
	"github.com/LJTian/HotFeed/internal/rss"
	"github.com/LJTian/HotFeed/internal/scheduler"
	"github.com/LJTian/HotFeed/internal/storage"
	"github.com/gin-gonic/gin"
)

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

	// 再生成闭包：跑一轮管道，顺手把存活文章写进归档，再把文档交给缓存策略。
	// 归档失败只记日志，不影响本轮文档产出。
	build := func() string {
		doc, articles := p.Run()
		if err := store.SaveArticles(articles); err != nil {
			log.Printf("archive: save batch error: %v", err)
		}
		return doc
	}

	policy := cache.NewPolicy(store, build, cfg.CacheKey, cfg.CacheTTL())

	s, err := scheduler.New(cfg.CronSpec, policy)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()

	// API
	r := gin.Default()
	apiServer := api.NewServer(policy, store)
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
