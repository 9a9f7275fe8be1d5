package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/LJTian/HotFeed/internal/cache"
	"github.com/robfig/cron/v3"
)

// Scheduler 按 cron 表达式定时预热缓存。预热是无条件覆盖，
// 不关心旧条目有没有过期。
type Scheduler struct {
	cron   *cron.Cron
	policy *cache.Policy
}

func New(spec string, policy *cache.Policy) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		policy: policy,
	}

	_, err := c.AddFunc(spec, s.runOnce)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟执行首轮预热，避免与启动期的首个请求争抢打分端点的限速额度
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

// RunOnce 对外暴露的单次执行入口，方便手动触发预热
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	log.Println("start warm job...")
	s.policy.Warm(context.Background())
	log.Println("warm job done")
}
