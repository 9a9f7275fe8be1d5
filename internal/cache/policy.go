package cache

import (
	"context"
	"fmt"
	"log"
	"time"
)

// KV 是缓存后端的最小接口，由 storage.Store 实现。
// 只有整文档的读写删，没有局部更新，所以并发覆盖也不会产生破损文档。
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Builder 生成一份新文档。生成本身不会失败（管道内部已做各级降级）。
type Builder func() string

// Policy 决定什么时候直接回缓存、什么时候触发再生成。
// 并发 miss 不做合并，各自再生成、后写覆盖先写，属于接受的低效。
type Policy struct {
	store KV
	build Builder
	key   string
	ttl   time.Duration
}

func NewPolicy(store KV, build Builder, key string, ttl time.Duration) *Policy {
	return &Policy{store: store, build: build, key: key, ttl: ttl}
}

// TTL 返回条目的存活时长，HTTP 层拿去填 Cache-Control
func (p *Policy) TTL() time.Duration {
	return p.ttl
}

// Serve 处理请求路径：bypass 时跳过读缓存；命中直接返回；
// 未命中再生成并回写后返回。任何存储错误都原样上抛，由 HTTP 层转成 500，
// 绝不把半成品写进缓存。
func (p *Policy) Serve(ctx context.Context, bypass bool) (body string, hit bool, err error) {
	if !bypass {
		v, ok, err := p.store.Get(ctx, p.key)
		if err != nil {
			return "", false, fmt.Errorf("cache: read %s: %w", p.key, err)
		}
		if ok {
			return v, true, nil
		}
	}

	body = p.build()
	if err := p.store.Put(ctx, p.key, body, p.ttl); err != nil {
		return "", false, fmt.Errorf("cache: store %s: %w", p.key, err)
	}
	return body, false, nil
}

// Warm 处理定时路径：不看现有条目是否过期，无条件再生成并覆盖。
// 写入失败只记日志，旧文档靠自身 TTL 继续兜底。
func (p *Policy) Warm(ctx context.Context) {
	body := p.build()
	if err := p.store.Put(ctx, p.key, body, p.ttl); err != nil {
		log.Printf("cache: warm %s failed, keeping previous entry: %v", p.key, err)
		return
	}
	log.Printf("cache: warmed %s (%d bytes, ttl=%v)", p.key, len(body), p.ttl)
}

// Clear 无条件删除缓存条目。条目本就不存在时不算错误。
func (p *Policy) Clear(ctx context.Context) error {
	if err := p.store.Delete(ctx, p.key); err != nil {
		return fmt.Errorf("cache: delete %s: %w", p.key, err)
	}
	return nil
}
