package pipeline

import (
	"log"
	"sort"
	"time"

	"github.com/LJTian/HotFeed/internal/collector"
	"github.com/LJTian/HotFeed/internal/rss"
)

// FeedSource 抽象上游 feed 的获取，便于测试替换
type FeedSource interface {
	Fetch() (string, error)
}

// ScoreSource 抽象单条目的取分
type ScoreSource interface {
	Fetch(commentsURL string) int
}

// ScoredArticle 是打完分的文章。HasTimestamp=false 表示 Published 无法解析，
// 排序时固定排在所有可解析条目之后。
type ScoredArticle struct {
	collector.Article
	Score        int
	Timestamp    time.Time
	HasTimestamp bool
}

// Pipeline 串起一次完整的再生成：抓 feed → 解析 → 逐条取分 → 过滤 → 排序 → 序列化。
type Pipeline struct {
	feed   FeedSource
	scores ScoreSource

	minimumScore   int
	rateLimitDelay time.Duration
	channel        rss.Channel
}

func New(feed FeedSource, scores ScoreSource, minimumScore int, rateLimitDelay time.Duration, channel rss.Channel) *Pipeline {
	return &Pipeline{
		feed:           feed,
		scores:         scores,
		minimumScore:   minimumScore,
		rateLimitDelay: rateLimitDelay,
		channel:        channel,
	}
}

// Run 执行一轮再生成，返回序列化后的文档与存活的文章列表。
// 永不返回错误：feed 拉取失败退化为空文档，取分失败退化为 0 分。
func (p *Pipeline) Run() (string, []ScoredArticle) {
	articles := p.collect()
	items := make([]rss.Item, 0, len(articles))
	for _, a := range articles {
		items = append(items, rss.Item{
			Title:    a.Title,
			Author:   a.Author,
			Link:     a.Link,
			Comments: a.Comments,
			GUID:     a.GUID,
			PubDate:  a.Published,
		})
	}
	return rss.Serialize(p.channel, items), articles
}

func (p *Pipeline) collect() []ScoredArticle {
	raw, err := p.feed.Fetch()
	if err != nil {
		log.Printf("pipeline: feed fetch failed, degrading to empty feed: %v", err)
		return nil
	}

	fragments := collector.ExtractItems(raw)
	parsed := make([]collector.Article, 0, len(fragments))
	for _, fr := range fragments {
		a := collector.ParseItem(fr)
		// 没有评论页就没有取分的 key，直接丢弃
		if a.Comments == "" {
			continue
		}
		parsed = append(parsed, a)
	}

	// 逐条串行取分，条目之间固定停顿。这是对打分端点的限速约定，
	// 不要改成并发。
	scored := make([]ScoredArticle, 0, len(parsed))
	for i, a := range parsed {
		ts, ok := parseWhen(a.Published)
		scored = append(scored, ScoredArticle{
			Article:      a,
			Score:        p.scores.Fetch(a.Comments),
			Timestamp:    ts,
			HasTimestamp: ok,
		})
		if i < len(parsed)-1 {
			time.Sleep(p.rateLimitDelay)
		}
	}

	// 严格大于阈值才保留；0 分兜底值在这里自然被过滤掉
	kept := make([]ScoredArticle, 0, len(scored))
	for _, a := range scored {
		if a.Score > p.minimumScore {
			kept = append(kept, a)
		}
	}

	// 按时间倒序；稳定排序保证同刻（以及都解析不出时间的）条目维持上游顺序
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if !a.HasTimestamp {
			return false
		}
		if !b.HasTimestamp {
			return true
		}
		return a.Timestamp.After(b.Timestamp)
	})

	log.Printf("pipeline: %d items fetched, %d scored, %d kept", len(fragments), len(scored), len(kept))
	return kept
}

// 上游实际用的是 RFC1123Z，其余是常见 feed 方言的兜底
var whenLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

func parseWhen(s string) (time.Time, bool) {
	for _, layout := range whenLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
