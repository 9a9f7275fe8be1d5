package collector

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	feedUserAgent      = "HotFeedBot/1.0"
	feedRequestTimeout = 10 * time.Second
	feedMaxBodyBytes   = 1 << 20 // 1MB
)

// FeedFetcher 抓取上游讨论站的 RSS 原文。响应按原始文本返回，
// 解析交给 ExtractItems / ParseItem。
type FeedFetcher struct {
	feedURL string
}

func NewFeedFetcher(feedURL string) *FeedFetcher {
	return &FeedFetcher{feedURL: feedURL}
}

func (f *FeedFetcher) Name() string {
	return "upstream_feed"
}

// Fetch 执行一次 GET 并返回 feed 原文
func (f *FeedFetcher) Fetch() (string, error) {
	log.Printf("fetch upstream feed %s ...", f.feedURL)

	opts := []colly.CollectorOption{
		colly.UserAgent(feedUserAgent),
		colly.MaxBodySize(feedMaxBodyBytes),
	}
	// 限定域名，避免 feed 内的跳转把采集器带去别处。
	// colly 用不带端口的 Hostname 做比对，这里要保持一致。
	if u, err := url.Parse(f.feedURL); err == nil && u.Hostname() != "" {
		opts = append(opts, colly.AllowedDomains(u.Hostname()))
	}

	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(feedRequestTimeout)

	// feed 是原始 XML 文本，不走 OnHTML 的 DOM 解析
	var body []byte
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := c.Visit(f.feedURL); err != nil {
		return "", fmt.Errorf("feed: fetch %s: %w", f.feedURL, err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("feed: empty response from %s", f.feedURL)
	}
	return string(body), nil
}
