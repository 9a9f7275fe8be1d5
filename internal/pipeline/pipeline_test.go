package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/LJTian/HotFeed/internal/rss"
)

type fakeFeed struct {
	body string
	err  error
}

func (f *fakeFeed) Fetch() (string, error) { return f.body, f.err }

// fakeScores 按 comments URL 给分，并记录取分顺序
type fakeScores struct {
	scores map[string]int
	calls  []string
}

func (f *fakeScores) Fetch(commentsURL string) int {
	f.calls = append(f.calls, commentsURL)
	return f.scores[commentsURL]
}

func testChannel() rss.Channel {
	return rss.Channel{Title: "Test Feed", Link: "https://example.com/"}
}

func feedItem(title, comments, pubDate string) string {
	var b strings.Builder
	b.WriteString("<item>")
	fmt.Fprintf(&b, "<title>%s</title>", title)
	fmt.Fprintf(&b, "<link>https://example.com/%s</link>", title)
	if comments != "" {
		fmt.Fprintf(&b, "<comments>%s</comments>", comments)
	}
	if pubDate != "" {
		fmt.Fprintf(&b, "<pubDate>%s</pubDate>", pubDate)
	}
	fmt.Fprintf(&b, "<guid>%s</guid>", title)
	b.WriteString("</item>")
	return b.String()
}

func wrapFeed(items ...string) string {
	return "<rss><channel>" + strings.Join(items, "\n") + "</channel></rss>"
}

func TestRunSingleItemAboveThreshold(t *testing.T) {
	feed := &fakeFeed{body: wrapFeed(feedItem("story-a", "https://example.com/c/a", "Mon, 02 Jan 2006 15:04:05 -0700"))}
	scores := &fakeScores{scores: map[string]int{"https://example.com/c/a": 15}}

	p := New(feed, scores, 10, 0, testChannel())
	doc, articles := p.Run()

	if len(articles) != 1 {
		t.Fatalf("kept %d articles, want 1", len(articles))
	}
	if strings.Count(doc, "<item>") != 1 {
		t.Fatalf("document should contain exactly one <item>:\n%s", doc)
	}
	if !strings.Contains(doc, "<title>story-a</title>") {
		t.Fatalf("document should keep the input title:\n%s", doc)
	}
}

// 没有 <comments> 的条目在取分前就被丢弃
func TestRunDropsItemsWithoutComments(t *testing.T) {
	feed := &fakeFeed{body: wrapFeed(feedItem("no-comments", "", "Mon, 02 Jan 2006 15:04:05 -0700"))}
	scores := &fakeScores{scores: map[string]int{}}

	p := New(feed, scores, 10, 0, testChannel())
	doc, articles := p.Run()

	if len(articles) != 0 {
		t.Fatalf("kept %d articles, want 0", len(articles))
	}
	if strings.Contains(doc, "<item>") {
		t.Fatalf("document should contain zero items:\n%s", doc)
	}
	if len(scores.calls) != 0 {
		t.Fatalf("score endpoint should not be called, got %v", scores.calls)
	}
}

// 阈值本身被排除：必须严格大于
func TestRunFilterIsStrict(t *testing.T) {
	feed := &fakeFeed{body: wrapFeed(
		feedItem("at-threshold", "https://example.com/c/1", "Mon, 02 Jan 2006 15:04:05 -0700"),
		feedItem("above", "https://example.com/c/2", "Mon, 02 Jan 2006 15:04:05 -0700"),
	)}
	scores := &fakeScores{scores: map[string]int{
		"https://example.com/c/1": 10,
		"https://example.com/c/2": 11,
	}}

	p := New(feed, scores, 10, 0, testChannel())
	_, articles := p.Run()

	if len(articles) != 1 || articles[0].Title != "above" {
		t.Fatalf("strict filter violated: %+v", articles)
	}
}

func TestRunSortsByTimestampDescending(t *testing.T) {
	feed := &fakeFeed{body: wrapFeed(
		feedItem("old", "https://example.com/c/old", "Mon, 01 Jan 2024 00:00:00 +0000"),
		feedItem("new", "https://example.com/c/new", "Wed, 03 Jan 2024 00:00:00 +0000"),
		feedItem("mid", "https://example.com/c/mid", "Tue, 02 Jan 2024 00:00:00 +0000"),
	)}
	scores := &fakeScores{scores: map[string]int{
		"https://example.com/c/old": 20,
		"https://example.com/c/new": 20,
		"https://example.com/c/mid": 20,
	}}

	p := New(feed, scores, 10, 0, testChannel())
	_, articles := p.Run()

	if len(articles) != 3 {
		t.Fatalf("kept %d articles, want 3", len(articles))
	}
	for i := 1; i < len(articles); i++ {
		if articles[i-1].Timestamp.Before(articles[i].Timestamp) {
			t.Fatalf("ordering not non-increasing: %s before %s", articles[i-1].Title, articles[i].Title)
		}
	}
	if articles[0].Title != "new" || articles[2].Title != "old" {
		t.Fatalf("unexpected order: %s %s %s", articles[0].Title, articles[1].Title, articles[2].Title)
	}
}

// 时间解析不出来的排最后；同刻条目维持上游顺序（稳定排序）
func TestRunUnparseableTimestampSortsLast(t *testing.T) {
	feed := &fakeFeed{body: wrapFeed(
		feedItem("garbled", "https://example.com/c/g", "not a date"),
		feedItem("dated", "https://example.com/c/d", "Tue, 02 Jan 2024 00:00:00 +0000"),
		feedItem("tie-1", "https://example.com/c/t1", "Mon, 01 Jan 2024 00:00:00 +0000"),
		feedItem("tie-2", "https://example.com/c/t2", "Mon, 01 Jan 2024 00:00:00 +0000"),
	)}
	scores := &fakeScores{scores: map[string]int{
		"https://example.com/c/g":  30,
		"https://example.com/c/d":  30,
		"https://example.com/c/t1": 30,
		"https://example.com/c/t2": 30,
	}}

	p := New(feed, scores, 10, 0, testChannel())
	_, articles := p.Run()

	if len(articles) != 4 {
		t.Fatalf("kept %d articles, want 4", len(articles))
	}
	if articles[3].Title != "garbled" {
		t.Fatalf("unparseable timestamp should sort last, got %s", articles[3].Title)
	}
	if articles[1].Title != "tie-1" || articles[2].Title != "tie-2" {
		t.Fatalf("equal timestamps should keep feed order: %s %s", articles[1].Title, articles[2].Title)
	}
}

// feed 拉取失败退化为空文档，而不是报错
func TestRunFeedFailureDegradesToEmpty(t *testing.T) {
	feed := &fakeFeed{err: errors.New("connection refused")}
	scores := &fakeScores{scores: map[string]int{}}

	p := New(feed, scores, 10, 0, testChannel())
	doc, articles := p.Run()

	if len(articles) != 0 {
		t.Fatalf("kept %d articles, want 0", len(articles))
	}
	if !strings.Contains(doc, "<channel>") || strings.Contains(doc, "<item>") {
		t.Fatalf("expected empty but well-formed document:\n%s", doc)
	}
}

// 取分严格按上游顺序串行进行
func TestRunScoresSequentiallyInFeedOrder(t *testing.T) {
	feed := &fakeFeed{body: wrapFeed(
		feedItem("a", "https://example.com/c/a", ""),
		feedItem("b", "https://example.com/c/b", ""),
		feedItem("c", "https://example.com/c/c", ""),
	)}
	scores := &fakeScores{scores: map[string]int{}}

	p := New(feed, scores, 10, 0, testChannel())
	p.Run()

	want := []string{"https://example.com/c/a", "https://example.com/c/b", "https://example.com/c/c"}
	if len(scores.calls) != len(want) {
		t.Fatalf("score calls = %v", scores.calls)
	}
	for i := range want {
		if scores.calls[i] != want[i] {
			t.Fatalf("score call %d = %q, want %q", i, scores.calls[i], want[i])
		}
	}
}

// 条目之间固定停顿 rateLimitDelay，最后一条之后不再等待：
// 3 条应当恰好等两次，总耗时落在 [2*delay, 3*delay) 区间
func TestRunRateLimitDelayBetweenItems(t *testing.T) {
	const delay = 20 * time.Millisecond

	feed := &fakeFeed{body: wrapFeed(
		feedItem("a", "https://example.com/c/a", ""),
		feedItem("b", "https://example.com/c/b", ""),
		feedItem("c", "https://example.com/c/c", ""),
	)}
	scores := &fakeScores{scores: map[string]int{}}

	p := New(feed, scores, 10, delay, testChannel())
	start := time.Now()
	p.Run()
	elapsed := time.Since(start)

	if len(scores.calls) != 3 {
		t.Fatalf("score calls = %v", scores.calls)
	}
	if elapsed < 2*delay {
		t.Fatalf("elapsed = %v, want >= %v (two inter-item sleeps)", elapsed, 2*delay)
	}
	if elapsed >= 3*delay {
		t.Fatalf("elapsed = %v, want < %v (no sleep after the last item)", elapsed, 3*delay)
	}
}

func TestParseWhenLayouts(t *testing.T) {
	if _, ok := parseWhen("Mon, 02 Jan 2006 15:04:05 -0700"); !ok {
		t.Fatal("RFC1123Z should parse")
	}
	if _, ok := parseWhen("2024-01-02T10:00:00Z"); !ok {
		t.Fatal("RFC3339 should parse")
	}
	if _, ok := parseWhen("tomorrow-ish"); ok {
		t.Fatal("garbage should not parse")
	}
}
