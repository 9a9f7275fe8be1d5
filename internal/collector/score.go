package collector

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	scoreClientTimeout = 5 * time.Second
	scoreMaxBodyBytes  = 1 << 20 // 1MB
)

// 上游限流时返回的标记文本（出现在响应体里，状态码不可靠，不检查）
var throttleMarkers = []string{"Throttled", "Rate limit"}

// ScoreFetcher 从条目的评论页 .json 端点取热度分。
// 限流与 JSON 解析失败按指数退避重试；重试耗尽以及其它一切
// 不可恢复的失败都落到 0 分，绝不向调用方抛错。
type ScoreFetcher struct {
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

func NewScoreFetcher(maxRetries int, retryDelay time.Duration) *ScoreFetcher {
	return &ScoreFetcher{
		client:     &http.Client{Timeout: scoreClientTimeout},
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Fetch 返回 commentsURL 对应条目的分数。
// 显式的有界循环：第 i 次失败后退避 retryDelay*2^i，最后一次失败不再等待。
func (s *ScoreFetcher) Fetch(commentsURL string) int {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		score, retry := s.fetchOnce(commentsURL)
		if !retry {
			return score
		}
		if attempt < s.maxRetries-1 {
			delay := s.retryDelay * time.Duration(1<<attempt)
			log.Printf("score: %s throttled, retry in %v (attempt %d/%d)",
				commentsURL, delay, attempt+1, s.maxRetries)
			time.Sleep(delay)
		}
	}
	log.Printf("score: %s gave up after %d attempts, fallback to 0", commentsURL, s.maxRetries)
	return 0
}

// fetchOnce 执行一次请求。retry=true 表示值得退避后再试（限流或响应体不是合法 JSON）；
// 其余失败直接以 0 分终结。
func (s *ScoreFetcher) fetchOnce(commentsURL string) (score int, retry bool) {
	resp, err := s.client.Get(commentsURL + ".json")
	if err != nil {
		log.Printf("score: fetch %s: %v", commentsURL, err)
		return 0, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, scoreMaxBodyBytes))
	if err != nil {
		log.Printf("score: read %s: %v", commentsURL, err)
		return 0, false
	}

	text := string(body)
	for _, marker := range throttleMarkers {
		if strings.Contains(text, marker) {
			return 0, true
		}
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		// 非法 JSON 多半也是上游过载的产物，与限流同等对待
		return 0, true
	}

	// score 缺失或非数值按 0 处理，与真实的 0 分无法区分（上游如此，维持现状）
	v, ok := payload["score"].(float64)
	if !ok {
		return 0, false
	}
	return int(v), false
}
