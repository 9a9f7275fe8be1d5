package collector

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// 上游 feed 的 XML 并不保证良构，这里沿用“尽力而为”的字符串匹配：
// 只取首个匹配、大小写不敏感、跨行，不做实体解码，解析失败一律当作字段缺失。
var (
	tagMu    sync.Mutex
	tagCache = map[string]*regexp.Regexp{}

	itemPattern = regexp.MustCompile(`(?is)<item(?:\s[^>]*)?>.*?</item>`)
)

// TagText 返回 markup 中第一个 <tag ...>...</tag> 的文本内容（去首尾空白）。
// 开标签上的属性忽略；找不到返回空串，这是唯一的失败形式。
func TagText(markup, tag string) string {
	if tag == "" {
		return ""
	}
	re := tagPattern(tag)
	m := re.FindStringSubmatch(markup)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ExtractItems 返回全部 <item>...</item> 片段（含包裹标签）。没有匹配时返回空切片。
func ExtractItems(markup string) []string {
	return itemPattern.FindAllString(markup, -1)
}

func tagPattern(tag string) *regexp.Regexp {
	tagMu.Lock()
	defer tagMu.Unlock()

	if re, ok := tagCache[tag]; ok {
		return re
	}
	q := regexp.QuoteMeta(tag)
	re := regexp.MustCompile(fmt.Sprintf(`(?is)<%s(?:\s[^>]*)?>(.*?)</%s>`, q, q))
	tagCache[tag] = re
	return re
}
