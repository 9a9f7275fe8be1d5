package collector

import "strings"

// Article 是从一个 <item> 片段解析出的统一结构，只在一次管道运行内存活。
// 字段均为原始文本（未做实体解码），Published 保留上游的日期字符串。
type Article struct {
	Title     string
	Author    string
	Link      string
	Comments  string
	Published string
	GUID      string
}

// ParseItem 解析单个 <item>...</item> 片段。纯函数，不做任何 I/O。
// author 形如邮箱时只保留 @ 前的本地部分。
func ParseItem(fragment string) Article {
	author := TagText(fragment, "author")
	if i := strings.Index(author, "@"); i >= 0 {
		author = author[:i]
	}

	return Article{
		Title:     TagText(fragment, "title"),
		Author:    author,
		Link:      TagText(fragment, "link"),
		Comments:  TagText(fragment, "comments"),
		Published: TagText(fragment, "pubDate"),
		GUID:      TagText(fragment, "guid"),
	}
}
