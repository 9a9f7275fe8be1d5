package rss

import (
	"fmt"
	"strings"
)

// Channel 是输出文档的频道头。description 固定留空。
type Channel struct {
	Title string
	Link  string
}

// Item 是序列化前的最终条目。PubDate 保留上游原文，序列化时不转义。
type Item struct {
	Title    string
	Author   string
	Link     string
	Comments string
	GUID     string
	PubDate  string
}

// escaper 单趟替换五个保留字符，不会出现二次转义
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape 转义 XML 文本中的保留字符
func Escape(s string) string {
	return escaper.Replace(s)
}

// Serialize 生成 RSS 2.0 文档。文本字段全部转义；
// pubDate 本身就是合规的日期串，按约定原样输出。
func Serialize(ch Channel, items []Item) string {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<rss version="2.0"` +
		` xmlns:atom="http://www.w3.org/2005/Atom"` +
		` xmlns:wfw="http://wellformedweb.org/CommentAPI/"` +
		` xmlns:slash="http://purl.org/rss/1.0/modules/slash/">` + "\n")
	b.WriteString("<channel>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", Escape(ch.Title))
	fmt.Fprintf(&b, "<link>%s</link>\n", Escape(ch.Link))
	b.WriteString("<description></description>\n")

	for _, it := range items {
		b.WriteString("<item>\n")
		fmt.Fprintf(&b, "<title>%s</title>\n", Escape(it.Title))
		fmt.Fprintf(&b, "<author>%s</author>\n", Escape(it.Author))
		fmt.Fprintf(&b, "<link>%s</link>\n", Escape(it.Link))
		fmt.Fprintf(&b, "<comments>%s</comments>\n", Escape(it.Comments))
		fmt.Fprintf(&b, "<wfw:commentRss>%s</wfw:commentRss>\n", Escape(it.Comments))
		fmt.Fprintf(&b, "<guid isPermaLink=\"false\">%s</guid>\n", Escape(it.GUID))
		fmt.Fprintf(&b, "<pubDate>%s</pubDate>\n", it.PubDate)
		b.WriteString("</item>\n")
	}

	b.WriteString("</channel>\n")
	b.WriteString("</rss>\n")
	return b.String()
}
