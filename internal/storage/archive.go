package storage

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/LJTian/HotFeed/internal/pipeline"
	"gorm.io/datatypes"
)

// ArchivedArticle 是一条归档的打分文章。以 link 的哈希做主键，重复写入是幂等更新。
type ArchivedArticle struct {
	ID       string `gorm:"primaryKey;size:40" json:"id"`
	Title    string `gorm:"size:512" json:"title"`
	Author   string `gorm:"size:128" json:"author"`
	Link     string `gorm:"size:1024;uniqueIndex" json:"link"`
	Comments string `gorm:"size:1024" json:"comments"`
	GUID     string `gorm:"size:256" json:"guid"`
	// PubDate 保留上游原始日期串；PublishedAt 是解析后的时间，解析失败为零值
	PubDate     string            `gorm:"size:64" json:"pubDate"`
	PublishedAt time.Time         `gorm:"index" json:"publishedAt"`
	Score       int               `gorm:"index" json:"score"`
	ExtraData   datatypes.JSONMap `gorm:"type:jsonb" json:"extraData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// toValidUTF8 规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

func hashLink(link string) string {
	h := sha1.New()
	h.Write([]byte(link))
	return hex.EncodeToString(h.Sum(nil))
}

// SaveArticles 归档一轮管道产出的文章。归档未启用时是空操作。
// 以 link 为幂等键：已存在则更新分数与时间。
func (s *Store) SaveArticles(items []pipeline.ScoredArticle) error {
	if s.DB == nil {
		return nil
	}

	for _, it := range items {
		a := &ArchivedArticle{
			ID:          hashLink(it.Link),
			Title:       toValidUTF8(it.Title),
			Author:      toValidUTF8(it.Author),
			Link:        it.Link,
			Comments:    it.Comments,
			GUID:        it.GUID,
			PubDate:     it.Published,
			PublishedAt: it.Timestamp,
			Score:       it.Score,
			ExtraData: datatypes.JSONMap{
				"hasTimestamp": it.HasTimestamp,
			},
		}

		if err := s.DB.Where("link = ?", it.Link).FirstOrCreate(a).Error; err != nil {
			return err
		}
		_ = s.DB.Model(a).Updates(map[string]any{
			"title":        a.Title,
			"score":        a.Score,
			"pub_date":     a.PubDate,
			"published_at": a.PublishedAt,
		}).Error
	}

	return nil
}

const (
	listDefaultLimit = 20
	listMaxLimit     = 100
)

// clampListLimit 规范 limit：非正数回默认值，超上限压到上限
func clampListLimit(limit int) int {
	if limit <= 0 {
		return listDefaultLimit
	}
	if limit > listMaxLimit {
		return listMaxLimit
	}
	return limit
}

// ListArticles 返回归档文章，按发布时间倒序
func (s *Store) ListArticles(limit int) ([]ArchivedArticle, error) {
	limit = clampListLimit(limit)

	var list []ArchivedArticle
	err := s.DB.Model(&ArchivedArticle{}).
		Order("published_at DESC").
		Order("score DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
