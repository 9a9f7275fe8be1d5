package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/LJTian/HotFeed/internal/cache"
	"github.com/LJTian/HotFeed/internal/storage"
	"github.com/gin-gonic/gin"
)

type Server struct {
	policy *cache.Policy
	store  *storage.Store
}

func NewServer(policy *cache.Policy, store *storage.Store) *Server {
	return &Server{policy: policy, store: store}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/", s.serveFeed)
	r.GET("/index.xml", s.redirectToRoot)
	r.GET("/clear-cache", s.clearCache)
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/articles", s.listArticles)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) serveFeed(c *gin.Context) {
	// 两个查询参数都表示绕过读缓存，兼容旧版的两种写法
	_, forceRefresh := c.GetQuery("force_refresh")
	_, clearCache := c.GetQuery("clear_cache")
	bypass := forceRefresh || clearCache

	body, hit, err := s.policy.Serve(c.Request.Context(), bypass)
	if err != nil {
		log.Printf("api: serve feed: %v", err)
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	marker := "MISS"
	if hit {
		marker = "HIT"
	}
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.policy.TTL().Seconds())))
	c.Header("X-Cache", marker)
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(body))
}

// redirectToRoot 把旧地址 /index.xml 302 到站点根
func (s *Server) redirectToRoot(c *gin.Context) {
	scheme := "http"
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if c.Request.TLS != nil {
		scheme = "https"
	}
	c.Redirect(http.StatusFound, scheme+"://"+c.Request.Host+"/")
}

func (s *Server) clearCache(c *gin.Context) {
	if err := s.policy.Clear(c.Request.Context()); err != nil {
		log.Printf("api: clear cache: %v", err)
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.String(http.StatusOK, "cache cleared")
}

func (s *Server) listArticles(c *gin.Context) {
	if !s.store.ArchiveEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    "archive_disabled",
			"message": "article archive is not configured",
		})
		return
	}

	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20
	}

	items, err := s.store.ListArticles(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    items,
	})
}
