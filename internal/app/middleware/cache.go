package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// 缓存条目
type cacheEntry struct {
	Content     []byte
	ContentType string
	Expiration  time.Time
}

// ResponseCache 内存响应缓存，仅缓存 200 的 GET 响应
type ResponseCache struct {
	mu         sync.RWMutex
	items      map[string]cacheEntry
	expiration time.Duration
}

// NewResponseCache 创建响应缓存
func NewResponseCache(expiration time.Duration) *ResponseCache {
	if expiration <= 0 {
		expiration = 5 * time.Minute
	}
	return &ResponseCache{
		items:      make(map[string]cacheEntry),
		expiration: expiration,
	}
}

// Handler returns the middleware; the key is the request URI
func (rc *ResponseCache) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()

		rc.mu.RLock()
		entry, found := rc.items[key]
		rc.mu.RUnlock()

		if found && entry.Expiration.After(time.Now()) {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, entry.ContentType, entry.Content)
			c.Abort()
			return
		}

		writer := &responseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		if writer.Status() == http.StatusOK {
			rc.mu.Lock()
			rc.items[key] = cacheEntry{
				Content:     writer.body.Bytes(),
				ContentType: writer.Header().Get("Content-Type"),
				Expiration:  time.Now().Add(rc.expiration),
			}
			rc.mu.Unlock()
		}
	}
}

// Purge 清除所有缓存
func (rc *ResponseCache) Purge() {
	rc.mu.Lock()
	rc.items = make(map[string]cacheEntry)
	rc.mu.Unlock()
}

// Len returns the number of live entries
func (rc *ResponseCache) Len() int {
	now := time.Now()
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	n := 0
	for _, entry := range rc.items {
		if entry.Expiration.After(now) {
			n++
		}
	}
	return n
}

// 自定义响应写入器，用于捕获响应内容
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
