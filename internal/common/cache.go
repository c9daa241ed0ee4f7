package common

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache struct {
	*cache.Cache
}

func NewCache(expirationTime, cleanupTime time.Duration) *Cache {
	return &Cache{cache.New(expirationTime, cleanupTime)}
}

func (c *Cache) Set(key string, value interface{}, expiration ...time.Duration) {
	if len(expiration) > 0 {
		c.Cache.Set(key, value, expiration[0])
		return
	}
	c.Cache.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) Get(key string) (interface{}, bool) {
	return c.Cache.Get(key)
}

func (c *Cache) Flush() {
	c.Cache.Flush()
}

func CacheKeyPost(slug string) string {
	return "post:" + slug
}

func CacheKeyOGImage(slug string) string {
	return "og_image:" + slug
}

func CacheKeyFont(url string) string {
	return "font:" + url
}

func CacheKeyRelatedPosts(slug string, limit int) string {
	return "related:" + slug + ":" + strconv.Itoa(limit)
}
