package blog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// VerifiedCache keeps verified blogs in memory. Verified blogs cannot change anymore,
// so entries never need invalidation, only expiry.
type VerifiedCache struct {
	cache         *freecache.Cache
	expireSeconds int
}

func NewVerifiedCache(sizeMB int, ttl time.Duration) *VerifiedCache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &VerifiedCache{
		// freecache sets the minimum size to 512KB by itself
		cache:         freecache.NewCache(sizeMB * megabyte),
		expireSeconds: int(ttl.Seconds()),
	}
}

func (c *VerifiedCache) Get(id int) (*Blog, bool) {
	blogBytes, err := c.cache.Get(cacheKey(id))
	if err != nil {
		// freecache.ErrNotFound mostly
		return nil, false
	}

	var blog Blog
	if err := json.Unmarshal(blogBytes, &blog); err != nil {
		log.Errorf("failed to unmarshal blog %d from cache: %s", id, err)
		return nil, false
	}

	return &blog, true
}

// Set stores the blog, unverified blogs are ignored.
func (c *VerifiedCache) Set(blog *Blog) {
	if blog == nil || !blog.Verified {
		return
	}

	blogBytes, err := json.Marshal(blog)
	if err != nil {
		log.Errorf("failed to marshal blog %d for cache: %s", blog.ID, err)
		return
	}

	if err := c.cache.Set(cacheKey(blog.ID), blogBytes, c.expireSeconds); err != nil {
		log.Errorf("failed to write blog %d to cache: %s", blog.ID, err)
		return
	}

	log.Tracef("blog %d cache set", blog.ID)
}

func (c *VerifiedCache) EntryCount() int64 {
	return c.cache.EntryCount()
}

func cacheKey(id int) []byte {
	return []byte(fmt.Sprintf("blog::%d", id))
}
