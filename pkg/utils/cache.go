package utils

import (
	"sync"
	"time"
)

// SessionCache 会话级缓存 (对应浏览器 sessionStorage 语义)
// 使用 sync.Map 保证并发安全；Clear 对应"会话结束即清空"。
type SessionCache struct {
	store sync.Map
}

// cacheItem 内部结构，包含值和过期时间
type cacheItem struct {
	value      string
	expiration int64 // 0 表示不过期，随会话清空
}

// NewSessionCache 创建会话缓存
func NewSessionCache() *SessionCache {
	return &SessionCache{}
}

// Set 设置缓存 (随会话存活，不过期)
func (c *SessionCache) Set(key, value string) {
	c.store.Store(key, cacheItem{value: value})
}

// SetWithTTL 设置带过期时间的缓存
func (c *SessionCache) SetWithTTL(key, value string, ttl time.Duration) {
	c.store.Store(key, cacheItem{
		value:      value,
		expiration: time.Now().Add(ttl).Unix(),
	})
}

// Get 获取缓存并验证是否过期
func (c *SessionCache) Get(key string) (string, bool) {
	val, ok := c.store.Load(key)
	if !ok {
		return "", false
	}

	item := val.(cacheItem)

	// 检查是否过期
	if item.expiration > 0 && time.Now().Unix() > item.expiration {
		c.store.Delete(key) // 懒删除
		return "", false
	}

	return item.value, true
}

// Delete 删除缓存 (用完即焚)
func (c *SessionCache) Delete(key string) {
	c.store.Delete(key)
}

// Clear 清空全部缓存 (会话结束 / 登出时调用)
func (c *SessionCache) Clear() {
	c.store.Range(func(key, _ interface{}) bool {
		c.store.Delete(key)
		return true
	})
}
