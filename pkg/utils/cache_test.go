package utils

import (
	"testing"
	"time"
)

func TestSessionCache_SetGet(t *testing.T) {
	c := NewSessionCache()

	c.Set("locale", "ar")
	if v, ok := c.Get("locale"); !ok || v != "ar" {
		t.Errorf("读取不一致: %q %v", v, ok)
	}

	c.Delete("locale")
	if _, ok := c.Get("locale"); ok {
		t.Error("删除后不应再能读到")
	}
}

func TestSessionCache_TTLExpiry(t *testing.T) {
	c := NewSessionCache()

	c.SetWithTTL("unread_count", "3", 1*time.Second)
	if _, ok := c.Get("unread_count"); !ok {
		t.Fatal("未过期就读不到了")
	}

	// 过期时间按秒判定，退后两秒保证跨过边界
	c.store.Store("unread_count", cacheItem{value: "3", expiration: time.Now().Add(-2 * time.Second).Unix()})
	if _, ok := c.Get("unread_count"); ok {
		t.Error("过期后应读不到")
	}
}

func TestSessionCache_Clear(t *testing.T) {
	c := NewSessionCache()
	c.Set("a", "1")
	c.Set("b", "2")

	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("清空后 a 仍可读")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("清空后 b 仍可读")
	}
}
