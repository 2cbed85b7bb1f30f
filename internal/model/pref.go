package model

// 持久化偏好的 Key 常量
// 这些 key 经过敏感性评审，允许写入可跨重启存活的本地存储。
const (
	PrefKeyDeviceID       = "device_id"
	PrefKeyLocale         = "locale"
	PrefKeyCurrency       = "currency"
	PrefKeyShippingMethod = "shipping_method"
)

// ClientPref 本地持久化键值对 (对应浏览器 localStorage 语义)
// 只允许写入非敏感字段，敏感字段由 StorageService 的策略拦截。
type ClientPref struct {
	BaseModel
	Key   string `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}

func (ClientPref) TableName() string { return "client_prefs" }
