package middleware

import (
	"github.com/gin-gonic/gin"
)

// CtxKeyDeviceID 上下文里的设备 id key
const CtxKeyDeviceID = "session_device_id"

// DeviceIDHeader 前端携带/回显设备 id 的请求头
const DeviceIDHeader = "X-Device-Id"

// EnsureDevice 设备身份中间件
// 请求头带了设备 id 就用请求头的；没带就落到本地持久化的 id (没有则生成)。
// 响应头回显，前端首次访问后即可带上。
func EnsureDevice(getOrCreate func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := c.GetHeader(DeviceIDHeader)
		if deviceID == "" {
			deviceID = getOrCreate(c)
		}
		c.Set(CtxKeyDeviceID, deviceID)
		c.Header(DeviceIDHeader, deviceID)
		c.Next()
	}
}

// DeviceID 从上下文取设备 id
func DeviceID(c *gin.Context) string {
	if v, ok := c.Get(CtxKeyDeviceID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
