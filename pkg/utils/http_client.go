package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// NewAPIClient 创建一个配置好超时和重试的 Resty 客户端
// 它是访问远端商城服务 (cart / identity / category) 的统一网络入口
func NewAPIClient(baseURL string) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).                    // 购物车操作都是小请求，10s 足够
		SetRetryCount(2).                              // 轻量重试，失败最终由 store 层回滚兜底
		SetRetryWaitTime(300*time.Millisecond).        // 重试间隔，平滑波峰
		SetHeader("User-Agent", "Ultrasooq-Session/1.0").
		SetHeader("Content-Type", "application/json")

	return client
}
