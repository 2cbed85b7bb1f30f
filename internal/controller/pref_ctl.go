package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ultrasooq_session_v1/internal/model"
	"ultrasooq_session_v1/internal/service"
)

// PrefController 持久化偏好控制器 (locale / currency / 物流方式)
type PrefController struct {
	storage *service.StorageService
}

func NewPrefController(storage *service.StorageService) *PrefController {
	return &PrefController{storage: storage}
}

// prefWhitelist 对外可写的偏好 key 白名单
// 不在这里的 key 一律拒绝，防止前端把任意数据塞进持久化存储。
var prefWhitelist = map[string]bool{
	model.PrefKeyLocale:         true,
	model.PrefKeyCurrency:       true,
	model.PrefKeyShippingMethod: true,
}

type prefReq struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// Put 写入偏好
// @Summary 写入持久化偏好
// @Tags Pref
// @Accept json
// @Produce json
// @Param request body prefReq true "偏好键值"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "key 不在白名单"
// @Router /api/prefs [put]
func (h *PrefController) Put(c *gin.Context) {
	var req prefReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !prefWhitelist[req.Key] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "该 key 不允许持久化"})
		return
	}

	persisted := h.storage.PutDurable(c.Request.Context(), req.Key, req.Value)
	c.JSON(http.StatusOK, gin.H{
		"status":    "SUCCESS",
		"persisted": persisted, // false 表示已降级为内存，仅本会话有效
	})
}

// Get 读取偏好
// @Summary 读取持久化偏好
// @Tags Pref
// @Produce json
// @Param key path string true "偏好 key"
// @Success 200 {object} map[string]interface{}
// @Router /api/prefs/{key} [get]
func (h *PrefController) Get(c *gin.Context) {
	key := c.Param("key")
	if !prefWhitelist[key] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "该 key 不允许读取"})
		return
	}

	value, ok := h.storage.GetDurable(c.Request.Context(), key)
	c.JSON(http.StatusOK, gin.H{
		"status": "SUCCESS",
		"key":    key,
		"value":  value,
		"found":  ok,
	})
}
