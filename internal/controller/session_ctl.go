package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ultrasooq_session_v1/internal/middleware"
	"ultrasooq_session_v1/internal/service"
)

// SessionController 会话控制器：登录切换、能力开关、路由可达性
type SessionController struct {
	sessionService *service.SessionService
	counterService *service.CounterService
}

func NewSessionController(sessionService *service.SessionService, counterService *service.CounterService) *SessionController {
	return &SessionController{sessionService: sessionService, counterService: counterService}
}

// Login 令牌到位后的会话切换
// @Summary 登录切换 (触发设备车合并)
// @Description 必须带商城鉴权服务签发的 Bearer 令牌；合并完成后才返回
// @Tags Session
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "令牌缺失或非法"
// @Router /api/session/login [post]
func (h *SessionController) Login(c *gin.Context) {
	userID := middleware.UserID(c)
	token := middleware.Token(c)
	if userID == 0 || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "令牌缺失或非法"})
		return
	}

	profile, err := h.sessionService.Login(c.Request.Context(), token, userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "SUCCESS",
		"profile": profile,
	})
}

// Logout 登出重置
// @Summary 登出 (清空会话级状态)
// @Tags Session
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/session/logout [post]
func (h *SessionController) Logout(c *gin.Context) {
	h.sessionService.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "SUCCESS"})
}

// Capabilities 能力开关
// @Summary 当前账户的能力开关
// @Description 画像未加载时按 WAITING 兜底 (fail closed)；仅 UI 提示用
// @Tags Session
// @Produce json
// @Success 200 {object} dto.CapabilityResp
// @Router /api/session/capabilities [get]
func (h *SessionController) Capabilities(c *gin.Context) {
	gate := h.sessionService.Gate()
	c.JSON(http.StatusOK, gin.H{
		"status":       "SUCCESS",
		"account":      gate.Status(),
		"capabilities": gate.Capabilities(),
	})
}

// RouteCheck 路由可达性
// @Summary 查询某路由对当前账户是否开放
// @Tags Session
// @Produce json
// @Param name path string true "路由名"
// @Success 200 {object} map[string]interface{}
// @Router /api/session/route/{name} [get]
func (h *SessionController) RouteCheck(c *gin.Context) {
	name := c.Param("name")
	c.JSON(http.StatusOK, gin.H{
		"status":  "SUCCESS",
		"route":   name,
		"allowed": h.sessionService.Gate().CanAccessRoute(name),
	})
}

// PermissionCheck 子账户权限判定
// @Summary 查询当前账户是否持有某权限
// @Tags Session
// @Produce json
// @Param name path string true "权限名"
// @Success 200 {object} map[string]interface{}
// @Router /api/session/permission/{name} [get]
func (h *SessionController) PermissionCheck(c *gin.Context) {
	name := c.Param("name")
	c.JSON(http.StatusOK, gin.H{
		"status":  "SUCCESS",
		"allowed": h.sessionService.Resolver().CanAccess(name),
	})
}

// UnreadCount 未读计数
// @Summary 未读计数 (轮询任务维护的缓存值)
// @Tags Session
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/session/unread-count [get]
func (h *SessionController) UnreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "SUCCESS",
		"count":  h.counterService.UnreadCount(),
	})
}
