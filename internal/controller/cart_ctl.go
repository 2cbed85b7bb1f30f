package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ultrasooq_session_v1/internal/api/dto"
	"ultrasooq_session_v1/internal/middleware"
	"ultrasooq_session_v1/internal/service"
)

// CartController 零售购物车控制器
type CartController struct {
	cartService *service.CartService
}

func NewCartController(cartService *service.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// owner 从请求上下文组装归属人：有合法令牌走用户族，否则走设备族
func owner(c *gin.Context) service.CartOwner {
	if userID := middleware.UserID(c); userID != 0 {
		return service.CartOwner{UserID: userID, Token: middleware.Token(c)}
	}
	return service.CartOwner{DeviceID: middleware.DeviceID(c)}
}

// writeCartError 购物车写操作统一出错响应
// 同步失败是可恢复错误：本地已回滚，返回 200 + 提示，不抛 5xx 吓前端。
func writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCartSync):
		c.JSON(http.StatusOK, gin.H{
			"status": "ROLLED_BACK",
			"notice": "网络异常，操作未生效，请稍后重试",
		})
	case errors.Is(err, service.ErrLoginRequired):
		c.JSON(http.StatusUnauthorized, gin.H{
			"status": "LOGIN_REQUIRED",
			"notice": "请先登录后再操作",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// List 购物车列表
// @Summary 购物车列表
// @Description 登录态下会先确保设备车合并完成，再返回用户车
// @Tags Cart
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/cart [get]
func (h *CartController) List(c *gin.Context) {
	lines, err := h.cartService.List(c.Request.Context(), owner(c), middleware.DeviceID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "SUCCESS", "data": lines})
}

// Add 加购 (set 语义)
// @Summary 加购
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body dto.AddCartLineReq true "加购参数"
// @Success 200 {object} map[string]string
// @Router /api/cart [post]
func (h *CartController) Add(c *gin.Context) {
	var req dto.AddCartLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cartService.Add(c.Request.Context(), owner(c), req); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "SUCCESS"})
}

// Increment 增量加购
// @Summary 增量加购 (数量累加)
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body dto.IncrementCartLineReq true "增量参数"
// @Success 200 {object} map[string]string
// @Router /api/cart/increment [post]
func (h *CartController) Increment(c *gin.Context) {
	var req dto.IncrementCartLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cartService.Increment(c.Request.Context(), owner(c), req); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "SUCCESS"})
}

// Update 修改数量
// @Summary 修改行数量
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body dto.UpdateCartLineReq true "更新参数"
// @Success 200 {object} map[string]string
// @Router /api/cart [put]
func (h *CartController) Update(c *gin.Context) {
	var req dto.UpdateCartLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cartService.Update(c.Request.Context(), owner(c), req); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "SUCCESS"})
}

// Remove 删除行
// @Summary 删除行
// @Tags Cart
// @Produce json
// @Param price_id path int true "productPriceId"
// @Success 200 {object} map[string]string
// @Router /api/cart/{price_id} [delete]
func (h *CartController) Remove(c *gin.Context) {
	priceID, err := strconv.ParseInt(c.Param("price_id"), 10, 64)
	if err != nil || priceID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_id 非法"})
		return
	}

	if err := h.cartService.Remove(c.Request.Context(), owner(c), priceID); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "SUCCESS"})
}
