package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ultrasooq_session_v1/internal/api/dto"
	"ultrasooq_session_v1/internal/service"
)

// WishlistController 收藏夹控制器
type WishlistController struct {
	wishlistService *service.WishlistService
}

func NewWishlistController(wishlistService *service.WishlistService) *WishlistController {
	return &WishlistController{wishlistService: wishlistService}
}

// Toggle 收藏/取消收藏
// @Summary 收藏开关
// @Tags Wishlist
// @Accept json
// @Produce json
// @Param request body dto.WishlistReq true "收藏参数"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "需要登录"
// @Router /api/wishlist/toggle [post]
func (h *WishlistController) Toggle(c *gin.Context) {
	var req dto.WishlistReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wanted, err := h.wishlistService.Toggle(c.Request.Context(), owner(c), req.ProductID)
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "SUCCESS", "wanted": wanted})
}

// List 收藏列表
// @Summary 收藏列表
// @Tags Wishlist
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "需要登录"
// @Router /api/wishlist [get]
func (h *WishlistController) List(c *gin.Context) {
	entries, err := h.wishlistService.List(c.Request.Context(), owner(c))
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "SUCCESS", "data": entries})
}
