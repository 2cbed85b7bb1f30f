package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ultrasooq_session_v1/internal/api/dto"
	"ultrasooq_session_v1/internal/service"
)

// RfqController 询价单购物车控制器
type RfqController struct {
	rfqService *service.RfqService
}

func NewRfqController(rfqService *service.RfqService) *RfqController {
	return &RfqController{rfqService: rfqService}
}

// Put 写入询价行
// @Summary 写入询价行 (quantity=0 表示删除)
// @Description 询价车没有匿名态，未登录返回 401 引导登录
// @Tags Rfq
// @Accept json
// @Produce json
// @Param request body dto.RfqLineReq true "询价行参数"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string "需要登录"
// @Router /api/rfq [post]
func (h *RfqController) Put(c *gin.Context) {
	var req dto.RfqLineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.rfqService.Put(c.Request.Context(), owner(c), req); err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "SUCCESS"})
}

// List 询价行列表
// @Summary 询价行列表
// @Tags Rfq
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "需要登录"
// @Router /api/rfq [get]
func (h *RfqController) List(c *gin.Context) {
	lines, err := h.rfqService.List(c.Request.Context(), owner(c))
	if err != nil {
		writeCartError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "SUCCESS", "data": lines})
}
