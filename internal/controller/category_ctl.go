package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ultrasooq_session_v1/internal/api/dto"
	"ultrasooq_session_v1/internal/service"
)

// CategoryController 类目连接匹配控制器
type CategoryController struct {
	categoryService *service.CategoryService
}

func NewCategoryController(categoryService *service.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// Check 商家-商品类目匹配检查
// @Summary 判断商家授权类目是否覆盖商品类目
// @Description 连接边 > 直连 > 祖先路径，逐级兜底；数据缺失按未连接处理
// @Tags Category
// @Accept json
// @Produce json
// @Param request body dto.CategoryCheckReq true "检查参数"
// @Success 200 {object} map[string]interface{}
// @Router /api/category/check [post]
func (h *CategoryController) Check(c *gin.Context) {
	var req dto.CategoryCheckReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	connected := h.categoryService.CheckConnection(
		c.Request.Context(), req.VendorCategoryIDs, req.ProductCategoryID)

	c.JSON(http.StatusOK, gin.H{
		"status":    "SUCCESS",
		"connected": connected,
	})
}
