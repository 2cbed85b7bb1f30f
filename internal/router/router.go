package router

import (
	"github.com/gin-gonic/gin"

	"ultrasooq_session_v1/internal/controller"
	"ultrasooq_session_v1/internal/middleware"
)

// Controllers 控制器集合
type Controllers struct {
	Cart     *controller.CartController
	Rfq      *controller.RfqController
	Wishlist *controller.WishlistController
	Session  *controller.SessionController
	Category *controller.CategoryController
	Pref     *controller.PrefController
}

// SetupRouter 注册所有路由
// deviceProvider: 请求头没带设备 id 时的兜底生成函数
func SetupRouter(ctls *Controllers, deviceProvider func(c *gin.Context) string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 全局中间件：先定设备身份，再解析可选令牌
	r.Use(middleware.EnsureDevice(deviceProvider))
	r.Use(middleware.OptionalAuth())

	// API 路由组
	api := r.Group("/api")
	{
		// cart 零售购物车 (匿名/登录同一套路由，由中间件分流)
		cart := api.Group("/cart")
		{
			cart.GET("", ctls.Cart.List)
			cart.POST("", ctls.Cart.Add)
			cart.POST("/increment", ctls.Cart.Increment)
			cart.PUT("", ctls.Cart.Update)
			cart.DELETE("/:price_id", ctls.Cart.Remove)
		}
		// rfq 询价车 (仅登录态)
		rfq := api.Group("/rfq")
		{
			rfq.GET("", ctls.Rfq.List)
			rfq.POST("", ctls.Rfq.Put)
		}
		// wishlist 收藏夹 (仅登录态)
		wishlist := api.Group("/wishlist")
		{
			wishlist.GET("", ctls.Wishlist.List)
			wishlist.POST("/toggle", ctls.Wishlist.Toggle)
		}
		// session 会话与能力闸
		session := api.Group("/session")
		{
			session.POST("/login", ctls.Session.Login)
			session.POST("/logout", ctls.Session.Logout)
			session.GET("/capabilities", ctls.Session.Capabilities)
			session.GET("/route/:name", ctls.Session.RouteCheck)
			session.GET("/permission/:name", ctls.Session.PermissionCheck)
			session.GET("/unread-count", ctls.Session.UnreadCount)
		}
		// category 类目连接匹配
		category := api.Group("/category")
		{
			category.POST("/check", ctls.Category.Check)
		}
		// prefs 持久化偏好
		prefs := api.Group("/prefs")
		{
			prefs.PUT("", ctls.Pref.Put)
			prefs.GET("/:key", ctls.Pref.Get)
		}
	}

	return r
}
