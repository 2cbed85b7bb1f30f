package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"gorm.io/gorm"

	"ultrasooq_session_v1/internal/controller"
	"ultrasooq_session_v1/internal/middleware"
	"ultrasooq_session_v1/internal/model"
	"ultrasooq_session_v1/internal/repository"
	"ultrasooq_session_v1/internal/router"
	"ultrasooq_session_v1/internal/service"
	"ultrasooq_session_v1/internal/task"
	"ultrasooq_session_v1/pkg/database"
	"ultrasooq_session_v1/pkg/utils"
)

func main() {
	// 1. 初始化本地存储 (失败降级为纯内存模式，不退出)
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers, func(c *gin.Context) string {
		return deps.Services.Device.GetOrCreateDeviceID(c.Request.Context())
	})

	// 5. 启动服务
	startServer(r, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Client      *resty.Client
	Controllers *router.Controllers
	Services    *Services
	Tasks       *Tasks
}

// Repositories 仓库集合
type Repositories struct {
	Cart     repository.CartRepository
	Pref     repository.PrefRepository
	Rfq      repository.RfqRepository
	Wishlist repository.WishlistRepository
}

// Services 服务集合
type Services struct {
	Storage  *service.StorageService
	Device   *service.DeviceService
	Cart     *service.CartService
	Rfq      *service.RfqService
	Wishlist *service.WishlistService
	Category *service.CategoryService
	Session  *service.SessionService
	Counter  *service.CounterService
}

// Tasks 定时任务集合
type Tasks struct {
	Counter *task.CounterTask
}

// ==================== 初始化函数 ====================

// initDatabase 初始化本地存储
func initDatabase() *gorm.DB {
	models := []interface{}{
		// 偏好
		&model.ClientPref{},
		// 购物车
		&model.CartLine{}, &model.RfqCartLine{}, &model.WishlistEntry{},
	}

	dsn := getEnv("SESSION_DB", "ultrasooq_session.db")
	db, err := database.InitDB(dsn, models...)
	if err == nil {
		// 询价车是会话级数据：上次运行残留的行不跨重启存活
		if err := db.Unscoped().Where("1 = 1").Delete(&model.RfqCartLine{}).Error; err != nil {
			log.Printf("[Boot] 清理残留询价行失败: %v", err)
		}
		// 用户归属的购物车行带敏感的 user_id，同样不跨重启存活；
		// 设备归属的行 (匿名车) 才是允许持久化的部分
		if err := db.Unscoped().Where("user_id <> 0").Delete(&model.CartLine{}).Error; err != nil {
			log.Printf("[Boot] 清理残留用户购物车行失败: %v", err)
		}
	}
	if err != nil {
		// 对应浏览器里 localStorage 被禁用的场景：
		// 退到内存库，本次运行期内功能完整，但什么都不跨重启存活
		log.Printf("[Boot] 本地存储不可用，降级为内存库: %v", err)
		db, err = database.InitDB(":memory:", models...)
		if err != nil {
			log.Fatalf("内存库初始化失败: %v", err)
		}
		durableStorage = false
	}
	return db
}

// durableStorage 本地存储是否真正跨重启存活
var durableStorage = true

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- 远端客户端 --------
	client := utils.NewAPIClient(getEnv("UPSTREAM_API_BASE", "https://api.ultrasooq.com/v1"))

	// -------- JWT 配置 --------
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:      getEnv("SESSION_JWT_SECRET", "ultrasooq-session-secret-change-in-production"),
		AccessTokenTTL: 2 * time.Hour,
		Issuer:         "ultrasooq",
	})

	// -------- 业务服务 --------
	storageSvc := service.NewStorageService(repos.Pref)
	if !durableStorage {
		storageSvc.Degrade()
	}
	deviceSvc := service.NewDeviceService(storageSvc)
	cartSvc := service.NewCartService(repos.Cart, client)
	rfqSvc := service.NewRfqService(repos.Rfq, client)
	wishlistSvc := service.NewWishlistService(repos.Wishlist, client)
	categorySvc := service.NewCategoryService(client)
	sessionSvc := service.NewSessionService(deviceSvc, cartSvc, rfqSvc, storageSvc, client)
	counterSvc := service.NewCounterService(sessionSvc, storageSvc, client)

	services := &Services{
		Storage:  storageSvc,
		Device:   deviceSvc,
		Cart:     cartSvc,
		Rfq:      rfqSvc,
		Wishlist: wishlistSvc,
		Category: categorySvc,
		Session:  sessionSvc,
		Counter:  counterSvc,
	}

	// 启动即确定设备身份
	deviceID := sessionSvc.Boot(context.Background())
	log.Printf("[Boot] 设备身份就位: %s", deviceID)

	// -------- Controller 层 --------
	controllers := initControllers(services)

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Client:      client,
		Controllers: controllers,
		Services:    services,
	}
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Cart:     repository.NewCartRepository(db),
		Pref:     repository.NewPrefRepository(db),
		Rfq:      repository.NewRfqRepository(db),
		Wishlist: repository.NewWishlistRepository(db),
	}
}

// initControllers 初始化所有控制器
func initControllers(svc *Services) *router.Controllers {
	return &router.Controllers{
		Cart:     controller.NewCartController(svc.Cart),
		Rfq:      controller.NewRfqController(svc.Rfq),
		Wishlist: controller.NewWishlistController(svc.Wishlist),
		Session:  controller.NewSessionController(svc.Session, svc.Counter),
		Category: controller.NewCategoryController(svc.Category),
		Pref:     controller.NewPrefController(svc.Storage),
	}
}

// initTasks 启动定时任务
func initTasks(deps *Dependencies) {
	interval, _ := strconv.Atoi(getEnv("UNREAD_POLL_SECONDS", "30"))
	counterTask := task.NewCounterTask(deps.Services.Counter, interval)

	// 功能开关：轮询可整体关掉
	if getEnv("FEATURE_UNREAD_POLL", "on") == "on" {
		counterTask.Start()
	}
	deps.Tasks = &Tasks{Counter: counterTask}
}

// startServer 启动 HTTP 服务并处理优雅关停
func startServer(r *gin.Engine, deps *Dependencies) {
	addr := getEnv("LISTEN_ADDR", ":8090")
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Printf("[Boot] 会话网关启动，监听 %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Boot] 收到退出信号，开始优雅关停...")

	if deps.Tasks != nil && deps.Tasks.Counter != nil {
		deps.Tasks.Counter.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("关停超时: %v", err)
	}
	log.Println("[Boot] 已退出")
}

// getEnv 读取环境变量，空值回退默认
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
