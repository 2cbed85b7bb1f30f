package service

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ultrasooq_session_v1/internal/model"
)

// ==================== 测试辅助 ====================

// setupTestDB 建内存库并迁移全部模型
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(
		&model.ClientPref{},
		&model.CartLine{},
		&model.RfqCartLine{},
		&model.WishlistEntry{},
	); err != nil {
		t.Fatalf("自动建表失败: %v", err)
	}
	return db
}

// newUpstreamStub 模拟远端商城服务
// handler 为 nil 时一律返回 SUCCESS
func newUpstreamStub(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *resty.Client) {
	t.Helper()
	if handler == nil {
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"SUCCESS"}`))
		}
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := resty.New().SetBaseURL(srv.URL)
	return srv, client
}

// newFailingStub 模拟远端一律 500
func newFailingStub(t *testing.T) *resty.Client {
	t.Helper()
	_, client := newUpstreamStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"FAILED"}`, http.StatusInternalServerError)
	})
	return client
}
