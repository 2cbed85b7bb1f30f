package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ==================== JWT 配置 ====================

// JWTConfig JWT 配置
// 网关不签发令牌，只校验商城鉴权服务签出的令牌 (HS256 共享密钥)。
type JWTConfig struct {
	SecretKey      string        // 签名密钥
	AccessTokenTTL time.Duration // Access Token 有效期 (仅测试签发用)
	Issuer         string        // 签发者
}

// DefaultJWTConfig 默认配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		SecretKey:      "ultrasooq-session-secret-change-in-production",
		AccessTokenTTL: 2 * time.Hour,
		Issuer:         "ultrasooq",
	}
}

// 全局配置
var jwtConfig = DefaultJWTConfig()

// SetJWTConfig 设置 JWT 配置
func SetJWTConfig(cfg *JWTConfig) {
	jwtConfig = cfg
}

// ==================== Claims 定义 ====================

// SessionClaims 会话令牌声明
type SessionClaims struct {
	UserID    int64  `json:"user_id"`
	TradeRole string `json:"trade_role"`
	jwt.RegisteredClaims
}

// ==================== Token 解析 ====================

// ParseToken 解析并校验令牌
func ParseToken(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("非预期的签名算法")
		}
		return []byte(jwtConfig.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("令牌无效")
	}
	return claims, nil
}

// GenerateToken 签发令牌 (测试与本地联调用，生产令牌由商城鉴权服务签发)
func GenerateToken(userID int64, tradeRole string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:    userID,
		TradeRole: tradeRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtConfig.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtConfig.AccessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtConfig.SecretKey))
}

// ==================== Gin 中间件 ====================

// 上下文 key
const (
	CtxKeyUserID    = "session_user_id"
	CtxKeyTradeRole = "session_trade_role"
	CtxKeyToken     = "session_token"
)

// OptionalAuth 可选鉴权中间件
// 带合法令牌 → 注入登录态；没带或令牌非法 → 按匿名态放行。
// 购物车匿名/登录两族接口共用一套路由，由这里决定走哪族。
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims, err := ParseToken(tokenStr)
		if err != nil {
			// 令牌非法不拦截，降级为匿名态
			c.Next()
			return
		}

		c.Set(CtxKeyUserID, claims.UserID)
		c.Set(CtxKeyTradeRole, claims.TradeRole)
		c.Set(CtxKeyToken, tokenStr)
		c.Next()
	}
}

// UserID 从上下文取登录用户 id，匿名态返回 0
func UserID(c *gin.Context) int64 {
	if v, ok := c.Get(CtxKeyUserID); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// Token 从上下文取原始令牌
func Token(c *gin.Context) string {
	if v, ok := c.Get(CtxKeyToken); ok {
		if t, ok := v.(string); ok {
			return t
		}
	}
	return ""
}
