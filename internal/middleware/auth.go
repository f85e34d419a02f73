package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/user/where2watch/internal/utils"
)

const (
	// RoleAdmin 管理员角色
	RoleAdmin = "admin"
	// SessionAdminKey 会话中的管理员标记
	SessionAdminKey = "admin"
	// TokenCookie JWT cookie 名
	TokenCookie = "token"
)

// Claims JWT 声明
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAdmin 管理员权限中间件
// 会话中有管理员标记，或携带有效的管理员 JWT（cookie 或 Bearer）即可通过
func RequireAdmin(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionIsAdmin(c) {
			c.Set("role", RoleAdmin)
			c.Next()
			return
		}

		claims, err := extractClaims(c, jwtSecret)
		if err != nil || claims.Role != RoleAdmin {
			utils.Unauthorized(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Set("role", claims.Role)

		// 滑动续期：有效期消耗过半则刷新 cookie
		if shouldRefresh(claims) {
			expiry := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
			if token, err := GenerateToken(claims.Role, jwtSecret, expiry); err == nil {
				c.SetCookie(TokenCookie, token, int(expiry.Seconds()), "/", "", false, true)
			}
		}

		c.Next()
	}
}

// IsAdmin 当前请求是否已通过管理员校验
func IsAdmin(c *gin.Context) bool {
	role, ok := c.Get("role")
	return ok && role == RoleAdmin
}

func sessionIsAdmin(c *gin.Context) bool {
	// 未挂载 sessions 中间件时 sessions.Default 会 panic
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return false
	}
	v, _ := sessions.Default(c).Get(SessionAdminKey).(bool)
	return v
}

// extractClaims 从 Cookie 或 Header 中提取 JWT Claims
func extractClaims(c *gin.Context, jwtSecret string) (*Claims, error) {
	var tokenString string

	// 优先从 Cookie 获取
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		tokenString = cookie
	} else {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if tokenString == "" {
		return nil, jwt.ErrTokenMalformed
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// GenerateToken 生成 JWT Token
func GenerateToken(role, jwtSecret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   role,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// shouldRefresh 已经消耗了总有效期的 50% 以上
func shouldRefresh(claims *Claims) bool {
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return false
	}
	total := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	return time.Since(claims.IssuedAt.Time) > total/2
}
