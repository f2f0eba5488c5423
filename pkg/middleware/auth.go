package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/StefanoVidesott/WannaWork-App/pkg/errs"
	"github.com/StefanoVidesott/WannaWork-App/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// gin context 中存放操作者身份的键
const (
	ActorIDKey   = "actor_id"
	ActorRoleKey = "actor_role"
)

// 操作者角色
const (
	RoleStudent  = "student"
	RoleEmployer = "employer"
)

// Claims JWT 载荷
type Claims struct {
	ActorID uint   `json:"actor_id"`
	Role    string `json:"role"`
	Email   string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken 为指定操作者签发 JWT
func IssueToken(secret string, ttl time.Duration, actorID uint, role, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		ActorID: actorID,
		Role:    role,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken 解析并校验 JWT
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// GinAuthMiddleware Bearer token 鉴权中间件，成功后把操作者身份写入 gin context
func GinAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, errs.Unauthorized("missing Authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, errs.Unauthorized("invalid Authorization header format"))
			c.Abort()
			return
		}

		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			response.Error(c, errs.Unauthorized("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(ActorIDKey, claims.ActorID)
		c.Set(ActorRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole 角色守卫，必须在 GinAuthMiddleware 之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ActorRoleKey)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Error(c, errs.Forbidden("insufficient role"))
		c.Abort()
	}
}

// Actor 从 gin context 读取已认证的操作者身份
func Actor(c *gin.Context) (uint, string) {
	id, _ := c.Get(ActorIDKey)
	actorID, _ := id.(uint)
	return actorID, c.GetString(ActorRoleKey)
}
