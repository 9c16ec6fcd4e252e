package middleware

import (
	"errors"
	"strings"
	"time"

	"lingua/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const walletKey = "wallet_address"

var jwtSecret []byte

// InitAuth 初始化认证中间件
func InitAuth(secret string) {
	jwtSecret = []byte(secret)
}

// Claims JWT 声明（钱包登录后签发）
type Claims struct {
	WalletAddress string `json:"wallet_address"`
	jwt.RegisteredClaims
}

// AuthMiddleware HTTP API 认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			utils.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}

		wallet, err := ValidateToken(token)
		if err != nil {
			utils.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		c.Set(walletKey, wallet)
		c.Next()
	}
}

// OptionalAuthMiddleware 公开接口使用：带有效 Token 时设置钱包地址，否则按匿名请求继续
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if wallet, err := ValidateToken(token); err == nil {
				c.Set(walletKey, wallet)
			}
		}
		c.Next()
	}
}

// bearerToken 解析 "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// ValidateToken 验证 JWT Token，返回钱包地址
func ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", jwt.ErrSignatureInvalid
	}
	if claims.WalletAddress == "" {
		return "", errors.New("token has no wallet address")
	}
	return claims.WalletAddress, nil
}

// GenerateToken 签发会话 Token
func GenerateToken(wallet string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		WalletAddress: wallet,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// GetWallet 从上下文获取当前钱包地址
func GetWallet(c *gin.Context) (string, bool) {
	wallet, exists := c.Get(walletKey)
	if !exists {
		return "", false
	}
	s, ok := wallet.(string)
	return s, ok && s != ""
}
