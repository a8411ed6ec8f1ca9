package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 自定义JWT Claims
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWT 令牌签发与校验，密钥来自配置
type JWT struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWT 创建 JWT 工具
func NewJWT(secret, issuer string, ttl time.Duration) *JWT {
	return &JWT{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

// GenerateToken 生成JWT Token
func (j *JWT) GenerateToken(userID uint, role string) (string, *time.Time, error) {
	if len(j.secret) == 0 {
		return "", nil, errors.New("jwt secret is not configured")
	}
	now := time.Now()
	expireTime := now.Add(j.ttl)

	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expireTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.issuer,
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := tokenClaims.SignedString(j.secret)
	if err != nil {
		return "", nil, err
	}
	return token, &expireTime, nil
}

// ParseToken 验证JWT Token
func (j *JWT) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.secret, nil
	}, jwt.WithIssuer(j.issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}
