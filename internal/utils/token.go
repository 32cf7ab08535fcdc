package utils

import (
	"context"
	"errors"
	"strings"
	"time"

	"constructedge/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	ID    string `json:"id"`
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Remaining is how long the token stays valid; zero once expired.
func (c *Claims) Remaining() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	d := time.Until(c.ExpiresAt.Time)
	if d < 0 {
		return 0
	}
	return d
}

type TokenParams struct {
	ID    string
	Role  domain.RoleTag
	Email string
}

func GenerateToken(params TokenParams, secretKey string, ttl time.Duration) (string, error) {
	jti, err := GenerateRandomString(24)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := &Claims{
		ID:    params.ID,
		Role:  string(params.Role),
		Email: params.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   params.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

func ParseAndValidateToken(tokenString string, secretKey string, options ...jwt.ParserOption) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secretKey), nil
	}, options...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, ok := RoleFromClaim(claims.Role); !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func ExtractTokenFromContext(ctx context.Context) (string, error) {
	headers, ok := metadata.FromIncomingContext(ctx)

	if !ok {
		return "", status.Error(codes.Unauthenticated, "Headers are missing")
	}

	authHeaders := headers.Get("Authorization")
	if len(authHeaders) == 0 {
		return "", status.Error(codes.Unauthenticated, "Authorization header is missing")
	}

	authHeader := authHeaders[0]
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", status.Error(codes.Unauthenticated, "Invalid authorization header format")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" {
		return "", status.Error(codes.Unauthenticated, "Token is missing")
	}

	return tokenString, nil
}
