package middleware

import (
	"context"
	"errors"

	"constructedge/internal/utils"
	"constructedge/internal/utils/blacklist"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Authenticator resolves a bearer token to its claims, rejecting revoked
// tokens and banned users.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*utils.Claims, error)
}

type claimsKey struct{}

func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*utils.Claims)
	return claims, ok
}

// BlacklistMiddleware requires a valid, unrevoked bearer token on every call
// and stores its claims in the context.
func BlacklistMiddleware(auth Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		tokenString, err := utils.ExtractTokenFromContext(ctx)
		if err != nil {
			return nil, err
		}

		claims, err := auth.Authenticate(ctx, tokenString)
		if errors.Is(err, blacklist.ErrUserBanned) {
			return nil, status.Error(codes.PermissionDenied, "User is banned")
		} else if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		return handler(WithClaims(ctx, claims), req)
	}
}
