package middleware

import (
	"context"

	"constructedge/internal/domain"
	"constructedge/internal/utils"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RoleRequiredMiddleware restricts the listed methods to the given roles.
// Methods not in the map are open to any authenticated principal. It must
// run after BlacklistMiddleware.
func RoleRequiredMiddleware(rules map[string][]domain.RoleTag) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		allowed, restricted := rules[info.FullMethod]
		if !restricted {
			return handler(ctx, req)
		}

		claims, ok := ClaimsFromContext(ctx)
		if !ok {
			return nil, status.Error(codes.Internal, "Role not found in context")
		}
		role, ok := utils.RoleFromClaim(claims.Role)
		if !ok {
			return nil, status.Error(codes.PermissionDenied, "Forbidden: unknown role")
		}
		for _, r := range allowed {
			if r == role {
				return handler(ctx, req)
			}
		}
		return nil, status.Errorf(codes.PermissionDenied, "Forbidden: %s role cannot call %s", role, info.FullMethod)
	}
}
