package server

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	svcErr "github.com/oggyb/muzz-matchmaker/internal/errors"
)

// AdminTokenHeader is the metadata key carrying the admin token.
const AdminTokenHeader = "x-admin-token"

// AdminAuthInterceptor guards the listed methods with a bcrypt-hashed token.
// An empty hash disables those methods entirely.
func AdminAuthInterceptor(tokenHash string, methods []string) grpc.UnaryServerInterceptor {
	guarded := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		guarded[m] = struct{}{}
	}
	hash := []byte(tokenHash)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := guarded[info.FullMethod]; !ok {
			return handler(ctx, req)
		}
		if len(hash) == 0 {
			return nil, svcErr.PermissionDenied("admin methods are disabled")
		}

		md, _ := metadata.FromIncomingContext(ctx)
		tokens := md.Get(AdminTokenHeader)
		if len(tokens) == 0 || tokens[0] == "" {
			return nil, svcErr.Unauthenticated("missing " + AdminTokenHeader)
		}
		if err := bcrypt.CompareHashAndPassword(hash, []byte(tokens[0])); err != nil {
			return nil, svcErr.PermissionDenied("invalid admin token")
		}
		return handler(ctx, req)
	}
}
