package connectrpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/eslsoft/gradebook/internal/entity"
)

// UserIDHeader carries the caller's identity on every request.
const UserIDHeader = "X-User-Id"

type userIDKey struct{}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFrom returns the identity the server interceptor attached to ctx.
func UserIDFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// NewIdentityInterceptor rejects server requests without a user id header.
func NewIdentityInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				return next(ctx, req)
			}
			userID := strings.TrimSpace(req.Header().Get(UserIDHeader))
			if userID == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, entity.ErrInvalidUserID)
			}
			return next(withUserID(ctx, userID), req)
		}
	}
}

// NewUserIDInterceptor stamps outgoing client requests with userID.
func NewUserIDInterceptor(userID string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				req.Header().Set(UserIDHeader, userID)
			}
			return next(ctx, req)
		}
	}
}
