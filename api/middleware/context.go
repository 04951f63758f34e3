package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/brandbeam/brandbeam-backend/pkg/auth"
	"github.com/brandbeam/brandbeam-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxRole    contextKey = "actor_role"
	ctxBrandID contextKey = "brand_id"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func BrandIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxBrandID).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext rebuilds the authenticated actor seeded by Auth.
func ActorFromContext(ctx context.Context) (auth.Actor, bool) {
	userID, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return auth.Actor{}, false
	}
	actor := auth.Actor{
		UserID: userID,
		Role:   enums.MemberRole(RoleFromContext(ctx)),
	}
	if raw := BrandIDFromContext(ctx); raw != "" {
		if brandID, err := uuid.Parse(raw); err == nil {
			actor.BrandID = &brandID
		}
	}
	return actor, actor.Role.IsValid()
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithBrandID injects the brand identifier into the context for downstream handlers.
func WithBrandID(ctx context.Context, brandID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxBrandID, brandID)
}
