package utils

import (
	"context"

	"github.com/medvisor/sanatoria_backend/appctx"
)

var (
	ContextKeyUserId        = appctx.ContextKeyUserId
	ContextKeyUserRole      = appctx.ContextKeyUserRole
	ContextKeyLocale        = appctx.ContextKeyLocale
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

// Roles understood by the privilege gate. Kept as plain strings so the token
// claims stay portable.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleOwner     = "owner"
	RoleUser      = "user"
)

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserRole)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, cid string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, cid)
}

func GetLocaleFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyLocale)
}

// HasModerationBypass is the single place the bypass privilege is decided:
// admins commit moderated fields directly, everyone else is staged for review.
// Moderators review submissions but do NOT bypass staging on their own edits.
func HasModerationBypass(ctx context.Context) bool {
	role, ok := GetUserRoleFromContext(ctx)
	return ok && role == RoleAdmin
}

// CanModerate reports whether the caller may approve/reject pending fields.
func CanModerate(ctx context.Context) bool {
	role, ok := GetUserRoleFromContext(ctx)
	return ok && (role == RoleAdmin || role == RoleModerator)
}
