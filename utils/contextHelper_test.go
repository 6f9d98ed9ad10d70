package utils

import (
	"context"
	"testing"

	"github.com/medvisor/sanatoria_backend/appctx"
)

func ctxWithRole(role string) context.Context {
	return appctx.Set(context.Background(), ContextKeyUserRole, role)
}

func TestHasModerationBypass(t *testing.T) {
	if !HasModerationBypass(ctxWithRole(RoleAdmin)) {
		t.Fatal("admin must bypass moderation")
	}
	for _, role := range []string{RoleModerator, RoleOwner, RoleUser} {
		if HasModerationBypass(ctxWithRole(role)) {
			t.Fatalf("role %q must not bypass moderation", role)
		}
	}
	if HasModerationBypass(context.Background()) {
		t.Fatal("anonymous caller must not bypass moderation")
	}
}

func TestCanModerate(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleModerator} {
		if !CanModerate(ctxWithRole(role)) {
			t.Fatalf("role %q must be able to moderate", role)
		}
	}
	for _, role := range []string{RoleOwner, RoleUser} {
		if CanModerate(ctxWithRole(role)) {
			t.Fatalf("role %q must not moderate", role)
		}
	}
	if CanModerate(context.Background()) {
		t.Fatal("anonymous caller must not moderate")
	}
}
