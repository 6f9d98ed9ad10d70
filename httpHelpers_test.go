package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medvisor/sanatoria_backend/appctx"
	"github.com/medvisor/sanatoria_backend/models"
	"github.com/medvisor/sanatoria_backend/utils"
)

// NOTE: handler paths that touch MySQL/Redis are covered by integration
// tests; these exercise the pure helpers shared by every handler file.

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(values map[appctx.ContextKey]any) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := req.Context()
	for k, v := range values {
		ctx = appctx.Set(ctx, k, v)
	}
	c.Request = req.WithContext(ctx)
	return c, w
}

func TestRespondError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{utils.ErrorRecordNotFound, http.StatusNotFound},
		{utils.ErrorUnsupportedLocale, http.StatusUnprocessableEntity},
		{utils.ErrorForbidden, http.StatusForbidden},
		{utils.ErrorInvalidTransition, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		c, w := testContext(nil)
		respondError(c, tc.err)
		if w.Code != tc.want {
			t.Errorf("respondError(%v): status = %d, want %d", tc.err, w.Code, tc.want)
		}
	}
}

func TestSplitChanges_PartitionsByRegistry(t *testing.T) {
	reg := models.RegistryFor(models.ModeratedEntityObject)
	changes := map[string]json.RawMessage{
		"name_ru":        json.RawMessage(`"Лесная Поляна"`),
		"description_ru": json.RawMessage(`"тихий сосновый бор"`),
		"stars":          json.RawMessage(`4`),
		"is_active":      json.RawMessage(`true`),
	}

	direct, moderated := splitChanges(reg, changes)

	for _, name := range []string{"description_ru", "stars"} {
		if _, ok := moderated[name]; !ok {
			t.Errorf("%s should be routed to moderation", name)
		}
	}
	for _, name := range []string{"name_ru", "is_active"} {
		if _, ok := direct[name]; !ok {
			t.Errorf("%s should be a direct write", name)
		}
	}
	if len(direct)+len(moderated) != len(changes) {
		t.Errorf("partition lost keys: %d direct + %d moderated, want %d total", len(direct), len(moderated), len(changes))
	}
}

func TestCanViewModeration(t *testing.T) {
	cases := []struct {
		name   string
		values map[appctx.ContextKey]any
		want   bool
	}{
		{"owner", map[appctx.ContextKey]any{appctx.ContextKeyUserId: 7}, true},
		{"admin", map[appctx.ContextKey]any{appctx.ContextKeyUserId: 1, appctx.ContextKeyUserRole: utils.RoleAdmin}, true},
		{"moderator", map[appctx.ContextKey]any{appctx.ContextKeyUserId: 2, appctx.ContextKeyUserRole: utils.RoleModerator}, true},
		{"other user", map[appctx.ContextKey]any{appctx.ContextKeyUserId: 8, appctx.ContextKeyUserRole: utils.RoleUser}, false},
		{"anonymous", nil, false},
	}
	for _, tc := range cases {
		c, _ := testContext(tc.values)
		if got := canViewModeration(c, 7); got != tc.want {
			t.Errorf("%s: canViewModeration = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanEditEntity(t *testing.T) {
	cases := []struct {
		name   string
		values map[appctx.ContextKey]any
		want   bool
	}{
		{"owner", map[appctx.ContextKey]any{appctx.ContextKeyUserId: 7, appctx.ContextKeyUserRole: utils.RoleOwner}, true},
		{"admin", map[appctx.ContextKey]any{appctx.ContextKeyUserId: 1, appctx.ContextKeyUserRole: utils.RoleAdmin}, true},
		{"moderator is not an editor", map[appctx.ContextKey]any{appctx.ContextKeyUserId: 2, appctx.ContextKeyUserRole: utils.RoleModerator}, false},
		{"other user", map[appctx.ContextKey]any{appctx.ContextKeyUserId: 8, appctx.ContextKeyUserRole: utils.RoleUser}, false},
	}
	for _, tc := range cases {
		c, _ := testContext(tc.values)
		if got := canEditEntity(c, 7); got != tc.want {
			t.Errorf("%s: canEditEntity = %v, want %v", tc.name, got, tc.want)
		}
	}
}
