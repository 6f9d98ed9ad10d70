package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/medvisor/sanatoria_backend/models"
	"github.com/medvisor/sanatoria_backend/utils"
)

// respondError maps sentinel errors onto HTTP status codes; everything else
// is a generic persistence/server error.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorUnsupportedLocale):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func requestLocale(c *gin.Context) models.Locale {
	raw, ok := utils.GetLocaleFromContext(c.Request.Context())
	if !ok {
		return models.LocaleRu
	}
	return models.Locale(raw)
}

func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "0"))
	return page, limit
}

func intQuery(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}

// splitChanges partitions a flat partial document into direct writes and
// moderated submissions using the entity type's field registry.
func splitChanges(reg models.FieldRegistry, changes map[string]json.RawMessage) (direct, moderated map[string]json.RawMessage) {
	direct = make(map[string]json.RawMessage)
	moderated = make(map[string]json.RawMessage)
	for name, raw := range changes {
		if _, ok := reg[name]; ok {
			moderated[name] = raw
		} else {
			direct[name] = raw
		}
	}
	return direct, moderated
}

// canViewModeration: the moderation map is shown to the entity's owner and to
// reviewing staff, never to anonymous or unrelated callers.
func canViewModeration(c *gin.Context, ownerId int) bool {
	ctx := c.Request.Context()
	if utils.CanModerate(ctx) {
		return true
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	return ok && userId == ownerId
}

// canEditEntity: owners edit their own entities, admins edit anything.
func canEditEntity(c *gin.Context, ownerId int) bool {
	ctx := c.Request.Context()
	if utils.HasModerationBypass(ctx) {
		return true
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	return ok && userId == ownerId
}
