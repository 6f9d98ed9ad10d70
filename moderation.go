package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/medvisor/sanatoria_backend/models"
	"github.com/medvisor/sanatoria_backend/workflow"
)

// loadModerated resolves the :entityType/:id route pair into the concrete
// entity behind the shared moderation interface.
func loadModerated(c *gin.Context) (models.Moderated, bool) {
	entityType, err := models.ParseModeratedEntityType(c.Param("entityType"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}

	ctx := c.Request.Context()
	var entity models.Moderated
	switch entityType {
	case models.ModeratedEntityObject:
		entity, err = models.GetObjectById(ctx, id)
	case models.ModeratedEntityPartner:
		entity, err = models.GetPartnerById(ctx, id)
	case models.ModeratedEntityPublication:
		entity, err = models.GetPublicationById(ctx, id)
	}
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return entity, true
}

// invalidateEntityCache drops the cached row after an approval changed the
// live side.
func invalidateEntityCache(entity models.Moderated) {
	switch entity.ModerationEntityType() {
	case models.ModeratedEntityObject:
		_ = models.InvalidateResource[models.Object](entity.GetID())
	case models.ModeratedEntityPartner:
		_ = models.InvalidateResource[models.Partner](entity.GetID())
	case models.ModeratedEntityPublication:
		_ = models.InvalidateResource[models.Publication](entity.GetID())
	}
}

func listPendingHandler(c *gin.Context) {
	var entityType models.ModeratedEntityType
	if raw := c.Query("entity_type"); raw != "" {
		parsed, err := models.ParseModeratedEntityType(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		entityType = parsed
	}
	rows, err := workflow.ListPendingSubmissions(c.Request.Context(), entityType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": rows})
}

func approveFieldHandler(c *gin.Context) {
	entity, ok := loadModerated(c)
	if !ok {
		return
	}
	record, err := workflow.ApproveField(c.Request.Context(), entity, c.Param("field"))
	if err != nil {
		respondError(c, err)
		return
	}
	invalidateEntityCache(entity)
	view, err := models.BuildModerationView(models.RegistryFor(entity.ModerationEntityType()), record, requestLocale(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moderation": view})
}

type rejectInput struct {
	Message string `json:"message" binding:"required"`
}

func rejectFieldHandler(c *gin.Context) {
	entity, ok := loadModerated(c)
	if !ok {
		return
	}
	var input rejectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	record, err := workflow.RejectField(c.Request.Context(), entity, c.Param("field"), input.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := models.BuildModerationView(models.RegistryFor(entity.ModerationEntityType()), record, requestLocale(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moderation": view})
}

func approveFeedbackHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	feedback, err := models.ModerateFeedback(c.Request.Context(), id, true, "")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func rejectFeedbackHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var input rejectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	feedback, err := models.ModerateFeedback(c.Request.Context(), id, false, input.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}
