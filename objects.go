package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/medvisor/sanatoria_backend/config"
	"github.com/medvisor/sanatoria_backend/models"
	"github.com/medvisor/sanatoria_backend/utils"
	"github.com/medvisor/sanatoria_backend/workflow"
)

type objectResponse struct {
	*models.Object
	ModerationObject map[string]*models.FieldView `json:"moderation_object"`
}

// hydrateObject attaches the moderation map to an object payload. The map is
// only built for the owner and reviewing staff; everyone else gets null.
func hydrateObject(c *gin.Context, object *models.Object) (*objectResponse, error) {
	resp := &objectResponse{Object: object}
	if !canViewModeration(c, object.OwnerId) {
		return resp, nil
	}
	record, err := models.LoadModerationRecord(config.GetDB().WithContext(c.Request.Context()), models.ModeratedEntityObject, object.ID)
	if err != nil {
		return nil, err
	}
	view, err := models.BuildModerationView(models.RegistryFor(models.ModeratedEntityObject), record, requestLocale(c))
	if err != nil {
		return nil, err
	}
	resp.ModerationObject = view
	return resp, nil
}

func listObjectsHandler(c *gin.Context) {
	filter := models.ObjectFilter{
		CountryId:        intQuery(c, "country_id"),
		RegionId:         intQuery(c, "region_id"),
		CityId:           intQuery(c, "city_id"),
		MedicalProfileId: intQuery(c, "medical_profile_id"),
		ServiceId:        intQuery(c, "service_id"),
		TherapyId:        intQuery(c, "therapy_id"),
		MinStars:         intQuery(c, "min_stars"),
		ActiveOnly:       !utils.CanModerate(c.Request.Context()),
	}
	page, limit := pageParams(c)
	rows, total, err := models.ListObjects(c.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"objects": rows, "page_info": models.NewPageInfo(page, limit, total)})
}

func getObjectHandler(c *gin.Context) {
	object, err := models.GetObjectBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := hydrateObject(c, object)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func createObjectHandler(c *gin.Context) {
	userId, ok := utils.GetUserIdFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var input models.NewObject
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	if err := input.Validate(c.Request.Context()); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	object, err := input.ToObject(userId)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	db := config.GetDB()
	if err := db.WithContext(c.Request.Context()).Create(object).Error; err != nil {
		if models.IsDuplicateKeyErr(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
			return
		}
		config.LogError(config.GetLogger(), "objects", "createObjectHandler", "create", input, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, object)
}

// updateObjectHandler takes a flat partial document. Keys registered for
// moderation go through the reconciler; the rest are written directly.
func updateObjectHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	object, err := models.GetObjectById(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canEditEntity(c, object.OwnerId) {
		c.JSON(http.StatusForbidden, gin.H{"error": utils.ErrorForbidden.Error()})
		return
	}
	var changes map[string]json.RawMessage
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	direct, moderated := splitChanges(models.RegistryFor(models.ModeratedEntityObject), changes)

	ctx, span := tracer.Start(c.Request.Context(), "objects.update")
	defer span.End()
	if len(direct) > 0 {
		if err := object.ApplyDirect(ctx, direct); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		if err := config.GetDB().WithContext(ctx).Save(object).Error; err != nil {
			respondError(c, err)
			return
		}
	}
	if len(moderated) > 0 {
		if _, err := workflow.SubmitModeratedFields(ctx, object, moderated); err != nil {
			respondError(c, err)
			return
		}
	}

	_ = models.InvalidateResource[models.Object](id)

	object, err = models.GetObjectById(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := hydrateObject(c, object)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func deleteObjectHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	object, err := models.GetObjectById(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canEditEntity(c, object.OwnerId) {
		c.JSON(http.StatusForbidden, gin.H{"error": utils.ErrorForbidden.Error()})
		return
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Delete(object).Error; err != nil {
		respondError(c, err)
		return
	}
	_ = models.InvalidateResource[models.Object](id)
	// stored files are removed best-effort; the row is already gone
	for _, key := range object.Documents {
		if derr := utils.DeleteStoredObject(c.Request.Context(), key); derr != nil {
			config.LogError(config.GetLogger(), "objects", "deleteObjectHandler", "delete stored object", key, derr)
		}
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func listObjectFeedbackHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	page, limit := pageParams(c)
	rows, total, err := models.ListApprovedFeedback(c.Request.Context(), id, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": rows, "page_info": models.NewPageInfo(page, limit, total)})
}

func createFeedbackHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if _, err := models.GetResource[models.Object](c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	var input models.NewFeedback
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	if err := input.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	feedback := input.ToFeedback(id)
	if err := config.GetDB().WithContext(c.Request.Context()).Create(feedback).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedback)
}
