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

type publicationResponse struct {
	*models.Publication
	Moderation map[string]*models.FieldView `json:"moderation"`
}

func hydratePublication(c *gin.Context, publication *models.Publication) (*publicationResponse, error) {
	resp := &publicationResponse{Publication: publication}
	if !canViewModeration(c, publication.AuthorId) {
		return resp, nil
	}
	record, err := models.LoadModerationRecord(config.GetDB().WithContext(c.Request.Context()), models.ModeratedEntityPublication, publication.ID)
	if err != nil {
		return nil, err
	}
	view, err := models.BuildModerationView(models.RegistryFor(models.ModeratedEntityPublication), record, requestLocale(c))
	if err != nil {
		return nil, err
	}
	resp.Moderation = view
	return resp, nil
}

func listPublicationsHandler(c *gin.Context) {
	page, limit := pageParams(c)
	activeOnly := !utils.CanModerate(c.Request.Context())
	rows, total, err := models.ListPublications(c.Request.Context(), activeOnly, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"publications": rows, "page_info": models.NewPageInfo(page, limit, total)})
}

func getPublicationHandler(c *gin.Context) {
	publication, err := models.GetPublicationBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := hydratePublication(c, publication)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func createPublicationHandler(c *gin.Context) {
	userId, ok := utils.GetUserIdFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var input models.NewPublication
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	publication := input.ToPublication(userId)
	if err := config.GetDB().WithContext(c.Request.Context()).Create(publication).Error; err != nil {
		if models.IsDuplicateKeyErr(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
			return
		}
		config.LogError(config.GetLogger(), "publications", "createPublicationHandler", "create", input, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, publication)
}

func updatePublicationHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	publication, err := models.GetPublicationById(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canEditEntity(c, publication.AuthorId) {
		c.JSON(http.StatusForbidden, gin.H{"error": utils.ErrorForbidden.Error()})
		return
	}
	var changes map[string]json.RawMessage
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	direct, moderated := splitChanges(models.RegistryFor(models.ModeratedEntityPublication), changes)

	ctx, span := tracer.Start(c.Request.Context(), "publications.update")
	defer span.End()
	if len(direct) > 0 {
		if err := publication.ApplyDirect(ctx, direct); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		if err := config.GetDB().WithContext(ctx).Save(publication).Error; err != nil {
			respondError(c, err)
			return
		}
	}
	if len(moderated) > 0 {
		if _, err := workflow.SubmitModeratedFields(ctx, publication, moderated); err != nil {
			respondError(c, err)
			return
		}
	}

	_ = models.InvalidateResource[models.Publication](id)

	publication, err = models.GetPublicationById(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := hydratePublication(c, publication)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func deletePublicationHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	publication, err := models.GetPublicationById(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canEditEntity(c, publication.AuthorId) {
		c.JSON(http.StatusForbidden, gin.H{"error": utils.ErrorForbidden.Error()})
		return
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Delete(publication).Error; err != nil {
		respondError(c, err)
		return
	}
	_ = models.InvalidateResource[models.Publication](id)
	for _, key := range publication.Cover {
		if derr := utils.DeleteStoredObject(c.Request.Context(), key); derr != nil {
			config.LogError(config.GetLogger(), "publications", "deletePublicationHandler", "delete stored object", key, derr)
		}
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
