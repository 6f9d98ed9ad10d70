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

type partnerResponse struct {
	*models.Partner
	ModerationPartner map[string]*models.FieldView `json:"moderation_partner"`
}

func hydratePartner(c *gin.Context, partner *models.Partner) (*partnerResponse, error) {
	resp := &partnerResponse{Partner: partner}
	if !canViewModeration(c, partner.OwnerId) {
		return resp, nil
	}
	record, err := models.LoadModerationRecord(config.GetDB().WithContext(c.Request.Context()), models.ModeratedEntityPartner, partner.ID)
	if err != nil {
		return nil, err
	}
	view, err := models.BuildModerationView(models.RegistryFor(models.ModeratedEntityPartner), record, requestLocale(c))
	if err != nil {
		return nil, err
	}
	resp.ModerationPartner = view
	return resp, nil
}

func listPartnersHandler(c *gin.Context) {
	page, limit := pageParams(c)
	activeOnly := !utils.CanModerate(c.Request.Context())
	rows, total, err := models.ListPartners(c.Request.Context(), activeOnly, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"partners": rows, "page_info": models.NewPageInfo(page, limit, total)})
}

func getPartnerHandler(c *gin.Context) {
	partner, err := models.GetPartnerBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := hydratePartner(c, partner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func createPartnerHandler(c *gin.Context) {
	userId, ok := utils.GetUserIdFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var input models.NewPartner
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	partner, err := input.ToPartner(userId)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(partner).Error; err != nil {
		if models.IsDuplicateKeyErr(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
			return
		}
		config.LogError(config.GetLogger(), "partners", "createPartnerHandler", "create", input, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, partner)
}

func updatePartnerHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	partner, err := models.GetPartnerById(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canEditEntity(c, partner.OwnerId) {
		c.JSON(http.StatusForbidden, gin.H{"error": utils.ErrorForbidden.Error()})
		return
	}
	var changes map[string]json.RawMessage
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	direct, moderated := splitChanges(models.RegistryFor(models.ModeratedEntityPartner), changes)

	ctx, span := tracer.Start(c.Request.Context(), "partners.update")
	defer span.End()
	if len(direct) > 0 {
		if err := partner.ApplyDirect(ctx, direct); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		if err := config.GetDB().WithContext(ctx).Save(partner).Error; err != nil {
			respondError(c, err)
			return
		}
	}
	if len(moderated) > 0 {
		if _, err := workflow.SubmitModeratedFields(ctx, partner, moderated); err != nil {
			respondError(c, err)
			return
		}
	}

	_ = models.InvalidateResource[models.Partner](id)

	partner, err = models.GetPartnerById(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := hydratePartner(c, partner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func deletePartnerHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	partner, err := models.GetPartnerById(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canEditEntity(c, partner.OwnerId) {
		c.JSON(http.StatusForbidden, gin.H{"error": utils.ErrorForbidden.Error()})
		return
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Delete(partner).Error; err != nil {
		respondError(c, err)
		return
	}
	_ = models.InvalidateResource[models.Partner](id)
	for _, key := range partner.Logo {
		if derr := utils.DeleteStoredObject(c.Request.Context(), key); derr != nil {
			config.LogError(config.GetLogger(), "partners", "deletePartnerHandler", "delete stored object", key, derr)
		}
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
