package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medvisor/sanatoria_backend/config"
	"github.com/medvisor/sanatoria_backend/models"
	"github.com/medvisor/sanatoria_backend/searchsync"
)

var searchIndex searchsync.Index

// searchHandler queries the locale-suffixed index for one entity type.
func searchHandler(c *gin.Context) {
	if searchIndex == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search index not ready"})
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	entityType, err := models.ParseModeratedEntityType(c.DefaultQuery("entity_type", string(models.ModeratedEntityObject)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	indexName := models.SearchDocument{
		EntityType: string(entityType),
		Locale:     string(requestLocale(c)),
	}.IndexName()

	limit := intQuery(c, "limit")
	if limit <= 0 {
		limit = config.SearchLimit
	}
	docs, err := searchIndex.Search(c.Request.Context(), indexName, query, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": docs})
}
