package main

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medvisor/sanatoria_backend/utils"
)

const signedURLLifetime = 15 * time.Minute

type signUploadInput struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Purpose     string `json:"purpose"`
}

// signUploadHandler hands out a short-lived signed PUT URL. The object key is
// server-generated so clients cannot overwrite each other's files.
func signUploadHandler(c *gin.Context) {
	var input signUploadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	purpose := input.Purpose
	if purpose == "" {
		purpose = "documents"
	}
	ext := path.Ext(input.FileName)
	objectKey := purpose + "/" + uuid.NewString() + strings.ToLower(ext)

	signed, err := utils.SignUpload(c.Request.Context(), objectKey, input.ContentType, signedURLLifetime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, signed)
}

// signAccessHandler resolves a stored object key into a temporary GET URL.
func signAccessHandler(c *gin.Context) {
	objectKey := strings.TrimPrefix(c.Param("objectKey"), "/")
	if objectKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "object key is required"})
		return
	}
	url, err := utils.SignAccess(c.Request.Context(), objectKey, signedURLLifetime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "object_key": objectKey})
}
