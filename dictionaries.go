package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medvisor/sanatoria_backend/models"
)

func listCountriesHandler(c *gin.Context) {
	rows, err := models.ListCountries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"countries": rows})
}

func listRegionsHandler(c *gin.Context) {
	rows, err := models.ListRegions(c.Request.Context(), intQuery(c, "country_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": rows})
}

func listCitiesHandler(c *gin.Context) {
	rows, err := models.ListCities(c.Request.Context(), intQuery(c, "region_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": rows})
}

func listMedicalProfilesHandler(c *gin.Context) {
	rows, err := models.ListMedicalProfiles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"medical_profiles": rows})
}

func listDiseasesHandler(c *gin.Context) {
	rows, err := models.ListDiseases(c.Request.Context(), intQuery(c, "medical_profile_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diseases": rows})
}

func listTherapiesHandler(c *gin.Context) {
	rows, err := models.ListTherapies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"therapies": rows})
}

func listServicesHandler(c *gin.Context) {
	rows, err := models.ListServices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": rows})
}
