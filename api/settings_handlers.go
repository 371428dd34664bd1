package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/algolite/algolite/config"
)

// GetSettingsHandler handles GET /1/indexes/:indexName/settings.
func (api *API) GetSettingsHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	settings, err := api.engine.GetSettings(indexName)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SetSettingsHandler handles PUT /1/indexes/:indexName/settings. A missing
// index is created, so settings can be applied before the first record.
func (api *API) SetSettingsHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	var settings config.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	if err := api.engine.SetSettings(indexName, settings); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taskID":    newTaskID(),
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	})
}
