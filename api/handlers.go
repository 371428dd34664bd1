package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/algolite/algolite/internal/metrics"
	"github.com/algolite/algolite/model"
	"github.com/algolite/algolite/services"
)

const maxRequestBodySize = 10 << 20 // 10 MiB

// API holds dependencies for API handlers, primarily the index manager.
type API struct {
	engine services.IndexManager
	log    zerolog.Logger
}

// NewAPI creates a new API handler structure.
func NewAPI(engine services.IndexManager, logger zerolog.Logger) *API {
	return &API{engine: engine, log: logger}
}

// SetupRoutes defines the Algolia-shaped API routes.
func SetupRoutes(router *gin.Engine, engine services.IndexManager, logger zerolog.Logger) {
	apiHandler := NewAPI(engine, logger)

	router.Use(CORSMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(logger))
	router.Use(RequestSizeLimitMiddleware(maxRequestBodySize))

	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/1")
	{
		v1.GET("/indexes", apiHandler.ListIndexesHandler)
		v1.GET("/export/:indexName", apiHandler.ExportHandler)

		indexRoutes := v1.Group("/indexes/:indexName")
		{
			indexRoutes.POST("", apiHandler.AddRecordHandler)        // Add record with generated objectID
			indexRoutes.DELETE("", apiHandler.DeleteIndexHandler)    // Delete an index
			indexRoutes.POST("/query", apiHandler.QueryHandler)      // Search
			indexRoutes.POST("/batch", apiHandler.BatchHandler)      // Batched record operations
			indexRoutes.POST("/clear", apiHandler.ClearIndexHandler) // Delete all records
			indexRoutes.POST("/recommendations", apiHandler.RecommendationsHandler)

			indexRoutes.PUT("/:objectID", apiHandler.SaveRecordHandler)
			indexRoutes.GET("/:objectID", apiHandler.GetRecordHandler)
			indexRoutes.DELETE("/:objectID", apiHandler.DeleteRecordHandler)
		}
	}
}

// HealthCheckHandler reports service liveness.
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// newTaskID produces the task identifier echoed by write operations.
// Tasks complete synchronously here, so the id is purely informational.
func newTaskID() int64 {
	return time.Now().UnixMilli()
}

// SaveRecordHandler handles PUT /1/indexes/:indexName/:objectID.
// The index is created implicitly when it does not exist yet.
// The gin route tree cannot carry a static "settings" sibling next to the
// :objectID parameter, so the settings route is dispatched here.
func (api *API) SaveRecordHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	objectID := c.Param("objectID")
	if objectID == "settings" {
		api.SetSettingsHandler(c)
		return
	}

	var rec model.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	rec[model.ObjectIDField] = objectID

	indexAccessor, err := api.engine.GetOrCreateIndex(indexName)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if err := indexAccessor.SaveRecord(objectID, rec); err != nil {
		RespondWithError(c, err)
		return
	}
	metrics.RecordWritesTotal.WithLabelValues(indexName, "save").Inc()

	c.JSON(http.StatusOK, gin.H{
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
		"taskID":    newTaskID(),
		"objectID":  objectID,
	})
}

// AddRecordHandler handles POST /1/indexes/:indexName. A record without an
// objectID gets a generated one.
func (api *API) AddRecordHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	var rec model.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	objectID, ok := rec.ObjectID()
	if !ok {
		objectID = uuid.New().String()
		rec[model.ObjectIDField] = objectID
	}

	indexAccessor, err := api.engine.GetOrCreateIndex(indexName)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if err := indexAccessor.SaveRecord(objectID, rec); err != nil {
		RespondWithError(c, err)
		return
	}
	metrics.RecordWritesTotal.WithLabelValues(indexName, "add").Inc()

	c.JSON(http.StatusCreated, gin.H{
		"createdAt": time.Now().UTC().Format(time.RFC3339),
		"taskID":    newTaskID(),
		"objectID":  objectID,
	})
}

// GetRecordHandler handles GET /1/indexes/:indexName/:objectID, and
// GET .../settings through the same route parameter.
func (api *API) GetRecordHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	objectID := c.Param("objectID")
	if objectID == "settings" {
		api.GetSettingsHandler(c)
		return
	}

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	rec, ok := indexAccessor.GetRecord(objectID)
	if !ok {
		SendError(c, http.StatusNotFound, ErrorCodeRecordNotFound,
			fmt.Sprintf("ObjectID %s does not exist", objectID))
		return
	}

	hit := rec.Clone()
	hit[model.ObjectIDField] = objectID
	c.JSON(http.StatusOK, hit)
}

// DeleteRecordHandler handles DELETE /1/indexes/:indexName/:objectID.
// Deleting a missing record still succeeds, matching the upstream API.
func (api *API) DeleteRecordHandler(c *gin.Context) {
	indexName := c.Param("indexName")
	objectID := c.Param("objectID")

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if err := indexAccessor.DeleteRecord(objectID); err != nil {
		RespondWithError(c, err)
		return
	}
	metrics.RecordWritesTotal.WithLabelValues(indexName, "delete").Inc()

	c.JSON(http.StatusOK, gin.H{
		"deletedAt": time.Now().UTC().Format(time.RFC3339),
		"taskID":    newTaskID(),
	})
}

// batchRequest is one entry of a batch call.
type batchRequest struct {
	Action string       `json:"action"`
	Body   model.Record `json:"body"`
}

// batchRequestBody is the envelope of POST /1/indexes/:indexName/batch.
type batchRequestBody struct {
	Requests []batchRequest `json:"requests" binding:"required"`
}

// BatchHandler handles POST /1/indexes/:indexName/batch. Supported actions:
// addObject, updateObject, partialUpdateObject (treated as a full update) and
// deleteObject.
func (api *API) BatchHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	var body batchRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	indexAccessor, err := api.engine.GetOrCreateIndex(indexName)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	objectIDs := make([]string, 0, len(body.Requests))
	for i, req := range body.Requests {
		switch strings.TrimSpace(req.Action) {
		case "addObject":
			objectID, ok := req.Body.ObjectID()
			if !ok {
				objectID = uuid.New().String()
				req.Body[model.ObjectIDField] = objectID
			}
			if err := indexAccessor.SaveRecord(objectID, req.Body); err != nil {
				RespondWithError(c, err)
				return
			}
			metrics.RecordWritesTotal.WithLabelValues(indexName, "add").Inc()
			objectIDs = append(objectIDs, objectID)

		case "updateObject", "partialUpdateObject":
			objectID, ok := req.Body.ObjectID()
			if !ok {
				SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest,
					fmt.Sprintf("Batch request at index %d requires an objectID", i))
				return
			}
			if err := indexAccessor.SaveRecord(objectID, req.Body); err != nil {
				RespondWithError(c, err)
				return
			}
			metrics.RecordWritesTotal.WithLabelValues(indexName, "save").Inc()
			objectIDs = append(objectIDs, objectID)

		case "deleteObject":
			objectID, ok := req.Body.ObjectID()
			if !ok {
				SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest,
					fmt.Sprintf("Batch request at index %d requires an objectID", i))
				return
			}
			if err := indexAccessor.DeleteRecord(objectID); err != nil {
				RespondWithError(c, err)
				return
			}
			metrics.RecordWritesTotal.WithLabelValues(indexName, "delete").Inc()
			objectIDs = append(objectIDs, objectID)

		default:
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest,
				fmt.Sprintf("Batch request at index %d has unsupported action '%s'", i, req.Action))
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"taskID":    newTaskID(),
		"objectIDs": objectIDs,
	})
}

// ClearIndexHandler handles POST /1/indexes/:indexName/clear.
func (api *API) ClearIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if err := indexAccessor.ClearRecords(); err != nil {
		RespondWithError(c, err)
		return
	}
	metrics.RecordWritesTotal.WithLabelValues(indexName, "clear").Inc()

	c.JSON(http.StatusOK, gin.H{
		"taskID":    newTaskID(),
		"updatedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// DeleteIndexHandler handles DELETE /1/indexes/:indexName.
func (api *API) DeleteIndexHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	if err := api.engine.DeleteIndex(indexName); err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taskID":    newTaskID(),
		"deletedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// ListIndexesHandler handles GET /1/indexes.
func (api *API) ListIndexesHandler(c *gin.Context) {
	names := api.engine.ListIndexes()

	items := make([]gin.H, 0, len(names))
	for _, name := range names {
		entries := 0
		if indexAccessor, err := api.engine.GetIndex(name); err == nil {
			entries = indexAccessor.RecordCount()
		}
		items = append(items, gin.H{"name": name, "entries": entries})
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "nbPages": 1})
}

// ExportHandler handles GET /1/export/:indexName: a gzip NDJSON dump of all
// records in the index.
func (api *API) ExportHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	indexAccessor, err := api.engine.GetIndex(indexName)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Content-Encoding", "gzip")
	c.Status(http.StatusOK)

	gz := gzip.NewWriter(c.Writer)
	enc := json.NewEncoder(gz)
	for _, raw := range indexAccessor.AllRecords() {
		hit := raw.Record.Clone()
		hit[model.ObjectIDField] = raw.ID
		if err := enc.Encode(hit); err != nil {
			api.log.Error().Err(err).Str("index", indexName).Msg("export aborted")
			break
		}
	}
	if err := gz.Close(); err != nil {
		api.log.Error().Err(err).Str("index", indexName).Msg("failed to flush export stream")
	}
}
