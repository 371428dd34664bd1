package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/algolite/algolite/config"
	"github.com/algolite/algolite/internal/metrics"
	"github.com/algolite/algolite/internal/query"
	"github.com/algolite/algolite/services"
)

// queryRequestBody is the request body of POST /1/indexes/:indexName/query.
// Algolia clients send either a url-encoded "params" string or plain JSON
// fields; both forms are accepted, with plain fields taking precedence.
type queryRequestBody struct {
	Params       string          `json:"params"`
	Query        *string         `json:"query"`
	Filters      string          `json:"filters"`
	FacetFilters json.RawMessage `json:"facetFilters"`
	Page         *int            `json:"page"`
	HitsPerPage  *int            `json:"hitsPerPage"`
}

// QueryHandler handles POST /1/indexes/:indexName/query.
func (api *API) QueryHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	var body queryRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	req, err := buildQueryRequest(body)
	if err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, err.Error())
		return
	}

	indexAccessor, sortHint, err := api.engine.ResolveIndex(indexName)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(indexName, "error").Inc()
		RespondWithError(c, err)
		return
	}
	req.Sort = sortHint
	api.applySettings(indexAccessor.Name(), &req)

	service, err := query.NewService(indexAccessor)
	if err != nil {
		SendInternalError(c, "initialize query service", err)
		return
	}

	start := time.Now()
	result, err := service.Execute(req)
	metrics.SearchDuration.WithLabelValues(indexAccessor.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(indexAccessor.Name(), "error").Inc()
		RespondWithError(c, err)
		return
	}
	metrics.SearchesTotal.WithLabelValues(indexAccessor.Name(), "success").Inc()

	c.JSON(http.StatusOK, result)
}

// applySettings fills in request defaults from the index settings: the page
// size when the client sent none, and the leading customRanking entry when no
// replica-style sort applies.
func (api *API) applySettings(indexName string, req *services.QueryRequest) {
	settings, err := api.engine.GetSettings(indexName)
	if err != nil {
		return
	}
	if req.HitsPerPage <= 0 && settings.HitsPerPage > 0 {
		req.HitsPerPage = settings.HitsPerPage
	}
	if req.Sort.Attribute == "" && len(settings.CustomRanking) > 0 {
		if attr, desc, err := config.ParseRankingEntry(settings.CustomRanking[0]); err == nil {
			req.Sort = services.SortHint{Attribute: attr, Desc: desc}
		}
	}
}

// buildQueryRequest merges the params string and the plain JSON fields into
// one query request. Plain fields win over the params string.
func buildQueryRequest(body queryRequestBody) (services.QueryRequest, error) {
	var req services.QueryRequest

	if body.Params != "" {
		values, err := url.ParseQuery(body.Params)
		if err != nil {
			return req, fmt.Errorf("malformed params string: %w", err)
		}
		if values.Has("query") {
			q := values.Get("query")
			req.Query = &q
		}
		req.Filters = values.Get("filters")
		if raw := values.Get("facetFilters"); raw != "" {
			groups, err := parseFacetFilters([]byte(raw))
			if err != nil {
				return req, err
			}
			req.FacetFilters = groups
		}
		if values.Has("page") {
			page, err := strconv.Atoi(values.Get("page"))
			if err != nil {
				return req, fmt.Errorf("page must be an integer: %w", err)
			}
			req.Page = page
		}
		if values.Has("hitsPerPage") {
			hpp, err := strconv.Atoi(values.Get("hitsPerPage"))
			if err != nil {
				return req, fmt.Errorf("hitsPerPage must be an integer: %w", err)
			}
			req.HitsPerPage = hpp
		}
	}

	if body.Query != nil {
		req.Query = body.Query
	}
	if body.Filters != "" {
		req.Filters = body.Filters
	}
	if len(body.FacetFilters) > 0 {
		groups, err := parseFacetFilters(body.FacetFilters)
		if err != nil {
			return req, err
		}
		req.FacetFilters = groups
	}
	if body.Page != nil {
		req.Page = *body.Page
	}
	if body.HitsPerPage != nil {
		req.HitsPerPage = *body.HitsPerPage
	}

	return req, nil
}

// parseFacetFilters decodes the facetFilters payload, which Algolia clients
// send either as an array of groups or as a single bare term.
func parseFacetFilters(raw []byte) ([]interface{}, error) {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("malformed facetFilters: %w", err)
	}
	switch v := decoded.(type) {
	case []interface{}:
		return v, nil
	case string:
		return []interface{}{v}, nil
	default:
		return nil, fmt.Errorf("facetFilters must be a string or an array, got %T", decoded)
	}
}

// recommendationsRequestBody is the request body of
// POST /1/indexes/:indexName/recommendations.
type recommendationsRequestBody struct {
	Filters            string `json:"filters"`
	ScoreAttribute     string `json:"scoreAttribute"`
	MaxRecommendations int    `json:"maxRecommendations"`
}

// RecommendationsHandler handles POST /1/indexes/:indexName/recommendations:
// filtered records ranked by a numeric score attribute, highest first.
func (api *API) RecommendationsHandler(c *gin.Context) {
	indexName := c.Param("indexName")

	var body recommendationsRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if body.ScoreAttribute == "" {
		body.ScoreAttribute = "score"
	}
	if body.MaxRecommendations <= 0 {
		body.MaxRecommendations = 10
	}

	indexAccessor, _, err := api.engine.ResolveIndex(indexName)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	service, err := query.NewService(indexAccessor)
	if err != nil {
		SendInternalError(c, "initialize query service", err)
		return
	}

	result, err := service.Execute(services.QueryRequest{
		Filters:     body.Filters,
		HitsPerPage: body.MaxRecommendations,
		Sort:        services.SortHint{Attribute: body.ScoreAttribute, Desc: true},
	})
	if err != nil {
		RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": result.Hits,
		"nbHits":          len(result.Hits),
	})
}
