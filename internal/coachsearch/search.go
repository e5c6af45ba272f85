package coachsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"coach_marketplace_backend/internal/common"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// SearchQuery holds the public search filters.
type SearchQuery struct {
	Query           string `form:"q"`
	City            string `form:"city"`
	Specialization  string `form:"specialization"`
	AppointmentType string `form:"appointment_type" binding:"omitempty,oneof=ONLINE IN_PERSON PHONE"`
	Page            int    `form:"-"`
	PageSize        int    `form:"-"`
}

// buildSearchBody renders the bool query for q. Free text goes to a multi_match over
// names, bio and specializations; everything else is an exact filter.
func buildSearchBody(q SearchQuery) map[string]interface{} {
	var must []interface{}
	var filter []interface{}

	if text := strings.TrimSpace(q.Query); text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     text,
				"fields":    []string{"full_name^3", "company_name^2", "specialization_names^2", "bio", "certificate_names"},
				"fuzziness": "AUTO",
			},
		})
	}
	if city := strings.TrimSpace(q.City); city != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"city": city}})
	}
	if slug := strings.TrimSpace(q.Specialization); slug != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"specialization_slugs": slug}})
	}
	if q.AppointmentType != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"appointment_types": q.AppointmentType}})
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	} else {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	body := map[string]interface{}{
		"query":            map[string]interface{}{"bool": boolQuery},
		"from":             common.Offset(q.Page, q.PageSize),
		"size":             q.PageSize,
		"track_total_hits": true,
	}
	if len(must) == 0 {
		body["sort"] = []interface{}{map[string]interface{}{"published_at": map[string]interface{}{"order": "desc"}}}
	}
	return body
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source Document `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs q against the coaches index.
func (i *Indexer) Search(ctx context.Context, q SearchQuery) ([]Document, *common.Pagination, error) {
	if !i.Enabled() {
		return nil, nil, common.ErrServiceUnavailable.WithDetails("Coach search is not configured.")
	}

	payload, err := json.Marshal(buildSearchBody(q))
	if err != nil {
		return nil, nil, fmt.Errorf("error marshalling search body: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{IndexName},
		Body:  bytes.NewReader(payload),
	}.Do(ctx, i.client.Client)
	if err != nil {
		i.logger.Error("Coach search request failed", zap.Error(err))
		return nil, nil, common.ErrServiceUnavailable.WithDetails("Coach search is temporarily unavailable.")
	}
	defer res.Body.Close()

	if res.IsError() {
		i.logger.Error("Coach search returned an error", zap.String("status", res.Status()))
		return nil, nil, common.ErrServiceUnavailable.WithDetails("Coach search is temporarily unavailable.")
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	docs := make([]Document, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, common.NewPagination(parsed.Hits.Total.Value, q.Page, q.PageSize), nil
}
