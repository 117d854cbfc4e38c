package search

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yugaldekate/pingpanda/config"
	"github.com/yugaldekate/pingpanda/internal/models"
)

// ElasticClient provides integration with Elasticsearch
type ElasticClient struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticClient creates a new Elasticsearch client
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	if !cfg.Enabled {
		return &ElasticClient{}, nil
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{
		client: client,
		index:  cfg.Index,
	}, nil
}

// Enabled reports whether the search backend is usable
func (c *ElasticClient) Enabled() bool {
	return c != nil && c.client != nil
}

// IndexEvent indexes a delivered event so the dashboard can search it.
// Indexing is best-effort and must never affect pipeline outcome.
func (c *ElasticClient) IndexEvent(ctx context.Context, event *models.Event) error {
	if !c.Enabled() {
		return nil
	}

	doc := map[string]interface{}{
		"id":                event.ID.String(),
		"name":              event.Name,
		"formatted_message": event.FormattedMessage,
		"delivery_status":   event.DeliveryStatus,
		"user_id":           event.UserID.String(),
		"category_id":       event.EventCategoryID.String(),
		"created_at":        event.CreatedAt,
	}
	if len(event.Fields) > 0 {
		doc["fields"] = json.RawMessage(event.Fields)
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event document")
	}

	req := esapi.IndexRequest{
		Index:      c.index,
		DocumentID: event.ID.String(),
		Body:       bytes.NewReader(docJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch index request")
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
			return errors.Wrap(err, "failed to parse Elasticsearch error response")
		}
		return errors.Errorf("Elasticsearch index error: %v", e)
	}

	log.Debug().Str("event_id", event.ID.String()).Msg("event indexed")
	return nil
}

// SearchEvents runs a free-text search over one user's events
func (c *ElasticClient) SearchEvents(ctx context.Context, userID uuid.UUID, query string, limit int) ([]map[string]interface{}, error) {
	if !c.Enabled() {
		return nil, errors.New("search is not configured")
	}

	body := map[string]interface{}{
		"size": limit,
		"sort": []map[string]interface{}{
			{"created_at": map[string]string{"order": "desc"}},
		},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []map[string]interface{}{
					{"term": map[string]string{"user_id": userID.String()}},
				},
				"must": []map[string]interface{}{
					{"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"name", "formatted_message"},
					}},
				},
			},
		},
	}

	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal search query")
	}

	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(c.index),
		c.client.Search.WithBody(bytes.NewReader(bodyJSON)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute search request")
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.Errorf("Elasticsearch search error: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "failed to decode search response")
	}

	results := make([]map[string]interface{}, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		results = append(results, hit.Source)
	}
	return results, nil
}
