package coachsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"coach_marketplace_backend/internal/coachprofile"
	platformes "coach_marketplace_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// PublishedSource pages through published profiles by ascending id.
type PublishedSource interface {
	ListPublished(ctx context.Context, afterID uint, limit int) ([]coachprofile.CoachProfile, error)
}

// Indexer writes published profiles to the coaches index. A nil client turns every
// operation into a no-op so the service runs without a search cluster.
type Indexer struct {
	client *platformes.ESClientWrapper
	logger *zap.Logger
}

var _ coachprofile.SearchIndexer = (*Indexer)(nil)

// NewIndexer creates a new Indexer.
func NewIndexer(client *platformes.ESClientWrapper, logger *zap.Logger) *Indexer {
	return &Indexer{client: client, logger: logger.Named("CoachSearchIndexer")}
}

// Enabled reports whether a search cluster is configured.
func (i *Indexer) Enabled() bool {
	return i != nil && i.client != nil
}

// EnsureIndex creates the coaches index when it is missing.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	if !i.Enabled() {
		return nil
	}
	return platformes.CreateIndexIfNotExists(ctx, i.client, IndexName, Mapping(), i.logger)
}

// IndexProfile upserts the document of one published profile.
func (i *Indexer) IndexProfile(ctx context.Context, profile *coachprofile.CoachProfile) error {
	if !i.Enabled() {
		return nil
	}
	doc := NewDocument(profile)
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshalling coach document: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      IndexName,
		DocumentID: doc.DocumentID(),
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("error indexing coach %d: %w", doc.UserID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		i.logger.Error("Elasticsearch rejected coach document", zap.Uint("userID", doc.UserID), zap.String("status", res.Status()))
		return fmt.Errorf("error indexing coach %d: status %s", doc.UserID, res.Status())
	}
	i.logger.Debug("Coach document indexed", zap.Uint("userID", doc.UserID))
	return nil
}

// SyncResult summarises a full reindex.
type SyncResult struct {
	Synced  int
	Failed  int
	Batches int
}

// SyncAll pushes every published profile through the bulk API. refresh is passed to
// Elasticsearch as-is ("true", "false" or "wait_for").
func (i *Indexer) SyncAll(ctx context.Context, source PublishedSource, batchSize int, refresh string) (SyncResult, error) {
	var result SyncResult
	if !i.Enabled() {
		i.logger.Info("Search is disabled, skipping coach sync.")
		return result, nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	var afterID uint
	for {
		profiles, err := source.ListPublished(ctx, afterID, batchSize)
		if err != nil {
			return result, fmt.Errorf("failed to fetch batch %d: %w", result.Batches+1, err)
		}
		if len(profiles) == 0 {
			break
		}
		result.Batches++
		afterID = profiles[len(profiles)-1].ID

		synced, failed, err := i.bulk(ctx, profiles, refresh)
		if err != nil {
			i.logger.Error("Bulk request failed", zap.Int("batch", result.Batches), zap.Error(err))
			result.Failed += len(profiles)
			continue
		}
		result.Synced += synced
		result.Failed += failed
		i.logger.Info("Batch processed",
			zap.Int("batch", result.Batches),
			zap.Int("synced", synced),
			zap.Int("failed", failed),
		)
	}

	i.logger.Info("Coach synchronization finished", zap.Int("synced", result.Synced), zap.Int("failed", result.Failed))
	if result.Failed > 0 {
		return result, fmt.Errorf("%d coach profiles failed to sync", result.Failed)
	}
	return result, nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []struct {
		Index struct {
			ID     string                 `json:"_id"`
			Status int                    `json:"status"`
			Error  map[string]interface{} `json:"error,omitempty"`
		} `json:"index"`
	} `json:"items"`
}

func (i *Indexer) bulk(ctx context.Context, profiles []coachprofile.CoachProfile, refresh string) (synced, failed int, err error) {
	body, err := bulkBody(profiles)
	if err != nil {
		return 0, 0, err
	}

	res, err := esapi.BulkRequest{
		Body:    strings.NewReader(body),
		Refresh: refresh,
	}.Do(ctx, i.client.Client)
	if err != nil {
		return 0, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, 0, fmt.Errorf("bulk request returned %s", res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, 0, fmt.Errorf("failed to parse bulk response: %w", err)
	}
	for _, item := range parsed.Items {
		if item.Index.Error != nil {
			i.logger.Error("Failed to index coach document",
				zap.String("documentID", item.Index.ID),
				zap.Int("status", item.Index.Status),
				zap.Any("error", item.Index.Error),
			)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

// bulkBody renders the NDJSON payload of a bulk index request.
func bulkBody(profiles []coachprofile.CoachProfile) (string, error) {
	var b strings.Builder
	for idx := range profiles {
		doc := NewDocument(&profiles[idx])
		line, err := json.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("error marshalling coach %d: %w", doc.UserID, err)
		}
		fmt.Fprintf(&b, `{"index":{"_index":%q,"_id":%q}}`+"\n", IndexName, doc.DocumentID())
		b.Write(line)
		b.WriteString("\n")
	}
	return b.String(), nil
}
