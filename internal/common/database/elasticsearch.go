// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"venture-risk-workers/internal/common/config"
)

// assessmentMapping keeps answer values as keywords so industry term
// filters match exactly. Scores are pinned to double: a first document
// scoring exactly 0 would otherwise be mapped as long.
const assessmentMapping = `{
  "mappings": {
    "dynamic_templates": [
      {"answers": {"path_match": "answers.*", "mapping": {"type": "text", "fields": {"keyword": {"type": "keyword"}}}}}
    ],
    "properties": {
      "id":         {"type": "keyword"},
      "userId":     {"type": "keyword"},
      "createdAt":  {"type": "date"},
      "riskProfile": {
        "properties": {
          "overallScore": {"type": "double"},
          "riskLevel":    {"type": "keyword"},
          "riskBreakdown": {
            "properties": {
              "marketRisk":    {"type": "double"},
              "financialRisk": {"type": "double"},
              "productRisk":   {"type": "double"},
              "teamRisk":      {"type": "double"}
            }
          }
        }
      }
    }
  }
}`

// ElasticsearchClient wraps the Elasticsearch client
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 && cfg.URL != "" {
		addresses = []string{cfg.URL}
	}
	esCfg := elasticsearch.Config{Addresses: addresses}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the assessment index when it does not exist yet.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, index string) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{index}}.Do(ctx, c.Client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{
		Index: index,
		Body:  strings.NewReader(assessmentMapping),
	}.Do(ctx, c.Client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()

	// 400 resource_already_exists when another worker won the race
	if res.IsError() && res.StatusCode != 400 {
		return fmt.Errorf("create index %s: %s", index, res.Status())
	}
	return nil
}
