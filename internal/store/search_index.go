// internal/store/search_index.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"venture-risk-workers/internal/models"
)

const (
	DefaultAssessmentIndex = "assessments"
	industryScanSize       = 10000
)

// SearchIndex mirrors assessment records into Elasticsearch so analytics and
// industry benchmarks can be read without touching the primary store.
type SearchIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewSearchIndex(client *elasticsearch.Client, index string) *SearchIndex {
	if index == "" {
		index = DefaultAssessmentIndex
	}
	return &SearchIndex{client: client, index: index}
}

func (s *SearchIndex) IndexRecord(ctx context.Context, rec *models.AssessmentRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: rec.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index record %s: %w", rec.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index record %s: %s", rec.ID, res.String())
	}
	return nil
}

func industryFilter(industry string) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"filter": []interface{}{
				map[string]interface{}{
					"term": map[string]interface{}{"answers.industry.keyword": industry},
				},
			},
		},
	}
}

func (s *SearchIndex) search(ctx context.Context, query map[string]interface{}, size int, out interface{}) (bool, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return false, fmt.Errorf("%w: encode query: %v", ErrQueryFailed, err)
	}
	req := esapi.SearchRequest{
		Index:          []string{s.index},
		Body:           bytes.NewReader(body),
		Size:           &size,
		TrackTotalHits: true,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return false, fmt.Errorf("%w: search by industry: %v", ErrQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == 404 {
			return false, nil
		}
		return false, fmt.Errorf("%w: search by industry: %s", ErrQueryFailed, res.String())
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%w: decode search response: %v", ErrQueryFailed, err)
	}
	return true, nil
}

// ByIndustry returns mirrored records tagged with the industry. It fails
// rather than return a partial set when the industry holds more records than
// one search window.
func (s *SearchIndex) ByIndustry(ctx context.Context, industry string) ([]models.AssessmentRecord, error) {
	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.AssessmentRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	found, err := s.search(ctx, map[string]interface{}{"query": industryFilter(industry)}, industryScanSize, &parsed)
	if err != nil || !found {
		return nil, err
	}
	if parsed.Hits.Total.Value > len(parsed.Hits.Hits) {
		return nil, fmt.Errorf("%w: industry %q has %d records, search returned %d",
			ErrQueryFailed, industry, parsed.Hits.Total.Value, len(parsed.Hits.Hits))
	}

	out := make([]models.AssessmentRecord, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// summaryFields maps summary averages onto indexed profile fields.
var summaryFields = map[string]string{
	"avgOverall":   "riskProfile.overallScore",
	"avgMarket":    "riskProfile.riskBreakdown.marketRisk",
	"avgFinancial": "riskProfile.riskBreakdown.financialRisk",
	"avgProduct":   "riskProfile.riskBreakdown.productRisk",
	"avgTeam":      "riskProfile.riskBreakdown.teamRisk",
}

// SummarizeIndustry computes the industry summary inside Elasticsearch, so
// every mirrored record counts regardless of industry size. It returns nil
// when no record matches.
func (s *SearchIndex) SummarizeIndustry(ctx context.Context, industry string) (*models.BenchmarkSummary, error) {
	aggs := map[string]interface{}{
		"count": map[string]interface{}{
			"value_count": map[string]interface{}{"field": summaryFields["avgOverall"]},
		},
	}
	for name, field := range summaryFields {
		aggs[name] = map[string]interface{}{
			"avg": map[string]interface{}{"field": field},
		}
	}

	var parsed struct {
		Aggregations map[string]struct {
			Value *float64 `json:"value"`
		} `json:"aggregations"`
	}
	found, err := s.search(ctx, map[string]interface{}{
		"query": industryFilter(industry),
		"aggs":  aggs,
	}, 0, &parsed)
	if err != nil || !found {
		return nil, err
	}

	value := func(name string) float64 {
		if v := parsed.Aggregations[name].Value; v != nil {
			return *v
		}
		return 0
	}
	count := int(value("count"))
	if count == 0 {
		return nil, nil
	}
	return &models.BenchmarkSummary{
		Industry:     industry,
		Count:        count,
		AvgOverall:   value("avgOverall"),
		AvgMarket:    value("avgMarket"),
		AvgFinancial: value("avgFinancial"),
		AvgProduct:   value("avgProduct"),
		AvgTeam:      value("avgTeam"),
	}, nil
}
