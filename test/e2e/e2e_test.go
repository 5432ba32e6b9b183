// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venture-risk-workers/internal/assessment"
	"venture-risk-workers/internal/common/camunda"
	"venture-risk-workers/internal/common/config"
	"venture-risk-workers/internal/common/database"
	"venture-risk-workers/internal/common/logger"
	"venture-risk-workers/internal/common/observability"
	"venture-risk-workers/internal/models"
	"venture-risk-workers/internal/scoring"
	"venture-risk-workers/internal/store"
	sa "venture-risk-workers/internal/workers/assessment/submit-assessment"
)

const processID = "venture-risk-submit-e2e"

// Single service task process driving the submit-assessment worker.
const submitProcess = `<?xml version="1.0" encoding="UTF-8"?>
<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL"
                  xmlns:zeebe="http://camunda.org/schema/zeebe/1.0"
                  id="venture-risk-e2e" targetNamespace="http://bpmn.io/schema/bpmn">
  <bpmn:process id="` + processID + `" isExecutable="true">
    <bpmn:startEvent id="start"><bpmn:outgoing>toSubmit</bpmn:outgoing></bpmn:startEvent>
    <bpmn:sequenceFlow id="toSubmit" sourceRef="start" targetRef="submit" />
    <bpmn:serviceTask id="submit" name="Submit assessment">
      <bpmn:extensionElements><zeebe:taskDefinition type="` + sa.TaskType + `" retries="1" /></bpmn:extensionElements>
      <bpmn:incoming>toSubmit</bpmn:incoming>
      <bpmn:outgoing>toEnd</bpmn:outgoing>
    </bpmn:serviceTask>
    <bpmn:sequenceFlow id="toEnd" sourceRef="submit" targetRef="end" />
    <bpmn:endEvent id="end"><bpmn:incoming>toEnd</bpmn:incoming></bpmn:endEvent>
  </bpmn:process>
</bpmn:definitions>`

type env struct {
	cfg     *config.Config
	log     logger.Logger
	pg      *database.PostgresClient
	redis   *database.RedisClient
	service *assessment.Service
}

func TestMain(m *testing.M) {
	if os.Getenv("E2E") != "1" {
		fmt.Println("skipping e2e tests: set E2E=1 with Zeebe, PostgreSQL and Redis running")
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	cfg, err := config.Load()
	require.NoError(t, err)
	log := logger.NewTestLogger(t)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "❌ PostgreSQL ping failed")
	t.Cleanup(func() { pg.Close() })

	records := store.NewAssessmentStore(pg.DB)
	require.NoError(t, records.EnsureSchema(ctx))

	rdb := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, rdb.Ping(ctx), "❌ Redis ping failed")
	t.Cleanup(func() { rdb.Close() })

	service := assessment.NewService(
		scoring.NewEngineWithScorer(scoring.NewRuleScorer(scoring.DefaultRuleTables()), cfg.Suggestions.ResourceKeys),
		records, records,
		assessment.Options{
			MinDisclosureCount: cfg.Benchmark.MinDisclosureCount,
			Cache:              store.NewBenchmarkCache(rdb.Client, time.Minute),
		},
		log,
	)
	return &env{cfg: cfg, log: log, pg: pg, redis: rdb, service: service}
}

func answers(industry, funding, competition, team, product string) models.QuestionnaireAnswers {
	return models.QuestionnaireAnswers{
		"industry":     industry,
		"fundingStage": funding,
		"competition":  competition,
		"teamSize":     team,
		"productStage": product,
	}
}

func TestServicePipeline(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	// fresh industry so other runs never leak into the benchmark
	industry := "e2e-" + uuid.NewString()[:8]
	user := "founder-" + uuid.NewString()[:8]

	first, err := e.service.Submit(ctx, user, answers(industry, "pre-seed", "high", "solo", "idea"))
	require.NoError(t, err)
	assert.Equal(t, models.TrendFirst, first.Comparison.Trend)
	assert.Equal(t, models.RiskLevelHigh, first.Current.RiskLevel)
	require.NotNil(t, first.Benchmark)
	assert.Equal(t, models.BenchmarkNoData, first.Benchmark.Status)
	t.Log("✅ first submission stored")

	second, err := e.service.Submit(ctx, user, answers(industry, "series-a", "low", "2", "growth"))
	require.NoError(t, err)
	assert.Equal(t, models.TrendDecreased, second.Comparison.Trend)
	assert.Equal(t, 70, second.Comparison.PercentageChange)
	assert.Equal(t, models.BenchmarkSuppressed, second.Benchmark.Status)

	_, err = e.service.Submit(ctx, "founder-"+uuid.NewString()[:8], answers(industry, "seed", "medium", "3+", "mvp"))
	require.NoError(t, err)

	view, err := e.service.Benchmark(ctx, industry)
	require.NoError(t, err)
	require.Equal(t, models.BenchmarkAvailable, view.Status)
	assert.Equal(t, 3, view.Summary.Count)
	t.Log("✅ benchmark disclosed after three records")

	list, err := e.service.History(ctx, user, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.RecordID, list[0].ID)
}

func TestSubmitThroughZeebe(t *testing.T) {
	e := setup(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	zeebe, err := camunda.Connect(ctx, &camunda.ClientConfig{
		GatewayAddress:         e.cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		RetryConfig:            &camunda.RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 5 * time.Second},
	}, e.log)
	require.NoError(t, err, "❌ Zeebe connection failed")
	defer zeebe.Close()

	_, err = zeebe.Zeebe().NewDeployResourceCommand().
		AddResource([]byte(submitProcess), processID+".bpmn").
		Send(ctx)
	require.NoError(t, err)
	t.Log("✅ process deployed")

	w := camunda.StartWorker(zeebe, sa.TaskType,
		config.WorkerConfig{Enabled: true, MaxJobsActive: 1, Timeout: 30000},
		sa.NewHandler(sa.LoadConfig(), e.service, e.log),
		observability.New("venture-risk-e2e", e.log), e.log)
	require.NotNil(t, w)
	defer w.Stop()

	cmd, err := zeebe.Zeebe().NewCreateInstanceCommand().
		BPMNProcessId(processID).
		LatestVersion().
		VariablesFromMap(map[string]interface{}{
			"userId": "founder-" + uuid.NewString()[:8],
			"answers": map[string]interface{}{
				"industry":     "e2e-" + uuid.NewString()[:8],
				"fundingStage": "seed",
				"competition":  "medium",
				"teamSize":     2,
				"productStage": "mvp",
			},
		})
	require.NoError(t, err)

	res, err := cmd.WithResult().Send(ctx)
	require.NoError(t, err)

	var out sa.Output
	require.NoError(t, json.Unmarshal([]byte(res.GetVariables()), &out))
	assert.NotEmpty(t, out.AssessmentID)
	assert.Equal(t, models.TrendFirst, out.Comparison.Trend)
	// 6+6+3+5 = 20/40
	assert.InDelta(t, 0.5, out.Current.OverallScore, 1e-9)
	assert.Equal(t, models.RiskLevelMedium, out.Current.RiskLevel)
	t.Log("✅ submit-assessment completed through the broker")
}
