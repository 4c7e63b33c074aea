// internal/server/handlers_test.go

package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-forecaster/internal/benchmarks"
	"campaign-forecaster/internal/common/config"
	"campaign-forecaster/internal/common/logger"
	"campaign-forecaster/internal/engine"
	"campaign-forecaster/internal/models"
	"campaign-forecaster/internal/narrative"
	"campaign-forecaster/internal/reportstore"
	"campaign-forecaster/pkg/catalog"
)

type testServer struct {
	handler *Handler
	router  http.Handler
	sqlMock sqlmock.Sqlmock
	redis   *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewTestLogger(t)

	tables, err := benchmarks.Load("../../configs/benchmarks.yaml")
	require.NoError(t, err)
	repo := benchmarks.NewRepository(tables, log)

	engineCfg := config.EngineConfig{
		MinBudget:     1000,
		MaxBudget:     10_000_000,
		MinPlatforms:  1,
		MaxPlatforms:  6,
		MaxIterations: 10,
		ModifierFloor: 0.3,
		ModifierCeil:  3.0,
	}
	eng := engine.New(repo, engineCfg, log)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	store := reportstore.New(db, cache, config.ReportsConfig{CacheTTL: 300}, log)
	nc := narrative.NewClient(config.NarrativeConfig{Enabled: false}, log)

	cat, err := catalog.Load("../../configs/catalog.json")
	require.NoError(t, err)

	h := NewHandler(eng, store, nc, cat, nil, log)
	return &testServer{
		handler: h,
		router:  NewRouter(h, log, nil),
		sqlMock: sqlMock,
		redis:   mr,
	}
}

const validBriefJSON = `{
	"industry": "e-commerce",
	"totalBudget": 100000,
	"duration": "1_month",
	"funnelStage": "conversion",
	"primaryGoal": "conversions",
	"platforms": ["meta", "google_ads"],
	"creativeType": "video",
	"competition": "medium",
	"profitMarginPct": 40
}`

func TestCreateForecast(t *testing.T) {
	ts := newTestServer(t)

	ts.sqlMock.ExpectExec("INSERT INTO forecast_reports").
		WillReturnResult(sqlmock.NewResult(0, 1))
	ts.sqlMock.ExpectExec("UPDATE forecast_reports SET report = jsonb_set").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forecasts", strings.NewReader(validBriefJSON))
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var report models.CampaignReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.NotEmpty(t, report.ID)
	assert.InDelta(t, 100_000.0, report.Allocation.Total(), 1.0)
	assert.NotEmpty(t, report.Narrative["summary"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	// The narrative patch runs after the response; wait for it before
	// checking the store expectations.
	ts.handler.enrichments.Wait()
	require.NoError(t, ts.sqlMock.ExpectationsWereMet())
}

func TestCreateForecast_SchemaViolations(t *testing.T) {
	ts := newTestServer(t)

	body := `{"industry": "e-commerce", "totalBudget": 100000, "platforms": ["myspace"]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forecasts", strings.NewReader(body))
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "STRUCTURAL_INPUT_INVALID", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Meta["violations"])
}

func TestCreateForecast_MalformedJSON(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forecasts", strings.NewReader("{not json"))
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateForecast_InfeasibleBudget(t *testing.T) {
	ts := newTestServer(t)

	body := `{
		"industry": "e-commerce",
		"totalBudget": 1200,
		"duration": "1_month",
		"funnelStage": "conversion",
		"primaryGoal": "conversions",
		"platforms": ["meta", "google_ads", "linkedin"]
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forecasts", strings.NewReader(body))
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ALLOCATION_INFEASIBLE", resp.Error.Code)
	assert.InDelta(t, 800.0, resp.Error.Meta["shortfall"].(float64), 1e-9)
}

func TestGetForecast_FromCache(t *testing.T) {
	ts := newTestServer(t)

	report := models.CampaignReport{ID: "r-42", Brief: models.CampaignBrief{Industry: "saas"}}
	payload, err := json.Marshal(report)
	require.NoError(t, err)
	require.NoError(t, ts.redis.Set("forecast:report:r-42", string(payload)))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecasts/r-42", nil)
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.CampaignReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "saas", got.Brief.Industry)
}

func TestGetForecast_NotFound(t *testing.T) {
	ts := newTestServer(t)

	ts.sqlMock.ExpectQuery("SELECT report FROM forecast_reports").
		WillReturnError(sql.ErrNoRows)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecasts/missing", nil)
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCatalog(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil)
	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var cat catalog.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
	assert.Len(t, cat.Platforms, 6)
	assert.Equal(t, "2026.2", cat.Version)
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz_FailingCheck(t *testing.T) {
	ts := newTestServer(t)
	router := NewRouter(ts.handler, logger.NewTestLogger(t), map[string]ReadinessCheck{
		"postgres": func(ctx context.Context) error { return errors.New("connection refused") },
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
