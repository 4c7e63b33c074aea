package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-forecaster/internal/models"
)

// These tests run against a live forecaster instance with Postgres and Redis
// behind it. They are skipped unless FORECASTER_E2E_URL is set, e.g.
//
//	FORECASTER_E2E_URL=http://localhost:8080 go test ./test/e2e/...
var baseURL string

func TestMain(m *testing.M) {
	baseURL = os.Getenv("FORECASTER_E2E_URL")
	os.Exit(m.Run())
}

func requireE2E(t *testing.T) {
	t.Helper()
	if baseURL == "" {
		t.Skip("FORECASTER_E2E_URL not set, skipping E2E tests")
	}
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func TestFullE2E(t *testing.T) {
	requireE2E(t)

	t.Log("🚀 Starting full E2E run against", baseURL)

	// 1. Service must be up and ready.
	assertServiceHealthy(t)

	// 2. Catalog is served and internally consistent.
	catalog := fetchCatalog(t)

	// 3. Submit a brief, read the report back, wait for narrative enrichment.
	report := submitBrief(t, catalog)
	fetchReportBack(t, report)
	waitForNarrative(t, report.ID)

	// 4. Structural garbage is rejected up front.
	assertBadBriefRejected(t)

	t.Log("✅ Full E2E run passed")
}

func assertServiceHealthy(t *testing.T) {
	t.Log("🔍 Checking service health...")

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := httpClient().Get(baseURL + path)
		require.NoError(t, err, "❌ %s request failed", path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, "❌ %s not OK", path)
		resp.Body.Close()
	}
	t.Log("✅ Service healthy and ready")
}

type catalogPayload struct {
	Version   string `json:"version"`
	Platforms []struct {
		ID       string  `json:"id"`
		MinSpend float64 `json:"minSpend"`
	} `json:"platforms"`
	Industries []struct {
		ID string `json:"id"`
	} `json:"industries"`
}

func fetchCatalog(t *testing.T) *catalogPayload {
	t.Log("🔍 Fetching catalog...")

	resp, err := httpClient().Get(baseURL + "/api/v1/catalog")
	require.NoError(t, err, "❌ Catalog request failed")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cat catalogPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cat))
	assert.NotEmpty(t, cat.Version)
	assert.NotEmpty(t, cat.Platforms, "❌ Catalog has no platforms")
	assert.NotEmpty(t, cat.Industries, "❌ Catalog has no industries")

	t.Logf("✅ Catalog %s with %d platforms", cat.Version, len(cat.Platforms))
	return &cat
}

func submitBrief(t *testing.T, cat *catalogPayload) *models.CampaignReport {
	t.Log("🔧 Submitting campaign brief...")

	brief := map[string]interface{}{
		"industry":        "e-commerce",
		"totalBudget":     50000,
		"duration":        "1_month",
		"funnelStage":     "conversion",
		"primaryGoal":     "conversions",
		"platforms":       []string{"meta", "google_ads"},
		"profitMarginPct": 40,
	}
	body, err := json.Marshal(brief)
	require.NoError(t, err)

	resp, err := httpClient().Post(baseURL+"/api/v1/forecasts", "application/json", bytes.NewReader(body))
	require.NoError(t, err, "❌ Forecast request failed")
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, "❌ Forecast not created: %s", readAll(resp.Body))

	var report models.CampaignReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.NotEmpty(t, report.ID)
	assert.Len(t, report.Allocation, 2)

	var total float64
	for _, amount := range report.Allocation {
		total += amount
	}
	assert.InDelta(t, 50000, total, 0.01, "❌ Allocation does not sum to budget")
	assert.GreaterOrEqual(t, report.Confidence, 0.2)

	t.Logf("✅ Report %s created, confidence %.2f", report.ID, report.Confidence)
	return &report
}

func fetchReportBack(t *testing.T, created *models.CampaignReport) {
	t.Log("🔍 Reading report back by id...")

	resp, err := httpClient().Get(baseURL + "/api/v1/forecasts/" + created.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.CampaignReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, created.Brief.Industry, fetched.Brief.Industry)

	t.Log("✅ Report round-trip OK")
}

// waitForNarrative polls for the asynchronously attached narrative. The
// fallback templates are always written, so this converges quickly even when
// the external collaborator is disabled.
func waitForNarrative(t *testing.T, id string) {
	t.Log("🔍 Waiting for narrative enrichment...")

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := httpClient().Get(baseURL + "/api/v1/forecasts/" + id)
		require.NoError(t, err)
		var fetched models.CampaignReport
		err = json.NewDecoder(resp.Body).Decode(&fetched)
		resp.Body.Close()
		require.NoError(t, err)

		if len(fetched.Narrative) > 0 {
			assert.NotEmpty(t, fetched.Narrative["summary"])
			t.Log("✅ Narrative attached")
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatal("❌ Narrative never attached")
}

func assertBadBriefRejected(t *testing.T) {
	t.Log("🔍 Submitting an invalid brief...")

	brief := map[string]interface{}{
		"industry":    "e-commerce",
		"totalBudget": -5,
		"platforms":   []string{},
	}
	body, _ := json.Marshal(brief)

	resp, err := httpClient().Post(baseURL+"/api/v1/forecasts", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "STRUCTURAL_INPUT_INVALID", payload.Error.Code)

	t.Log("✅ Invalid brief rejected with structural error")
}

func readAll(r io.Reader) string {
	b, _ := io.ReadAll(r)
	return fmt.Sprintf("%s", b)
}
