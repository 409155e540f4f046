package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sales-dashboard/internal/config"
	"github.com/sells-group/sales-dashboard/pkg/salesapi"
)

// stubAPI implements salesapi.Client with canned responses.
type stubAPI struct {
	leads    []salesapi.Lead
	leadsErr error

	useCases    []salesapi.UseCase
	useCasesErr error

	match *salesapi.MatchResult
	pred  *salesapi.ScorePrediction
}

func (s *stubAPI) Leads(context.Context) ([]salesapi.Lead, error) {
	return s.leads, s.leadsErr
}

func (s *stubAPI) UseCases(context.Context) ([]salesapi.UseCase, error) {
	return s.useCases, s.useCasesErr
}

func (s *stubAPI) MatchUseCase(context.Context, salesapi.LeadInput) (*salesapi.MatchResult, error) {
	if s.match == nil {
		return nil, errors.New("matcher down")
	}
	return s.match, nil
}

func (s *stubAPI) PredictScore(context.Context, salesapi.LeadInput) (*salesapi.ScorePrediction, error) {
	if s.pred == nil {
		return nil, errors.New("model down")
	}
	return s.pred, nil
}

func (s *stubAPI) GenerateEmail(context.Context, salesapi.EmailRequest) (*salesapi.EmailResponse, error) {
	return nil, errors.New("not used in router tests")
}

func (s *stubAPI) SendEmail(context.Context, salesapi.SendRequest) (*salesapi.SendResponse, error) {
	return nil, errors.New("not used in router tests")
}

func fp(f float64) *float64 { return &f }

func testRouter(api salesapi.Client) http.Handler {
	c := &config.Config{}
	c.Dashboard.TopN = 10
	return newRouter(&server{api: api, cfg: c})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sampleLeads() []salesapi.Lead {
	return []salesapi.Lead{
		{CompanyName: "Acme Corp", QuoteValue: 100000, ItemCount: 5, LeadScore: fp(0.9)},
		{CompanyName: "Globex", QuoteValue: 50000, ItemCount: 3, LeadScore: fp(0.5)},
		{CompanyName: "Initech", QuoteValue: 20000, ItemCount: 2, LeadScore: fp(0.2)},
	}
}

func TestHealth(t *testing.T) {
	rec := get(t, testRouter(&stubAPI{}), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestLeadsEndpoint_Unfiltered(t *testing.T) {
	rec := get(t, testRouter(&stubAPI{leads: sampleLeads()}), "/api/leads")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.InDelta(t, 3, body["total"], 0.001)
}

func TestLeadsEndpoint_SearchAndBand(t *testing.T) {
	router := testRouter(&stubAPI{leads: sampleLeads()})

	rec := get(t, router, "/api/leads?search=acme")
	assert.InDelta(t, 1, decodeBody(t, rec)["total"], 0.001)

	rec = get(t, router, "/api/leads?band=high")
	assert.InDelta(t, 1, decodeBody(t, rec)["total"], 0.001)

	rec = get(t, router, "/api/leads?search=globex&band=medium")
	assert.InDelta(t, 1, decodeBody(t, rec)["total"], 0.001)

	rec = get(t, router, "/api/leads?search=globex&band=high")
	assert.InDelta(t, 0, decodeBody(t, rec)["total"], 0.001)
}

func TestLeadsEndpoint_InvalidBand(t *testing.T) {
	rec := get(t, testRouter(&stubAPI{leads: sampleLeads()}), "/api/leads?band=extreme")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown score band")
}

func TestLeadsEndpoint_BackendDown(t *testing.T) {
	rec := get(t, testRouter(&stubAPI{leadsErr: errors.New("boom")}), "/api/leads")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "lead source unavailable")
}

func TestDashboardEndpoint(t *testing.T) {
	rec := get(t, testRouter(&stubAPI{leads: sampleLeads()}), "/api/dashboard")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	summary := body["summary"].(map[string]any)
	assert.InDelta(t, 3, summary["total_leads"], 0.001)
	assert.InDelta(t, 1, summary["high_value_leads"], 0.001)
	assert.InDelta(t, 170000, summary["pipeline_value"], 0.001)

	top := body["top_leads"].([]any)
	require.Len(t, top, 3)
	first := top[0].(map[string]any)
	assert.Equal(t, "Acme Corp", first["name"])
	assert.InDelta(t, 90.0, first["score"], 0.001)
}

func TestAnalyticsEndpoint(t *testing.T) {
	rec := get(t, testRouter(&stubAPI{leads: sampleLeads()}), "/api/analytics")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	histogram := body["histogram"].([]any)
	require.Len(t, histogram, 5)

	funnel := body["funnel"].([]any)
	require.Len(t, funnel, 5)
	total := funnel[0].(map[string]any)
	assert.Equal(t, "Total Leads", total["stage"])
	assert.InDelta(t, 3, total["count"], 0.001)

	tiers := body["tiers"].(map[string]any)
	assert.InDelta(t, 1, tiers["high"], 0.001)
	assert.InDelta(t, 1, tiers["medium"], 0.001)
	assert.InDelta(t, 1, tiers["low"], 0.001)
}

func TestUseCasesEndpoint(t *testing.T) {
	api := &stubAPI{useCases: []salesapi.UseCase{{ID: "uc-1", Title: "Cloud Migration"}}}
	rec := get(t, testRouter(api), "/api/use-cases")

	require.Equal(t, http.StatusOK, rec.Code)
	cases := decodeBody(t, rec)["use_cases"].([]any)
	require.Len(t, cases, 1)
}

func TestOverviewEndpoint(t *testing.T) {
	api := &stubAPI{
		leads:    sampleLeads(),
		useCases: []salesapi.UseCase{{ID: "uc-1"}},
	}
	rec := get(t, testRouter(api), "/api/overview")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body, "summary")
	assert.Contains(t, body, "histogram")
	assert.Contains(t, body, "funnel")
	assert.Contains(t, body, "top_leads")
	assert.Contains(t, body, "use_cases")
}

func TestOverviewEndpoint_PartialFailure(t *testing.T) {
	api := &stubAPI{
		leads:       sampleLeads(),
		useCasesErr: errors.New("catalog down"),
	}
	rec := get(t, testRouter(api), "/api/overview")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMatchEndpoint(t *testing.T) {
	api := &stubAPI{match: &salesapi.MatchResult{
		RecommendedUseCase: salesapi.UseCase{ID: "uc-2", Title: "Managed IT"},
		SegmentAssigned:    "SMB",
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/match",
		strings.NewReader(`{"quote_value":10000,"item_count":2}`))
	testRouter(api).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	uc := body["recommended_use_case"].(map[string]any)
	assert.Equal(t, "Managed IT", uc["title"])
}

func TestMatchEndpoint_BadBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/match", strings.NewReader(`{broken`))
	testRouter(&stubAPI{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreEndpoint(t *testing.T) {
	api := &stubAPI{pred: &salesapi.ScorePrediction{LeadScore: 0.77}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/score",
		strings.NewReader(`{"quote_value":10000,"item_count":2}`))
	testRouter(api).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0.77, decodeBody(t, rec)["lead_score"], 0.001)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, testRouter(&stubAPI{}), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
