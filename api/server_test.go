package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/RichardKnop/machinery/v1/backends/result"
	"github.com/RichardKnop/machinery/v1/tasks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/geosure/climate-risk-api/schema"
	"github.com/geosure/climate-risk-api/store"
)

type fakeStore struct {
	results   []schema.RiskResult
	runs      []schema.BatchRun
	latest    *schema.BatchRun
	listErr   error
	latestErr error
	pingErr   error
}

func (f *fakeStore) UpsertRiskResult(context.Context, schema.RiskResult) error {
	return nil
}

func (f *fakeStore) ListRiskResults(_ context.Context, locationID string, scenario schema.Scenario) ([]schema.RiskResult, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []schema.RiskResult
	for _, r := range f.results {
		if r.LocationID != locationID {
			continue
		}
		if scenario != "" && r.Scenario != scenario {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) CreateBatchRun(context.Context, schema.BatchRun) error {
	return nil
}

func (f *fakeStore) RecordUnitSuccess(context.Context, string) error {
	return nil
}

func (f *fakeStore) RecordUnitFailure(context.Context, string, string) error {
	return nil
}

func (f *fakeStore) CompleteBatchRun(context.Context, string, schema.BatchStatus, time.Time) error {
	return nil
}

func (f *fakeStore) GetBatchRun(context.Context, string) (*schema.BatchRun, error) {
	return nil, store.ErrBatchRunNotFound
}

func (f *fakeStore) GetLatestBatchRun(context.Context) (*schema.BatchRun, error) {
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

func (f *fakeStore) ListBatchRuns(context.Context, int64) ([]schema.BatchRun, error) {
	return f.runs, nil
}

func (f *fakeStore) Ping() error {
	return f.pingErr
}

type fakeEnqueuer struct {
	sent []*tasks.Signature
	err  error
}

func (f *fakeEnqueuer) SendTask(signature *tasks.Signature) (*result.AsyncResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, signature)
	return nil, nil
}

func testRouter(s *Server) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.GET("/risk-scores", s.listRiskScores)
	router.GET("/batch-runs", s.listBatchRuns)
	router.POST("/batch-runs", s.forceBatchRun)
	router.GET("/batch-runs/latest", s.latestBatchRun)
	router.GET("/healthz", s.healthz)

	return router
}

func TestListRiskScores(t *testing.T) {
	s := &Server{store: &fakeStore{
		results: []schema.RiskResult{
			{HazardType: schema.HazardHeat, LocationID: "loc-1", Scenario: schema.ScenarioSSP245, TargetYear: 2050, Score: 0.04, Tier: schema.TierLow},
			{HazardType: schema.HazardHeat, LocationID: "loc-1", Scenario: schema.ScenarioSSP585, TargetYear: 2050, Score: 0.2, Tier: schema.TierHigh},
			{HazardType: schema.HazardHeat, LocationID: "loc-2", Scenario: schema.ScenarioSSP245, TargetYear: 2050, Score: 0.01, Tier: schema.TierLow},
		},
	}}

	req := httptest.NewRequest("GET", "/risk-scores?location_id=loc-1&scenario=ssp2-4.5", nil)
	w := httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "wrong status code")

	var resp struct {
		RiskScores []schema.RiskResult `json:"risk_scores"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Len(t, resp.RiskScores, 1)
	assert.Equal(t, schema.TierLow, resp.RiskScores[0].Tier)
}

func TestListRiskScoresRequiresLocation(t *testing.T) {
	s := &Server{store: &fakeStore{}}

	req := httptest.NewRequest("GET", "/risk-scores", nil)
	w := httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, "wrong status code")

	var resp ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, errorInvalidParameters.Code, resp.Code)
}

func TestForceBatchRun(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	s := &Server{store: &fakeStore{}, background: enqueuer}

	req := httptest.NewRequest("POST", "/batch-runs", strings.NewReader(`{"batch_type":"heat"}`))
	w := httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code, "wrong status code")
	assert.Len(t, enqueuer.sent, 1)
	assert.Equal(t, "recompute_risk", enqueuer.sent[0].Name)
	assert.Equal(t, "heat", enqueuer.sent[0].Args[0].Value)

	var resp struct {
		Result string `json:"result"`
		TaskID string `json:"task_id"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "OK", resp.Result)
	assert.Equal(t, enqueuer.sent[0].UUID, resp.TaskID)
	assert.NotEmpty(t, resp.TaskID)
}

func TestForceBatchRunUnknownBatchType(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	s := &Server{store: &fakeStore{}, background: enqueuer}

	req := httptest.NewRequest("POST", "/batch-runs", strings.NewReader(`{"batch_type":"earthquake"}`))
	w := httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, "wrong status code")

	var resp ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, errorUnknownBatchType.Code, resp.Code)
	assert.Empty(t, enqueuer.sent)
}

func TestForceBatchRunEnqueueFailure(t *testing.T) {
	s := &Server{store: &fakeStore{}, background: &fakeEnqueuer{err: fmt.Errorf("broker down")}}

	req := httptest.NewRequest("POST", "/batch-runs", strings.NewReader(`{"batch_type":"all"}`))
	w := httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code, "wrong status code")
}

func TestLatestBatchRun(t *testing.T) {
	finishedAt := time.Date(2026, 1, 1, 4, 20, 0, 0, time.UTC)
	s := &Server{store: &fakeStore{
		latest: &schema.BatchRun{
			RunID:          "run-1",
			BatchType:      schema.BatchTypeAll,
			TriggerKind:    schema.TriggerScheduled,
			UnitsTotal:     72,
			UnitsSucceeded: 70,
			UnitsFailed:    2,
			FinishedAt:     &finishedAt,
			Status:         schema.BatchPartiallyFailed,
		},
	}}

	req := httptest.NewRequest("GET", "/batch-runs/latest", nil)
	w := httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "wrong status code")

	var run schema.BatchRun
	err := json.Unmarshal(w.Body.Bytes(), &run)
	assert.NoError(t, err)
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, schema.BatchPartiallyFailed, run.Status)
	assert.Equal(t, 70, run.UnitsSucceeded)
}

func TestLatestBatchRunNotFound(t *testing.T) {
	s := &Server{store: &fakeStore{latestErr: store.ErrBatchRunNotFound}}

	req := httptest.NewRequest("GET", "/batch-runs/latest", nil)
	w := httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code, "wrong status code")
}

func TestApikeyAuthentication(t *testing.T) {
	s := &Server{store: &fakeStore{}}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(s.apikeyAuthentication("secret"))
	router.GET("/batch-runs", s.listBatchRuns)

	req := httptest.NewRequest("GET", "/batch-runs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code, "missing token accepted")

	req = httptest.NewRequest("GET", "/batch-runs", nil)
	req.Header.Set("Api-Token", "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "valid token rejected")
}

func TestHealthz(t *testing.T) {
	s := &Server{store: &fakeStore{}}

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "wrong status code")
}

func TestHealthzStoreDown(t *testing.T) {
	s := &Server{store: &fakeStore{pingErr: fmt.Errorf("no reachable servers")}}

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	testRouter(s).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code, "wrong status code")
}
