package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukeru/gelande/internal/api"
	"github.com/yukeru/gelande/internal/recommend"
	"github.com/yukeru/gelande/internal/resort"
)

// ---- mock Recommender ----

type mockRecommender struct {
	recommendFn func(ctx context.Context, opts recommend.Options) (recommend.Result, error)
	detailsFn   func(ctx context.Context, id string) (*recommend.Item, error)
	closedFn    func(ctx context.Context) []resort.Resort
	ingestFn    func(ctx context.Context, records []resort.RawRecord) recommend.IngestSummary
}

func (m *mockRecommender) Recommend(ctx context.Context, opts recommend.Options) (recommend.Result, error) {
	return m.recommendFn(ctx, opts)
}
func (m *mockRecommender) ResortDetails(ctx context.Context, id string) (*recommend.Item, error) {
	return m.detailsFn(ctx, id)
}
func (m *mockRecommender) ClosedResorts(ctx context.Context) []resort.Resort {
	return m.closedFn(ctx)
}
func (m *mockRecommender) Ingest(ctx context.Context, records []resort.RawRecord) recommend.IngestSummary {
	return m.ingestFn(ctx, records)
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// ---- helpers ----

const testToken = "secret-token"

func sampleItem() recommend.Item {
	return recommend.Item{
		ResortID:      "kagura",
		Name:          "Kagura",
		Score:         72.5,
		Status:        resort.StatusOpen,
		Reason:        "Excellent conditions with a 180cm base",
		SeasonStatus:  resort.SeasonOpen,
		TravelMinutes: 150,
		DistanceKM:    181.3,
		Mapped:        true,
	}
}

func buildRouter(svc api.Recommender, db, redis *mockPinger) http.Handler {
	if db == nil {
		db = &mockPinger{}
	}
	if redis == nil {
		redis = &mockPinger{}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return api.NewRouter(api.NewHandlers(svc, log), testToken, db, redis, log)
}

func authedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

// ---- auth ----

func TestAuth_MissingTokenRejected(t *testing.T) {
	router := buildRouter(&mockRecommender{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongTokenRejected(t *testing.T) {
	router := buildRouter(&mockRecommender{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ---- GET /api/v1/recommendations ----

func TestGetRecommendations_Defaults(t *testing.T) {
	var gotOpts recommend.Options
	svc := &mockRecommender{
		recommendFn: func(_ context.Context, opts recommend.Options) (recommend.Result, error) {
			gotOpts = opts
			return recommend.Result{Items: []recommend.Item{sampleItem()}, Funnel: recommend.Funnel{TotalConsidered: 1, PassedTravel: 1, PassedSeason: 1, PassedScore: 1, Final: 1}}, nil
		},
	}

	router := buildRouter(svc, nil, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/recommendations", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, recommend.DefaultOptions(), gotOpts)

	var result recommend.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, "kagura", result.Items[0].ResortID)
	assert.Equal(t, 1, result.Funnel.Final)
}

func TestGetRecommendations_QueryOverrides(t *testing.T) {
	var gotOpts recommend.Options
	svc := &mockRecommender{
		recommendFn: func(_ context.Context, opts recommend.Options) (recommend.Result, error) {
			gotOpts = opts
			return recommend.Result{}, nil
		},
	}

	router := buildRouter(svc, nil, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet,
		"/api/v1/recommendations?max_travel_minutes=120&min_score=30&limit=3&include_closed=true", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, recommend.Options{MaxTravelMinutes: 120, MinScore: 30, Limit: 3, IncludeClosed: true}, gotOpts)
}

func TestGetRecommendations_MalformedParamsFallBackToDefaults(t *testing.T) {
	var gotOpts recommend.Options
	svc := &mockRecommender{
		recommendFn: func(_ context.Context, opts recommend.Options) (recommend.Result, error) {
			gotOpts = opts
			return recommend.Result{}, nil
		},
	}

	router := buildRouter(svc, nil, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet,
		"/api/v1/recommendations?max_travel_minutes=soon&limit=-2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, recommend.DefaultOptions(), gotOpts)
}

func TestGetRecommendations_ServiceError(t *testing.T) {
	svc := &mockRecommender{
		recommendFn: func(_ context.Context, _ recommend.Options) (recommend.Result, error) {
			return recommend.Result{}, assert.AnError
		},
	}

	router := buildRouter(svc, nil, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/recommendations", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ---- GET /api/v1/resorts/{id} ----

func TestGetResort_Found(t *testing.T) {
	svc := &mockRecommender{
		detailsFn: func(_ context.Context, id string) (*recommend.Item, error) {
			assert.Equal(t, "kagura", id)
			item := sampleItem()
			return &item, nil
		},
	}

	router := buildRouter(svc, nil, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/resorts/kagura", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var item recommend.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, "Kagura", item.Name)
}

func TestGetResort_NotFound(t *testing.T) {
	svc := &mockRecommender{
		detailsFn: func(_ context.Context, _ string) (*recommend.Item, error) { return nil, nil },
	}

	router := buildRouter(svc, nil, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/resorts/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ---- GET /api/v1/resorts/closed ----

func TestGetClosedResorts(t *testing.T) {
	opening := time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC)
	svc := &mockRecommender{
		closedFn: func(_ context.Context) []resort.Resort {
			return []resort.Resort{
				{ID: "gala-yuzawa", Name: "GALA Yuzawa", SeasonStatus: resort.SeasonClosed, OpeningDate: &opening},
			}
		},
		// The closed route must not be captured by the {id} route.
		detailsFn: func(_ context.Context, _ string) (*recommend.Item, error) {
			t.Fatal("details handler should not serve /resorts/closed")
			return nil, nil
		},
	}

	router := buildRouter(svc, nil, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/resorts/closed", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Resorts []resort.Resort `json:"resorts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Resorts, 1)
	assert.Equal(t, "gala-yuzawa", body.Resorts[0].ID)
}

// ---- POST /api/v1/conditions ----

func TestPostConditions_IngestsBatch(t *testing.T) {
	var gotRecords []resort.RawRecord
	svc := &mockRecommender{
		ingestFn: func(_ context.Context, records []resort.RawRecord) recommend.IngestSummary {
			gotRecords = records
			return recommend.IngestSummary{Received: len(records), Stored: len(records)}
		},
	}

	body, err := json.Marshal([]resort.RawRecord{
		{Name: "Kagura", BaseDepth: "180cm", LiftsOpen: "12", ObservedAt: time.Now()},
		{Name: "Somewhere New", BaseDepth: "-", ObservedAt: time.Now()},
	})
	require.NoError(t, err)

	router := buildRouter(svc, nil, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/conditions", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, gotRecords, 2)
	assert.Equal(t, "Kagura", gotRecords[0].Name)

	var summary recommend.IngestSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Stored)
}

func TestPostConditions_BadBody(t *testing.T) {
	router := buildRouter(&mockRecommender{}, nil, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/conditions", bytes.NewReader([]byte("not json"))))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostConditions_OversizedBatchRejected(t *testing.T) {
	records := make([]resort.RawRecord, 501)
	body, err := json.Marshal(records)
	require.NoError(t, err)

	router := buildRouter(&mockRecommender{}, nil, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/conditions", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- GET /api/v1/health ----

func TestHealth_AllOK(t *testing.T) {
	router := buildRouter(&mockRecommender{}, nil, nil)
	w := httptest.NewRecorder()
	// Health is unauthenticated.
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth_DegradedWhenRedisDown(t *testing.T) {
	router := buildRouter(&mockRecommender{}, nil, &mockPinger{err: assert.AnError})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "error", body["redis"])
	assert.Equal(t, "ok", body["db"])
}
