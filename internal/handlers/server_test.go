package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pottytracker/internal/advice"
	"pottytracker/internal/database"
	"pottytracker/internal/models"
	"pottytracker/internal/repository"
	"pottytracker/internal/security"
	"pottytracker/internal/service"
)

func setupTestServer(t *testing.T, limiter *security.RateLimiter) *Server {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	store := repository.NewStorageRepository(db, logger)
	eventRepo := repository.NewEventRepository(store)

	families := service.NewFamilyService(repository.NewChildRepository(store), repository.NewInviteRepository(store), nil, time.Hour, logger)
	insights := service.NewInsightService(advice.NewAdvisor(nil, logger), eventRepo, 0, logger)
	t.Cleanup(insights.Wait)

	server, err := NewServer(Services{
		Auth:     service.NewAuthService(repository.NewAccountRepository(store), repository.NewSessionRepository(store), families, false, logger),
		Families: families,
		Events:   service.NewEventService(eventRepo, insights, time.UTC, logger),
		Insights: insights,
	}, limiter, logger)
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func signupAda(t *testing.T, s *Server) models.User {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/v1/signup", service.SignupRequest{
		Email: "a@x.com", FirstName: "Ada", LastName: "Parent", Password: "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[models.User](t, rec)
}

func addChild(t *testing.T, s *Server, name string) models.Child {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/v1/children", AddChildRequest{Name: name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[models.Child](t, rec)
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(Services{}, nil, nil)
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	s := setupTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[HealthResponse](t, rec).Status)

	rec = doJSON(t, s, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAuthFlow(t *testing.T) {
	s := setupTestServer(t, nil)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody[SessionResponse](t, rec).User)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/children", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	user := signupAda(t, s)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Empty(t, user.Password)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"duplicate signup", http.MethodPost, "/api/v1/signup", service.SignupRequest{Email: "A@x.com", FirstName: "A", LastName: "B", Password: "pw"}, http.StatusConflict},
		{"missing names", http.MethodPost, "/api/v1/signup", service.SignupRequest{Email: "c@x.com", Password: "pw"}, http.StatusBadRequest},
		{"unknown account", http.MethodPost, "/api/v1/login", LoginRequest{Email: "z@x.com", Password: "pw"}, http.StatusNotFound},
		{"wrong password", http.MethodPost, "/api/v1/login", LoginRequest{Email: "a@x.com", Password: "no"}, http.StatusUnauthorized},
		{"good login", http.MethodPost, "/api/v1/login", LoginRequest{Email: "a@x.com", Password: "pw"}, http.StatusOK},
		{"accounts", http.MethodGet, "/api/v1/accounts?q=ada", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec = doJSON(t, s, http.MethodPost, "/api/v1/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, s, http.MethodGet, "/api/v1/session", nil)
	assert.Nil(t, decodeBody[SessionResponse](t, rec).User)
}

func TestChildrenAndInvites(t *testing.T) {
	s := setupTestServer(t, nil)
	user := signupAda(t, s)

	mia := addChild(t, s, "Mia")
	assert.Equal(t, user.FamilyID, mia.FamilyID)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/children", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Child{mia}, decodeBody[[]models.Child](t, rec))

	rec = doJSON(t, s, http.MethodPost, "/api/v1/children", AddChildRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/invites", InviteRequest{Name: "Bo", Email: "b@x.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := decodeBody[models.InviteToken](t, rec)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/invites/"+inv.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	check := decodeBody[InviteCheckResponse](t, rec)
	assert.True(t, check.Valid)
	assert.Equal(t, user.FamilyID, check.FamilyID)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/invites/NOPE42", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/v1/signup", service.SignupRequest{
		Email: "b@x.com", FirstName: "Bo", LastName: "D", Password: "pw", PartnerToken: inv.Token,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, user.FamilyID, decodeBody[models.User](t, rec).FamilyID)

	// The partner sees the same children
	rec = doJSON(t, s, http.MethodGet, "/api/v1/children", nil)
	assert.Equal(t, []models.Child{mia}, decodeBody[[]models.Child](t, rec))
}

func TestEventsAndStats(t *testing.T) {
	s := setupTestServer(t, nil)
	signupAda(t, s)
	mia := addChild(t, s, "Mia")
	base := "/api/v1/children/" + mia.ID

	day := time.Date(2024, 1, 5, 8, 5, 0, 0, time.UTC)
	var ids []string
	for i, offset := range []time.Duration{0, 4 * time.Hour, 24 * time.Hour} {
		typ := models.EventPotty
		if i == 1 {
			typ = models.EventLunch
		}
		rec := doJSON(t, s, http.MethodPost, base+"/events", CreateEventRequest{Timestamp: day.Add(offset).UnixMilli(), Type: typ})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		view := decodeBody[EventView](t, rec)
		ids = append(ids, view.ID)
		if i == 0 {
			assert.Equal(t, "Jan 5 at 8:05 AM", view.Formatted)
			assert.Equal(t, "Number 2", view.Label)
		}
	}

	rec := doJSON(t, s, http.MethodGet, base+"/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decodeBody[EventsResponse](t, rec)
	assert.Len(t, events.Events, 3)
	require.Len(t, events.History, 2)
	assert.Equal(t, "2024-01-06", events.History[0].Date)
	assert.Equal(t, "Saturday, January 6", events.History[0].Label)

	rec = doJSON(t, s, http.MethodGet, base+"/stats?zoom=9", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[StatsResponse](t, rec)
	assert.Equal(t, 3, st.EventCount)
	assert.Equal(t, 2, st.EventsUntilInsights)
	assert.Equal(t, 5.0, st.Zoom)
	assert.Len(t, st.Ticks, 25)
	assert.Len(t, st.Chart, 3)
	assert.Len(t, st.BestFit, 2)
	assert.Equal(t, []models.DayBucket{{Date: "2024-01-05", Count: 2}, {Date: "2024-01-06", Count: 1}}, st.Days)
	require.Len(t, st.Frequency, 2)
	assert.Equal(t, FrequencyView{TimeOfDay: 485, Label: "8:05 AM", Count: 2, Dense: false}, st.Frequency[0])

	rec = doJSON(t, s, http.MethodGet, base+"/stats?zoom=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodGet, base+"/stats?zoom=NaN", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st = decodeBody[StatsResponse](t, rec)
	assert.Equal(t, 1.0, st.Zoom)
	assert.Len(t, st.Ticks, 9)

	hour, minute := 19, 30
	rec = doJSON(t, s, http.MethodPatch, "/api/v1/events/"+ids[0], UpdateEventRequest{Hour: &hour, Minute: &minute})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, time.Date(2024, 1, 5, 19, 30, 0, 0, time.UTC).UnixMilli(), decodeBody[EventView](t, rec).Timestamp)

	rec = doJSON(t, s, http.MethodPatch, "/api/v1/events/"+ids[0], UpdateEventRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/v1/events/"+ids[2], nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, s, http.MethodDelete, "/api/v1/events/"+ids[2], nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/children/nope/events", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdviceEndpoints(t *testing.T) {
	s := setupTestServer(t, nil)
	signupAda(t, s)
	mia := addChild(t, s, "Mia")
	base := "/api/v1/children/" + mia.ID

	rec := doJSON(t, s, http.MethodGet, base+"/advice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[AdviceResponse](t, rec)
	assert.Nil(t, resp.Advice)
	assert.Equal(t, 5, resp.EventsUntilInsights)

	rec = doJSON(t, s, http.MethodPost, base+"/advice", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	for i := 0; i < 3; i++ {
		rec = doJSON(t, s, http.MethodPost, base+"/events", CreateEventRequest{})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, base+"/advice", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp = decodeBody[AdviceResponse](t, rec)
	assert.Equal(t, advice.Fallback(), resp.Advice)
	assert.False(t, resp.Enabled)
}

func TestLoginRateLimit(t *testing.T) {
	s := setupTestServer(t, security.NewRateLimiter(1, 1))
	signupAda(t, s)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/login", LoginRequest{Email: "a@x.com", Password: "pw"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrDuplicateAccount, http.StatusConflict},
		{service.ErrEventNotFound, http.StatusNotFound},
		{service.ErrNotSignedIn, http.StatusUnauthorized},
		{service.ErrInvalidOrExpiredToken, http.StatusBadRequest},
		{service.ErrNotEnoughEvents, http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := statusFor(tt.err)
		assert.Equal(t, tt.want, status, tt.err.Error())
	}
}
