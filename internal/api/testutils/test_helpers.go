package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/tripdate-server/internal/api"
	"github.com/rongwang/tripdate-server/internal/config"
	"github.com/rongwang/tripdate-server/internal/models"
	"github.com/rongwang/tripdate-server/internal/repository"
	"github.com/rongwang/tripdate-server/internal/service"
	"github.com/rongwang/tripdate-server/internal/utils"
	"github.com/stretchr/testify/require"
)

// PublicBaseURL is the link prefix used when a request has no Origin header
const PublicBaseURL = "http://trips.test"

// TestContext holds all dependencies for tests
type TestContext struct {
	Router     *gin.Engine
	Repository repository.Repository
	Service    service.Service
	DB         *sqlx.DB
}

// SetupTestContext creates a router backed by a fresh SQLite database.
// Extra middleware is passed through to SetupRoutes.
func SetupTestContext(t *testing.T, middleware ...gin.HandlerFunc) *TestContext {
	t.Helper()

	cfg := config.LoadConfig()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "trips.db")

	db, err := config.SetupDatabase(cfg)
	require.NoError(t, err, "Failed to set up test database")

	logger := utils.NewLoggerTo(io.Discard, io.Discard)
	repo := repository.NewSQLRepository(db)
	svc := service.NewDefaultService(repo, logger)
	handler := api.NewHandler(svc, logger, PublicBaseURL)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.SetupRoutes(router, middleware...)

	return &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		DB:         db,
	}
}

// CleanupTestContext cleans up test resources
func CleanupTestContext(t *TestContext) {
	if t.DB != nil {
		t.DB.Close()
	}
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// HostHeaders returns headers carrying a host edit token
func HostHeaders(token string) map[string]string {
	return map[string]string{
		"X-Host-Token": token,
	}
}

// BearerHeaders returns headers with an Authorization bearer token
func BearerHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// CreateTrip creates a trip over HTTP and returns the create response
func CreateTrip(t *testing.T, tc *TestContext, title string, dates ...string) models.CreateTripResponse {
	t.Helper()

	req := models.CreateTripRequest{Title: title, Timezone: "UTC"}
	for _, d := range dates {
		req.Dates = append(req.Dates, models.DateInput{DateStart: d})
	}

	w := PerformRequest(tc.Router, http.MethodPost, "/api/trips", req, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.CreateTripResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// GetTrip fetches the trip aggregate over HTTP
func GetTrip(t *testing.T, tc *TestContext, tripID string) models.TripAggregate {
	t.Helper()

	w := PerformRequest(tc.Router, http.MethodGet, "/api/trips/"+tripID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var agg models.TripAggregate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &agg))
	return agg
}

// AddParticipant joins a trip over HTTP and returns the participant id
func AddParticipant(t *testing.T, tc *TestContext, tripID, name string) string {
	t.Helper()

	w := PerformRequest(tc.Router, http.MethodPost, "/api/trips/"+tripID+"/participants",
		models.CreateParticipantRequest{DisplayName: name}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.ParticipantResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

// Vote builds one availability response
func Vote(tripDateID string, status models.AvailabilityStatus) models.AvailabilityResponse {
	s := int(status)
	return models.AvailabilityResponse{TripDateID: tripDateID, Status: &s}
}

// DecodeError parses an error body
func DecodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}
