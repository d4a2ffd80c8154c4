package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rongwang/tripdate-server/internal/api/testutils"
	"github.com/rongwang/tripdate-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getResults(t *testing.T, testCtx *testutils.TestContext, tripID string) models.TripResults {
	t.Helper()

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/trips/"+tripID+"/results", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var results models.TripResults
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	return results
}

func vote(t *testing.T, testCtx *testutils.TestContext, tripID, participantID string, votes ...models.AvailabilityResponse) {
	t.Helper()

	w := testutils.PerformRequest(testCtx.Router, http.MethodPut, "/api/trips/"+tripID+"/availability",
		models.SubmitAvailabilityRequest{ParticipantID: participantID, Responses: votes}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestResults(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	trip := testutils.CreateTrip(t, testCtx, "Reunion", "2026-12-01", "2026-12-02")
	dates := testutils.GetTrip(t, testCtx, trip.TripID).Dates
	d1, d2 := dates[0].ID, dates[1].ID

	// No votes yet: nothing is recommended
	results := getResults(t, testCtx, trip.TripID)
	assert.Equal(t, trip.TripID, results.TripID)
	assert.Equal(t, 0, results.MaxScore)
	assert.Empty(t, results.Best)
	require.Len(t, results.Summaries, 2)

	alice := testutils.AddParticipant(t, testCtx, trip.TripID, "Alice")
	bob := testutils.AddParticipant(t, testCtx, trip.TripID, "Bob")

	vote(t, testCtx, trip.TripID, alice,
		testutils.Vote(d1, models.StatusYes), testutils.Vote(d2, models.StatusMaybe))
	vote(t, testCtx, trip.TripID, bob,
		testutils.Vote(d1, models.StatusYes), testutils.Vote(d2, models.StatusNo))

	results = getResults(t, testCtx, trip.TripID)
	assert.Equal(t, 4, results.MaxScore)
	require.Len(t, results.Best, 1)
	assert.Equal(t, d1, results.Best[0].ID)

	byID := map[string]models.DateSummary{}
	for _, s := range results.Summaries {
		byID[s.Date.ID] = s
	}
	assert.Equal(t, 2, byID[d1].Yes)
	assert.Equal(t, 4, byID[d1].Score)
	assert.True(t, byID[d1].IsBest)
	assert.Equal(t, 1, byID[d2].Maybe)
	assert.Equal(t, 1, byID[d2].No)
	assert.Equal(t, 1, byID[d2].Score)
	assert.False(t, byID[d2].IsBest)

	// Bob changes his mind
	vote(t, testCtx, trip.TripID, bob,
		testutils.Vote(d1, models.StatusNo), testutils.Vote(d2, models.StatusYes))
	vote(t, testCtx, trip.TripID, alice,
		testutils.Vote(d1, models.StatusMaybe), testutils.Vote(d2, models.StatusMaybe))

	results = getResults(t, testCtx, trip.TripID)
	assert.Equal(t, 3, results.MaxScore)
	assert.Len(t, results.Best, 1)
	assert.Equal(t, d2, results.Best[0].ID)

	// Ties are all recommended
	vote(t, testCtx, trip.TripID, alice,
		testutils.Vote(d1, models.StatusYes), testutils.Vote(d2, models.StatusNo))

	results = getResults(t, testCtx, trip.TripID)
	assert.Equal(t, 2, results.MaxScore)
	assert.Len(t, results.Best, 2)

	// Everyone says No: no best date
	vote(t, testCtx, trip.TripID, alice,
		testutils.Vote(d1, models.StatusNo), testutils.Vote(d2, models.StatusNo))
	vote(t, testCtx, trip.TripID, bob,
		testutils.Vote(d1, models.StatusNo), testutils.Vote(d2, models.StatusNo))

	results = getResults(t, testCtx, trip.TripID)
	assert.Equal(t, 0, results.MaxScore)
	assert.Empty(t, results.Best)
}

func TestResultsUnknownTrip(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/trips/missing/results", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
