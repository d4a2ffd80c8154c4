package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rongwang/tripdate-server/internal/config"
	"github.com/rongwang/tripdate-server/internal/models"
	"github.com/rongwang/tripdate-server/internal/repository"
	"github.com/rongwang/tripdate-server/internal/service"
	"github.com/rongwang/tripdate-server/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *repository.SQLRepository {
	t.Helper()
	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "service.db"),
	}}
	db, err := config.SetupDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewSQLRepository(db)
}

func newService(t *testing.T) service.Service {
	return service.NewDefaultService(newRepo(t), utils.NopLogger())
}

func strPtr(s string) *string { return &s }

func createTrip(t *testing.T, svc service.Service, days ...string) *service.CreateTripResult {
	t.Helper()
	in := service.CreateTripInput{Title: "  Cabin trip  ", Timezone: "America/Denver"}
	for _, d := range days {
		in.Dates = append(in.Dates, service.DateInput{DateStart: d})
	}
	res, err := svc.CreateTrip(context.Background(), in)
	require.NoError(t, err)
	return res
}

func dateIDs(agg *models.TripAggregate) map[string]string {
	out := map[string]string{}
	for _, d := range agg.Dates {
		out[d.DateStart] = d.ID
	}
	return out
}

func TestCreateTrip(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	res, err := svc.CreateTrip(ctx, service.CreateTripInput{
		Title:    "  Cabin trip ",
		Timezone: " America/Denver ",
		Dates: []service.DateInput{
			{DateStart: "2025-06-02", Label: strPtr("  Sunday ")},
			{DateStart: "2025-06-01", Label: strPtr("   ")},
		},
	})
	require.NoError(t, err)
	assert.Len(t, res.Token, 64)
	assert.Equal(t, utils.HashToken(res.Token), res.Trip.HostEditTokenHash)

	agg, err := svc.GetTrip(ctx, res.Trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cabin trip", agg.Trip.Title)
	assert.Equal(t, "America/Denver", agg.Trip.Timezone)
	require.Len(t, agg.Dates, 2)
	assert.Equal(t, "2025-06-01", agg.Dates[0].DateStart)
	assert.Nil(t, agg.Dates[0].Label)
	require.NotNil(t, agg.Dates[1].Label)
	assert.Equal(t, "Sunday", *agg.Dates[1].Label)
	assert.Empty(t, agg.Participants)
	assert.Empty(t, agg.Availability)
}

func TestCreateTripValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	oneDate := []service.DateInput{{DateStart: "2025-06-01"}}

	cases := map[string]service.CreateTripInput{
		"empty title":    {Title: "   ", Timezone: "UTC", Dates: oneDate},
		"long title":     {Title: strings.Repeat("x", 121), Timezone: "UTC", Dates: oneDate},
		"empty timezone": {Title: "T", Timezone: " ", Dates: oneDate},
		"no dates":       {Title: "T", Timezone: "UTC"},
		"bad date":       {Title: "T", Timezone: "UTC", Dates: []service.DateInput{{DateStart: "2025-6-1"}}},
		"date with time": {Title: "T", Timezone: "UTC", Dates: []service.DateInput{{DateStart: "2025-06-01T10:00"}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateTrip(ctx, in)
			require.Error(t, err)
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}

	// Lexical check only
	_, err := svc.CreateTrip(ctx, service.CreateTripInput{
		Title: "T", Timezone: "UTC", Dates: []service.DateInput{{DateStart: "2025-02-31"}},
	})
	assert.NoError(t, err)

	_, err = svc.CreateTrip(ctx, service.CreateTripInput{
		Title: strings.Repeat("é", 120), Timezone: "UTC", Dates: oneDate,
	})
	assert.NoError(t, err)
}

// failingDatesRepo fails every date insert
type failingDatesRepo struct {
	*repository.SQLRepository
	createdTripID string
}

func (r *failingDatesRepo) CreateTrip(ctx context.Context, trip *models.Trip) error {
	r.createdTripID = trip.ID
	return r.SQLRepository.CreateTrip(ctx, trip)
}

func (r *failingDatesRepo) CreateTripDates(ctx context.Context, dates []models.TripDate) error {
	return errors.New("disk full")
}

func TestCreateTripCompensatesWhenDatesFail(t *testing.T) {
	base := newRepo(t)
	repo := &failingDatesRepo{SQLRepository: base}
	svc := service.NewDefaultService(repo, utils.NopLogger())
	ctx := context.Background()

	_, err := svc.CreateTrip(ctx, service.CreateTripInput{
		Title: "T", Timezone: "UTC", Dates: []service.DateInput{{DateStart: "2025-06-01"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrStorage)
	assert.Equal(t, "failed to create trip dates", service.MessageOf(err))

	require.NotEmpty(t, repo.createdTripID)
	trip, err := base.GetTrip(ctx, repo.createdTripID)
	require.NoError(t, err)
	assert.Nil(t, trip, "trip row must be removed again")
}

func TestGetTripNotFound(t *testing.T) {
	svc := newService(t)
	_, err := svc.GetTrip(context.Background(), "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.GetResults(context.Background(), "missing")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestHostOperationsRequireToken(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	res := createTrip(t, svc, "2025-06-01")
	tripID := res.Trip.ID
	dateID := res.Dates[0].ID

	wrong := []byte(res.Token)
	if wrong[10] == '0' {
		wrong[10] = '1'
	} else {
		wrong[10] = '0'
	}

	for name, token := range map[string]string{"missing": "", "wrong": string(wrong), "hash itself": res.Trip.HostEditTokenHash} {
		t.Run(name, func(t *testing.T) {
			// Payload validity does not matter
			_, err := svc.RenameTrip(ctx, tripID, token, "")
			assert.ErrorIs(t, err, service.ErrUnauthorized)
			_, err = svc.RenameTrip(ctx, tripID, token, "Fine title")
			assert.ErrorIs(t, err, service.ErrUnauthorized)

			_, err = svc.AddDate(ctx, tripID, token, "bad", nil)
			assert.ErrorIs(t, err, service.ErrUnauthorized)
			_, err = svc.AddDate(ctx, tripID, token, "2025-06-05", nil)
			assert.ErrorIs(t, err, service.ErrUnauthorized)

			err = svc.RemoveDate(ctx, tripID, token, dateID)
			assert.ErrorIs(t, err, service.ErrUnauthorized)
			err = svc.RemoveDate(ctx, tripID, token, "nope")
			assert.ErrorIs(t, err, service.ErrUnauthorized)
		})
	}

	// Missing and wrong tokens look the same to the caller
	_, errMissing := svc.RenameTrip(ctx, tripID, "", "x")
	_, errWrong := svc.RenameTrip(ctx, tripID, string(wrong), "x")
	assert.Equal(t, service.MessageOf(errMissing), service.MessageOf(errWrong))

	agg, err := svc.GetTrip(ctx, tripID)
	require.NoError(t, err)
	assert.Equal(t, "Cabin trip", agg.Trip.Title)
	assert.Len(t, agg.Dates, 1)
}

func TestHostOperationsOnMissingTrip(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.RenameTrip(ctx, "missing", "sometoken", "x")
	assert.ErrorIs(t, err, service.ErrNotFound)

	// No token is checked before the trip lookup
	_, err = svc.RenameTrip(ctx, "missing", "", "x")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestRenameTrip(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	res := createTrip(t, svc, "2025-06-01")

	trip, err := svc.RenameTrip(ctx, res.Trip.ID, res.Token, "  New name ")
	require.NoError(t, err)
	assert.Equal(t, "New name", trip.Title)
	assert.Equal(t, res.Trip.HostEditTokenHash, trip.HostEditTokenHash)

	_, err = svc.RenameTrip(ctx, res.Trip.ID, res.Token, "   ")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestAddAndRemoveDate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	res := createTrip(t, svc, "2025-06-01")

	date, err := svc.AddDate(ctx, res.Trip.ID, res.Token, "2025-05-30", strPtr(" Friday "))
	require.NoError(t, err)
	require.NotNil(t, date.Label)
	assert.Equal(t, "Friday", *date.Label)

	_, err = svc.AddDate(ctx, res.Trip.ID, res.Token, "30-05-2025", nil)
	assert.ErrorIs(t, err, service.ErrValidation)

	agg, err := svc.GetTrip(ctx, res.Trip.ID)
	require.NoError(t, err)
	require.Len(t, agg.Dates, 2)
	assert.Equal(t, "2025-05-30", agg.Dates[0].DateStart)

	require.NoError(t, svc.RemoveDate(ctx, res.Trip.ID, res.Token, date.ID))
	agg, err = svc.GetTrip(ctx, res.Trip.ID)
	require.NoError(t, err)
	assert.Len(t, agg.Dates, 1)

	err = svc.RemoveDate(ctx, res.Trip.ID, res.Token, date.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRemoveDateOfOtherTrip(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	mine := createTrip(t, svc, "2025-06-01")
	other := createTrip(t, svc, "2025-07-01")

	err := svc.RemoveDate(ctx, mine.Trip.ID, mine.Token, other.Dates[0].ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	agg, err := svc.GetTrip(ctx, other.Trip.ID)
	require.NoError(t, err)
	assert.Len(t, agg.Dates, 1)
}

func TestRemoveDateDropsItsVotes(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	res := createTrip(t, svc, "2025-06-01", "2025-06-02")

	p, err := svc.CreateParticipant(ctx, res.Trip.ID, "Ana")
	require.NoError(t, err)

	agg, err := svc.GetTrip(ctx, res.Trip.ID)
	require.NoError(t, err)
	ids := dateIDs(agg)
	require.NoError(t, svc.SubmitAvailability(ctx, res.Trip.ID, p.ID, []service.Response{
		{TripDateID: ids["2025-06-01"], Status: models.StatusYes},
		{TripDateID: ids["2025-06-02"], Status: models.StatusMaybe},
	}))

	require.NoError(t, svc.RemoveDate(ctx, res.Trip.ID, res.Token, ids["2025-06-01"]))

	agg, err = svc.GetTrip(ctx, res.Trip.ID)
	require.NoError(t, err)
	valid := map[string]bool{}
	for _, d := range agg.Dates {
		valid[d.ID] = true
	}
	require.Len(t, agg.Availability, 1)
	for _, a := range agg.Availability {
		assert.True(t, valid[a.TripDateID], "orphaned vote for %s", a.TripDateID)
	}
}

func TestCreateParticipant(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	res := createTrip(t, svc, "2025-06-01")

	p, err := svc.CreateParticipant(ctx, res.Trip.ID, "  Ana ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.DisplayName)
	assert.NotEmpty(t, p.ID)

	_, err = svc.CreateParticipant(ctx, res.Trip.ID, "  ")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = svc.CreateParticipant(ctx, "missing", "Ana")
	assert.ErrorIs(t, err, service.ErrNotFound)

	q, err := svc.CreateParticipant(ctx, res.Trip.ID, "Ben")
	require.NoError(t, err)

	agg, err := svc.GetTrip(ctx, res.Trip.ID)
	require.NoError(t, err)
	require.Len(t, agg.Participants, 2)
	assert.Equal(t, p.ID, agg.Participants[0].ID)
	assert.Equal(t, q.ID, agg.Participants[1].ID)
}

func TestSubmitAvailabilityReplaces(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	res := createTrip(t, svc, "2025-06-01", "2025-06-02")
	p, err := svc.CreateParticipant(ctx, res.Trip.ID, "Ana")
	require.NoError(t, err)
	agg, err := svc.GetTrip(ctx, res.Trip.ID)
	require.NoError(t, err)
	ids := dateIDs(agg)

	require.NoError(t, svc.SubmitAvailability(ctx, res.Trip.ID, p.ID, []service.Response{
		{TripDateID: ids["2025-06-01"], Status: models.StatusYes},
		{TripDateID: ids["2025-06-02"], Status: models.StatusYes},
	}))
	// Second submission covers only one date
	require.NoError(t, svc.SubmitAvailability(ctx, res.Trip.ID, p.ID, []service.Response{
		{TripDateID: ids["2025-06-01"], Status: models.StatusNo},
	}))

	agg, err = svc.GetTrip(ctx, res.Trip.ID)
	require.NoError(t, err)
	require.Len(t, agg.Availability, 2)
	got := map[string]models.AvailabilityStatus{}
	for _, a := range agg.Availability {
		got[a.TripDateID] = a.Status
	}
	assert.Equal(t, models.StatusNo, got[ids["2025-06-01"]])
	assert.Equal(t, models.StatusYes, got[ids["2025-06-02"]], "omitted dates keep their vote")
}

func TestSubmitAvailabilityRejects(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	res := createTrip(t, svc, "2025-06-01")
	other := createTrip(t, svc, "2025-07-01")
	p, err := svc.CreateParticipant(ctx, res.Trip.ID, "Ana")
	require.NoError(t, err)
	stranger, err := svc.CreateParticipant(ctx, other.Trip.ID, "Zed")
	require.NoError(t, err)
	dateID := res.Dates[0].ID

	err = svc.SubmitAvailability(ctx, res.Trip.ID, "", []service.Response{{TripDateID: dateID, Status: models.StatusYes}})
	assert.ErrorIs(t, err, service.ErrValidation)

	err = svc.SubmitAvailability(ctx, res.Trip.ID, "missing", []service.Response{{TripDateID: dateID, Status: models.StatusYes}})
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.SubmitAvailability(ctx, res.Trip.ID, stranger.ID, []service.Response{{TripDateID: dateID, Status: models.StatusYes}})
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.SubmitAvailability(ctx, res.Trip.ID, p.ID, nil)
	assert.ErrorIs(t, err, service.ErrValidation)

	err = svc.SubmitAvailability(ctx, res.Trip.ID, p.ID, []service.Response{{TripDateID: "", Status: models.StatusYes}})
	assert.ErrorIs(t, err, service.ErrValidation)

	err = svc.SubmitAvailability(ctx, res.Trip.ID, p.ID, []service.Response{
		{TripDateID: dateID, Status: models.StatusYes},
		{TripDateID: dateID, Status: models.StatusNo},
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	// One bad status rejects the whole batch
	err = svc.SubmitAvailability(ctx, res.Trip.ID, p.ID, []service.Response{
		{TripDateID: dateID, Status: models.StatusYes},
		{TripDateID: "x", Status: models.AvailabilityStatus(3)},
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	// Dates from another trip
	err = svc.SubmitAvailability(ctx, res.Trip.ID, p.ID, []service.Response{
		{TripDateID: dateID, Status: models.StatusYes},
		{TripDateID: other.Dates[0].ID, Status: models.StatusYes},
	})
	assert.ErrorIs(t, err, service.ErrNotFound)

	agg, err := svc.GetTrip(ctx, res.Trip.ID)
	require.NoError(t, err)
	assert.Empty(t, agg.Availability, "nothing is written on rejection")
}

func TestResultsScenario(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	res := createTrip(t, svc, "2025-06-01", "2025-06-02")
	agg, err := svc.GetTrip(ctx, res.Trip.ID)
	require.NoError(t, err)
	ids := dateIDs(agg)

	votes := []struct {
		name  string
		june1 models.AvailabilityStatus
		june2 models.AvailabilityStatus
	}{
		{"Ana", models.StatusYes, models.StatusMaybe},
		{"Ben", models.StatusYes, models.StatusNo},
	}
	for _, v := range votes {
		p, err := svc.CreateParticipant(ctx, res.Trip.ID, v.name)
		require.NoError(t, err)
		require.NoError(t, svc.SubmitAvailability(ctx, res.Trip.ID, p.ID, []service.Response{
			{TripDateID: ids["2025-06-01"], Status: v.june1},
			{TripDateID: ids["2025-06-02"], Status: v.june2},
		}))
	}

	results, err := svc.GetResults(ctx, res.Trip.ID)
	require.NoError(t, err)
	require.Len(t, results.Summaries, 2)
	assert.Equal(t, 4, results.Summaries[0].Score)
	assert.Equal(t, 1, results.Summaries[1].Score)
	assert.Equal(t, 4, results.MaxScore)
	require.Len(t, results.Best, 1)
	assert.Equal(t, "2025-06-01", results.Best[0].DateStart)
}
