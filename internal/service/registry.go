package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rongwang/tripdate-server/internal/models"
	"github.com/rongwang/tripdate-server/internal/recommend"
	"github.com/rongwang/tripdate-server/internal/utils"
)

// CreateTrip stores the trip and its dates and returns the edit token.
// The trip row and the date rows are written in two steps; when the dates
// fail the trip is deleted again. A crash between the steps can still
// leave a trip without dates.
func (s *DefaultService) CreateTrip(ctx context.Context, in CreateTripInput) (*CreateTripResult, error) {
	if _, err := s.gate.Authorize(ctx, OpCreateTrip, "", Credentials{}); err != nil {
		return nil, err
	}

	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	timezone := strings.TrimSpace(in.Timezone)
	if timezone == "" {
		return nil, validationError("timezone is required")
	}
	if len(in.Dates) == 0 {
		return nil, validationError("at least one date is required")
	}

	dates := make([]models.TripDate, len(in.Dates))
	for i, d := range in.Dates {
		if err := validateDateStart(d.DateStart); err != nil {
			return nil, err
		}
		label, err := normalizeLabel(d.Label)
		if err != nil {
			return nil, err
		}
		dates[i] = models.TripDate{DateStart: d.DateStart, Label: label}
	}

	token, err := utils.GenerateEditToken()
	if err != nil {
		return nil, storageError("failed to generate edit token", err)
	}

	trip := &models.Trip{
		ID:                uuid.New().String(),
		Title:             title,
		Timezone:          timezone,
		HostEditTokenHash: utils.HashToken(token),
	}
	if err := s.repo.CreateTrip(ctx, trip); err != nil {
		return nil, storageError("failed to create trip", err)
	}

	for i := range dates {
		dates[i].ID = uuid.New().String()
		dates[i].TripID = trip.ID
	}
	if err := s.repo.CreateTripDates(ctx, dates); err != nil {
		// Best-effort cleanup
		if delErr := s.repo.DeleteTrip(ctx, trip.ID); delErr != nil {
			s.logger.Error("trip %s left without dates, cleanup failed: %v", trip.ID, delErr)
		}
		return nil, storageError("failed to create trip dates", err)
	}

	s.logger.Info("created trip %s with %d dates", trip.ID, len(dates))
	return &CreateTripResult{Trip: trip, Dates: dates, Token: token}, nil
}

// GetTrip loads the full aggregate of a trip
func (s *DefaultService) GetTrip(ctx context.Context, tripID string) (*models.TripAggregate, error) {
	trip, err := s.gate.Authorize(ctx, OpGetTrip, tripID, Credentials{})
	if err != nil {
		return nil, err
	}
	return s.loadAggregate(ctx, trip)
}

// GetResults scores the trip's dates from a fresh aggregate
func (s *DefaultService) GetResults(ctx context.Context, tripID string) (*models.TripResults, error) {
	trip, err := s.gate.Authorize(ctx, OpGetResults, tripID, Credentials{})
	if err != nil {
		return nil, err
	}
	agg, err := s.loadAggregate(ctx, trip)
	if err != nil {
		return nil, err
	}
	return recommend.Summarize(agg), nil
}

func (s *DefaultService) loadAggregate(ctx context.Context, trip *models.Trip) (*models.TripAggregate, error) {
	dates, err := s.repo.ListTripDates(ctx, trip.ID)
	if err != nil {
		return nil, storageError("failed to load dates", err)
	}

	participants, err := s.repo.ListParticipants(ctx, trip.ID)
	if err != nil {
		return nil, storageError("failed to load participants", err)
	}

	availability, err := s.repo.ListAvailability(ctx, trip.ID)
	if err != nil {
		return nil, storageError("failed to load availability", err)
	}

	return &models.TripAggregate{
		Trip:         *trip,
		Dates:        dates,
		Participants: participants,
		Availability: availability,
	}, nil
}

// RenameTrip changes the title. Requires the host token.
func (s *DefaultService) RenameTrip(ctx context.Context, tripID, token, title string) (*models.Trip, error) {
	if _, err := s.gate.Authorize(ctx, OpRenameTrip, tripID, Credentials{HostToken: token}); err != nil {
		return nil, err
	}

	title, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}

	trip, err := s.repo.UpdateTripTitle(ctx, tripID, title)
	if err != nil {
		return nil, storageError("failed to update trip", err)
	}
	if trip == nil {
		return nil, notFoundError("trip not found")
	}

	return trip, nil
}

// AddDate adds a candidate date. Requires the host token.
func (s *DefaultService) AddDate(ctx context.Context, tripID, token, dateStart string, label *string) (*models.TripDate, error) {
	if _, err := s.gate.Authorize(ctx, OpAddDate, tripID, Credentials{HostToken: token}); err != nil {
		return nil, err
	}

	if err := validateDateStart(dateStart); err != nil {
		return nil, err
	}
	label, err := normalizeLabel(label)
	if err != nil {
		return nil, err
	}

	date := models.TripDate{
		ID:        uuid.New().String(),
		TripID:    tripID,
		DateStart: dateStart,
		Label:     label,
	}
	if err := s.repo.CreateTripDates(ctx, []models.TripDate{date}); err != nil {
		return nil, storageError("failed to add date", err)
	}

	return &date, nil
}

// RemoveDate deletes a candidate date together with all votes for it.
// Requires the host token.
func (s *DefaultService) RemoveDate(ctx context.Context, tripID, token, tripDateID string) error {
	if _, err := s.gate.Authorize(ctx, OpRemoveDate, tripID, Credentials{HostToken: token}); err != nil {
		return err
	}

	if tripDateID == "" {
		return validationError("tripDateId is required")
	}

	date, err := s.repo.GetTripDate(ctx, tripDateID)
	if err != nil {
		return storageError("failed to load date", err)
	}
	if date == nil || date.TripID != tripID {
		return notFoundError("date not found")
	}

	if err := s.repo.DeleteTripDate(ctx, tripDateID); err != nil {
		return storageError("failed to delete date", err)
	}

	return nil
}

// CreateParticipant registers a guest. No credentials are needed.
func (s *DefaultService) CreateParticipant(ctx context.Context, tripID, displayName string) (*models.Participant, error) {
	if _, err := s.gate.Authorize(ctx, OpCreateParticipant, tripID, Credentials{}); err != nil {
		return nil, err
	}

	name, err := normalizeDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	participant := &models.Participant{
		ID:          uuid.New().String(),
		TripID:      tripID,
		DisplayName: name,
	}
	if err := s.repo.CreateParticipant(ctx, participant); err != nil {
		return nil, storageError("failed to create participant", err)
	}

	return participant, nil
}
