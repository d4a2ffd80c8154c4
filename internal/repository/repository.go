package repository

import (
	"context"

	"github.com/rongwang/tripdate-server/internal/models"
)

// Repository is the row-oriented storage capability set the core is built on.
// Getters return (nil, nil) when the row does not exist.
type Repository interface {
	// Trip operations
	CreateTrip(ctx context.Context, trip *models.Trip) error
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)
	UpdateTripTitle(ctx context.Context, tripID, title string) (*models.Trip, error)
	DeleteTrip(ctx context.Context, tripID string) error

	// Trip date operations
	CreateTripDates(ctx context.Context, dates []models.TripDate) error
	GetTripDate(ctx context.Context, tripDateID string) (*models.TripDate, error)
	ListTripDates(ctx context.Context, tripID string) ([]models.TripDate, error)
	// DeleteTripDate removes the date and every availability row referencing it
	DeleteTripDate(ctx context.Context, tripDateID string) error

	// Participant operations
	CreateParticipant(ctx context.Context, participant *models.Participant) error
	GetParticipant(ctx context.Context, participantID string) (*models.Participant, error)
	ListParticipants(ctx context.Context, tripID string) ([]models.Participant, error)

	// Availability operations
	// UpsertAvailability writes all entries or none, replacing any existing
	// row with the same (participant_id, trip_date_id)
	UpsertAvailability(ctx context.Context, entries []models.AvailabilityEntry) error
	ListAvailability(ctx context.Context, tripID string) ([]models.AvailabilityEntry, error)

	Ping(ctx context.Context) error
}
