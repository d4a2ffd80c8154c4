package service

import (
	"context"

	"github.com/rongwang/tripdate-server/internal/models"
	"github.com/rongwang/tripdate-server/internal/repository"
	"github.com/rongwang/tripdate-server/internal/utils"
)

// Service defines all the business logic operations
type Service interface {
	// Registry
	CreateTrip(ctx context.Context, in CreateTripInput) (*CreateTripResult, error)
	GetTrip(ctx context.Context, tripID string) (*models.TripAggregate, error)
	RenameTrip(ctx context.Context, tripID, token, title string) (*models.Trip, error)
	AddDate(ctx context.Context, tripID, token, dateStart string, label *string) (*models.TripDate, error)
	RemoveDate(ctx context.Context, tripID, token, tripDateID string) error
	CreateParticipant(ctx context.Context, tripID, displayName string) (*models.Participant, error)

	// Ledger
	SubmitAvailability(ctx context.Context, tripID, participantID string, responses []Response) error

	// Recommendation
	GetResults(ctx context.Context, tripID string) (*models.TripResults, error)

	// Authorize runs the access check for op alone, for callers that
	// must reject bad credentials before they can parse a payload.
	Authorize(ctx context.Context, op Operation, tripID string, cred Credentials) error

	Ping(ctx context.Context) error
}

// CreateTripInput is the host's request for a new trip
type CreateTripInput struct {
	Title    string
	Timezone string
	Dates    []DateInput
}

// DateInput is one candidate date at creation time
type DateInput struct {
	DateStart string
	Label     *string
}

// CreateTripResult carries the plaintext token. It is never available again.
type CreateTripResult struct {
	Trip  *models.Trip
	Dates []models.TripDate
	Token string
}

// Response is one (date, status) pair of an availability submission
type Response struct {
	TripDateID string
	Status     models.AvailabilityStatus
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo   repository.Repository
	gate   *Gate
	logger *utils.Logger
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, logger *utils.Logger) Service {
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &DefaultService{
		repo:   repo,
		gate:   NewGate(repo),
		logger: logger,
	}
}

func (s *DefaultService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *DefaultService) Authorize(ctx context.Context, op Operation, tripID string, cred Credentials) error {
	_, err := s.gate.Authorize(ctx, op, tripID, cred)
	return err
}
