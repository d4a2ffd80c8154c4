package service

import (
	"context"
	"fmt"

	"github.com/rongwang/tripdate-server/internal/models"
	"github.com/rongwang/tripdate-server/internal/repository"
	"github.com/rongwang/tripdate-server/internal/utils"
)

// Capability is the credential an operation demands
type Capability int

const (
	// CapNone is open to anyone
	CapNone Capability = iota
	// CapParticipantOwned requires a participant id belonging to the trip
	CapParticipantOwned
	// CapHostToken requires the trip's host edit token
	CapHostToken
)

// Operation names every operation the gate knows about
type Operation string

const (
	OpCreateTrip         Operation = "create_trip"
	OpGetTrip            Operation = "get_trip"
	OpGetResults         Operation = "get_results"
	OpRenameTrip         Operation = "rename_trip"
	OpAddDate            Operation = "add_date"
	OpRemoveDate         Operation = "remove_date"
	OpCreateParticipant  Operation = "create_participant"
	OpSubmitAvailability Operation = "submit_availability"
)

// Policy maps each operation to its capability
var Policy = map[Operation]Capability{
	OpCreateTrip:         CapNone,
	OpGetTrip:            CapNone,
	OpGetResults:         CapNone,
	OpCreateParticipant:  CapNone,
	OpSubmitAvailability: CapParticipantOwned,
	OpRenameTrip:         CapHostToken,
	OpAddDate:            CapHostToken,
	OpRemoveDate:         CapHostToken,
}

// Credentials carries whatever the caller presented
type Credentials struct {
	HostToken     string
	ParticipantID string
}

// Gate checks credentials against Policy before an operation runs
type Gate struct {
	repo repository.Repository
}

// NewGate creates a gate reading trips and participants from repo
func NewGate(repo repository.Repository) *Gate {
	return &Gate{repo: repo}
}

// Authorize checks cred for op on tripID and returns the trip.
// For CapHostToken a missing or wrong token both yield the same
// unauthorized error; a missing token is rejected before any lookup.
func (g *Gate) Authorize(ctx context.Context, op Operation, tripID string, cred Credentials) (*models.Trip, error) {
	capability, ok := Policy[op]
	if !ok {
		return nil, fmt.Errorf("no access policy for operation %q", op)
	}

	if capability == CapHostToken && cred.HostToken == "" {
		return nil, unauthorizedError("invalid or missing host token")
	}
	if capability == CapParticipantOwned && cred.ParticipantID == "" {
		return nil, validationError("participant_id is required")
	}

	if tripID == "" {
		if op == OpCreateTrip {
			return nil, nil
		}
		return nil, validationError("tripId is required")
	}

	trip, err := g.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, storageError("failed to load trip", err)
	}
	if trip == nil {
		return nil, notFoundError("trip not found")
	}

	switch capability {
	case CapHostToken:
		if !utils.VerifyToken(cred.HostToken, trip.HostEditTokenHash) {
			return nil, unauthorizedError("invalid or missing host token")
		}
	case CapParticipantOwned:
		participant, err := g.repo.GetParticipant(ctx, cred.ParticipantID)
		if err != nil {
			return nil, storageError("failed to load participant", err)
		}
		if participant == nil || participant.TripID != trip.ID {
			return nil, notFoundError("participant not found")
		}
	}

	return trip, nil
}
