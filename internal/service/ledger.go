package service

import (
	"context"

	"github.com/rongwang/tripdate-server/internal/models"
)

// SubmitAvailability upserts the participant's votes. The batch is checked
// in full before anything is written and then stored all-or-nothing.
// Dates left out of the batch keep whatever vote they had.
func (s *DefaultService) SubmitAvailability(ctx context.Context, tripID, participantID string, responses []Response) error {
	if _, err := s.gate.Authorize(ctx, OpSubmitAvailability, tripID, Credentials{ParticipantID: participantID}); err != nil {
		return err
	}

	if len(responses) == 0 {
		return validationError("responses array is required")
	}

	seen := make(map[string]bool, len(responses))
	for _, r := range responses {
		if r.TripDateID == "" {
			return validationError("trip_date_id is required for each response")
		}
		if !r.Status.Valid() {
			return validationError("invalid status value (must be 0, 1, or 2)")
		}
		if seen[r.TripDateID] {
			return validationError("duplicate trip_date_id %s in responses", r.TripDateID)
		}
		seen[r.TripDateID] = true
	}

	dates, err := s.repo.ListTripDates(ctx, tripID)
	if err != nil {
		return storageError("failed to load dates", err)
	}
	owned := make(map[string]bool, len(dates))
	for _, d := range dates {
		owned[d.ID] = true
	}

	entries := make([]models.AvailabilityEntry, len(responses))
	for i, r := range responses {
		if !owned[r.TripDateID] {
			return notFoundError("date not found")
		}
		entries[i] = models.AvailabilityEntry{
			TripID:        tripID,
			ParticipantID: participantID,
			TripDateID:    r.TripDateID,
			Status:        r.Status,
		}
	}

	if err := s.repo.UpsertAvailability(ctx, entries); err != nil {
		return storageError("failed to save availability", err)
	}

	return nil
}
