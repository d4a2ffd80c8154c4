package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/tripdate-server/internal/models"
)

// SQLRepository implements the Repository interface on sqlx.
// Queries are written with ? placeholders and rebound for the driver,
// so the same code serves PostgreSQL and SQLite.
type SQLRepository struct {
	db *sqlx.DB
}

// NewSQLRepository creates a new SQL repository
func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{
		db: db,
	}
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Trip repository methods
func (r *SQLRepository) CreateTrip(ctx context.Context, trip *models.Trip) error {
	query := r.db.Rebind(`
		INSERT INTO trips (id, title, timezone, is_archived, created_at, host_edit_token_hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	// Generate a new UUID if not provided
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt.IsZero() {
		trip.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		trip.ID, trip.Title, trip.Timezone, trip.IsArchived, trip.CreatedAt, trip.HostEditTokenHash)

	return err
}

func (r *SQLRepository) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	query := r.db.Rebind(`
		SELECT id, title, timezone, is_archived, created_at, host_edit_token_hash
		FROM trips WHERE id = ?
	`)

	var trip models.Trip
	err := r.db.GetContext(ctx, &trip, query, tripID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Trip not found
		}
		return nil, err
	}

	return &trip, nil
}

func (r *SQLRepository) UpdateTripTitle(ctx context.Context, tripID, title string) (*models.Trip, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE trips SET title = ? WHERE id = ?`), title, tripID)
	if err != nil {
		return nil, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	return r.GetTrip(ctx, tripID)
}

func (r *SQLRepository) DeleteTrip(ctx context.Context, tripID string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		// Children first, in case foreign keys are not enforced
		for _, query := range []string{
			`DELETE FROM availability WHERE trip_id = ?`,
			`DELETE FROM participants WHERE trip_id = ?`,
			`DELETE FROM trip_dates WHERE trip_id = ?`,
			`DELETE FROM trips WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, tx.Rebind(query), tripID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Trip date repository methods
func (r *SQLRepository) CreateTripDates(ctx context.Context, dates []models.TripDate) error {
	query := r.db.Rebind(`INSERT INTO trip_dates (id, trip_id, date_start, label) VALUES (?, ?, ?, ?)`)

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		for i := range dates {
			if dates[i].ID == "" {
				dates[i].ID = uuid.New().String()
			}
			d := dates[i]
			if _, err := tx.ExecContext(ctx, query, d.ID, d.TripID, d.DateStart, d.Label); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLRepository) GetTripDate(ctx context.Context, tripDateID string) (*models.TripDate, error) {
	query := r.db.Rebind(`SELECT id, trip_id, date_start, label FROM trip_dates WHERE id = ?`)

	var date models.TripDate
	err := r.db.GetContext(ctx, &date, query, tripDateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Date not found
		}
		return nil, err
	}

	return &date, nil
}

func (r *SQLRepository) ListTripDates(ctx context.Context, tripID string) ([]models.TripDate, error) {
	query := r.db.Rebind(`
		SELECT id, trip_id, date_start, label FROM trip_dates
		WHERE trip_id = ?
		ORDER BY date_start ASC, id ASC
	`)

	dates := []models.TripDate{}
	if err := r.db.SelectContext(ctx, &dates, query, tripID); err != nil {
		return nil, err
	}

	return dates, nil
}

func (r *SQLRepository) DeleteTripDate(ctx context.Context, tripDateID string) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM availability WHERE trip_date_id = ?`), tripDateID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM trip_dates WHERE id = ?`), tripDateID)
		return err
	})
}

// Participant repository methods
func (r *SQLRepository) CreateParticipant(ctx context.Context, participant *models.Participant) error {
	query := r.db.Rebind(`
		INSERT INTO participants (id, trip_id, display_name, created_at)
		VALUES (?, ?, ?, ?)
	`)

	if participant.ID == "" {
		participant.ID = uuid.New().String()
	}
	if participant.CreatedAt.IsZero() {
		participant.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		participant.ID, participant.TripID, participant.DisplayName, participant.CreatedAt)

	return err
}

func (r *SQLRepository) GetParticipant(ctx context.Context, participantID string) (*models.Participant, error) {
	query := r.db.Rebind(`SELECT id, trip_id, display_name, created_at FROM participants WHERE id = ?`)

	var participant models.Participant
	err := r.db.GetContext(ctx, &participant, query, participantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Participant not found
		}
		return nil, err
	}

	return &participant, nil
}

func (r *SQLRepository) ListParticipants(ctx context.Context, tripID string) ([]models.Participant, error) {
	query := r.db.Rebind(`
		SELECT id, trip_id, display_name, created_at FROM participants
		WHERE trip_id = ?
		ORDER BY created_at ASC, id ASC
	`)

	participants := []models.Participant{}
	if err := r.db.SelectContext(ctx, &participants, query, tripID); err != nil {
		return nil, err
	}

	return participants, nil
}

// Availability repository methods
func (r *SQLRepository) UpsertAvailability(ctx context.Context, entries []models.AvailabilityEntry) error {
	query := r.db.Rebind(`
		INSERT INTO availability (id, trip_id, participant_id, trip_date_id, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (participant_id, trip_date_id)
		DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
	`)

	now := time.Now().UTC()
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		for i := range entries {
			if entries[i].ID == "" {
				entries[i].ID = uuid.New().String()
			}
			e := entries[i]
			if _, err := tx.ExecContext(ctx, query,
				e.ID, e.TripID, e.ParticipantID, e.TripDateID, int(e.Status), now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLRepository) ListAvailability(ctx context.Context, tripID string) ([]models.AvailabilityEntry, error) {
	query := r.db.Rebind(`
		SELECT id, trip_id, participant_id, trip_date_id, status
		FROM availability WHERE trip_id = ?
	`)

	entries := []models.AvailabilityEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, tripID); err != nil {
		return nil, err
	}

	return entries, nil
}

// withTx runs fn in a transaction, rolling back when it fails
func (r *SQLRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
