package models

import (
	"time"
)

// AvailabilityStatus is a participant's answer for one candidate date
type AvailabilityStatus int

const (
	StatusNo    AvailabilityStatus = 0
	StatusMaybe AvailabilityStatus = 1
	StatusYes   AvailabilityStatus = 2
)

// Valid reports whether s is one of No, Maybe or Yes
func (s AvailabilityStatus) Valid() bool {
	return s == StatusNo || s == StatusMaybe || s == StatusYes
}

func (s AvailabilityStatus) String() string {
	switch s {
	case StatusNo:
		return "no"
	case StatusMaybe:
		return "maybe"
	case StatusYes:
		return "yes"
	}
	return "unknown"
}

// Trip is the top-level poll a host creates
type Trip struct {
	ID                string    `db:"id" json:"id"`
	Title             string    `db:"title" json:"title"`
	Timezone          string    `db:"timezone" json:"timezone"`
	IsArchived        bool      `db:"is_archived" json:"is_archived"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	HostEditTokenHash string    `db:"host_edit_token_hash" json:"-"` // SHA-256 of the edit token, never returned
}

// TripDate is one candidate calendar day of a trip
type TripDate struct {
	ID        string  `db:"id" json:"id"`
	TripID    string  `db:"trip_id" json:"trip_id"`
	DateStart string  `db:"date_start" json:"date_start"` // YYYY-MM-DD
	Label     *string `db:"label" json:"label"`
}

// Participant is an anonymous guest scoped to one trip
type Participant struct {
	ID          string    `db:"id" json:"id"`
	TripID      string    `db:"trip_id" json:"trip_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AvailabilityEntry is one participant's vote for one date.
// At most one entry exists per (ParticipantID, TripDateID).
type AvailabilityEntry struct {
	ID            string             `db:"id" json:"id"`
	TripID        string             `db:"trip_id" json:"trip_id"`
	ParticipantID string             `db:"participant_id" json:"participant_id"`
	TripDateID    string             `db:"trip_date_id" json:"trip_date_id"`
	Status        AvailabilityStatus `db:"status" json:"status"`
}

// TripAggregate is the full read view of a trip
type TripAggregate struct {
	Trip         Trip                `json:"trip"`
	Dates        []TripDate          `json:"dates"`
	Participants []Participant       `json:"participants"`
	Availability []AvailabilityEntry `json:"availability"`
}

// DateSummary holds the vote counts and score of one date
type DateSummary struct {
	Date   TripDate `json:"date"`
	Yes    int      `json:"yes"`
	Maybe  int      `json:"maybe"`
	No     int      `json:"no"`
	Score  int      `json:"score"`
	IsBest bool     `json:"is_best"`
}

// TripResults is the recommendation derived from a TripAggregate
type TripResults struct {
	TripID    string        `json:"trip_id"`
	Summaries []DateSummary `json:"summaries"`
	MaxScore  int           `json:"max_score"`
	Best      []TripDate    `json:"best"`
}
