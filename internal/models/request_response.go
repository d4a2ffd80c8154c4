package models

// Request models
type DateInput struct {
	DateStart string  `json:"date_start"`
	Label     *string `json:"label"`
}

type CreateTripRequest struct {
	Title    string      `json:"title"`
	Timezone string      `json:"timezone"`
	Dates    []DateInput `json:"dates"`
}

type RenameTripRequest struct {
	Token string  `json:"token"`
	Title *string `json:"title"`
}

type AddDateRequest struct {
	Token     string  `json:"token"`
	DateStart string  `json:"date_start"`
	Label     *string `json:"label"`
}

type CreateParticipantRequest struct {
	DisplayName string `json:"display_name"`
}

type AvailabilityResponse struct {
	TripDateID string `json:"trip_date_id" binding:"required"`
	Status     *int   `json:"status" binding:"required"`
}

type SubmitAvailabilityRequest struct {
	ParticipantID string                 `json:"participant_id"`
	Responses     []AvailabilityResponse `json:"responses" binding:"dive"`
}

// Response models
type CreateTripResponse struct {
	TripID      string `json:"tripId"`
	Token       string `json:"token"`
	GuestURL    string `json:"guestUrl"`
	HostEditURL string `json:"hostEditUrl"`
}

type RenameTripResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ParticipantResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
