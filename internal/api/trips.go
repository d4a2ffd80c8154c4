package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rongwang/tripdate-server/internal/models"
	"github.com/rongwang/tripdate-server/internal/service"
)

func (h *Handler) CreateTrip(c *gin.Context) {
	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	in := service.CreateTripInput{Title: req.Title, Timezone: req.Timezone}
	for _, d := range req.Dates {
		in.Dates = append(in.Dates, service.DateInput{DateStart: d.DateStart, Label: d.Label})
	}

	res, err := h.svc.CreateTrip(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	guestURL, hostEditURL := h.links(c, res.Trip.ID, res.Token)
	c.JSON(http.StatusCreated, models.CreateTripResponse{
		TripID:      res.Trip.ID,
		Token:       res.Token,
		GuestURL:    guestURL,
		HostEditURL: hostEditURL,
	})
}

func (h *Handler) GetTrip(c *gin.Context) {
	agg, err := h.svc.GetTrip(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agg)
}

func (h *Handler) GetResults(c *gin.Context) {
	results, err := h.svc.GetResults(c.Request.Context(), c.Param("tripId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *Handler) RenameTrip(c *gin.Context) {
	var req models.RenameTripRequest
	if !h.bindHostRequest(c, service.OpRenameTrip, &req) {
		return
	}

	title := ""
	if req.Title != nil {
		title = *req.Title
	}

	trip, err := h.svc.RenameTrip(c.Request.Context(), c.Param("tripId"), hostToken(c, req.Token), title)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RenameTripResponse{ID: trip.ID, Title: trip.Title})
}

func (h *Handler) AddDate(c *gin.Context) {
	var req models.AddDateRequest
	if !h.bindHostRequest(c, service.OpAddDate, &req) {
		return
	}

	date, err := h.svc.AddDate(c.Request.Context(), c.Param("tripId"), hostToken(c, req.Token), req.DateStart, req.Label)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, date)
}

func (h *Handler) RemoveDate(c *gin.Context) {
	err := h.svc.RemoveDate(c.Request.Context(), c.Param("tripId"), hostToken(c, ""), c.Param("tripDateId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

func (h *Handler) CreateParticipant(c *gin.Context) {
	var req models.CreateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.svc.CreateParticipant(c.Request.Context(), c.Param("tripId"), req.DisplayName)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.ParticipantResponse{ID: p.ID, DisplayName: p.DisplayName})
}

func (h *Handler) SubmitAvailability(c *gin.Context) {
	var req models.SubmitAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	responses := make([]service.Response, len(req.Responses))
	for i, r := range req.Responses {
		responses[i] = service.Response{TripDateID: r.TripDateID, Status: models.AvailabilityStatus(*r.Status)}
	}

	if err := h.svc.SubmitAvailability(c.Request.Context(), c.Param("tripId"), req.ParticipantID, responses); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// bindHostRequest binds the body of a host-token operation. When the body
// does not bind, the token is still checked first so that a bad token is
// reported as unauthorized whatever the payload looks like.
func (h *Handler) bindHostRequest(c *gin.Context, op service.Operation, req interface{}) bool {
	bindErr := c.ShouldBindBodyWith(req, binding.JSON)
	if bindErr == nil {
		return true
	}

	cred := service.Credentials{HostToken: hostToken(c, looseBodyToken(c))}
	if err := h.svc.Authorize(c.Request.Context(), op, c.Param("tripId"), cred); err != nil {
		h.respondError(c, err)
		return false
	}

	badRequest(c, bindErr)
	return false
}

// looseBodyToken pulls a string "token" field out of a body that failed to bind
func looseBodyToken(c *gin.Context) string {
	raw, ok := c.Get(gin.BodyBytesKey)
	if !ok {
		return ""
	}
	body, _ := raw.([]byte)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	var token string
	if err := json.Unmarshal(fields["token"], &token); err != nil {
		return ""
	}
	return token
}
