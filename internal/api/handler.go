package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/tripdate-server/internal/models"
	"github.com/rongwang/tripdate-server/internal/service"
	"github.com/rongwang/tripdate-server/internal/utils"
)

// Handler serves the trip API over Gin
type Handler struct {
	svc           service.Service
	logger        *utils.Logger
	publicBaseURL string
}

// NewHandler creates a new API handler. publicBaseURL prefixes the
// guest and host links when the request carries no Origin header.
func NewHandler(svc service.Service, logger *utils.Logger, publicBaseURL string) *Handler {
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &Handler{
		svc:           svc,
		logger:        logger,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// SetupRoutes registers all routes. Extra middleware (rate limiting)
// applies to every /api route except the health check.
func (h *Handler) SetupRoutes(router *gin.Engine, middleware ...gin.HandlerFunc) {
	router.GET("/api/health", h.Health)

	api := router.Group("/api")
	api.Use(middleware...)
	api.Use(HostTokenMiddleware())

	trips := api.Group("/trips")
	trips.POST("", h.CreateTrip)
	trips.GET("/:tripId", h.GetTrip)
	trips.GET("/:tripId/results", h.GetResults)
	trips.PATCH("/:tripId/host", h.RenameTrip)
	trips.POST("/:tripId/dates", h.AddDate)
	trips.DELETE("/:tripId/dates/:tripDateId", h.RemoveDate)
	trips.POST("/:tripId/participants", h.CreateParticipant)
	trips.PUT("/:tripId/availability", h.SubmitAvailability)
	trips.POST("/:tripId/availability", h.SubmitAvailability)
}

// Health reports whether the database answers
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.svc.Ping(ctx); err != nil {
		h.logger.Warn("health check failed: %v", err)
		writeError(c, http.StatusServiceUnavailable, CodeUnavailable, "database unreachable")
		return
	}
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok", Database: "ok"})
}

// links builds the guest and host URLs handed out after creating a trip
func (h *Handler) links(c *gin.Context, tripID, token string) (guestURL, hostEditURL string) {
	base := strings.TrimRight(c.GetHeader("Origin"), "/")
	if base == "" {
		base = h.publicBaseURL
	}
	guestURL = base + "/t/" + tripID
	hostEditURL = guestURL + "/edit?token=" + url.QueryEscape(token)
	return guestURL, hostEditURL
}
