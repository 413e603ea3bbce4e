package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"parking-service/internal/http/middleware"
	"parking-service/internal/repository"
	"parking-service/internal/service"
)

// Handler serves the read-only reporting API consumed by the dashboard: the
// entry journal and the incident log, newest first. The only write surface
// is incident triage, which touches resolved/resolution_notes and nothing
// the decision engine reads.
type Handler struct {
	entryRepo    *repository.EntryRepository
	incidentRepo *repository.IncidentRepository
	incidents    *service.IncidentReporter
	log          zerolog.Logger
}

func NewHandler(
	entryRepo *repository.EntryRepository,
	incidentRepo *repository.IncidentRepository,
	incidents *service.IncidentReporter,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		entryRepo:    entryRepo,
		incidentRepo: incidentRepo,
		incidents:    incidents,
		log:          log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := r.Group("/api")
	{
		api.GET("/parking_entries", h.listEntries)
		api.GET("/security_incidents", h.listIncidents)
	}

	triage := api.Group("/")
	triage.Use(authMiddleware)
	{
		triage.PUT("/security_incidents/:id/resolve", h.resolveIncident)
	}
}

func (h *Handler) listEntries(c *gin.Context) {
	entries, err := h.entryRepo.ListNewestFirst(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list parking entries")
		c.JSON(http.StatusInternalServerError, errorResponse("failed to list parking entries"))
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) listIncidents(c *gin.Context) {
	incidents, err := h.incidentRepo.ListNewestFirst(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list security incidents")
		c.JSON(http.StatusInternalServerError, errorResponse("failed to list security incidents"))
		return
	}
	c.JSON(http.StatusOK, incidents)
}

func (h *Handler) resolveIncident(c *gin.Context) {
	claims, ok := middleware.MustClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing claims"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid incident id"))
		return
	}

	var req struct {
		ResolutionNotes string `json:"resolution_notes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.incidents.Resolve(c.Request.Context(), id, req.ResolutionNotes); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, errorResponse("incident not found"))
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, errorResponse("resolution notes are required"))
		default:
			h.log.Error().Err(err).Str("incident_id", id.String()).Msg("failed to resolve incident")
			c.JSON(http.StatusInternalServerError, errorResponse("failed to resolve incident"))
		}
		return
	}

	h.log.Info().
		Str("incident_id", id.String()).
		Str("resolved_by", claims.UserID).
		Msg("incident resolved")

	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
