package counting

import (
	"stocktake/core/faults"
	"stocktake/core/logger"
	"stocktake/feature/counting/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for counting sessions.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the counting routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sessions")
	group.Post("/", h.HandleCreateSession)
	group.Get("/", h.HandleListSessions)
	group.Get("/:id", h.HandleGetSessionState)
	group.Post("/:id/events", h.HandleSubmitEvents)
	group.Put("/:id/overrides/:item", h.HandleSetOverride)
	group.Delete("/:id/overrides/:item", h.HandleClearOverride)
	group.Post("/:id/finalize", h.HandleFinalize)
}

type createSessionRequest struct {
	Name              string `json:"name"`
	HostID            string `json:"host_id"`
	CreatedBy         string `json:"created_by"`
	BaselineSessionID string `json:"baseline_session_id"`
}

// HandleCreateSession starts a new counting session.
// @Summary Create Session
// @Description Start a new collaborative counting session in active status.
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body createSessionRequest true "Session parameters"
// @Success 201 {object} models.Session "Created session"
// @Failure 404 {object} map[string]string "Baseline session not found"
// @Failure 422 {object} map[string]string "Validation error"
// @Router /sessions [post]
func (h *Handler) HandleCreateSession(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return malformedBody(c, err)
	}

	session, err := h.service.CreateSession(c.Context(), req.Name, req.HostID, req.CreatedBy, req.BaselineSessionID)
	if err != nil {
		l.Error("Create session failed", zap.Error(err))
		return writeFault(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// HandleListSessions lists all sessions.
// @Summary List Sessions
// @Description List all counting sessions, newest first.
// @Tags sessions
// @Produce json
// @Success 200 {array} models.Session "Sessions"
// @Router /sessions [get]
func (h *Handler) HandleListSessions(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	sessions, err := h.service.ListSessions(c.Context())
	if err != nil {
		l.Error("List sessions failed", zap.Error(err))
		return writeFault(c, err)
	}
	return c.JSON(sessions)
}

// HandleGetSessionState returns the current state of a session.
// @Summary Get Session State
// @Description Current totals, per-actor contributions, and participants for a session. Pure read; safe to poll.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.SessionState "Session state"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /sessions/{id} [get]
func (h *Handler) HandleGetSessionState(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	state, err := h.service.GetSessionState(c.Context(), c.Params("id"))
	if err != nil {
		l.Error("Get session state failed", zap.Error(err))
		return writeFault(c, err)
	}
	return c.JSON(state)
}

type submitEventsRequest struct {
	ActorID   string              `json:"actor_id"`
	ActorName string              `json:"actor_name"`
	Events    []models.EventInput `json:"events"`
}

// HandleSubmitEvents records a batch of count events.
// @Summary Submit Count Events
// @Description Record a batch of signed quantity deltas. Resubmitting the same event ids is a safe no-op.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body submitEventsRequest true "Event batch"
// @Success 200 {object} models.SubmitResult "Accepted count and fresh totals"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "Session is no longer active"
// @Failure 422 {object} map[string]string "Validation error"
// @Router /sessions/{id}/events [post]
func (h *Handler) HandleSubmitEvents(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req submitEventsRequest
	if err := c.BodyParser(&req); err != nil {
		return malformedBody(c, err)
	}

	result, err := h.service.SubmitEvents(c.Context(), c.Params("id"), req.ActorID, req.ActorName, req.Events)
	if err != nil {
		l.Error("Submit events failed", zap.Error(err))
		return writeFault(c, err)
	}
	return c.JSON(result)
}

type setOverrideRequest struct {
	Quantity int64  `json:"quantity"`
	SetBy    string `json:"set_by"`
}

// HandleSetOverride sets an authoritative quantity for one item.
// @Summary Set Manual Override
// @Description Record an authoritative quantity for one item, superseding the summed event total at finalize time.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param item path string true "Item key"
// @Param request body setOverrideRequest true "Override"
// @Success 200 {object} models.ManualOverride "Saved override"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "Session is locked"
// @Router /sessions/{id}/overrides/{item} [put]
func (h *Handler) HandleSetOverride(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req setOverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return malformedBody(c, err)
	}

	override, err := h.service.SetOverride(c.Context(), c.Params("id"), c.Params("item"), req.Quantity, req.SetBy)
	if err != nil {
		l.Error("Set override failed", zap.Error(err))
		return writeFault(c, err)
	}
	return c.JSON(override)
}

// HandleClearOverride removes the override for one item.
// @Summary Clear Manual Override
// @Description Remove the override for one item, reverting to the summed event total.
// @Tags sessions
// @Param id path string true "Session ID"
// @Param item path string true "Item key"
// @Success 204 "Override removed"
// @Failure 404 {object} map[string]string "Session or override not found"
// @Failure 409 {object} map[string]string "Session is locked"
// @Router /sessions/{id}/overrides/{item} [delete]
func (h *Handler) HandleClearOverride(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if err := h.service.ClearOverride(c.Context(), c.Params("id"), c.Params("item")); err != nil {
		l.Error("Clear override failed", zap.Error(err))
		return writeFault(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type finalizeRequest struct {
	FinalizedBy string `json:"finalized_by"`
	Lock        bool   `json:"lock"`
}

// HandleFinalize freezes the session totals and reports mismatches.
// @Summary Finalize Session
// @Description Freeze totals into a snapshot, merge overrides, and diff against the previous locked session.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body finalizeRequest true "Finalize parameters"
// @Success 200 {object} models.FinalizeResult "Merged totals and sorted mismatches"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "Session is already locked"
// @Router /sessions/{id}/finalize [post]
func (h *Handler) HandleFinalize(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req finalizeRequest
	if err := c.BodyParser(&req); err != nil {
		return malformedBody(c, err)
	}

	result, err := h.service.Finalize(c.Context(), c.Params("id"), req.FinalizedBy, req.Lock)
	if err != nil {
		l.Error("Finalize failed", zap.Error(err))
		return writeFault(c, err)
	}
	return c.JSON(result)
}

func malformedBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error": "malformed request body: " + err.Error(),
		"code":  faults.CodeValidation,
	})
}

func writeFault(c *fiber.Ctx, err error) error {
	return c.Status(faults.HTTPStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
		"code":  faults.CodeOf(err),
	})
}
