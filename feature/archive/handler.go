package archive

import (
	"stocktake/core/faults"
	"stocktake/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the snapshot archive.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the archive routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/archive")
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleFetch)
	group.Post("/:id", h.HandleExport)
}

// HandleExport re-exports a locked session's snapshot to object storage.
// @Summary Export Snapshot
// @Description Write the final snapshot of a locked session to the archive bucket.
// @Tags archive
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]string "Object name"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "Session is not locked"
// @Router /archive/{id} [post]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	object, err := h.service.Export(c.Context(), c.Params("id"))
	if err != nil {
		l.Error("Snapshot export failed", zap.Error(err))
		return c.Status(faults.HTTPStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
			"code":  faults.CodeOf(err),
		})
	}
	return c.JSON(fiber.Map{"object": object})
}

// HandleFetch streams a previously exported snapshot report.
// @Summary Fetch Archived Snapshot
// @Description Download the archived snapshot report for a session.
// @Tags archive
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Report "Snapshot report"
// @Failure 404 {object} map[string]string "No archived snapshot"
// @Router /archive/{id} [get]
func (h *Handler) HandleFetch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	body, err := h.service.Fetch(c.Context(), c.Params("id"))
	if err != nil {
		l.Error("Snapshot fetch failed", zap.Error(err))
		return c.Status(faults.HTTPStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
			"code":  faults.CodeOf(err),
		})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// HandleList lists archived snapshot objects.
// @Summary List Archived Snapshots
// @Description List the object names of all archived snapshot reports.
// @Tags archive
// @Produce json
// @Success 200 {array} string "Object names"
// @Router /archive [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	names, err := h.service.List(c.Context())
	if err != nil {
		l.Error("Snapshot list failed", zap.Error(err))
		return c.Status(faults.HTTPStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
			"code":  faults.CodeOf(err),
		})
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(names)
}
