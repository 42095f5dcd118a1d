package zendesk

import (
	"forum-importer/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for migration status.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the migration routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/migration")
	group.Get("/status", h.HandleStatus)
	group.Get("/forums", h.HandleForums)
}

// HandleStatus reports staged and bridged counts per record kind.
// @Summary Migration Status
// @Description Staged and bridged record counts per kind.
// @Tags migration
// @Produce json
// @Success 200 {object} StatusReport "Status"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /migration/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Status(c.Context())
	if err != nil {
		l.Error("Migration status failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleForums lists staged forums.
// @Summary Staged Forums
// @Description Staged forums with importability and entry counts.
// @Tags migration
// @Produce json
// @Success 200 {array} staging.ForumStats "Forums"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /migration/forums [get]
func (h *Handler) HandleForums(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	forums, err := h.service.Forums(c.Context())
	if err != nil {
		l.Error("Listing staged forums failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(forums)
}
