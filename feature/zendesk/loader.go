package zendesk

import (
	"forum-importer/feature/zendesk/staging"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the migration status feature. A nil store disables it.
func NewFeature(store *staging.Store, logger *zap.Logger) *Feature {
	if store == nil {
		return &Feature{}
	}
	svc := NewService(store, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "migration"
}

// IsEnabled reports whether a staging store is available.
func (f *Feature) IsEnabled() bool {
	return f.service != nil
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
