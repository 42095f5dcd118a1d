package zendesk

import (
	"context"

	"forum-importer/core/reconcile"
	"forum-importer/feature/zendesk/staging"

	"go.uber.org/zap"
)

// StatusReport summarizes the staging store.
type StatusReport struct {
	Kinds    []staging.KindStats `json:"kinds"`
	Complete bool                `json:"complete"`
}

// Service reads migration progress from the staging store.
type Service struct {
	store  *staging.Store
	logger *zap.Logger
}

// NewService creates a status service.
func NewService(store *staging.Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Status counts staged and bridged records. Complete is set once every
// staged user, entry and post carries a bridge.
func (s *Service) Status(ctx context.Context) (*StatusReport, error) {
	kinds, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{Kinds: kinds, Complete: true}
	for _, k := range kinds {
		if k.Kind == reconcile.KindForum {
			continue
		}
		if k.Bridged < k.Staged {
			report.Complete = false
		}
	}
	return report, nil
}

// Forums lists staged forums.
func (s *Service) Forums(ctx context.Context) ([]staging.ForumStats, error) {
	return s.store.ForumStats(ctx)
}
