package importer

import (
	"context"
	"errors"
	"fmt"

	"forum-importer/core/reconcile"
	"forum-importer/core/storage"
	"forum-importer/feature/platform"
	"forum-importer/feature/zendesk/archive"
	"forum-importer/feature/zendesk/content"
	"forum-importer/feature/zendesk/extract"
	"forum-importer/feature/zendesk/identity"
	"forum-importer/feature/zendesk/staging"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoAdmin is returned when the configured administrator cannot be used.
var ErrNoAdmin = errors.New("administrator account unavailable")

// Service runs import phases.
type Service struct {
	archive  archive.Reader
	staging  *staging.Store
	target   *platform.Store
	cfg      Config
	feedback reconcile.Feedback
	logger   *zap.Logger
}

// NewService creates an import service. reader may be nil when only
// reconciliation is run.
func NewService(reader archive.Reader, st *staging.Store, target *platform.Store, cfg Config, feedback reconcile.Feedback, logger *zap.Logger) *Service {
	return &Service{
		archive:  reader,
		staging:  st,
		target:   target,
		cfg:      cfg,
		feedback: feedback,
		logger:   logger,
	}
}

// OpenArchive opens the dump named by cfg. client is only used for bucket sources.
func OpenArchive(ctx context.Context, cfg Config, client storage.Client, bucket string) (archive.Reader, error) {
	switch cfg.Source {
	case SourceDir, "":
		return archive.NewDir(cfg.Path)
	case SourceBucket:
		if client == nil {
			return nil, fmt.Errorf("bucket source requires a storage client")
		}
		return archive.NewBucket(ctx, client, bucket, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unsupported dump source: %s", cfg.Source)
	}
}

// Migrate prepares the staging and platform tables.
func (s *Service) Migrate(ctx context.Context) error {
	if err := s.staging.Migrate(ctx); err != nil {
		return err
	}
	if err := s.staging.Verify(ctx); err != nil {
		return err
	}
	return s.target.Migrate(ctx)
}

// Extract stages every member document of the dump. Documents are parsed
// concurrently and written to the staging store one kind at a time.
func (s *Service) Extract(ctx context.Context) (map[reconcile.Kind]int, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("no dump to extract from")
	}

	docs := make([]*extract.Document, len(extract.Sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range extract.Sources {
		g.Go(func() error {
			rc, err := s.archive.Open(gctx, src.File)
			if err != nil {
				return err
			}
			defer rc.Close()

			doc, err := extract.Parse(rc)
			if err != nil {
				return fmt.Errorf("%s: %w", src.File, err)
			}
			docs[i] = doc
			s.logger.Debug("Document parsed", zap.String("file", src.File))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	x := extract.NewExtractor(s.staging, s.feedback, s.logger)
	written := make(map[reconcile.Kind]int, len(extract.Sources))
	for i, src := range extract.Sources {
		n, err := x.Extract(ctx, docs[i], src.EntryTag, src.Kind, src.Fields, src.Extra)
		if err != nil {
			return written, fmt.Errorf("%s: %w", src.File, err)
		}
		written[src.Kind] = n
	}
	return written, nil
}

// Reconcile bridges staged users, then imports the forums chosen by selector.
func (s *Service) Reconcile(ctx context.Context, selector content.Selector) (reconcile.Summary, error) {
	var summary reconcile.Summary

	admin, err := s.admin(ctx)
	if err != nil {
		return summary, err
	}

	users := identity.NewReconciler(s.staging, s.target, s.cfg.Identity, s.feedback, s.logger)
	_, us, err := users.Reconcile(ctx)
	summary.Add(us)
	if err != nil {
		return summary, err
	}

	threads := content.NewReconciler(s.staging, s.target, admin, s.feedback, s.logger)
	cs, err := threads.Reconcile(ctx, selector)
	summary.Add(cs)
	if err != nil {
		return summary, err
	}

	s.logger.Info("Import finished", summary.Fields()...)
	return summary, nil
}

// Run extracts the dump, then reconciles it.
func (s *Service) Run(ctx context.Context, selector content.Selector) (reconcile.Summary, error) {
	if _, err := s.Extract(ctx); err != nil {
		return reconcile.Summary{}, err
	}
	return s.Reconcile(ctx, selector)
}

// Forums lists the staged forums with their importability.
func (s *Service) Forums(ctx context.Context) ([]staging.ForumStats, error) {
	return s.staging.ForumStats(ctx)
}

// admin resolves the configured administrator to a platform user id.
func (s *Service) admin(ctx context.Context) (uint, error) {
	if s.cfg.AdminUsername == "" {
		return 0, fmt.Errorf("%w: no admin username configured", ErrNoAdmin)
	}
	user, err := s.target.FindUserByUsername(ctx, s.cfg.AdminUsername)
	if errors.Is(err, platform.ErrNotFound) {
		return 0, fmt.Errorf("%w: user %q does not exist", ErrNoAdmin, s.cfg.AdminUsername)
	}
	if err != nil {
		return 0, err
	}
	if !user.IsSuperuser {
		return 0, fmt.Errorf("%w: user %q is not a superuser", ErrNoAdmin, s.cfg.AdminUsername)
	}
	return user.ID, nil
}
