package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"forum-importer/core/reconcile"
	"forum-importer/feature/zendesk/content"
	"forum-importer/feature/zendesk/models"
	"forum-importer/feature/zendesk/staging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	skipExtract  bool
	forumIDs     []int64
	acceptForums bool
)

// importCmd runs a full migration: extraction, then reconciliation.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Stage a forum dump and import it into the platform",
	Long: `Stages every record of the dump, then reconciles users, threads and replies.

Forums that are not viewable by the public are never imported. The remaining
forums are offered one by one unless --forum or --yes decides for you.

Examples:
  # Interactive forum selection
  import

  # Import two forums from an already staged dump
  import --skip-extract --forum 11 --forum 12

  # Import every public forum (non-interactive)
  import --yes`,
	RunE: runImport,
}

// extractCmd stages a dump without touching the platform.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Stage a forum dump",
	Long: `Reads users.xml, forums.xml, entries.xml and posts.xml into the staging store.
Records already staged are left untouched, so the command can be re-run.`,
	RunE: runExtract,
}

// reconcileCmd imports an already staged dump.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Import a staged forum dump into the platform",
	Long: `Reconciles staged users, then the selected public forums.
Records bridged by an earlier run are not imported again.`,
	RunE: runReconcile,
}

func init() {
	for _, c := range []*cobra.Command{importCmd, reconcileCmd} {
		c.Flags().Int64SliceVar(&forumIDs, "forum", nil, "Import only these forum ids (repeatable)")
		c.Flags().BoolVar(&acceptForums, "yes", false, "Import every public forum without asking")
	}
	importCmd.Flags().BoolVar(&skipExtract, "skip-extract", false, "Reuse the staging store instead of reading the dump")

	RootCmd.AddCommand(importCmd, extractCmd, reconcileCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := openSession(ctx, !skipExtract)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	if !skipExtract {
		if err := extractDump(ctx, s); err != nil {
			return err
		}
	}
	return reconcileDump(ctx, s)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := openSession(ctx, true)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	return extractDump(ctx, s)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	s, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	return reconcileDump(ctx, s)
}

func extractDump(ctx context.Context, s *session) error {
	s.logger.Info("Extracting dump", zap.String("source", s.cfg.Import.Source))

	written, err := s.service.Extract(ctx)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	s.logger.Info("Dump staged",
		zap.Int("users", written[reconcile.KindUser]),
		zap.Int("forums", written[reconcile.KindForum]),
		zap.Int("entries", written[reconcile.KindEntry]),
		zap.Int("posts", written[reconcile.KindPost]),
	)
	return nil
}

func reconcileDump(ctx context.Context, s *session) error {
	forums, err := s.service.Forums(ctx)
	if err != nil {
		return err
	}
	logForums(s.logger, forums)

	selector := forumSelector(forums, os.Stdin, os.Stdout)
	summary, err := s.service.Reconcile(ctx, selector)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	if summary.Dropped() > 0 {
		s.logger.Warn("Some records were dropped; see the warnings above", zap.Int("dropped", summary.Dropped()))
	}
	return nil
}

func logForums(l *zap.Logger, forums []staging.ForumStats) {
	for _, f := range forums {
		l.Info("Staged forum",
			zap.Int64("forum_id", f.ForumID),
			zap.String("name", f.Name),
			zap.Bool("importable", f.Importable),
			zap.Int64("entries", f.Entries),
			zap.Int64("bridged", f.Bridged),
		)
	}
}

// forumSelector picks forums by --forum ids, accepts all with --yes, and
// otherwise asks on out for each public forum.
func forumSelector(forums []staging.ForumStats, in io.Reader, out io.Writer) content.Selector {
	if len(forumIDs) > 0 {
		wanted := make(map[int64]bool, len(forumIDs))
		for _, id := range forumIDs {
			wanted[id] = true
		}
		return content.SelectorFunc(func(f models.Forum) bool { return wanted[f.ForumID] })
	}
	if acceptForums {
		fmt.Fprintln(out, "\n✓ Importing every public forum (--yes)")
		return content.SelectAll
	}

	entries := make(map[int64]int64, len(forums))
	for _, f := range forums {
		entries[f.ForumID] = f.Entries
	}

	reader := bufio.NewReader(in)
	return content.SelectorFunc(func(f models.Forum) bool {
		fmt.Fprintf(out, "Import forum %q (%d entries)? [y/N]: ", f.Name, entries[f.ForumID])
		response, err := reader.ReadString('\n')
		if err != nil && response == "" {
			return false
		}
		response = strings.ToLower(strings.TrimSpace(response))
		return response == "y" || response == "yes"
	})
}
