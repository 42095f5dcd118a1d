package content

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"forum-importer/core/reconcile"
	"forum-importer/feature/platform"
	pmodels "forum-importer/feature/platform/models"
	"forum-importer/feature/zendesk/models"
	"forum-importer/feature/zendesk/staging"

	"go.uber.org/zap"
)

// Service is the platform's content service.
type Service interface {
	platform.Transactor
	CreateThread(ctx context.Context, t platform.NewThread) (*pmodels.Thread, error)
	SetViewCount(ctx context.Context, threadID uint, views int64) error
	CloseThread(ctx context.Context, threadID, closerID uint, reason int, at time.Time) error
	CreateReply(ctx context.Context, threadID, authorID uint, text string, createdAt time.Time) (*pmodels.Post, error)
	SetAcceptedAnswer(ctx context.Context, threadID, postID uint) error
}

// Staging is the part of the staging store content reconciliation reads and writes.
type Staging interface {
	Forums(ctx context.Context) ([]models.Forum, error)
	Entries(ctx context.Context, forumID int64) ([]models.Entry, error)
	Posts(ctx context.Context, entryID int64) ([]models.Post, error)
	OrphanEntries(ctx context.Context) ([]models.Entry, error)
	OrphanPosts(ctx context.Context) ([]models.Post, error)
	User(ctx context.Context, userID int64) (*models.User, error)
	SetEntryBridge(ctx context.Context, entryID int64, threadID uint) error
	SetPostBridge(ctx context.Context, postID int64, replyID uint) error
}

// Selector decides whether an importable forum is imported in this run.
type Selector interface {
	Select(forum models.Forum) bool
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(forum models.Forum) bool

// Select calls f.
func (f SelectorFunc) Select(forum models.Forum) bool {
	return f(forum)
}

// SelectAll imports every importable forum.
var SelectAll = SelectorFunc(func(models.Forum) bool { return true })

// Reconciler turns staged forum content into platform threads.
type Reconciler struct {
	staging  Staging
	svc      Service
	adminID  uint
	tags     *TagCache
	authors  map[int64]uint
	feedback reconcile.Feedback
	logger   *zap.Logger
	now      func() time.Time
}

// NewReconciler creates a content reconciler. Locked entries are closed on
// behalf of adminID.
func NewReconciler(staging Staging, svc Service, adminID uint, feedback reconcile.Feedback, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		staging:  staging,
		svc:      svc,
		adminID:  adminID,
		tags:     NewTagCache(),
		authors:  make(map[int64]uint),
		feedback: feedback,
		logger:   logger,
		now:      time.Now,
	}
}

// Reconcile imports every forum that is viewable by the public and chosen by
// selector, then drops entries and posts whose forum or entry was never
// staged. Dropped records are reported to the feedback sink; the returned
// error is set only for staging store failures.
func (r *Reconciler) Reconcile(ctx context.Context, selector Selector) (reconcile.Summary, error) {
	var summary reconcile.Summary
	if selector == nil {
		selector = SelectAll
	}

	forums, err := r.staging.Forums(ctx)
	if err != nil {
		return summary, err
	}

	for _, forum := range forums {
		log := r.logger.With(zap.Int64("forum_id", forum.ForumID), zap.String("forum", forum.Name))

		if !forum.ViewableToPublic() {
			log.Info("Forum skipped", zap.String("reason", "not viewable by the public"))
			summary.ForumsSkipped++
			continue
		}
		if !selector.Select(forum) {
			log.Info("Forum skipped", zap.String("reason", "not selected"))
			summary.ForumsSkipped++
			continue
		}

		s, err := r.importForum(ctx, forum)
		summary.Add(s)
		if err != nil {
			return summary, err
		}
		summary.ForumsImported++
		log.Info("Forum imported",
			zap.Int("threads", s.ThreadsImported),
			zap.Int("replies", s.RepliesImported),
			zap.Int("dropped", s.Dropped()),
		)
	}

	s, err := r.dropOrphans(ctx)
	summary.Add(s)
	return summary, err
}

// dropOrphans reports every unbridged entry whose forum and every unbridged
// post whose entry is missing from the staging store.
func (r *Reconciler) dropOrphans(ctx context.Context) (reconcile.Summary, error) {
	var summary reconcile.Summary

	entries, err := r.staging.OrphanEntries(ctx)
	if err != nil {
		return summary, err
	}
	for _, e := range entries {
		r.feedback.Dropped(reconcile.KindEntry, e.EntryID, &reconcile.UnresolvedReferenceError{
			Kind: reconcile.KindEntry, ID: e.EntryID, RefKind: reconcile.KindForum, RefID: e.ForumID,
		})
		summary.EntriesDropped++
	}

	posts, err := r.staging.OrphanPosts(ctx)
	if err != nil {
		return summary, err
	}
	for _, p := range posts {
		r.feedback.Dropped(reconcile.KindPost, p.PostID, &reconcile.UnresolvedReferenceError{
			Kind: reconcile.KindPost, ID: p.PostID, RefKind: reconcile.KindEntry, RefID: p.EntryID,
		})
		summary.PostsDropped++
	}
	return summary, nil
}

func (r *Reconciler) importForum(ctx context.Context, forum models.Forum) (reconcile.Summary, error) {
	var summary reconcile.Summary

	entries, err := r.staging.Entries(ctx, forum.ForumID)
	if err != nil {
		return summary, err
	}

	forumTag := r.tags.ForumTag(forum)
	for i := range entries {
		entry := &entries[i]

		threadID, outcome, err := r.entryThread(ctx, forumTag, entry)
		if err != nil {
			if !reconcile.IsRecoverable(err) {
				return summary, err
			}
			r.feedback.Dropped(reconcile.KindEntry, entry.EntryID, err)
			summary.EntriesDropped++
			continue
		}
		if outcome == reconcile.OutcomePosted {
			summary.ThreadsImported++
			r.feedback.Progress(reconcile.KindEntry, summary.ThreadsImported)
		}

		s, err := r.importPosts(ctx, entry.EntryID, threadID)
		summary.Add(s)
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// entryThread returns the thread of an entry, posting it first unless a
// previous run already did.
func (r *Reconciler) entryThread(ctx context.Context, forumTag string, entry *models.Entry) (uint, reconcile.Outcome, error) {
	if entry.TargetContentID != nil {
		return *entry.TargetContentID, reconcile.OutcomeAlreadyBridged, nil
	}

	author, err := r.author(ctx, reconcile.KindEntry, entry.EntryID, entry.SubmitterID)
	if err != nil {
		return 0, reconcile.OutcomePending, err
	}

	var threadID uint
	err = r.svc.Transaction(ctx, func(ctx context.Context) error {
		thread, err := r.svc.CreateThread(ctx, platform.NewThread{
			Title:     entry.Title,
			Text:      html.UnescapeString(entry.Body),
			AuthorID:  author,
			Tags:      EntryTags(forumTag, entry.TagString()),
			CreatedAt: r.timestamp(entry.CreatedAt),
		})
		if err != nil {
			return err
		}
		if err := r.svc.SetViewCount(ctx, thread.ID, entry.Hits); err != nil {
			return err
		}
		if entry.IsLocked {
			if err := r.svc.CloseThread(ctx, thread.ID, r.adminID, pmodels.CloseReasonAnswered, r.now().UTC()); err != nil {
				return err
			}
		}
		threadID = thread.ID
		return nil
	})
	if err != nil {
		return 0, reconcile.OutcomePending, reconcile.TargetError("create_thread", err)
	}

	if err := r.staging.SetEntryBridge(ctx, entry.EntryID, threadID); err != nil {
		r.logger.Error("Thread posted but not bridged",
			zap.Int64("entry_id", entry.EntryID),
			zap.Uint("thread_id", threadID),
			zap.Error(err),
		)
		return 0, reconcile.OutcomePending, fmt.Errorf("failed to bridge staged entry %d to posted thread %d: %w", entry.EntryID, threadID, err)
	}
	return threadID, reconcile.OutcomePosted, nil
}

// importPosts posts the not yet bridged posts of an entry as replies, in
// creation order. The last informative post becomes the accepted answer.
func (r *Reconciler) importPosts(ctx context.Context, entryID int64, threadID uint) (reconcile.Summary, error) {
	var summary reconcile.Summary

	posts, err := r.staging.Posts(ctx, entryID)
	if err != nil {
		return summary, err
	}

	for i := range posts {
		post := &posts[i]
		if post.TargetContentID != nil {
			continue
		}

		err := r.postReply(ctx, post, threadID)
		if err != nil {
			if !reconcile.IsRecoverable(err) {
				return summary, err
			}
			r.feedback.Dropped(reconcile.KindPost, post.PostID, err)
			summary.PostsDropped++
			continue
		}
		summary.RepliesImported++
		r.feedback.Progress(reconcile.KindPost, summary.RepliesImported)
	}
	return summary, nil
}

func (r *Reconciler) postReply(ctx context.Context, post *models.Post, threadID uint) error {
	author, err := r.author(ctx, reconcile.KindPost, post.PostID, post.UserID)
	if err != nil {
		return err
	}

	var replyID uint
	err = r.svc.Transaction(ctx, func(ctx context.Context) error {
		reply, err := r.svc.CreateReply(ctx, threadID, author, html.UnescapeString(post.Body), r.timestamp(post.CreatedAt))
		if err != nil {
			return err
		}
		if post.IsInformative {
			if err := r.svc.SetAcceptedAnswer(ctx, threadID, reply.ID); err != nil {
				return err
			}
		}
		replyID = reply.ID
		return nil
	})
	if err != nil {
		return reconcile.TargetError("create_reply", err)
	}

	if err := r.staging.SetPostBridge(ctx, post.PostID, replyID); err != nil {
		r.logger.Error("Reply posted but not bridged",
			zap.Int64("post_id", post.PostID),
			zap.Uint("reply_id", replyID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to bridge staged post %d to posted reply %d: %w", post.PostID, replyID, err)
	}
	return nil
}

// author resolves a staged user id to its platform user through the bridge.
func (r *Reconciler) author(ctx context.Context, kind reconcile.Kind, id, userID int64) (uint, error) {
	if target, ok := r.authors[userID]; ok {
		return target, nil
	}

	user, err := r.staging.User(ctx, userID)
	if errors.Is(err, staging.ErrNotFound) {
		return 0, &reconcile.UnresolvedReferenceError{Kind: kind, ID: id, RefKind: reconcile.KindUser, RefID: userID}
	}
	if err != nil {
		return 0, err
	}
	if user.TargetUserID == nil {
		return 0, &reconcile.UnresolvedReferenceError{Kind: kind, ID: id, RefKind: reconcile.KindUser, RefID: userID, Unbridged: true}
	}

	r.authors[userID] = *user.TargetUserID
	return *user.TargetUserID, nil
}

func (r *Reconciler) timestamp(t *time.Time) time.Time {
	if t == nil {
		return r.now().UTC()
	}
	return *t
}
