package content_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"forum-importer/core/database"
	"forum-importer/core/reconcile"
	"forum-importer/feature/platform"
	pmodels "forum-importer/feature/platform/models"
	"forum-importer/feature/zendesk/content"
	"forum-importer/feature/zendesk/models"
	"forum-importer/feature/zendesk/staging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type fixture struct {
	ctx      context.Context
	staging  *staging.Store
	platform *platform.Store
	targetDB *gorm.DB
	admin    *pmodels.User
	authors  map[int64]uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	stagingDB, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	targetDB, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	f := &fixture{
		ctx:      ctx,
		staging:  staging.NewStore(stagingDB),
		platform: platform.NewStore(targetDB),
		targetDB: targetDB,
		authors:  map[int64]uint{},
	}
	require.NoError(t, f.staging.Migrate(ctx))
	require.NoError(t, f.platform.Migrate(ctx))

	f.admin = &pmodels.User{Username: "admin", IsSuperuser: true}
	require.NoError(t, f.platform.CreateUser(ctx, f.admin))
	return f
}

// bridgedUser stages a user and bridges it to a fresh platform account.
func (f *fixture) bridgedUser(t *testing.T, id int64, username string) {
	t.Helper()
	f.stage(t, reconcile.KindUser, map[string]any{"user_id": id, "name": username})
	user := &pmodels.User{Username: username}
	require.NoError(t, f.platform.CreateUser(f.ctx, user))
	require.NoError(t, f.staging.SetUserBridge(f.ctx, id, user.ID))
	f.authors[id] = user.ID
}

func (f *fixture) stage(t *testing.T, kind reconcile.Kind, values map[string]any) {
	t.Helper()
	ok, err := f.staging.Insert(f.ctx, kind, values)
	require.NoError(t, err)
	require.True(t, ok)
}

func (f *fixture) publicForum(t *testing.T, id int64, name string) {
	t.Helper()
	f.stage(t, reconcile.KindForum, map[string]any{
		"forum_id":                  id,
		"name":                      name,
		"is_public":                 true,
		"visibility_restriction_id": int64(models.VisibilityEverybody),
	})
}

func (f *fixture) threads(t *testing.T) []pmodels.Thread {
	t.Helper()
	var threads []pmodels.Thread
	require.NoError(t, f.targetDB.Preload("Tags").Order("id").Find(&threads).Error)
	return threads
}

func (f *fixture) reconciler(feedback reconcile.Feedback) *content.Reconciler {
	return content.NewReconciler(f.staging, f.platform, f.admin.ID, feedback, zap.NewNop())
}

func at(hour int) time.Time {
	return time.Date(2010, 3, 1, hour, 0, 0, 0, time.UTC)
}

func TestReconcile_Entry(t *testing.T) {
	f := newFixture(t)
	f.bridgedUser(t, 7, "ann")
	f.publicForum(t, 1, "General  Questions")
	f.stage(t, reconcile.KindEntry, map[string]any{
		"entry_id":     int64(10),
		"forum_id":     int64(1),
		"submitter_id": int64(7),
		"title":        "Printer jams",
		"body":         "&lt;p&gt;It jams&lt;/p&gt;",
		"tags":         "printer hardware printer",
		"hits":         int64(17),
		"created_at":   at(9),
	})

	summary, err := f.reconciler(reconcile.Discard{}).Reconcile(f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ForumsImported)
	assert.Equal(t, 1, summary.ThreadsImported)

	threads := f.threads(t)
	require.Len(t, threads, 1)
	thread := threads[0]
	assert.Equal(t, "Printer jams", thread.Title)
	assert.Equal(t, f.authors[7], thread.AuthorID)
	assert.Equal(t, int64(17), thread.ViewCount)
	assert.True(t, at(9).Equal(thread.CreatedAt))
	assert.False(t, thread.Closed)

	var tags []string
	for _, tag := range thread.Tags {
		tags = append(tags, tag.Name)
	}
	assert.ElementsMatch(t, []string{"general-questions", "printer", "hardware"}, tags)

	posts, err := f.platform.Posts(f.ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "<p>It jams</p>", posts[0].Text)

	entries, err := f.staging.Entries(f.ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, entries[0].TargetContentID)
	assert.Equal(t, thread.ID, *entries[0].TargetContentID)
}

func TestReconcile_LockedEntryIsClosedByAdmin(t *testing.T) {
	f := newFixture(t)
	f.bridgedUser(t, 7, "ann")
	f.publicForum(t, 1, "General")
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1), "submitter_id": int64(7), "is_locked": true, "created_at": at(1)})
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(11), "forum_id": int64(1), "submitter_id": int64(7), "is_locked": false, "created_at": at(2)})

	_, err := f.reconciler(reconcile.Discard{}).Reconcile(f.ctx, nil)
	require.NoError(t, err)

	threads := f.threads(t)
	require.Len(t, threads, 2)

	locked := threads[0]
	assert.True(t, locked.Closed)
	require.NotNil(t, locked.ClosedByID)
	assert.Equal(t, f.admin.ID, *locked.ClosedByID)
	require.NotNil(t, locked.CloseReason)
	assert.Equal(t, 5, *locked.CloseReason)
	assert.NotNil(t, locked.ClosedAt)

	open := threads[1]
	assert.False(t, open.Closed)
	assert.Nil(t, open.ClosedByID)
	assert.Nil(t, open.CloseReason)
}

func TestReconcile_MissingSubmitterDropsOnlyThatEntry(t *testing.T) {
	f := newFixture(t)
	f.bridgedUser(t, 7, "ann")
	f.publicForum(t, 1, "General")
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1), "submitter_id": int64(99), "created_at": at(1)})
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(11), "forum_id": int64(1), "submitter_id": int64(7), "created_at": at(2)})
	f.stage(t, reconcile.KindPost, map[string]any{"post_id": int64(20), "entry_id": int64(10), "user_id": int64(7), "created_at": at(3)})

	core, logs := observer.New(zapcore.WarnLevel)
	summary, err := f.reconciler(reconcile.NewZapFeedback(zap.New(core), 100)).Reconcile(f.ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ThreadsImported)
	assert.Equal(t, 1, summary.EntriesDropped)
	assert.Equal(t, 0, summary.RepliesImported)
	require.Len(t, f.threads(t), 1)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "entry dropped", entry.Message)
	assert.Equal(t, int64(10), entry.ContextMap()["source_id"])
	assert.Equal(t, "entry 10 references unknown user 99", entry.ContextMap()["reason"])

	entries, err := f.staging.Entries(f.ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, entries[0].TargetContentID)
	assert.NotNil(t, entries[1].TargetContentID)
}

func TestReconcile_UnbridgedAuthorDropsPost(t *testing.T) {
	f := newFixture(t)
	f.bridgedUser(t, 7, "ann")
	f.stage(t, reconcile.KindUser, map[string]any{"user_id": int64(8), "name": "Never Bridged"})
	f.publicForum(t, 1, "General")
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1), "submitter_id": int64(7), "created_at": at(1)})
	f.stage(t, reconcile.KindPost, map[string]any{"post_id": int64(20), "entry_id": int64(10), "user_id": int64(8), "created_at": at(2)})
	f.stage(t, reconcile.KindPost, map[string]any{"post_id": int64(21), "entry_id": int64(10), "user_id": int64(7), "created_at": at(3)})

	core, logs := observer.New(zapcore.WarnLevel)
	summary, err := f.reconciler(reconcile.NewZapFeedback(zap.New(core), 100)).Reconcile(f.ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PostsDropped)
	assert.Equal(t, 1, summary.RepliesImported)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "post 20 references user 8 which has no target record", logs.All()[0].ContextMap()["reason"])
}

func TestReconcile_LastInformativePostIsAccepted(t *testing.T) {
	f := newFixture(t)
	f.bridgedUser(t, 7, "ann")
	f.bridgedUser(t, 8, "bob")
	f.publicForum(t, 1, "General")
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1), "submitter_id": int64(7), "created_at": at(1)})

	// Staged out of order; creation time decides.
	f.stage(t, reconcile.KindPost, map[string]any{"post_id": int64(23), "entry_id": int64(10), "user_id": int64(8), "body": "t3", "is_informative": true, "created_at": at(4)})
	f.stage(t, reconcile.KindPost, map[string]any{"post_id": int64(21), "entry_id": int64(10), "user_id": int64(8), "body": "t1", "is_informative": true, "created_at": at(2)})
	f.stage(t, reconcile.KindPost, map[string]any{"post_id": int64(22), "entry_id": int64(10), "user_id": int64(7), "body": "t2", "is_informative": false, "created_at": at(3)})

	summary, err := f.reconciler(reconcile.Discard{}).Reconcile(f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.RepliesImported)

	threads := f.threads(t)
	require.Len(t, threads, 1)
	require.NotNil(t, threads[0].AcceptedAnswerID)

	posts, err := f.platform.Posts(f.ctx, threads[0].ID)
	require.NoError(t, err)
	require.Len(t, posts, 4)

	var accepted pmodels.Post
	for _, p := range posts {
		if p.ID == *threads[0].AcceptedAnswerID {
			accepted = p
		}
	}
	assert.Equal(t, "t3", accepted.Text)
	assert.Equal(t, []string{"", "t1", "t2", "t3"}, []string{posts[0].Text, posts[1].Text, posts[2].Text, posts[3].Text})
}

func TestReconcile_NonPublicForumsAreSkipped(t *testing.T) {
	f := newFixture(t)
	f.bridgedUser(t, 7, "ann")

	org := int64(3)
	f.stage(t, reconcile.KindForum, map[string]any{"forum_id": int64(1), "name": "Private", "is_public": false, "visibility_restriction_id": int64(1)})
	f.stage(t, reconcile.KindForum, map[string]any{"forum_id": int64(2), "name": "Agents", "is_public": true, "visibility_restriction_id": int64(2)})
	f.stage(t, reconcile.KindForum, map[string]any{"forum_id": int64(3), "name": "Org", "is_public": true, "visibility_restriction_id": int64(1), "organization_id": org})
	for i, forum := range []int64{1, 2, 3} {
		f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(10 + i), "forum_id": forum, "submitter_id": int64(7)})
	}

	summary, err := f.reconciler(reconcile.Discard{}).Reconcile(f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.ForumsSkipped)
	assert.Equal(t, 0, summary.ForumsImported)
	assert.Empty(t, f.threads(t))
}

func TestReconcile_Selector(t *testing.T) {
	f := newFixture(t)
	f.bridgedUser(t, 7, "ann")
	f.publicForum(t, 1, "Wanted")
	f.publicForum(t, 2, "Unwanted")
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1), "submitter_id": int64(7)})
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(11), "forum_id": int64(2), "submitter_id": int64(7)})

	selector := content.SelectorFunc(func(forum models.Forum) bool { return forum.ForumID == 1 })
	summary, err := f.reconciler(reconcile.Discard{}).Reconcile(f.ctx, selector)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ForumsImported)
	assert.Equal(t, 1, summary.ForumsSkipped)
	assert.Len(t, f.threads(t), 1)
}

func TestReconcile_Rerun(t *testing.T) {
	f := newFixture(t)
	f.bridgedUser(t, 7, "ann")
	f.publicForum(t, 1, "General")
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1), "submitter_id": int64(7), "created_at": at(1)})
	f.stage(t, reconcile.KindPost, map[string]any{"post_id": int64(20), "entry_id": int64(10), "user_id": int64(7), "created_at": at(2)})

	_, err := f.reconciler(reconcile.Discard{}).Reconcile(f.ctx, nil)
	require.NoError(t, err)

	// A post extracted after the first run lands under the existing thread.
	f.stage(t, reconcile.KindPost, map[string]any{"post_id": int64(21), "entry_id": int64(10), "user_id": int64(7), "created_at": at(3)})

	summary, err := f.reconciler(reconcile.Discard{}).Reconcile(f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ThreadsImported)
	assert.Equal(t, 1, summary.RepliesImported)

	threads := f.threads(t)
	require.Len(t, threads, 1)
	posts, err := f.platform.Posts(f.ctx, threads[0].ID)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestReconcile_OrphansAreDropped(t *testing.T) {
	f := newFixture(t)
	f.bridgedUser(t, 7, "ann")
	f.publicForum(t, 1, "General")
	f.stage(t, reconcile.KindForum, map[string]any{"forum_id": int64(2), "name": "Private", "is_public": false, "visibility_restriction_id": int64(1)})
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1), "submitter_id": int64(7), "created_at": at(1)})
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(11), "forum_id": int64(2), "submitter_id": int64(7), "created_at": at(1)})
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(20), "forum_id": int64(99), "submitter_id": int64(7), "created_at": at(2)})
	f.stage(t, reconcile.KindPost, map[string]any{"post_id": int64(30), "entry_id": int64(555), "user_id": int64(7), "created_at": at(3)})
	f.stage(t, reconcile.KindPost, map[string]any{"post_id": int64(31), "entry_id": int64(11), "user_id": int64(7), "created_at": at(3)})

	core, logs := observer.New(zapcore.WarnLevel)
	summary, err := f.reconciler(reconcile.NewZapFeedback(zap.New(core), 100)).Reconcile(f.ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ThreadsImported)
	assert.Equal(t, 1, summary.EntriesDropped)
	assert.Equal(t, 1, summary.PostsDropped)
	assert.Equal(t, 1, summary.ForumsSkipped)
	require.Len(t, f.threads(t), 1)

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "entry dropped", entry.Message)
	assert.Equal(t, int64(20), entry.ContextMap()["source_id"])
	assert.Equal(t, "entry 20 references unknown forum 99", entry.ContextMap()["reason"])

	post := logs.All()[1]
	assert.Equal(t, "post dropped", post.Message)
	assert.Equal(t, int64(30), post.ContextMap()["source_id"])
	assert.Equal(t, "post 30 references unknown entry 555", post.ContextMap()["reason"])
}

type failingBridge struct {
	*staging.Store
}

func (failingBridge) SetEntryBridge(context.Context, int64, uint) error {
	return errors.New("staging unavailable")
}

func TestReconcile_BridgeFailureNamesThread(t *testing.T) {
	f := newFixture(t)
	f.bridgedUser(t, 7, "ann")
	f.publicForum(t, 1, "General")
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1), "submitter_id": int64(7), "created_at": at(1)})

	core, logs := observer.New(zapcore.ErrorLevel)
	r := content.NewReconciler(failingBridge{Store: f.staging}, f.platform, f.admin.ID, reconcile.Discard{}, zap.New(core))

	_, err := r.Reconcile(f.ctx, nil)
	require.Error(t, err)

	threads := f.threads(t)
	require.Len(t, threads, 1)
	assert.Contains(t, err.Error(), fmt.Sprintf("staged entry 10 to posted thread %d", threads[0].ID))
	assert.ErrorContains(t, err, "staging unavailable")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Thread posted but not bridged", logs.All()[0].Message)
	assert.EqualValues(t, threads[0].ID, logs.All()[0].ContextMap()["thread_id"])
}

type failingService struct {
	*platform.Store
	failTitle string
}

func (s *failingService) CreateThread(ctx context.Context, t platform.NewThread) (*pmodels.Thread, error) {
	if t.Title == s.failTitle {
		return nil, errors.New("title rejected")
	}
	return s.Store.CreateThread(ctx, t)
}

func TestReconcile_TargetFailureDropsEntry(t *testing.T) {
	f := newFixture(t)
	f.bridgedUser(t, 7, "ann")
	f.publicForum(t, 1, "General")
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1), "submitter_id": int64(7), "title": "bad", "created_at": at(1)})
	f.stage(t, reconcile.KindEntry, map[string]any{"entry_id": int64(11), "forum_id": int64(1), "submitter_id": int64(7), "title": "good", "created_at": at(2)})
	f.stage(t, reconcile.KindPost, map[string]any{"post_id": int64(20), "entry_id": int64(10), "user_id": int64(7)})

	core, logs := observer.New(zapcore.WarnLevel)
	svc := &failingService{Store: f.platform, failTitle: "bad"}
	r := content.NewReconciler(f.staging, svc, f.admin.ID, reconcile.NewZapFeedback(zap.New(core), 100), zap.NewNop())

	summary, err := r.Reconcile(f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EntriesDropped)
	assert.Equal(t, 1, summary.ThreadsImported)
	assert.Equal(t, 0, summary.RepliesImported)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "target service create_thread failed: title rejected", logs.All()[0].ContextMap()["reason"])

	threads := f.threads(t)
	require.Len(t, threads, 1)
	assert.Equal(t, "good", threads[0].Title)
}

func TestEntryTags(t *testing.T) {
	assert.Equal(t, []string{"general-questions", "printer", "ink"}, content.EntryTags("general-questions", " printer\tink  printer general-questions "))
	assert.Equal(t, []string{"faq"}, content.EntryTags("faq", ""))
	assert.Empty(t, content.EntryTags("", ""))
}

func TestTagCache(t *testing.T) {
	cache := content.NewTagCache()
	forum := models.Forum{ForumID: 1, Name: "  Tips and\tTricks "}
	assert.Equal(t, "tips-and-tricks", cache.ForumTag(forum))

	forum.Name = "Renamed"
	assert.Equal(t, "tips-and-tricks", cache.ForumTag(forum))
}
