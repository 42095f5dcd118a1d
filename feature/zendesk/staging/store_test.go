package staging_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"forum-importer/core/database"
	"forum-importer/core/reconcile"
	"forum-importer/feature/zendesk/staging"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newStore(t *testing.T) *staging.Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	store := staging.NewStore(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func insert(t *testing.T, store *staging.Store, kind reconcile.Kind, values map[string]any) {
	t.Helper()
	ok, err := store.Insert(context.Background(), kind, values)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestStore_InsertAndRead(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	created := time.Date(2009, 4, 3, 17, 15, 27, 0, time.UTC)
	insert(t, store, reconcile.KindUser, map[string]any{
		"user_id":    int64(7),
		"name":       "Ann Example",
		"email":      "ann@corp.test",
		"is_active":  true,
		"created_at": created,
	})

	user, err := store.User(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ann Example", user.Name)
	assert.Equal(t, "ann@corp.test", user.EmailAddress())
	assert.True(t, user.IsActive)
	require.NotNil(t, user.CreatedAt)
	assert.True(t, created.Equal(*user.CreatedAt))
	assert.Nil(t, user.UpdatedAt)
	assert.Nil(t, user.TargetUserID)

	_, err = store.User(ctx, 8)
	assert.ErrorIs(t, err, staging.ErrNotFound)
}

func TestStore_InsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	insert(t, store, reconcile.KindUser, map[string]any{"user_id": int64(7), "name": "Ann"})
	require.NoError(t, store.SetUserBridge(ctx, 7, 42))

	ok, err := store.Insert(ctx, reconcile.KindUser, map[string]any{"user_id": int64(7), "name": "Renamed"})
	require.NoError(t, err)
	assert.False(t, ok)

	user, err := store.User(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
	require.NotNil(t, user.TargetUserID)
	assert.Equal(t, uint(42), *user.TargetUserID)
}

func TestStore_BridgeSetOnce(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	insert(t, store, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1), "title": "Hello"})
	insert(t, store, reconcile.KindPost, map[string]any{"post_id": int64(11), "entry_id": int64(10)})

	require.NoError(t, store.SetEntryBridge(ctx, 10, 100))
	assert.ErrorIs(t, store.SetEntryBridge(ctx, 10, 101), staging.ErrAlreadyBridged)
	assert.ErrorIs(t, store.SetEntryBridge(ctx, 99, 100), staging.ErrNotFound)

	require.NoError(t, store.SetPostBridge(ctx, 11, 200))
	assert.ErrorIs(t, store.SetPostBridge(ctx, 11, 200), staging.ErrAlreadyBridged)

	entries, err := store.Entries(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(100), *entries[0].TargetContentID)
}

func TestStore_Ordering(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	day := func(d int) time.Time { return time.Date(2010, 1, d, 0, 0, 0, 0, time.UTC) }

	insert(t, store, reconcile.KindForum, map[string]any{"forum_id": int64(2), "name": "B"})
	insert(t, store, reconcile.KindForum, map[string]any{"forum_id": int64(1), "name": "A"})

	insert(t, store, reconcile.KindEntry, map[string]any{"entry_id": int64(30), "forum_id": int64(1), "created_at": day(2)})
	insert(t, store, reconcile.KindEntry, map[string]any{"entry_id": int64(20), "forum_id": int64(1), "created_at": day(1)})
	insert(t, store, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1), "created_at": day(2)})
	insert(t, store, reconcile.KindEntry, map[string]any{"entry_id": int64(40), "forum_id": int64(2), "created_at": day(1)})

	insert(t, store, reconcile.KindPost, map[string]any{"post_id": int64(3), "entry_id": int64(20), "created_at": day(5)})
	insert(t, store, reconcile.KindPost, map[string]any{"post_id": int64(4), "entry_id": int64(20), "created_at": day(4)})

	forums, err := store.Forums(ctx)
	require.NoError(t, err)
	require.Len(t, forums, 2)
	assert.Equal(t, int64(1), forums[0].ForumID)

	entries, err := store.Entries(ctx, 1)
	require.NoError(t, err)
	var ids []int64
	for _, e := range entries {
		ids = append(ids, e.EntryID)
	}
	assert.Equal(t, []int64{20, 10, 30}, ids)

	posts, err := store.Posts(ctx, 20)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, int64(4), posts[0].PostID)
	assert.Equal(t, int64(3), posts[1].PostID)
}

func TestStore_Orphans(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	insert(t, store, reconcile.KindForum, map[string]any{"forum_id": int64(1), "name": "General"})
	insert(t, store, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1)})
	insert(t, store, reconcile.KindEntry, map[string]any{"entry_id": int64(21), "forum_id": int64(99)})
	insert(t, store, reconcile.KindEntry, map[string]any{"entry_id": int64(20), "forum_id": int64(98)})
	insert(t, store, reconcile.KindPost, map[string]any{"post_id": int64(30), "entry_id": int64(10)})
	insert(t, store, reconcile.KindPost, map[string]any{"post_id": int64(31), "entry_id": int64(21)})
	insert(t, store, reconcile.KindPost, map[string]any{"post_id": int64(32), "entry_id": int64(555)})
	insert(t, store, reconcile.KindPost, map[string]any{"post_id": int64(33), "entry_id": int64(556)})
	require.NoError(t, store.SetPostBridge(ctx, 33, 7))

	entries, err := store.OrphanEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(20), entries[0].EntryID)
	assert.Equal(t, int64(21), entries[1].EntryID)

	posts, err := store.OrphanPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(32), posts[0].PostID)
}

func TestStore_Stats(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	insert(t, store, reconcile.KindUser, map[string]any{"user_id": int64(1)})
	insert(t, store, reconcile.KindUser, map[string]any{"user_id": int64(2)})
	require.NoError(t, store.SetUserBridge(ctx, 1, 5))

	insert(t, store, reconcile.KindForum, map[string]any{"forum_id": int64(1), "name": "Public", "is_public": true, "visibility_restriction_id": int64(1)})
	insert(t, store, reconcile.KindForum, map[string]any{"forum_id": int64(2), "name": "Agents", "is_public": true, "visibility_restriction_id": int64(3)})
	insert(t, store, reconcile.KindEntry, map[string]any{"entry_id": int64(10), "forum_id": int64(1)})
	insert(t, store, reconcile.KindEntry, map[string]any{"entry_id": int64(11), "forum_id": int64(1)})
	require.NoError(t, store.SetEntryBridge(ctx, 10, 100))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []staging.KindStats{
		{Kind: reconcile.KindUser, Staged: 2, Bridged: 1},
		{Kind: reconcile.KindForum, Staged: 2, Bridged: 1},
		{Kind: reconcile.KindEntry, Staged: 2, Bridged: 1},
		{Kind: reconcile.KindPost, Staged: 0, Bridged: 0},
	}, stats)

	forums, err := store.ForumStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []staging.ForumStats{
		{ForumID: 1, Name: "Public", Importable: true, Entries: 2, Bridged: 1},
		{ForumID: 2, Name: "Agents", Importable: false},
	}, forums)
}

func TestStore_Verify(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	assert.NoError(t, store.Verify(ctx))

	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE zendesk_users (id INTEGER PRIMARY KEY, user_id INTEGER)").Error)

	err = staging.NewStore(db).Verify(ctx)
	assert.ErrorContains(t, err, "zendesk_users is missing columns")
}

func TestStore_SetUserBridge_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `zendesk_users` SET `target_user_id`=? WHERE user_id = ? AND target_user_id IS NULL")).
		WithArgs(uint(42), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = staging.NewStore(db).SetUserBridge(context.Background(), 7, 42)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_InsertFailure_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `zendesk_users`")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = staging.NewStore(db).Insert(context.Background(), reconcile.KindUser, map[string]any{"user_id": int64(7)})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
