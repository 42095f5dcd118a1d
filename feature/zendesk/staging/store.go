package staging

import (
	"context"
	"errors"
	"fmt"

	"forum-importer/core/database"
	"forum-importer/core/reconcile"
	"forum-importer/feature/zendesk/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when no staged record has the requested source id.
	ErrNotFound = errors.New("staged record not found")
	// ErrAlreadyBridged is returned when a bridge is set on a record that already has one.
	ErrAlreadyBridged = errors.New("staged record already bridged")
)

// Store is the gorm-backed staging store.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open staging database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the staging tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate staging tables: %w", err)
	}
	return nil
}

var bridgeColumns = map[reconcile.Kind]string{
	reconcile.KindUser:  "target_user_id",
	reconcile.KindEntry: "target_content_id",
	reconcile.KindPost:  "target_content_id",
}

// Verify checks that every staged table has the columns extraction and
// reconciliation write to.
func (s *Store) Verify(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	for _, kind := range []reconcile.Kind{reconcile.KindUser, reconcile.KindForum, reconcile.KindEntry, reconcile.KindPost} {
		desc, err := models.DescriptorFor(kind)
		if err != nil {
			return err
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(desc.New()); err != nil {
			return fmt.Errorf("failed to parse %s model: %w", kind, err)
		}

		required := make([]string, 0, len(desc.Fields)+1)
		for column := range desc.Fields {
			required = append(required, column)
		}
		if bridge, ok := bridgeColumns[kind]; ok {
			required = append(required, bridge)
		}

		missing, err := database.MissingColumns(db, stmt.Schema.Table, required...)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("staging table %s is missing columns %v", stmt.Schema.Table, missing)
		}
	}
	return nil
}

// Insert stages one record of kind. It reports false without error when a
// record with the same source key already exists.
func (s *Store) Insert(ctx context.Context, kind reconcile.Kind, values map[string]any) (bool, error) {
	desc, err := models.DescriptorFor(kind)
	if err != nil {
		return false, err
	}

	result := s.db.WithContext(ctx).
		Model(desc.New()).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: desc.Key}}, DoNothing: true}).
		Create(values)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert staged %s %v: %w", kind, values[desc.Key], result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Users returns every staged user ordered by source id.
func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("user_id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list staged users: %w", err)
	}
	return users, nil
}

// User returns the staged user with the given source id.
func (s *Store) User(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	if err := first(s.db.WithContext(ctx).Where("user_id = ?", userID), &user); err != nil {
		return nil, fmt.Errorf("staged user %d: %w", userID, err)
	}
	return &user, nil
}

// Forums returns every staged forum ordered by source id.
func (s *Store) Forums(ctx context.Context) ([]models.Forum, error) {
	var forums []models.Forum
	if err := s.db.WithContext(ctx).Order("forum_id").Find(&forums).Error; err != nil {
		return nil, fmt.Errorf("failed to list staged forums: %w", err)
	}
	return forums, nil
}

// Forum returns the staged forum with the given source id.
func (s *Store) Forum(ctx context.Context, forumID int64) (*models.Forum, error) {
	var forum models.Forum
	if err := first(s.db.WithContext(ctx).Where("forum_id = ?", forumID), &forum); err != nil {
		return nil, fmt.Errorf("staged forum %d: %w", forumID, err)
	}
	return &forum, nil
}

// Entries returns the staged entries of a forum in creation order.
func (s *Store) Entries(ctx context.Context, forumID int64) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.WithContext(ctx).
		Where("forum_id = ?", forumID).
		Order("created_at").Order("entry_id").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list staged entries of forum %d: %w", forumID, err)
	}
	return entries, nil
}

// Posts returns the staged posts of an entry in creation order.
func (s *Store) Posts(ctx context.Context, entryID int64) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("entry_id = ?", entryID).
		Order("created_at").Order("post_id").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list staged posts of entry %d: %w", entryID, err)
	}
	return posts, nil
}

// OrphanEntries returns the unbridged entries whose forum was never staged,
// ordered by source id.
func (s *Store) OrphanEntries(ctx context.Context) ([]models.Entry, error) {
	db := s.db.WithContext(ctx)

	var entries []models.Entry
	err := db.
		Where("forum_id NOT IN (?)", db.Model(&models.Forum{}).Select("forum_id")).
		Where("target_content_id IS NULL").
		Order("entry_id").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned staged entries: %w", err)
	}
	return entries, nil
}

// OrphanPosts returns the unbridged posts whose entry was never staged,
// ordered by source id.
func (s *Store) OrphanPosts(ctx context.Context) ([]models.Post, error) {
	db := s.db.WithContext(ctx)

	var posts []models.Post
	err := db.
		Where("entry_id NOT IN (?)", db.Model(&models.Entry{}).Select("entry_id")).
		Where("target_content_id IS NULL").
		Order("post_id").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned staged posts: %w", err)
	}
	return posts, nil
}

// SetUserBridge records the target user a staged user was reconciled to.
func (s *Store) SetUserBridge(ctx context.Context, userID int64, targetUserID uint) error {
	return s.setBridge(ctx, &models.User{}, "user_id", userID, "target_user_id", targetUserID)
}

// SetEntryBridge records the target thread a staged entry was posted as.
func (s *Store) SetEntryBridge(ctx context.Context, entryID int64, threadID uint) error {
	return s.setBridge(ctx, &models.Entry{}, "entry_id", entryID, "target_content_id", threadID)
}

// SetPostBridge records the target reply a staged post was posted as.
func (s *Store) SetPostBridge(ctx context.Context, postID int64, replyID uint) error {
	return s.setBridge(ctx, &models.Post{}, "post_id", postID, "target_content_id", replyID)
}

func (s *Store) setBridge(ctx context.Context, model any, key string, id int64, bridge string, target uint) error {
	db := s.db.WithContext(ctx)

	result := db.Model(model).
		Where(fmt.Sprintf("%s = ? AND %s IS NULL", key, bridge), id).
		Update(bridge, target)
	if result.Error != nil {
		return fmt.Errorf("failed to set %s of %s %d: %w", bridge, key, id, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(model).Where(fmt.Sprintf("%s = ?", key), id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up %s %d: %w", key, id, err)
	}
	if count == 0 {
		return fmt.Errorf("%s %d: %w", key, id, ErrNotFound)
	}
	return fmt.Errorf("%s %d: %w", key, id, ErrAlreadyBridged)
}

func first(db *gorm.DB, dest any) error {
	err := db.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
