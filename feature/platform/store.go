package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forum-importer/feature/platform/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a looked-up platform record does not exist.
var ErrNotFound = errors.New("platform record not found")

// Transactor runs fn in a single target transaction. Calls made with the
// context passed to fn join that transaction.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// Store implements the platform's identity and content services on gorm.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open target database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the platform tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate platform tables: %w", err)
	}
	return nil
}

// Transaction runs fn in a transaction, or inside the one ctx already carries.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

// FindUserByEmail returns the user registered with email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := first(s.conn(ctx).Where("email = ?", email).Order("id"), &user); err != nil {
		return nil, fmt.Errorf("user with email %q: %w", email, err)
	}
	return &user, nil
}

// FindUserByUsername returns the user holding username.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := first(s.conn(ctx).Where("username = ?", username), &user); err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	return &user, nil
}

// UsernameExists reports whether a user holds username.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := s.conn(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check username %q: %w", username, err)
	}
	return count > 0, nil
}

// CreateUser inserts user and fills in its id.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.conn(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}
	return nil
}

// AssociateOpenID links userID to an OpenID identity.
func (s *Store) AssociateOpenID(ctx context.Context, userID uint, openIDURL, provider string) error {
	assoc := models.UserAssociation{UserID: userID, OpenIDURL: openIDURL, ProviderName: provider}
	if err := s.conn(ctx).Create(&assoc).Error; err != nil {
		return fmt.Errorf("failed to associate %q with user %d: %w", openIDURL, userID, err)
	}
	return nil
}

// NewThread describes a question to post.
type NewThread struct {
	Title     string
	Text      string
	AuthorID  uint
	Tags      []string
	CreatedAt time.Time
}

// CreateThread posts a question: the thread, its tags and its question post.
func (s *Store) CreateThread(ctx context.Context, t NewThread) (*models.Thread, error) {
	var thread *models.Thread
	err := s.Transaction(ctx, func(ctx context.Context) error {
		db := s.conn(ctx)

		tags, err := s.useTags(db, t.Tags, t.AuthorID)
		if err != nil {
			return err
		}

		thread = &models.Thread{
			Title:            t.Title,
			AuthorID:         t.AuthorID,
			Tags:             tags,
			CreatedAt:        t.CreatedAt,
			LastActivityAt:   t.CreatedAt,
			LastActivityByID: t.AuthorID,
		}
		if err := db.Omit("Tags.*").Create(thread).Error; err != nil {
			return fmt.Errorf("failed to create thread %q: %w", t.Title, err)
		}

		question := models.Post{
			ThreadID:  thread.ID,
			AuthorID:  t.AuthorID,
			Kind:      models.PostKindQuestion,
			Text:      t.Text,
			CreatedAt: t.CreatedAt,
		}
		if err := db.Create(&question).Error; err != nil {
			return fmt.Errorf("failed to create question of thread %d: %w", thread.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// useTags finds or creates each named tag and counts one more use of it.
func (s *Store) useTags(db *gorm.DB, names []string, authorID uint) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag := models.Tag{Name: name, CreatedByID: authorID}
		if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&tag).Error; err != nil {
			return nil, fmt.Errorf("failed to create tag %q: %w", name, err)
		}
		if err := db.Where("name = ?", name).First(&tag).Error; err != nil {
			return nil, fmt.Errorf("failed to load tag %q: %w", name, err)
		}
		if err := db.Model(&tag).UpdateColumn("used_count", gorm.Expr("used_count + ?", 1)).Error; err != nil {
			return nil, fmt.Errorf("failed to count use of tag %q: %w", name, err)
		}
		tag.UsedCount++
		tags = append(tags, tag)
	}
	return tags, nil
}

// CreateReply posts an answer to a thread.
func (s *Store) CreateReply(ctx context.Context, threadID, authorID uint, text string, createdAt time.Time) (*models.Post, error) {
	reply := &models.Post{
		ThreadID:  threadID,
		AuthorID:  authorID,
		Kind:      models.PostKindAnswer,
		Text:      text,
		CreatedAt: createdAt,
	}
	err := s.Transaction(ctx, func(ctx context.Context) error {
		db := s.conn(ctx)

		if err := threadExists(db, threadID); err != nil {
			return err
		}

		if err := db.Create(reply).Error; err != nil {
			return fmt.Errorf("failed to create reply to thread %d: %w", threadID, err)
		}
		return db.Model(&models.Thread{}).Where("id = ?", threadID).
			Updates(map[string]any{"last_activity_at": createdAt, "last_activity_by_id": authorID}).Error
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// SetAcceptedAnswer marks postID as the accepted answer of its thread.
func (s *Store) SetAcceptedAnswer(ctx context.Context, threadID, postID uint) error {
	return s.updateThread(ctx, threadID, map[string]any{"accepted_answer_id": postID})
}

// SetViewCount overwrites the view counter of a thread.
func (s *Store) SetViewCount(ctx context.Context, threadID uint, views int64) error {
	return s.updateThread(ctx, threadID, map[string]any{"view_count": views})
}

// CloseThread closes a thread on behalf of closerID.
func (s *Store) CloseThread(ctx context.Context, threadID, closerID uint, reason int, at time.Time) error {
	return s.updateThread(ctx, threadID, map[string]any{
		"closed":       true,
		"closed_by_id": closerID,
		"closed_at":    at,
		"close_reason": reason,
	})
}

// Thread loads a thread with its tags.
func (s *Store) Thread(ctx context.Context, threadID uint) (*models.Thread, error) {
	var thread models.Thread
	if err := first(s.conn(ctx).Preload("Tags"), &thread, threadID); err != nil {
		return nil, fmt.Errorf("thread %d: %w", threadID, err)
	}
	return &thread, nil
}

// Posts returns the posts of a thread, question first.
func (s *Store) Posts(ctx context.Context, threadID uint) ([]models.Post, error) {
	var posts []models.Post
	if err := s.conn(ctx).Where("thread_id = ?", threadID).Order("id").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts of thread %d: %w", threadID, err)
	}
	return posts, nil
}

func (s *Store) updateThread(ctx context.Context, threadID uint, values map[string]any) error {
	db := s.conn(ctx)
	if err := threadExists(db, threadID); err != nil {
		return err
	}
	if err := db.Model(&models.Thread{}).Where("id = ?", threadID).Updates(values).Error; err != nil {
		return fmt.Errorf("failed to update thread %d: %w", threadID, err)
	}
	return nil
}

// threadExists checks by count; MySQL reports unchanged rows as unaffected.
func threadExists(db *gorm.DB, threadID uint) error {
	var count int64
	if err := db.Model(&models.Thread{}).Where("id = ?", threadID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up thread %d: %w", threadID, err)
	}
	if count == 0 {
		return fmt.Errorf("thread %d: %w", threadID, ErrNotFound)
	}
	return nil
}

func first(db *gorm.DB, dest any, conds ...any) error {
	err := db.First(dest, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
