package models

import "time"

// User is an account on the content platform.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"column:username;type:varchar(255);uniqueIndex;not null"`
	Email        string    `gorm:"column:email;type:varchar(254);index"`
	EmailIsValid bool      `gorm:"column:email_is_valid"`
	DateJoined   time.Time `gorm:"column:date_joined"`
	LastSeen     time.Time `gorm:"column:last_seen"`
	IsActive     bool      `gorm:"column:is_active"`
	IsSuperuser  bool      `gorm:"column:is_superuser"`
}

// UserAssociation links a user to an external OpenID identity.
type UserAssociation struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       uint   `gorm:"column:user_id;index;not null"`
	OpenIDURL    string `gorm:"column:openid_url;type:varchar(255);uniqueIndex"`
	ProviderName string `gorm:"column:provider_name;type:varchar(64)"`
}

// Tag labels threads. UsedCount tracks how many threads carry it.
type Tag struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"column:name;type:varchar(255);uniqueIndex;not null"`
	UsedCount   int64  `gorm:"column:used_count"`
	CreatedByID uint   `gorm:"column:created_by_id"`
}

// CloseReasonAnswered is the close reason recorded for resolved threads.
const CloseReasonAnswered = 5

// Thread is a question with its answers.
type Thread struct {
	ID               uint       `gorm:"primaryKey"`
	Title            string     `gorm:"column:title;type:varchar(300)"`
	AuthorID         uint       `gorm:"column:author_id;index"`
	Tags             []Tag      `gorm:"many2many:thread_tags"`
	ViewCount        int64      `gorm:"column:view_count"`
	Closed           bool       `gorm:"column:closed"`
	ClosedByID       *uint      `gorm:"column:closed_by_id"`
	ClosedAt         *time.Time `gorm:"column:closed_at"`
	CloseReason      *int       `gorm:"column:close_reason"`
	AcceptedAnswerID *uint      `gorm:"column:accepted_answer_id"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime:false"`
	LastActivityAt   time.Time  `gorm:"column:last_activity_at"`
	LastActivityByID uint       `gorm:"column:last_activity_by_id"`
}

// Post kinds.
const (
	PostKindQuestion = "question"
	PostKindAnswer   = "answer"
)

// Post is the question body or one answer of a thread.
type Post struct {
	ID        uint      `gorm:"primaryKey"`
	ThreadID  uint      `gorm:"column:thread_id;index;not null"`
	AuthorID  uint      `gorm:"column:author_id;index"`
	Kind      string    `gorm:"column:kind;type:varchar(16)"`
	Text      string    `gorm:"column:text;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false"`
}

// All returns every platform model in dependency order, for migrations.
func All() []any {
	return []any{&User{}, &UserAssociation{}, &Tag{}, &Thread{}, &Post{}}
}
