package models

import "time"

// User is a staged Zendesk user (users.xml).
type User struct {
	ID              uint       `gorm:"primaryKey"`
	UserID          int64      `gorm:"column:user_id;uniqueIndex;not null"`
	Name            string     `gorm:"column:name;type:varchar(255)"`
	Email           *string    `gorm:"column:email;type:varchar(254);index"`
	IsVerified      bool       `gorm:"column:is_verified"`
	IsActive        bool       `gorm:"column:is_active"`
	CreatedAt       *time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt       *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
	LastLogin       *time.Time `gorm:"column:last_login"`
	OpenIDURL       *string    `gorm:"column:openid_url;type:varchar(200)"`
	OrganizationID  *int64     `gorm:"column:organization_id"`
	Phone           *string    `gorm:"column:phone;type:varchar(32)"`
	RestrictionID   int64      `gorm:"column:restriction_id"`
	Roles           int64      `gorm:"column:roles"`
	TimeZone        string     `gorm:"column:time_zone;type:varchar(255)"`
	Uses12HourClock bool       `gorm:"column:uses_12_hour_clock"`
	PhotoURL        *string    `gorm:"column:photo_url;type:varchar(200)"`

	// TargetUserID is the bridge to the platform user, set once reconciled.
	TargetUserID *uint `gorm:"column:target_user_id;index"`
}

func (User) TableName() string {
	return "zendesk_users"
}

// EmailAddress returns the email or "" when the dump had none.
func (u User) EmailAddress() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// Forum is a staged Zendesk forum (forums.xml).
type Forum struct {
	ID                      uint       `gorm:"primaryKey"`
	ForumID                 int64      `gorm:"column:forum_id;uniqueIndex;not null"`
	Name                    string     `gorm:"column:name;type:varchar(255)"`
	Description             *string    `gorm:"column:description;type:varchar(255)"`
	DisplayTypeID           int64      `gorm:"column:display_type_id"`
	EntriesCount            int64      `gorm:"column:entries_count"`
	IsLocked                bool       `gorm:"column:is_locked"`
	OrganizationID          *int64     `gorm:"column:organization_id"`
	Position                *int64     `gorm:"column:position"`
	UpdatedAt               *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
	TranslationLocaleID     *int64     `gorm:"column:translation_locale_id"`
	UseForSuggestions       bool       `gorm:"column:use_for_suggestions"`
	VisibilityRestrictionID int64      `gorm:"column:visibility_restriction_id"`
	IsPublic                bool       `gorm:"column:is_public"`
}

func (Forum) TableName() string {
	return "zendesk_forums"
}

// VisibilityEverybody is the visibility restriction that lets anonymous visitors read a forum.
// Other values restrict the forum to signed-in users or agents.
const VisibilityEverybody = 1

// ViewableToPublic reports whether the forum may be imported: not tied to an
// organization, readable without signing in, and marked public.
func (f Forum) ViewableToPublic() bool {
	return f.OrganizationID == nil &&
		f.VisibilityRestrictionID == VisibilityEverybody &&
		f.IsPublic
}

// Entry is a staged top-level forum topic (entries.xml).
type Entry struct {
	ID             uint       `gorm:"primaryKey"`
	EntryID        int64      `gorm:"column:entry_id;uniqueIndex;not null"`
	ForumID        int64      `gorm:"column:forum_id;index"`
	SubmitterID    int64      `gorm:"column:submitter_id"`
	Title          string     `gorm:"column:title;type:varchar(300)"`
	Body           string     `gorm:"column:body;type:text"`
	Tags           *string    `gorm:"column:tags;type:varchar(255)"`
	FlagTypeID     int64      `gorm:"column:flag_type_id"`
	Hits           int64      `gorm:"column:hits;default:0"`
	IsHighlighted  bool       `gorm:"column:is_highlighted"`
	IsLocked       bool       `gorm:"column:is_locked"`
	IsPinned       bool       `gorm:"column:is_pinned"`
	IsPublic       bool       `gorm:"column:is_public"`
	OrganizationID *int64     `gorm:"column:organization_id"`
	Position       *int64     `gorm:"column:position"`
	PostsCount     int64      `gorm:"column:posts_count;default:0"`
	VotesCount     int64      `gorm:"column:votes_count;default:0"`
	CreatedAt      *time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt      *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`

	// TargetContentID is the bridge to the platform thread, set once posted.
	TargetContentID *uint `gorm:"column:target_content_id;index"`
}

func (Entry) TableName() string {
	return "zendesk_entries"
}

// TagString returns the raw staged tags, or "" when the dump had none.
func (e Entry) TagString() string {
	if e.Tags == nil {
		return ""
	}
	return *e.Tags
}

// Post is a staged follow-up reply to an entry (posts.xml).
type Post struct {
	ID            uint       `gorm:"primaryKey"`
	PostID        int64      `gorm:"column:post_id;uniqueIndex;not null"`
	EntryID       int64      `gorm:"column:entry_id;index"`
	ForumID       int64      `gorm:"column:forum_id"`
	UserID        int64      `gorm:"column:user_id"`
	Body          string     `gorm:"column:body;type:text"`
	IsInformative bool       `gorm:"column:is_informative"`
	CreatedAt     *time.Time `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt     *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`

	// TargetContentID is the bridge to the platform reply, set once posted.
	TargetContentID *uint `gorm:"column:target_content_id;index"`
}

func (Post) TableName() string {
	return "zendesk_posts"
}

// All returns one zero value of every staged model, in dependency order, for migrations.
func All() []any {
	return []any{&User{}, &Forum{}, &Entry{}, &Post{}}
}
