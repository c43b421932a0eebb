package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a piece of content owned by its author. Engagement (comments and
// likes) is append/remove only; content is never edited.
type Post struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Content     string    `gorm:"type:text;not null" bson:"content" json:"content"`
	ContentHash string    `gorm:"type:varchar(64);uniqueIndex;not null" bson:"contentHash" json:"-"`
	AuthorID    string    `gorm:"type:varchar(36);not null;index" bson:"authorId" json:"author_id"`
	Author      *User     `gorm:"foreignKey:AuthorID" bson:"author,omitempty" json:"author,omitempty"`
	Tags        []string  `gorm:"type:text;serializer:json" bson:"tags" json:"tags"`
	ImageURL    string    `bson:"imgUrl,omitempty" json:"image_url,omitempty"`
	Comments    []Comment `gorm:"foreignKey:PostID" bson:"comments" json:"comments"`
	Likes       []Like    `gorm:"foreignKey:PostID" bson:"likes" json:"likes"`
	CreatedAt   time.Time `gorm:"index" bson:"createdAt" json:"created_at"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID and fills the content hash.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.ContentHash == "" {
		p.ContentHash = ContentHash(p.Content)
	}
	return nil
}

// Comment is embedded in a post. Username is denormalized from the author.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"-" json:"-"`
	PostID    string    `gorm:"type:varchar(36);not null;index" bson:"-" json:"-"`
	Content   string    `gorm:"type:text;not null" bson:"content" json:"content"`
	Username  string    `gorm:"not null" bson:"username" json:"username"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID when the caller left ID empty.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Like is embedded in a post. A username appears at most once per post.
type Like struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"-" json:"-"`
	PostID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_like_post_user" bson:"-" json:"-"`
	Username  string    `gorm:"not null;uniqueIndex:idx_like_post_user" bson:"username" json:"username"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID when the caller left ID empty.
func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// ContentHash is the dedup key for post content: hex sha256 of the exact bytes.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// WithPublicAuthor returns a copy of p whose author has email and password stripped.
func (p Post) WithPublicAuthor() Post {
	if p.Author != nil {
		author := p.Author.Public()
		p.Author = &author
	}
	return p
}
