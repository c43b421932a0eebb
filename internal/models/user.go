// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Name      string    `gorm:"not null" bson:"name" json:"name"`
	Username  string    `gorm:"uniqueIndex;not null" bson:"username" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" bson:"email" json:"email,omitempty"`
	Password  string    `gorm:"not null" bson:"password" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID when the caller left ID empty.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Public returns a copy of u without email or password hash.
func (u User) Public() User {
	u.Email = ""
	u.Password = ""
	return u
}

// Profile is a user together with both sides of its follow graph.
type Profile struct {
	User
	Followers []User `json:"followers"`
	Following []User `json:"following"`
}
