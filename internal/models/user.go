package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered member of the campus Q&A board.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	AvatarURL      string             `bson:"avatar_url" json:"avatarUrl"`
	Bio            string             `bson:"bio" json:"bio"`
	HashedPassword string             `bson:"hashed_password,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Author is the snapshot of a user embedded in questions and answers.
type Author struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	AvatarURL string             `bson:"avatar_url" json:"avatarUrl"`
}

// AsAuthor takes the embedded snapshot of the user.
func (u *User) AsAuthor() Author {
	return Author{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}

// ProfileUpdate carries the user fields that may change after signup.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Bio == nil && p.AvatarURL == nil
}
