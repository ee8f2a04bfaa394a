package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Message   string             `bson:"message" json:"message"`
	Link      string             `bson:"link" json:"link"`
	Read      bool               `bson:"read" json:"read"` // True if user opened it
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`

	// TimeAgo is rendered when notifications are read, never stored.
	TimeAgo string `bson:"-" json:"timeAgo,omitempty"`
}
