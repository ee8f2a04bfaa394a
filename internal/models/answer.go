package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Answer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Body          string             `bson:"body" json:"body"`
	Author        Author             `bson:"author" json:"author"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	Votes         int                `bson:"votes" json:"votes"`
	IsAccepted    bool               `bson:"is_accepted" json:"isAccepted"`
	QuestionID    primitive.ObjectID `bson:"question_id" json:"questionId"`
	QuestionTitle string             `bson:"question_title" json:"questionTitle"`
}
