package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Question is a post on the board. AnswersCount is maintained alongside answer inserts.
type Question struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Body         string             `bson:"body" json:"body"`
	Author       Author             `bson:"author" json:"author"`
	Tags         []string           `bson:"tags" json:"tags"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	Votes        int                `bson:"votes" json:"votes"`
	AnswersCount int                `bson:"answers_count" json:"answersCount"`
	Views        int                `bson:"views" json:"views"`
}

// QuestionDetail is a question together with its answers.
type QuestionDetail struct {
	Question
	Answers []Answer `json:"answers"`
}

// Sort orders for question listings
const (
	SortNewest     = "newest"
	SortPopular    = "popular"
	SortUnanswered = "unanswered"
)

// QuestionFilter selects and orders question listings.
type QuestionFilter struct {
	Sort  string
	Tag   string
	Limit int64
}
