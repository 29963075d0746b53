package models

import "time"

// Activity is one recorded outcome of a back-office operation, kept for the
// dashboard feed.
type Activity struct {
	ID      string    `bson:"_id" json:"id"`
	Page    string    `bson:"page" json:"page"`
	Level   string    `bson:"level" json:"level"`
	Title   string    `bson:"title" json:"title"`
	Message string    `bson:"message" json:"message"`
	At      time.Time `bson:"at" json:"at"`
}
