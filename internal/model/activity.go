package model

import (
	"time"
)

const (
	ProgressMin = 0
	ProgressMax = 100
)

type Activity struct {
	ID          string    `db:"id" json:"id"`
	GoalID      string    `db:"goal_id" json:"goal_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Note        string    `db:"note" json:"note"`
	Progress    int       `db:"progress" json:"progress"`
	AIGenerated bool      `db:"ai_generated" json:"ai_generated"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FeedItem is an activity joined with its goal title and author, as shown in
// the team feed.
type FeedItem struct {
	Activity
	GoalTitle      string     `db:"goal_title" json:"goal_title"`
	GoalOwnerID    string     `db:"goal_owner_id" json:"-"`
	GoalVisibility Visibility `db:"goal_visibility" json:"goal_visibility"`
	AuthorName     string     `db:"author_name" json:"author_name"`
	AuthorRole     Role       `db:"author_role" json:"author_role"`
}
