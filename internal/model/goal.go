package model

import (
	"fmt"
	"strings"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(strings.ToLower(strings.TrimSpace(s))) {
	case VisibilityPublic:
		return VisibilityPublic, nil
	case VisibilityPrivate:
		return VisibilityPrivate, nil
	}
	return "", fmt.Errorf("unknown visibility %q", s)
}

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusStuck      Status = "stuck"
	StatusDone       Status = "done"
)

// Statuses lists every goal status in workflow order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusStuck, StatusDone}

// ParseStatus accepts both the stored form ("in_progress") and the
// human form ("In progress").
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "_")
	for _, st := range Statuses {
		if Status(norm) == st {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Label returns the status as shown to people, e.g. "in progress".
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

type Goal struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Visibility  Visibility `db:"visibility" json:"visibility"`
	Status      Status     `db:"status" json:"status"`
	TargetDate  *time.Time `db:"target_date" json:"target_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

func (g *Goal) IsPublic() bool {
	return g.Visibility == VisibilityPublic
}

// GoalSummary is a goal joined with its owner and activity counters.
type GoalSummary struct {
	Goal
	OwnerName        string     `db:"owner_name" json:"owner_name"`
	ActivityCount    int        `db:"activity_count" json:"activity_count"`
	LatestActivityAt *time.Time `db:"latest_activity_at" json:"latest_activity_at,omitempty"`
}
