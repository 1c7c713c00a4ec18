// Package access decides who may read or change a goal and, through the goal,
// its activities. Every function is pure; callers pass the viewer explicitly.
package access

import "github.com/labworks/tracker/internal/model"

// CanView reports whether viewer may read goal. Mentors see everything, owners
// see their own goals and everyone sees public goals.
func CanView(goal *model.Goal, viewer *model.User) bool {
	if goal == nil || viewer == nil {
		return false
	}
	switch {
	case viewer.Role == model.RoleMentor:
		return true
	case goal.UserID == viewer.ID:
		return true
	case goal.IsPublic():
		return true
	}
	return false
}

// CanEdit reports whether viewer may change any field of goal.
func CanEdit(goal *model.Goal, viewer *model.User) bool {
	return isOwner(goal, viewer)
}

// CanUpdateStatus reports whether viewer may change the status of goal.
// Mentors get status updates on top of read access, nothing more.
func CanUpdateStatus(goal *model.Goal, viewer *model.User) bool {
	return isOwner(goal, viewer) || (goal != nil && viewer.IsMentor())
}

// CanDelete reports whether viewer may delete goal and its activities.
func CanDelete(goal *model.Goal, viewer *model.User) bool {
	return isOwner(goal, viewer)
}

// CanLog reports whether viewer may append an activity to goal. Other people
// collaborate read-only, so only the owner writes to the log.
func CanLog(goal *model.Goal, viewer *model.User) bool {
	return isOwner(goal, viewer)
}

// FilterVisible returns the goals viewer may read, keeping their order.
func FilterVisible(goals []*model.GoalSummary, viewer *model.User) []*model.GoalSummary {
	visible := make([]*model.GoalSummary, 0, len(goals))
	for _, g := range goals {
		if CanView(&g.Goal, viewer) {
			visible = append(visible, g)
		}
	}
	return visible
}

// FilterFeed drops feed items whose parent goal viewer may not read.
func FilterFeed(items []*model.FeedItem, viewer *model.User) []*model.FeedItem {
	visible := make([]*model.FeedItem, 0, len(items))
	for _, item := range items {
		parent := &model.Goal{
			ID:         item.GoalID,
			UserID:     item.GoalOwnerID,
			Visibility: item.GoalVisibility,
		}
		if CanView(parent, viewer) {
			visible = append(visible, item)
		}
	}
	return visible
}

func isOwner(goal *model.Goal, viewer *model.User) bool {
	return goal != nil && viewer != nil && goal.UserID == viewer.ID
}
