package repository

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/labworks/tracker/internal/model"
)

type ActivityRepository interface {
	Create(activity *model.Activity) error
	ByGoal(goalID string) ([]*model.Activity, error)
	Feed(visibleTo string, limit int) ([]*model.FeedItem, error)
	CountByGoal(goalID string) (int, error)
}

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// Create appends an activity and touches its goal in one transaction: the
// goal's updated_at moves to the activity time and a progress of 100 marks
// the goal done.
func (r *activityRepository) Create(activity *model.Activity) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE goals SET updated_at = $1 WHERE id = $2`, activity.CreatedAt, activity.GoalID)
	if err != nil {
		return fmt.Errorf("failed to touch goal: %w", err)
	}
	err = expectRows(result, ErrGoalNotFound)
	if err != nil {
		return err
	}

	query := `INSERT INTO activities (id, goal_id, user_id, note, progress, ai_generated, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(query,
		activity.ID,
		activity.GoalID,
		activity.UserID,
		activity.Note,
		activity.Progress,
		activity.AIGenerated,
		activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	if activity.Progress >= model.ProgressMax {
		_, err = tx.Exec(`UPDATE goals SET status = $1 WHERE id = $2 AND status <> $3`, model.StatusDone, activity.GoalID, model.StatusDone)
		if err != nil {
			return fmt.Errorf("failed to complete goal: %w", err)
		}
	}

	return tx.Commit()
}

func (r *activityRepository) ByGoal(goalID string) ([]*model.Activity, error) {
	activities := []*model.Activity{}
	query := `SELECT * FROM activities WHERE goal_id = $1 ORDER BY created_at ASC, id ASC`

	err := r.db.Select(&activities, query, goalID)
	if err != nil {
		return nil, err
	}

	return activities, nil
}

// Feed returns the newest activities across goals. visibleTo works like
// GoalQuery.VisibleTo; leave it empty to include private goals.
func (r *activityRepository) Feed(visibleTo string, limit int) ([]*model.FeedItem, error) {
	items := []*model.FeedItem{}

	var where string
	var args []any
	if visibleTo != "" {
		args = append(args, visibleTo)
		where = `WHERE (goals.visibility = 'public' OR goals.user_id = $1)`
	}
	args = append(args, limit)
	limitParam := fmt.Sprintf("$%d", len(args))

	query := `SELECT activities.*,
	                 goals.title AS goal_title,
	                 goals.user_id AS goal_owner_id,
	                 goals.visibility AS goal_visibility,
	                 users.display_name AS author_name,
	                 users.role AS author_role
	          FROM activities
	          JOIN goals ON goals.id = activities.goal_id
	          JOIN users ON users.id = activities.user_id
	          ` + where + `
	          ORDER BY activities.created_at DESC, activities.id DESC
	          LIMIT ` + limitParam

	err := r.db.Select(&items, query, args...)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *activityRepository) CountByGoal(goalID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM activities WHERE goal_id = $1`, goalID).Scan(&count)
	return count, err
}
