package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/labworks/tracker/internal/model"
)

const (
	GoalSortRecent = "recent"
	GoalSortTitle  = "title"
	GoalSortTarget = "target"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

// GoalQuery narrows a goal listing. An empty query lists every goal.
type GoalQuery struct {
	// VisibleTo restricts results to public goals plus goals owned by this
	// user id. Leave empty for mentors.
	VisibleTo string
	// OwnerID restricts results to goals owned by this user id.
	OwnerID string
	Sort    string
}

type GoalRepository interface {
	Create(goal *model.Goal) error
	ByID(goalID string) (*model.Goal, error)
	Summaries(q GoalQuery) ([]*model.GoalSummary, error)
	CountByOwner(ownerID string) (int, error)
	CountByStatus(q GoalQuery) (map[model.Status]int, error)
	Update(goal *model.Goal) error
	Delete(goalID string) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(goal *model.Goal) error {
	query := `INSERT INTO goals (id, user_id, title, description, visibility, status, target_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.Visibility,
		goal.Status,
		goal.TargetDate,
		goal.CreatedAt,
		goal.UpdatedAt,
	)

	return err
}

func (r *goalRepository) ByID(goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1`

	err := r.db.Get(goal, query, goalID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

type goalSummaryRow struct {
	model.Goal
	OwnerName        string   `db:"owner_name"`
	ActivityCount    int      `db:"activity_count"`
	LatestActivityAt nullTime `db:"latest_activity_at"`
}

func (r *goalRepository) Summaries(q GoalQuery) ([]*model.GoalSummary, error) {
	where, args := goalWhere(q)

	// Validate and build ORDER BY clause
	var orderBy string
	switch q.Sort {
	case GoalSortTitle:
		orderBy = "ORDER BY LOWER(goals.title) ASC, goals.id ASC"
	case GoalSortTarget:
		orderBy = "ORDER BY goals.target_date IS NULL, goals.target_date ASC, goals.id ASC"
	default: // GoalSortRecent or empty
		orderBy = "ORDER BY goals.updated_at DESC, goals.id ASC"
	}

	query := `SELECT goals.*,
	                 users.display_name AS owner_name,
	                 COALESCE(counts.activity_count, 0) AS activity_count,
	                 counts.latest_activity_at AS latest_activity_at
	          FROM goals
	          JOIN users ON users.id = goals.user_id
	          LEFT JOIN (
	              SELECT goal_id, COUNT(*) AS activity_count, MAX(created_at) AS latest_activity_at
	              FROM activities
	              GROUP BY goal_id
	          ) AS counts ON counts.goal_id = goals.id ` + where + ` ` + orderBy

	var rows []goalSummaryRow
	err := r.db.Select(&rows, query, args...)
	if err != nil {
		return nil, err
	}

	summaries := make([]*model.GoalSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, &model.GoalSummary{
			Goal:             row.Goal,
			OwnerName:        row.OwnerName,
			ActivityCount:    row.ActivityCount,
			LatestActivityAt: row.LatestActivityAt.Ptr(),
		})
	}

	return summaries, nil
}

func (r *goalRepository) CountByOwner(ownerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM goals WHERE user_id = $1`
	err := r.db.QueryRow(query, ownerID).Scan(&count)
	return count, err
}

func (r *goalRepository) CountByStatus(q GoalQuery) (map[model.Status]int, error) {
	where, args := goalWhere(q)
	query := `SELECT goals.status AS status, COUNT(*) AS total FROM goals ` + where + ` GROUP BY goals.status`

	var rows []struct {
		Status model.Status `db:"status"`
		Total  int          `db:"total"`
	}
	err := r.db.Select(&rows, query, args...)
	if err != nil {
		return nil, err
	}

	counts := make(map[model.Status]int, len(model.Statuses))
	for _, st := range model.Statuses {
		counts[st] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}

func (r *goalRepository) Update(goal *model.Goal) error {
	query := `UPDATE goals
	          SET title = $1, description = $2, visibility = $3, status = $4, target_date = $5, updated_at = $6
	          WHERE id = $7`

	result, err := r.db.Exec(query,
		goal.Title,
		goal.Description,
		goal.Visibility,
		goal.Status,
		goal.TargetDate,
		goal.UpdatedAt,
		goal.ID,
	)
	if err != nil {
		return err
	}

	return expectRows(result, ErrGoalNotFound)
}

// Delete removes the goal and all of its activities in one transaction.
func (r *goalRepository) Delete(goalID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`DELETE FROM activities WHERE goal_id = $1`, goalID)
	if err != nil {
		return fmt.Errorf("failed to delete activities: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM goals WHERE id = $1`, goalID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	err = expectRows(result, ErrGoalNotFound)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// goalWhere builds the WHERE clause shared by goal listings.
func goalWhere(q GoalQuery) (string, []any) {
	var clauses []string
	var args []any

	if q.VisibleTo != "" {
		args = append(args, q.VisibleTo)
		clauses = append(clauses, fmt.Sprintf("(goals.visibility = 'public' OR goals.user_id = $%d)", len(args)))
	}
	if q.OwnerID != "" {
		args = append(args, q.OwnerID)
		clauses = append(clauses, fmt.Sprintf("goals.user_id = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}
