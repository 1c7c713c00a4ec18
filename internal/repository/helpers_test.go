package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/labworks/tracker/internal/db/dbtest"
	"github.com/labworks/tracker/internal/model"
)

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db         *sqlx.DB
	users      UserRepository
	goals      GoalRepository
	activities ActivityRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	return &fixture{
		db:         conn,
		users:      NewUserRepository(conn),
		goals:      NewGoalRepository(conn),
		activities: NewActivityRepository(conn),
	}
}

func (f *fixture) seedUser(t *testing.T, username string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		DisplayName:  username,
		Role:         role,
		PasswordHash: "hash",
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	require.NoError(t, f.users.Create(u))
	return u
}

func (f *fixture) seedGoal(t *testing.T, owner *model.User, title string, vis model.Visibility, at time.Time) *model.Goal {
	t.Helper()
	g := &model.Goal{
		ID:         uuid.NewString(),
		UserID:     owner.ID,
		Title:      title,
		Visibility: vis,
		Status:     model.StatusNotStarted,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	require.NoError(t, f.goals.Create(g))
	return g
}

func (f *fixture) seedActivity(t *testing.T, goal *model.Goal, author *model.User, note string, progress int, at time.Time) *model.Activity {
	t.Helper()
	a := &model.Activity{
		ID:        uuid.NewString(),
		GoalID:    goal.ID,
		UserID:    author.ID,
		Note:      note,
		Progress:  progress,
		CreatedAt: at,
	}
	require.NoError(t, f.activities.Create(a))
	return a
}
