package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labworks/tracker/internal/model"
)

func TestActivityCreateAndList(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice", model.RoleStudent)
	goal := f.seedGoal(t, alice, "Finish report", model.VisibilityPrivate, baseTime)

	second := f.seedActivity(t, goal, alice, "second", 40, baseTime.Add(2*time.Hour))
	first := f.seedActivity(t, goal, alice, "first", 60, baseTime.Add(time.Hour))

	got, err := f.activities.ByGoal(goal.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
	assert.Equal(t, "first", got[0].Note)
	assert.Equal(t, 60, got[0].Progress)
	assert.Equal(t, alice.ID, got[0].UserID)
	assert.False(t, got[0].AIGenerated)
}

func TestActivityOrderingAcrossSubsecondTimestamps(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice", model.RoleStudent)
	goal := f.seedGoal(t, alice, "Finish report", model.VisibilityPrivate, baseTime)

	// 10:00:00.5 must sort after 10:00:00.45 and 10:00:00
	at := baseTime.Add(time.Hour)
	c := f.seedActivity(t, goal, alice, "c", 3, at.Add(500*time.Millisecond))
	a := f.seedActivity(t, goal, alice, "a", 1, at)
	b := f.seedActivity(t, goal, alice, "b", 2, at.Add(450*time.Millisecond))

	got, err := f.activities.ByGoal(goal.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestActivityCreateTouchesGoal(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice", model.RoleStudent)
	goal := f.seedGoal(t, alice, "Finish report", model.VisibilityPrivate, baseTime)

	at := baseTime.Add(3 * time.Hour)
	f.seedActivity(t, goal, alice, "halfway", 50, at)

	got, err := f.goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(at))
	assert.Equal(t, model.StatusNotStarted, got.Status)

	f.seedActivity(t, goal, alice, "finished", 100, at.Add(time.Hour))
	got, err = f.goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, got.Status)
}

func TestActivityCreateMissingGoal(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice", model.RoleStudent)

	err := f.activities.Create(&model.Activity{
		ID: "a", GoalID: "missing", UserID: alice.ID, Note: "n", Progress: 1, CreatedAt: baseTime,
	})
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestActivityProgressCheckConstraint(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice", model.RoleStudent)
	goal := f.seedGoal(t, alice, "Finish report", model.VisibilityPrivate, baseTime)

	err := f.activities.Create(&model.Activity{
		ID: "a", GoalID: goal.ID, UserID: alice.ID, Note: "n", Progress: 101, CreatedAt: baseTime,
	})
	assert.Error(t, err)

	n, err := f.activities.CountByGoal(goal.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	// the failed insert rolled back the goal touch as well
	got, err := f.goals.ByID(goal.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(baseTime))
}

func TestActivityFeed(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice", model.RoleStudent)
	bob := f.seedUser(t, "bob", model.RoleStudent)

	private := f.seedGoal(t, alice, "private", model.VisibilityPrivate, baseTime)
	public := f.seedGoal(t, alice, "public", model.VisibilityPublic, baseTime)

	p1 := f.seedActivity(t, private, alice, "secret", 10, baseTime.Add(time.Minute))
	q1 := f.seedActivity(t, public, alice, "shared 1", 10, baseTime.Add(2*time.Minute))
	q2 := f.seedActivity(t, public, alice, "shared 2", 20, baseTime.Add(3*time.Minute))

	all, err := f.activities.Feed("", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{q2.ID, q1.ID, p1.ID}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "public", all[0].GoalTitle)
	assert.Equal(t, alice.ID, all[0].GoalOwnerID)
	assert.Equal(t, model.VisibilityPublic, all[0].GoalVisibility)
	assert.Equal(t, "alice", all[0].AuthorName)
	assert.Equal(t, model.RoleStudent, all[0].AuthorRole)

	forBob, err := f.activities.Feed(bob.ID, 10)
	require.NoError(t, err)
	assert.Len(t, forBob, 2)

	limited, err := f.activities.Feed("", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, q2.ID, limited[0].ID)
}
