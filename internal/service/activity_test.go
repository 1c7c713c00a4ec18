package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labworks/tracker/internal/model"
	"github.com/labworks/tracker/internal/polish"
)

func TestLogActivityProgressBounds(t *testing.T) {
	s := newServices(t)
	alice := s.register(t, "alice", model.RoleStudent)
	goal := s.createGoal(t, alice, "Finish report", model.VisibilityPrivate)

	for _, p := range []int{-1, 101} {
		_, err := s.activities.Log(goal.ID, alice, ActivityInput{Note: "n", Progress: p})
		assert.ErrorIs(t, err, ErrValidation, "progress %d", p)
	}
	for _, p := range []int{0, 100} {
		_, err := s.activities.Log(goal.ID, alice, ActivityInput{Note: "n", Progress: p})
		assert.NoError(t, err, "progress %d", p)
	}

	list, err := s.activities.List(goal.ID, alice)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestLogActivityRoundTrip(t *testing.T) {
	s := newServices(t)
	alice := s.register(t, "alice", model.RoleStudent)
	goal := s.createGoal(t, alice, "Finish report", model.VisibilityPrivate)

	logged, err := s.activities.Log(goal.ID, alice, ActivityInput{Note: "Drafted methods section", Progress: 50, AIGenerated: true})
	require.NoError(t, err)

	list, err := s.activities.List(goal.ID, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, logged.ID, list[0].ID)
	assert.Equal(t, "Drafted methods section", list[0].Note)
	assert.Equal(t, 50, list[0].Progress)
	assert.Equal(t, alice.ID, list[0].UserID)
	assert.True(t, list[0].AIGenerated)

	got, err := s.goals.ByID(goal.ID, alice)
	require.NoError(t, err)
	assert.False(t, got.UpdatedAt.Before(goal.UpdatedAt))
}

func TestLogActivityErrors(t *testing.T) {
	s := newServices(t)
	alice := s.register(t, "alice", model.RoleStudent)
	bob := s.register(t, "bob", model.RoleStudent)
	carol := s.register(t, "carol", model.RoleMentor)
	goal := s.createGoal(t, alice, "Finish report", model.VisibilityPublic)

	_, err := s.activities.Log("missing", alice, ActivityInput{Note: "n", Progress: 10})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.activities.Log(goal.ID, bob, ActivityInput{Note: "n", Progress: 10})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = s.activities.Log(goal.ID, carol, ActivityInput{Note: "n", Progress: 10})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = s.activities.Log(goal.ID, alice, ActivityInput{Note: "   ", Progress: 10})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLogActivityCompletesGoal(t *testing.T) {
	s := newServices(t)
	alice := s.register(t, "alice", model.RoleStudent)
	goal := s.createGoal(t, alice, "Finish report", model.VisibilityPrivate)

	_, err := s.activities.Log(goal.ID, alice, ActivityInput{Note: "submitted", Progress: 100})
	require.NoError(t, err)

	got, err := s.goals.ByID(goal.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, got.Status)
}

func TestListActivitiesVisibility(t *testing.T) {
	s := newServices(t)
	alice := s.register(t, "alice", model.RoleStudent)
	bob := s.register(t, "bob", model.RoleStudent)
	carol := s.register(t, "carol", model.RoleMentor)

	private := s.createGoal(t, alice, "Finish report", model.VisibilityPrivate)
	public := s.createGoal(t, alice, "Share protocol", model.VisibilityPublic)
	for _, g := range []*model.Goal{private, public} {
		_, err := s.activities.Log(g.ID, alice, ActivityInput{Note: "started", Progress: 5})
		require.NoError(t, err)
	}

	_, err := s.activities.List(private.ID, bob)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	list, err := s.activities.List(private.ID, carol)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = s.activities.List(public.ID, bob)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.activities.List("missing", carol)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListActivitiesOrdered(t *testing.T) {
	s := newServices(t)
	alice := s.register(t, "alice", model.RoleStudent)
	goal := s.createGoal(t, alice, "Finish report", model.VisibilityPrivate)

	for i, note := range []string{"first", "second", "third"} {
		_, err := s.activities.Log(goal.ID, alice, ActivityInput{Note: note, Progress: (i + 1) * 10})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	list, err := s.activities.List(goal.ID, alice)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Note)
	assert.Equal(t, "third", list[2].Note)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.Before(list[i-1].CreatedAt))
	}
}

func TestFeed(t *testing.T) {
	s := newServices(t)
	alice := s.register(t, "alice", model.RoleStudent)
	bob := s.register(t, "bob", model.RoleStudent)
	carol := s.register(t, "carol", model.RoleMentor)

	private := s.createGoal(t, alice, "Finish report", model.VisibilityPrivate)
	public := s.createGoal(t, alice, "Share protocol", model.VisibilityPublic)
	_, err := s.activities.Log(private.ID, alice, ActivityInput{Note: "secret", Progress: 10})
	require.NoError(t, err)
	_, err = s.activities.Log(public.ID, alice, ActivityInput{Note: "shared", Progress: 10})
	require.NoError(t, err)

	forBob, err := s.activities.Feed(bob, 0)
	require.NoError(t, err)
	require.Len(t, forBob, 1)
	assert.Equal(t, "shared", forBob[0].Note)
	assert.Equal(t, "Share protocol", forBob[0].GoalTitle)
	assert.Equal(t, "alice", forBob[0].AuthorName)

	forCarol, err := s.activities.Feed(carol, 1000)
	require.NoError(t, err)
	assert.Len(t, forCarol, 2)

	forAlice, err := s.activities.Feed(alice, 1)
	require.NoError(t, err)
	assert.Len(t, forAlice, 1)

	_, err = s.activities.Feed(nil, 10)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestPolishNote(t *testing.T) {
	s := newServices(t)
	s.polisher.out = "Collected 12 samples. Next: PCR."

	out, err := s.activities.PolishNote(context.Background(), "got 12 samples pcr next", PolishOptions{Model: "mixtral", Intent: "goal"})
	require.NoError(t, err)
	assert.Equal(t, "Collected 12 samples. Next: PCR.", out)
	require.Len(t, s.polisher.got, 1)
	assert.Equal(t, "mixtral", s.polisher.got[0].Model)
	assert.Equal(t, polish.IntentGoal, s.polisher.got[0].Intent)
}

func TestPolishNoteErrors(t *testing.T) {
	s := newServices(t)

	_, err := s.activities.PolishNote(context.Background(), "  ", PolishOptions{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.activities.PolishNote(context.Background(), strings.Repeat("a", 4001), PolishOptions{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.activities.PolishNote(context.Background(), "draft", PolishOptions{Intent: "poem"})
	assert.ErrorIs(t, err, ErrValidation)

	s.polisher.err = &polish.Error{StatusCode: 503, Message: "unavailable"}
	_, err = s.activities.PolishNote(context.Background(), "draft", PolishOptions{})
	require.ErrorIs(t, err, ErrUpstream)
	var uerr *UpstreamError
	require.True(t, errors.As(err, &uerr))
	var perr *polish.Error
	assert.ErrorAs(t, err, &perr)

	s.polisher.enabled = false
	_, err = s.activities.PolishNote(context.Background(), "draft", PolishOptions{})
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, polish.ErrNotConfigured)
}
