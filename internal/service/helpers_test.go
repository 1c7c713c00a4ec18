package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/labworks/tracker/internal/db/dbtest"
	"github.com/labworks/tracker/internal/model"
	"github.com/labworks/tracker/internal/polish"
	"github.com/labworks/tracker/internal/repository"
)

const testPassword = "lab-notes-42"

type fakePolisher struct {
	enabled bool
	out     string
	err     error
	got     []polish.Request
}

func (p *fakePolisher) Enabled() bool { return p.enabled }

func (p *fakePolisher) Polish(_ context.Context, req polish.Request) (string, error) {
	p.got = append(p.got, req)
	return p.out, p.err
}

type services struct {
	users      repository.UserRepository
	auth       *AuthService
	goals      *GoalService
	activities *ActivityService
	export     *ExportService
	polisher   *fakePolisher
}

func newServices(t *testing.T) *services {
	t.Helper()
	conn := dbtest.Open(t)

	users := repository.NewUserRepository(conn)
	goalRepo := repository.NewGoalRepository(conn)
	activityRepo := repository.NewActivityRepository(conn)
	polisher := &fakePolisher{enabled: true}

	s := &services{
		users:      users,
		auth:       NewAuthService(users, "test-secret-test-secret-test-secret", time.Hour, bcrypt.MinCost),
		goals:      NewGoalService(goalRepo),
		activities: NewActivityService(activityRepo, goalRepo, polisher),
		polisher:   polisher,
	}
	s.export = NewExportService(s.goals, s.activities, users, nil)
	return s
}

func (s *services) register(t *testing.T, username string, role model.Role) *model.User {
	t.Helper()
	u, err := s.auth.Register(RegisterInput{Username: username, Password: testPassword, Role: string(role)})
	require.NoError(t, err)
	return u
}

func (s *services) createGoal(t *testing.T, owner *model.User, title string, vis model.Visibility) *model.Goal {
	t.Helper()
	g, err := s.goals.Create(owner, GoalInput{Title: title, Visibility: string(vis)})
	require.NoError(t, err)
	return g
}

func summaryIDs(goals []*model.GoalSummary) []string {
	ids := make([]string, 0, len(goals))
	for _, g := range goals {
		ids = append(ids, g.ID)
	}
	return ids
}

func ptr[T any](v T) *T {
	return &v
}
