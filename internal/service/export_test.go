package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labworks/tracker/internal/model"
)

type memoryStorage struct {
	objects map[string]string
	types   map[string]string
	saveErr error
}

func (m *memoryStorage) Save(_ context.Context, key string, body io.Reader, contentType string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = string(b)
	m.types[key] = contentType
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStorage) PresignedURL(_ context.Context, key string) (string, error) {
	return "https://storage.test/" + key + "?sig=1", nil
}

func readCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteGoalsCSVMatchesVisibleSet(t *testing.T) {
	s := newServices(t)
	alice := s.register(t, "alice", model.RoleStudent)
	bob := s.register(t, "bob", model.RoleStudent)

	target := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	_, err := s.goals.Create(alice, GoalInput{Title: "Share protocol", Visibility: "public", Status: "in_progress", TargetDate: &target})
	require.NoError(t, err)
	s.createGoal(t, alice, "Finish report", model.VisibilityPrivate)
	s.createGoal(t, bob, "Bob's plan", model.VisibilityPrivate)

	var buf bytes.Buffer
	require.NoError(t, s.export.WriteGoalsCSV(&buf, bob))
	records := readCSV(t, &buf)

	require.Len(t, records, 3)
	assert.Equal(t, goalsHeader, records[0])

	titles := []string{records[1][0], records[2][0]}
	assert.ElementsMatch(t, []string{"Share protocol", "Bob's plan"}, titles)

	for _, row := range records[1:] {
		if row[0] == "Share protocol" {
			assert.Equal(t, []string{"Share protocol", "In Progress", "public", "2026-06-30", "alice", "0", ""}, row)
		}
	}

	visible, err := s.goals.ListFor(bob, "")
	require.NoError(t, err)
	assert.Len(t, records[1:], len(visible))
}

func TestWriteActivitiesCSV(t *testing.T) {
	s := newServices(t)
	alice := s.register(t, "alice", model.RoleStudent)
	bob := s.register(t, "bob", model.RoleStudent)

	public := s.createGoal(t, alice, "Share protocol", model.VisibilityPublic)
	private := s.createGoal(t, alice, "Finish report", model.VisibilityPrivate)
	_, err := s.activities.Log(public.ID, alice, ActivityInput{Note: "uploaded, v2", Progress: 60, AIGenerated: true})
	require.NoError(t, err)
	_, err = s.activities.Log(private.ID, alice, ActivityInput{Note: "secret", Progress: 10})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.export.WriteActivitiesCSV(&buf, bob))
	records := readCSV(t, &buf)

	require.Len(t, records, 2)
	assert.Equal(t, activitiesHeader, records[0])
	assert.Equal(t, []string{"Share protocol", "alice", "uploaded, v2", "60", "yes"}, records[1][:5])

	buf.Reset()
	require.NoError(t, s.export.WriteActivitiesCSV(&buf, alice))
	assert.Len(t, readCSV(t, &buf), 3)
}

func TestSnapshot(t *testing.T) {
	s := newServices(t)
	alice := s.register(t, "alice", model.RoleStudent)
	s.createGoal(t, alice, "Finish report", model.VisibilityPrivate)

	_, err := s.export.Snapshot(context.Background(), alice)
	assert.ErrorIs(t, err, ErrExportStorageDisabled)
	assert.False(t, s.export.SnapshotsEnabled())

	store := &memoryStorage{objects: map[string]string{}, types: map[string]string{}}
	export := NewExportService(s.goals, s.activities, s.users, store)

	snap, err := export.Snapshot(context.Background(), alice)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(snap.Key, "exports/"+alice.ID+"/"))
	assert.True(t, strings.HasSuffix(snap.Key, ".csv"))
	assert.Contains(t, snap.URL, snap.Key)
	assert.Equal(t, "text/csv", store.types[snap.Key])
	assert.Contains(t, store.objects[snap.Key], "Finish report")

	store.saveErr = errors.New("bucket gone")
	_, err = export.Snapshot(context.Background(), alice)
	assert.ErrorIs(t, err, ErrUpstream)
}
