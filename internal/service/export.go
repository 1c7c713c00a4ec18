package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/labworks/tracker/internal/model"
	"github.com/labworks/tracker/internal/repository"
	"github.com/labworks/tracker/internal/storage"
)

var ErrExportStorageDisabled = errors.New("export storage is not configured")

var (
	goalsHeader      = []string{"Goal", "Status", "Visibility", "Target", "Owner", "Updates", "Last update"}
	activitiesHeader = []string{"Goal", "Author", "Note", "Progress", "AI assisted", "Logged at"}
)

const (
	dateLayout     = "2006-01-02"
	snapshotLayout = "20060102T150405Z"
)

// Snapshot describes an export stored in object storage.
type Snapshot struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportService renders the viewer's visible goals and activities as CSV.
type ExportService struct {
	goals      *GoalService
	activities *ActivityService
	users      repository.UserRepository
	storage    storage.Storage
}

// NewExportService builds an export service. store may be nil, which
// disables snapshots.
func NewExportService(
	goals *GoalService,
	activities *ActivityService,
	users repository.UserRepository,
	store storage.Storage,
) *ExportService {
	return &ExportService{
		goals:      goals,
		activities: activities,
		users:      users,
		storage:    store,
	}
}

func (s *ExportService) SnapshotsEnabled() bool {
	return s.storage != nil
}

func (s *ExportService) WriteGoalsCSV(w io.Writer, viewer *model.User) error {
	goals, err := s.goals.ListFor(viewer, repository.GoalSortRecent)
	if err != nil {
		return err
	}

	// Casers keep state, so each export gets its own.
	title := cases.Title(language.English)

	cw := csv.NewWriter(w)
	err = cw.Write(goalsHeader)
	if err != nil {
		return err
	}

	for _, g := range goals {
		err = cw.Write([]string{
			g.Title,
			title.String(g.Status.Label()),
			string(g.Visibility),
			formatDate(g.TargetDate),
			g.OwnerName,
			strconv.Itoa(g.ActivityCount),
			formatTimestamp(g.LatestActivityAt),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (s *ExportService) WriteActivitiesCSV(w io.Writer, viewer *model.User) error {
	goals, err := s.goals.ListFor(viewer, repository.GoalSortTitle)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	err = cw.Write(activitiesHeader)
	if err != nil {
		return err
	}

	names := map[string]string{}
	for _, g := range goals {
		names[g.UserID] = g.OwnerName

		activities, err := s.activities.List(g.ID, viewer)
		if err != nil {
			return fmt.Errorf("failed to export activities of goal %s: %w", g.ID, err)
		}

		for _, a := range activities {
			err = cw.Write([]string{
				g.Title,
				s.authorName(names, a.UserID),
				a.Note,
				strconv.Itoa(a.Progress),
				yesNo(a.AIGenerated),
				a.CreatedAt.UTC().Format(time.RFC3339),
			})
			if err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// Snapshot renders the goals CSV and stores it under
// exports/<user id>/<timestamp>.csv.
func (s *ExportService) Snapshot(ctx context.Context, viewer *model.User) (*Snapshot, error) {
	if s.storage == nil {
		return nil, ErrExportStorageDisabled
	}

	var buf bytes.Buffer
	err := s.WriteGoalsCSV(&buf, viewer)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("exports/%s/%s.csv", viewer.ID, now.Format(snapshotLayout))

	err = s.storage.Save(ctx, key, bytes.NewReader(buf.Bytes()), "text/csv")
	if err != nil {
		return nil, &UpstreamError{Message: "could not store export", Err: err}
	}

	url, err := s.storage.PresignedURL(ctx, key)
	if err != nil {
		return nil, &UpstreamError{Message: "could not sign export url", Err: err}
	}

	slog.Info("export snapshot stored", "user_id", viewer.ID, "key", key)
	return &Snapshot{Key: key, URL: url, CreatedAt: now}, nil
}

func (s *ExportService) authorName(names map[string]string, userID string) string {
	if name, ok := names[userID]; ok {
		return name
	}
	name := userID
	user, err := s.users.ByID(userID)
	if err == nil {
		name = user.DisplayName
	}
	names[userID] = name
	return name
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
