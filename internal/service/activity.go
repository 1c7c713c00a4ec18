package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/labworks/tracker/internal/access"
	"github.com/labworks/tracker/internal/model"
	"github.com/labworks/tracker/internal/polish"
	"github.com/labworks/tracker/internal/repository"
	"github.com/labworks/tracker/internal/validation"
)

const (
	DefaultFeedLimit = 40
	MaxFeedLimit     = 200
)

type ActivityInput struct {
	Note        string
	Progress    int
	AIGenerated bool
}

type PolishOptions struct {
	Model  string
	Intent string
}

// Polisher rewrites a draft through an external service.
type Polisher interface {
	Enabled() bool
	Polish(ctx context.Context, req polish.Request) (string, error)
}

type ActivityService struct {
	repo     repository.ActivityRepository
	goalRepo repository.GoalRepository
	polisher Polisher
}

func NewActivityService(
	repo repository.ActivityRepository,
	goalRepo repository.GoalRepository,
	polisher Polisher,
) *ActivityService {
	return &ActivityService{
		repo:     repo,
		goalRepo: goalRepo,
		polisher: polisher,
	}
}

// Log appends an activity to the goal's log. Only the goal owner may log.
func (s *ActivityService) Log(goalID string, author *model.User, in ActivityInput) (*model.Activity, error) {
	goal, err := s.goal(goalID)
	if err != nil {
		return nil, err
	}

	if !access.CanLog(goal, author) {
		return nil, ErrNotAuthorized
	}

	err = validation.ValidateProgress(in.Progress)
	if err != nil {
		return nil, invalid("progress", err)
	}
	err = validation.ValidateNote(in.Note)
	if err != nil {
		return nil, invalid("note", err)
	}

	activity := &model.Activity{
		ID:          uuid.New().String(),
		GoalID:      goal.ID,
		UserID:      author.ID,
		Note:        strings.TrimSpace(in.Note),
		Progress:    in.Progress,
		AIGenerated: in.AIGenerated,
		CreatedAt:   time.Now().UTC(),
	}

	err = s.repo.Create(activity)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to log activity: %w", err)
	}

	if activity.Progress >= model.ProgressMax {
		slog.Info("goal completed", "goal_id", goal.ID)
	}

	return activity, nil
}

// List returns the goal's activities, oldest first.
func (s *ActivityService) List(goalID string, viewer *model.User) ([]*model.Activity, error) {
	goal, err := s.goal(goalID)
	if err != nil {
		return nil, err
	}

	if !access.CanView(goal, viewer) {
		return nil, ErrNotAuthorized
	}

	activities, err := s.repo.ByGoal(goal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return activities, nil
}

// Feed returns the newest activities across every goal viewer may read.
func (s *ActivityService) Feed(viewer *model.User, limit int) ([]*model.FeedItem, error) {
	if viewer == nil {
		return nil, ErrNotAuthorized
	}

	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	visibleTo := viewer.ID
	if viewer.IsMentor() {
		visibleTo = ""
	}

	items, err := s.repo.Feed(visibleTo, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}

	return access.FilterFeed(items, viewer), nil
}

// PolishNote asks the polishing service for a rewrite of raw. Nothing is
// stored; callers log the result through Log when the user accepts it.
func (s *ActivityService) PolishNote(ctx context.Context, raw string, opts PolishOptions) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", &ValidationError{Field: "text", Message: "text is required"}
	}
	err := validation.ValidateNote(raw)
	if err != nil {
		return "", invalid("text", err)
	}

	intent, err := polish.ParseIntent(opts.Intent)
	if err != nil {
		return "", invalid("intent", err)
	}

	if s.polisher == nil || !s.polisher.Enabled() {
		return "", &UpstreamError{Message: "text polishing is unavailable", Err: polish.ErrNotConfigured}
	}

	polished, err := s.polisher.Polish(ctx, polish.Request{
		Text:   raw,
		Model:  opts.Model,
		Intent: intent,
	})
	if err != nil {
		slog.Warn("polish request failed", "error", err, "intent", intent)
		return "", &UpstreamError{Message: "text polishing failed, your draft was kept", Err: err}
	}

	return polished, nil
}

func (s *ActivityService) goal(goalID string) (*model.Goal, error) {
	goal, err := s.goalRepo.ByID(goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}
