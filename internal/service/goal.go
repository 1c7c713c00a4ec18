package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/labworks/tracker/internal/access"
	"github.com/labworks/tracker/internal/model"
	"github.com/labworks/tracker/internal/repository"
	"github.com/labworks/tracker/internal/validation"
)

// GoalInput carries the fields of a new goal. Visibility defaults to private
// and Status to not_started.
type GoalInput struct {
	Title       string
	Description string
	Visibility  string
	Status      string
	TargetDate  *time.Time
}

// GoalPatch lists the fields to change; nil fields are left alone.
// ClearTargetDate removes the target date.
type GoalPatch struct {
	Title           *string
	Description     *string
	Visibility      *string
	Status          *string
	TargetDate      *time.Time
	ClearTargetDate bool
}

// statusOnly reports whether the patch touches nothing but the status.
func (p GoalPatch) statusOnly() bool {
	return p.Title == nil && p.Description == nil && p.Visibility == nil &&
		p.TargetDate == nil && !p.ClearTargetDate
}

type GoalService struct {
	repo repository.GoalRepository
}

func NewGoalService(repo repository.GoalRepository) *GoalService {
	return &GoalService{repo: repo}
}

func (s *GoalService) Create(owner *model.User, in GoalInput) (*model.Goal, error) {
	if owner == nil {
		return nil, ErrNotAuthorized
	}

	err := validation.ValidateTitle(in.Title)
	if err != nil {
		return nil, invalid("title", err)
	}
	err = validation.ValidateDescription(in.Description)
	if err != nil {
		return nil, invalid("description", err)
	}

	visibility := model.VisibilityPrivate
	if in.Visibility != "" {
		visibility, err = model.ParseVisibility(in.Visibility)
		if err != nil {
			return nil, invalid("visibility", err)
		}
	}

	status := model.StatusNotStarted
	if in.Status != "" {
		status, err = model.ParseStatus(in.Status)
		if err != nil {
			return nil, invalid("status", err)
		}
	}

	now := time.Now().UTC()
	goal := &model.Goal{
		ID:          uuid.New().String(),
		UserID:      owner.ID,
		Title:       trim(in.Title),
		Description: in.Description,
		Visibility:  visibility,
		Status:      status,
		TargetDate:  utcPtr(in.TargetDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

// ByID returns the goal if viewer may read it.
func (s *GoalService) ByID(goalID string, viewer *model.User) (*model.Goal, error) {
	goal, err := s.load(goalID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(goal, viewer) {
		return nil, ErrNotAuthorized
	}
	return goal, nil
}

// Update applies patch on behalf of requester. Owners may change every field;
// mentors may change the status of any goal and nothing else.
func (s *GoalService) Update(goalID string, requester *model.User, patch GoalPatch) (*model.Goal, error) {
	goal, err := s.load(goalID)
	if err != nil {
		return nil, err
	}

	if !access.CanUpdateStatus(goal, requester) {
		return nil, ErrNotAuthorized
	}
	if !patch.statusOnly() && !access.CanEdit(goal, requester) {
		return nil, ErrNotAuthorized
	}

	if patch.Title != nil {
		err = validation.ValidateTitle(*patch.Title)
		if err != nil {
			return nil, invalid("title", err)
		}
		goal.Title = trim(*patch.Title)
	}
	if patch.Description != nil {
		err = validation.ValidateDescription(*patch.Description)
		if err != nil {
			return nil, invalid("description", err)
		}
		goal.Description = *patch.Description
	}
	if patch.Visibility != nil {
		goal.Visibility, err = model.ParseVisibility(*patch.Visibility)
		if err != nil {
			return nil, invalid("visibility", err)
		}
	}
	if patch.Status != nil {
		goal.Status, err = model.ParseStatus(*patch.Status)
		if err != nil {
			return nil, invalid("status", err)
		}
	}
	if patch.ClearTargetDate {
		goal.TargetDate = nil
	} else if patch.TargetDate != nil {
		goal.TargetDate = utcPtr(patch.TargetDate)
	}

	goal.UpdatedAt = time.Now().UTC()

	err = s.repo.Update(goal)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	return goal, nil
}

// Delete removes the goal and its activities. Only the owner may delete.
func (s *GoalService) Delete(goalID string, requester *model.User) error {
	goal, err := s.load(goalID)
	if err != nil {
		return err
	}

	if !access.CanDelete(goal, requester) {
		return ErrNotAuthorized
	}

	err = s.repo.Delete(goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	slog.Info("goal deleted", "goal_id", goalID, "by", requester.ID)
	return nil
}

// ListFor returns every goal viewer may read.
func (s *GoalService) ListFor(viewer *model.User, sortBy string) ([]*model.GoalSummary, error) {
	if viewer == nil {
		return nil, ErrNotAuthorized
	}

	sortBy, err := parseSort(sortBy)
	if err != nil {
		return nil, err
	}

	summaries, err := s.repo.Summaries(visibleQuery(viewer, sortBy))
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	return access.FilterVisible(summaries, viewer), nil
}

// ListOwned returns the goals owned by owner.
func (s *GoalService) ListOwned(owner *model.User, sortBy string) ([]*model.GoalSummary, error) {
	if owner == nil {
		return nil, ErrNotAuthorized
	}

	sortBy, err := parseSort(sortBy)
	if err != nil {
		return nil, err
	}

	summaries, err := s.repo.Summaries(repository.GoalQuery{OwnerID: owner.ID, Sort: sortBy})
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	return summaries, nil
}

func (s *GoalService) CountOwned(owner *model.User) (int, error) {
	if owner == nil {
		return 0, ErrNotAuthorized
	}
	return s.repo.CountByOwner(owner.ID)
}

// StatusCounts counts the goals owner owns, per status.
func (s *GoalService) StatusCounts(owner *model.User) (map[model.Status]int, error) {
	if owner == nil {
		return nil, ErrNotAuthorized
	}
	return s.repo.CountByStatus(repository.GoalQuery{OwnerID: owner.ID})
}

func (s *GoalService) load(goalID string) (*model.Goal, error) {
	goal, err := s.repo.ByID(goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

func visibleQuery(viewer *model.User, sortBy string) repository.GoalQuery {
	q := repository.GoalQuery{Sort: sortBy}
	if !viewer.IsMentor() {
		q.VisibleTo = viewer.ID
	}
	return q
}

func parseSort(sortBy string) (string, error) {
	switch sortBy {
	case "":
		return repository.GoalSortRecent, nil
	case repository.GoalSortRecent, repository.GoalSortTitle, repository.GoalSortTarget:
		return sortBy, nil
	}
	return "", &ValidationError{Field: "sort", Message: fmt.Sprintf("unknown sort %q", sortBy)}
}
