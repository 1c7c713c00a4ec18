package handler

import (
	"net/http"

	"github.com/labworks/tracker/internal/ctxkeys"
	"github.com/labworks/tracker/internal/model"
	"github.com/labworks/tracker/internal/service"
)

const dashboardFeedLimit = 10

type DashboardHandler struct {
	goalService     *service.GoalService
	activityService *service.ActivityService
}

func NewDashboardHandler(goalService *service.GoalService, activityService *service.ActivityService) *DashboardHandler {
	return &DashboardHandler{
		goalService:     goalService,
		activityService: activityService,
	}
}

type dashboardResponse struct {
	OwnedGoals   int                  `json:"owned_goals"`
	StatusCounts map[model.Status]int `json:"status_counts"`
	Recent       []*model.FeedItem    `json:"recent"`
}

// Dashboard summarizes the viewer's own goals plus the recent team feed.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	owned, err := h.goalService.CountOwned(user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	counts, err := h.goalService.StatusCounts(user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	recent, err := h.activityService.Feed(user, dashboardFeedLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		OwnedGoals:   owned,
		StatusCounts: counts,
		Recent:       recent,
	})
}
