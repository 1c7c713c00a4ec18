package handler

import (
	"net/http"
	"strconv"

	"github.com/labworks/tracker/internal/ctxkeys"
	"github.com/labworks/tracker/internal/model"
	"github.com/labworks/tracker/internal/service"
)

type ActivityHandler struct {
	activityService *service.ActivityService
}

func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

type logActivityRequest struct {
	Note        string `json:"note"`
	Progress    *int   `json:"progress"`
	AIGenerated bool   `json:"ai_generated"`
}

type activitiesResponse struct {
	Activities []*model.Activity `json:"activities"`
}

type feedResponse struct {
	Items []*model.FeedItem `json:"items"`
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	activities, err := h.activityService.List(r.PathValue("id"), user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, activitiesResponse{Activities: activities})
}

func (h *ActivityHandler) Log(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req logActivityRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Progress == nil {
		writeError(w, r, &service.ValidationError{Field: "progress", Message: "progress is required"})
		return
	}

	activity, err := h.activityService.Log(r.PathValue("id"), user, service.ActivityInput{
		Note:        req.Note,
		Progress:    *req.Progress,
		AIGenerated: req.AIGenerated,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, activity)
}

func (h *ActivityHandler) Feed(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, &service.ValidationError{Field: "limit", Message: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	items, err := h.activityService.Feed(user, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, feedResponse{Items: items})
}
