package handler

import (
	"net/http"
	"time"

	"github.com/labworks/tracker/internal/ctxkeys"
	"github.com/labworks/tracker/internal/model"
	"github.com/labworks/tracker/internal/service"
)

const dateLayout = "2006-01-02"

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

type createGoalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	Status      string `json:"status"`
	TargetDate  string `json:"target_date"`
}

type updateGoalRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Visibility      *string `json:"visibility"`
	Status          *string `json:"status"`
	TargetDate      *string `json:"target_date"`
	ClearTargetDate bool    `json:"clear_target_date"`
}

type goalsResponse struct {
	Goals []*model.GoalSummary `json:"goals"`
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.ListFor(user, r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goalsResponse{Goals: goals})
}

func (h *GoalHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.ListOwned(user, r.URL.Query().Get("sort"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goalsResponse{Goals: goals})
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createGoalRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var target *time.Time
	if req.TargetDate != "" {
		target, err = parseDate(req.TargetDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	goal, err := h.goalService.Create(user, service.GoalInput{
		Title:       req.Title,
		Description: req.Description,
		Visibility:  req.Visibility,
		Status:      req.Status,
		TargetDate:  target,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goal, err := h.goalService.ByID(r.PathValue("id"), user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updateGoalRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	patch := service.GoalPatch{
		Title:           req.Title,
		Description:     req.Description,
		Visibility:      req.Visibility,
		Status:          req.Status,
		ClearTargetDate: req.ClearTargetDate,
	}
	if req.TargetDate != nil {
		patch.TargetDate, err = parseDate(*req.TargetDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	goal, err := h.goalService.Update(r.PathValue("id"), user, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.goalService.Delete(r.PathValue("id"), user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseDate(s string) (*time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, &service.ValidationError{Field: "target_date", Message: "target_date must be formatted as YYYY-MM-DD"}
	}
	return &t, nil
}
