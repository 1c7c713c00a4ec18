package handler

import (
	"net/http"

	"github.com/labworks/tracker/internal/service"
)

type PolishHandler struct {
	activityService *service.ActivityService
}

func NewPolishHandler(activityService *service.ActivityService) *PolishHandler {
	return &PolishHandler{
		activityService: activityService,
	}
}

type polishRequest struct {
	Text   string `json:"text"`
	Model  string `json:"model"`
	Intent string `json:"intent"`
}

type polishResponse struct {
	Text string `json:"text"`
}

// Polish returns a rewritten draft. On failure the client keeps its own
// draft; nothing is stored either way.
func (h *PolishHandler) Polish(w http.ResponseWriter, r *http.Request) {
	var req polishRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	text, err := h.activityService.PolishNote(r.Context(), req.Text, service.PolishOptions{
		Model:  req.Model,
		Intent: req.Intent,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, polishResponse{Text: text})
}
