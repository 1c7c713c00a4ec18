package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/labworks/tracker/internal/ctxkeys"
	"github.com/labworks/tracker/internal/model"
	"github.com/labworks/tracker/internal/service"
)

type ExportHandler struct {
	exportService *service.ExportService
}

func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
	}
}

func (h *ExportHandler) GoalsCSV(w http.ResponseWriter, r *http.Request) {
	h.writeCSV(w, r, "goals.csv", h.exportService.WriteGoalsCSV)
}

func (h *ExportHandler) ActivitiesCSV(w http.ResponseWriter, r *http.Request) {
	h.writeCSV(w, r, "activities.csv", h.exportService.WriteActivitiesCSV)
}

func (h *ExportHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	snapshot, err := h.exportService.Snapshot(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

// writeCSV renders into memory first so a failure still yields a JSON error
// instead of a truncated file.
func (h *ExportHandler) writeCSV(w http.ResponseWriter, r *http.Request, filename string, render func(io.Writer, *model.User) error) {
	user := ctxkeys.User(r.Context())

	var buf bytes.Buffer
	err := render(&buf, user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	_, err = buf.WriteTo(w)
	if err != nil {
		slog.Error("failed to write export", "error", err, "user_id", user.ID)
	}
}
