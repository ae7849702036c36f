package ultimate

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/services/export"
	"gitlab.com/agfdbk.net/internal/core/services/feedback"
	"gitlab.com/agfdbk.net/internal/core/services/ultimate"
	"gitlab.com/agfdbk.net/internal/handlers"
	"gitlab.com/agfdbk.net/internal/handlers/response"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

type Handler struct {
	ultimateSvc ultimate.IUltimateService
	exportSvc   export.IExportService
	logger      primary.Logger
}

func NewHandler(ultimateSvc ultimate.IUltimateService, exportSvc export.IExportService, logger primary.Logger) *Handler {
	return &Handler{
		ultimateSvc: ultimateSvc,
		exportSvc:   exportSvc,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/groups/{groupId}/ultimate_submission", handlers.RequireStaff(h.GetUltimateSubmission)).Methods("GET")
	router.HandleFunc("/api/projects/{projectId}/ultimate_submissions", handlers.RequireStaff(h.GetUltimateSubmissions)).Methods("GET")
	router.HandleFunc("/api/projects/{projectId}/ultimate_submission_scores.csv", handlers.RequireStaff(h.ExportScores)).Methods("GET")
}

// GetUltimateSubmission answers for the whole group, or for one member when
// the username query parameter is set.
func (h *Handler) GetUltimateSubmission(w http.ResponseWriter, r *http.Request) {
	groupID, err := handlers.IDVar(r, "groupId")
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	username := r.URL.Query().Get("username")

	view, err := h.ultimateSvc.GetUltimateSubmission(r.Context(), groupID, username)
	if err != nil {
		h.logger.Error("Failed to get ultimate submission", "groupId", groupID, "error", err)
		response.WriteServiceError(w, err)
		return
	}
	if view == nil {
		response.WriteServiceError(w, fmt.Errorf("%w: group %d has no ultimate submission", errs.ErrNotFound, groupID))
		return
	}
	response.WriteSuccess(w, feedback.ToMap(view))
}

type UltimateSubmissionResponse struct {
	GroupID     int64                  `json:"group_id"`
	MemberNames []string               `json:"member_names"`
	Submission  map[string]interface{} `json:"submission"`
}

func (h *Handler) GetUltimateSubmissions(w http.ResponseWriter, r *http.Request) {
	projectID, err := handlers.IDVar(r, "projectId")
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	results, err := h.ultimateSvc.GetUltimateSubmissions(r.Context(), projectID)
	if err != nil {
		h.logger.Error("Failed to get ultimate submissions", "projectId", projectID, "error", err)
		response.WriteServiceError(w, err)
		return
	}

	out := make([]UltimateSubmissionResponse, 0, len(results))
	for _, u := range results {
		resp := UltimateSubmissionResponse{GroupID: u.Group.ID, MemberNames: u.Group.MemberNames}
		if u.View != nil {
			resp.Submission = feedback.ToMap(u.View)
		}
		out = append(out, resp)
	}
	response.WriteSuccess(w, out)
}

func (h *Handler) ExportScores(w http.ResponseWriter, r *http.Request) {
	projectID, err := handlers.IDVar(r, "projectId")
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	lastLogged := -1
	err = h.exportSvc.WriteUltimateScoresCSV(r.Context(), &buf, projectID, func(done, total int) {
		if pct := export.Progress(done, total); pct/10 != lastLogged {
			lastLogged = pct / 10
			h.logger.Debug("Export progress", "projectId", projectID, "percent", pct)
		}
	})
	if err != nil {
		h.logger.Error("Failed to export scores", "projectId", projectID, "error", err)
		response.WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=project_%d_ultimate_scores.csv", projectID))
	_, _ = buf.WriteTo(w)
}
