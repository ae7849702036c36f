package feedback

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/core/services/feedback"
	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/handlers"
	"gitlab.com/agfdbk.net/internal/handlers/response"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

// Handler serves submission feedback
type Handler struct {
	feedbackSvc    feedback.IFeedbackService
	submissionRepo secondary.SubmissionRepository
	logger         primary.Logger
}

func NewHandler(feedbackSvc feedback.IFeedbackService, submissionRepo secondary.SubmissionRepository, logger primary.Logger) *Handler {
	return &Handler{
		feedbackSvc:    feedbackSvc,
		submissionRepo: submissionRepo,
		logger:         logger,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/submissions/{submissionId}/results", h.GetResults).Methods("GET")
	router.HandleFunc("/api/submissions/{submissionId}/results/live", handlers.RequireStaff(h.GetLiveResults)).Methods("GET")
	router.HandleFunc("/api/submissions/{submissionId}/command_results/{resultId}/{stream:stdout|stderr}", h.GetCommandOutput).Methods("GET")
	router.HandleFunc("/api/submissions/{submissionId}/command_results/{resultId}/{stream:stdout|stderr}_diff", h.GetCommandDiff).Methods("GET")
	router.HandleFunc("/api/submissions/{submissionId}/suite_results/{resultId}/setup_{stream:stdout|stderr}", h.GetSuiteSetupOutput).Methods("GET")
	router.HandleFunc("/api/submissions/{submissionId}/mutation_suite_results/{resultId}/setup_{stream:stdout|stderr}", h.GetMutationSuiteSetupOutput).Methods("GET")

	router.HandleFunc("/api/submissions/{submissionId}/snapshot", handlers.RequireStaff(h.RebuildSnapshot)).Methods("POST")
	router.HandleFunc("/api/submissions/{submissionId}/status", handlers.RequireStaff(h.UpdateStatus)).Methods("PUT")
	router.HandleFunc("/api/projects/{projectId}/results_cache", handlers.RequireStaff(h.ClearProjectCache)).Methods("DELETE")
}

// authorize allows staff, and members of the submission's group
func (h *Handler) authorize(ctx context.Context, submissionID int64) error {
	if handlers.IsStaff(ctx) {
		return nil
	}
	user, ok := handlers.UserFromContext(ctx)
	if !ok {
		return errs.InvalidCredentials
	}
	sub, err := h.submissionRepo.GetSubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	group, err := h.submissionRepo.GetGroup(ctx, sub.GroupID)
	if err != nil {
		return err
	}
	for _, member := range group.MemberNames {
		if member == user.Username {
			return nil
		}
	}
	return fmt.Errorf("%w: submission %d", errs.ErrNotFound, submissionID)
}

// request parses the submission id and category and checks access
func (h *Handler) request(r *http.Request) (int64, domain.FdbkCategory, error) {
	submissionID, err := handlers.IDVar(r, "submissionId")
	if err != nil {
		return 0, "", err
	}
	category, err := handlers.Category(r)
	if err != nil {
		return 0, "", err
	}
	if err := h.authorize(r.Context(), submissionID); err != nil {
		return 0, "", err
	}
	return submissionID, category, nil
}

func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	submissionID, category, err := h.request(r)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	data, err := h.feedbackSvc.FeedbackJSON(r.Context(), submissionID, category)
	if err != nil {
		h.logger.Error("Failed to get feedback", "submissionId", submissionID, "category", category, "error", err)
		response.WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (h *Handler) GetLiveResults(w http.ResponseWriter, r *http.Request) {
	submissionID, category, err := h.request(r)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	view, err := h.feedbackSvc.EvaluateLive(r.Context(), submissionID, category)
	if err != nil {
		h.logger.Error("Failed to evaluate live results", "submissionId", submissionID, "error", err)
		response.WriteServiceError(w, err)
		return
	}
	response.WriteSuccess(w, feedback.ToMap(view))
}

func (h *Handler) GetCommandOutput(w http.ResponseWriter, r *http.Request) {
	h.streamOutput(w, r, h.feedbackSvc.CommandOutput)
}

func (h *Handler) GetSuiteSetupOutput(w http.ResponseWriter, r *http.Request) {
	h.streamOutput(w, r, h.feedbackSvc.SuiteSetupOutput)
}

func (h *Handler) GetMutationSuiteSetupOutput(w http.ResponseWriter, r *http.Request) {
	h.streamOutput(w, r, h.feedbackSvc.MutationSuiteSetupOutput)
}

type openFunc func(ctx context.Context, submissionID int64, category domain.FdbkCategory, resultID int64, stream domain.OutputStream) (io.ReadCloser, error)

func (h *Handler) streamOutput(w http.ResponseWriter, r *http.Request, open openFunc) {
	submissionID, category, err := h.request(r)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	resultID, err := handlers.IDVar(r, "resultId")
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	stream, err := handlers.Stream(r)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	rc, err := open(r.Context(), submissionID, category, resultID, stream)
	if err != nil {
		h.logger.Debug("Output not served", "submissionId", submissionID, "resultId", resultID, "stream", stream, "error", err)
		response.WriteServiceError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Error("Failed to stream output", "submissionId", submissionID, "resultId", resultID, "error", err)
	}
}

func (h *Handler) GetCommandDiff(w http.ResponseWriter, r *http.Request) {
	submissionID, category, err := h.request(r)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	resultID, err := handlers.IDVar(r, "resultId")
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	stream, err := handlers.Stream(r)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	diff, err := h.feedbackSvc.CommandDiff(r.Context(), submissionID, category, resultID, stream)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteSuccess(w, diff)
}

func (h *Handler) RebuildSnapshot(w http.ResponseWriter, r *http.Request) {
	submissionID, err := handlers.IDVar(r, "submissionId")
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	sub, err := h.feedbackSvc.RebuildSnapshot(r.Context(), submissionID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, map[string]interface{}{
		"pk":     sub.ID,
		"status": sub.Status,
		"suites": len(sub.DenormalizedAGTestResults),
	})
}

// UpdateStatusRequest moves a submission to a new grading status
type UpdateStatusRequest struct {
	Status domain.SubmissionStatus `json:"status" validate:"required,oneof=received queued being_graded waiting_for_deferred finished_grading removed_from_queue error"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	submissionID, err := handlers.IDVar(r, "submissionId")
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	var req UpdateStatusRequest
	if err := handlers.DecodeRequest(r, &req); err != nil {
		h.logger.Debug("Rejected status update", "submissionId", submissionID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}

	if err := h.feedbackSvc.TransitionStatus(r.Context(), submissionID, req.Status); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ClearProjectCache(w http.ResponseWriter, r *http.Request) {
	projectID, err := handlers.IDVar(r, "projectId")
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	if err := h.feedbackSvc.ClearProjectCache(r.Context(), projectID); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
