package receipts

import (
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/services/receipt"
	"gitlab.com/agfdbk.net/internal/handlers"
	"gitlab.com/agfdbk.net/internal/handlers/response"
)

type Handler struct {
	receiptSvc receipt.IReceiptService
	logger     primary.Logger
}

func NewHandler(receiptSvc receipt.IReceiptService, logger primary.Logger) *Handler {
	return &Handler{
		receiptSvc: receiptSvc,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/submissions/{submissionId}/receipt", handlers.RequireStaff(h.IssueReceipt)).Methods("POST")
	router.HandleFunc("/api/receipts/verify", h.Verify).Methods("POST")
}

type ReceiptResponse struct {
	Text  string `json:"text"`
	Token string `json:"token"`
}

// IssueReceipt signs the normal-feedback summary of a submission
func (h *Handler) IssueReceipt(w http.ResponseWriter, r *http.Request) {
	submissionID, err := handlers.IDVar(r, "submissionId")
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	display, token, err := h.receiptSvc.SubmissionReceipt(r.Context(), submissionID)
	if err != nil {
		h.logger.Error("Failed to issue receipt", "submissionId", submissionID, "error", err)
		response.WriteServiceError(w, err)
		return
	}
	handlers.ResponseWithJson(w, http.StatusCreated, ReceiptResponse{Text: display, Token: token})
}

type VerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Text  string `json:"text,omitempty"`
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := handlers.DecodeRequest(r, &req); err != nil {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid request", StatusCode: http.StatusBadRequest})
		return
	}
	valid, text := h.receiptSvc.Verify(req.Token)
	response.WriteSuccess(w, VerifyResponse{Valid: valid, Text: text})
}
