package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/services/feedback"
	"gitlab.com/agfdbk.net/internal/domain"
)

var _ IReceiptService = (*ReceiptService)(nil)

type ReceiptService struct {
	sealer    primary.ReceiptSealer
	evaluator Evaluator
	logger    primary.Logger
}

func NewReceiptService(sealer primary.ReceiptSealer, evaluator Evaluator, logger primary.Logger) *ReceiptService {
	return &ReceiptService{
		sealer:    sealer,
		evaluator: evaluator,
		logger:    logger,
	}
}

type sealedReceipt struct {
	Nonce string `json:"nonce"`
	Text  string `json:"text"`
}

func (s *ReceiptService) RenderSummary(view *feedback.SubmissionView) string {
	var b strings.Builder
	sub := view.Submission()
	fmt.Fprintf(&b, "Submission %d\n", sub.ID)
	fmt.Fprintf(&b, "Submitted at %s\n", sub.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"))

	total, possible := 0, 0
	for _, suite := range view.SuiteResults() {
		if suite.Deferred() {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %d/%d\n", suite.Name(), suite.TotalPoints(), suite.TotalPointsPossible())
		for _, c := range suite.CaseResults() {
			fmt.Fprintf(&b, "    %s: %d/%d\n", c.Name(), c.TotalPoints(), c.TotalPointsPossible())
		}
		total += suite.TotalPoints()
		possible += suite.TotalPointsPossible()
	}
	for _, ms := range view.MutationSuiteResults() {
		if ms.Deferred() {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %d/%d\n", ms.Name(), ms.TotalPoints(), ms.TotalPointsPossible())
		total += ms.TotalPoints()
		possible += ms.TotalPointsPossible()
	}

	fmt.Fprintf(&b, "\nTotal: %d/%d\n", total, possible)
	return b.String()
}

func (s *ReceiptService) RenderAndSign(text string) (string, string, error) {
	nonce := uuid.NewString()
	payload, err := json.Marshal(sealedReceipt{Nonce: nonce, Text: text})
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal receipt: %w", err)
	}
	token, err := s.sealer.Seal(payload)
	if err != nil {
		s.logger.Error("Failed to seal receipt", "error", err)
		return "", "", fmt.Errorf("failed to seal receipt: %w", err)
	}

	display := fmt.Sprintf("%s\nReceipt nonce: %s\nVerification token: %s\n", text, nonce, token)
	return display, token, nil
}

func (s *ReceiptService) Verify(token string) (bool, string) {
	plain, err := s.sealer.Open(token)
	if err != nil {
		s.logger.Debug("Receipt verification failed", "error", err)
		return false, ""
	}
	var receipt sealedReceipt
	if err := json.Unmarshal(plain, &receipt); err != nil || receipt.Nonce == "" {
		return false, ""
	}
	return true, receipt.Text
}

func (s *ReceiptService) SubmissionReceipt(ctx context.Context, submissionID int64) (string, string, error) {
	view, err := s.evaluator.Evaluate(ctx, submissionID, domain.FdbkCategoryNormal)
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate submission: %w", err)
	}
	display, token, err := s.RenderAndSign(s.RenderSummary(view))
	if err != nil {
		return "", "", err
	}
	s.logger.Info("Signed submission receipt", "submissionId", submissionID)
	return display, token, nil
}
