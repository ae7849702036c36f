package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"gitlab.com/agfdbk.net/internal/core/ports/primary"
	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/core/services/feedback"
	"gitlab.com/agfdbk.net/internal/core/services/ultimate"
	"gitlab.com/agfdbk.net/internal/domain"
)

var _ IExportService = (*ExportService)(nil)

type ExportService struct {
	submissionRepo secondary.SubmissionRepository
	testDefRepo    secondary.TestDefRepository
	ultimateSvc    ultimate.IUltimateService
	logger         primary.Logger
}

func NewExportService(
	submissionRepo secondary.SubmissionRepository,
	testDefRepo secondary.TestDefRepository,
	ultimateSvc ultimate.IUltimateService,
	logger primary.Logger,
) *ExportService {
	return &ExportService{
		submissionRepo: submissionRepo,
		testDefRepo:    testDefRepo,
		ultimateSvc:    ultimateSvc,
		logger:         logger,
	}
}

func (s *ExportService) WriteUltimateScoresCSV(ctx context.Context, w io.Writer, projectID int64, progress ProgressFunc) error {
	s.logger.Info("Exporting ultimate submission scores", "projectId", projectID)

	project, err := s.submissionRepo.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	lookup, err := feedback.LoadTestLookup(ctx, s.testDefRepo, projectID)
	if err != nil {
		return err
	}
	ultimates, err := s.ultimateSvc.GetUltimateSubmissions(ctx, projectID)
	if err != nil {
		s.logger.Error("Failed to get ultimate submissions", "projectId", projectID, "error", err)
		return fmt.Errorf("failed to get ultimate submissions: %w", err)
	}

	out := csv.NewWriter(w)
	if err := out.Write(Header(project, lookup)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, u := range ultimates {
		if u.View != nil {
			if err := out.Write(Row(project, lookup, u.Group, u.View)); err != nil {
				return fmt.Errorf("failed to write row of group %d: %w", u.Group.ID, err)
			}
		}
		if progress != nil {
			progress(i+1, len(ultimates))
		}
	}

	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// Header lists the identity columns followed by score columns derived
// from the project's current test definitions.
func Header(project *domain.Project, lookup *feedback.TestLookup) []string {
	header := make([]string, 0, project.MaxGroupSize+3)
	for i := 1; i <= project.MaxGroupSize; i++ {
		header = append(header, fmt.Sprintf("Username %d", i))
	}
	header = append(header, "Timestamp", "Total", "Total Possible")

	for _, suite := range lookup.Suites() {
		header = append(header, suite.Name+" Total", suite.Name+" Total Possible")
		for _, c := range feedback.OrderedCases(suite) {
			header = append(header, suite.Name+": "+c.Name)
		}
	}
	for _, ms := range lookup.MutationSuites() {
		header = append(header, ms.Name+" Total", ms.Name+" Total Possible")
	}
	return header
}

// Row renders one ultimate submission. Tests the submission has no result
// for are left blank.
func Row(project *domain.Project, lookup *feedback.TestLookup, group *domain.Group, view *feedback.SubmissionView) []string {
	row := make([]string, 0, project.MaxGroupSize+3)
	for i := 0; i < project.MaxGroupSize; i++ {
		if i < len(group.MemberNames) {
			row = append(row, group.MemberNames[i])
		} else {
			row = append(row, "")
		}
	}
	row = append(row,
		view.Submission().Timestamp.Format(time.RFC3339),
		strconv.Itoa(view.TotalPoints()),
		strconv.Itoa(view.TotalPointsPossible()),
	)

	suites := map[int64]*feedback.SuiteView{}
	for _, sv := range view.SuiteResults() {
		suites[sv.SuiteID()] = sv
	}
	for _, suite := range lookup.Suites() {
		sv, ok := suites[suite.ID]
		cases := feedback.OrderedCases(suite)
		if !ok {
			row = append(row, blanks(2+len(cases))...)
			continue
		}
		row = append(row, strconv.Itoa(sv.TotalPoints()), strconv.Itoa(sv.TotalPointsPossible()))

		caseViews := map[int64]*feedback.CaseView{}
		for _, cv := range sv.CaseResults() {
			caseViews[cv.CaseID()] = cv
		}
		for _, c := range cases {
			if cv, ok := caseViews[c.ID]; ok {
				row = append(row, strconv.Itoa(cv.TotalPoints()))
			} else {
				row = append(row, "")
			}
		}
	}

	mutationSuites := map[int64]*feedback.MutationSuiteView{}
	for _, msv := range view.MutationSuiteResults() {
		mutationSuites[msv.SuiteID()] = msv
	}
	for _, ms := range lookup.MutationSuites() {
		if msv, ok := mutationSuites[ms.ID]; ok {
			row = append(row, strconv.Itoa(msv.TotalPoints()), strconv.Itoa(msv.TotalPointsPossible()))
		} else {
			row = append(row, "", "")
		}
	}
	return row
}

func blanks(n int) []string {
	return make([]string, n)
}
