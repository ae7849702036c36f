package feedback

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gitlab.com/agfdbk.net/internal/domain"
	"gitlab.com/agfdbk.net/internal/static/errs"
)

// CommandView is what one viewer may see of a single command result
type CommandView struct {
	deps     *Deps
	result   CommandResultNode
	cmd      *domain.AGTestCommand
	category domain.FdbkCategory
	config   domain.AGTestCommandFdbkConfig
}

func newCommandView(
	deps *Deps,
	result CommandResultNode,
	cmd *domain.AGTestCommand,
	category domain.FdbkCategory,
	isFirstFailure bool,
) (*CommandView, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	config, err := cmd.FdbkConfig(category, isFirstFailure)
	if err != nil {
		return nil, err
	}
	return &CommandView{
		deps:     deps,
		result:   result,
		cmd:      cmd,
		category: category,
		config:   config,
	}, nil
}

func validateCommand(cmd *domain.AGTestCommand) error {
	switch cmd.ExpectedReturnCode {
	case domain.ExpectedReturnCodeNone, domain.ExpectedReturnCodeZero, domain.ExpectedReturnCodeNonzero:
	default:
		return fmt.Errorf("%w: command %d expects return code %q", errs.ErrConfiguration, cmd.ID, cmd.ExpectedReturnCode)
	}

	for _, stream := range []domain.OutputStream{domain.OutputStdout, domain.OutputStderr} {
		source, _, file := expectedSource(cmd, stream)
		switch source {
		case domain.ExpectedOutputSourceNone, domain.ExpectedOutputSourceText:
		case domain.ExpectedOutputSourceInstructorFile:
			if file == nil || *file == "" {
				return fmt.Errorf("%w: command %d has no expected %s file", errs.ErrMissingExpectedOutputSource, cmd.ID, stream)
			}
		default:
			return fmt.Errorf("%w: command %d %s source %q", errs.ErrUnknownExpectedOutputSource, cmd.ID, stream, source)
		}
	}
	return nil
}

func expectedSource(cmd *domain.AGTestCommand, stream domain.OutputStream) (domain.ExpectedOutputSource, string, *string) {
	if stream == domain.OutputStderr {
		return cmd.ExpectedStderrSource, cmd.ExpectedStderrText, cmd.ExpectedStderrInstructorFile
	}
	return cmd.ExpectedStdoutSource, cmd.ExpectedStdoutText, cmd.ExpectedStdoutInstructorFile
}

func (v *CommandView) PK() int64 {
	return v.result.PK()
}

func (v *CommandView) CommandID() int64 {
	return v.cmd.ID
}

func (v *CommandView) Name() string {
	return v.cmd.Name
}

func (v *CommandView) Order() int {
	return v.cmd.Order
}

func (v *CommandView) Visible() bool {
	return v.config.Visible
}

// FdbkConfig is the configuration resolved for this view
func (v *CommandView) FdbkConfig() domain.AGTestCommandFdbkConfig {
	return v.config
}

func (v *CommandView) TimedOut() *bool {
	if !v.config.ShowWhetherTimedOut {
		return nil
	}
	timedOut := v.result.TimedOut()
	return &timedOut
}

// return code

func (v *CommandView) ReturnCodeCorrect() *bool {
	if v.cmd.ExpectedReturnCode == domain.ExpectedReturnCodeNone ||
		v.config.ReturnCodeFdbkLevel == domain.ValueFdbkNoFeedback || v.config.ReturnCodeFdbkLevel == "" {
		return nil
	}
	return v.result.ReturnCodeCorrect()
}

func (v *CommandView) ExpectedReturnCode() *domain.ExpectedReturnCode {
	if v.cmd.ExpectedReturnCode == domain.ExpectedReturnCodeNone ||
		v.config.ReturnCodeFdbkLevel != domain.ValueFdbkExpectedAndActual {
		return nil
	}
	expected := v.cmd.ExpectedReturnCode
	return &expected
}

func (v *CommandView) ActualReturnCode() *int {
	if !v.config.ShowActualReturnCode && v.config.ReturnCodeFdbkLevel != domain.ValueFdbkExpectedAndActual {
		return nil
	}
	return v.result.ReturnCode()
}

func (v *CommandView) ReturnCodePoints() int {
	return dimensionPoints(v.ReturnCodeCorrect(), v.cmd.PointsForCorrectReturnCode, v.cmd.DeductionForWrongReturnCode)
}

func (v *CommandView) ReturnCodePointsPossible() int {
	return dimensionPointsPossible(v.ReturnCodeCorrect(), v.cmd.PointsForCorrectReturnCode)
}

// stdout and stderr

func (v *CommandView) outputLevel(stream domain.OutputStream) domain.ValueFeedbackLevel {
	if stream == domain.OutputStderr {
		return v.config.StderrFdbkLevel
	}
	return v.config.StdoutFdbkLevel
}

func (v *CommandView) showActualOutput(stream domain.OutputStream) bool {
	if v.outputLevel(stream) == domain.ValueFdbkExpectedAndActual {
		return true
	}
	if stream == domain.OutputStderr {
		return v.config.ShowActualStderr
	}
	return v.config.ShowActualStdout
}

// OutputCorrect is nil when the stream is not checked or its correctness is hidden
func (v *CommandView) OutputCorrect(stream domain.OutputStream) *bool {
	source, _, _ := expectedSource(v.cmd, stream)
	level := v.outputLevel(stream)
	if source == domain.ExpectedOutputSourceNone || level == domain.ValueFdbkNoFeedback || level == "" {
		return nil
	}
	return v.result.OutputCorrect(stream)
}

func (v *CommandView) OutputPoints(stream domain.OutputStream) int {
	if stream == domain.OutputStderr {
		return dimensionPoints(v.OutputCorrect(stream), v.cmd.PointsForCorrectStderr, v.cmd.DeductionForWrongStderr)
	}
	return dimensionPoints(v.OutputCorrect(stream), v.cmd.PointsForCorrectStdout, v.cmd.DeductionForWrongStdout)
}

func (v *CommandView) OutputPointsPossible(stream domain.OutputStream) int {
	if stream == domain.OutputStderr {
		return dimensionPointsPossible(v.OutputCorrect(stream), v.cmd.PointsForCorrectStderr)
	}
	return dimensionPointsPossible(v.OutputCorrect(stream), v.cmd.PointsForCorrectStdout)
}

// OutputFile returns the handle of the captured stream, if this viewer may read it
func (v *CommandView) OutputFile(stream domain.OutputStream) (domain.OutputFile, bool) {
	if !v.showActualOutput(stream) {
		return domain.OutputFile{}, false
	}
	return v.result.Output(stream), true
}

// Output opens the captured stream. It fails with errs.ErrNotVisible when
// the stream is hidden and errs.ErrOutputUnavailable when it cannot be read.
func (v *CommandView) Output(ctx context.Context, stream domain.OutputStream) (io.ReadCloser, error) {
	file, ok := v.OutputFile(stream)
	if !ok {
		return nil, fmt.Errorf("%w: %s of command result %d", errs.ErrNotVisible, stream, v.PK())
	}
	return openOutput(ctx, v.deps, file.Filename)
}

// ExpectedOutput returns the expected content of stream at the richest
// feedback level, read from text or from the instructor file.
func (v *CommandView) ExpectedOutput(ctx context.Context, stream domain.OutputStream) ([]byte, error) {
	source, text, file := expectedSource(v.cmd, stream)
	if v.outputLevel(stream) != domain.ValueFdbkExpectedAndActual || source == domain.ExpectedOutputSourceNone {
		return nil, fmt.Errorf("%w: expected %s of command result %d", errs.ErrNotVisible, stream, v.PK())
	}

	switch source {
	case domain.ExpectedOutputSourceText:
		return []byte(text), nil
	case domain.ExpectedOutputSourceInstructorFile:
		return readOutput(ctx, v.deps, *file)
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownExpectedOutputSource, source)
	}
}

// Diff compares the expected content of stream with the captured one using
// the command's whitespace and case handling.
func (v *CommandView) Diff(ctx context.Context, stream domain.OutputStream) (domain.DiffResult, error) {
	expected, err := v.ExpectedOutput(ctx, stream)
	if err != nil {
		return domain.DiffResult{}, err
	}
	actual, err := readOutput(ctx, v.deps, v.result.Output(stream).Filename)
	if err != nil {
		return domain.DiffResult{}, err
	}

	if v.deps == nil || v.deps.Differ == nil {
		return domain.DiffResult{}, fmt.Errorf("no differ configured")
	}
	return v.deps.Differ.Diff(expected, actual, domain.DiffOptions{
		IgnoreCase:              v.cmd.IgnoreCase,
		IgnoreBlankLines:        v.cmd.IgnoreBlankLines,
		IgnoreWhitespace:        v.cmd.IgnoreWhitespace,
		IgnoreWhitespaceChanges: v.cmd.IgnoreWhitespaceChanges,
	})
}

// totals

func (v *CommandView) TotalPoints() int {
	if !v.config.ShowPoints {
		return 0
	}
	return v.ReturnCodePoints() + v.OutputPoints(domain.OutputStdout) + v.OutputPoints(domain.OutputStderr)
}

func (v *CommandView) TotalPointsPossible() int {
	if !v.config.ShowPoints {
		return 0
	}
	return v.ReturnCodePointsPossible() +
		v.OutputPointsPossible(domain.OutputStdout) +
		v.OutputPointsPossible(domain.OutputStderr)
}

func dimensionPoints(correct *bool, reward, deduction int) int {
	if correct == nil {
		return 0
	}
	if *correct {
		return reward
	}
	return deduction
}

func dimensionPointsPossible(correct *bool, reward int) int {
	if correct == nil {
		return 0
	}
	return reward
}

func openOutput(ctx context.Context, deps *Deps, filename string) (io.ReadCloser, error) {
	if filename == "" {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	if deps == nil || deps.Store == nil {
		return nil, fmt.Errorf("%w: no output store configured", errs.ErrOutputUnavailable)
	}
	return deps.Store.Open(ctx, filename)
}

func readOutput(ctx context.Context, deps *Deps, filename string) ([]byte, error) {
	rc, err := openOutput(ctx, deps, filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", errs.ErrOutputUnavailable, filename, err)
	}
	return data, nil
}
