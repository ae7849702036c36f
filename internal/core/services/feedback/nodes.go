package feedback

import (
	"gitlab.com/agfdbk.net/internal/domain"
)

// SuiteResultNode is the minimum a suite result must provide to be evaluated.
// It is satisfied both by live result rows and by a denormalized snapshot.
type SuiteResultNode interface {
	PK() int64
	SuiteID() int64
	SetupReturnCode() *int
	SetupTimedOut() bool
	SetupOutput(stream domain.OutputStream) domain.OutputFile
	CaseResults() []CaseResultNode
}

type CaseResultNode interface {
	PK() int64
	CaseID() int64
	CommandResults() []CommandResultNode
}

type CommandResultNode interface {
	PK() int64
	CommandID() int64
	ReturnCode() *int
	ReturnCodeCorrect() *bool
	TimedOut() bool
	OutputCorrect(stream domain.OutputStream) *bool
	Output(stream domain.OutputStream) domain.OutputFile
}

// live rows

// LiveSuiteNodes adapts live result rows
func LiveSuiteNodes(trees []*domain.AGTestSuiteResultTree) []SuiteResultNode {
	nodes := make([]SuiteResultNode, 0, len(trees))
	for _, t := range trees {
		nodes = append(nodes, liveSuiteNode{t})
	}
	return nodes
}

type liveSuiteNode struct {
	row *domain.AGTestSuiteResultTree
}

func (n liveSuiteNode) PK() int64             { return n.row.ID }
func (n liveSuiteNode) SuiteID() int64        { return n.row.SuiteID }
func (n liveSuiteNode) SetupReturnCode() *int { return n.row.SetupReturnCode }
func (n liveSuiteNode) SetupTimedOut() bool   { return n.row.SetupTimedOut }

func (n liveSuiteNode) SetupOutput(stream domain.OutputStream) domain.OutputFile {
	if stream == domain.OutputStderr {
		return domain.OutputFile{Filename: n.row.SetupStderrFilename, Truncated: n.row.SetupStderrTrunc}
	}
	return domain.OutputFile{Filename: n.row.SetupStdoutFilename, Truncated: n.row.SetupStdoutTrunc}
}

func (n liveSuiteNode) CaseResults() []CaseResultNode {
	nodes := make([]CaseResultNode, 0, len(n.row.CaseResults))
	for _, cr := range n.row.CaseResults {
		nodes = append(nodes, liveCaseNode{cr})
	}
	return nodes
}

type liveCaseNode struct {
	row *domain.AGTestCaseResultTree
}

func (n liveCaseNode) PK() int64     { return n.row.ID }
func (n liveCaseNode) CaseID() int64 { return n.row.CaseID }

func (n liveCaseNode) CommandResults() []CommandResultNode {
	nodes := make([]CommandResultNode, 0, len(n.row.CommandResults))
	for _, cmd := range n.row.CommandResults {
		nodes = append(nodes, liveCommandNode{cmd})
	}
	return nodes
}

type liveCommandNode struct {
	row *domain.AGTestCommandResult
}

func (n liveCommandNode) PK() int64                { return n.row.ID }
func (n liveCommandNode) CommandID() int64         { return n.row.CommandID }
func (n liveCommandNode) ReturnCode() *int         { return n.row.ReturnCode }
func (n liveCommandNode) ReturnCodeCorrect() *bool { return n.row.ReturnCodeCorrect }
func (n liveCommandNode) TimedOut() bool           { return n.row.TimedOut }

func (n liveCommandNode) OutputCorrect(stream domain.OutputStream) *bool {
	if stream == domain.OutputStderr {
		return n.row.StderrCorrect
	}
	return n.row.StdoutCorrect
}

func (n liveCommandNode) Output(stream domain.OutputStream) domain.OutputFile {
	if stream == domain.OutputStderr {
		return domain.OutputFile{Filename: n.row.StderrFilename, Truncated: n.row.StderrTruncated}
	}
	return domain.OutputFile{Filename: n.row.StdoutFilename, Truncated: n.row.StdoutTruncated}
}

// denormalized snapshot

// SnapshotSuiteNodes adapts a denormalized snapshot
func SnapshotSuiteNodes(snap domain.DenormalizedAGTestResults) []SuiteResultNode {
	nodes := make([]SuiteResultNode, 0, len(snap))
	for _, s := range snap {
		s := s
		nodes = append(nodes, snapshotSuiteNode{&s})
	}
	return nodes
}

type snapshotSuiteNode struct {
	snap *domain.SuiteResultSnapshot
}

func (n snapshotSuiteNode) PK() int64             { return n.snap.ID }
func (n snapshotSuiteNode) SuiteID() int64        { return n.snap.SuiteID }
func (n snapshotSuiteNode) SetupReturnCode() *int { return n.snap.SetupReturnCode }
func (n snapshotSuiteNode) SetupTimedOut() bool   { return n.snap.SetupTimedOut }

func (n snapshotSuiteNode) SetupOutput(stream domain.OutputStream) domain.OutputFile {
	if stream == domain.OutputStderr {
		return domain.OutputFile{Filename: n.snap.SetupStderrFilename, Truncated: n.snap.SetupStderrTruncated}
	}
	return domain.OutputFile{Filename: n.snap.SetupStdoutFilename, Truncated: n.snap.SetupStdoutTruncated}
}

func (n snapshotSuiteNode) CaseResults() []CaseResultNode {
	nodes := make([]CaseResultNode, 0, len(n.snap.CaseResults))
	for _, cr := range n.snap.CaseResults {
		cr := cr
		nodes = append(nodes, snapshotCaseNode{&cr})
	}
	return nodes
}

type snapshotCaseNode struct {
	snap *domain.CaseResultSnapshot
}

func (n snapshotCaseNode) PK() int64     { return n.snap.ID }
func (n snapshotCaseNode) CaseID() int64 { return n.snap.CaseID }

func (n snapshotCaseNode) CommandResults() []CommandResultNode {
	nodes := make([]CommandResultNode, 0, len(n.snap.CommandResults))
	for _, cmd := range n.snap.CommandResults {
		cmd := cmd
		nodes = append(nodes, snapshotCommandNode{&cmd})
	}
	return nodes
}

type snapshotCommandNode struct {
	snap *domain.CommandResultSnapshot
}

func (n snapshotCommandNode) PK() int64                { return n.snap.ID }
func (n snapshotCommandNode) CommandID() int64         { return n.snap.CommandID }
func (n snapshotCommandNode) ReturnCode() *int         { return n.snap.ReturnCode }
func (n snapshotCommandNode) ReturnCodeCorrect() *bool { return n.snap.ReturnCodeCorrect }
func (n snapshotCommandNode) TimedOut() bool           { return n.snap.TimedOut }

func (n snapshotCommandNode) OutputCorrect(stream domain.OutputStream) *bool {
	if stream == domain.OutputStderr {
		return n.snap.StderrCorrect
	}
	return n.snap.StdoutCorrect
}

func (n snapshotCommandNode) Output(stream domain.OutputStream) domain.OutputFile {
	if stream == domain.OutputStderr {
		return domain.OutputFile{Filename: n.snap.StderrFilename, Truncated: n.snap.StderrTruncated}
	}
	return domain.OutputFile{Filename: n.snap.StdoutFilename, Truncated: n.snap.StdoutTruncated}
}
