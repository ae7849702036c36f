package resultrepository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/agfdbk.net/internal/domain"
)

func TestAssembleTree(t *testing.T) {
	suites := []domain.AGTestSuiteResult{{ID: 1, SuiteID: 10}, {ID: 2, SuiteID: 20}}
	cases := []domain.AGTestCaseResult{
		{ID: 11, CaseID: 100, SuiteResultID: 1},
		{ID: 12, CaseID: 101, SuiteResultID: 1},
		{ID: 21, CaseID: 200, SuiteResultID: 2},
	}
	cmds := []domain.AGTestCommandResult{
		{ID: 111, CommandID: 1000, CaseResultID: 11},
		{ID: 112, CommandID: 1001, CaseResultID: 11},
		{ID: 211, CommandID: 2000, CaseResultID: 21},
		// belongs to a case result of another submission
		{ID: 999, CommandID: 9, CaseResultID: 99},
	}

	tree := assembleTree(suites, cases, cmds)
	require.Len(t, tree, 2)

	require.Len(t, tree[0].CaseResults, 2)
	assert.Equal(t, int64(11), tree[0].CaseResults[0].ID)
	require.Len(t, tree[0].CaseResults[0].CommandResults, 2)
	assert.Equal(t, int64(112), tree[0].CaseResults[0].CommandResults[1].ID)
	assert.Empty(t, tree[0].CaseResults[1].CommandResults)

	require.Len(t, tree[1].CaseResults, 1)
	assert.Equal(t, int64(211), tree[1].CaseResults[0].CommandResults[0].ID)

	// rows are copied, not aliased to the loop variable
	assert.NotSame(t, tree[0].CaseResults[0].CommandResults[0], tree[0].CaseResults[0].CommandResults[1])
}
