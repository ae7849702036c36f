package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSelect(t *testing.T) {
	query, args := NewQueryBuilder("public").
		Select("s.id", "s.status").
		From("submissions").
		Join(JoinTypeInner, "groups", "g", "g.id = s.group_id").
		Where("g.project_id = ?", int64(3)).
		And("s.status = ?", "finished_grading").
		OrderBy("s.id", true).
		Build()

	assert.Equal(t,
		"SELECT s.id, s.status FROM public.submissions INNER JOIN public.groups g ON g.id = s.group_id"+
			" WHERE g.project_id = ? AND s.status = ? ORDER BY s.id ASC",
		query)
	assert.Equal(t, []interface{}{int64(3), "finished_grading"}, args)
}

func TestBuildGroupedConditions(t *testing.T) {
	query, args := NewQueryBuilder("").
		Select("id").
		From("t").
		Where("a = ?", 1).
		OrGroup(func(qb QueryBuilder) {
			qb.Where("b = ?", 2).And("c = ?", 3)
		}).
		AndGroup(func(qb QueryBuilder) {}).
		Build()

	assert.Equal(t, "SELECT id FROM t WHERE a = ? OR (b = ? AND c = ?)", query)
	assert.Equal(t, []interface{}{1, 2, 3}, args)
}

func TestBuildForUpdate(t *testing.T) {
	query, args := NewQueryBuilder("public").
		Select("id").
		From("submissions").
		Where("id = ?", 7).
		ForUpdate().
		Build()

	assert.Equal(t, "SELECT id FROM public.submissions WHERE id = ? FOR UPDATE", query)
	assert.Equal(t, []interface{}{7}, args)
}

func TestBuildUpdate(t *testing.T) {
	query, args := NewQueryBuilder("public").
		Update("submissions", UpdateData{"status": "queued", "denormalized_ag_test_results": "{}"}).
		Where("id = ?", 7).
		Build()

	assert.Equal(t, "UPDATE public.submissions SET denormalized_ag_test_results = ?, status = ? WHERE id = ?", query)
	assert.Equal(t, []interface{}{"{}", "queued", 7}, args)
}
