package ultimate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gitlab.com/agfdbk.net/internal/domain"
)

func sub(id int64, ts time.Time, doesNotCountFor ...string) *domain.Submission {
	return &domain.Submission{ID: id, Timestamp: ts, DoesNotCountFor: doesNotCountFor}
}

func TestSelectMostRecent(t *testing.T) {
	assert.Nil(t, SelectMostRecent(nil))

	subs := []*domain.Submission{sub(1, t0), sub(3, t0.Add(time.Minute)), sub(2, t0.Add(time.Minute))}
	assert.Equal(t, int64(3), SelectMostRecent(subs).ID)
}

func TestSelectBest(t *testing.T) {
	assert.Nil(t, SelectBest(nil, nil))

	subs := []*domain.Submission{sub(4, t0.Add(time.Hour)), sub(5, t0), sub(6, t0)}
	points := map[int64]int{4: 8, 5: 8, 6: 8}
	assert.Equal(t, int64(5), SelectBest(subs, points).ID)

	points[6] = 9
	assert.Equal(t, int64(6), SelectBest(subs, points).ID)
}

func TestCountingForLeavesInputUntouched(t *testing.T) {
	subs := []*domain.Submission{sub(1, t0), sub(2, t0, "a"), sub(3, t0, "b")}

	forA := CountingFor(subs, "a")
	assert.Len(t, forA, 2)
	assert.Equal(t, int64(3), forA[1].ID)
	assert.Len(t, subs, 3)
	assert.Len(t, CountingFor(subs, "c"), 3)
}
