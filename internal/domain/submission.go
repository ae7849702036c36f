package domain

import (
	"time"
)

// SubmissionStatus is the grading state of a submission
type SubmissionStatus string

const (
	SubmissionStatusReceived           SubmissionStatus = "received"
	SubmissionStatusQueued             SubmissionStatus = "queued"
	SubmissionStatusBeingGraded        SubmissionStatus = "being_graded"
	SubmissionStatusWaitingForDeferred SubmissionStatus = "waiting_for_deferred"
	SubmissionStatusFinishedGrading    SubmissionStatus = "finished_grading"
	SubmissionStatusRemovedFromQueue   SubmissionStatus = "removed_from_queue"
	SubmissionStatusError              SubmissionStatus = "error"
)

// NormalFdbkCacheable reports whether normal feedback for a submission in
// this state can no longer change without a status transition.
func (s SubmissionStatus) NormalFdbkCacheable() bool {
	return s == SubmissionStatusWaitingForDeferred || s == SubmissionStatusFinishedGrading
}

// Submission represents one graded (or in-progress) submission of a group
type Submission struct {
	ID        int64            `db:"id"`
	GroupID   int64            `db:"group_id"`
	ProjectID int64            `db:"project_id"`
	Timestamp time.Time        `db:"timestamp"`
	Status    SubmissionStatus `db:"status"`

	// Usernames of group members this submission does not count for when
	// choosing their ultimate submission.
	DoesNotCountFor []string `db:"-"`

	DenormalizedAGTestResults DenormalizedAGTestResults `db:"-"`
}

// CountsFor reports whether the submission may be chosen as username's ultimate submission
func (s *Submission) CountsFor(username string) bool {
	for _, u := range s.DoesNotCountFor {
		if u == username {
			return false
		}
	}
	return true
}

type SubmissionTable struct {
	ID                        string
	GroupID                   string
	ProjectID                 string
	Timestamp                 string
	Status                    string
	DoesNotCountFor           string
	DenormalizedAGTestResults string
}

func GetSubmissionTable() SubmissionTable {
	return SubmissionTable{
		ID:                        "id",
		GroupID:                   "group_id",
		ProjectID:                 "project_id",
		Timestamp:                 "timestamp",
		Status:                    "status",
		DoesNotCountFor:           "does_not_count_for",
		DenormalizedAGTestResults: "denormalized_ag_test_results",
	}
}

func (SubmissionTable) TableName() string {
	return "submissions"
}
