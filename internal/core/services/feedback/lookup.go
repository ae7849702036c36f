package feedback

import (
	"context"
	"fmt"
	"sort"

	"gitlab.com/agfdbk.net/internal/core/ports/secondary"
	"gitlab.com/agfdbk.net/internal/domain"
)

// TestLookup resolves definition ids of one project to their definitions.
// Everything is fetched when the lookup is built; lookups never do I/O.
type TestLookup struct {
	projectID int64

	suites         map[int64]*domain.AGTestSuite
	cases          map[int64]*domain.AGTestCase
	commands       map[int64]*domain.AGTestCommand
	mutationSuites map[int64]*domain.MutationTestSuite

	orderedSuites         []*domain.AGTestSuite
	orderedMutationSuites []*domain.MutationTestSuite
}

// LoadTestLookup prefetches every test definition of projectID
func LoadTestLookup(ctx context.Context, repo secondary.TestDefRepository, projectID int64) (*TestLookup, error) {
	tests, err := repo.LoadProjectTests(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tests of project %d: %w", projectID, err)
	}
	return NewTestLookup(tests), nil
}

// NewTestLookup indexes already loaded definitions
func NewTestLookup(tests *domain.ProjectTests) *TestLookup {
	l := &TestLookup{
		projectID:      tests.ProjectID,
		suites:         make(map[int64]*domain.AGTestSuite, len(tests.Suites)),
		cases:          make(map[int64]*domain.AGTestCase),
		commands:       make(map[int64]*domain.AGTestCommand),
		mutationSuites: make(map[int64]*domain.MutationTestSuite, len(tests.MutationSuites)),
	}

	for _, s := range tests.Suites {
		l.suites[s.ID] = s
		l.orderedSuites = append(l.orderedSuites, s)
		for _, c := range s.Cases {
			l.cases[c.ID] = c
			for _, cmd := range c.Commands {
				l.commands[cmd.ID] = cmd
			}
		}
	}
	for _, ms := range tests.MutationSuites {
		l.mutationSuites[ms.ID] = ms
		l.orderedMutationSuites = append(l.orderedMutationSuites, ms)
	}

	sort.SliceStable(l.orderedSuites, func(i, j int) bool {
		return lessByOrder(l.orderedSuites[i].Order, l.orderedSuites[i].ID, l.orderedSuites[j].Order, l.orderedSuites[j].ID)
	})
	sort.SliceStable(l.orderedMutationSuites, func(i, j int) bool {
		a, b := l.orderedMutationSuites[i], l.orderedMutationSuites[j]
		return lessByOrder(a.Order, a.ID, b.Order, b.ID)
	})

	return l
}

func (l *TestLookup) ProjectID() int64 {
	return l.projectID
}

// Suite returns the suite with id, or false if it no longer exists
func (l *TestLookup) Suite(id int64) (*domain.AGTestSuite, bool) {
	s, ok := l.suites[id]
	return s, ok
}

func (l *TestLookup) Case(id int64) (*domain.AGTestCase, bool) {
	c, ok := l.cases[id]
	return c, ok
}

func (l *TestLookup) Command(id int64) (*domain.AGTestCommand, bool) {
	c, ok := l.commands[id]
	return c, ok
}

func (l *TestLookup) MutationSuite(id int64) (*domain.MutationTestSuite, bool) {
	s, ok := l.mutationSuites[id]
	return s, ok
}

// Suites lists the project's current suites by order
func (l *TestLookup) Suites() []*domain.AGTestSuite {
	return l.orderedSuites
}

// MutationSuites lists the project's current mutation suites by order
func (l *TestLookup) MutationSuites() []*domain.MutationTestSuite {
	return l.orderedMutationSuites
}

// OrderedCases returns the cases of a suite by order
func OrderedCases(s *domain.AGTestSuite) []*domain.AGTestCase {
	cases := append([]*domain.AGTestCase(nil), s.Cases...)
	sort.SliceStable(cases, func(i, j int) bool {
		return lessByOrder(cases[i].Order, cases[i].ID, cases[j].Order, cases[j].ID)
	})
	return cases
}

func lessByOrder(orderA int, idA int64, orderB int, idB int64) bool {
	if orderA != orderB {
		return orderA < orderB
	}
	return idA < idB
}
