package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

func TestDiffLists(t *testing.T) {
	tests := []struct {
		name string
		a    []string
		b    []string
		want model.ListDiff
	}{
		{
			name: "disjoint",
			a:    []string{"x"},
			b:    []string{"y"},
			want: model.ListDiff{Added: []string{"y"}, Removed: []string{"x"}, Unchanged: []string{}},
		},
		{
			name: "overlap",
			a:    []string{"slow onboarding"},
			b:    []string{"slow onboarding", "no analytics"},
			want: model.ListDiff{Added: []string{"no analytics"}, Removed: []string{}, Unchanged: []string{"slow onboarding"}},
		},
		{
			name: "identical",
			a:    []string{"x", "y"},
			b:    []string{"x", "y"},
			want: model.ListDiff{Added: []string{}, Removed: []string{}, Unchanged: []string{"x", "y"}},
		},
		{
			name: "both empty",
			a:    nil,
			b:    nil,
			want: model.ListDiff{Added: []string{}, Removed: []string{}, Unchanged: []string{}},
		},
		{
			name: "duplicates collapse",
			a:    []string{"x", "x"},
			b:    []string{"x", "y", "y"},
			want: model.ListDiff{Added: []string{"y"}, Removed: []string{}, Unchanged: []string{"x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, diffLists(tt.a, tt.b))
		})
	}
}

func TestDiffLists_Symmetric(t *testing.T) {
	a := []string{"one", "two", "three"}
	b := []string{"two", "four"}

	forward := diffLists(a, b)
	backward := diffLists(b, a)

	assert.ElementsMatch(t, forward.Added, backward.Removed)
	assert.ElementsMatch(t, forward.Removed, backward.Added)
	assert.ElementsMatch(t, forward.Unchanged, backward.Unchanged)
}

func TestCompare_TwoIterations(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	proj := newTestProject(t, st, model.ContextModeAccumulate)

	iterA := addCompletedIteration(t, st, proj.ID, &model.ResearchReport{
		CompanyOverview: "first pass",
		PainPoints:      []string{"slow onboarding"},
		TalkingPoints:   []string{"intro call"},
	})
	iterB := addCompletedIteration(t, st, proj.ID, &model.ResearchReport{
		CompanyOverview: "second pass",
		PainPoints:      []string{"slow onboarding", "no analytics"},
		TalkingPoints:   []string{"follow-up"},
	})
	require.NoError(t, st.UpsertUseCases(ctx, iterB.JobID, []model.UseCase{
		{Title: "Analytics rollout", Priority: model.PriorityHigh},
	}))

	cmp := NewComparator(st)
	result, err := cmp.Compare(ctx, iterA, iterB)
	require.NoError(t, err)

	assert.Equal(t, iterA.Sequence, result.A.Sequence)
	assert.Equal(t, iterB.Sequence, result.B.Sequence)
	require.NotNil(t, result.A.Report)
	require.NotNil(t, result.B.Report)
	assert.Equal(t, 1, result.B.UseCaseCount)
	assert.Equal(t, 0, result.A.UseCaseCount)

	assert.Equal(t, []string{"no analytics"}, result.Differences.PainPoints.Added)
	assert.Empty(t, result.Differences.PainPoints.Removed)
	assert.Equal(t, []string{"slow onboarding"}, result.Differences.PainPoints.Unchanged)

	assert.Equal(t, []string{"follow-up"}, result.Differences.TalkingPoints.Added)
	assert.Equal(t, []string{"intro call"}, result.Differences.TalkingPoints.Removed)
}

func TestCompare_IterationWithoutJob(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	proj := newTestProject(t, st, model.ContextModeAccumulate)

	iterA := addCompletedIteration(t, st, proj.ID, &model.ResearchReport{
		PainPoints: []string{"slow onboarding"},
	})
	iterB := addPendingIteration(t, st, proj.ID)

	cmp := NewComparator(st)
	result, err := cmp.Compare(ctx, iterA, iterB)
	require.NoError(t, err)

	assert.Nil(t, result.B.Job)
	assert.Nil(t, result.B.Report)
	assert.Equal(t, []string{"slow onboarding"}, result.Differences.PainPoints.Removed)
	assert.Empty(t, result.Differences.PainPoints.Added)
}

func TestCompare_DanglingJobReference(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	proj := newTestProject(t, st, model.ContextModeAccumulate)

	iterA := addCompletedIteration(t, st, proj.ID, &model.ResearchReport{
		PainPoints: []string{"slow onboarding"},
	})
	iterB := addPendingIteration(t, st, proj.ID)
	iterB.JobID = "gone-job"

	cmp := NewComparator(st)
	result, err := cmp.Compare(ctx, iterA, iterB)
	require.NoError(t, err)

	// The missing job row degrades to an identity-only snapshot.
	assert.Nil(t, result.B.Job)
	assert.Nil(t, result.B.Report)
	assert.Equal(t, iterB.Sequence, result.B.Sequence)
	assert.Equal(t, []string{"slow onboarding"}, result.Differences.PainPoints.Removed)
}

func TestCompare_GapFields(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	proj := newTestProject(t, st, model.ContextModeAccumulate)

	iterA := addCompletedIteration(t, st, proj.ID, nil)
	require.NoError(t, st.UpsertGapAnalysis(ctx, iterA.JobID, &model.GapAnalysis{
		TechnologyGaps: []string{"no cloud"},
		PriorityAreas:  []string{"reporting"},
	}))
	iterB := addCompletedIteration(t, st, proj.ID, nil)

	cmp := NewComparator(st)
	result, err := cmp.Compare(ctx, iterA, iterB)
	require.NoError(t, err)

	require.NotNil(t, result.A.GapAnalysis)
	assert.Equal(t, []string{"no cloud"}, result.A.GapAnalysis.TechnologyGaps)
	assert.Nil(t, result.B.GapAnalysis)
}
