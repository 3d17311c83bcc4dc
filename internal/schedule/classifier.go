package schedule

import (
	"context"

	"github.com/nexuslabs/stackctl/pkg/types"
)

// categoryOrder fixes the precedence used when scanning retained runs.
var categoryOrder = []types.RunCategory{
	types.RunCategoryInitialSetup,
	types.RunCategorySpinUp,
	types.RunCategoryTeardown,
	types.RunCategoryDestroy,
}

// Classify infers the infrastructure lifecycle state from a window of
// workflow runs ordered most-recent first. It never fails; an empty or
// inconclusive window yields InfraStateUnknown.
//
// At most one run is retained per category (the most recent). Any retained
// run still queued or in progress means the state is running. Otherwise the
// latest completed run decides: a deploy attempt of any conclusion means
// deployed, a teardown means torn-down only when it succeeded (a failed
// teardown likely left the stack up), and a destroy means offline on success
// or torn-down on anything else.
func Classify(runs []types.WorkflowRun) types.InfraState {
	retained := retain(runs)

	for _, cat := range categoryOrder {
		run, ok := retained[cat]
		if ok && (run.Status == types.RunStatusInProgress || run.Status == types.RunStatusQueued) {
			return types.InfraStateRunning
		}
	}

	var latest *types.WorkflowRun
	var latestCategory types.RunCategory
	for _, cat := range categoryOrder {
		run, ok := retained[cat]
		if !ok || run.Status != types.RunStatusCompleted {
			continue
		}
		if latest == nil || run.UpdatedAt.After(latest.UpdatedAt) {
			r := run
			latest = &r
			latestCategory = cat
		}
	}

	if latest == nil {
		return types.InfraStateUnknown
	}

	switch latestCategory {
	case types.RunCategoryInitialSetup, types.RunCategorySpinUp:
		return types.InfraStateDeployed
	case types.RunCategoryTeardown:
		if latest.Conclusion == types.ConclusionSuccess {
			return types.InfraStateTornDown
		}
		return types.InfraStateDeployed
	case types.RunCategoryDestroy:
		if latest.Conclusion == types.ConclusionSuccess {
			return types.InfraStateOffline
		}
		return types.InfraStateTornDown
	}

	return types.InfraStateUnknown
}

// retain keeps the most recent run per category, dropping unrecognized runs.
func retain(runs []types.WorkflowRun) map[types.RunCategory]types.WorkflowRun {
	retained := make(map[types.RunCategory]types.WorkflowRun, len(categoryOrder))
	for _, run := range runs {
		if run.Category == types.RunCategoryUnknown {
			continue
		}
		if _, seen := retained[run.Category]; !seen {
			retained[run.Category] = run
		}
	}
	return retained
}

// RetainedRuns returns the per-category runs the classifier would consider,
// in precedence order. Categories with no run in the window are omitted.
func RetainedRuns(runs []types.WorkflowRun) []types.WorkflowRun {
	retained := retain(runs)
	out := make([]types.WorkflowRun, 0, len(retained))
	for _, cat := range categoryOrder {
		if run, ok := retained[cat]; ok {
			out = append(out, run)
		}
	}
	return out
}

// RunHistory supplies recent workflow runs, most recent first.
type RunHistory interface {
	ListRecentRuns(ctx context.Context, limit int) ([]types.WorkflowRun, error)
}

// ClassifyFromHistory fetches the run window and classifies it. A fetch
// failure fails open to deployed: an inference failure must never silently
// suppress a scheduled teardown, because a wrongly-skipped teardown leaves a
// paid resource running while a wrongly-attempted one is a no-op downstream.
func ClassifyFromHistory(ctx context.Context, history RunHistory, limit int) (types.InfraState, error) {
	runs, err := history.ListRecentRuns(ctx, limit)
	if err != nil {
		return types.InfraStateDeployed, err
	}
	return Classify(runs), nil
}
