package types

import (
	"strings"
	"time"
)

// InfraState is the coarse lifecycle classification of the managed stack.
// It is inferred from workflow run history, never observed directly.
type InfraState string

const (
	InfraStateDeployed InfraState = "deployed"
	InfraStateTornDown InfraState = "torn-down"
	InfraStateOffline  InfraState = "offline"
	InfraStateRunning  InfraState = "running"
	InfraStateUnknown  InfraState = "unknown"
)

// RunCategory identifies which lifecycle workflow a run belongs to.
type RunCategory string

const (
	RunCategoryInitialSetup RunCategory = "initial-setup"
	RunCategorySpinUp       RunCategory = "spin-up"
	RunCategoryTeardown     RunCategory = "teardown"
	RunCategoryDestroy      RunCategory = "destroy"
	RunCategoryUnknown      RunCategory = "unknown"
)

// RunStatus is the execution status reported for a workflow run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
)

// ConclusionSuccess is the only run conclusion treated as a clean finish;
// everything else (failure, cancelled, timed_out, ...) is a non-success.
const ConclusionSuccess = "success"

// Workflow file paths used to categorize runs. Name matching below is a
// fallback for runs where the API omits the path.
const (
	WorkflowInitialSetup = "initial-setup.yaml"
	WorkflowSpinUp       = "spin-up.yml"
	WorkflowTeardown     = "teardown.yml"
	WorkflowDestroy      = "destroy-all.yml"
)

// WorkflowRun is one recorded execution of a lifecycle workflow, with the
// category already derived at ingestion time.
type WorkflowRun struct {
	Category   RunCategory `json:"category"`
	Status     RunStatus   `json:"status"`
	Conclusion string      `json:"conclusion,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at"`
	URL        string      `json:"url,omitempty"`
}

// CategorizeWorkflow maps a run's file path and display name to a RunCategory.
// Path match wins over name match; precedence is initial-setup, spin-up,
// teardown, destroy. This is the single place the heuristic lives so it can
// be swapped if the API ever exposes a typed field.
func CategorizeWorkflow(path, name string) RunCategory {
	switch {
	case strings.Contains(path, WorkflowInitialSetup) || strings.Contains(name, "Initial Setup"):
		return RunCategoryInitialSetup
	case strings.Contains(path, WorkflowSpinUp) || strings.Contains(name, "Spin Up") || strings.Contains(name, "Spin-Up"):
		return RunCategorySpinUp
	case strings.Contains(path, WorkflowTeardown) || strings.Contains(name, "Teardown"):
		return RunCategoryTeardown
	case strings.Contains(path, WorkflowDestroy) || strings.Contains(name, "Destroy"):
		return RunCategoryDestroy
	default:
		return RunCategoryUnknown
	}
}

// Decision is the single action chosen by the teardown engine for one tick.
type Decision string

const (
	DecisionNotify   Decision = "notify"
	DecisionTeardown Decision = "teardown"
	DecisionNoop     Decision = "noop"
)
