package api

import (
	"github.com/labstack/echo/v4"

	"github.com/nexuslabs/stackctl/pkg/types"
)

// DispatchHandler triggers infrastructure workflows on demand
type DispatchHandler struct {
	actions Actions
	rec     Recorder
}

// NewDispatchHandler creates a new dispatch handler
func NewDispatchHandler(actions Actions, rec Recorder) *DispatchHandler {
	return &DispatchHandler{actions: actions, rec: rec}
}

// DispatchResponse is returned when a workflow was accepted
type DispatchResponse struct {
	Workflow string `json:"workflow"`
	Status   string `json:"status"`
}

// Deploy triggers the initial full-stack setup workflow
func (h *DispatchHandler) Deploy(c echo.Context) error {
	return h.dispatch(c, types.WorkflowInitialSetup, nil)
}

// SpinUp triggers the compute spin-up workflow
func (h *DispatchHandler) SpinUp(c echo.Context) error {
	return h.dispatch(c, types.WorkflowSpinUp, nil)
}

// Teardown triggers the compute teardown workflow. The confirm input is the
// workflow's own guard against accidental runs.
func (h *DispatchHandler) Teardown(c echo.Context) error {
	return h.dispatch(c, types.WorkflowTeardown, map[string]interface{}{
		"confirm": "TEARDOWN",
	})
}

// Destroy triggers the full destroy workflow
func (h *DispatchHandler) Destroy(c echo.Context) error {
	return h.dispatch(c, types.WorkflowDestroy, map[string]interface{}{
		"confirm": "DESTROY",
	})
}

func (h *DispatchHandler) dispatch(c echo.Context, workflowFile string, inputs map[string]interface{}) error {
	ctx := c.Request().Context()

	if !h.actions.Configured() {
		return ErrorServiceUnavailable(c, "workflow backend is not configured")
	}

	if err := h.actions.DispatchWorkflow(ctx, workflowFile, inputs); err != nil {
		h.rec.Record(ctx, types.LogLevelError, "manual workflow dispatch failed", types.LogMetadata{
			"workflow": workflowFile,
			"error":    err.Error(),
		})
		return ErrorInternal(c, "failed to trigger workflow")
	}

	h.rec.Record(ctx, types.LogLevelInfo, "workflow triggered manually", types.LogMetadata{
		"workflow": workflowFile,
	})

	return SuccessOK(c, DispatchResponse{
		Workflow: workflowFile,
		Status:   "dispatched",
	})
}
