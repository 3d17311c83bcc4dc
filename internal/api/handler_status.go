package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nexuslabs/stackctl/internal/schedule"
)

// StatusHandler reports the observed infrastructure state
type StatusHandler struct {
	actions Actions
	limit   int
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(actions Actions) *StatusHandler {
	return &StatusHandler{actions: actions, limit: 100}
}

// RunSummary is the per-category run detail in the status payload
type RunSummary struct {
	Category   string     `json:"category"`
	Status     string     `json:"status"`
	Conclusion string     `json:"conclusion,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
	URL        string     `json:"url,omitempty"`
}

// StatusResponse is the GET /status payload
type StatusResponse struct {
	State string       `json:"state"`
	Runs  []RunSummary `json:"runs"`
}

// Get classifies the recent workflow history into an infrastructure state
func (h *StatusHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	if !h.actions.Configured() {
		return ErrorServiceUnavailable(c, "workflow backend is not configured")
	}

	runs, err := h.actions.ListRecentRuns(ctx, h.limit)
	if err != nil {
		return ErrorServiceUnavailable(c, "failed to fetch workflow history")
	}

	state := schedule.Classify(runs)

	resp := StatusResponse{
		State: string(state),
		Runs:  make([]RunSummary, 0, 4),
	}
	for _, run := range schedule.RetainedRuns(runs) {
		summary := RunSummary{
			Category:   string(run.Category),
			Status:     string(run.Status),
			Conclusion: run.Conclusion,
			URL:        run.URL,
		}
		if !run.UpdatedAt.IsZero() {
			t := run.UpdatedAt
			summary.UpdatedAt = &t
		}
		resp.Runs = append(resp.Runs, summary)
	}

	return SuccessOK(c, resp)
}
