// Package github wraps the GitHub Actions API used to observe and drive the
// managed stack: listing recent workflow runs (the job-run history source)
// and firing workflow_dispatch events (the job dispatcher).
package github

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/go-github/v66/github"
	"golang.org/x/time/rate"

	"github.com/nexuslabs/stackctl/pkg/types"
)

// Config identifies the repository whose workflows manage the stack.
type Config struct {
	Token string
	Owner string
	Repo  string
	// Ref is the git ref workflow dispatches run against.
	Ref string
}

// RetryConfig defines the retry behavior for API calls
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
}

// Client talks to the GitHub Actions API with retry and client-side rate
// limiting.
type Client struct {
	config      Config
	gh          *github.Client
	retryConfig RetryConfig
	limiter     *rate.Limiter
}

// NewClient creates a GitHub client. An empty token yields an unauthenticated
// client; Configured reports whether the identity configuration is complete.
func NewClient(config Config) *Client {
	gh := github.NewClient(nil)
	if config.Token != "" {
		gh = gh.WithAuthToken(config.Token)
	}
	if config.Ref == "" {
		config.Ref = "main"
	}

	return &Client{
		config: config,
		gh:     gh,
		retryConfig: RetryConfig{
			MaxRetries:     3,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     30 * time.Second,
			BackoffFactor:  2.0,
		},
		// Stays well under the authenticated API quota even with the
		// control-plane UI polling status.
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Configured reports whether token, owner, and repo are all present.
func (c *Client) Configured() bool {
	return c.config.Token != "" && c.config.Owner != "" && c.config.Repo != ""
}

// ListRecentRuns fetches the most recent workflow runs, most recent first,
// with the lifecycle category derived at ingestion.
func (c *Client) ListRecentRuns(ctx context.Context, limit int) ([]types.WorkflowRun, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("github client not configured: token, owner, and repo are required")
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var runs *github.WorkflowRuns
	err := c.executeWithRetry(ctx, func() error {
		var err error
		runs, _, err = c.gh.Actions.ListRepositoryWorkflowRuns(ctx, c.config.Owner, c.config.Repo,
			&github.ListWorkflowRunsOptions{
				ListOptions: github.ListOptions{PerPage: limit},
			})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list workflow runs: %w", err)
	}

	if runs == nil || runs.WorkflowRuns == nil {
		return nil, fmt.Errorf("list workflow runs: empty response")
	}

	converted := make([]types.WorkflowRun, 0, len(runs.WorkflowRuns))
	for _, run := range runs.WorkflowRuns {
		if run == nil {
			continue
		}
		converted = append(converted, convertRun(run))
	}

	return converted, nil
}

// DispatchWorkflow fires a workflow_dispatch event for the given workflow
// file. GitHub acknowledges a dispatch without reporting the run's outcome;
// responsibility ends at the trigger.
func (c *Client) DispatchWorkflow(ctx context.Context, workflowFile string, inputs map[string]interface{}) error {
	if !c.Configured() {
		return fmt.Errorf("github client not configured: token, owner, and repo are required")
	}

	event := github.CreateWorkflowDispatchEventRequest{
		Ref:    c.config.Ref,
		Inputs: inputs,
	}

	err := c.executeWithRetry(ctx, func() error {
		_, err := c.gh.Actions.CreateWorkflowDispatchEventByFileName(ctx, c.config.Owner, c.config.Repo, workflowFile, event)
		return err
	})
	if err != nil {
		return fmt.Errorf("dispatch workflow %s: %w", workflowFile, err)
	}

	return nil
}

// convertRun maps a GitHub workflow run to the domain model, deriving the
// lifecycle category once from the run's path and display name.
func convertRun(run *github.WorkflowRun) types.WorkflowRun {
	return types.WorkflowRun{
		Category:   types.CategorizeWorkflow(run.GetPath(), run.GetName()),
		Status:     types.RunStatus(run.GetStatus()),
		Conclusion: run.GetConclusion(),
		UpdatedAt:  run.GetUpdatedAt().Time,
		URL:        run.GetHTMLURL(),
	}
}

// executeWithRetry executes an operation with rate limiting and exponential
// backoff retry.
func (c *Client) executeWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			return nil
		}

		if !c.isRetryableError(lastErr) {
			return lastErr
		}

		if attempt == c.retryConfig.MaxRetries {
			break
		}

		backoff := c.calculateBackoff(attempt)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", c.retryConfig.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (c *Client) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if ghErr, ok := err.(*github.ErrorResponse); ok {
		switch ghErr.Response.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		case http.StatusForbidden:
			if ghErr.Message == "API rate limit exceeded" {
				return true
			}
		}
	}

	return false
}

// calculateBackoff calculates the backoff duration for a retry attempt
func (c *Client) calculateBackoff(attempt int) time.Duration {
	multiplier := 1 << uint(attempt)
	base := float64(c.retryConfig.InitialBackoff) * float64(multiplier)

	// Jitter of roughly 20 percent either way keeps retries from clustering.
	jitter := (rand.Float64() * 0.4) - 0.2
	backoff := time.Duration(base * (1 + jitter))

	if backoff > c.retryConfig.MaxBackoff {
		backoff = c.retryConfig.MaxBackoff
	}

	return backoff
}
