// Package stream monitors triggered Bitrise builds until completion,
// reporting progress to the calling agent runtime.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bitrise-mcp/src/bitrise"
	"bitrise-mcp/src/logger"
	"bitrise-mcp/src/logproc"
)

// Bitrise build status codes.
const (
	StatusInProgress = 0
	StatusSuccess    = 1
	StatusFailed     = 2
	StatusAborted    = 3
)

// StatusDescription returns the human-readable description of a build
// status code.
func StatusDescription(status int) string {
	switch status {
	case StatusInProgress:
		return "not finished yet"
	case StatusSuccess:
		return "successful"
	case StatusFailed:
		return "failed"
	case StatusAborted:
		return "aborted"
	}
	return "unknown"
}

func statusName(status int) string {
	switch status {
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	case StatusAborted:
		return "ABORTED"
	}
	return "UNKNOWN"
}

// Result is the final outcome of monitoring a build.
type Result struct {
	Status      string `json:"status"`
	BuildStatus string `json:"build_status,omitempty"`
	StatusText  string `json:"status_text,omitempty"`
	ElapsedTime string `json:"elapsed_time"`
	FinalInfo   string `json:"final_info,omitempty"`
	Message     string `json:"message,omitempty"`
	LastStatus  *int   `json:"last_status,omitempty"`
}

const (
	// DefaultPollInterval is how often the build status is polled.
	DefaultPollInterval = 30 * time.Second

	// DefaultTimeout bounds how long a build is monitored before giving up.
	DefaultTimeout = 10 * time.Minute
)

// Monitor polls a build's status until it reaches a terminal state.
type Monitor struct {
	client *bitrise.Client
	log    logger.Logger

	PollInterval time.Duration
	Timeout      time.Duration
}

// NewMonitor creates a monitor with default polling and timeout settings.
func NewMonitor(client *bitrise.Client, lg logger.Logger) *Monitor {
	if lg == nil {
		lg = logger.NewSilentLogger()
	}
	return &Monitor{
		client:       client,
		log:          lg,
		PollInterval: DefaultPollInterval,
		Timeout:      DefaultTimeout,
	}
}

type buildStatus struct {
	Data struct {
		Status      int    `json:"status"`
		StatusText  string `json:"status_text"`
		BuildNumber int    `json:"build_number"`
	} `json:"data"`
}

// Wait polls the build until it completes, the monitor times out, or ctx
// is cancelled. Status changes are reported to r. On failure the result
// embeds the first failed step's compacted log.
func (m *Monitor) Wait(ctx context.Context, appSlug, buildSlug string, r Reporter) (Result, error) {
	if r == nil {
		r = NopReporter
	}
	start := time.Now()
	lastStatus := -1

	r.Report(ctx, 0.1, fmt.Sprintf("Monitoring build %s", buildSlug))

	for {
		body, err := m.client.Get(ctx, fmt.Sprintf("/apps/%s/builds/%s", appSlug, buildSlug))
		if err != nil {
			return Result{}, err
		}

		var bs buildStatus
		if err := json.Unmarshal([]byte(body), &bs); err != nil {
			return Result{}, fmt.Errorf("failed to decode build status: %w", err)
		}

		status := bs.Data.Status
		if status != lastStatus {
			lastStatus = status
			elapsed := time.Since(start).Round(time.Second)
			if isTerminal(status) {
				r.Report(ctx, 1.0, fmt.Sprintf("Build #%d completed with status: %s", bs.Data.BuildNumber, statusName(status)))
				return m.finalResult(ctx, appSlug, buildSlug, bs, start), nil
			}
			r.Report(ctx, 0.5, fmt.Sprintf("Build #%d %s: %s (elapsed: %s)",
				bs.Data.BuildNumber, StatusDescription(status), bs.Data.StatusText, elapsed))
			m.log.Debug("build %s status %d (%s)", buildSlug, status, bs.Data.StatusText)
		}

		if time.Since(start) > m.Timeout {
			r.Report(ctx, 1.0, "Build monitoring timed out")
			last := lastStatus
			return Result{
				Status:      "timeout",
				Message:     fmt.Sprintf("Build monitoring timed out after %s", m.Timeout),
				LastStatus:  &last,
				ElapsedTime: time.Since(start).Round(time.Second).String(),
			}, nil
		}

		select {
		case <-ctx.Done():
			return Result{}, &bitrise.CancelledError{Err: ctx.Err()}
		case <-time.After(m.PollInterval):
		}
	}
}

func isTerminal(status int) bool {
	return status == StatusSuccess || status == StatusFailed || status == StatusAborted
}

// finalResult assembles the completion result, fetching logs for finished
// builds: the first failed step's log on failure, the build summary on
// success.
func (m *Monitor) finalResult(ctx context.Context, appSlug, buildSlug string, bs buildStatus, start time.Time) Result {
	name := statusName(bs.Data.Status)
	finalInfo := "Build " + StatusDescription(bs.Data.Status)

	switch bs.Data.Status {
	case StatusFailed:
		if log, err := m.fetchCompactLog(ctx, appSlug, buildSlug, true); err == nil {
			finalInfo += "\n\nBuild logs (first failed step):\n" + log
		} else {
			finalInfo += fmt.Sprintf("\nCould not fetch build logs: %v", err)
		}
	case StatusSuccess:
		if log, err := m.fetchCompactLog(ctx, appSlug, buildSlug, false); err == nil {
			finalInfo += "\n\nBuild summary:\n" + log
		} else {
			finalInfo += fmt.Sprintf("\nCould not fetch build logs: %v", err)
		}
	case StatusAborted:
		finalInfo += "\n\nBuild was aborted"
	}

	return Result{
		Status:      "completed",
		BuildStatus: name,
		StatusText:  bs.Data.StatusText,
		ElapsedTime: time.Since(start).Round(time.Second).String(),
		FinalInfo:   finalInfo,
	}
}

func (m *Monitor) fetchCompactLog(ctx context.Context, appSlug, buildSlug string, failedStepOnly bool) (string, error) {
	body, err := m.client.Get(ctx, fmt.Sprintf("/apps/%s/builds/%s/log", appSlug, buildSlug))
	if err != nil {
		return "", err
	}
	opts := logproc.Options{
		FailedStepOnly: failedStepOnly,
		AppSlug:        appSlug,
		BuildSlug:      buildSlug,
	}
	return logproc.Process(ctx, body, opts, m.client.FetchURL), nil
}
