package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bitrise-mcp/src/bitrise"
	"bitrise-mcp/src/logger"
	"bitrise-mcp/src/logproc"
	"bitrise-mcp/src/stream"
)

// registerHooks attaches the response post-processors that consume the
// local-only tool parameters: log compaction on get_build_log and build
// monitoring on trigger_bitrise_build.
func registerHooks(d *Dispatcher, client *bitrise.Client, lg logger.Logger) {
	d.RegisterHook("get_build_log", buildLogHook(client))
	d.RegisterHook("trigger_bitrise_build", triggerStreamHook(client, lg))
}

// buildLogHook compacts the log response down to the failed step when the
// caller asked for it. Without failed_step_only the response passes
// through untouched.
func buildLogHook(client *bitrise.Client) Hook {
	return func(ctx context.Context, vals map[string]any, body string) (string, error) {
		failedOnly, _ := vals["failed_step_only"].(bool)
		if !failedOnly {
			return body, nil
		}
		index, _ := vals["failed_step_index"].(int)
		appSlug, _ := vals["app_slug"].(string)
		buildSlug, _ := vals["build_slug"].(string)

		opts := logproc.Options{
			FailedStepOnly:  true,
			FailedStepIndex: index,
			AppSlug:         appSlug,
			BuildSlug:       buildSlug,
		}
		return logproc.Process(ctx, body, opts, client.FetchURL), nil
	}
}

// triggerStreamHook follows a triggered build to completion when
// stream_progress is set, reporting progress through the context reporter
// and returning the final build summary instead of the raw trigger
// response.
func triggerStreamHook(client *bitrise.Client, lg logger.Logger) Hook {
	return func(ctx context.Context, vals map[string]any, body string) (string, error) {
		streamProgress, _ := vals["stream_progress"].(bool)
		if !streamProgress {
			return body, nil
		}

		var resp struct {
			BuildSlug string `json:"build_slug"`
		}
		if err := json.Unmarshal([]byte(body), &resp); err != nil || resp.BuildSlug == "" {
			return fmt.Sprintf("Build triggered, but the response carried no build_slug to monitor: %s", body), nil
		}
		appSlug, _ := vals["app_slug"].(string)

		monitor := stream.NewMonitor(client, lg)
		if secs, ok := vals["poll_interval"].(int); ok && secs > 0 {
			monitor.PollInterval = time.Duration(secs) * time.Second
		}

		result, err := monitor.Wait(ctx, appSlug, resp.BuildSlug, stream.FromContext(ctx))
		if err != nil {
			return "", err
		}
		out, err := json.Marshal(result)
		if err != nil {
			return "", fmt.Errorf("encoding monitor result: %w", err)
		}
		return string(out), nil
	}
}
