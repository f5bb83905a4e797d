// Package logproc compacts Bitrise build log responses: it can extract the
// log section of a single failed step (located via the bitrise summary
// tables) and filter step output down to keyword matches with surrounding
// context.
package logproc

import (
	"context"
	"encoding/json"
	"fmt"
)

// Options controls how a build log response is processed.
type Options struct {
	// FailedStepOnly extracts only the log of a failed step.
	FailedStepOnly bool

	// FailedStepIndex selects which failed step to show, 1-based.
	FailedStepIndex int

	// FilterPatterns maps step-title fragments to keyword lists; steps
	// whose title contains a fragment are reduced to keyword matches.
	FilterPatterns map[string][]string

	// ContextLines is the number of lines kept around each keyword match.
	ContextLines int

	// AppSlug and BuildSlug, when set, let the response suggest the exact
	// follow-up call for the next failed step.
	AppSlug   string
	BuildSlug string
}

// Fetcher retrieves the full raw log from an absolute URL (the API response
// carries an expiring pre-signed URL for the complete log).
type Fetcher func(ctx context.Context, url string) (string, error)

const (
	defaultFailedStepIndex = 1
	defaultContextLines    = 5
)

// Process compacts a raw build log API response according to opts and
// returns the rewritten JSON response. Whenever the response cannot be
// processed (not JSON, no log content) it is returned unchanged, matching
// the pass-through contract of the tool.
func Process(ctx context.Context, logResponse string, opts Options, fetch Fetcher) string {
	var logData map[string]any
	if err := json.Unmarshal([]byte(logResponse), &logData); err != nil {
		return logResponse
	}

	if !opts.FailedStepOnly && len(opts.FilterPatterns) == 0 {
		return logResponse
	}
	if opts.FailedStepIndex < 1 {
		opts.FailedStepIndex = defaultFailedStepIndex
	}
	if opts.ContextLines < 1 {
		opts.ContextLines = defaultContextLines
	}

	content := fullLogContent(ctx, logData, fetch)
	if content == "" {
		return logResponse
	}

	var (
		processed   string
		failedCount int
		failedNames []string
	)
	switch {
	case opts.FailedStepOnly:
		var extraction extractResult
		extraction = extractFailedStep(content, opts.FailedStepIndex)
		processed = extraction.content
		failedCount = extraction.failedCount
		failedNames = extraction.failedNames
		if failedCount > 0 && len(opts.FilterPatterns) > 0 {
			processed = filterContent(processed, opts.FilterPatterns, opts.ContextLines)
		}
	default:
		processed = filterContent(content, opts.FilterPatterns, opts.ContextLines)
	}

	out := make(map[string]any, len(logData)+2)
	for k, v := range logData {
		out[k] = v
	}
	out["note"] = buildNote(opts, failedCount, failedNames)
	if cmd := nextCommand(opts, failedCount); cmd != "" {
		out["next_command"] = cmd
	}
	out["log_chunks"] = []any{map[string]any{"chunk": processed, "position": 0}}
	if _, ok := out["expiring_raw_log_url"]; ok {
		out["expiring_raw_log_url"] = nil
	}

	data, err := json.Marshal(out)
	if err != nil {
		return logResponse
	}
	return string(data)
}

// fullLogContent returns the complete log text, preferring the expiring raw
// log URL and falling back to the inline log chunks.
func fullLogContent(ctx context.Context, logData map[string]any, fetch Fetcher) string {
	if rawURL, ok := logData["expiring_raw_log_url"].(string); ok && rawURL != "" && fetch != nil {
		if text, err := fetch(ctx, rawURL); err == nil && text != "" {
			return text
		}
	}
	chunks, ok := logData["log_chunks"].([]any)
	if !ok {
		return ""
	}
	var content string
	for _, raw := range chunks {
		chunk, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := chunk["chunk"].(string); ok {
			content += text
		}
	}
	return content
}

func buildNote(opts Options, failedCount int, failedNames []string) string {
	if !opts.FailedStepOnly {
		return "Logs filtered using keyword patterns"
	}
	switch {
	case failedCount == 0:
		return "No failed steps found. Showing build summary instead."
	case failedCount == 1:
		return fmt.Sprintf("Showing the only failed step (step #%d)", opts.FailedStepIndex)
	case opts.FailedStepIndex > failedCount:
		return fmt.Sprintf(
			"Requested failed step #%d but only %d failed steps exist. Showing build summary instead. All failed steps: %s. Use failed_step_index=1 to %d to see specific failed steps.",
			opts.FailedStepIndex, failedCount, joinNames(failedNames), failedCount)
	default:
		return fmt.Sprintf(
			"Showing failed step #%d of %d. Total failed steps: %s. Use failed_step_index=%d for next failed step.",
			opts.FailedStepIndex, failedCount, joinNames(failedNames), opts.FailedStepIndex+1)
	}
}

func nextCommand(opts Options, failedCount int) string {
	if !opts.FailedStepOnly || opts.AppSlug == "" || opts.BuildSlug == "" {
		return ""
	}
	if failedCount > 1 && opts.FailedStepIndex < failedCount {
		return fmt.Sprintf("get_build_log(%q, %q, failed_step_index=%d)",
			opts.AppSlug, opts.BuildSlug, opts.FailedStepIndex+1)
	}
	return ""
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
