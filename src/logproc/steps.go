package logproc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Bitrise CLI log structure markers, compiled once at package init.
var (
	// summaryNameRe extracts the workflow name from a summary header row:
	// "| bitrise summary: deploy |"
	summaryNameRe = regexp.MustCompile(`bitrise summary:\s+(.+?)\s*\|`)

	// stepHeaderRe matches a step banner row: "| (3) Gradle Runner |"
	stepHeaderRe = regexp.MustCompile(`^\|\s*\((\d+)\)\s+(.*?)\s*\|$`)

	// switchWorkflowRe marks entry into a nested workflow.
	switchWorkflowRe = regexp.MustCompile(`Switching to workflow:\s+(.+)`)

	// statusSuffixRe removes "(Failed)"/"(Skipped)" decorations from step
	// names in summary table rows.
	statusSuffixRe = regexp.MustCompile(`\s*\((Failed|Skipped)\).*`)
)

// failedMarker is the ANSI red-bold sequence the CLI uses on failed summary
// rows; failure detection keys off it because the "x" glyph alone also
// appears in step output.
const failedMarker = "31;1m"

type step struct {
	title    string
	workflow string
	content  []string
}

type extractResult struct {
	content     string
	failedCount int
	failedNames []string
}

// extractFailedStep locates failed steps via the summary tables and returns
// the log section of the index-th one (1-based). When no step failed, or
// the index is out of range, the final build summary is returned instead.
func extractFailedStep(content string, index int) extractResult {
	lines := strings.Split(content, "\n")

	failedNames, summary := findFailedSteps(lines)
	if len(failedNames) == 0 {
		if summary == "" {
			summary = content
		}
		return extractResult{content: summary}
	}

	steps := parseSteps(lines)
	matched := matchFailedSteps(steps, failedNames)

	if index > len(matched) {
		if summary == "" {
			summary = content
		}
		return extractResult{content: summary, failedCount: len(failedNames), failedNames: failedNames}
	}

	section := strings.Join(matched[index-1].content, "\n") + "\n"
	return extractResult{content: section, failedCount: len(failedNames), failedNames: failedNames}
}

// findFailedSteps scans every "bitrise summary:" table for failed rows and
// returns the failed step names (with a per-summary sequence suffix for
// repeated steps) plus the content of the final summary section.
func findFailedSteps(lines []string) (failed []string, finalSummary string) {
	type section struct{ start, end int }
	var sections []section

	for i, line := range lines {
		if !strings.Contains(line, "bitrise summary:") {
			continue
		}
		end := len(lines) - 1
		for j := i + 1; j < len(lines); j++ {
			if strings.Contains(lines[j], "bitrise summary:") {
				end = j - 1
				break
			}
			if strings.Contains(lines[j], "Total runtime:") {
				end = j
				for k := j + 1; k < len(lines); k++ {
					if strings.HasPrefix(lines[k], "+") {
						end = k
						break
					}
				}
				break
			}
		}
		sections = append(sections, section{start: i, end: end})
	}

	for _, sec := range sections {
		counts := make(map[string]int)
		for i := sec.start; i <= sec.end; i++ {
			raw := lines[i]
			plain := ansi.Strip(raw)
			if strings.HasPrefix(plain, "+") || strings.Contains(plain, "title") || strings.Contains(plain, "bitrise summary") {
				continue
			}
			if !strings.HasPrefix(strings.TrimSpace(plain), "|") || strings.Count(plain, "|") < 3 {
				continue
			}
			parts := strings.Split(plain, "|")
			if len(parts) < 4 {
				continue
			}
			status := strings.TrimSpace(parts[1])
			name := statusSuffixRe.ReplaceAllString(strings.TrimSpace(parts[2]), "")
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			counts[name]++
			isFailed := strings.Contains(parts[2], "(Failed)") ||
				(strings.Contains(status, "x") && strings.Contains(raw, failedMarker))
			if isFailed {
				failed = append(failed, fmt.Sprintf("%s [%d]", name, counts[name]))
			}
		}
	}

	if len(sections) > 0 {
		last := sections[len(sections)-1]
		finalSummary = strings.Join(lines[last.start:last.end+1], "\n")
	}
	return failed, finalSummary
}

// parseSteps splits the log into per-step sections, tracking nested
// workflow context so repeated step names stay distinguishable.
func parseSteps(lines []string) []step {
	var steps []step
	var current *step
	workflowStack := []string{"main"}

	flush := func() {
		if current != nil {
			steps = append(steps, *current)
			current = nil
		}
	}

	for _, line := range lines {
		plain := ansi.Strip(line)

		if m := switchWorkflowRe.FindStringSubmatch(plain); m != nil {
			workflowStack = append(workflowStack, strings.TrimSpace(m[1]))
			if current != nil {
				current.content = append(current.content, line)
			}
			continue
		}
		if strings.Contains(plain, "bitrise summary:") {
			flush()
			if len(workflowStack) > 1 {
				workflowStack = workflowStack[:len(workflowStack)-1]
			}
			continue
		}

		if m := stepHeaderRe.FindStringSubmatch(strings.TrimRight(plain, " ")); m != nil {
			flush()
			current = &step{
				title:    m[2],
				workflow: workflowStack[len(workflowStack)-1],
				content:  []string{line},
			}
			continue
		}

		if current != nil {
			current.content = append(current.content, line)
		}
	}
	flush()
	return steps
}

// matchFailedSteps pairs failed names from the summaries with parsed step
// sections, consuming each section at most once so repeated step names map
// to successive executions.
func matchFailedSteps(steps []step, failedNames []string) []step {
	used := make([]bool, len(steps))
	var matched []step

	for _, failedName := range failedNames {
		// Strip the "[n]" sequence suffix; order of appearance already
		// disambiguates repeats.
		name := failedName
		if idx := strings.LastIndex(name, " ["); idx > 0 && strings.HasSuffix(name, "]") {
			name = name[:idx]
		}
		for i, s := range steps {
			if used[i] {
				continue
			}
			if strings.EqualFold(s.title, name) {
				used[i] = true
				matched = append(matched, s)
				break
			}
		}
	}
	return matched
}

// filterContent reduces each step's output to keyword matches with
// surrounding context. Steps without a matching filter pattern are kept
// whole.
func filterContent(content string, patterns map[string][]string, contextLines int) string {
	lines := strings.Split(content, "\n")
	steps := parseSteps(lines)
	if len(steps) == 0 {
		return content
	}

	var out []string
	for _, s := range steps {
		keywords := keywordsFor(s.title, patterns)
		if len(keywords) == 0 {
			out = append(out, s.content...)
		} else {
			out = append(out, filterStepLines(s.content, keywords, contextLines)...)
		}
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}

func keywordsFor(title string, patterns map[string][]string) []string {
	lower := strings.ToLower(title)
	for fragment, keywords := range patterns {
		if strings.Contains(lower, strings.ToLower(fragment)) {
			return keywords
		}
	}
	return nil
}

// filterStepLines keeps the step banner plus every keyword match with
// context lines around it. When nothing matches, only the banner survives.
func filterStepLines(lines []string, keywords []string, contextLines int) []string {
	include := make(map[int]bool)

	headerLines := min(10, len(lines))
	for i := 0; i < headerLines; i++ {
		plain := ansi.Strip(lines[i])
		if strings.HasPrefix(plain, "|") || strings.HasPrefix(plain, "+") ||
			strings.Contains(plain, "id:") || strings.Contains(plain, "version:") ||
			strings.Contains(plain, "collection:") || strings.Contains(plain, "toolkit:") {
			include[i] = true
		}
	}

	anyMatch := false
	for i, line := range lines {
		lower := strings.ToLower(ansi.Strip(line))
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				anyMatch = true
				for j := max(0, i-contextLines); j < min(len(lines), i+contextLines+1); j++ {
					include[j] = true
				}
				break
			}
		}
	}

	if !anyMatch && len(include) == 0 {
		if len(lines) > 5 {
			return lines[:5]
		}
		return lines
	}

	var out []string
	for i := range lines {
		if include[i] {
			out = append(out, lines[i])
		}
	}
	return out
}
