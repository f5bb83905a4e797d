package stream

import "context"

// Reporter receives progress updates while a build is monitored. The MCP
// layer wires this to progress notifications when the caller supplied a
// progress token; otherwise updates go to the log.
type Reporter interface {
	Report(ctx context.Context, progress float64, message string)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(ctx context.Context, progress float64, message string)

func (f ReporterFunc) Report(ctx context.Context, progress float64, message string) {
	f(ctx, progress, message)
}

// NopReporter discards all progress updates.
var NopReporter Reporter = ReporterFunc(func(context.Context, float64, string) {})

type reporterKey struct{}

// WithReporter attaches a Reporter to the context for the duration of a
// tool invocation.
func WithReporter(ctx context.Context, r Reporter) context.Context {
	return context.WithValue(ctx, reporterKey{}, r)
}

// FromContext returns the Reporter attached to the context, or NopReporter.
func FromContext(ctx context.Context) Reporter {
	if r, ok := ctx.Value(reporterKey{}).(Reporter); ok && r != nil {
		return r
	}
	return NopReporter
}
